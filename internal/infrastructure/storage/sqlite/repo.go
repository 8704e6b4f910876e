package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"nvcompare/internal/application/port"
	"nvcompare/internal/domain/model"
)

type Repo struct {
	db *sql.DB
}

func New(path string) (*Repo, error) {
	// ensure directory exists
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		_ = os.MkdirAll(dir, 0o755)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	r := &Repo{db: db}
	if err := r.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repo) Close() error { return r.db.Close() }

func (r *Repo) migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS quotes (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  symbol TEXT NOT NULL,
  price REAL NOT NULL,
  previous_close REAL NOT NULL,
  change REAL NOT NULL,
  change_percent REAL NOT NULL,
  market_cap TEXT NOT NULL,
  quoted_at TEXT NOT NULL,
  ts_ms INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_quotes_ts ON quotes(ts_ms);

CREATE TABLE IF NOT EXISTS crypto_aggregates (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  total_market_cap_usd REAL NOT NULL,
  btc_dominance REAL NOT NULL,
  active_cryptos INTEGER NOT NULL,
  ts_ms INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_crypto_ts ON crypto_aggregates(ts_ms);

CREATE TABLE IF NOT EXISTS comparisons (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  nvidia_t REAL NOT NULL,
  crypto_t REAL NOT NULL,
  diff_t REAL NOT NULL,
  diff_pct REAL NOT NULL,
  ts_ms INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_comparisons_ts ON comparisons(ts_ms);

CREATE TABLE IF NOT EXISTS events (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  params TEXT NOT NULL,
  ts_ms INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_name ON events(name);
CREATE INDEX IF NOT EXISTS idx_events_ts ON events(ts_ms);
`)
	return err
}

func (r *Repo) SaveQuote(ctx context.Context, q *model.QuoteSnapshot, ts int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO quotes(symbol, price, previous_close, change, change_percent, market_cap, quoted_at, ts_ms)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?)
	`, q.Symbol, q.Price, q.PreviousClose, q.Change, q.ChangePercent, q.MarketCap, q.Timestamp, ts)
	return err
}

func (r *Repo) SaveCrypto(ctx context.Context, c *model.CryptoAggregate, ts int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO crypto_aggregates(total_market_cap_usd, btc_dominance, active_cryptos, ts_ms)
		VALUES(?, ?, ?, ?)
	`, c.TotalMarketCapUSD, c.BTCDominancePercent, c.ActiveCryptoCount, ts)
	return err
}

func (r *Repo) InsertComparison(ctx context.Context, ts int64, c *model.ComparisonResult) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO comparisons(nvidia_t, crypto_t, diff_t, diff_pct, ts_ms) VALUES(?, ?, ?, ?, ?)
	`, c.NvidiaCapTrillions, c.CryptoCapTrillions, c.DifferenceTrillions, c.DifferencePercent, ts)
	return err
}

// LatestComparison returns the most recent stored comparison, or nil when none exists.
func (r *Repo) LatestComparison(ctx context.Context) (*model.ComparisonResult, int64, error) {
	var c model.ComparisonResult
	var ts int64
	err := r.db.QueryRowContext(ctx, `
		SELECT nvidia_t, crypto_t, diff_t, diff_pct, ts_ms FROM comparisons ORDER BY ts_ms DESC, id DESC LIMIT 1
	`).Scan(&c.NvidiaCapTrillions, &c.CryptoCapTrillions, &c.DifferenceTrillions, &c.DifferencePercent, &ts)
	if err == sql.ErrNoRows {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, err
	}
	return &c, ts, nil
}

func (r *Repo) Record(ctx context.Context, ev model.Event) error {
	params, err := json.Marshal(ev.Params)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO events(name, params, ts_ms) VALUES(?, ?, ?)`, ev.Name, string(params), ev.Ts)
	return err
}

var (
	_ port.Repository = (*Repo)(nil)
	_ port.Analytics  = (*Repo)(nil)
)
