package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	_ "github.com/jackc/pgx/v5/stdlib"

	"nvcompare/internal/application/port"
	"nvcompare/internal/domain/model"
)

type Repo struct {
	db *sql.DB
}

func New(dsn string) (*Repo, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

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
  id BIGSERIAL PRIMARY KEY,
  symbol TEXT NOT NULL,
  price DOUBLE PRECISION NOT NULL,
  previous_close DOUBLE PRECISION NOT NULL,
  change DOUBLE PRECISION NOT NULL,
  change_percent DOUBLE PRECISION NOT NULL,
  market_cap TEXT NOT NULL,
  quoted_at TEXT NOT NULL,
  ts_ms BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_quotes_ts ON quotes(ts_ms);

CREATE TABLE IF NOT EXISTS crypto_aggregates (
  id BIGSERIAL PRIMARY KEY,
  total_market_cap_usd DOUBLE PRECISION NOT NULL,
  btc_dominance DOUBLE PRECISION NOT NULL,
  active_cryptos INTEGER NOT NULL,
  ts_ms BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_crypto_ts ON crypto_aggregates(ts_ms);

CREATE TABLE IF NOT EXISTS comparisons (
  id BIGSERIAL PRIMARY KEY,
  nvidia_t DOUBLE PRECISION NOT NULL,
  crypto_t DOUBLE PRECISION NOT NULL,
  diff_t DOUBLE PRECISION NOT NULL,
  diff_pct DOUBLE PRECISION NOT NULL,
  ts_ms BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_comparisons_ts ON comparisons(ts_ms);

CREATE TABLE IF NOT EXISTS events (
  id BIGSERIAL PRIMARY KEY,
  name TEXT NOT NULL,
  params JSONB NOT NULL,
  ts_ms BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_name_ts ON events(name, ts_ms);
`)
	return err
}

func (r *Repo) SaveQuote(ctx context.Context, q *model.QuoteSnapshot, ts int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO quotes(symbol, price, previous_close, change, change_percent, market_cap, quoted_at, ts_ms)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8)
	`, q.Symbol, q.Price, q.PreviousClose, q.Change, q.ChangePercent, q.MarketCap, q.Timestamp, ts)
	return err
}

func (r *Repo) SaveCrypto(ctx context.Context, c *model.CryptoAggregate, ts int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO crypto_aggregates(total_market_cap_usd, btc_dominance, active_cryptos, ts_ms)
		VALUES($1, $2, $3, $4)
	`, c.TotalMarketCapUSD, c.BTCDominancePercent, c.ActiveCryptoCount, ts)
	return err
}

func (r *Repo) InsertComparison(ctx context.Context, ts int64, c *model.ComparisonResult) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO comparisons(nvidia_t, crypto_t, diff_t, diff_pct, ts_ms) VALUES($1, $2, $3, $4, $5)
	`, c.NvidiaCapTrillions, c.CryptoCapTrillions, c.DifferenceTrillions, c.DifferencePercent, ts)
	return err
}

func (r *Repo) Record(ctx context.Context, ev model.Event) error {
	params, err := json.Marshal(ev.Params)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO events(name, params, ts_ms) VALUES($1, $2, $3)`, ev.Name, string(params), ev.Ts)
	return err
}

var (
	_ port.Repository = (*Repo)(nil)
	_ port.Analytics  = (*Repo)(nil)
)
