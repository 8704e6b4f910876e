package svc

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"nvcompare/internal/application/port"
	"nvcompare/internal/domain/model"
	"nvcompare/internal/infrastructure/config"
	"nvcompare/internal/infrastructure/marketdata/quoteproxy"
	sqliterepo "nvcompare/internal/infrastructure/storage/sqlite"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.App.Addr = "127.0.0.1:0"
	cfg.Quote.BaseURL = "http://127.0.0.1:1"
	cfg.Quote.Symbol = "NVDA"
	cfg.Quote.ShareCount = 24.4e9
	cfg.Quote.UpstreamCacheSec = 300
	cfg.Quote.TimeoutSec = 1
	cfg.Proxy.SMaxAgeSec = 300
	cfg.Proxy.StaleWhileRevalidateSec = 600
	cfg.Crypto.URL = "http://127.0.0.1:1/global"
	cfg.Crypto.TimeoutSec = 1
	cfg.View.QuotePollMin = 60
	cfg.View.CryptoPollMin = 60
	cfg.Site.Title = "NVIDIA vs Crypto"
	cfg.Site.Donations = []config.Donation{{Label: "BTC", Address: "bc1qsvc"}}
	return cfg
}

func TestNewWithoutStorage(t *testing.T) {
	sc, err := New(context.Background(), testConfig(t))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer sc.Close()

	if sc.repo.Len() != 0 {
		t.Errorf("expected no repositories, got %d", sc.repo.Len())
	}
	if sc.cache == nil {
		t.Fatalf("expected in-memory cache fallback")
	}
	if sc.View == nil || sc.Server == nil || sc.Hub == nil {
		t.Fatalf("components not wired")
	}
	src, err := sc.viewQuoteSource()
	if err != nil || src != port.QuoteSource(sc.QuoteService) {
		t.Errorf("expected in-process quote service, got %T", src)
	}

	rec := httptest.NewRecorder()
	sc.Server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "bc1qsvc") {
		t.Errorf("page not served with site config: %d", rec.Code)
	}
}

func TestNewWithSQLite(t *testing.T) {
	cfg := testConfig(t)
	cfg.SQLite.Enabled = true
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "nvcap.db")
	cfg.Analytics.Enabled = true

	sc, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer sc.Close()

	if sc.repo.Len() != 1 || sc.analytics.Len() != 1 {
		t.Fatalf("expected sqlite wired as repo and analytics")
	}

	rec := httptest.NewRecorder()
	sc.Server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	db, err := sql.Open("sqlite", cfg.SQLite.Path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM events WHERE name='page_view'`).Scan(&n); err != nil {
		t.Fatalf("count events: %v", err)
	}
	if n != 1 {
		t.Errorf("expected page_view recorded, got %d", n)
	}
}

func TestRemoteQuoteProxy(t *testing.T) {
	cfg := testConfig(t)
	cfg.View.QuoteProxyURL = "http://127.0.0.1:1/api/nvidia"

	sc, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer sc.Close()

	src, err := sc.viewQuoteSource()
	if err != nil {
		t.Fatalf("viewQuoteSource failed: %v", err)
	}
	if _, ok := src.(*quoteproxy.Client); !ok {
		t.Errorf("expected remote proxy client, got %T", src)
	}
}

func TestRedisUnreachable(t *testing.T) {
	cfg := testConfig(t)
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = "127.0.0.1:1"

	_, err := New(context.Background(), cfg)
	if !errors.Is(err, ErrStorageInitFailed) {
		t.Fatalf("expected ErrStorageInitFailed, got %v", err)
	}
}

func TestNewLogsLastStoredComparison(t *testing.T) {
	cfg := testConfig(t)
	cfg.SQLite.Enabled = true
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "nvcap.db")

	seed, err := sqliterepo.New(cfg.SQLite.Path)
	if err != nil {
		t.Fatalf("seed repo: %v", err)
	}
	cmp := &model.ComparisonResult{NvidiaCapTrillions: 4.2, CryptoCapTrillions: 3.5, DifferenceTrillions: 0.7, DifferencePercent: 20}
	if err := seed.InsertComparison(context.Background(), 1000, cmp); err != nil {
		t.Fatalf("seed comparison: %v", err)
	}
	seed.Close()

	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	defer func() { log.Logger = prev }()

	sc, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer sc.Close()

	out := buf.String()
	if !strings.Contains(out, "last stored comparison") || !strings.Contains(out, `"diff_pct":20`) {
		t.Errorf("expected last comparison in log, got %s", out)
	}
	if sc.View.Snapshot().Status != model.StatusLoading {
		t.Errorf("view must still start in loading")
	}
}
