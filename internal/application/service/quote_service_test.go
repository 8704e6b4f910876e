package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"nvcompare/internal/application/port"
	"nvcompare/internal/domain"
)

type mockFetcher struct {
	raw   *port.RawQuote
	err   error
	calls int
}

func (m *mockFetcher) FetchGlobalQuote(ctx context.Context, symbol string) (*port.RawQuote, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	r := *m.raw
	r.Symbol = symbol
	return &r, nil
}

type mockCache struct {
	data map[string][]byte
	ttl  time.Duration
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, ok := m.data[key]
	return b, ok, nil
}

func (m *mockCache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	m.data[key] = val
	m.ttl = ttl
	return nil
}

func sampleRaw() *port.RawQuote {
	return &port.RawQuote{
		Price:         "171.8600",
		PreviousClose: "166.4500",
		Change:        "5.4100",
		ChangePercent: "3.25%",
	}
}

func TestQuoteServiceBuildsSnapshot(t *testing.T) {
	f := &mockFetcher{raw: sampleRaw()}
	svc := NewQuoteService(QuoteServiceDeps{Fetcher: f, Symbol: "nvda"})
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

	q, err := svc.Quote(context.Background())
	if err != nil {
		t.Fatalf("Quote failed: %v", err)
	}
	if q.Symbol != "NVDA" {
		t.Errorf("expected symbol NVDA, got %s", q.Symbol)
	}
	if q.Price != 171.86 || q.PreviousClose != 166.45 || q.Change != 5.41 {
		t.Errorf("unexpected numbers: %+v", q)
	}
	if q.ChangePercent != 3.25 {
		t.Errorf("expected changePercent 3.25, got %v", q.ChangePercent)
	}
	if q.MarketCap != "4.19" {
		t.Errorf("expected marketCap 4.19, got %s", q.MarketCap)
	}
	if q.Timestamp != "2025-06-01T12:00:00.000Z" {
		t.Errorf("unexpected timestamp %s", q.Timestamp)
	}
}

func TestQuoteServiceNegativeChangePercent(t *testing.T) {
	raw := sampleRaw()
	raw.ChangePercent = "-1.10%"
	svc := NewQuoteService(QuoteServiceDeps{Fetcher: &mockFetcher{raw: raw}, Symbol: "NVDA"})

	q, err := svc.Quote(context.Background())
	if err != nil {
		t.Fatalf("Quote failed: %v", err)
	}
	if q.ChangePercent != -1.10 {
		t.Errorf("expected -1.10, got %v", q.ChangePercent)
	}
}

func TestQuoteServicePropagatesUpstreamErrors(t *testing.T) {
	f := &mockFetcher{err: domain.ErrUpstreamThrottled}
	svc := NewQuoteService(QuoteServiceDeps{Fetcher: f, Symbol: "NVDA"})

	if _, err := svc.Quote(context.Background()); !errors.Is(err, domain.ErrUpstreamThrottled) {
		t.Errorf("expected ErrUpstreamThrottled, got %v", err)
	}
}

func TestQuoteServiceParseFailure(t *testing.T) {
	raw := sampleRaw()
	raw.Price = ""
	svc := NewQuoteService(QuoteServiceDeps{Fetcher: &mockFetcher{raw: raw}, Symbol: "NVDA"})

	if _, err := svc.Quote(context.Background()); !errors.Is(err, domain.ErrParseFailure) {
		t.Errorf("expected ErrParseFailure, got %v", err)
	}
}

func TestQuoteServiceCachesUpstream(t *testing.T) {
	f := &mockFetcher{raw: sampleRaw()}
	c := &mockCache{data: map[string][]byte{}}
	svc := NewQuoteService(QuoteServiceDeps{Fetcher: f, Cache: c, Symbol: "NVDA", CacheTTL: 5 * time.Minute})

	ctx := context.Background()
	first, err := svc.Quote(ctx)
	if err != nil {
		t.Fatalf("first Quote failed: %v", err)
	}
	second, err := svc.Quote(ctx)
	if err != nil {
		t.Fatalf("second Quote failed: %v", err)
	}
	if f.calls != 1 {
		t.Errorf("expected 1 upstream call, got %d", f.calls)
	}
	if c.ttl != 5*time.Minute {
		t.Errorf("expected ttl 5m, got %v", c.ttl)
	}
	if first.MarketCap != second.MarketCap {
		t.Errorf("cached snapshot differs: %s vs %s", first.MarketCap, second.MarketCap)
	}
}

func TestQuoteServiceDoesNotCacheFailures(t *testing.T) {
	raw := sampleRaw()
	raw.ChangePercent = "bad"
	f := &mockFetcher{raw: raw}
	c := &mockCache{data: map[string][]byte{}}
	svc := NewQuoteService(QuoteServiceDeps{Fetcher: f, Cache: c, Symbol: "NVDA", CacheTTL: time.Hour})

	_, _ = svc.Quote(context.Background())
	if len(c.data) != 0 {
		t.Errorf("expected empty cache, got %d entries", len(c.data))
	}
}

func TestCacheControl(t *testing.T) {
	got := CacheControl(300*time.Second, 600*time.Second)
	if got != "public, s-maxage=300, stale-while-revalidate=600" {
		t.Errorf("unexpected header %q", got)
	}
}

type gatedFetcher struct {
	calls   atomic.Int32
	entered chan struct{}
	release chan struct{}
}

func (g *gatedFetcher) FetchGlobalQuote(ctx context.Context, symbol string) (*port.RawQuote, error) {
	if g.calls.Add(1) == 1 {
		close(g.entered)
	}
	<-g.release
	return sampleRaw(), nil
}

func TestQuoteServiceSharesConcurrentMisses(t *testing.T) {
	f := &gatedFetcher{entered: make(chan struct{}), release: make(chan struct{})}
	svc := NewQuoteService(QuoteServiceDeps{Fetcher: f, Symbol: "NVDA"})

	const callers = 8
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q, err := svc.Quote(context.Background())
			if err == nil && q.MarketCap != "4.19" {
				err = errors.New("unexpected marketCap " + q.MarketCap)
			}
			errs <- err
		}()
	}

	<-f.entered
	time.Sleep(50 * time.Millisecond)
	close(f.release)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("Quote failed: %v", err)
		}
	}
	if n := f.calls.Load(); n != 1 {
		t.Errorf("expected 1 upstream call, got %d", n)
	}
}
