package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"nvcompare/internal/application/port"
	"nvcompare/internal/domain/model"
	dsvc "nvcompare/internal/domain/service"
)

type QuoteServiceDeps struct {
	Fetcher    port.QuoteFetcher
	Cache      port.Cache // optional
	Symbol     string
	ShareCount float64
	CacheTTL   time.Duration
}

// QuoteService turns the upstream quote into a QuoteSnapshot. It backs the proxy endpoint
// and, in-process, the view's quote source.
type QuoteService struct {
	deps   QuoteServiceDeps
	now    func() time.Time
	flight singleflight.Group
}

func NewQuoteService(deps QuoteServiceDeps) *QuoteService {
	if deps.ShareCount <= 0 {
		deps.ShareCount = model.DefaultShareCount
	}
	deps.Symbol = strings.ToUpper(strings.TrimSpace(deps.Symbol))
	return &QuoteService{deps: deps, now: time.Now}
}

func (s *QuoteService) Name() string { return "quote-proxy" }

// Quote serves from the cache when possible. Concurrent misses share one upstream call.
func (s *QuoteService) Quote(ctx context.Context) (*model.QuoteSnapshot, error) {
	if raw, ok := s.cached(ctx); ok {
		return s.build(raw)
	}

	v, err, _ := s.flight.Do(s.cacheKey(), func() (any, error) {
		raw, err := s.deps.Fetcher.FetchGlobalQuote(ctx, s.deps.Symbol)
		if err != nil {
			return nil, err
		}
		snap, err := s.build(raw)
		if err != nil {
			return nil, err
		}
		s.store(ctx, raw)
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	snap := *v.(*model.QuoteSnapshot)
	return &snap, nil
}

func (s *QuoteService) build(raw *port.RawQuote) (*model.QuoteSnapshot, error) {
	price, err := dsvc.ParseNumber("05. price", raw.Price)
	if err != nil {
		return nil, err
	}
	prev, err := dsvc.ParseNumber("08. previous close", raw.PreviousClose)
	if err != nil {
		return nil, err
	}
	change, err := dsvc.ParseNumber("09. change", raw.Change)
	if err != nil {
		return nil, err
	}
	pct, err := dsvc.ParsePercent("10. change percent", raw.ChangePercent)
	if err != nil {
		return nil, err
	}
	mc, err := dsvc.MarketCapTrillions(price, s.deps.ShareCount)
	if err != nil {
		return nil, err
	}

	return &model.QuoteSnapshot{
		Symbol:        s.deps.Symbol,
		Price:         price,
		PreviousClose: prev,
		Change:        change,
		ChangePercent: pct,
		MarketCap:     mc,
		Timestamp:     s.now().UTC().Format(model.TimestampLayout),
	}, nil
}

func (s *QuoteService) cacheKey() string {
	return "upstream:global_quote:" + s.deps.Symbol
}

func (s *QuoteService) cached(ctx context.Context) (*port.RawQuote, bool) {
	if s.deps.Cache == nil || s.deps.CacheTTL <= 0 {
		return nil, false
	}
	b, ok, err := s.deps.Cache.Get(ctx, s.cacheKey())
	if err != nil {
		log.Warn().Err(err).Str("key", s.cacheKey()).Msg("quote cache read failed")
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var raw port.RawQuote
	if err := json.Unmarshal(b, &raw); err != nil {
		log.Warn().Err(err).Str("key", s.cacheKey()).Msg("quote cache entry corrupt")
		return nil, false
	}
	return &raw, true
}

func (s *QuoteService) store(ctx context.Context, raw *port.RawQuote) {
	if s.deps.Cache == nil || s.deps.CacheTTL <= 0 {
		return
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return
	}
	if err := s.deps.Cache.Set(ctx, s.cacheKey(), b, s.deps.CacheTTL); err != nil {
		log.Warn().Err(err).Str("key", s.cacheKey()).Msg("quote cache write failed")
	}
}

// CacheControl renders the response directive for the proxy endpoint.
func CacheControl(sMaxAge, staleWhileRevalidate time.Duration) string {
	return fmt.Sprintf("public, s-maxage=%d, stale-while-revalidate=%d",
		int64(sMaxAge/time.Second), int64(staleWhileRevalidate/time.Second))
}

var _ port.QuoteSource = (*QuoteService)(nil)
