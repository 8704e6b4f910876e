package composite

import (
	"context"
	"errors"
	"testing"

	"nvcompare/internal/domain/model"
)

type countingRepo struct {
	quotes, cryptos, comparisons int
	err                          error
}

func (c *countingRepo) SaveQuote(ctx context.Context, q *model.QuoteSnapshot, ts int64) error {
	c.quotes++
	return c.err
}

func (c *countingRepo) SaveCrypto(ctx context.Context, a *model.CryptoAggregate, ts int64) error {
	c.cryptos++
	return c.err
}

func (c *countingRepo) InsertComparison(ctx context.Context, ts int64, r *model.ComparisonResult) error {
	c.comparisons++
	return c.err
}

func (c *countingRepo) Close() error { return nil }

type countingAnalytics struct {
	n   int
	err error
}

func (c *countingAnalytics) Record(ctx context.Context, ev model.Event) error {
	c.n++
	return c.err
}

func TestCompositeFanOut(t *testing.T) {
	a, b := &countingRepo{}, &countingRepo{}
	repo := New(a, nil, b)
	if repo.Len() != 2 {
		t.Fatalf("expected nil repo to be filtered, got %d", repo.Len())
	}

	ctx := context.Background()
	repo.SaveQuote(ctx, &model.QuoteSnapshot{}, 1)
	repo.SaveCrypto(ctx, &model.CryptoAggregate{}, 1)
	repo.InsertComparison(ctx, 1, &model.ComparisonResult{})

	for _, r := range []*countingRepo{a, b} {
		if r.quotes != 1 || r.cryptos != 1 || r.comparisons != 1 {
			t.Errorf("expected one write of each kind, got %+v", r)
		}
	}
}

func TestCompositeFirstError(t *testing.T) {
	errA := errors.New("a failed")
	a, b := &countingRepo{err: errA}, &countingRepo{err: errors.New("b failed")}

	err := New(a, b).SaveQuote(context.Background(), &model.QuoteSnapshot{}, 1)
	if !errors.Is(err, errA) {
		t.Errorf("expected first error, got %v", err)
	}
	if b.quotes != 1 {
		t.Errorf("expected later repos to still be written")
	}
}

func TestCompositeAnalytics(t *testing.T) {
	a, b := &countingAnalytics{}, &countingAnalytics{err: errors.New("down")}
	err := NewAnalytics(a, nil, b).Record(context.Background(), model.NewEvent(model.EventPageView, nil))
	if err == nil {
		t.Errorf("expected error from failing sink")
	}
	if a.n != 1 || b.n != 1 {
		t.Errorf("expected both sinks to be called, got %d %d", a.n, b.n)
	}
}
