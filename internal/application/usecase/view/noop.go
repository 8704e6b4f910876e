package view

import (
	"context"

	"nvcompare/internal/application/port"
	"nvcompare/internal/domain/model"
)

type noopRepo struct{}

func NewNoopRepo() port.Repository { return &noopRepo{} }

func (n *noopRepo) SaveQuote(ctx context.Context, q *model.QuoteSnapshot, ts int64) error {
	return nil
}
func (n *noopRepo) SaveCrypto(ctx context.Context, c *model.CryptoAggregate, ts int64) error {
	return nil
}
func (n *noopRepo) InsertComparison(ctx context.Context, ts int64, r *model.ComparisonResult) error {
	return nil
}
func (n *noopRepo) Close() error { return nil }

type noopAnalytics struct{}

// NewNoopAnalytics drops every event; used when no analytics backend is configured.
func NewNoopAnalytics() port.Analytics { return noopAnalytics{} }

func (noopAnalytics) Record(ctx context.Context, ev model.Event) error { return nil }
