package port

import (
	"context"

	"nvcompare/internal/domain/model"
)

type Repository interface {
	// Snapshot history
	SaveQuote(ctx context.Context, q *model.QuoteSnapshot, ts int64) error
	SaveCrypto(ctx context.Context, c *model.CryptoAggregate, ts int64) error
	InsertComparison(ctx context.Context, ts int64, r *model.ComparisonResult) error

	// Connection management
	Close() error
}
