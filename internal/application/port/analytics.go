package port

import (
	"context"

	"nvcompare/internal/domain/model"
)

// Analytics records named events. Implementations must be safe for concurrent use.
type Analytics interface {
	Record(ctx context.Context, ev model.Event) error
}
