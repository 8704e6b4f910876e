package port

import (
	"context"

	"nvcompare/internal/domain/model"
)

// QuoteSource yields a fresh NVIDIA quote snapshot.
type QuoteSource interface {
	Name() string
	Quote(ctx context.Context) (*model.QuoteSnapshot, error)
}

// CryptoSource yields the global crypto market aggregate.
type CryptoSource interface {
	Name() string
	Global(ctx context.Context) (*model.CryptoAggregate, error)
}

// RawQuote carries the upstream quote fields before numeric parsing.
type RawQuote struct {
	Symbol        string `json:"symbol"`
	Price         string `json:"price"`
	PreviousClose string `json:"previous_close"`
	Change        string `json:"change"`
	ChangePercent string `json:"change_percent"`
}

// QuoteFetcher calls the upstream quote API. Implementations classify throttling and
// shape errors with the domain sentinels.
type QuoteFetcher interface {
	FetchGlobalQuote(ctx context.Context, symbol string) (*RawQuote, error)
}
