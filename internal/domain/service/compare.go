package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"nvcompare/internal/domain"
	"nvcompare/internal/domain/model"
)

var hundred = decimal.NewFromInt(100)

// Compare derives the comparison figures from the latest quote and crypto aggregate.
// A crypto total that is not strictly positive yields domain.ErrZeroCryptoCap.
func Compare(q model.QuoteSnapshot, c model.CryptoAggregate) (model.ComparisonResult, error) {
	if !finite(c.TotalMarketCapUSD) || c.TotalMarketCapUSD <= 0 {
		return model.ComparisonResult{}, fmt.Errorf("total_market_cap.usd=%v: %w", c.TotalMarketCapUSD, domain.ErrZeroCryptoCap)
	}

	nvidia, err := decimal.NewFromString(q.MarketCap)
	if err != nil {
		return model.ComparisonResult{}, fmt.Errorf("marketCap %q: %w", q.MarketCap, domain.ErrParseFailure)
	}
	crypto := decimal.NewFromFloat(c.TotalMarketCapUSD).Div(trillion)
	diff := nvidia.Sub(crypto)

	return model.ComparisonResult{
		NvidiaCapTrillions:  nvidia.InexactFloat64(),
		CryptoCapTrillions:  crypto.InexactFloat64(),
		DifferenceTrillions: diff.InexactFloat64(),
		DifferencePercent:   diff.Div(crypto).Mul(hundred).InexactFloat64(),
	}, nil
}
