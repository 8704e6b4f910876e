package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"nvcompare/internal/domain"
)

var trillion = decimal.New(1, 12)

// MarketCapTrillions returns price*shares/1e12 with exactly two decimals.
func MarketCapTrillions(price, shares float64) (string, error) {
	if !finite(price) || !finite(shares) {
		return "", fmt.Errorf("market cap of price=%v shares=%v: %w", price, shares, domain.ErrParseFailure)
	}
	mc := decimal.NewFromFloat(price).Mul(decimal.NewFromFloat(shares)).Div(trillion)
	return mc.StringFixed(2), nil
}

// ParseNumber parses a numeric string field from an upstream payload.
func ParseNumber(field, s string) (float64, error) {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || !finite(n) {
		return 0, fmt.Errorf("field %q value %q: %w", field, s, domain.ErrParseFailure)
	}
	return n, nil
}

// ParsePercent parses values such as "3.25%" or "-1.10%". The suffix is optional.
func ParsePercent(field, s string) (float64, error) {
	return ParseNumber(field, strings.TrimSuffix(strings.TrimSpace(s), "%"))
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
