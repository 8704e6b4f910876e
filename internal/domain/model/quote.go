package model

import "time"

// DefaultShareCount is the fixed estimate of NVIDIA's outstanding shares used for
// the market-cap figure. Real share count drifts with buybacks and issuance.
const DefaultShareCount = 24.4e9

// TimestampLayout matches the ISO-8601 form browsers produce (millisecond precision, UTC).
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// QuoteSnapshot is one successful Quote Proxy result.
type QuoteSnapshot struct {
	Symbol        string  `json:"-"`
	Price         float64 `json:"price"`
	PreviousClose float64 `json:"previousClose"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	MarketCap     string  `json:"marketCap"` // trillions, fixed 2 decimals
	Timestamp     string  `json:"timestamp"`
}

// CryptoAggregate is the global crypto market summary as reported upstream.
type CryptoAggregate struct {
	TotalMarketCapUSD   float64   `json:"totalMarketCapUsd"`
	BTCDominancePercent float64   `json:"btcDominancePercent"`
	ActiveCryptoCount   int       `json:"activeCryptoCount"`
	FetchedAt           time.Time `json:"fetchedAt"`
}

// ComparisonResult is derived at render time from the latest two snapshots.
type ComparisonResult struct {
	NvidiaCapTrillions  float64 `json:"nvidiaCapTrillions"`
	CryptoCapTrillions  float64 `json:"cryptoCapTrillions"`
	DifferenceTrillions float64 `json:"differenceTrillions"`
	DifferencePercent   float64 `json:"differencePercent"`
}
