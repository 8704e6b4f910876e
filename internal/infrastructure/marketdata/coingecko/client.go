package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"nvcompare/internal/application/port"
	"nvcompare/internal/domain"
	"nvcompare/internal/domain/model"
	"nvcompare/internal/infrastructure/marketdata"
)

// Client reads the public /global market summary.
type Client struct {
	url    string
	client *http.Client
	now    func() time.Time
}

func NewClient(url string, timeout time.Duration) *Client {
	if url == "" {
		url = "https://api.coingecko.com/api/v3/global"
	}
	return &Client{url: url, client: marketdata.NewHTTPClient(timeout), now: time.Now}
}

func (c *Client) Name() string { return "coingecko" }

type globalResp struct {
	Data *struct {
		TotalMarketCap      map[string]float64 `json:"total_market_cap"`
		MarketCapPercentage map[string]float64 `json:"market_cap_percentage"`
		ActiveCryptos       int                `json:"active_cryptocurrencies"`
	} `json:"data"`
}

func (c *Client) Global(ctx context.Context) (*model.CryptoAggregate, error) {
	body, err := marketdata.Get(ctx, c.client, c.url)
	if err != nil {
		return nil, err
	}

	var r globalResp
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("decode global: %v: %w", err, domain.ErrParseFailure)
	}
	if r.Data == nil {
		return nil, fmt.Errorf("coingecko: no data object: %w", domain.ErrUpstreamShapeMismatch)
	}
	usd, ok := r.Data.TotalMarketCap["usd"]
	if !ok {
		return nil, fmt.Errorf("coingecko: no total_market_cap.usd: %w", domain.ErrUpstreamShapeMismatch)
	}

	return &model.CryptoAggregate{
		TotalMarketCapUSD:   usd,
		BTCDominancePercent: r.Data.MarketCapPercentage["btc"],
		ActiveCryptoCount:   r.Data.ActiveCryptos,
		FetchedAt:           c.now().UTC(),
	}, nil
}

var _ port.CryptoSource = (*Client)(nil)
