package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"nvcompare/internal/application/port"
	"nvcompare/internal/domain"
	"nvcompare/internal/infrastructure/marketdata"
)

// Client calls the Alpha Vantage GLOBAL_QUOTE endpoint.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = "https://www.alphavantage.co"
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  marketdata.NewHTTPClient(timeout),
	}
}

type globalQuote struct {
	Symbol        string `json:"01. symbol"`
	Price         string `json:"05. price"`
	PreviousClose string `json:"08. previous close"`
	Change        string `json:"09. change"`
	ChangePercent string `json:"10. change percent"`
}

// FetchGlobalQuote returns the raw quote fields for symbol.
func (c *Client) FetchGlobalQuote(ctx context.Context, symbol string) (*port.RawQuote, error) {
	q := url.Values{}
	q.Set("function", "GLOBAL_QUOTE")
	q.Set("symbol", symbol)
	q.Set("apikey", c.apiKey)

	body, err := marketdata.Get(ctx, c.client, c.baseURL+"/query?"+q.Encode())
	if err != nil {
		return nil, err
	}
	return ParseGlobalQuote(body)
}

// ParseGlobalQuote classifies an Alpha Vantage payload. "Information", "Note" and
// "Error Message" signal throttling or rejected credentials; a missing or empty
// "Global Quote" object is a shape mismatch.
func ParseGlobalQuote(body []byte) (*port.RawQuote, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, fmt.Errorf("decode global quote: %v: %w", err, domain.ErrParseFailure)
	}

	for _, k := range []string{"Information", "Note", "Error Message"} {
		if msg, ok := top[k]; ok {
			return nil, fmt.Errorf("alphavantage %s: %s: %w", strings.ToLower(k), string(msg), domain.ErrUpstreamThrottled)
		}
	}

	raw, ok := top["Global Quote"]
	if !ok {
		return nil, fmt.Errorf("alphavantage: no \"Global Quote\" object: %w", domain.ErrUpstreamShapeMismatch)
	}
	var gq globalQuote
	if err := json.Unmarshal(raw, &gq); err != nil {
		return nil, fmt.Errorf("alphavantage: \"Global Quote\" is not an object: %w", domain.ErrUpstreamShapeMismatch)
	}
	if gq.Price == "" {
		return nil, fmt.Errorf("alphavantage: empty \"Global Quote\": %w", domain.ErrUpstreamShapeMismatch)
	}

	return &port.RawQuote{
		Symbol:        gq.Symbol,
		Price:         gq.Price,
		PreviousClose: gq.PreviousClose,
		Change:        gq.Change,
		ChangePercent: gq.ChangePercent,
	}, nil
}

var _ port.QuoteFetcher = (*Client)(nil)
