package quoteproxy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"nvcompare/internal/application/port"
	"nvcompare/internal/domain"
	"nvcompare/internal/domain/model"
	dsvc "nvcompare/internal/domain/service"
	"nvcompare/internal/infrastructure/marketdata"
)

// Client reads a remote /api/nvidia endpoint, for views that do not host the proxy.
type Client struct {
	url    string
	client *http.Client
}

func NewClient(url string, timeout time.Duration) *Client {
	return &Client{url: url, client: marketdata.NewHTTPClient(timeout)}
}

func (c *Client) Name() string { return "quote-proxy-http" }

func (c *Client) Quote(ctx context.Context) (*model.QuoteSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("quote proxy: %v: %w", err, domain.ErrNetworkFailure)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return nil, fmt.Errorf("quote proxy read: %v: %w", err, domain.ErrNetworkFailure)
	}

	if resp.StatusCode != http.StatusOK {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(body, &e)
		if e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return nil, fmt.Errorf("quote proxy http %d: %s: %w", resp.StatusCode, e.Error, domain.ErrNetworkFailure)
	}

	var q model.QuoteSnapshot
	if err := json.Unmarshal(body, &q); err != nil {
		return nil, fmt.Errorf("quote proxy decode: %v: %w", err, domain.ErrParseFailure)
	}
	if q.MarketCap == "" {
		return nil, fmt.Errorf("quote proxy: empty marketCap: %w", domain.ErrUpstreamShapeMismatch)
	}
	if _, err := dsvc.ParseNumber("marketCap", q.MarketCap); err != nil {
		return nil, fmt.Errorf("quote proxy: %w", err)
	}
	return &q, nil
}

var _ port.QuoteSource = (*Client)(nil)
