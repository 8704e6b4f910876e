package marketdata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"nvcompare/internal/domain"
)

const maxBody = 1 << 20

// NewHTTPClient returns a client with the given timeout, 10s when zero.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// Get performs a GET and returns the body of a 200 response. Transport failures and
// unexpected statuses wrap domain.ErrNetworkFailure; 429 wraps domain.ErrUpstreamThrottled.
func Get(ctx context.Context, client *http.Client, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %v: %w", redact(req), err, domain.ErrNetworkFailure)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read %s: %v: %w", redact(req), err, domain.ErrNetworkFailure)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("http %d from %s: %w", resp.StatusCode, redact(req), domain.ErrUpstreamThrottled)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("http %d from %s: %s: %w", resp.StatusCode, redact(req), excerpt(body), domain.ErrNetworkFailure)
	}
	return body, nil
}

// redact drops the query string so API keys never reach the logs.
func redact(req *http.Request) string {
	u := *req.URL
	u.RawQuery = ""
	return u.String()
}

func excerpt(b []byte) string {
	const n = 200
	if len(b) > n {
		return string(b[:n]) + "…"
	}
	return string(b)
}
