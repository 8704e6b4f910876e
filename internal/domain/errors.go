package domain

import "errors"

// ErrUpstreamThrottled the quote API reported rate limiting or rejected the credentials.
var ErrUpstreamThrottled = errors.New("upstream throttled")

// ErrUpstreamShapeMismatch the upstream payload lacks the expected object.
var ErrUpstreamShapeMismatch = errors.New("upstream shape mismatch")

// ErrNetworkFailure the request never produced a usable HTTP response.
var ErrNetworkFailure = errors.New("network failure")

// ErrParseFailure a numeric field could not be parsed.
var ErrParseFailure = errors.New("parse failure")

// ErrZeroCryptoCap the crypto total is zero, negative or not finite, so no percentage exists.
var ErrZeroCryptoCap = errors.New("crypto total market cap is not positive")
