package model

import "time"

// ViewStatus is the observable state of the comparison view.
type ViewStatus int

const (
	StatusLoading ViewStatus = iota
	StatusError
	StatusReady
)

func (s ViewStatus) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	case StatusReady:
		return "ready"
	default:
		return "unknown"
	}
}

func (s ViewStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Source names a data source polled by the view.
type Source string

const (
	SourceQuote  Source = "nvidia"
	SourceCrypto Source = "crypto"
)

// SourceError is a per-source detail line shown in the Error state.
type SourceError struct {
	Source  Source `json:"source"`
	Message string `json:"message"`
}

// ViewSnapshot is an immutable copy of the view model handed to renderers and sinks.
// Comparison is set only when Status is StatusReady.
type ViewSnapshot struct {
	Status     ViewStatus        `json:"status"`
	Quote      *QuoteSnapshot    `json:"quote,omitempty"`
	Crypto     *CryptoAggregate  `json:"crypto,omitempty"`
	Comparison *ComparisonResult `json:"comparison,omitempty"`
	Errors     []SourceError     `json:"errors,omitempty"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}
