package view

import (
	"errors"
	"sync"
	"time"

	"nvcompare/internal/domain"
	"nvcompare/internal/domain/model"
	dsvc "nvcompare/internal/domain/service"
)

// State holds the latest result of each source. A source keeps its last good value
// until a newer fetch replaces it; a failed fetch marks the source as failed until the
// next successful one.
type State struct {
	mu sync.Mutex

	quote     *model.QuoteSnapshot
	quoteErr  error
	crypto    *model.CryptoAggregate
	cryptoErr error
	updatedAt time.Time
	now       func() time.Time
}

func NewState() *State {
	return &State{now: time.Now}
}

func (s *State) ApplyQuote(q *model.QuoteSnapshot, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.quoteErr = err
	} else if q != nil {
		s.quote, s.quoteErr = q, nil
	}
	s.updatedAt = s.now()
}

func (s *State) ApplyCrypto(c *model.CryptoAggregate, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.cryptoErr = err
	} else if c != nil {
		s.crypto, s.cryptoErr = c, nil
	}
	s.updatedAt = s.now()
}

// Snapshot resolves the current status. Any failed source yields StatusError even when the
// other source succeeded; the comparison is derived only once both sources resolved.
func (s *State) Snapshot() model.ViewSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := model.ViewSnapshot{Status: model.StatusLoading, UpdatedAt: s.updatedAt}

	if s.quoteErr != nil {
		snap.Errors = append(snap.Errors, model.SourceError{Source: model.SourceQuote, Message: describe(model.SourceQuote, s.quoteErr)})
	}
	if s.cryptoErr != nil {
		snap.Errors = append(snap.Errors, model.SourceError{Source: model.SourceCrypto, Message: describe(model.SourceCrypto, s.cryptoErr)})
	}
	if len(snap.Errors) > 0 {
		snap.Status = model.StatusError
		return snap
	}
	if s.quote == nil || s.crypto == nil {
		return snap
	}

	cmp, err := dsvc.Compare(*s.quote, *s.crypto)
	if err != nil {
		src := model.SourceQuote
		if errors.Is(err, domain.ErrZeroCryptoCap) {
			src = model.SourceCrypto
		}
		snap.Status = model.StatusError
		snap.Errors = append(snap.Errors, model.SourceError{Source: src, Message: describe(src, err)})
		return snap
	}

	q, c := *s.quote, *s.crypto
	snap.Status = model.StatusReady
	snap.Quote = &q
	snap.Crypto = &c
	snap.Comparison = &cmp
	return snap
}

func describe(src model.Source, err error) string {
	name := "NVIDIA"
	if src == model.SourceCrypto {
		name = "Crypto market"
	}
	switch {
	case errors.Is(err, domain.ErrUpstreamThrottled):
		return name + " data is rate limited, try again later"
	case errors.Is(err, domain.ErrZeroCryptoCap):
		return name + " total is unavailable"
	case errors.Is(err, domain.ErrUpstreamShapeMismatch), errors.Is(err, domain.ErrParseFailure):
		return name + " data came back in an unexpected format"
	default:
		return name + " data could not be loaded"
	}
}
