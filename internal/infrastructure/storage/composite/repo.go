package composite

import (
	"context"

	"nvcompare/internal/application/port"
	"nvcompare/internal/domain/model"
)

// Repo fans writes out to every configured repository and reports the first error.
type Repo struct {
	repos []port.Repository
}

func New(repos ...port.Repository) *Repo {
	// nil repos are allowed; filter in constructor for safety
	out := make([]port.Repository, 0, len(repos))
	for _, r := range repos {
		if r != nil {
			out = append(out, r)
		}
	}
	return &Repo{repos: out}
}

func (r *Repo) Len() int { return len(r.repos) }

func (r *Repo) SaveQuote(ctx context.Context, q *model.QuoteSnapshot, ts int64) error {
	var firstErr error
	for _, repo := range r.repos {
		if err := repo.SaveQuote(ctx, q, ts); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Repo) SaveCrypto(ctx context.Context, c *model.CryptoAggregate, ts int64) error {
	var firstErr error
	for _, repo := range r.repos {
		if err := repo.SaveCrypto(ctx, c, ts); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Repo) InsertComparison(ctx context.Context, ts int64, c *model.ComparisonResult) error {
	var firstErr error
	for _, repo := range r.repos {
		if err := repo.InsertComparison(ctx, ts, c); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Close is a no-op; member repositories are closed by their owner.
func (r *Repo) Close() error { return nil }

// Analytics fans events out the same way.
type Analytics struct {
	sinks []port.Analytics
}

func NewAnalytics(sinks ...port.Analytics) *Analytics {
	out := make([]port.Analytics, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return &Analytics{sinks: out}
}

func (a *Analytics) Len() int { return len(a.sinks) }

func (a *Analytics) Record(ctx context.Context, ev model.Event) error {
	var firstErr error
	for _, s := range a.sinks {
		if err := s.Record(ctx, ev); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

var (
	_ port.Repository = (*Repo)(nil)
	_ port.Analytics  = (*Analytics)(nil)
)
