package view

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"nvcompare/internal/application/port"
	"nvcompare/internal/domain/model"
)

const DefaultPollInterval = time.Hour

type ServiceDeps struct {
	Quote       port.QuoteSource
	Crypto      port.CryptoSource
	QuoteEvery  time.Duration
	CryptoEvery time.Duration
	Sinks       []port.Sink
	Repo        port.Repository
	Analytics   port.Analytics
}

// Service polls both sources on independent timers and publishes the combined view.
type Service struct {
	deps ServiceDeps
	st   *State

	// pubMu orders state changes with their publication so sinks never see an
	// older snapshot after a newer one.
	pubMu sync.Mutex
}

func NewService(deps ServiceDeps) *Service {
	if deps.QuoteEvery <= 0 {
		deps.QuoteEvery = DefaultPollInterval
	}
	if deps.CryptoEvery <= 0 {
		deps.CryptoEvery = DefaultPollInterval
	}
	if deps.Repo == nil {
		deps.Repo = NewNoopRepo()
	}
	if deps.Analytics == nil {
		deps.Analytics = NewNoopAnalytics()
	}
	return &Service{deps: deps, st: NewState()}
}

// Snapshot returns the current view model.
func (s *Service) Snapshot() model.ViewSnapshot {
	return s.st.Snapshot()
}

// Run blocks until ctx is cancelled. Cancelling aborts in-flight fetches and no state
// update is applied afterwards.
func (s *Service) Run(ctx context.Context) error {
	if s.deps.Quote == nil || s.deps.Crypto == nil {
		return errors.New("view: quote and crypto sources are required")
	}

	s.pubMu.Lock()
	s.publish(s.st.Snapshot())
	s.pubMu.Unlock()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.poll(ctx, s.deps.Quote.Name(), s.deps.QuoteEvery, s.refreshQuote)
	}()
	go func() {
		defer wg.Done()
		s.poll(ctx, s.deps.Crypto.Name(), s.deps.CryptoEvery, s.refreshCrypto)
	}()

	log.Info().
		Dur("quote_every", s.deps.QuoteEvery).
		Dur("crypto_every", s.deps.CryptoEvery).
		Msg("view polling started")

	wg.Wait()
	return ctx.Err()
}

func (s *Service) poll(ctx context.Context, name string, every time.Duration, refresh func(context.Context)) {
	refresh(ctx)

	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("source", name).Msg("poller stopped")
			return
		case <-ticker.C:
			refresh(ctx)
		}
	}
}

func (s *Service) refreshQuote(ctx context.Context) {
	q, err := s.deps.Quote.Quote(ctx)
	if ctx.Err() != nil {
		return
	}
	s.afterFetch(ctx, model.SourceQuote, err, func() { s.st.ApplyQuote(q, err) })
	if err == nil {
		if perr := s.deps.Repo.SaveQuote(ctx, q, time.Now().UnixMilli()); perr != nil {
			log.Warn().Err(perr).Msg("persist quote failed")
		}
	}
}

func (s *Service) refreshCrypto(ctx context.Context) {
	c, err := s.deps.Crypto.Global(ctx)
	if ctx.Err() != nil {
		return
	}
	s.afterFetch(ctx, model.SourceCrypto, err, func() { s.st.ApplyCrypto(c, err) })
	if err == nil {
		if perr := s.deps.Repo.SaveCrypto(ctx, c, time.Now().UnixMilli()); perr != nil {
			log.Warn().Err(perr).Msg("persist crypto aggregate failed")
		}
	}
}

func (s *Service) afterFetch(ctx context.Context, src model.Source, err error, apply func()) {
	name := model.EventDataLoadOK
	params := map[string]string{"source": string(src)}
	if err != nil {
		name = model.EventDataLoadError
		params["error"] = err.Error()
		log.Error().Err(err).Str("source", string(src)).Msg("fetch failed")
	} else {
		log.Info().Str("source", string(src)).Msg("fetch ok")
	}
	if aerr := s.deps.Analytics.Record(ctx, model.NewEvent(name, params)); aerr != nil {
		log.Warn().Err(aerr).Str("event", name).Msg("analytics record failed")
	}

	s.pubMu.Lock()
	defer s.pubMu.Unlock()

	apply()
	snap := s.st.Snapshot()
	if snap.Status == model.StatusReady {
		if perr := s.deps.Repo.InsertComparison(ctx, time.Now().UnixMilli(), snap.Comparison); perr != nil {
			log.Warn().Err(perr).Msg("persist comparison failed")
		}
	}
	s.publish(snap)
}

func (s *Service) publish(snap model.ViewSnapshot) {
	for _, sink := range s.deps.Sinks {
		if err := sink.Publish(snap); err != nil {
			log.Warn().Err(err).Msg("sink publish failed")
		}
	}
}
