package svc

import (
	"context"
	"fmt"
	"strings"
	"time"

	redisclient "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"nvcompare/internal/application/port"
	"nvcompare/internal/application/service"
	"nvcompare/internal/application/usecase/view"
	"nvcompare/internal/infrastructure/config"
	"nvcompare/internal/infrastructure/marketdata/alphavantage"
	"nvcompare/internal/infrastructure/marketdata/coingecko"
	"nvcompare/internal/infrastructure/marketdata/quoteproxy"
	"nvcompare/internal/infrastructure/storage/composite"
	"nvcompare/internal/infrastructure/storage/memory"
	pgrepo "nvcompare/internal/infrastructure/storage/postgres"
	redisrepo "nvcompare/internal/infrastructure/storage/redis"
	sqliterepo "nvcompare/internal/infrastructure/storage/sqlite"
	"nvcompare/internal/interfaces/console"
	"nvcompare/internal/interfaces/web"
)

type ServiceContext struct {
	Ctx    context.Context
	Config *config.Config

	// storage
	redisClient *redisclient.Client
	redisRepo   *redisrepo.Repo
	sqliteRepo  *sqliterepo.Repo
	pgRepo      *pgrepo.Repo

	cache     port.Cache
	repo      *composite.Repo
	analytics *composite.Analytics

	// application
	QuoteService *service.QuoteService
	View         *view.Service

	// interfaces
	Hub    *web.Hub
	Server *web.Server

	closerChain []func() error
}

// New wires every component in dependency order. On failure everything opened so far is
// closed again.
func New(ctx context.Context, cfg *config.Config) (*ServiceContext, error) {
	sc := &ServiceContext{
		Ctx:         ctx,
		Config:      cfg,
		closerChain: make([]func() error, 0),
	}

	if err := sc.initializeComponents(); err != nil {
		_ = sc.Close()
		return nil, err
	}
	return sc, nil
}

func (sc *ServiceContext) initializeComponents() error {
	if err := sc.initializeStorage(); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageInitFailed, err)
	}

	cfg := sc.Config
	sc.QuoteService = service.NewQuoteService(service.QuoteServiceDeps{
		Fetcher: alphavantage.NewClient(cfg.Quote.BaseURL, cfg.Quote.APIKey,
			time.Duration(cfg.Quote.TimeoutSec)*time.Second),
		Cache:      sc.cache,
		Symbol:     cfg.Quote.Symbol,
		ShareCount: cfg.Quote.ShareCount,
		CacheTTL:   cfg.UpstreamCacheTTL(),
	})

	quote, err := sc.viewQuoteSource()
	if err != nil {
		return err
	}

	sc.Hub = web.NewHub()
	sinks := []port.Sink{sc.Hub}
	if cfg.App.Console {
		sinks = append(sinks, console.NewSink(true))
	}

	var repo port.Repository = sc.repo
	if sc.repo.Len() == 0 {
		repo = view.NewNoopRepo()
	}
	var analytics port.Analytics = view.NewNoopAnalytics()
	if cfg.Analytics.Enabled && sc.analytics.Len() > 0 {
		analytics = sc.analytics
	}

	sc.View = view.NewService(view.ServiceDeps{
		Quote:       quote,
		Crypto:      coingecko.NewClient(cfg.Crypto.URL, time.Duration(cfg.Crypto.TimeoutSec)*time.Second),
		QuoteEvery:  cfg.QuotePollInterval(),
		CryptoEvery: cfg.CryptoPollInterval(),
		Sinks:       sinks,
		Repo:        repo,
		Analytics:   analytics,
	})

	sc.Server, err = web.NewServer(web.Deps{
		Addr:         cfg.App.Addr,
		Quote:        sc.QuoteService,
		View:         sc.View,
		Analytics:    analytics,
		Hub:          sc.Hub,
		CacheControl: service.CacheControl(cfg.ProxySMaxAge(), cfg.ProxyStaleWhileRevalidate()),
		Site:         buildSite(cfg),
	})
	if err != nil {
		return fmt.Errorf("web server init failed: %w", err)
	}

	log.Info().
		Int("repos", sc.repo.Len()).
		Int("sinks", len(sinks)).
		Bool("analytics", cfg.Analytics.Enabled).
		Msg("✓ All components initialized")
	return nil
}

// viewQuoteSource picks where the comparison view reads its quote from. The in-process
// service and the HTTP endpoint share one code path, so both are equivalent.
func (sc *ServiceContext) viewQuoteSource() (port.QuoteSource, error) {
	url := strings.TrimSpace(sc.Config.View.QuoteProxyURL)
	if url != "" {
		log.Info().Str("url", url).Msg("view reads quotes through remote proxy")
		return quoteproxy.NewClient(url, time.Duration(sc.Config.Quote.TimeoutSec)*time.Second), nil
	}
	if sc.QuoteService == nil {
		return nil, ErrNoQuoteSource
	}
	return sc.QuoteService, nil
}

func (sc *ServiceContext) initializeStorage() error {
	if sc.Config.Redis.Enabled {
		if err := sc.initRedis(); err != nil {
			return fmt.Errorf("redis initialization failed: %w", err)
		}
	}
	if sc.Config.SQLite.Enabled {
		if err := sc.initSQLite(); err != nil {
			return fmt.Errorf("sqlite initialization failed: %w", err)
		}
	}
	if sc.Config.Postgres.Enabled {
		if err := sc.initPostgres(); err != nil {
			return fmt.Errorf("postgres initialization failed: %w", err)
		}
	}

	// Redis doubles as the upstream cache; without it a process-local cache is used.
	if sc.redisRepo != nil {
		sc.cache = sc.redisRepo
	} else {
		sc.cache = memory.NewCache()
	}

	var repos []port.Repository
	var sinks []port.Analytics
	if sc.redisRepo != nil {
		repos = append(repos, sc.redisRepo)
		sinks = append(sinks, sc.redisRepo)
	}
	if sc.sqliteRepo != nil {
		repos = append(repos, sc.sqliteRepo)
		sinks = append(sinks, sc.sqliteRepo)
	}
	if sc.pgRepo != nil {
		repos = append(repos, sc.pgRepo)
		sinks = append(sinks, sc.pgRepo)
	}
	sc.repo = composite.New(repos...)
	sc.analytics = composite.NewAnalytics(sinks...)
	return nil
}

func (sc *ServiceContext) initRedis() error {
	rdb := redisclient.NewClient(&redisclient.Options{
		Addr:     sc.Config.Redis.Addr,
		Password: sc.Config.Redis.Password,
		DB:       sc.Config.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(sc.Ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return fmt.Errorf("redis ping failed: %w", err)
	}

	sc.redisClient = rdb
	sc.redisRepo = redisrepo.New(
		rdb,
		sc.Config.Redis.Prefix,
		time.Duration(sc.Config.Redis.TTLSec)*time.Second,
		sc.Config.Redis.Stream,
		sc.Config.Redis.Channel,
	)
	sc.closerChain = append(sc.closerChain, func() error {
		log.Info().Msg("closing redis connection")
		return rdb.Close()
	})

	log.Info().
		Str("addr", sc.Config.Redis.Addr).
		Int("db", sc.Config.Redis.DB).
		Msg("✓ Redis initialized")
	return nil
}

func (sc *ServiceContext) initSQLite() error {
	repo, err := sqliterepo.New(sc.Config.SQLite.Path)
	if err != nil {
		return fmt.Errorf("sqlite repo creation failed: %w", err)
	}
	sc.sqliteRepo = repo
	sc.closerChain = append(sc.closerChain, func() error {
		log.Info().Msg("closing sqlite connection")
		return repo.Close()
	})

	log.Info().Str("path", sc.Config.SQLite.Path).Msg("✓ SQLite initialized")
	sc.logLastComparison()
	return nil
}

// logLastComparison reports the most recent stored comparison. The view itself always
// starts in Loading and waits for fresh data.
func (sc *ServiceContext) logLastComparison() {
	ctx, cancel := context.WithTimeout(sc.Ctx, 5*time.Second)
	defer cancel()

	c, ts, err := sc.sqliteRepo.LatestComparison(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("read last comparison failed")
		return
	}
	if c == nil {
		log.Info().Msg("no stored comparison yet")
		return
	}
	log.Info().
		Time("at", time.UnixMilli(ts)).
		Float64("nvidia_t", c.NvidiaCapTrillions).
		Float64("crypto_t", c.CryptoCapTrillions).
		Float64("diff_pct", c.DifferencePercent).
		Msg("last stored comparison")
}

func (sc *ServiceContext) initPostgres() error {
	repo, err := pgrepo.New(sc.Config.Postgres.DSN)
	if err != nil {
		return fmt.Errorf("postgres repo creation failed: %w", err)
	}
	sc.pgRepo = repo
	sc.closerChain = append(sc.closerChain, func() error {
		log.Info().Msg("closing postgres connection")
		return repo.Close()
	})

	log.Info().Msg("✓ Postgres initialized")
	return nil
}

func buildSite(cfg *config.Config) web.Site {
	site := web.Site{Title: cfg.Site.Title}
	if cfg.Analytics.Enabled {
		site.MeasurementID = cfg.Analytics.MeasurementID
	}
	for _, l := range cfg.Site.Links {
		site.Links = append(site.Links, web.Link{Label: l.Label, URL: l.URL})
	}
	for _, d := range cfg.Site.Donations {
		site.Donations = append(site.Donations, web.Donation{Label: d.Label, Address: d.Address})
	}
	return site
}

// Close releases resources in reverse order of acquisition.
func (sc *ServiceContext) Close() error {
	for i := len(sc.closerChain) - 1; i >= 0; i-- {
		if err := sc.closerChain[i](); err != nil {
			log.Error().Err(err).Msg("error closing resource")
		}
	}
	sc.closerChain = nil
	return nil
}
