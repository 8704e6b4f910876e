package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"nvcompare/internal/infrastructure/config"
	"nvcompare/internal/infrastructure/logger"
	"nvcompare/internal/infrastructure/svc"
)

func main() {
	logger.Setup()

	configPath := flag.String("config", "configs/config.toml", "path to config.toml")
	flag.Parse()

	if err := run(*configPath); err != nil {
		log.Error().Err(err).Msg("nvcompare exited")
		os.Exit(1)
	}
	log.Info().Msg("nvcompare stopped")
}

// run returns only after every resource opened here has been released.
func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config %s: %w", configPath, err)
	}
	logger.SetLevel(cfg.App.LogLevel)

	if cfg.Quote.APIKey == "" {
		log.Warn().Str("env", cfg.Quote.APIKeyEnv).Msg("quote api key not set; upstream will reject requests")
	}
	if cfg.CacheMismatch() {
		log.Warn().
			Int("upstream_cache_sec", cfg.Quote.UpstreamCacheSec).
			Int("s_maxage_sec", cfg.Proxy.SMaxAgeSec).
			Msg("proxy cache lifetime differs from upstream cache lifetime")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sc, err := svc.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("service context init: %w", err)
	}
	defer sc.Close()

	log.Info().
		Str("config", configPath).
		Str("addr", cfg.App.Addr).
		Str("symbol", cfg.Quote.Symbol).
		Dur("quote_every", cfg.QuotePollInterval()).
		Dur("crypto_every", cfg.CryptoPollInterval()).
		Msg("nvcompare started")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sc.View.Run(gctx) })
	g.Go(func() error { return sc.Server.Run(gctx) })

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
