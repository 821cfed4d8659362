package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"SignalPilot/internal/api"
	"SignalPilot/internal/collector"
	"SignalPilot/internal/config"
	"SignalPilot/internal/engine"
	"SignalPilot/internal/journal"
	"SignalPilot/internal/levels"
	"SignalPilot/internal/marketdata"
	"SignalPilot/internal/notifier"
	"SignalPilot/internal/verifier"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Info().Msg("SignalPilot starting")

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}

	// Market data provider
	var fetcher marketdata.Fetcher
	if cfg.Market.Provider == "twelvedata" {
		fetcher = marketdata.NewTwelveDataFetcher(cfg.Market.BaseURL, cfg.Market.APIKey)
	} else {
		fetcher = &marketdata.MockFetcher{Price: 2650}
	}
	log.Info().Str("provider", fetcher.Name()).Msg("market data source")

	// Journal store; fall back to an in-memory journal rather than refuse
	// to start when the database cannot be opened.
	var store journal.Store
	if sqlStore, err := journal.NewSQLiteStore(cfg.Journal.SQLitePath); err != nil {
		log.Warn().Err(err).Msg("sqlite journal unavailable, using in-memory store")
		store = journal.NewMemoryStore()
	} else {
		store = sqlStore
	}
	jnl := journal.New(store)
	defer jnl.Close()

	eng := engine.New(engine.DefaultWeights())

	lc := levels.NewCalculator()
	copy(lc.BuyLadder[:], cfg.Levels.BuyLadder)
	copy(lc.SellLadder[:], cfg.Levels.SellLadder)

	col := collector.New(fetcher)

	var alerter api.Notifier
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		alerter = notifier.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		log.Info().Msg("telegram alerts enabled")
	}

	ver := verifier.New(jnl, fetcher, verifier.Options{
		Interval:     cfg.Verify.Interval.Std(),
		Dwell:        cfg.Verify.Dwell.Std(),
		FetchTimeout: cfg.Verify.FetchTimeout.Std(),
	})
	ver.Start()
	defer ver.Stop()

	srv := api.New(cfg.Server.ListenAddr, eng, col, jnl, lc, cfg.Market.Benchmark, alerter)
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Info().Msg("shutdown signal received, stopping")
	case err := <-serveErr:
		log.Error().Err(err).Msg("http server failed, stopping")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	log.Info().Msg("SignalPilot stopped")
}
