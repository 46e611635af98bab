// Command tradesim runs the virtual asset trading simulator. It serves a
// JSON API for deposits and trades, and a background sweep loop that closes
// open positions when their exit conditions trigger.
//
// Usage:
//
//	tradesim --config config.yaml
//	tradesim setup   (interactive configuration wizard)
//	tradesim         (uses CLI arguments)
//
// Optional environment variables:
//
//	For Binance: BINANCE_API_KEY, BINANCE_API_SECRET
//	For Bybit: BYBIT_API_KEY, BYBIT_API_SECRET
//	For Hyperliquid: HYPERLIQUID_PRIVATE_KEY
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/antonkovalev/tradesim/config"
	"github.com/antonkovalev/tradesim/internal/clients"
	"github.com/antonkovalev/tradesim/internal/ledger"
	"github.com/antonkovalev/tradesim/internal/services/entry"
	"github.com/antonkovalev/tradesim/internal/services/market"
	"github.com/antonkovalev/tradesim/internal/services/settle"
	"github.com/antonkovalev/tradesim/internal/services/sweep"
	"github.com/antonkovalev/tradesim/internal/setup"
	"github.com/antonkovalev/tradesim/internal/storage/accounts"
	"github.com/antonkovalev/tradesim/internal/web"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("simulator stopped with error", zap.Error(err))
	}
	logger.Info("simulator stopped")
}

func loadConfig() (config.Config, error) {
	if len(os.Args) > 1 && os.Args[1] == "setup" {
		if err := setup.RunTUI(); err != nil {
			return config.Config{}, err
		}
		raw, err := os.ReadFile("config.gen.yaml")
		if err != nil {
			return config.Config{}, errors.Wrap(err, "failed to read generated config")
		}
		return config.Parse(raw)
	}
	return config.Get()
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	store, err := accounts.NewWALStore(cfg.WALDir)
	if err != nil {
		return errors.Wrap(err, "failed to open account store")
	}
	defer store.Close()

	book := ledger.New(store, logger)

	defaults := market.DefaultAssetDefaults()
	provider, err := buildProvider(ctx, cfg, defaults)
	if err != nil {
		return err
	}

	// entry falls back to synthetic prices when the exchange is down; the
	// sweep uses the raw provider so a dead feed skips positions instead of
	// settling them against made-up prices
	entryProvider := provider
	if cfg.Provider != "fallback" {
		synthetic := market.NewFallbackProvider(cfg.FallbackBasePrice, defaults)
		entryProvider = market.NewFailoverProvider(provider, synthetic, logger)
	}
	evaluator := entry.NewEvaluator(book, entryProvider, logger)

	registry := prometheus.NewRegistry()
	sweeper := sweep.New(book, provider, settle.NewSettler(logger), cfg.Tiers,
		sweep.Config{
			Interval:     cfg.SweepInterval,
			FetchTimeout: cfg.FetchTimeout,
			Workers:      cfg.SweepWorkers,
		},
		logger, sweep.NewMetrics(registry))

	server := web.NewServer(cfg.ListenAddr, evaluator, book, registry, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := sweeper.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if len(cfg.TLSDomains) > 0 {
			return server.StartWithAutoTLS(gctx, cfg.TLSDomains, cfg.TLSCacheDir)
		}
		return server.Start(gctx)
	})

	return g.Wait()
}

func buildProvider(ctx context.Context, cfg config.Config, defaults market.AssetDefaults) (market.Provider, error) {
	switch cfg.Provider {
	case "binance":
		return market.NewBinanceProvider(clients.NewBinanceClient(), cfg.QuoteAsset, defaults), nil
	case "bybit":
		return market.NewBybitProvider(clients.NewBybitClient(), cfg.QuoteAsset, defaults), nil
	case "hyperliquid":
		client, err := clients.NewHyperliquidClient(ctx, "")
		if err != nil {
			return nil, errors.Wrap(err, "failed to build hyperliquid client")
		}
		return market.NewHyperliquidProvider(client.Info(), defaults), nil
	default:
		return market.NewFallbackProvider(cfg.FallbackBasePrice, defaults), nil
	}
}
