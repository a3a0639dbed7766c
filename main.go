package main

import (
	"context"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/purserdev/purser/config"
	"github.com/purserdev/purser/internal/scheduler"
	"github.com/purserdev/purser/internal/services/checker"
	"github.com/purserdev/purser/internal/services/digest"
	"github.com/purserdev/purser/internal/services/notifier"
	"github.com/purserdev/purser/internal/services/scraper"
	"github.com/purserdev/purser/internal/services/watchlist"
	"github.com/purserdev/purser/internal/setup"
	"github.com/purserdev/purser/internal/storage"
	"github.com/purserdev/purser/internal/storage/postgres"
	"github.com/purserdev/purser/internal/storage/walstore"
	"github.com/purserdev/purser/internal/web"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Get()
	if err != nil {
		logger.Fatal("failed to get configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to open store", zap.Error(err))
	}
	defer store.Close()

	if cfg.AddMode {
		if err := setup.RunAddWizard(ctx, store); err != nil {
			logger.Fatal("wizard failed", zap.Error(err))
		}
		return
	}

	registry := scraper.NewRegistry(&scraper.GenericAdapter{}, &scraper.EbayAdapter{})
	sessions := scraper.NewCollyFactory(cfg.UserAgent, cfg.FetchTimeout)
	fetcher := scraper.NewFetcher(sessions, registry, cfg.FetchTimeout, logger)

	check := checker.New(store, fetcher, cfg.FetchWorkers, logger)
	rows := watchlist.NewService(store)

	mailer := notifier.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, logger)
	daily := digest.New(rows, mailer, cfg.DigestRecipient, logger)

	server := web.NewServer(cfg.ListenAddr, rows, store, check, logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return scheduler.Run(ctx, logger, scheduler.Config{
			CheckInterval: cfg.CheckInterval,
			DigestTime:    cfg.DigestTime,
		}, check.CheckAllItems, daily.SendDaily)
	})
	g.Go(func() error {
		if len(cfg.TLSDomains) > 0 {
			return server.StartWithAutoTLS(ctx, cfg.TLSDomains, cfg.TLSCacheDir)
		}
		return server.Start(ctx)
	})

	logger.Info("purser started", zap.String("addr", cfg.ListenAddr))
	if err := g.Wait(); err != nil {
		logger.Error(err.Error())
	}
}

func openStore(ctx context.Context, cfg config.Config) (storage.Store, error) {
	if cfg.DatabaseURL != "" {
		st, err := postgres.NewStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := st.EnsureSchema(ctx); err != nil {
			st.Close()
			return nil, err
		}
		return st, nil
	}
	return walstore.NewStore(cfg.WALDir)
}
