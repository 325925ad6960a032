package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/HerbHall/cinelens/internal/catalog"
	"github.com/HerbHall/cinelens/internal/library"
	"github.com/HerbHall/cinelens/internal/server"
	"github.com/HerbHall/cinelens/internal/services"
	"github.com/HerbHall/cinelens/internal/store"
	pkgcatalog "github.com/HerbHall/cinelens/pkg/catalog"
)

// watchDebounce collapses bursts of catalog file events.
const watchDebounce = 500 * time.Millisecond

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}
}

func runServe(cmd *cobra.Command, opts *rootOptions) error {
	settings, err := loadSettings(opts)
	if err != nil {
		return err
	}

	logger, err := newLogger(settings.Log.Level)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Cinelens server starting")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.New(settings.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	state, err := services.NewSQLiteStateRepository(ctx, db)
	if err != nil {
		return err
	}
	projects, err := services.NewSQLiteProjectRepository(ctx, db)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	catalogMetrics := catalog.NewMetrics(reg)
	libraryMetrics := library.NewMetrics(reg)

	src, err := catalogSource(settings)
	if err != nil {
		return err
	}
	cat := pkgcatalog.NewCatalog()
	catalogLogger := logger.Named("catalog")
	refresher := pkgcatalog.NewRefresher(cat, src, catalogLogger, catalogMetrics.ObserveReload)
	if err := refresher.Reload(ctx); err != nil {
		// The embedded catalog stays active until a later reload succeeds.
		logger.Warn("initial catalog load failed, serving embedded catalog", zap.Error(err))
		if snap, snapErr := cat.Snapshot(); snapErr == nil {
			catalogMetrics.ObserveSnapshot(snap)
		}
	}
	engine := catalog.NewEngine(cat).WithMetrics(catalogMetrics)

	lib, err := library.New(ctx, services.NewIDSetRepository(state), projects, logger.Named("library"), library.Options{
		PersistComparison: settings.Library.PersistComparison,
		Metrics:           libraryMetrics,
	})
	if err != nil {
		return err
	}
	defer lib.Close()

	srv := server.New(server.Options{
		Addr:      settings.Addr(),
		RateLimit: settings.Server.RateLimit.RPS,
		Burst:     settings.Server.RateLimit.Burst,
		Gatherer:  reg,
	}, logger,
		catalog.NewHandler(engine, refresher, catalogLogger),
		library.NewHandler(lib, engine, logger.Named("library")),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		refresher.Run(gctx, settings.Catalog.RefreshInterval)
		return nil
	})
	if settings.Catalog.Watch && settings.Catalog.Source == "file" {
		g.Go(func() error {
			err := pkgcatalog.Watch(gctx, settings.Catalog.File, watchDebounce, func() {
				_ = refresher.Reload(gctx)
			})
			if err != nil {
				catalogLogger.Error("catalog watcher stopped", zap.Error(err))
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown requested")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		lib.Close()
		return srv.Shutdown(shutdownCtx)
	})

	logger.Info("Cinelens server ready",
		zap.String("addr", settings.Addr()),
		zap.String("catalog_source", src.Name()),
	)

	err = g.Wait()
	logger.Info("Cinelens server stopped")
	return err
}
