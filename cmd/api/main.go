package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/angelmondragon/mia-backend/api/routes"
	"github.com/angelmondragon/mia-backend/internal/catalog"
	"github.com/angelmondragon/mia-backend/internal/notifications"
	"github.com/angelmondragon/mia-backend/internal/pricing"
	"github.com/angelmondragon/mia-backend/internal/tracking"
	"github.com/angelmondragon/mia-backend/internal/users"
	"github.com/angelmondragon/mia-backend/internal/wishlist"
	"github.com/angelmondragon/mia-backend/pkg/config"
	"github.com/angelmondragon/mia-backend/pkg/db"
	"github.com/angelmondragon/mia-backend/pkg/instance"
	"github.com/angelmondragon/mia-backend/pkg/logger"
	"github.com/angelmondragon/mia-backend/pkg/metrics"
	"github.com/angelmondragon/mia-backend/pkg/migrate"
	"github.com/angelmondragon/mia-backend/pkg/redis"
	"github.com/angelmondragon/mia-backend/pkg/search"
	"github.com/angelmondragon/mia-backend/pkg/serpapi"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// prices go out as JSON numbers, not strings
	decimal.MarshalJSONWithoutQuotes = true

	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Instance:    instance.GetID(),
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	searchMetrics := metrics.NewSearchMetrics(prometheus.DefaultRegisterer)
	trackingMetrics := metrics.NewTrackingMetrics(prometheus.DefaultRegisterer)

	var searcher, liveSearcher search.Searcher
	searcher, err = serpapi.NewSearcher(cfg.SerpAPI, redisClient, cfg.FeatureFlags.SearchCache, logg, searchMetrics)
	if err == nil {
		liveSearcher, err = serpapi.NewLiveSearcher(cfg.SerpAPI, searchMetrics)
	}
	switch {
	case errors.Is(err, serpapi.ErrNotConfigured):
		logg.Warn(context.Background(), "serpapi key missing; live search disabled")
	case err != nil:
		logg.Error(context.Background(), "failed to create search client", err)
		os.Exit(1)
	}

	pricingService, err := pricing.NewService(pricing.ServiceParams{
		Catalog:     catalog.NewRepository(dbClient.DB()),
		Searcher:    searcher,
		Logger:      logg,
		CallTimeout: cfg.Pricing.CallTimeout,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create pricing service", err)
		os.Exit(1)
	}

	wishRepo := wishlist.NewRepository(dbClient.DB())
	wishlistService, err := wishlist.NewService(wishlist.ServiceParams{WishlistRepo: wishRepo})
	if err != nil {
		logg.Error(context.Background(), "failed to create wishlist service", err)
		os.Exit(1)
	}

	userService, err := users.NewService(users.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create user service", err)
		os.Exit(1)
	}

	deps := routes.Deps{
		DB:          dbClient,
		Redis:       redisClient,
		RateLimiter: redisClient,
		Gatherer:    prometheus.DefaultGatherer,
		Pricing:     pricingService,
		Wishlist:    wishlistService,
		Users:       userService,
	}

	if liveSearcher != nil {
		notifier, err := notifications.FromConfig(context.Background(), cfg, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to create notifier", err)
			os.Exit(1)
		}
		tracker, err := tracking.NewTracker(tracking.TrackerParams{
			Store:       wishRepo,
			Searcher:    liveSearcher,
			Notifier:    notifier,
			Logger:      logg,
			Metrics:     trackingMetrics,
			BatchSize:   cfg.Tracking.BatchSize,
			Concurrency: cfg.Tracking.Concurrency,
			CallTimeout: cfg.Tracking.CallTimeout,
			Source:      cfg.Tracking.DefaultSource,
		})
		if err != nil {
			logg.Error(context.Background(), "failed to create tracker", err)
			os.Exit(1)
		}
		deps.Tracker = tracker
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	exitCode := 0
	select {
	case err := <-serveErr:
		if err != nil {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			exitCode = 1
		}
	case <-sigCtx.Done():
		logg.Info(ctx, "shutdown signal received")
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	closeErr := multierr.Combine(
		server.Shutdown(shutdownCtx),
		redisClient.Close(),
		dbClient.Close(),
	)
	cancel()
	if closeErr != nil {
		logg.Error(ctx, "errors during shutdown", closeErr)
		exitCode = 1
	}
	logg.Info(ctx, "api server stopped")
	os.Exit(exitCode)
}
