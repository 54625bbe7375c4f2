package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/angelmondragon/mia-backend/internal/cron"
	"github.com/angelmondragon/mia-backend/internal/notifications"
	"github.com/angelmondragon/mia-backend/internal/tracking"
	"github.com/angelmondragon/mia-backend/internal/wishlist"
	"github.com/angelmondragon/mia-backend/pkg/config"
	"github.com/angelmondragon/mia-backend/pkg/db"
	"github.com/angelmondragon/mia-backend/pkg/instance"
	"github.com/angelmondragon/mia-backend/pkg/logger"
	"github.com/angelmondragon/mia-backend/pkg/metrics"
	"github.com/angelmondragon/mia-backend/pkg/migrate"
	"github.com/angelmondragon/mia-backend/pkg/redis"
	"github.com/angelmondragon/mia-backend/pkg/serpapi"
)

const lockName = "price-check"

func main() {
	once := flag.Bool("once", false, "run a single cycle and exit")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Instance:    instance.GetID(),
	})

	if err := run(cfg, logg, *once); err != nil {
		logg.Error(context.Background(), "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger, once bool) (err error) {
	bootCtx := context.Background()

	dbClient, err := db.New(bootCtx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(bootCtx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(bootCtx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	searcher, err := serpapi.NewLiveSearcher(cfg.SerpAPI, metrics.NewSearchMetrics(prometheus.DefaultRegisterer))
	if err != nil {
		return err
	}

	notifier, err := notifications.FromConfig(bootCtx, cfg, logg)
	if err != nil {
		return err
	}

	tracker, err := tracking.NewTracker(tracking.TrackerParams{
		Store:       wishlist.NewRepository(dbClient.DB()),
		Searcher:    searcher,
		Notifier:    notifier,
		Logger:      logg,
		Metrics:     metrics.NewTrackingMetrics(prometheus.DefaultRegisterer),
		BatchSize:   cfg.Tracking.BatchSize,
		Concurrency: cfg.Tracking.Concurrency,
		CallTimeout: cfg.Tracking.CallTimeout,
		Source:      cfg.Tracking.DefaultSource,
	})
	if err != nil {
		return err
	}

	job, err := cron.NewPriceCheckJob(cron.PriceCheckJobParams{Logger: logg, Tracker: tracker})
	if err != nil {
		return err
	}

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(lockName, cfg.App.Env), 0)
	if err != nil {
		return err
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(job),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Tracking.Interval,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"once":        once,
	})
	logg.Info(ctx, "starting cron worker")

	if once {
		return service.RunOnce(ctx)
	}
	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
	return nil
}
