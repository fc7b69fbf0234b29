package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ivanbelmonte/fincalia-backend/api/routes"
	"github.com/ivanbelmonte/fincalia-backend/internal/cron"
	"github.com/ivanbelmonte/fincalia-backend/internal/doctypes"
	"github.com/ivanbelmonte/fincalia-backend/internal/drafts"
	"github.com/ivanbelmonte/fincalia-backend/internal/leads"
	"github.com/ivanbelmonte/fincalia-backend/internal/media"
	"github.com/ivanbelmonte/fincalia-backend/internal/properties"
	"github.com/ivanbelmonte/fincalia-backend/pkg/config"
	"github.com/ivanbelmonte/fincalia-backend/pkg/db"
	"github.com/ivanbelmonte/fincalia-backend/pkg/logger"
	"github.com/ivanbelmonte/fincalia-backend/pkg/metrics"
	"github.com/ivanbelmonte/fincalia-backend/pkg/migrate"
	"github.com/ivanbelmonte/fincalia-backend/pkg/redis"
)

func main() {
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
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if cfg.FeatureFlags.AutoMigrate {
		sqlDB, err := dbClient.DB().DB()
		if err != nil {
			logg.Error(context.Background(), "failed to access sql database", err)
			os.Exit(1)
		}
		if err := migrate.Run(context.Background(), sqlDB, migrate.DefaultDir, "up"); err != nil {
			logg.Error(context.Background(), "failed to run migrations", err)
			os.Exit(1)
		}
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	promRegistry := prometheus.NewRegistry()
	draftMetrics := metrics.NewDraftMetrics(promRegistry)
	cronMetrics := metrics.NewCronJobMetrics(promRegistry)

	mediaStore, err := media.NewStore(media.NewRepository(dbClient.DB()), cfg.Media)
	if err != nil {
		logg.Error(context.Background(), "failed to create media store", err)
		os.Exit(1)
	}

	sessionRegistry := drafts.NewRegistry(redisClient, cfg.Drafts.LeaseTTL)
	draftManager, err := drafts.NewManager(mediaStore, sessionRegistry, logg, draftMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create draft manager", err)
		os.Exit(1)
	}

	propertyService, err := properties.NewService(properties.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create property service", err)
		os.Exit(1)
	}

	docTypeService, err := doctypes.NewService(doctypes.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create document type service", err)
		os.Exit(1)
	}

	leadService, err := leads.NewService(leads.NewRepository(dbClient.DB()), propertyService, redisClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create lead service", err)
		os.Exit(1)
	}

	// The stale-draft reaper shares this process: sessions live in the
	// in-memory registry, so an external worker could not see them.
	if err := startCron(cfg, logg, redisClient, sessionRegistry, draftManager, cronMetrics); err != nil {
		logg.Error(context.Background(), "failed to start cron service", err)
		os.Exit(1)
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
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:       cfg,
			Logger:       logg,
			DB:           dbClient,
			Redis:        redisClient,
			Properties:   propertyService,
			DocTypes:     docTypeService,
			Leads:        leadService,
			MediaStore:   mediaStore,
			DraftManager: draftManager,
			Gatherer:     promRegistry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func startCron(
	cfg *config.Config,
	logg *logger.Logger,
	redisClient *redis.Client,
	sessionRegistry *drafts.Registry,
	draftManager *drafts.Manager,
	cronMetrics *metrics.CronJobMetrics,
) error {
	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey("stale-draft-discard"), cfg.Cron.LockTTL)
	if err != nil {
		return err
	}

	staleJob, err := cron.NewStaleDraftDiscardJob(cron.StaleDraftDiscardJobParams{
		Logger:    logg,
		Sessions:  sessionRegistry,
		Discarder: draftManager,
		Retention: cfg.Cron.StaleDraftRetention,
	})
	if err != nil {
		return err
	}

	jobRegistry := cron.NewRegistry()
	jobRegistry.Register(staleJob)

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: jobRegistry,
		Lock:     lock,
		Metrics:  cronMetrics,
	})
	if err != nil {
		return err
	}

	go func() {
		if err := service.Run(context.Background()); err != nil && err != context.Canceled {
			logg.Error(context.Background(), "cron service stopped", err)
		}
	}()
	return nil
}
