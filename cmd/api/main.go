package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/marcosvillarreal/reelstack-backend/api/routes"
	"github.com/marcosvillarreal/reelstack-backend/internal/assets"
	"github.com/marcosvillarreal/reelstack-backend/internal/auth"
	"github.com/marcosvillarreal/reelstack-backend/internal/batch"
	"github.com/marcosvillarreal/reelstack-backend/internal/imaging"
	"github.com/marcosvillarreal/reelstack-backend/internal/reels"
	"github.com/marcosvillarreal/reelstack-backend/internal/themes"
	"github.com/marcosvillarreal/reelstack-backend/internal/users"
	"github.com/marcosvillarreal/reelstack-backend/pkg/auth/session"
	"github.com/marcosvillarreal/reelstack-backend/pkg/config"
	"github.com/marcosvillarreal/reelstack-backend/pkg/db"
	"github.com/marcosvillarreal/reelstack-backend/pkg/instance"
	"github.com/marcosvillarreal/reelstack-backend/pkg/logger"
	"github.com/marcosvillarreal/reelstack-backend/pkg/metrics"
	"github.com/marcosvillarreal/reelstack-backend/pkg/migrate"
	"github.com/marcosvillarreal/reelstack-backend/pkg/redis"
	"github.com/marcosvillarreal/reelstack-backend/pkg/storage/gcs"
	"github.com/marcosvillarreal/reelstack-backend/pkg/vision"
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

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
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

	gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap object storage", err)
		os.Exit(1)
	}
	defer func() {
		if err := gcsClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing object storage", err)
		}
	}()

	visionClient, err := vision.NewClient(context.Background(), cfg.Vision, cfg.GCP)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap vision client", err)
		os.Exit(1)
	}
	defer func() {
		if err := visionClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing vision client", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	usersRepo := users.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       usersRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	processor := imaging.NewProcessor(cfg.Imaging)

	assetRepo := assets.NewRepository(dbClient.DB())
	resolver := assets.NewVersionResolver(assetRepo, cfg.Batch.VersionRetries)

	assetService, err := assets.NewService(assets.ServiceParams{
		Repo:      assetRepo,
		Resolver:  resolver,
		Storage:   gcsClient,
		Processor: processor,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create asset service", err)
		os.Exit(1)
	}

	reelService, err := reels.NewService(reels.ServiceParams{
		Repo: reels.NewRepository(dbClient.DB()),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create reel service", err)
		os.Exit(1)
	}

	themeService, err := themes.NewService(themes.ServiceParams{
		Repo: themes.NewRepository(dbClient.DB()),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create theme service", err)
		os.Exit(1)
	}

	executor, err := batch.NewExecutor(batch.ExecutorParams{
		Repo:      assetRepo,
		Resolver:  resolver,
		Storage:   gcsClient,
		Analyzer:  visionClient,
		Processor: processor,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create batch executor", err)
		os.Exit(1)
	}

	registry := batch.NewRegistry()
	dispatcher, err := batch.NewDispatcher(batch.DispatcherParams{
		Registry: registry,
		Executor: executor,
		Metrics:  metrics.NewBatchMetrics(prometheus.DefaultRegisterer),
		Logger:   logg,
		Config:   cfg.Batch,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create batch dispatcher", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			gcsClient,
			sessionManager,
			authService,
			usersRepo,
			assetService,
			reelService,
			themeService,
			dispatcher,
			registry,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
