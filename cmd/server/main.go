package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/snapurl/snapurl/config"
	appcache "github.com/snapurl/snapurl/internal/app/cache"
	appmodel "github.com/snapurl/snapurl/internal/app/model"
	apprepository "github.com/snapurl/snapurl/internal/app/repository"
	appserver "github.com/snapurl/snapurl/internal/app/server"
	appservice "github.com/snapurl/snapurl/internal/app/service"
	"github.com/snapurl/snapurl/internal/http/middleware"
	"github.com/snapurl/snapurl/internal/infra/logger"
	infraNATS "github.com/snapurl/snapurl/internal/infra/nats"
	infraPostgres "github.com/snapurl/snapurl/internal/infra/postgres"
	infraPrometheus "github.com/snapurl/snapurl/internal/infra/prometheus"
	infraRedis "github.com/snapurl/snapurl/internal/infra/redis"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	isDev := os.Getenv("APP_ENV") != "production"
	log := logger.MustInit(logger.Config{
		Development: isDev,
		Level:       os.Getenv("LOG_LEVEL"),
	})
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config", zap.Error(err))
	}

	log.Info("Configuration loaded successfully",
		zap.String("postgres_user", cfg.Postgres.User),
		zap.String("postgres_host", cfg.Postgres.Host),
		zap.Int("postgres_port", cfg.Postgres.Port),
		zap.String("postgres_db", cfg.Postgres.Database),
		zap.String("redis_host", cfg.Redis.Host),
		zap.Int("redis_port", cfg.Redis.Port),
		zap.String("nats_host", cfg.NATS.Host),
		zap.Int("nats_port", cfg.NATS.Port),
	)

	gormDB, err := infraPostgres.NewGorm(cfg.Postgres)
	if err != nil {
		log.Fatal("Failed to open GORM connection", zap.Error(err))
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatal("Failed to access underlying SQL DB", zap.Error(err))
	}
	defer sqlDB.Close()

	if err := infraPostgres.AutoMigrate(ctx, gormDB, &appmodel.URLMapping{}); err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}

	pool, err := infraPostgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal("Failed to connect to Postgres", zap.Error(err))
	}
	defer pool.Close()

	log.Info("Connected to Postgres successfully")

	redisClient, err := infraRedis.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("Connected to Redis successfully")

	natsConn, js, err := infraNATS.Connect(cfg.NATS)
	if err != nil {
		log.Fatal("Failed to connect to NATS", zap.Error(err))
	}
	defer natsConn.Drain()
	log.Info("Connected to NATS successfully", zap.Bool("jetstream_ready", js != nil))

	if !isDev {
		promServer := infraPrometheus.NewServer(cfg.Prometheus)
		go func() {
			log.Info("Starting Prometheus metrics server",
				zap.Int("port", cfg.Prometheus.Port))
			if err := promServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Prometheus metrics server stopped unexpectedly", zap.Error(err))
			}
		}()
		defer func() {
			if err := promServer.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Warn("Failed to close Prometheus server", zap.Error(err))
			}
		}()
	} else {
		log.Info("Skipping Prometheus metrics server in development mode")
	}

	urlRepo := apprepository.NewURLRepository(gormDB)
	fastCache := appcache.NewRedisCache(redisClient)

	codeFilter := appservice.NewCodeFilter(cfg.Bloom.Capacity, cfg.Bloom.FalsePositiveRate)
	codes, err := urlRepo.ActiveShortCodes(ctx)
	if err != nil {
		log.Fatal("Failed to seed short-code filter", zap.Error(err))
	}
	codeFilter.Seed(codes)
	log.Info("Seeded short-code filter", zap.Int("codes", len(codes)))

	publisher := appservice.NewURLEventPublisher(js)

	consumer := appservice.NewURLEventConsumer(js, log)
	if err := consumer.Start(); err != nil {
		log.Fatal("Failed to start url event consumer", zap.Error(err))
	}

	urlService := appservice.NewURLService(appservice.URLServiceDeps{
		Logger:          log,
		Repo:            urlRepo,
		Cache:           fastCache,
		Filter:          codeFilter,
		Publisher:       publisher,
		DefaultCacheTTL: time.Duration(cfg.App.DefaultCacheTTLHours) * time.Hour,
	})

	aggregator := appservice.NewClickAggregator(log, urlRepo, fastCache,
		time.Duration(cfg.Aggregator.IntervalSeconds)*time.Second)
	aggregator.Start()
	defer aggregator.Stop()

	rateLimit := middleware.DefaultRateLimitConfig()
	if cfg.RateLimit.MaxRequests > 0 {
		rateLimit.MaxRequests = cfg.RateLimit.MaxRequests
	}
	if cfg.RateLimit.WindowSeconds > 0 {
		rateLimit.Window = time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
	}

	server := appserver.New(appserver.Dependencies{
		Logger:    log,
		Postgres:  pool,
		Redis:     redisClient,
		Cache:     fastCache,
		NATS:      natsConn,
		JetStream: js,
		Service:   urlService,
		BaseURL:   cfg.App.BaseURL,
		RateLimit: rateLimit,
	})

	if err := server.Listen(":8080"); err != nil {
		log.Fatal("Fiber server exited", zap.Error(err))
	}
}
