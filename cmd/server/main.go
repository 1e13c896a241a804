package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jianyuhu/TinyLink/config"
	appcache "github.com/jianyuhu/TinyLink/internal/app/cache"
	"github.com/jianyuhu/TinyLink/internal/app/generator"
	"github.com/jianyuhu/TinyLink/internal/app/kv"
	appmodel "github.com/jianyuhu/TinyLink/internal/app/model"
	apprepository "github.com/jianyuhu/TinyLink/internal/app/repository"
	appserver "github.com/jianyuhu/TinyLink/internal/app/server"
	"github.com/jianyuhu/TinyLink/internal/app/sequence"
	appservice "github.com/jianyuhu/TinyLink/internal/app/service"
	"github.com/jianyuhu/TinyLink/internal/http/middleware"
	"github.com/jianyuhu/TinyLink/internal/infra/logger"
	infraNATS "github.com/jianyuhu/TinyLink/internal/infra/nats"
	infraPostgres "github.com/jianyuhu/TinyLink/internal/infra/postgres"
	infraPrometheus "github.com/jianyuhu/TinyLink/internal/infra/prometheus"
	infraRedis "github.com/jianyuhu/TinyLink/internal/infra/redis"
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

	log.Info("Configuration loaded",
		zap.String("postgres_host", cfg.Postgres.Host),
		zap.Int("postgres_port", cfg.Postgres.Port),
		zap.String("postgres_db", cfg.Postgres.Database),
		zap.String("redis_host", cfg.Redis.Host),
		zap.Int("redis_port", cfg.Redis.Port),
		zap.String("nats_host", cfg.NATS.Host),
		zap.Int("nats_port", cfg.NATS.Port),
		zap.Int("app_port", cfg.App.Port),
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

	if err := infraPostgres.AutoMigrate(ctx, gormDB, &appmodel.Link{}); err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}

	pool, err := infraPostgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal("Failed to connect to Postgres", zap.Error(err))
	}
	defer pool.Close()
	log.Info("Connected to Postgres")

	redisClient, err := infraRedis.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("Connected to Redis")

	natsConn, js, err := infraNATS.Connect(cfg.NATS)
	if err != nil {
		log.Fatal("Failed to connect to NATS", zap.Error(err))
	}
	defer natsConn.Drain()
	log.Info("Connected to NATS", zap.Bool("jetstream_ready", js != nil))

	if !isDev {
		promServer := infraPrometheus.NewServer(cfg.Prometheus)
		go func() {
			log.Info("Starting Prometheus metrics server", zap.String("addr", promServer.Addr))
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

	// Core wiring: counter in Redis, links in Postgres, cache-aside reads.
	store := kv.NewRedis(redisClient)

	allocator := sequence.NewAllocator(store)
	if err := allocator.Initialize(ctx); err != nil {
		log.Fatal("Failed to initialize counter", zap.Error(err))
	}
	log.Info("Counter ready", zap.String("key", sequence.CounterKey))

	linkRepo := apprepository.NewLinkRepository(gormDB)
	gen := generator.New(allocator, linkRepo, log,
		generator.WithMaxAttempts(cfg.App.MaxAttempts))

	resolver := appcache.NewResolver(store, linkRepo, log,
		appcache.WithTTL(cfg.App.CacheTTL),
		appcache.WithBloom(cfg.App.BloomSize, cfg.App.BloomFPRate))

	codes, err := infraPostgres.AllShortCodes(ctx, pool)
	if err != nil {
		log.Fatal("Failed to seed bloom filter", zap.Error(err))
	}
	resolver.Seed(codes)
	log.Info("Bloom filter seeded", zap.Int("codes", len(codes)))

	publisher := appservice.NewLinkPublisher(js)
	consumer := warmerConsumerName(cfg.App.ConsumerPrefix)
	warmer := appservice.NewCacheWarmer(js, resolver, log, consumer)
	log.Info("Cache warmer consumer", zap.String("name", consumer))
	if err := warmer.Start(); err != nil {
		log.Fatal("Failed to start cache warmer", zap.Error(err))
	}
	defer warmer.Stop()

	linkService := appservice.NewLinkService(gen, resolver, publisher, log)

	rateLimit := middleware.DefaultRateLimitConfig()
	if cfg.App.RateLimit > 0 {
		rateLimit.MaxRequests = cfg.App.RateLimit
	}

	srv := appserver.New(appserver.Dependencies{
		Logger:      log,
		Redis:       redisClient,
		LinkService: linkService,
		BaseURL:     cfg.App.BaseURL,
		RateLimit:   rateLimit,
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Shutdown failed", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	log.Info("Listening", zap.String("addr", addr))
	if err := srv.Listen(addr); err != nil {
		log.Fatal("Fiber server exited", zap.Error(err))
	}
}

// warmerConsumerName derives a per-instance durable consumer from the
// configured prefix. A shared durable would split the event stream across
// instances, and every instance needs every event to keep its bloom guard
// complete.
func warmerConsumerName(prefix string) string {
	if prefix == "" {
		prefix = appmodel.LinkConsumerName
	}
	host, err := os.Hostname()
	if err != nil || host == "" {
		return prefix + "-" + uuid.NewString()[:8]
	}
	return prefix + "-" + sanitizeConsumerName(host)
}

// sanitizeConsumerName keeps the characters JetStream allows in durable
// names; '.' in particular is reserved for subject tokens.
func sanitizeConsumerName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, s)
}
