package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noval-eka/storefront/internal/cache"
	"github.com/noval-eka/storefront/internal/checkout"
	"github.com/noval-eka/storefront/internal/config"
	"github.com/noval-eka/storefront/internal/events"
	"github.com/noval-eka/storefront/internal/obs"
	"github.com/noval-eka/storefront/internal/queue"
	"github.com/noval-eka/storefront/internal/repo"
	"github.com/noval-eka/storefront/internal/voucher"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("component", "worker").Logger()

	metricsNamespace := envOrDefault("OBS_METRICS_NAMESPACE", "storefront")
	obs.MustRegisterDomainMetrics(metricsNamespace, nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool := mustInitDatabase(ctx, cfg, logger)
	defer pool.Close()

	redisClient := mustInitRedis(ctx, cfg, logger)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()

	store := repo.NewStore(pool)

	bus := &events.Bus{
		Store:     store.Events,
		Notifiers: []events.Notifier{events.LogNotifier{Log: logger}},
	}

	resolver := voucher.Resolver{Source: &cache.VoucherSource{
		Client:   redisClient,
		Fallback: voucher.StoreSource{Vouchers: store.Vouchers},
		TTL:      cfg.VoucherCacheTTL,
	}}

	checkoutSvc := &checkout.Service{
		Carts:    store.Carts,
		Catalog:  store.Catalog,
		Shipping: store.Shipping,
		Resolver: resolver,
		Events:   bus,
		Log:      logger,
	}

	tasks := &queue.Handler{
		Carts:    store.Carts,
		Checkout: checkoutSvc,
		Log:      logger,
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	asynqRedis := asynq.RedisClientOpt{
		Addr:     redisOpts.Addr,
		Password: redisOpts.Password,
		DB:       redisOpts.DB,
	}

	srv := asynq.NewServer(asynqRedis, asynq.Config{
		Concurrency: cfg.WorkerConcurrency,
	})

	scheduler := asynq.NewScheduler(asynqRedis, &asynq.SchedulerOpts{})
	if _, err := scheduler.Register(every(cfg.CartPruneInterval), queue.NewCartPruneTask()); err != nil {
		logger.Fatal().Err(err).Msg("register cart prune schedule")
	}
	if _, err := scheduler.Register(every(cfg.DiscountSyncInterval), queue.NewDiscountResyncTask()); err != nil {
		logger.Fatal().Err(err).Msg("register discount resync schedule")
	}
	if err := scheduler.Start(); err != nil {
		logger.Fatal().Err(err).Msg("start scheduler")
	}
	defer scheduler.Shutdown()

	go func() {
		<-ctx.Done()
		logger.Info().Msg("shutdown signal received")
		srv.Shutdown()
	}()

	logger.Info().Msg("worker starting")
	if err := srv.Run(tasks.Mux()); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("worker stopped with error")
	} else {
		logger.Info().Msg("worker shutdown complete")
	}
}

func every(interval time.Duration) string {
	return fmt.Sprintf("@every %s", interval)
}

func mustInitDatabase(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *pgxpool.Pool {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse database config")
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = "storefront-worker"
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	if err := pool.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}
	return pool
}

func mustInitRedis(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *redis.Client {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	client := redis.NewClient(opts)
	if err := redisotel.InstrumentTracing(client); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}
	return client
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}
