// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"courtdesk/internal/audit"
	"courtdesk/internal/booking"
	"courtdesk/internal/catalog"
	"courtdesk/internal/config"
	"courtdesk/internal/events"
	"courtdesk/internal/lock"
	"courtdesk/internal/membership"
	"courtdesk/internal/observability"
	"courtdesk/internal/store"

	"github.com/redis/go-redis/v9"
)

type repository interface {
	catalog.Repository
	membership.Repository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := observability.NewLogger(observability.LogConfig{
		Level:          cfg.LogLevel,
		Format:         cfg.LogFormat,
		ServiceName:    "courtdesk-api",
		ServiceVersion: cfg.ServiceVersion,
		AddSource:      cfg.IsProduction(),
	})
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("api stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	shutdownTracing, err := observability.SetupTracing(ctx, observability.TracingConfig{
		Endpoint:       cfg.OTLPEndpoint,
		ServiceName:    "courtdesk-api",
		ServiceVersion: cfg.ServiceVersion,
		Environment:    cfg.AppEnv,
	})
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("failed to flush traces", "error", err)
		}
	}()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	repo, ping, closeRepo, err := openRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepo()
	logger.Info("storage ready", "driver", cfg.DatabaseDriver)

	locker, closeLocker, err := openLocker(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeLocker()

	publisher := openPublisher(cfg, logger)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("failed to close publisher", "error", err)
		}
	}()

	plans := catalog.NewService(repo, cfg.OrganizationID, logger)
	if cfg.SeedPlans {
		added, err := plans.Seed(ctx, catalog.DefaultPlans(cfg.OrganizationID))
		if err != nil {
			return fmt.Errorf("seed plans: %w", err)
		}
		logger.Info("catalog seeded", "added", added)
	}

	ledger := membership.NewService(repo, plans,
		membership.WithLocation(loc),
		membership.WithLocker(locker),
		membership.WithPublisher(publisher),
		membership.WithLogger(logger),
		membership.WithOrganization(cfg.OrganizationID),
	)

	router := NewRouter(RouterDeps{
		Logger:         logger,
		Catalog:        plans,
		Ledger:         ledger,
		Booking:        booking.NewService(ledger, logger),
		Auditor:        audit.NewAuditor(repo, logger),
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimit:      cfg.RateLimitPerMinute,
		Ping:           ping,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 20 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api listening", "port", cfg.Port, "timezone", loc.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openRepository(ctx context.Context, cfg *config.Config) (repository, func(context.Context) error, func(), error) {
	if cfg.DatabaseDriver == "memory" {
		return store.NewMemoryStore(), nil, func() {}, nil
	}
	s, err := store.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, err
	}
	return s, s.Ping, func() { _ = s.Close() }, nil
}

// openLocker uses Redis when configured so several API replicas serialize
// on the same membership.
func openLocker(ctx context.Context, cfg *config.Config, logger *slog.Logger) (lock.Locker, func(), error) {
	if cfg.RedisURL == "" {
		return lock.NewKeyedMutex(), func() {}, nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("using redis locks")
	return lock.NewRedisLocker(client, 10*time.Second, logger), func() { _ = client.Close() }, nil
}

func openPublisher(cfg *config.Config, logger *slog.Logger) events.Publisher {
	if cfg.RabbitMQURL == "" {
		return events.NewLogPublisher(logger)
	}
	rabbit, err := events.NewRabbitMQPublisher(cfg.RabbitMQURL, logger)
	if err != nil {
		if cfg.IsProduction() {
			logger.Error("RabbitMQ not available, ledger events will only be logged", "error", err)
		} else {
			logger.Warn("RabbitMQ not available, using log publisher", "error", err)
		}
		return events.NewLogPublisher(logger)
	}
	bc := events.DefaultBreakerConfig()
	if cfg.BreakerThreshold > 0 {
		bc.FailureThreshold = uint32(cfg.BreakerThreshold)
	}
	bc.Timeout = cfg.BreakerTimeout
	return events.NewBreakerPublisher(rabbit, bc, logger)
}
