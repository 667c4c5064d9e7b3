package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/playperu/blindtest/internal/catalog"
	"github.com/playperu/blindtest/internal/config"
	"github.com/playperu/blindtest/internal/database"
	"github.com/playperu/blindtest/internal/handler/health"
	"github.com/playperu/blindtest/internal/metrics"
	"github.com/playperu/blindtest/internal/migrations"
	"github.com/playperu/blindtest/internal/server"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- SQLite ---
	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("connecting to sqlite: %w", err)
	}
	defer db.Close()

	applied, err := migrations.Run(ctx, db)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("connected to sqlite", "path", cfg.DBPath, "migrations_applied", applied)

	checks := map[string]health.Checker{
		"sqlite": database.Checker{DB: db},
	}

	// --- Catalog cache: redis when configured, sqlite otherwise ---
	var (
		cache       catalog.Cache
		sqliteCache *catalog.SQLiteCache
	)
	if cfg.RedisURL != "" {
		rdb, err := openRedis(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rdb.Close()
		logger.Info("connected to redis")

		cache = catalog.NewRedisCache(rdb, cfg.CacheTTL)
		checks["redis"] = health.CheckFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	} else {
		sqliteCache = catalog.NewSQLiteCache(db, cfg.CacheTTL)
		cache = sqliteCache
	}

	client := catalog.NewClient(cfg.CatalogBaseURL, cfg.CatalogProxies, cfg.CatalogTimeout, logger)
	cat := catalog.New(client, logger, catalog.WithCache(cache))

	// --- Metrics ---
	metrics.Register(prometheus.DefaultRegisterer)

	// --- HTTP Server ---
	sessions := server.NewRegistry()
	api := server.NewAPI(logger, cat, sessions, server.WithSPA(cfg.SPADir))

	srv := server.New(cfg.HTTPAddr, logger, func(r chi.Router) {
		r.Mount("/healthz", health.NewHandler(logger, checks).Routes())
		r.Handle("/metrics", promhttp.Handler())
		api.Mount(r)
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	g.Go(func() error {
		every(gctx, time.Minute, func() {
			if ids := sessions.Sweep(cfg.SessionIdleTimeout); len(ids) > 0 {
				logger.Info("expired idle sessions", "count", len(ids))
			}
		})
		return nil
	})

	if sqliteCache != nil {
		g.Go(func() error {
			every(gctx, max(cfg.CacheTTL, time.Minute), func() {
				n, err := sqliteCache.Purge(gctx)
				if err != nil {
					logger.Warn("purging catalog cache", "error", err)
					return
				}
				logger.Debug("purged catalog cache", "rows", n)
			})
			return nil
		})
	}

	return g.Wait()
}

// every calls fn at each interval until ctx is done.
func every(ctx context.Context, interval time.Duration, fn func()) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			fn()
		}
	}
}

func openRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}
