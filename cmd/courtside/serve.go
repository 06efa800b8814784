package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fortuna/courtside/internal/api/rest"
	"github.com/fortuna/courtside/internal/api/websocket"
	"github.com/fortuna/courtside/internal/cache"
	"github.com/fortuna/courtside/internal/metrics"
)

func serveCmd(a *app) *cobra.Command {
	var redisRetries int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the REST and WebSocket servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context(), redisRetries)
		},
	}
	cmd.Flags().IntVar(&redisRetries, "redis-retries", 5, "Redis connection attempts before serving without a cache")
	return cmd
}

func (a *app) serve(ctx context.Context, redisRetries int) error {
	cfg, logger := a.cfg, a.logger
	logger.Info("starting", "service", serviceName, "version", serviceVersion)

	m := metrics.NewManager()

	db, err := a.openStore(ctx, m.ObserveQuery)
	if err != nil {
		return err
	}
	defer db.Close()

	deps := rest.Dependencies{DB: db, Metrics: m, Logger: logger}

	// Memoization is optional; without Redis every request reads the store
	if cfg.RedisURL != "" {
		redisCache := connectRedis(ctx, a, redisRetries)
		if redisCache != nil {
			defer redisCache.Close()
			deps.Cache = redisCache
			deps.Memo = cache.NewMemo(redisCache,
				cache.WithTTL(cfg.CacheTTL),
				cache.WithEpoch(cfg.RefreshEpoch),
				cache.WithLogger(logger),
				cache.WithRecorder(m))
		}
	}

	restServer := rest.NewServer(cfg, deps)
	wsServer := websocket.NewServer(cfg, db, m, logger)

	errs := make(chan error, 2)
	go func() {
		logger.Info("REST API server listening", "addr", cfg.RESTAddr)
		if err := restServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()
	go func() {
		if err := wsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	var serveErr error
	select {
	case sig := <-sigChan:
		logger.Info("shutting down", "signal", sig.String())
	case serveErr = <-errs:
		logger.Error("server failed", "error", serveErr)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := restServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("REST API server shutdown error", "error", err)
	}
	if err := wsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("WebSocket server shutdown error", "error", err)
	}

	logger.Info("stopped", "service", serviceName)
	return serveErr
}

// connectRedis retries the connection a few times and gives up without
// failing the server
func connectRedis(ctx context.Context, a *app, retries int) *cache.RedisCache {
	retryDelay := 2 * time.Second
	if retries < 1 {
		retries = 1
	}

	for i := 0; i < retries; i++ {
		redisCache, err := cache.NewRedisCache(a.cfg.RedisURL)
		if err == nil {
			a.logger.Info("connected to redis", "epoch", a.cfg.RefreshEpoch, "ttl", a.cfg.CacheTTL)
			return redisCache
		}

		a.logger.Warn("redis connection attempt failed", "attempt", i+1, "of", retries, "error", err)
		if i < retries-1 {
			select {
			case <-time.After(retryDelay):
			case <-ctx.Done():
				return nil
			}
		}
	}

	a.logger.Warn("serving without memoization")
	return nil
}
