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

	"github.com/redis/go-redis/v9"

	"github.com/baharkarakas/tradebinder/internal/api"
	"github.com/baharkarakas/tradebinder/internal/auth"
	"github.com/baharkarakas/tradebinder/internal/cache"
	"github.com/baharkarakas/tradebinder/internal/config"
	"github.com/baharkarakas/tradebinder/internal/db"
	"github.com/baharkarakas/tradebinder/internal/logger"
	"github.com/baharkarakas/tradebinder/internal/metrics"
	"github.com/baharkarakas/tradebinder/internal/repository/postgres"
	"github.com/baharkarakas/tradebinder/internal/services"
	"github.com/baharkarakas/tradebinder/internal/storage"
	"github.com/baharkarakas/tradebinder/internal/worker"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return err
	}
	log := logger.New(cfg.Env)
	slog.SetDefault(log)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer dbPool.Close()

	if cfg.Migrate {
		if err := db.RunMigrations(ctx, dbPool); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
	}
	store := postgres.NewStore(dbPool)

	var statsCache *cache.Cache
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Warn("redis unreachable, stats are read through", "addr", cfg.Redis.Addr, "err", err)
		}
		cancel()
		statsCache = cache.New(rdb, cfg.Redis.TTL)
	}

	var images *storage.S3Operator
	if cfg.S3.Enabled() {
		images, err = storage.NewFromConfig(ctx, cfg.S3)
		if err != nil {
			return fmt.Errorf("s3: %w", err)
		}
	} else {
		log.Info("image uploads disabled: s3 bucket or public url not set")
	}

	wp := worker.NewPool(cfg.WorkerCount)
	defer wp.Stop()

	metrics.Init()

	tm := auth.NewTokenManager(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret, cfg.JWT.Issuer, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	r := api.NewRouter(cfg, api.Services{
		Tokens:       tm,
		Auth:         services.NewAuthService(store, tm),
		Cards:        services.NewCardService(store, statsCache),
		Editions:     services.NewEditionService(store),
		Locations:    services.NewLocationService(store, statsCache),
		Listings:     services.NewListingService(store, statsCache),
		Transactions: services.NewTransactionService(store, statsCache, services.NewAuditor(store, wp)),
		Messages:     services.NewMessageService(store),
		Images:       services.NewImageService(images, cfg.UploadMaxBytes),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "port", cfg.HTTPPort, "env", cfg.Env, "prefix", cfg.APIPrefix)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	}

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "err", err)
	}
	// deferred: drain the worker pool, then close redis and postgres
	return nil
}
