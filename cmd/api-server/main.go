package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ArcadiiFlorean/Consultant-host-version/internal/api"
	"github.com/ArcadiiFlorean/Consultant-host-version/internal/catalog"
	"github.com/ArcadiiFlorean/Consultant-host-version/internal/config"
	"github.com/ArcadiiFlorean/Consultant-host-version/internal/db"
	"github.com/ArcadiiFlorean/Consultant-host-version/internal/logger"
	redisclient "github.com/ArcadiiFlorean/Consultant-host-version/internal/redis"
	"github.com/ArcadiiFlorean/Consultant-host-version/internal/slot"
)

const (
	version         = "1.0.0"
	catalogCacheKey = "catalog:services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "api-server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config load error: %w", err)
	}

	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("logger init: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("api-server starting up",
		zap.String("env", cfg.Env),
		zap.String("http_port", cfg.HTTPPort),
		zap.String("version", version),
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN, db.PoolConfig{
		ApplicationName:  "consultant-booking-api",
		MaxConns:         int32(cfg.PGMaxConns),
		MinConns:         int32(cfg.PGMinConns),
		StatementTimeout: cfg.PGStatementTimeout,
	})
	cancelPg()
	if err != nil {
		return fmt.Errorf("postgres connection error: %w", err)
	}
	defer pgPool.Close()
	log.Info("connected to Postgres")

	if cfg.AutoMigrate {
		if err := db.Migrate(rootCtx, pgPool); err != nil {
			return err
		}
		v, err := db.MigrationVersion(rootCtx, pgPool)
		if err != nil {
			return err
		}
		log.Info("migrations applied", zap.Int64("schema_version", v))
	}

	checks := []api.DependencyCheck{
		{Name: "postgres", Required: true, Ping: pgPool.Ping},
	}

	// Redis only backs the catalog cache, so it is optional.
	var cache catalog.Cache
	if cfg.CacheEnabled() {
		rdb, err := redisclient.NewRedisClient(rootCtx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			log.Warn("redis unavailable, catalog cache disabled", zap.Error(err))
		} else {
			defer func() {
				if err := rdb.Close(); err != nil {
					log.Warn("error closing redis", zap.Error(err))
				}
			}()
			log.Info("connected to Redis", zap.String("addr", cfg.RedisAddr))
			cache = redisclient.NewJSONCache(rdb, catalogCacheKey, cfg.CatalogCacheTTL)
			checks = append(checks, api.DependencyCheck{
				Name: "redis",
				Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
			})
		}
	}

	slots := slot.NewService(slot.NewPgRepository(pgPool), log.Named("slots"))
	packages := catalog.NewService(catalog.NewPgRepository(pgPool), cache, log.Named("catalog"))

	router := api.NewRouter(api.RouterConfig{
		Slots:          slots,
		Catalog:        packages,
		Health:         api.NewHealthHandler(cfg.Env, version, checks...),
		Logger:         log.Named("http"),
		AllowedOrigins: cfg.AllowedOrigins,
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
	case <-rootCtx.Done():
	}

	log.Info("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	log.Info("api-server stopped")
	return nil
}
