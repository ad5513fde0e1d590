package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/nikolayk812/storefront/internal/catalog"
	"github.com/nikolayk812/storefront/internal/httpapi"
	"github.com/nikolayk812/storefront/internal/migrations"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/nikolayk812/storefront/internal/repository"
	"github.com/nikolayk812/storefront/internal/repository/memory"
	"github.com/nikolayk812/storefront/internal/service"
	"github.com/nikolayk812/storefront/internal/session"
	"github.com/nikolayk812/storefront/pkg/config"
	"github.com/nikolayk812/storefront/pkg/logger"
	"github.com/nikolayk812/storefront/pkg/shutdown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Service:   "storefront",
		Env:       cfg.AppEnv,
		Level:     cfg.LogLevel,
		AddSource: true,
	})

	if err := run(cfg, log); err != nil {
		log.Error("storefront stopped", slog.Any("err", err))
		os.Exit(1)
	}
}

type storage struct {
	carts    port.CartRepository
	sessions port.SessionRepository
	ready    func(ctx context.Context) error
	close    func()
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.close()

	provider, err := session.NewProvider(store.sessions, session.CookieConfig{
		MaxAge: cfg.SessionMaxAge,
		Secure: cfg.Production(),
	}, log)
	if err != nil {
		return fmt.Errorf("session.NewProvider: %w", err)
	}

	cleaner := session.NewCleaner(store.sessions, log)
	cleaner.StartCleanupRoutine(cfg.SessionCleanupInterval)

	products, closeCatalog, err := openCatalog(ctx, cfg, log)
	if err != nil {
		_ = cleaner.Close()
		return err
	}

	cartService, err := service.NewCart(store.carts, cfg.Currency(), log)
	if err != nil {
		_ = cleaner.Close()
		closeCatalog()
		return fmt.Errorf("service.NewCart: %w", err)
	}

	api, err := httpapi.NewServer(cartService, products, provider,
		httpapi.WithReadiness(store.ready),
		httpapi.WithLogger(log))
	if err != nil {
		_ = cleaner.Close()
		closeCatalog()
		return fmt.Errorf("httpapi.NewServer: %w", err)
	}

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	server := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("http server starting", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", slog.Any("err", err))
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown requested")

	err = shutdown.Run(10*time.Second,
		shutdown.Hook{Name: "http", Stop: server.Shutdown},
		shutdown.Hook{Name: "session cleaner", Stop: func(context.Context) error { return cleaner.Close() }},
		shutdown.Hook{Name: "catalog", Stop: func(context.Context) error { closeCatalog(); return nil }},
	)
	if err != nil {
		log.Error("shutdown error", slog.Any("err", err))
	}

	wg.Wait()
	log.Info("bye")

	return nil
}

// openStorage connects to postgres and applies migrations. Without DATABASE_URL outside production
// it falls back to the in-memory store.
func openStorage(ctx context.Context, cfg config.Config, log *slog.Logger) (storage, error) {
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL is not set, carts are kept in memory")

		mem := memory.NewStore()
		return storage{
			carts:    mem,
			sessions: mem,
			ready:    func(context.Context) error { return nil },
			close:    func() {},
		}, nil
	}

	if err := migrate(cfg.DatabaseURL); err != nil {
		return storage{}, err
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return storage{}, fmt.Errorf("pgxpool.New: %w", err)
	}

	carts, err := repository.NewCart(pool)
	if err != nil {
		pool.Close()
		return storage{}, fmt.Errorf("repository.NewCart: %w", err)
	}

	sessions, err := repository.NewSession(pool)
	if err != nil {
		pool.Close()
		return storage{}, fmt.Errorf("repository.NewSession: %w", err)
	}

	return storage{
		carts:    carts,
		sessions: sessions,
		ready:    pool.Ping,
		close:    pool.Close,
	}, nil
}

func migrate(databaseURL string) error {
	sqlDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("sql.Open: %w", err)
	}
	defer sqlDB.Close()

	if err := migrations.Run(sqlDB); err != nil {
		return fmt.Errorf("migrations.Run: %w", err)
	}

	return nil
}

// openCatalog builds the catalog client, fronted by a redis cache when REDIS_URL is set.
func openCatalog(ctx context.Context, cfg config.Config, log *slog.Logger) (port.ProductCatalog, func(), error) {
	client, err := catalog.NewClient(cfg.CatalogBaseURL, cfg.CatalogTimeout)
	if err != nil {
		return nil, nil, fmt.Errorf("catalog.NewClient: %w", err)
	}

	if cfg.RedisURL == "" {
		return client, func() {}, nil
	}

	rdb, err := catalog.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("catalog.NewRedisClient: %w", err)
	}

	cache, err := catalog.NewCache(client, rdb, cfg.CatalogCacheTTL, log)
	if err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("catalog.NewCache: %w", err)
	}

	return cache, func() { _ = rdb.Close() }, nil
}
