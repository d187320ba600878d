package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"nightfall"
	"nightfall/internal/config"
	"nightfall/internal/events"
	"nightfall/internal/game"
	"nightfall/internal/handlers"
	"nightfall/internal/session"
	"nightfall/internal/store"
)

// App is the wired service: router, live rooms and the repository behind them
type App struct {
	Handler http.Handler
	Manager *session.Manager

	closeStore func() error
}

// restoreTimeout bounds the startup scan of stored rooms
const restoreTimeout = 30 * time.Second

// SetupServer builds the repository, room manager and router from cfg and
// resumes the stored rooms whose phase clock was running
func SetupServer(cfg *config.ServerConfig, opts *handlers.RouterOptions) (*App, error) {
	catalog, err := game.LoadCatalog(nightfall.RoleCatalogYAML)
	if err != nil {
		return nil, fmt.Errorf("failed to load role catalog: %w", err)
	}

	repo, closeStore, err := openRepository(cfg)
	if err != nil {
		return nil, err
	}

	manager, err := session.NewManager(&session.Config{
		Repository: repo,
		Bus:        events.NewBus(16),
		Catalog:    catalog,
		Settings:   cfg.SessionSettings(),
	})
	if err != nil {
		closeStore()
		return nil, fmt.Errorf("failed to create room manager: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), restoreTimeout)
	defer cancel()
	if _, err := manager.RestoreAll(ctx); err != nil {
		manager.Shutdown(ctx)
		closeStore()
		return nil, fmt.Errorf("failed to restore rooms: %w", err)
	}

	h := handlers.New(manager, cfg)
	return &App{
		Handler:    handlers.SetupRouter(h, cfg, opts),
		Manager:    manager,
		closeStore: closeStore,
	}, nil
}

// openRepository connects the configured storage backend
func openRepository(cfg *config.ServerConfig) (store.Repository, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Storage.Backend {
	case config.BackendMemory, "":
		log.Printf("💾 Using in-memory room store")
		return store.NewMemoryStore(), noop, nil

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Storage.RedisAddr,
			Password: cfg.Storage.RedisPassword,
			DB:       cfg.Storage.RedisDB,
		})
		repo, err := store.NewRedisStore(&store.RedisConfig{
			RedisClient: client,
			TTL:         cfg.Storage.RoomTTL,
		})
		if err != nil {
			client.Close()
			return nil, nil, err
		}
		log.Printf("💾 Using Redis room store at %s", cfg.Storage.RedisAddr)
		return repo, client.Close, nil

	case config.BackendPostgres:
		repo, err := store.OpenPostgres(cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("💾 Using PostgreSQL room store")
		return repo, repo.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}

// Shutdown stops every room, flushing their last snapshots, then closes the store
func (a *App) Shutdown(ctx context.Context) error {
	err := a.Manager.Shutdown(ctx)
	if closeErr := a.closeStore(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}
