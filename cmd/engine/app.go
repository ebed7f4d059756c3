package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"yatube/internal/cache"
	"yatube/internal/config"
	"yatube/internal/database"
	"yatube/internal/engine"
	"yatube/internal/handlers"
	"yatube/internal/middleware"
	"yatube/internal/storage"
	"yatube/internal/utils"
	"yatube/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
)

const shutdownTimeout = 10 * time.Second

// application is every long-lived component of a running server.
type application struct {
	logger  *slog.Logger
	db      database.DBAdapter
	cache   *cache.PageCache
	system  *actor.ActorSystem
	engine  *engine.Engine
	server  *handlers.Server
	stopHub context.CancelFunc
}

func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	db, err := database.NewDB(ctx, &cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pageCache, err := cache.New(ctx, cfg.Redis, logger)
	if err != nil {
		// The cache is an optimisation; serve uncached rather than not at all.
		logger.Warn("page cache disabled", "error", err)
		pageCache = nil
	}

	images, err := storage.New(cfg.Storage, logger)
	if err != nil {
		db.Close(ctx)
		return nil, err
	}
	if err := images.EnsureBucket(ctx); err != nil {
		logger.Warn("image uploads unavailable", "error", err)
		images = nil
	}

	metrics := utils.NewMetricsCollector()
	hub := websocket.NewHub(logger)
	hubCtx, stopHub := context.WithCancel(context.Background())
	go hub.Run(hubCtx)

	system := engine.NewActorSystem(logger)
	eng := engine.NewEngine(system, engine.Options{
		DB:             db,
		Metrics:        metrics,
		Logger:         logger,
		Notifier:       hub,
		DBTimeout:      cfg.Database.Timeout,
		RequestTimeout: cfg.Server.RequestTimeout,
		Welcome:        cfg.Welcome,
	})

	server := handlers.NewServer(handlers.Options{
		Engine:         eng,
		Tokens:         middleware.NewTokenManager(cfg.Auth),
		Cache:          pageCache,
		Images:         images,
		Hub:            hub,
		Metrics:        metrics,
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins,
		MetricsEnabled: cfg.Server.MetricsEnabled,
	})

	return &application{
		logger:  logger,
		db:      db,
		cache:   pageCache,
		system:  system,
		engine:  eng,
		server:  server,
		stopHub: stopHub,
	}, nil
}

// close stops the actors before the store they write to.
func (a *application) close(ctx context.Context) {
	a.engine.Stop()
	a.system.Shutdown()
	a.stopHub()
	if err := a.cache.Close(); err != nil {
		a.logger.Warn("failed to close page cache", "error", err)
	}
	if err := a.db.Close(ctx); err != nil {
		a.logger.Warn("failed to close database", "error", err)
	}
}

// serve runs the HTTP server until SIGINT or SIGTERM, then drains it.
func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx, cfg, logger)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           app.server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", httpServer.Addr, "db", cfg.Database.Type)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			app.close(context.Background())
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	app.close(shutdownCtx)
	return nil
}
