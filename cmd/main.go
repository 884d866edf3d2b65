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

	"github.com/Vasu1712/scenyx-chat/internal/auth"
	"github.com/Vasu1712/scenyx-chat/internal/config"
	"github.com/Vasu1712/scenyx-chat/internal/server"
	"github.com/Vasu1712/scenyx-chat/internal/storage"
	"github.com/Vasu1712/scenyx-chat/internal/storage/memory"
	"github.com/Vasu1712/scenyx-chat/internal/storage/sqlstore"
	"github.com/Vasu1712/scenyx-chat/pkg/logger"
)

func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	if cfg.DBDriver == "memory" {
		logger.Warn().Msg("using in-memory store, data is lost on restart")
		return memory.NewStore(), nil
	}
	store, err := sqlstore.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

func openSessions(ctx context.Context, cfg *config.Config) (auth.SessionStore, func(), error) {
	if cfg.ValkeyAddr == "" {
		return auth.NewMemorySessions(), func() {}, nil
	}
	client, err := auth.DialValkey(ctx, cfg.ValkeyAddr, cfg.ValkeyPassword)
	if err != nil {
		return nil, nil, err
	}
	logger.Info().Str("addr", cfg.ValkeyAddr).Msg("connected to valkey")
	return auth.NewValkeySessions(client), client.Close, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init(config.EnvDevelopment, "info")
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Init(cfg.Env, cfg.LogLevel)

	if err := run(cfg); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

// run serves until a signal arrives or the listener fails. Everything it
// opens is closed before it returns.
func run(cfg *config.Config) error {
	startCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	store, err := openStore(startCtx, cfg)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.DBDriver, err)
	}
	defer store.Close()

	sessions, closeSessions, err := openSessions(startCtx, cfg)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer closeSessions()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.New(cfg, store, sessions).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Str("env", cfg.Env).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		return fmt.Errorf("serve: %w", err)
	case sig := <-quit:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
