package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/relaychat/relaychat-server/internal/config"
	"github.com/relaychat/relaychat-server/internal/core"
	"github.com/relaychat/relaychat-server/internal/store"
	"github.com/relaychat/relaychat-server/internal/store/file"
	"github.com/relaychat/relaychat-server/internal/store/mongo"
	"github.com/relaychat/relaychat-server/internal/store/sqlite"
	transporthttp "github.com/relaychat/relaychat-server/internal/transport/http"
)

// App wires together core and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	history         store.HistoryStore
	log             *zerolog.Logger
}

// New constructs the application with the provided configuration.
func New(cfg config.Config, logger *zerolog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	history, err := newHistoryStore(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init history store: %w", err)
	}
	logger.Info().Str("backend", cfg.HistoryBackend).Int("max_history", cfg.MaxHistory).Msg("history store initialized")

	registry := core.NewSessionRegistry()
	hub := core.NewHub()
	svc := core.NewChatService(registry, hub, history, cfg.MaxHistory, logger)
	server := transporthttp.NewServer(svc, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		history:         history,
		log:             logger,
	}, nil
}

func newHistoryStore(cfg config.Config, logger *zerolog.Logger) (store.HistoryStore, error) {
	switch cfg.HistoryBackend {
	case config.BackendFile:
		return file.New(cfg.HistoryFile, cfg.MaxHistory, logger)
	case config.BackendSQLite:
		return sqlite.New(cfg.SQLitePath, cfg.MaxHistory)
	case config.BackendMongo:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return mongo.New(ctx, mongo.Options{
			URI:        cfg.MongoURI,
			Database:   cfg.MongoDatabase,
			Collection: cfg.MongoCollection,
			Capacity:   cfg.MaxHistory,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown history backend %q", cfg.HistoryBackend)
	}
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// cleanup closes the history store and other resources.
func (a *App) cleanup() {
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close history store")
		} else {
			a.log.Info().Msg("history store closed")
		}
	}
}
