// Command server runs the APTx site: Discord login, posts and comments
// stored as JSON files, and the static front end.
//
// Configuration comes from the environment and an optional .env file; see
// internal/config for the variables.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/sakif/aptx/internal/auth"
	"github.com/sakif/aptx/internal/config"
	"github.com/sakif/aptx/internal/repository/jsonfile"
	"github.com/sakif/aptx/internal/server"
	"github.com/sakif/aptx/internal/session"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	db, err := jsonfile.New(cfg.DataDir, logger)
	if err != nil {
		logger.Error("failed to open data dir", slog.String("error", err.Error()))
		os.Exit(1)
	}

	states, err := auth.NewStateSigner(cfg.StateSecret)
	if err != nil {
		logger.Error("invalid state secret", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// opened last: every os.Exit below must run closeSessions first
	sessions, closeSessions, err := openSessions(cfg, logger)
	if err != nil {
		logger.Error("failed to open session store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeSessions()

	provider := auth.NewDiscordProvider(auth.ProviderConfig{
		ClientID:     cfg.DiscordClientID,
		ClientSecret: cfg.DiscordClientSecret,
		RedirectURL:  cfg.DiscordRedirectURI,
	})

	if !cfg.CookieSecure {
		logger.Warn("COOKIE_SECURE=false: session cookies will be sent over plain HTTP")
	}

	srv := server.New(
		server.Config{
			Addr:         cfg.Addr(),
			StaticDir:    cfg.StaticDir,
			CookieSecure: cfg.CookieSecure,
		},
		server.Deps{
			DB:       db,
			Sessions: sessions,
			Provider: provider,
			States:   states,
		},
		logger,
	)

	// Start blocks until SIGINT/SIGTERM
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		closeSessions()
		os.Exit(1)
	}
}

// openSessions picks Redis when REDIS_URL is set, memory otherwise.
// The returned func releases the store.
func openSessions(cfg *config.Config, logger *slog.Logger) (session.Store, func(), error) {
	if cfg.RedisURL == "" {
		logger.Info("sessions kept in memory; they end when the process exits")
		return session.NewMemoryStore(), func() {}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store, err := session.NewRedisStore(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("sessions kept in Redis")
	return store, func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing Redis", slog.String("error", err.Error()))
		}
	}, nil
}
