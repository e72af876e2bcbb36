// Command poststore serves the post collection API the feed client talks to.
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/debemdeboas/the-feed/internal/config"
	"github.com/debemdeboas/the-feed/internal/db"
	"github.com/debemdeboas/the-feed/internal/logger"
	"github.com/debemdeboas/the-feed/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("No .env file loaded")
	}

	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	l := logger.New(cfg.Logging.Level)
	log.Logger = l
	config.SetLogger(l.With().Str("component", "config").Logger())
	db.SetLogger(l.With().Str("component", "db").Logger())
	store.SetLogger(l.With().Str("component", "store").Logger())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := store.NewRepository(ctx, cfg.Store)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Store.Backend).Msg("Error creating store backend")
	}
	defer closeRepo()

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Store.Host, cfg.Store.Port),
		Handler:           store.NewServer(cfg.Store.BasePath, repo),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Error shutting down server")
		}
	}()

	log.Info().
		Str("addr", srv.Addr).
		Str("base_path", cfg.Store.BasePath).
		Str("backend", cfg.Store.Backend).
		Msg("Post store listening")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("Server error")
	}
}
