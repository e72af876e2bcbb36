package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/debemdeboas/the-feed/internal/config"
	"github.com/debemdeboas/the-feed/internal/console"
	"github.com/debemdeboas/the-feed/internal/feed"
	"github.com/debemdeboas/the-feed/internal/logger"
	"github.com/debemdeboas/the-feed/internal/model"
	"github.com/debemdeboas/the-feed/internal/remote"
	"github.com/debemdeboas/the-feed/internal/render"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("No .env file loaded")
	}

	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	setLoggers(logger.New(cfg.Logging.Level))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Stdin, os.Stdout); err != nil && err != context.Canceled {
		log.Fatal().Err(err).Msg("Console exited")
	}
}

func setLoggers(l zerolog.Logger) {
	log.Logger = l
	config.SetLogger(l.With().Str("component", "config").Logger())
	remote.SetLogger(l.With().Str("component", "remote").Logger())
	model.SetLogger(l.With().Str("component", "model").Logger())
	feed.SetLogger(l.With().Str("component", "feed").Logger())
	render.SetLogger(l.With().Str("component", "render").Logger())
	console.SetLogger(l.With().Str("component", "console").Logger())
}

// run wires the client stack and drives it from in until quit or end of input.
func run(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer) error {
	client := remote.NewClientFromConfig(cfg.Remote)
	ctrl := feed.NewController(client)

	log.Info().Str("base_url", cfg.Remote.BaseURL).Msg("Starting feed")
	return console.New(ctrl, in, out, console.OptionsFromConfig(cfg.UI)).Run(ctx)
}
