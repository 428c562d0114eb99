package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/plexistence/plexistence/internal/config"
	"github.com/plexistence/plexistence/internal/logging"
	"github.com/plexistence/plexistence/internal/metadata"
	"github.com/plexistence/plexistence/internal/plex"
	"github.com/plexistence/plexistence/internal/presence"
	"github.com/plexistence/plexistence/internal/watcher"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// CLI flags
var (
	configPath string
	verbosity  int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "plexistence",
		Short: "Plexistence - Discord Rich Presence for Plex",
		Long:  `Plexistence watches a Plex Media Server for playback by configured users and publishes a "now playing" status to Discord Rich Presence.`,
		RunE:  run,
	}

	rootCmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the configuration file")
	rootCmd.Flags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v debug, -vv trace)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("plexistence %s (commit: %s, built: %s)\n", version, commit, date)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	// Console logging at info level until the config tells us otherwise.
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "2006-01-02 15:04:05"}).
		With().Timestamp().Logger()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log.Info().Str("path", configPath).Msg("Loaded configuration")

	logging.Apply(cfg.Log, verbosity)

	log.Info().Str("version", version).Msg("Starting Plexistence")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	account, err := plex.Login(ctx, cfg.Plex)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to authenticate with Plex")
	}

	server, err := account.FindServer(ctx, cfg.Plex.Servers)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to configured Plex Media Server")
	}

	resolver := metadata.NewResolver(cfg.TMDB, cfg.Trakt)
	builder := presence.NewBuilder(resolver, cfg.Discord.Minimal)
	publisher := presence.NewPublisher(cfg.Discord.AppID)

	w := watcher.New(server, builder, publisher, cfg.Plex.Users)
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("Watcher error")
	}

	log.Info().Msg("Plexistence stopped")
	return nil
}
