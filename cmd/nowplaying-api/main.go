// Command nowplaying-api runs the Spotify now-playing link API consumed by
// the Telegram bot.
package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/wuquta/spotify-nowplaying-telegram-bot/internal/config"
	"github.com/wuquta/spotify-nowplaying-telegram-bot/internal/db"
	"github.com/wuquta/spotify-nowplaying-telegram-bot/internal/linking"
	"github.com/wuquta/spotify-nowplaying-telegram-bot/internal/spotify"
	"github.com/wuquta/spotify-nowplaying-telegram-bot/internal/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	database, err := db.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()

	client := spotify.NewClient(spotify.Config{
		ClientID:     cfg.SpotifyClientID,
		ClientSecret: cfg.SpotifyClientSecret,
		RedirectURI:  cfg.SpotifyRedirectURI,
	})

	accounts := database.Accounts()
	server := web.NewServer(web.ServerConfig{
		Addr:     cfg.ListenAddr,
		Links:    linking.NewService(accounts, client, logger),
		Playback: linking.NewPlaybackService(accounts, client, logger),
		Logger:   logger,
	})

	return server.Run()
}
