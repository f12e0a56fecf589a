// Package config loads service configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
)

// Defaults for the optional settings.
const (
	DefaultListenAddr  = "127.0.0.1:8000"
	DefaultDatabaseURL = "postgres://127.0.0.1:5432/nowplaying?sslmode=disable"
)

// ErrMissingEnv is wrapped by Load for every required variable that is unset.
var ErrMissingEnv = errors.New("missing required environment variable")

// Config holds all configuration for the API server. It is built once at
// startup and passed by value; nothing reads the environment after Load.
type Config struct {
	ListenAddr string

	TelegramBotToken string

	SpotifyClientID     string
	SpotifyClientSecret string
	SpotifyRedirectURI  string

	DatabaseURL string
}

// Load reads configuration from the environment.
//
// TELEGRAM_BOT_TOKEN, SPOTIFY_CLIENT_ID, SPOTIFY_CLIENT_SECRET and
// SPOTIFY_REDIRECT_URI are required. The redirect URI must exactly match the
// value registered with Spotify for the token exchange to succeed.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:          getEnv("LISTEN_ADDR", DefaultListenAddr),
		TelegramBotToken:    os.Getenv("TELEGRAM_BOT_TOKEN"),
		SpotifyClientID:     os.Getenv("SPOTIFY_CLIENT_ID"),
		SpotifyClientSecret: os.Getenv("SPOTIFY_CLIENT_SECRET"),
		SpotifyRedirectURI:  os.Getenv("SPOTIFY_REDIRECT_URI"),
		DatabaseURL:         getEnv("DATABASE_URL", DefaultDatabaseURL),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	required := map[string]string{
		"TELEGRAM_BOT_TOKEN":    c.TelegramBotToken,
		"SPOTIFY_CLIENT_ID":     c.SpotifyClientID,
		"SPOTIFY_CLIENT_SECRET": c.SpotifyClientSecret,
		"SPOTIFY_REDIRECT_URI":  c.SpotifyRedirectURI,
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("%w: %s", ErrMissingEnv, name)
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
