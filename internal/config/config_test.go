package config

import (
	"errors"
	"testing"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_BOT_TOKEN", "tg-token")
	t.Setenv("SPOTIFY_CLIENT_ID", "client-id")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "client-secret")
	t.Setenv("SPOTIFY_REDIRECT_URI", "http://127.0.0.1:8000/auth/callback")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("LISTEN_ADDR", "")
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ListenAddr != DefaultListenAddr {
		t.Errorf("ListenAddr = %q, want %q", cfg.ListenAddr, DefaultListenAddr)
	}
	if cfg.DatabaseURL != DefaultDatabaseURL {
		t.Errorf("DatabaseURL = %q, want %q", cfg.DatabaseURL, DefaultDatabaseURL)
	}
	if cfg.SpotifyRedirectURI != "http://127.0.0.1:8000/auth/callback" {
		t.Errorf("SpotifyRedirectURI = %q", cfg.SpotifyRedirectURI)
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("LISTEN_ADDR", ":9000")
	t.Setenv("DATABASE_URL", "postgres://db:5432/other")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ListenAddr != ":9000" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.DatabaseURL != "postgres://db:5432/other" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	required := []string{
		"TELEGRAM_BOT_TOKEN",
		"SPOTIFY_CLIENT_ID",
		"SPOTIFY_CLIENT_SECRET",
		"SPOTIFY_REDIRECT_URI",
	}

	for _, name := range required {
		t.Run(name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(name, "")

			if _, err := Load(); !errors.Is(err, ErrMissingEnv) {
				t.Errorf("Load() error = %v, want ErrMissingEnv", err)
			}
		})
	}
}
