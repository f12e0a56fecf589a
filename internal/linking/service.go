// Package linking carries a Telegram user from unregistered through
// "authorization in flight" to linked, and answers playback queries over the
// stored credentials.
package linking

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/wuquta/spotify-nowplaying-telegram-bot/internal/db"
	"github.com/wuquta/spotify-nowplaying-telegram-bot/internal/spotify"
)

// Caller-facing errors.
var (
	// ErrUnknownIdentity is returned when no record exists for the Telegram
	// id; the user must initiate login first.
	ErrUnknownIdentity = errors.New("unknown telegram user")

	// ErrNotLinked is returned when a record exists but lacks credentials.
	ErrNotLinked = errors.New("spotify account is not linked yet")

	// ErrIdentityConflict is returned when the Spotify account is already
	// bound to a different Telegram user.
	ErrIdentityConflict = errors.New("spotify account is linked to another telegram user")

	// ErrInvalidCallback is returned on malformed or missing callback
	// parameters.
	ErrInvalidCallback = errors.New("invalid callback parameters")

	// ErrAccessDenied is returned when the user declined authorization at
	// Spotify. Terminal for the attempt; nothing is mutated.
	ErrAccessDenied = errors.New("spotify authorization was denied")
)

// AccountStore is the persistence surface the linking flow needs.
type AccountStore interface {
	GetByTelegramID(ctx context.Context, telegramID int64) (*db.LinkedAccount, error)
	CreateIfAbsent(ctx context.Context, telegramID int64) (*db.LinkedAccount, error)
	Link(ctx context.Context, telegramID int64, upd db.LinkUpdate) error
}

// AuthClient is the subset of the Spotify client used during linking.
type AuthClient interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*spotify.TokenSet, error)
	CurrentProfile(ctx context.Context, accessToken string) (*spotify.Profile, error)
}

// Status reports whether a Telegram user is linked.
type Status struct {
	Connected     bool    `json:"connected"`
	SpotifyUserID *string `json:"spotify_user_id"`
}

// Service orchestrates login initiation, callback handling and status
// queries against the account store and the Spotify client.
type Service struct {
	store  AccountStore
	client AuthClient
	logger *zap.Logger
}

// NewService creates a linking service.
func NewService(store AccountStore, client AuthClient, logger *zap.Logger) *Service {
	return &Service{store: store, client: client, logger: logger}
}

// InitiateLogin ensures a record exists for the Telegram id and returns the
// Spotify authorize URL whose state encodes that id. Tokens are untouched.
func (s *Service) InitiateLogin(ctx context.Context, telegramID int64) (string, error) {
	if _, err := s.store.CreateIfAbsent(ctx, telegramID); err != nil {
		return "", fmt.Errorf("registering telegram user: %w", err)
	}

	authURL := s.client.AuthURL(EncodeState(telegramID))
	s.logger.Info("issued authorize url", zap.Int64("telegram_id", telegramID))
	return authURL, nil
}

// HandleCallback completes the Authorization Code flow: validates the
// callback parameters, exchanges the code, resolves the Spotify identity and
// atomically stores the link. Returns the updated record.
//
// Concurrent callbacks for the same Telegram id serialize on the store's
// transaction; the later one wins for tokens while the Spotify identity stays
// conflict-checked.
func (s *Service) HandleCallback(ctx context.Context, code, state, errParam string) (*db.LinkedAccount, error) {
	if errParam != "" {
		return nil, fmt.Errorf("%w: %s", ErrAccessDenied, errParam)
	}
	if code == "" {
		return nil, fmt.Errorf("%w: missing code", ErrInvalidCallback)
	}

	telegramID, err := DecodeState(state)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCallback, err)
	}

	// Defensive: InitiateLogin always registers first.
	if _, err := s.store.GetByTelegramID(ctx, telegramID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: telegram id %d", ErrUnknownIdentity, telegramID)
		}
		return nil, fmt.Errorf("loading linked account: %w", err)
	}

	tokens, err := s.client.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	profile, err := s.client.CurrentProfile(ctx, tokens.AccessToken)
	if err != nil {
		return nil, err
	}

	upd := db.LinkUpdate{
		SpotifyUserID: profile.ID,
		AccessToken:   tokens.AccessToken,
		TokenExpiry:   tokens.Expiry,
	}
	if tokens.RefreshToken != "" {
		upd.RefreshToken = &tokens.RefreshToken
	}

	if err := s.store.Link(ctx, telegramID, upd); err != nil {
		switch {
		case errors.Is(err, db.ErrConflict):
			return nil, fmt.Errorf("%w: spotify user %s", ErrIdentityConflict, profile.ID)
		case errors.Is(err, db.ErrNotFound):
			return nil, fmt.Errorf("%w: telegram id %d", ErrUnknownIdentity, telegramID)
		default:
			return nil, fmt.Errorf("storing link: %w", err)
		}
	}

	account, err := s.store.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("reloading linked account: %w", err)
	}

	s.logger.Info("linked spotify account",
		zap.Int64("telegram_id", telegramID),
		zap.String("spotify_user_id", profile.ID),
	)
	return account, nil
}

// Status reports whether the Telegram user is linked. Connected requires
// both a Spotify identity and an access token.
func (s *Service) Status(ctx context.Context, telegramID int64) (*Status, error) {
	account, err := s.store.GetByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: telegram id %d", ErrUnknownIdentity, telegramID)
		}
		return nil, fmt.Errorf("loading linked account: %w", err)
	}

	return &Status{
		Connected:     account.SpotifyUserID != nil && account.AccessToken != nil,
		SpotifyUserID: account.SpotifyUserID,
	}, nil
}
