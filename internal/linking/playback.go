package linking

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/wuquta/spotify-nowplaying-telegram-bot/internal/db"
	"github.com/wuquta/spotify-nowplaying-telegram-bot/internal/spotify"
)

// PlaybackClient is the subset of the Spotify client used for playback
// queries.
type PlaybackClient interface {
	CurrentlyPlaying(ctx context.Context, accessToken string) (*spotify.Track, error)
}

// NowPlaying is the playback query result. Track is nil when nothing is
// playing.
type NowPlaying struct {
	Playing bool           `json:"playing"`
	Track   *spotify.Track `json:"track"`
}

// PlaybackService answers now-playing queries over stored credentials.
type PlaybackService struct {
	store  AccountStore
	client PlaybackClient
	logger *zap.Logger
}

// NewPlaybackService creates a playback query service.
func NewPlaybackService(store AccountStore, client PlaybackClient, logger *zap.Logger) *PlaybackService {
	return &PlaybackService{store: store, client: client, logger: logger}
}

// NowPlaying fetches the currently playing track for a linked Telegram user.
// "Nothing playing" is a defined non-error outcome. Upstream failures
// propagate unchanged; no token refresh is attempted here.
func (s *PlaybackService) NowPlaying(ctx context.Context, telegramID int64) (*NowPlaying, error) {
	account, err := s.store.GetByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: telegram id %d", ErrUnknownIdentity, telegramID)
		}
		return nil, fmt.Errorf("loading linked account: %w", err)
	}

	if account.AccessToken == nil || account.SpotifyUserID == nil {
		return nil, fmt.Errorf("%w: telegram id %d", ErrNotLinked, telegramID)
	}

	track, err := s.client.CurrentlyPlaying(ctx, *account.AccessToken)
	if err != nil {
		return nil, err
	}
	if track == nil {
		return &NowPlaying{Playing: false}, nil
	}
	return &NowPlaying{Playing: true, Track: track}, nil
}
