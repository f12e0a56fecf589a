package db

import (
	"time"

	"github.com/google/uuid"
)

// LinkedAccount is one row per Telegram user. A record may exist with all
// Spotify fields null: registered, but not yet linked.
type LinkedAccount struct {
	ID            uuid.UUID
	TelegramID    int64
	SpotifyUserID *string // nullable, set at most once per successful callback
	AccessToken   *string // nullable, opaque, never logged
	RefreshToken  *string // nullable, opaque, never logged
	TokenExpiry   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// LinkUpdate carries the fields written by a successful OAuth callback.
type LinkUpdate struct {
	SpotifyUserID string
	AccessToken   string
	RefreshToken  *string // nil keeps the stored value; Spotify does not always reissue one
	TokenExpiry   time.Time
}
