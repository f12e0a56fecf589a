package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/wuquta/spotify-nowplaying-telegram-bot/internal/db"
	"github.com/wuquta/spotify-nowplaying-telegram-bot/internal/linking"
	"github.com/wuquta/spotify-nowplaying-telegram-bot/internal/spotify"
)

// LinkService is the linking surface the handlers call.
type LinkService interface {
	InitiateLogin(ctx context.Context, telegramID int64) (string, error)
	HandleCallback(ctx context.Context, code, state, errParam string) (*db.LinkedAccount, error)
	Status(ctx context.Context, telegramID int64) (*linking.Status, error)
}

// PlaybackService is the playback surface the handlers call.
type PlaybackService interface {
	NowPlaying(ctx context.Context, telegramID int64) (*linking.NowPlaying, error)
}

// Handlers contains the HTTP handlers for the API.
type Handlers struct {
	links    LinkService
	playback PlaybackService
	logger   *zap.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(links LinkService, playback PlaybackService, logger *zap.Logger) *Handlers {
	return &Handlers{links: links, playback: playback, logger: logger}
}

// Health reports liveness (GET /health).
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Login returns the Spotify authorize URL for a Telegram user
// (GET /auth/login?telegram_id=).
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	telegramID, ok := telegramIDParam(w, r)
	if !ok {
		return
	}

	authURL, err := h.links.InitiateLogin(r.Context(), telegramID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"auth_url": authURL})
}

// Status tells whether a Telegram user is linked to Spotify
// (GET /auth/status?telegram_id=).
func (h *Handlers) Status(w http.ResponseWriter, r *http.Request) {
	telegramID, ok := telegramIDParam(w, r)
	if !ok {
		return
	}

	status, err := h.links.Status(r.Context(), telegramID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, status)
}

// Callback completes the OAuth flow after Spotify redirects back
// (GET /auth/callback?code&state&error).
func (h *Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	_, err := h.links.HandleCallback(r.Context(), query.Get("code"), query.Get("state"), query.Get("error"))
	if err != nil {
		if errors.Is(err, linking.ErrAccessDenied) {
			writeHTML(w, http.StatusBadRequest, deniedPage(query.Get("error")))
			return
		}
		h.writeServiceError(w, err)
		return
	}

	writeHTML(w, http.StatusOK, successPage)
}

// NowPlaying reports the user's currently playing track
// (GET /api/now-playing?telegram_id=).
func (h *Handlers) NowPlaying(w http.ResponseWriter, r *http.Request) {
	telegramID, ok := telegramIDParam(w, r)
	if !ok {
		return
	}

	playing, err := h.playback.NowPlaying(r.Context(), telegramID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, playing)
}

// telegramIDParam parses the required positive telegram_id query parameter,
// writing a 400 response when it is missing or malformed.
func telegramIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.URL.Query().Get("telegram_id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "telegram_id must be a positive integer")
		return 0, false
	}
	return id, true
}

// writeServiceError maps service errors onto HTTP statuses. "Not linked" is
// kept distinct from "Spotify unreachable" so callers know whether to
// re-authorize or simply retry later.
func (h *Handlers) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, linking.ErrUnknownIdentity):
		writeError(w, http.StatusNotFound, "unknown telegram user")
	case errors.Is(err, linking.ErrNotLinked):
		writeError(w, http.StatusBadRequest, "spotify account is not linked yet")
	case errors.Is(err, linking.ErrInvalidCallback):
		writeError(w, http.StatusBadRequest, "missing or invalid code or state")
	case errors.Is(err, linking.ErrIdentityConflict):
		writeError(w, http.StatusConflict, "spotify account is already linked to another telegram user")
	case errors.Is(err, spotify.ErrUpstreamAuth):
		writeError(w, http.StatusBadGateway, "spotify rejected the request")
	case errors.Is(err, spotify.ErrUpstreamUnavailable):
		writeError(w, http.StatusServiceUnavailable, "spotify is temporarily unreachable")
	default:
		h.logger.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeHTML(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = fmt.Fprint(w, body)
}
