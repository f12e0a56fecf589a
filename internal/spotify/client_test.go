package spotify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func testClient(server *httptest.Server) *Client {
	return &Client{
		httpClient: server.Client(),
		baseURL:    server.URL,
	}
}

func TestAuthURL(t *testing.T) {
	client := NewClient(Config{
		ClientID:     "test-client-id",
		ClientSecret: "test-client-secret",
		RedirectURI:  "http://127.0.0.1:8000/auth/callback",
	})

	raw := client.AuthURL("42")
	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("AuthURL() produced unparseable URL: %v", err)
	}

	query := parsed.Query()
	if got := query.Get("state"); got != "42" {
		t.Errorf("state = %q, want 42", got)
	}
	if got := query.Get("redirect_uri"); got != "http://127.0.0.1:8000/auth/callback" {
		t.Errorf("redirect_uri = %q", got)
	}
	if got := query.Get("client_id"); got != "test-client-id" {
		t.Errorf("client_id = %q", got)
	}
	scope := query.Get("scope")
	for _, want := range []string{"user-read-currently-playing", "user-read-recently-played"} {
		if !strings.Contains(scope, want) {
			t.Errorf("scope %q missing %q", scope, want)
		}
	}
}

func TestNewTokenSetDefaultsExpiry(t *testing.T) {
	before := time.Now()
	set := newTokenSet(&oauth2.Token{AccessToken: "T1"})
	after := time.Now()

	if set.Expiry.Before(before.Add(defaultTokenLifetime)) || set.Expiry.After(after.Add(defaultTokenLifetime)) {
		t.Errorf("Expiry = %v, want about one hour from now", set.Expiry)
	}
}

func TestNewTokenSetKeepsReportedExpiry(t *testing.T) {
	expiry := time.Now().Add(30 * time.Minute)
	set := newTokenSet(&oauth2.Token{AccessToken: "T1", RefreshToken: "R1", Expiry: expiry})

	if !set.Expiry.Equal(expiry) {
		t.Errorf("Expiry = %v, want %v", set.Expiry, expiry)
	}
	if set.RefreshToken != "R1" {
		t.Errorf("RefreshToken = %q, want R1", set.RefreshToken)
	}
}

func TestCurrentlyPlaying(t *testing.T) {
	fullPayload := `{
		"is_playing": true,
		"progress_ms": 44100,
		"item": {
			"name": "Paranoid Android",
			"duration_ms": 387000,
			"artists": [{"name": "Radiohead"}, {"name": "Thom Yorke"}],
			"album": {
				"name": "OK Computer",
				"images": [{"url": "https://i.scdn.co/image/first"}, {"url": "https://i.scdn.co/image/second"}]
			},
			"external_urls": {"spotify": "https://open.spotify.com/track/xyz"}
		}
	}`

	tests := []struct {
		name      string
		status    int
		body      string
		wantTrack bool
		wantErr   error
		check     func(t *testing.T, track *Track)
	}{
		{
			name:      "full payload",
			status:    http.StatusOK,
			body:      fullPayload,
			wantTrack: true,
			check: func(t *testing.T, track *Track) {
				if track.Name != "Paranoid Android" {
					t.Errorf("Name = %q", track.Name)
				}
				if len(track.Artists) != 2 || track.Artists[0] != "Radiohead" || track.Artists[1] != "Thom Yorke" {
					t.Errorf("Artists = %v", track.Artists)
				}
				if track.Album != "OK Computer" {
					t.Errorf("Album = %q", track.Album)
				}
				if track.URL == nil || *track.URL != "https://open.spotify.com/track/xyz" {
					t.Errorf("URL = %v", track.URL)
				}
				if track.ImageURL == nil || *track.ImageURL != "https://i.scdn.co/image/first" {
					t.Errorf("ImageURL = %v, want the first image", track.ImageURL)
				}
				if !track.IsPlaying {
					t.Error("IsPlaying = false")
				}
				if track.ProgressMS == nil || *track.ProgressMS != 44100 {
					t.Errorf("ProgressMS = %v", track.ProgressMS)
				}
				if track.DurationMS == nil || *track.DurationMS != 387000 {
					t.Errorf("DurationMS = %v", track.DurationMS)
				}
			},
		},
		{
			name:   "no content means nothing playing",
			status: http.StatusNoContent,
		},
		{
			name:   "payload without item means nothing playing",
			status: http.StatusOK,
			body:   `{"is_playing": false}`,
		},
		{
			name:      "sparse item decodes without crashing",
			status:    http.StatusOK,
			body:      `{"item": {"name": "Untitled"}}`,
			wantTrack: true,
			check: func(t *testing.T, track *Track) {
				if track.Name != "Untitled" {
					t.Errorf("Name = %q", track.Name)
				}
				if track.URL != nil || track.ImageURL != nil || track.ProgressMS != nil || track.DurationMS != nil {
					t.Errorf("absent upstream fields must stay absent: %+v", track)
				}
				if len(track.Artists) != 0 {
					t.Errorf("Artists = %v, want empty", track.Artists)
				}
			},
		},
		{
			name:    "expired token",
			status:  http.StatusUnauthorized,
			body:    `{"error": {"status": 401, "message": "The access token expired"}}`,
			wantErr: ErrUpstreamAuth,
		},
		{
			name:    "rate limited",
			status:  http.StatusTooManyRequests,
			body:    `{"error": {"status": 429, "message": "Rate limit exceeded"}}`,
			wantErr: ErrUpstreamAuth,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.Header.Get("Authorization"); got != "Bearer T1" {
					t.Errorf("Authorization = %q, want Bearer T1", got)
				}
				if r.URL.Path != currentlyPlayingPath {
					t.Errorf("path = %q, want %q", r.URL.Path, currentlyPlayingPath)
				}
				w.WriteHeader(tt.status)
				if tt.body != "" {
					w.Write([]byte(tt.body))
				}
			}))
			defer server.Close()

			track, err := testClient(server).CurrentlyPlaying(context.Background(), "T1")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("CurrentlyPlaying() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CurrentlyPlaying() error = %v", err)
			}

			if !tt.wantTrack {
				if track != nil {
					t.Fatalf("CurrentlyPlaying() = %+v, want nil", track)
				}
				return
			}
			if track == nil {
				t.Fatal("CurrentlyPlaying() = nil, want track")
			}
			if tt.check != nil {
				tt.check(t, track)
			}
		})
	}
}

func TestCurrentlyPlayingUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := testClient(server)
	server.Close()

	_, err := client.CurrentlyPlaying(context.Background(), "T1")
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("CurrentlyPlaying() error = %v, want ErrUpstreamUnavailable", err)
	}
}
