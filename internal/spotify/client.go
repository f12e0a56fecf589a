// Package spotify speaks the Spotify Web API: the OAuth2 Authorization Code
// exchange, the current user profile, and the currently-playing endpoint.
package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

const (
	apiBaseURL           = "https://api.spotify.com/v1"
	currentlyPlayingPath = "/me/player/currently-playing"

	// Every outbound call to Spotify is bounded by this timeout.
	requestTimeout = 10 * time.Second

	// Spotify reports token lifetimes in seconds; assume the documented
	// default when the field is absent.
	defaultTokenLifetime = time.Hour
)

// Sentinel errors. Callers distinguish "Spotify said no" from "Spotify is
// unreachable" so users know whether to re-authorize or simply retry later.
var (
	// ErrUpstreamAuth is returned when Spotify rejects a request: bad or
	// expired token, invalid authorization code.
	ErrUpstreamAuth = errors.New("spotify rejected the request")

	// ErrUpstreamUnavailable is returned on network failures or timeouts
	// reaching Spotify.
	ErrUpstreamUnavailable = errors.New("spotify is unreachable")
)

// Config holds the Spotify application credentials. The redirect URI must
// exactly match the value registered with Spotify.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// Client is a stateless Spotify Web API client. It holds no per-user state;
// access tokens are passed into each call.
type Client struct {
	auth       *spotifyauth.Authenticator
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a Client from an immutable Config.
func NewClient(cfg Config) *Client {
	auth := spotifyauth.New(
		spotifyauth.WithClientID(cfg.ClientID),
		spotifyauth.WithClientSecret(cfg.ClientSecret),
		spotifyauth.WithRedirectURL(cfg.RedirectURI),
		spotifyauth.WithScopes(
			spotifyauth.ScopeUserReadCurrentlyPlaying,
			spotifyauth.ScopeUserReadRecentlyPlayed,
		),
	)

	return &Client{
		auth:       auth,
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    apiBaseURL,
	}
}

// AuthURL builds the authorization endpoint URL carrying the opaque state.
// The state parameter is the only correlation between the authorization
// request and its callback.
func (c *Client) AuthURL(state string) string {
	return c.auth.AuthURL(state)
}

// Exchange performs the Authorization Code exchange. Client credentials are
// sent by the oauth2 transport; the resulting token set carries an absolute
// expiry, defaulted to now plus one hour when Spotify omits a lifetime.
func (c *Client) Exchange(ctx context.Context, code string) (*TokenSet, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	token, err := c.auth.Exchange(ctx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return nil, fmt.Errorf("%w: token exchange returned %d", ErrUpstreamAuth, retrieveErr.Response.StatusCode)
		}
		return nil, fmt.Errorf("%w: token exchange: %v", ErrUpstreamUnavailable, err)
	}

	return newTokenSet(token), nil
}

// CurrentProfile fetches the profile behind an access token.
func (c *Client) CurrentProfile(ctx context.Context, accessToken string) (*Profile, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	httpClient := c.auth.Client(ctx, &oauth2.Token{AccessToken: accessToken})

	user, err := spotify.New(httpClient).CurrentUser(ctx)
	if err != nil {
		var apiErr spotify.Error
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("%w: profile fetch returned %d", ErrUpstreamAuth, apiErr.Status)
		}
		return nil, fmt.Errorf("%w: profile fetch: %v", ErrUpstreamUnavailable, err)
	}

	return &Profile{ID: user.ID, DisplayName: user.DisplayName}, nil
}

// CurrentlyPlaying fetches and normalizes the user's playback state.
// Returns (nil, nil) when nothing is playing: Spotify answers 204, or 200
// with no track item.
func (c *Client) CurrentlyPlaying(ctx context.Context, accessToken string) (*Track, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+currentlyPlayingPath, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: currently-playing fetch: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: currently-playing returned %d", ErrUpstreamAuth, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading currently-playing response: %w", err)
	}

	var payload currentlyPlayingResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("parsing currently-playing response: %w", err)
	}

	return payload.normalize(), nil
}

// newTokenSet converts an oauth2 token, filling in the default lifetime when
// the provider did not report one.
func newTokenSet(token *oauth2.Token) *TokenSet {
	expiry := token.Expiry
	if expiry.IsZero() {
		expiry = time.Now().Add(defaultTokenLifetime)
	}
	return &TokenSet{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Expiry:       expiry,
	}
}
