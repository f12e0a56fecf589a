package spotify

import "time"

// TokenSet is the result of a successful code exchange.
type TokenSet struct {
	AccessToken  string
	RefreshToken string // empty when Spotify did not reissue one
	Expiry       time.Time
}

// Profile identifies the Spotify account behind an access token.
type Profile struct {
	ID          string
	DisplayName string
}

// Track is the normalized currently-playing payload. Pointer fields are nil
// when Spotify omitted the value.
type Track struct {
	Name       string   `json:"name"`
	Artists    []string `json:"artists"`
	Album      string   `json:"album"`
	URL        *string  `json:"url"`
	ImageURL   *string  `json:"image_url"`
	IsPlaying  bool     `json:"is_playing"`
	ProgressMS *int     `json:"progress_ms"`
	DurationMS *int     `json:"duration_ms"`
}

// Wire types for /me/player/currently-playing, decoded defensively: every
// field Spotify may omit is optional here.
// https://developer.spotify.com/documentation/web-api/reference/get-the-users-currently-playing-track
type currentlyPlayingResponse struct {
	IsPlaying  bool         `json:"is_playing"`
	ProgressMS *int         `json:"progress_ms"`
	Item       *playingItem `json:"item"`
}

type playingItem struct {
	Name         string            `json:"name"`
	DurationMS   *int              `json:"duration_ms"`
	Artists      []trackArtist     `json:"artists"`
	Album        trackAlbum        `json:"album"`
	ExternalURLs map[string]string `json:"external_urls"`
}

type trackArtist struct {
	Name string `json:"name"`
}

type trackAlbum struct {
	Name   string       `json:"name"`
	Images []albumImage `json:"images"`
}

type albumImage struct {
	URL string `json:"url"`
}

// normalize flattens the wire payload into a Track, or nil when the payload
// carries no track item.
func (r *currentlyPlayingResponse) normalize() *Track {
	if r.Item == nil {
		return nil
	}

	artists := make([]string, 0, len(r.Item.Artists))
	for _, artist := range r.Item.Artists {
		artists = append(artists, artist.Name)
	}

	track := &Track{
		Name:       r.Item.Name,
		Artists:    artists,
		Album:      r.Item.Album.Name,
		IsPlaying:  r.IsPlaying,
		ProgressMS: r.ProgressMS,
		DurationMS: r.Item.DurationMS,
	}

	if u, ok := r.Item.ExternalURLs["spotify"]; ok && u != "" {
		track.URL = &u
	}
	if len(r.Item.Album.Images) > 0 {
		imageURL := r.Item.Album.Images[0].URL
		track.ImageURL = &imageURL
	}

	return track
}
