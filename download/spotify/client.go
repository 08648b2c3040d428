package spotify

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"net"
	"net/http"
	"time"

	"github.com/sv4u/spotigo"
)

// Config holds configuration for the Spotify client wrapper.
type Config struct {
	ClientID     string
	ClientSecret string

	// Artist cache
	CacheMaxSize int
	CacheTTL     int

	// Proactive rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   float64

	// Transient connection failures are retried with exponential backoff.
	// Rate limits and authentication failures never are.
	MaxRetries     int
	RetryBaseDelay time.Duration

	// APIPrefix overrides the Web API base URL (must end in "/").
	APIPrefix string
}

// SpotifyClient wraps spotigo.Client with proactive rate limiting, an artist
// cache and error classification into quota, connection and generic failures.
type SpotifyClient struct {
	client           *spotigo.Client
	artists          *TTLCache[*spotigo.Artist]
	rateLimiter      *RateLimiter
	rateLimitTracker *RateLimitTracker
	maxRetries       int
	retryBaseDelay   time.Duration
}

// NewSpotifyClient creates a new Spotify client wrapper authenticated with
// client credentials.
func NewSpotifyClient(config *Config) (*SpotifyClient, error) {
	auth, err := spotigo.NewClientCredentials(config.ClientID, config.ClientSecret)
	if err != nil {
		return nil, &ConnectionError{Reason: "failed to create auth", Original: err}
	}
	return newSpotifyClient(auth, config)
}

func newSpotifyClient(auth spotigo.AuthManager, config *Config) (*SpotifyClient, error) {
	opts := []spotigo.ClientOption{spotigo.WithRetryConfig(singleAttempt())}
	if config.APIPrefix != "" {
		opts = append(opts, spotigo.WithAPIPrefix(config.APIPrefix))
	}

	spotigoClient, err := spotigo.NewClient(auth, opts...)
	if err != nil {
		return nil, &ConnectionError{Reason: "failed to create spotigo client", Original: err}
	}

	retryBaseDelay := config.RetryBaseDelay
	if retryBaseDelay <= 0 {
		retryBaseDelay = time.Second
	}

	return &SpotifyClient{
		client:           spotigoClient,
		artists:          NewTTLCache[*spotigo.Artist](config.CacheMaxSize, config.CacheTTL),
		rateLimiter:      NewRateLimiter(config.RateLimitEnabled, config.RateLimitRequests, config.RateLimitWindow),
		rateLimitTracker: NewRateLimitTracker(),
		maxRetries:       config.MaxRetries,
		retryBaseDelay:   retryBaseDelay,
	}, nil
}

// singleAttempt turns off spotigo's own retry loop: every request is sent
// once. Retrying belongs to call, and a 429 has to reach the harvester
// without sleeping through Retry-After.
func singleAttempt() *spotigo.RetryConfig {
	return &spotigo.RetryConfig{
		MaxRetries:       0,
		StatusRetries:    0,
		StatusForcelist:  nil,
		BackoffFactor:    0.3,
		RetryAfterHeader: false,
	}
}

// GetPlaylistTracks retrieves the first page of a playlist's tracks.
// Pages are never cached so a resumed harvest sees the current playlist.
func (c *SpotifyClient) GetPlaylistTracks(ctx context.Context, playlistID string, opts *spotigo.PlaylistTracksOptions) (*spotigo.Paging[spotigo.PlaylistTrack], error) {
	var tracks *spotigo.Paging[spotigo.PlaylistTrack]
	err := c.call(ctx, "playlist_tracks", func() (err error) {
		tracks, err = c.client.PlaylistTracks(ctx, playlistID, opts)
		return err
	})
	if err != nil {
		return nil, err
	}

	c.rateLimitTracker.Clear()
	return tracks, nil
}

// NextPlaylistTracks follows a paging cursor to the next page of playlist tracks.
func (c *SpotifyClient) NextPlaylistTracks(ctx context.Context, paging interface{ GetNext() *string }) (*spotigo.Paging[spotigo.PlaylistTrack], error) {
	var next *spotigo.Paging[spotigo.PlaylistTrack]
	err := c.call(ctx, "next_page", func() (err error) {
		next, err = spotigo.NextGeneric[spotigo.PlaylistTrack](c.client, ctx, paging)
		return err
	})
	if err != nil {
		return nil, err
	}

	c.rateLimitTracker.Clear()
	return next, nil
}

// GetArtist retrieves artist metadata (cached).
func (c *SpotifyClient) GetArtist(ctx context.Context, artistIDOrURL string) (*spotigo.Artist, error) {
	artistID, err := spotigo.GetID(artistIDOrURL, "artist")
	if err != nil {
		return nil, &SpotifyError{Message: "invalid artist ID/URL", Original: err}
	}

	cacheKey := "artist:" + artistID
	if artist, ok := c.artists.Get(cacheKey); ok {
		return artist, nil
	}

	var artist *spotigo.Artist
	err = c.call(ctx, "artist", func() (err error) {
		artist, err = c.client.Artist(ctx, artistID)
		return err
	})
	if err != nil {
		return nil, err
	}

	c.artists.Set(cacheKey, artist)
	c.rateLimitTracker.Clear()
	return artist, nil
}

// RateLimitInfo returns the active rate limit, if any.
func (c *SpotifyClient) RateLimitInfo() *RateLimitInfo {
	return c.rateLimitTracker.Info()
}

// CacheStats returns artist cache statistics.
func (c *SpotifyClient) CacheStats() CacheStats {
	return c.artists.Stats()
}

// call runs one API request behind the rate limiter, retrying transient
// connection failures up to maxRetries times.
func (c *SpotifyClient) call(ctx context.Context, op string, fn func() error) error {
	for attempt := 0; ; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return err
		}

		err := c.handleError(fn())
		if err == nil {
			return nil
		}

		var conn *ConnectionError
		if !errors.As(err, &conn) || !conn.Transient || attempt >= c.maxRetries {
			return err
		}

		wait := c.retryBaseDelay * time.Duration(1<<uint(attempt))
		log.Printf("INFO: spotify_retry op=%s attempt=%d max_retries=%d wait=%s error=%v", op, attempt+1, c.maxRetries, wait, err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// handleError classifies a spotigo error and records rate limit state.
func (c *SpotifyClient) handleError(err error) error {
	classified := classifyError(err)
	var rl *RateLimitError
	if errors.As(classified, &rl) {
		c.rateLimitTracker.Update(rl.RetryAfter)
	}
	return classified
}

// classifyError maps an API error onto RateLimitError, ConnectionError or
// SpotifyError. Context errors pass through untouched.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr *spotigo.SpotifyError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr, err)
	}

	// Token requests fail with an OAuth error, not an HTTP status.
	var oauthErr *spotigo.SpotifyOAuthError
	if errors.As(err, &oauthErr) {
		return &ConnectionError{Reason: "authentication failed", Original: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return &ConnectionError{Reason: "network failure", Transient: true, Original: err}
	}

	return &SpotifyError{Message: "Spotify API error", Original: err}
}

func classifyStatus(apiErr *spotigo.SpotifyError, err error) error {
	status := apiErr.HTTPStatus
	switch {
	case status == http.StatusTooManyRequests:
		return &RateLimitError{RetryAfter: retryAfterSeconds(apiErr), Original: err}
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return &ConnectionError{Reason: fmt.Sprintf("authentication failed (HTTP %d)", status), Original: err}
	case status >= http.StatusInternalServerError:
		return &ConnectionError{Reason: fmt.Sprintf("server error %d", status), Transient: true, Original: err}
	}
	return &SpotifyError{Message: "Spotify API error", StatusCode: status, Original: err}
}

// retryAfterSeconds reads the Retry-After header of a 429, rounded up to
// whole seconds. 0 means the header was absent.
func retryAfterSeconds(apiErr *spotigo.SpotifyError) int {
	d, ok := apiErr.RetryAfter()
	if !ok || d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}
