package spotify

import (
	"errors"
	"fmt"
)

// ErrInvalidPlaylistURL is returned for anything that is not a canonical
// playlist URL.
var ErrInvalidPlaylistURL = errors.New("invalid Spotify playlist URL")

// RateLimitError represents a rate limit or quota rejection from the Spotify API.
type RateLimitError struct {
	RetryAfter int   // Seconds to wait before retrying, 0 if unknown
	Original   error // Original error from spotigo
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("Spotify API rate limited: retry after %d seconds: %v", e.RetryAfter, e.Original)
	}
	return fmt.Sprintf("Spotify API rate limited: %v", e.Original)
}

func (e *RateLimitError) Unwrap() error {
	return e.Original
}

// ConnectionError represents an authentication failure or a transient
// network/server failure talking to the Spotify API.
type ConnectionError struct {
	Reason    string
	Transient bool // server or network failure, worth retrying
	Original  error
}

func (e *ConnectionError) Error() string {
	if e.Original != nil {
		return fmt.Sprintf("Spotify API connection failure: %s: %v", e.Reason, e.Original)
	}
	return fmt.Sprintf("Spotify API connection failure: %s", e.Reason)
}

func (e *ConnectionError) Unwrap() error {
	return e.Original
}

// SpotifyError represents any other Spotify API error (not found, bad
// request, malformed response).
type SpotifyError struct {
	Message    string
	StatusCode int
	Original   error
}

func (e *SpotifyError) Error() string {
	if e.Original != nil {
		return fmt.Sprintf("Spotify API error: %s: %v", e.Message, e.Original)
	}
	return fmt.Sprintf("Spotify API error: %s", e.Message)
}

func (e *SpotifyError) Unwrap() error {
	return e.Original
}
