package spotify

import (
	"fmt"
	"regexp"
	"strings"
)

// PlaylistURLPrefix is the canonical playlist URL prefix.
const PlaylistURLPrefix = "https://open.spotify.com/playlist/"

var playlistIDPattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// ValidatePlaylistURL checks that u is a canonical playlist URL with a
// well-formed id.
func ValidatePlaylistURL(u string) error {
	_, err := ExtractPlaylistID(u)
	return err
}

// ExtractPlaylistID returns the final path segment of a playlist URL with any
// query string or fragment removed.
func ExtractPlaylistID(u string) (string, error) {
	u = strings.TrimSpace(u)
	if !strings.HasPrefix(u, PlaylistURLPrefix) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPlaylistURL, u)
	}

	rest := u
	if i := strings.IndexAny(rest, "?#"); i >= 0 {
		rest = rest[:i]
	}
	rest = strings.TrimRight(rest, "/")
	id := rest[strings.LastIndex(rest, "/")+1:]

	if !playlistIDPattern.MatchString(id) || id == "playlist" {
		return "", fmt.Errorf("%w: no playlist id in %q", ErrInvalidPlaylistURL, u)
	}
	return id, nil
}
