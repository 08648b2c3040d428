package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/sv4u/playlistdl/download/spotify"
)

// InputError reports an unreadable or malformed playlist input file.
type InputError struct {
	Path string
	Err  error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input %s: %v", e.Path, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// ReadPlaylistURL returns the playlist URL on the first line of the input
// file. The line must be a canonical catalog playlist URL.
func ReadPlaylistURL(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &InputError{Path: path, Err: err}
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	var line string
	if scanner.Scan() {
		line = strings.TrimSpace(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return "", &InputError{Path: path, Err: err}
	}

	if err := spotify.ValidatePlaylistURL(line); err != nil {
		return "", &InputError{Path: path, Err: err}
	}
	return line, nil
}
