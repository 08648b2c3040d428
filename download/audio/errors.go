package audio

import (
	"fmt"
	"strings"
)

// DownloadError represents an audio download error.
type DownloadError struct {
	Message  string
	Original error
}

func (e *DownloadError) Error() string {
	if e.Original != nil {
		return fmt.Sprintf("Audio download error: %s: %v", e.Message, e.Original)
	}
	return fmt.Sprintf("Audio download error: %s", e.Message)
}

func (e *DownloadError) Unwrap() error {
	return e.Original
}

// SearchError represents an audio search error.
type SearchError struct {
	Message  string
	Original error
}

func (e *SearchError) Error() string {
	if e.Original != nil {
		return fmt.Sprintf("Audio search error: %s: %v", e.Message, e.Original)
	}
	return fmt.Sprintf("Audio search error: %s", e.Message)
}

func (e *SearchError) Unwrap() error {
	return e.Original
}

// ValidationError reports a direct link that failed the format check or the
// availability probe.
type ValidationError struct {
	URL      string
	Message  string
	Original error
}

func (e *ValidationError) Error() string {
	if e.Original != nil {
		return fmt.Sprintf("Audio link invalid: %s: %s: %v", e.URL, e.Message, e.Original)
	}
	return fmt.Sprintf("Audio link invalid: %s: %s", e.URL, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Original
}

func isRateLimited(output string) bool {
	return strings.Contains(output, "429") ||
		strings.Contains(output, "rate limit") ||
		strings.Contains(output, "Too Many Requests")
}
