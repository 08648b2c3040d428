package audio

import (
	"regexp"
	"strings"
)

var videoPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:youtube\.com/watch\?(?:.*&)?v=|youtu\.be/)([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`(?i)youtube\.com/embed/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`(?i)youtube\.com/v/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`(?i)youtube\.com/shorts/([a-zA-Z0-9_-]{11})`),
}

// IsYouTubeURL checks if a URL points at a YouTube host.
func IsYouTubeURL(url string) bool {
	if url == "" {
		return false
	}
	urlLower := strings.ToLower(url)
	return strings.Contains(urlLower, "youtube.com") ||
		strings.Contains(urlLower, "youtu.be")
}

// IsYouTubeVideo checks if a URL is a well-formed YouTube video link.
func IsYouTubeVideo(url string) bool {
	return VideoID(url) != ""
}

// VideoID extracts the 11-character video id, or "" if url is not a video link.
func VideoID(url string) string {
	if !IsYouTubeURL(url) {
		return ""
	}
	for _, pattern := range videoPatterns {
		if m := pattern.FindStringSubmatch(url); m != nil {
			return m[1]
		}
	}
	return ""
}
