package audio

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const noResultsMessage = "No results from yt-dlp"

// VideoMetadata is the subset of yt-dlp's info JSON used to validate a link.
type VideoMetadata struct {
	VideoID      string  `json:"id"`
	Title        string  `json:"title"`
	Duration     float64 `json:"duration"`
	Uploader     string  `json:"uploader"`
	WebpageURL   string  `json:"webpage_url"`
	Availability string  `json:"availability"`
	IsLive       bool    `json:"is_live"`
}

// ytDlpSearchResult represents one line of yt-dlp flat search output.
type ytDlpSearchResult struct {
	URL        string              `json:"url,omitempty"`
	WebpageURL string              `json:"webpage_url,omitempty"`
	ID         string              `json:"id,omitempty"`
	Entries    []ytDlpSearchResult `json:"entries,omitempty"`
}

func (p *Provider) runYtDlpProbe(ctx context.Context, url string) (*VideoMetadata, error) {
	output, err := p.runner.Run(ctx, p.ytDlp,
		"--quiet",
		"--no-warnings",
		"--skip-download",
		"--dump-json",
		"--no-playlist",
		url,
	)
	if err != nil {
		return nil, err
	}

	var meta VideoMetadata
	if err := json.Unmarshal(output, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse yt-dlp metadata output: %w", err)
	}
	if meta.VideoID == "" {
		return nil, fmt.Errorf("yt-dlp metadata has no video id")
	}
	return &meta, nil
}

// runYtDlpSearch runs yt-dlp to search for audio.
func (p *Provider) runYtDlpSearch(ctx context.Context, searchQuery string) (string, error) {
	output, err := p.runner.Run(ctx, p.ytDlp,
		"--quiet",
		"--no-warnings",
		"--flat-playlist",
		"--dump-json",
		searchQuery,
	)
	if err != nil {
		if isRateLimited(err.Error()) {
			return "", &SearchError{Message: "Rate limited by provider", Original: err}
		}
		return "", &SearchError{Message: "yt-dlp search failed", Original: err}
	}

	trimmed := strings.TrimSpace(string(output))
	if trimmed == "" {
		return "", &SearchError{Message: noResultsMessage}
	}

	// yt-dlp prints one JSON object per result
	firstLine := strings.SplitN(trimmed, "\n", 2)[0]
	var result ytDlpSearchResult
	if err := json.Unmarshal([]byte(firstLine), &result); err != nil {
		return "", &SearchError{Message: "Failed to parse yt-dlp output", Original: err}
	}

	if url := resultURL(result); url != "" {
		return url, nil
	}
	if len(result.Entries) > 0 {
		if url := resultURL(result.Entries[0]); url != "" {
			return url, nil
		}
	}
	return "", &SearchError{Message: noResultsMessage}
}

func resultURL(r ytDlpSearchResult) string {
	if r.WebpageURL != "" {
		return r.WebpageURL
	}
	if r.URL != "" {
		return r.URL
	}
	if r.ID != "" {
		return "https://www.youtube.com/watch?v=" + r.ID
	}
	return ""
}

// runYtDlpDownload runs yt-dlp to download and transcode audio.
func (p *Provider) runYtDlpDownload(ctx context.Context, url string, opts Options) (string, error) {
	outputPath := opts.OutputPath()
	outputDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", &DownloadError{
			Message:  fmt.Sprintf("Failed to create output directory: %s", outputDir),
			Original: err,
		}
	}

	// yt-dlp appends the extension itself
	outputTemplate := strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + ".%(ext)s"

	args := []string{
		"--format", "bestaudio/best",
		"--quiet",
		"--no-warnings",
		"--no-playlist",
		"--encoding", "UTF-8",
		"--output", outputTemplate,
		"--extract-audio",
		"--audio-format", opts.Codec(),
	}
	if opts.Codec() != "flac" {
		args = append(args, "--audio-quality", opts.Bitrate())
	}
	args = append(args, url)

	if _, err := p.runner.Run(ctx, p.ytDlp, args...); err != nil {
		if isRateLimited(err.Error()) {
			return "", &DownloadError{Message: "Rate limited by provider", Original: err}
		}
		return "", &DownloadError{Message: "yt-dlp download failed", Original: err}
	}

	if _, err := os.Stat(outputPath); err != nil {
		return "", &DownloadError{Message: fmt.Sprintf("Downloaded file not found at %s", outputPath), Original: err}
	}
	return outputPath, nil
}
