// Package audio adapts the yt-dlp binary as the hosting service: probing a
// direct link, top-1 search and fetch-and-transcode.
package audio

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/sv4u/playlistdl/download/spotify"
)

// Config holds configuration for the audio provider.
type Config struct {
	YtDlpPath string

	// Search cache
	CacheMaxSize int
	CacheTTL     int

	// Runner overrides command execution; nil uses ExecRunner.
	Runner Runner
}

// Provider runs yt-dlp for validation, search and download.
type Provider struct {
	ytDlp       string
	runner      Runner
	searchCache *spotify.TTLCache[string]
}

// NewProvider creates a new audio provider.
func NewProvider(config *Config) *Provider {
	ytDlp := config.YtDlpPath
	if ytDlp == "" {
		ytDlp = "yt-dlp"
	}
	runner := config.Runner
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Provider{
		ytDlp:       ytDlp,
		runner:      runner,
		searchCache: spotify.NewTTLCache[string](config.CacheMaxSize, config.CacheTTL),
	}
}

// Probe is the lightweight existence check for a direct link: it fetches the
// video's metadata without downloading media.
func (p *Provider) Probe(ctx context.Context, url string) (*VideoMetadata, error) {
	if !IsYouTubeVideo(url) {
		return nil, &ValidationError{URL: url, Message: "not a recognised video link"}
	}

	meta, err := p.runYtDlpProbe(ctx, url)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &ValidationError{URL: url, Message: "probe failed", Original: err}
	}
	if meta.IsLive {
		return nil, &ValidationError{URL: url, Message: "live stream"}
	}
	if meta.Availability != "" && meta.Availability != "public" && meta.Availability != "unlisted" {
		return nil, &ValidationError{URL: url, Message: "availability " + meta.Availability}
	}
	return meta, nil
}

// Search returns the URL of the top search result for query (cached).
func (p *Provider) Search(ctx context.Context, query string) (string, error) {
	cacheKey := normalizeQuery(query)
	if url, ok := p.searchCache.Get(cacheKey); ok {
		if url == "" {
			return "", &SearchError{Message: "No audio found (cached)"}
		}
		return url, nil
	}

	url, err := p.runYtDlpSearch(ctx, "ytsearch1:"+query)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		var serr *SearchError
		if errors.As(err, &serr) && serr.Message == noResultsMessage {
			p.searchCache.Set(cacheKey, "")
		}
		return "", err
	}

	p.searchCache.Set(cacheKey, url)
	return url, nil
}

// Download fetches url and transcodes it per opts, returning the written path.
func (p *Provider) Download(ctx context.Context, url string, opts Options) (string, error) {
	if opts.OutputPath() == "" {
		return "", &DownloadError{Message: "no output path"}
	}
	path, err := p.runYtDlpDownload(ctx, url, opts)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		log.Printf("WARN: ytdlp_download_failed url=%s error=%v", url, err)
		return "", err
	}
	return path, nil
}

// CacheStats returns search cache statistics.
func (p *Provider) CacheStats() spotify.CacheStats {
	return p.searchCache.Stats()
}

func normalizeQuery(query string) string {
	return fmt.Sprintf("audio_search:%s", strings.ToLower(strings.TrimSpace(query)))
}
