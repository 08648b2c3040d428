// Package links resolves a catalog track URL to equivalent URLs on other
// platforms through the song.link (Odesli) API.
package links

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public Odesli links endpoint.
const DefaultBaseURL = "https://api.song.link/v1-alpha.1/links"

// Platform keys as reported by the service.
const (
	PlatformYouTube    = "youtube"
	PlatformAppleMusic = "appleMusic"
)

// Links holds the resolved URL per target platform; nil means unknown.
type Links struct {
	YouTube    *string
	AppleMusic *string
}

// Config configures a Resolver.
type Config struct {
	BaseURL           string
	APIKey            string
	Timeout           time.Duration
	RequestsPerMinute float64
}

// Resolver looks up cross-platform links. Every failure degrades to empty
// Links; Resolve never returns an error.
type Resolver struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

type odesliResponse struct {
	LinksByPlatform map[string]struct {
		URL string `json:"url"`
	} `json:"linksByPlatform"`
}

// NewResolver creates a resolver. Zero config fields take defaults.
func NewResolver(cfg Config) *Resolver {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Limit(cfg.RequestsPerMinute / 60)
	}

	return &Resolver{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(limit, 1),
	}
}

// Resolve returns the YouTube and Apple Music links for canonicalURL.
func (r *Resolver) Resolve(ctx context.Context, canonicalURL string) Links {
	if canonicalURL == "" {
		return Links{}
	}

	links, err := r.fetch(ctx, canonicalURL)
	if err != nil {
		log.Printf("WARN: link_resolution_failed url=%s error=%v", canonicalURL, err)
		return Links{}
	}
	return links
}

func (r *Resolver) fetch(ctx context.Context, canonicalURL string) (Links, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return Links{}, err
	}

	params := url.Values{}
	params.Set("url", canonicalURL)
	if r.apiKey != "" {
		params.Set("key", r.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return Links{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return Links{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return Links{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body odesliResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Links{}, fmt.Errorf("failed to decode response: %w", err)
	}

	return Links{
		YouTube:    platformURL(body, PlatformYouTube),
		AppleMusic: platformURL(body, PlatformAppleMusic),
	}, nil
}

func platformURL(body odesliResponse, platform string) *string {
	entry, ok := body.LinksByPlatform[platform]
	if !ok || entry.URL == "" {
		return nil
	}
	u := entry.URL
	return &u
}
