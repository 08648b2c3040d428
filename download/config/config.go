package config

import (
	"fmt"
	"strings"
)

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}

// SpotifySettings holds catalog service credentials and client tuning.
type SpotifySettings struct {
	// Credentials may also come from SPOTIFY_CLIENT_ID / SPOTIFY_CLIENT_SECRET.
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`

	MaxRetries        int     `yaml:"max_retries"`
	RateLimitEnabled  bool    `yaml:"rate_limit_enabled"`
	RateLimitRequests int     `yaml:"rate_limit_requests"`
	RateLimitWindow   float64 `yaml:"rate_limit_window"`

	// Artist lookups are cached; many playlist tracks share artists.
	CacheMaxSize int `yaml:"cache_max_size"`
	CacheTTL     int `yaml:"cache_ttl"`
}

// LinkSettings configures the link-resolution service.
type LinkSettings struct {
	BaseURL           string  `yaml:"base_url"`
	APIKey            string  `yaml:"api_key"`
	TimeoutSeconds    int     `yaml:"timeout_seconds"`
	RequestsPerMinute float64 `yaml:"requests_per_minute"`
}

// DownloadSettings configures the hosting/download service.
type DownloadSettings struct {
	OutputDir     string `yaml:"output_dir"`
	Codec         string `yaml:"codec"`
	Bitrate       string `yaml:"bitrate"`
	YtDlpPath     string `yaml:"ytdlp_path"`
	EmbedMetadata *bool  `yaml:"embed_metadata"` // nil = enabled

	SearchCacheMaxSize int `yaml:"search_cache_max_size"`
	SearchCacheTTL     int `yaml:"search_cache_ttl"`
}

// HarvestSettings configures the paginated harvest.
type HarvestSettings struct {
	CheckpointInterval int `yaml:"checkpoint_interval"`
}

// PathSettings holds the on-disk locations used by a run.
type PathSettings struct {
	Input      string `yaml:"input"`
	Metadata   string `yaml:"metadata"`
	Checkpoint string `yaml:"checkpoint"`
	History    string `yaml:"history"`
	Log        string `yaml:"log"`

	HistoryRetention int `yaml:"history_retention"` // 0 = unlimited
}

// Config represents the main configuration model.
type Config struct {
	Version  string           `yaml:"version"`
	Spotify  SpotifySettings  `yaml:"spotify"`
	Links    LinkSettings     `yaml:"links"`
	Download DownloadSettings `yaml:"download"`
	Harvest  HarvestSettings  `yaml:"harvest"`
	Paths    PathSettings     `yaml:"paths"`
}

// SetDefaults sets default values for every section.
func (c *Config) SetDefaults() {
	if c.Version == "" {
		c.Version = CurrentVersion
	}

	s := &c.Spotify
	if s.MaxRetries == 0 {
		s.MaxRetries = 3
	}
	if !s.RateLimitEnabled && s.RateLimitRequests == 0 {
		s.RateLimitEnabled = true
	}
	if s.RateLimitRequests == 0 {
		s.RateLimitRequests = 10
	}
	if s.RateLimitWindow == 0 {
		s.RateLimitWindow = 1.0
	}
	if s.CacheMaxSize == 0 {
		s.CacheMaxSize = 1000
	}
	if s.CacheTTL == 0 {
		s.CacheTTL = 3600
	}

	l := &c.Links
	if l.BaseURL == "" {
		l.BaseURL = "https://api.song.link/v1-alpha.1/links"
	}
	if l.TimeoutSeconds == 0 {
		l.TimeoutSeconds = 10
	}
	if l.RequestsPerMinute == 0 {
		l.RequestsPerMinute = 10
	}

	d := &c.Download
	if d.OutputDir == "" {
		d.OutputDir = "songs"
	}
	if d.Codec == "" {
		d.Codec = "mp3"
	}
	if d.Bitrate == "" {
		d.Bitrate = "320"
	}
	if d.YtDlpPath == "" {
		d.YtDlpPath = "yt-dlp"
	}
	if d.EmbedMetadata == nil {
		enabled := true
		d.EmbedMetadata = &enabled
	}
	if d.SearchCacheMaxSize == 0 {
		d.SearchCacheMaxSize = 500
	}
	if d.SearchCacheTTL == 0 {
		d.SearchCacheTTL = 86400
	}

	if c.Harvest.CheckpointInterval == 0 {
		c.Harvest.CheckpointInterval = 10
	}

	p := &c.Paths
	if p.Input == "" {
		p.Input = "spotify_playlist.txt"
	}
	if p.Metadata == "" {
		p.Metadata = "metadata/spotify_playlist_metadata.json"
	}
	if p.Checkpoint == "" {
		p.Checkpoint = "metadata/harvest_progress.json"
	}
	if p.History == "" {
		p.History = ".history"
	}
	if p.Log == "" {
		p.Log = "download_log.txt"
	}
	if p.HistoryRetention < 0 {
		p.HistoryRetention = 0
	}
}

// Validate checks the settings. Credentials are not required here: the
// download phase runs without catalog access.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return &ConfigError{
			Message: fmt.Sprintf("Invalid version: %s. Expected %s", c.Version, CurrentVersion),
		}
	}

	c.Spotify.ClientID = strings.TrimSpace(c.Spotify.ClientID)
	c.Spotify.ClientSecret = strings.TrimSpace(c.Spotify.ClientSecret)

	if c.Spotify.RateLimitRequests < 1 {
		return &ConfigError{
			Message: fmt.Sprintf("Invalid spotify.rate_limit_requests: %d. Must be at least 1", c.Spotify.RateLimitRequests),
		}
	}
	if c.Links.TimeoutSeconds < 1 {
		return &ConfigError{
			Message: fmt.Sprintf("Invalid links.timeout_seconds: %d. Must be at least 1", c.Links.TimeoutSeconds),
		}
	}
	if c.Links.RequestsPerMinute <= 0 {
		return &ConfigError{
			Message: fmt.Sprintf("Invalid links.requests_per_minute: %v. Must be positive", c.Links.RequestsPerMinute),
		}
	}
	if c.Harvest.CheckpointInterval < 1 {
		return &ConfigError{
			Message: fmt.Sprintf("Invalid harvest.checkpoint_interval: %d. Must be at least 1", c.Harvest.CheckpointInterval),
		}
	}

	validCodecs := map[string]bool{
		"mp3":  true,
		"m4a":  true,
		"opus": true,
		"flac": true,
	}
	if !validCodecs[c.Download.Codec] {
		return &ConfigError{
			Message: fmt.Sprintf("Invalid download.codec: %s. Must be one of: mp3, m4a, opus, flac", c.Download.Codec),
		}
	}

	return nil
}

// RequireCredentials reports a ConfigError when catalog credentials are missing.
func (c *Config) RequireCredentials() error {
	missing := []string{}
	if c.Spotify.ClientID == "" {
		missing = append(missing, "client_id")
	}
	if c.Spotify.ClientSecret == "" {
		missing = append(missing, "client_secret")
	}
	if len(missing) > 0 {
		return &ConfigError{
			Message: fmt.Sprintf(
				"Missing Spotify %s. Set spotify.client_id and spotify.client_secret in the configuration file or SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET in the environment",
				strings.Join(missing, " and "),
			),
		}
	}
	return nil
}

// EmbedTags reports whether downloaded files get ID3 tags.
func (d *DownloadSettings) EmbedTags() bool {
	return d.EmbedMetadata == nil || *d.EmbedMetadata
}
