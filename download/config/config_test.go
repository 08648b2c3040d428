package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sv4u/playlistdl/download/spotify"
)

func clearCredentialEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvClientID, "")
	t.Setenv(EnvClientSecret, "")
}

func TestLoad(t *testing.T) {
	clearCredentialEnv(t)
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "playlistdl.yaml")

	configYAML := `version: "1"
spotify:
  client_id: "test_client_id"
  client_secret: "test_client_secret"
download:
  output_dir: "out"
  bitrate: "256"
harvest:
  checkpoint_interval: 5
`
	if err := os.WriteFile(configPath, []byte(configYAML), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Spotify.ClientID != "test_client_id" {
		t.Errorf("Expected client_id 'test_client_id', got '%s'", cfg.Spotify.ClientID)
	}
	if cfg.Download.OutputDir != "out" {
		t.Errorf("Expected output_dir 'out', got '%s'", cfg.Download.OutputDir)
	}
	if cfg.Download.Bitrate != "256" {
		t.Errorf("Expected bitrate '256', got '%s'", cfg.Download.Bitrate)
	}
	if cfg.Harvest.CheckpointInterval != 5 {
		t.Errorf("Expected checkpoint interval 5, got %d", cfg.Harvest.CheckpointInterval)
	}

	// Defaults
	if cfg.Download.Codec != "mp3" {
		t.Errorf("Expected codec 'mp3', got '%s'", cfg.Download.Codec)
	}
	if cfg.Links.TimeoutSeconds != 10 {
		t.Errorf("Expected links timeout 10, got %d", cfg.Links.TimeoutSeconds)
	}
	if !cfg.Download.EmbedTags() {
		t.Error("Expected tag embedding enabled by default")
	}
	if cfg.Paths.Metadata != "metadata/spotify_playlist_metadata.json" {
		t.Errorf("Unexpected metadata path: %s", cfg.Paths.Metadata)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearCredentialEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Version != CurrentVersion {
		t.Errorf("Expected version %s, got %s", CurrentVersion, cfg.Version)
	}
	if cfg.Harvest.CheckpointInterval != 10 {
		t.Errorf("Expected checkpoint interval 10, got %d", cfg.Harvest.CheckpointInterval)
	}
	if cfg.Download.OutputDir != "songs" {
		t.Errorf("Expected output dir 'songs', got '%s'", cfg.Download.OutputDir)
	}
}

func TestLoad_CredentialsFromEnvironment(t *testing.T) {
	t.Setenv(EnvClientID, "env_id")
	t.Setenv(EnvClientSecret, "env_secret")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Spotify.ClientID != "env_id" || cfg.Spotify.ClientSecret != "env_secret" {
		t.Errorf("Expected env credentials, got %q/%q", cfg.Spotify.ClientID, cfg.Spotify.ClientSecret)
	}
	if err := cfg.RequireCredentials(); err != nil {
		t.Errorf("RequireCredentials() error = %v", err)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(configPath, []byte("version: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(configPath)
	if _, ok := err.(*ConfigError); !ok {
		t.Errorf("Expected ConfigError, got %T (%v)", err, err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"wrong version", func(c *Config) { c.Version = "2" }, "Invalid version"},
		{"bad codec", func(c *Config) { c.Download.Codec = "wav" }, "download.codec"},
		{"negative interval", func(c *Config) { c.Harvest.CheckpointInterval = -1 }, "checkpoint_interval"},
		{"negative rate", func(c *Config) { c.Links.RequestsPerMinute = -1 }, "requests_per_minute"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.SetDefaults()
			tt.modify(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() should fail")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() error = %v, want substring %q", err, tt.want)
			}
		})
	}
}

func TestRequireCredentials_Missing(t *testing.T) {
	cfg := &Config{}
	cfg.SetDefaults()
	err := cfg.RequireCredentials()
	if err == nil {
		t.Fatal("RequireCredentials() should fail without credentials")
	}
	if !strings.Contains(err.Error(), "client_id and client_secret") {
		t.Errorf("Unexpected message: %v", err)
	}
}

func TestReadPlaylistURL(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name    string
		content string
		want    string
		wantErr bool
	}{
		{"valid", "https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M?si=abc\n", "https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M?si=abc", false},
		{"surrounding whitespace", "  https://open.spotify.com/playlist/abc123  \nignored\n", "https://open.spotify.com/playlist/abc123", false},
		{"album url", "https://open.spotify.com/album/abc123\n", "", true},
		{"empty file", "", "", true},
		{"no id", "https://open.spotify.com/playlist/\n", "", true},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, "input"+string(rune('a'+i))+".txt")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			got, err := ReadPlaylistURL(path)
			if tt.wantErr {
				var inputErr *InputError
				if !errors.As(err, &inputErr) {
					t.Fatalf("Expected InputError, got %T (%v)", err, err)
				}
				if tt.content != "" && !errors.Is(err, spotify.ErrInvalidPlaylistURL) {
					t.Errorf("Expected ErrInvalidPlaylistURL in chain, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadPlaylistURL() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ReadPlaylistURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReadPlaylistURL_MissingFile(t *testing.T) {
	_, err := ReadPlaylistURL(filepath.Join(t.TempDir(), "nope.txt"))
	var inputErr *InputError
	if !errors.As(err, &inputErr) {
		t.Fatalf("Expected InputError, got %T", err)
	}
	if !os.IsNotExist(errors.Unwrap(err)) {
		t.Errorf("Expected not-exist cause, got %v", errors.Unwrap(err))
	}
}
