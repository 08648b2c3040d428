package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// CurrentVersion is the only configuration schema version accepted.
const CurrentVersion = "1"

// Environment variables consulted for catalog credentials.
const (
	EnvClientID     = "SPOTIFY_CLIENT_ID"
	EnvClientSecret = "SPOTIFY_CLIENT_SECRET"
)

// Load reads the YAML configuration at path, applies defaults, fills missing
// credentials from the environment (after loading .env, if present) and
// validates the result. A missing file yields the default configuration.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, &ConfigError{
					Message: fmt.Sprintf("Error parsing YAML file: %v", err),
				}
			}
		case os.IsNotExist(err):
			// No file: defaults plus environment.
		default:
			return nil, &ConfigError{
				Message: fmt.Sprintf("Error reading configuration file: %v", err),
			}
		}
	}

	// A missing .env is normal.
	_ = godotenv.Load()
	applyEnv(&cfg)

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv fills credentials not set in the file from the environment.
func applyEnv(cfg *Config) {
	if cfg.Spotify.ClientID == "" {
		cfg.Spotify.ClientID = os.Getenv(EnvClientID)
	}
	if cfg.Spotify.ClientSecret == "" {
		cfg.Spotify.ClientSecret = os.Getenv(EnvClientSecret)
	}
}
