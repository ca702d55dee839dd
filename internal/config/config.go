// Package config loads notetune settings from defaults, an optional YAML file
// and environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// ErrMissingCredentials is returned by ValidateAuth when the client id or secret is unset.
var ErrMissingCredentials = errors.New("config: SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET are required to authenticate")

// Config is the whole application configuration.
type Config struct {
	Spotify  SpotifyConfig  `koanf:"spotify"`
	Callback CallbackConfig `koanf:"callback"`
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Analysis AnalysisConfig `koanf:"analysis"`
	Auth     AuthConfig     `koanf:"auth"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// SpotifyConfig identifies the application and the API endpoints.
type SpotifyConfig struct {
	ClientID     string `koanf:"client_id"`
	ClientSecret string `koanf:"client_secret"`
	RedirectURI  string `koanf:"redirect_uri" validate:"required,url"`
	APIURL       string `koanf:"api_url" validate:"required,url"`
	AccountsURL  string `koanf:"accounts_url" validate:"required,url"`
}

// CallbackConfig is the local listener the authorization page redirects to.
type CallbackConfig struct {
	Addr string `koanf:"addr" validate:"required,hostname_port"`
}

// ServerConfig is the command API.
type ServerConfig struct {
	Addr             string        `koanf:"addr" validate:"required,hostname_port"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	CORSOrigins      []string      `koanf:"cors_origins"`
	AnalyzePerMinute int           `koanf:"analyze_per_minute" validate:"gte=0"`
}

// DatabaseConfig locates the settings database.
type DatabaseConfig struct {
	Path string `koanf:"path" validate:"required"`
}

// AnalysisConfig tunes the note pipeline.
type AnalysisConfig struct {
	MoodsPath   string `koanf:"moods_path"`
	LexiconPath string `koanf:"lexicon_path"`
	Limit       int    `koanf:"limit" validate:"gte=1,lte=100"`
	Workers     int    `koanf:"workers" validate:"gte=1,lte=64"`
}

// AuthConfig bounds the authorization wait.
type AuthConfig struct {
	Timeout     time.Duration `koanf:"timeout" validate:"gt=0"`
	OpenBrowser bool          `koanf:"open_browser"`
}

// LoggingConfig selects level and format.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

func defaultConfig() *Config {
	return &Config{
		Spotify: SpotifyConfig{
			RedirectURI: "http://127.0.0.1:5500/callback",
			APIURL:      "https://api.spotify.com/v1",
			AccountsURL: "https://accounts.spotify.com",
		},
		Callback: CallbackConfig{Addr: "127.0.0.1:5500"},
		Server: ServerConfig{
			Addr:             ":8080",
			ShutdownTimeout:  10 * time.Second,
			AnalyzePerMinute: 30,
		},
		Database: DatabaseConfig{Path: "notetune.db"},
		Analysis: AnalysisConfig{
			Limit:   20,
			Workers: 4,
		},
		Auth: AuthConfig{
			Timeout:     5 * time.Minute,
			OpenBrowser: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load builds the configuration: defaults, then the config file if one is
// found, then environment variables.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints.
func (c *Config) Validate() error {
	return validate.Struct(c)
}

// ValidateAuth checks what the authorization flow needs on top of Validate.
func (c *Config) ValidateAuth() error {
	if strings.TrimSpace(c.Spotify.ClientID) == "" || strings.TrimSpace(c.Spotify.ClientSecret) == "" {
		return ErrMissingCredentials
	}
	return nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

var envMappings = map[string]string{
	"spotify_client_id":     "spotify.client_id",
	"spotify_client_secret": "spotify.client_secret",
	"spotify_redirect_uri":  "spotify.redirect_uri",
	"spotify_api_url":       "spotify.api_url",
	"spotify_accounts_url":  "spotify.accounts_url",

	"callback_addr": "callback.addr",

	"http_addr":          "server.addr",
	"shutdown_timeout":   "server.shutdown_timeout",
	"cors_origins":       "server.cors_origins",
	"analyze_per_minute": "server.analyze_per_minute",

	"database_path": "database.path",

	"moods_path":           "analysis.moods_path",
	"lexicon_path":         "analysis.lexicon_path",
	"recommendation_limit": "analysis.limit",
	"analysis_workers":     "analysis.workers",

	"auth_timeout":      "auth.timeout",
	"auth_open_browser": "auth.open_browser",

	"log_level":  "logging.level",
	"log_format": "logging.format",
}

// envTransformFunc maps environment variable names to koanf paths:
//   - SPOTIFY_CLIENT_ID -> spotify.client_id
//   - HTTP_ADDR -> server.addr
//
// Unmapped variables are skipped.
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}

// sliceConfigPaths are parsed from comma-separated strings when set from the environment.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}
