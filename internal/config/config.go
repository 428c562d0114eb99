// Package config loads and validates the plexistence configuration file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the full configuration as read from config.yaml.
type Config struct {
	Plex    PlexConfig    `koanf:"plex"`
	Discord DiscordConfig `koanf:"discord"`
	TMDB    TMDBConfig    `koanf:"tmdb"`
	Trakt   TraktConfig   `koanf:"trakt"`
	Log     LogConfig     `koanf:"log"`
}

// PlexConfig holds Plex account credentials and session-watch settings.
type PlexConfig struct {
	Username  string        `koanf:"username"`
	Password  string        `koanf:"password"`
	TwoFactor bool          `koanf:"two_factor"`
	TokenFile string        `koanf:"token_file"`
	Servers   []string      `koanf:"servers"`
	Users     []string      `koanf:"users"`
	Timeout   time.Duration `koanf:"timeout"`
}

// DiscordConfig holds Rich Presence settings.
type DiscordConfig struct {
	AppID   string `koanf:"app_id"`
	Minimal bool   `koanf:"minimal"`
}

// TMDBConfig holds the metadata catalog settings.
type TMDBConfig struct {
	Enabled bool   `koanf:"enabled"`
	APIKey  string `koanf:"api_key"`
}

// TraktConfig holds the cross-reference provider settings.
type TraktConfig struct {
	Enabled bool   `koanf:"enabled"`
	APIKey  string `koanf:"api_key"`
}

// LogConfig controls log level and file rotation.
type LogConfig struct {
	Level      string `koanf:"level"`
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days"`
	Compress   bool   `koanf:"compress"`
}

// Load reads the YAML configuration at path and returns a validated Config.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Plex.TokenFile == "" {
		cfg.Plex.TokenFile = "auth.txt"
	}
	if cfg.Plex.Timeout == 0 {
		cfg.Plex.Timeout = 30 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.MaxSizeMB == 0 {
		cfg.Log.MaxSizeMB = 50
	}
	if cfg.Log.MaxBackups == 0 {
		cfg.Log.MaxBackups = 5
	}
	if cfg.Log.MaxAgeDays == 0 {
		cfg.Log.MaxAgeDays = 30
	}
}

func validate(cfg *Config) error {
	if cfg.Plex.Username == "" || cfg.Plex.Password == "" {
		return fmt.Errorf("plex.username and plex.password are required")
	}
	if len(cfg.Plex.Servers) == 0 {
		return fmt.Errorf("plex.servers must list at least one server name")
	}
	if len(cfg.Plex.Users) == 0 {
		return fmt.Errorf("plex.users must list at least one username to watch")
	}
	if cfg.Discord.AppID == "" {
		return fmt.Errorf("discord.app_id is required")
	}
	if cfg.TMDB.Enabled && cfg.TMDB.APIKey == "" {
		return fmt.Errorf("tmdb.api_key is required when tmdb.enabled is true")
	}
	if cfg.Trakt.Enabled && cfg.Trakt.APIKey == "" {
		return fmt.Errorf("trakt.api_key is required when trakt.enabled is true")
	}
	switch strings.ToLower(cfg.Log.Level) {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of trace, debug, info, warn, error (got %q)", cfg.Log.Level)
	}
	return nil
}
