// Package config handles TOML-based configuration loading and validation.
// TOML is parsed as data only, so a config file can never execute code.
package config

import (
	"bytes"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/renameio/v2"
)

const appName = "sportsdl"

// Config holds all application configuration.
type Config struct {
	Player   string `toml:"player"`
	History  bool   `toml:"history"`
	Debug    bool   `toml:"debug"`
	LogLevel string `toml:"log_level"`

	HTTP   HTTPConfig   `toml:"http"`
	Laola1 Laola1Config `toml:"laola1"`
}

// HTTPConfig configures the shared fetcher.
type HTTPConfig struct {
	UserAgent string   `toml:"user_agent"`
	Timeout   Duration `toml:"timeout"`
	// RateLimit is the maximum number of requests per second; 0 disables pacing.
	RateLimit   float64 `toml:"rate_limit"`
	GeoBypassIP string  `toml:"geo_bypass_ip"`
}

// Laola1Config configures the titanplayer metadata feed.
type Laola1Config struct {
	MetadataURL string `toml:"metadata_url"`
	Portal      string `toml:"portal"`
	Language    string `toml:"language"`
}

// Duration is a time.Duration written as a string such as "30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Player:   "mpv",
		History:  true,
		Debug:    false,
		LogLevel: "info",
		HTTP: HTTPConfig{
			UserAgent: "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0",
			Timeout:   Duration{30 * time.Second},
			RateLimit: 0,
		},
		Laola1: Laola1Config{
			MetadataURL: "http://www.laola1.tv/server/hd_video.php",
			Portal:      "de",
			Language:    "de",
		},
	}
}

// configDir returns the XDG-compliant config directory.
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName), nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file and merges with defaults.
// If the config file doesn't exist, defaults are returned.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads the config at path and merges with defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks config values are within acceptable bounds.
func (c *Config) Validate() error {
	validPlayers := map[string]bool{
		"mpv": true, "vlc": true, "iina": true, "celluloid": true,
	}
	if !validPlayers[strings.ToLower(c.Player)] {
		return fmt.Errorf("unsupported player %q (valid: mpv, vlc, iina, celluloid)", c.Player)
	}

	validLevels := map[string]bool{
		"": true, "trace": true, "debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("unsupported log level %q (valid: trace, debug, info, warn, error)", c.LogLevel)
	}

	if c.HTTP.Timeout.Duration <= 0 {
		return fmt.Errorf("http.timeout must be positive")
	}
	if c.HTTP.RateLimit < 0 {
		return fmt.Errorf("http.rate_limit cannot be negative")
	}
	if c.HTTP.GeoBypassIP != "" && net.ParseIP(c.HTTP.GeoBypassIP) == nil {
		return fmt.Errorf("http.geo_bypass_ip %q is not an IP address", c.HTTP.GeoBypassIP)
	}

	u, err := url.Parse(c.Laola1.MetadataURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("laola1.metadata_url %q must be an http(s) URL", c.Laola1.MetadataURL)
	}
	if c.Laola1.Portal == "" || c.Laola1.Language == "" {
		return fmt.Errorf("laola1.portal and laola1.language cannot be empty")
	}

	return nil
}

// GeoHeaders returns the headers sent with token requests.
func (c *Config) GeoHeaders() http.Header {
	h := http.Header{}
	if c.HTTP.GeoBypassIP != "" {
		h.Set("X-Forwarded-For", c.HTTP.GeoBypassIP)
	}
	return h
}

// WriteDefault atomically writes the default configuration to path. An
// existing file is left untouched unless overwrite is set.
func WriteDefault(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config %s already exists", path)
		}
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(Default()); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	if err := renameio.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func dataDir() (string, error) {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dir, appName), nil
}

// HistoryPath returns the path to the history database.
func HistoryPath() (string, error) {
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}
