// Package config loads the settings of the jembe command.
package config

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the content of jembe.yaml.
type Config struct {
	// BaseURL is where component requests are posted.
	BaseURL       string        `yaml:"base_url" json:"base_url"`
	UploadURL     string        `yaml:"upload_url" json:"upload_url"`
	RefreshAction string        `yaml:"refresh_action" json:"refresh_action"`
	LogLevel      string        `yaml:"log_level" json:"log_level"`
	Timeout       time.Duration `yaml:"timeout" json:"timeout"`
	History       History       `yaml:"history" json:"history"`
	Server        Server        `yaml:"server" json:"server"`
}

// History selects the history backend.
type History struct {
	// Backend is "memory", "file" or "redis".
	Backend string `yaml:"backend" json:"backend"`
	// Dir holds the session files of the file backend.
	Dir   string `yaml:"dir" json:"dir"`
	Redis Redis  `yaml:"redis" json:"redis"`
	// EncryptionKey is a base64 AES-256 key; entries are stored encrypted when set.
	EncryptionKey string `yaml:"encryption_key" json:"encryption_key"`
	// Redact lists patterns of state keys masked before entries are stored.
	Redact []string `yaml:"redact" json:"redact"`
}

// Key decodes EncryptionKey. It returns nil when no key is configured.
func (h History) Key() ([]byte, error) {
	if h.EncryptionKey == "" {
		return nil, nil
	}
	key, err := base64.StdEncoding.DecodeString(h.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("invalid encryption key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}

// Redis configures the redis history backend and session locks.
type Redis struct {
	Addr     string        `yaml:"addr" json:"addr"`
	Password string        `yaml:"password" json:"password"`
	DB       int           `yaml:"db" json:"db"`
	Prefix   string        `yaml:"prefix" json:"prefix"`
	TTL      time.Duration `yaml:"ttl" json:"ttl"`
}

// Server configures the headless driver API.
type Server struct {
	Addr string `yaml:"addr" json:"addr"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		RefreshAction: "display",
		LogLevel:      "info",
		Timeout:       30 * time.Second,
		History: History{
			Backend: "memory",
			Dir:     ".jembe/history",
			Redis: Redis{
				Addr:   "localhost:6379",
				Prefix: "jembe:history:",
			},
		},
		Server: Server{Addr: ":8080"},
	}
}

// Load reads path (YAML, or JSON by extension) over the defaults. A missing
// file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	// JSON is a subset of YAML; it is only checked as JSON first so syntax
	// errors are reported in JSON terms.
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		var probe any
		if err := json.Unmarshal(data, &probe); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	return cfg, cfg.Validate()
}

// Validate checks enumerated settings.
func (c Config) Validate() error {
	switch c.History.Backend {
	case "memory", "file", "redis":
	default:
		return fmt.Errorf("unknown history backend %q", c.History.Backend)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if _, err := c.History.Key(); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}
