// Package config loads quill's settings from config.toml, .env and the
// environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/sprite-ai/quill/internal/model"
)

// Transport names.
const (
	TransportSSE       = "sse"
	TransportWebSocket = "websocket"
)

// Config is the user's quill configuration.
type Config struct {
	Backend   BackendConfig   `toml:"backend"`
	Endpoints EndpointsConfig `toml:"endpoints"`
	Writing   WritingConfig   `toml:"writing"`
	Log       LogConfig       `toml:"log"`
}

// BackendConfig holds connection settings for the writing backend.
type BackendConfig struct {
	BaseURL      string `toml:"base_url"`
	Transport    string `toml:"transport"`
	TimeoutSecs  int    `toml:"timeout_secs"`
	CacheTTLSecs int    `toml:"cache_ttl_secs"`
}

// EndpointsConfig holds the backend routes.
type EndpointsConfig struct {
	Start        string `toml:"start"`
	Cursor       string `toml:"cursor"`
	Suggestions  string `toml:"suggestions"`
	Suggest      string `toml:"suggest"`
	DetectErrors string `toml:"detect_errors"`
	Health       string `toml:"health"`
}

// WritingConfig holds writing defaults.
type WritingConfig struct {
	Tone string `toml:"tone"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Path  string `toml:"path"`
	Level string `toml:"level"`
}

// Timeout returns the synchronous request timeout.
func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSecs) * time.Second
}

// CacheTTL returns how long batch and error-detection responses are cached.
func (b BackendConfig) CacheTTL() time.Duration {
	return time.Duration(b.CacheTTLSecs) * time.Second
}

// StreamPath returns the push channel route for mode on the configured
// transport.
func (c *Config) StreamPath(mode model.Mode) string {
	p := c.Endpoints.Cursor
	if mode == model.ModeBatch {
		p = c.Endpoints.Suggestions
	}
	if c.Backend.Transport == TransportWebSocket && !strings.HasPrefix(p, "/ws/") {
		p = "/ws" + p
	}
	return p
}

// ConfigDir returns the config directory path.
// Resolution order: $QUILL_CONFIG_DIR > $XDG_CONFIG_HOME/quill > ~/.config/quill
func ConfigDir() string {
	if dir := os.Getenv("QUILL_CONFIG_DIR"); dir != "" {
		return dir
	}
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "quill")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "quill-config")
	}
	return filepath.Join(home, ".config", "quill")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			BaseURL:      "http://localhost:8000",
			Transport:    TransportSSE,
			TimeoutSecs:  30,
			CacheTTLSecs: 300,
		},
		Endpoints: EndpointsConfig{
			Start:        "/start_generation",
			Cursor:       "/stream_cursor",
			Suggestions:  "/stream_suggestions",
			Suggest:      "/suggest",
			DetectErrors: "/detect_errors",
			Health:       "/health",
		},
		Writing: WritingConfig{Tone: string(model.ToneAuto)},
		Log: LogConfig{
			Path:  filepath.Join(ConfigDir(), "quill.log"),
			Level: "info",
		},
	}
}

// Load reads ConfigPath, falling back to defaults when it does not exist,
// then applies .env and environment overrides.
func Load() (*Config, error) {
	return LoadFile(ConfigPath())
}

// LoadFile is Load for an explicit path.
func LoadFile(path string) (*Config, error) {
	// A missing .env is the common case.
	_ = godotenv.Load()

	cfg := Default()
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	fillDefaults(cfg)
	applyEnv(cfg)
	return cfg, nil
}

// fillDefaults restores defaults for keys a file set to their zero value.
func fillDefaults(cfg *Config) {
	d := Default()
	if cfg.Backend.BaseURL == "" {
		cfg.Backend.BaseURL = d.Backend.BaseURL
	}
	if cfg.Backend.Transport == "" {
		cfg.Backend.Transport = d.Backend.Transport
	}
	if cfg.Backend.TimeoutSecs <= 0 {
		cfg.Backend.TimeoutSecs = d.Backend.TimeoutSecs
	}
	if cfg.Backend.CacheTTLSecs < 0 {
		cfg.Backend.CacheTTLSecs = 0
	}
	e, de := &cfg.Endpoints, d.Endpoints
	for _, pair := range []struct {
		dst *string
		def string
	}{
		{&e.Start, de.Start},
		{&e.Cursor, de.Cursor},
		{&e.Suggestions, de.Suggestions},
		{&e.Suggest, de.Suggest},
		{&e.DetectErrors, de.DetectErrors},
		{&e.Health, de.Health},
	} {
		if *pair.dst == "" {
			*pair.dst = pair.def
		}
	}
	if cfg.Writing.Tone == "" {
		cfg.Writing.Tone = d.Writing.Tone
	}
	if cfg.Log.Path == "" {
		cfg.Log.Path = d.Log.Path
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = d.Log.Level
	}
}

func applyEnv(cfg *Config) {
	cfg.Backend.BaseURL = ResolveBaseURL(cfg)
	cfg.Backend.Transport = ResolveTransport(cfg)
	cfg.Writing.Tone = ResolveTone(cfg)
	if v := os.Getenv("QUILL_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("QUILL_LOG_PATH"); v != "" {
		cfg.Log.Path = v
	}
}

// ResolveBaseURL returns the backend base URL.
// Priority: $QUILL_BASE_URL env > config value.
func ResolveBaseURL(cfg *Config) string {
	if v := os.Getenv("QUILL_BASE_URL"); v != "" {
		return v
	}
	if cfg != nil {
		return cfg.Backend.BaseURL
	}
	return ""
}

// ResolveTransport returns the push channel transport.
// Priority: $QUILL_TRANSPORT env > config value. "ws" is accepted for
// websocket.
func ResolveTransport(cfg *Config) string {
	v := os.Getenv("QUILL_TRANSPORT")
	if v == "" && cfg != nil {
		v = cfg.Backend.Transport
	}
	return NormalizeTransport(v)
}

// ResolveTone returns the default writing tone.
// Priority: $QUILL_TONE env > config value.
func ResolveTone(cfg *Config) string {
	if v := os.Getenv("QUILL_TONE"); v != "" {
		return v
	}
	if cfg != nil {
		return cfg.Writing.Tone
	}
	return ""
}

// NormalizeTransport lowercases a transport name and expands aliases.
func NormalizeTransport(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "ws" {
		return TransportWebSocket
	}
	return v
}

// Validate checks the configuration for potential issues and returns
// warnings.
func Validate(cfg *Config) []string {
	var warnings []string
	if cfg == nil {
		return warnings
	}
	switch cfg.Backend.Transport {
	case TransportSSE, TransportWebSocket:
	default:
		warnings = append(warnings, fmt.Sprintf("unknown transport %q; use %q or %q", cfg.Backend.Transport, TransportSSE, TransportWebSocket))
	}
	if !model.Tone(cfg.Writing.Tone).Known() {
		warnings = append(warnings, fmt.Sprintf("unknown tone %q", cfg.Writing.Tone))
	}
	u, err := url.Parse(cfg.Backend.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		warnings = append(warnings, fmt.Sprintf("base_url %q is not an http(s) URL", cfg.Backend.BaseURL))
	}
	return warnings
}
