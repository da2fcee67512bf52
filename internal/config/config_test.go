package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sprite-ai/quill/internal/model"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"QUILL_BASE_URL", "QUILL_TRANSPORT", "QUILL_TONE", "QUILL_LOG_LEVEL", "QUILL_LOG_PATH"} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestConfigDirResolution(t *testing.T) {
	t.Setenv("QUILL_CONFIG_DIR", "/custom/quill")
	assert.Equal(t, "/custom/quill", ConfigDir())

	t.Setenv("QUILL_CONFIG_DIR", "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	assert.Equal(t, filepath.Join("/xdg", "quill"), ConfigDir())
	assert.Equal(t, filepath.Join("/xdg", "quill", "config.toml"), ConfigPath())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Backend, cfg.Backend)
	assert.Equal(t, Default().Endpoints, cfg.Endpoints)
	assert.Equal(t, string(model.ToneAuto), cfg.Writing.Tone)
	assert.Empty(t, Validate(cfg))
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
[backend]
base_url = "http://writer.internal:9000"
transport = "ws"
timeout_secs = 5
cache_ttl_secs = 0

[endpoints]
cursor = "/v2/cursor"

[writing]
tone = "논리적"

[log]
level = "debug"
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "http://writer.internal:9000", cfg.Backend.BaseURL)
	assert.Equal(t, TransportWebSocket, cfg.Backend.Transport)
	assert.Equal(t, 5, cfg.Backend.TimeoutSecs)
	assert.Zero(t, cfg.Backend.CacheTTL())
	assert.Equal(t, "/v2/cursor", cfg.Endpoints.Cursor)
	assert.Equal(t, "/stream_suggestions", cfg.Endpoints.Suggestions, "unset keys keep defaults")
	assert.Equal(t, "논리적", cfg.Writing.Tone)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
[backend]
base_url = "http://from-file:1"
transport = "sse"

[writing]
tone = "서사적"
`)
	t.Setenv("QUILL_BASE_URL", "http://from-env:2")
	t.Setenv("QUILL_TRANSPORT", "WebSocket")
	t.Setenv("QUILL_TONE", "감성적")
	t.Setenv("QUILL_LOG_PATH", "/tmp/q.log")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "http://from-env:2", cfg.Backend.BaseURL)
	assert.Equal(t, TransportWebSocket, cfg.Backend.Transport)
	assert.Equal(t, "감성적", cfg.Writing.Tone)
	assert.Equal(t, "/tmp/q.log", cfg.Log.Path)
}

func TestLoadInvalidTOML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "[backend\nbase_url = ")

	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestStreamPath(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "/stream_cursor", cfg.StreamPath(model.ModeRealtime))
	assert.Equal(t, "/stream_suggestions", cfg.StreamPath(model.ModeBatch))

	cfg.Backend.Transport = TransportWebSocket
	assert.Equal(t, "/ws/stream_cursor", cfg.StreamPath(model.ModeRealtime))
	assert.Equal(t, "/ws/stream_suggestions", cfg.StreamPath(model.ModeBatch))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		warns  int
	}{
		{"defaults", func(*Config) {}, 0},
		{"unknown transport", func(c *Config) { c.Backend.Transport = "grpc" }, 1},
		{"unknown tone", func(c *Config) { c.Writing.Tone = "시적" }, 1},
		{"bad base url", func(c *Config) { c.Backend.BaseURL = "localhost:8000" }, 1},
		{"everything wrong", func(c *Config) {
			c.Backend.Transport = "x"
			c.Writing.Tone = "y"
			c.Backend.BaseURL = "ftp://z"
		}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Len(t, Validate(cfg), tt.warns)
		})
	}
	assert.Empty(t, Validate(nil))
}
