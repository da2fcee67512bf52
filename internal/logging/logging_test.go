package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sprite-ai/quill/internal/config"
)

func TestNewWritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "quill.log")

	log, err := New(config.LogConfig{Path: path, Level: "info"})
	require.NoError(t, err)
	log.Debug("hidden")
	log.Info("stream started", zap.String("session", "abc"))
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1, "debug entries are below the level")

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "stream started", entry["message"])
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "abc", entry["session"])
	assert.Contains(t, entry, "timestamp")
}

func TestNewWithConsole(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(config.LogConfig{Path: filepath.Join(t.TempDir(), "q.log"), Level: "debug"}, WithConsole(&buf))
	require.NoError(t, err)

	log.Debug("listening")
	require.NoError(t, log.Sync())
	assert.Contains(t, buf.String(), "listening")
}

func TestNewBadLevel(t *testing.T) {
	_, err := New(config.LogConfig{Path: filepath.Join(t.TempDir(), "q.log"), Level: "loud"})
	assert.Error(t, err)
}
