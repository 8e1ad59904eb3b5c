package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("whatever"))
}

func TestNewFansOutToStderrAndFile(t *testing.T) {
	var stderr bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "council.log")

	logger, closeFn, err := New(Options{Level: "info", File: path, Stderr: &stderr})
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("workshop started", "session_id", "abc")
	require.NoError(t, closeFn())

	assert.Contains(t, stderr.String(), "workshop started")
	assert.NotContains(t, stderr.String(), "hidden")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "workshop started", entry["msg"])
	assert.Equal(t, "abc", entry["session_id"])
}

func TestNewWithoutFile(t *testing.T) {
	var stderr bytes.Buffer
	logger, closeFn, err := New(Options{Level: "debug", Stderr: &stderr})
	require.NoError(t, err)
	logger.Debug("visible")
	assert.NoError(t, closeFn())
	assert.Contains(t, stderr.String(), "visible")
}
