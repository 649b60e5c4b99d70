package utils

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qrpay.log")
	l, err := NewLogger(LoggerOptions{Level: "warn", File: path})
	require.NoError(t, err)

	l.Info("dropped")
	l.Warn("export slow", "format", "png")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "export slow", rec["msg"])
	assert.Equal(t, "png", rec["format"])
}

func TestNewLoggerWrap(t *testing.T) {
	var wrapped bool
	l, err := NewLogger(LoggerOptions{
		Format: "text",
		Wrap: func(h slog.Handler) slog.Handler {
			wrapped = true
			return h
		},
	})
	require.NoError(t, err)
	assert.True(t, wrapped)
	assert.NoError(t, l.Close())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}
