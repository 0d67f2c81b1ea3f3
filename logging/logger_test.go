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
)

func TestNewInvalidLevel(t *testing.T) {
	_, err := New(Config{Level: "chatty"})
	require.Error(t, err)

	_, err = NewForWriter(Config{Level: "chatty"}, &bytes.Buffer{})
	require.Error(t, err)
}

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")

	log, err := New(Config{Level: "info", OutputPaths: []string{path}})
	require.NoError(t, err)
	log.Debug("hidden")
	log.Info("shown", zap.String("writer", "w1"))
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "shown", entry["message"])
	assert.Equal(t, "w1", entry["writer"])
}

func TestNewForWriter(t *testing.T) {
	var buf bytes.Buffer

	log, err := NewForWriter(Config{Level: "debug"}, &buf)
	require.NoError(t, err)
	log.Debug("read started")
	log.Warn("input closed", zap.Int("pending", 2))

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "DEBUG")
	assert.Contains(t, lines[0], "read started")
	assert.Contains(t, lines[1], "WARN")
	assert.Contains(t, lines[1], `{"pending": 2}`)
	assert.NotContains(t, out, "\x1b[")
}

func TestNewForWriterFiltersLevel(t *testing.T) {
	var buf bytes.Buffer

	log, err := NewForWriter(Config{Level: "error"}, &buf)
	require.NoError(t, err)
	log.Info("quiet")
	assert.Empty(t, buf.String())
}
