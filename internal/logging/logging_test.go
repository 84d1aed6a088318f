// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

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

	"github.com/pdiddy/research-assistant/pkg/types"
)

func TestNewConsoleLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "warn", Console: &buf})
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", zap.String("backend", "gemini"))
	require.NoError(t, logger.Sync())

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "gemini")
}

func TestNewVerboseEnablesDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "error", Verbose: true, Console: &buf})
	require.NoError(t, err)

	logger.Debug("debug line")
	assert.Contains(t, buf.String(), "debug line")
}

func TestNewInvalidLevel(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loud")
}

func TestNewWritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "assistant.log")
	var console bytes.Buffer
	logger, err := New(Options{Level: "error", File: path, Console: &console})
	require.NoError(t, err)

	logger.Info("search finished", zap.Int("results", 7))
	require.NoError(t, logger.Sync())

	assert.Empty(t, console.String(), "info is below the console level")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "search finished", entry["msg"])
	assert.EqualValues(t, 7, entry["results"])
}

func TestFromConfigAndOrNop(t *testing.T) {
	opts := FromConfig(types.LogConfig{Level: "debug", File: "x.log"}, true)
	assert.Equal(t, Options{Level: "debug", File: "x.log", Verbose: true}, opts)

	assert.NotNil(t, OrNop(nil))
	l := zap.NewExample()
	assert.Same(t, l, OrNop(l))
}
