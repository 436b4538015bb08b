package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWriter_RenamesErrorKey(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter(&buf, slog.LevelInfo)

	logger.Error("device failed", "error", errors.New("port busy"))
	logger.Debug("hidden")

	out := buf.String()
	assert.Contains(t, out, `err="port busy"`)
	assert.NotContains(t, out, "hidden")
}

func TestNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "s_hdt.log")

	var console bytes.Buffer
	logger, closer, err := NewFile(slog.LevelDebug, path, &console)
	require.NoError(t, err)
	logger.Debug("Trial", "block", "400_1", "trial", 1)
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "block=400_1")
	assert.Contains(t, console.String(), "block=400_1")
}

func TestNewFile_FileOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s_hdt.log")

	logger, closer, err := NewFile(slog.LevelInfo, path, nil)
	require.NoError(t, err)
	logger.Info("Phase", "phase", "training")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "phase=training")
}

func TestLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, Level(true))
	assert.Equal(t, slog.LevelInfo, Level(false))
}
