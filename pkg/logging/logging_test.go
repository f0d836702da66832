package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "shiftboard.log")
	logger, err := New(Options{Level: "info", Format: "json", OutputPath: path})
	require.NoError(t, err)

	logger.Info("week loaded")
	logger.Debug("hidden")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "week loaded")
	assert.NotContains(t, string(data), "hidden")
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	assert.Error(t, err)
}

func TestMust_FallsBackToNop(t *testing.T) {
	logger := Must(Options{Level: "loud"})
	require.NotNil(t, logger)
	logger.Info("no panic")
}
