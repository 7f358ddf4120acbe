package logger_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/willibrandon/pgtps/internal/logger"
)

func TestInitWritesJSONToLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pgtps.log")

	logger.Init(logger.LevelInfo, path)
	logger.Info("hello", "worker", 1)
	logger.Close()

	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"worker":1`)
}

func TestInitDefaultsToStderrWithoutLogFile(t *testing.T) {
	logger.Init(logger.LevelDebug, "")
	assert.NotPanics(t, func() {
		logger.Debug("probe starting")
		logger.Warn("reconnecting", "worker", 3)
	})
}
