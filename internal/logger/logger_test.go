package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestDefaultLoggerIsSafe(t *testing.T) {
	assert.NotPanics(t, func() {
		Debug("nobody listens")
		Warn("still nobody", zap.String("k", "v"))
	})
}

func TestFileOutput(t *testing.T) {
	old, oldSugar := Log, Sugar
	defer func() { Log, Sugar = old, oldSugar }()

	path := filepath.Join(t.TempDir(), "muexport.log")
	cfg := DefaultFileConfig(path)
	cfg.Compress = false
	require.NoError(t, InitWithFileConfig("debug", cfg, false))

	Info("exported", zap.String("model", "tank"))
	Debug("detail")
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"model":"tank"`)
	assert.Contains(t, string(data), `"msg":"detail"`)
}

func TestLevelFiltering(t *testing.T) {
	old, oldSugar := Log, Sugar
	defer func() { Log, Sugar = old, oldSugar }()

	path := filepath.Join(t.TempDir(), "warn.log")
	require.NoError(t, InitWithFileConfig("warn", FileConfig{Path: path, MaxSizeMB: 1}, false))
	Info("hidden")
	With(zap.String("run", "abc")).Warn("shown")
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), `"run":"abc"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
}
