package observability

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/decade/internal/config"
)

func TestNewLogger_Formats(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		logger, err := NewLogger(config.LoggingConfig{Level: "info", Format: format})
		require.NoError(t, err, format)
		assert.NotNil(t, logger)
	}
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	_, err := NewLogger(config.LoggingConfig{Level: "verbose", Format: "json"})
	assert.Error(t, err)
}

func TestNewLogger_InvalidFormat(t *testing.T) {
	_, err := NewLogger(config.LoggingConfig{Level: "info", Format: "xml"})
	assert.Error(t, err)
}

func TestNewLogger_LevelGatesOutput(t *testing.T) {
	levels := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"info":  zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
	}
	for name, want := range levels {
		logger, err := NewLogger(config.LoggingConfig{Level: name, Format: "json"})
		require.NoError(t, err, name)
		assert.True(t, logger.Core().Enabled(want), name)
		if want > zapcore.DebugLevel {
			assert.False(t, logger.Core().Enabled(want-1), name)
		}
	}
}

func TestForSession_AddsFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	id := uuid.New()
	ForSession(zap.New(core), id, 42).Info("turn resolved")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, id.String(), fields["session_id"])
	assert.Equal(t, int64(42), fields["character_id"])
}
