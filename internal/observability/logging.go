// Package observability provides structured logging construction.
package observability

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/decade/internal/config"
)

// AppName is attached to every log entry as the "app" field.
const AppName = "decade"

// NewLogger creates a structured logger from the given logging configuration.
//
// At debug level sampling is disabled so every RNG draw appears in the audit
// trail.
//
// Precondition: cfg.Level must be one of "debug", "info", "warn", "error".
// Precondition: cfg.Format must be "json" (production encoder) or "console" (development encoder).
// Postcondition: Returns a configured zap.Logger or a non-nil error.
func NewLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}

	var zapCfg zap.Config
	switch cfg.Format {
	case "json":
		zapCfg = zap.NewProductionConfig()
	case "console":
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapCfg.InitialFields = map[string]any{"app": AppName}
	if level == zapcore.DebugLevel {
		zapCfg.Sampling = nil
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}

// ForSession scopes logger to one game session and its character.
func ForSession(logger *zap.Logger, sessionID uuid.UUID, characterID int64) *zap.Logger {
	return logger.With(
		zap.String("session_id", sessionID.String()),
		zap.Int64("character_id", characterID),
	)
}
