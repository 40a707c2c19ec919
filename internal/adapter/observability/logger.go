// Package observability adapts the engine logging infrastructure to the
// review use case.
package observability

import (
	"context"

	enginehttp "github.com/zigzalgo/autoreview/internal/adapter/engine/http"
	"github.com/zigzalgo/autoreview/internal/config"
	"github.com/zigzalgo/autoreview/internal/usecase/review"
)

// ReviewLogger adapts enginehttp.Logger to the review.Logger port so
// the orchestrator shares the structured logging used for engine calls.
type ReviewLogger struct {
	logger enginehttp.Logger
}

// NewReviewLogger creates a new review logger adapter.
func NewReviewLogger(logger enginehttp.Logger) review.Logger {
	return &ReviewLogger{logger: logger}
}

// LogWarning logs a warning message with structured fields.
func (l *ReviewLogger) LogWarning(ctx context.Context, message string, fields map[string]interface{}) {
	l.logger.LogWarning(ctx, message, fields)
}

// LogInfo logs an informational message with structured fields.
func (l *ReviewLogger) LogInfo(ctx context.Context, message string, fields map[string]interface{}) {
	l.logger.LogInfo(ctx, message, fields)
}

// NewEngineLogger builds the shared structured logger from config.
func NewEngineLogger(cfg config.LoggingConfig) enginehttp.Logger {
	level := enginehttp.LogLevelInfo
	switch cfg.Level {
	case "debug":
		level = enginehttp.LogLevelDebug
	case "error":
		level = enginehttp.LogLevelError
	}

	format := enginehttp.LogFormatHuman
	if cfg.Format == "json" {
		format = enginehttp.LogFormatJSON
	}

	return enginehttp.NewDefaultLogger(level, format, cfg.RedactAPIKeys)
}
