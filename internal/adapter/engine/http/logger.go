package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"
)

// Logger provides structured logging for engine API calls and pipeline
// events.
type Logger interface {
	// LogRequest logs an outgoing engine request (API key redacted).
	LogRequest(ctx context.Context, req RequestLog)

	// LogResponse logs an engine response with timing info.
	LogResponse(ctx context.Context, resp ResponseLog)

	// LogError logs an engine error.
	LogError(ctx context.Context, err ErrorLog)

	// LogWarning logs a warning with structured fields.
	LogWarning(ctx context.Context, message string, fields map[string]interface{})

	// LogInfo logs an informational message with structured fields.
	LogInfo(ctx context.Context, message string, fields map[string]interface{})
}

// RequestLog contains request information for logging.
type RequestLog struct {
	Engine      string
	Model       string
	Path        string
	Timestamp   time.Time
	PromptChars int
	APIKey      string // redacted to last 4 chars before emission
}

// ResponseLog contains response information for logging.
type ResponseLog struct {
	Engine     string
	Model      string
	Path       string
	Timestamp  time.Time
	Duration   time.Duration
	Issues     int
	StatusCode int
}

// ErrorLog contains error information for logging.
type ErrorLog struct {
	Engine     string
	Model      string
	Path       string
	Timestamp  time.Time
	Duration   time.Duration
	Error      error
	Retryable  bool
	StatusCode int
}

// LogLevel defines the logging verbosity level.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelError
)

// LogFormat defines the output format for logs.
type LogFormat int

const (
	LogFormatHuman LogFormat = iota
	LogFormatJSON
)

// DefaultLogger writes logs via the standard library logger.
type DefaultLogger struct {
	level      LogLevel
	format     LogFormat
	redactKeys bool
}

// NewDefaultLogger creates a logger with the specified config.
func NewDefaultLogger(level LogLevel, format LogFormat, redactKeys bool) *DefaultLogger {
	return &DefaultLogger{level: level, format: format, redactKeys: redactKeys}
}

// LogRequest logs an engine request at debug level.
func (l *DefaultLogger) LogRequest(ctx context.Context, req RequestLog) {
	if l.level > LogLevelDebug {
		return
	}
	redacted := l.RedactAPIKey(req.APIKey)
	if l.format == LogFormatJSON {
		log.Printf(`{"level":"debug","type":"request","engine":"%s","model":"%s","path":"%s","timestamp":"%s","prompt_chars":%d,"api_key":"%s"}`,
			req.Engine, req.Model, req.Path, req.Timestamp.Format(time.RFC3339), req.PromptChars, redacted)
	} else {
		log.Printf("[DEBUG] %s/%s: request for %s (prompt=%d chars, key=%s)",
			req.Engine, req.Model, req.Path, req.PromptChars, redacted)
	}
}

// LogResponse logs an engine response at info level.
func (l *DefaultLogger) LogResponse(ctx context.Context, resp ResponseLog) {
	if l.level > LogLevelInfo {
		return
	}
	if l.format == LogFormatJSON {
		log.Printf(`{"level":"info","type":"response","engine":"%s","model":"%s","path":"%s","timestamp":"%s","duration_ms":%d,"issues":%d,"status_code":%d}`,
			resp.Engine, resp.Model, resp.Path, resp.Timestamp.Format(time.RFC3339),
			resp.Duration.Milliseconds(), resp.Issues, resp.StatusCode)
	} else {
		log.Printf("[INFO] %s/%s: response for %s (duration=%.1fs, issues=%d)",
			resp.Engine, resp.Model, resp.Path, resp.Duration.Seconds(), resp.Issues)
	}
}

// LogError logs an engine error.
func (l *DefaultLogger) LogError(ctx context.Context, e ErrorLog) {
	if l.level > LogLevelError {
		return
	}
	retryable := "non-retryable"
	if e.Retryable {
		retryable = "retryable"
	}
	if l.format == LogFormatJSON {
		log.Printf(`{"level":"error","type":"error","engine":"%s","model":"%s","path":"%s","timestamp":"%s","duration_ms":%d,"error":%q,"status_code":%d,"retryable":%t}`,
			e.Engine, e.Model, e.Path, e.Timestamp.Format(time.RFC3339),
			e.Duration.Milliseconds(), e.Error.Error(), e.StatusCode, e.Retryable)
	} else {
		log.Printf("[ERROR] %s/%s: %s request failed (%s): %v",
			e.Engine, e.Model, e.Path, retryable, e.Error)
	}
}

// LogWarning logs a warning message with structured fields.
func (l *DefaultLogger) LogWarning(ctx context.Context, message string, fields map[string]interface{}) {
	if l.level > LogLevelError {
		return
	}
	if l.format == LogFormatJSON {
		log.Printf(`{"level":"warn","message":%q,"fields":%s}`, message, marshalFields(fields))
	} else {
		log.Printf("[WARN] %s%s", message, formatFields(fields))
	}
}

// LogInfo logs an informational message with structured fields.
func (l *DefaultLogger) LogInfo(ctx context.Context, message string, fields map[string]interface{}) {
	if l.level > LogLevelInfo {
		return
	}
	if l.format == LogFormatJSON {
		log.Printf(`{"level":"info","message":%q,"fields":%s}`, message, marshalFields(fields))
	} else {
		log.Printf("[INFO] %s%s", message, formatFields(fields))
	}
}

// RedactAPIKey reduces an API key to its last 4 characters when
// redaction is enabled.
func (l *DefaultLogger) RedactAPIKey(key string) string {
	if !l.redactKeys || key == "" {
		return key
	}
	if len(key) <= 4 {
		return "****"
	}
	return "..." + key[len(key)-4:]
}

func marshalFields(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return "{}"
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// formatFields renders fields sorted by key so human output is stable.
func formatFields(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(" (")
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s=%v", k, fields[k])
	}
	sb.WriteString(")")
	return sb.String()
}
