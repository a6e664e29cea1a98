package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// New creates a console slog.Logger with provided level string.
func New(level string) *slog.Logger {
	return NewWithWriter(os.Stdout, level)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, level string) *slog.Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: levelFromString(level),
	})
	return slog.New(handler)
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// CronLogger adapts slog to the cron.Logger interface.
type CronLogger struct {
	logger *slog.Logger
}

// NewCronLogger wraps logger for the scheduler driver.
func NewCronLogger(logger *slog.Logger) CronLogger {
	if logger == nil {
		logger = Discard()
	}
	return CronLogger{logger: logger}
}

// Info logs routine scheduler messages at debug level.
func (c CronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.logger.Debug("cron: "+msg, normalizeKV(keysAndValues)...)
}

// Error logs scheduler failures.
func (c CronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	args := append([]any{"error", err}, normalizeKV(keysAndValues)...)
	c.logger.Error("cron: "+msg, args...)
}

func normalizeKV(kv []interface{}) []any {
	out := make([]any, 0, len(kv))
	for i := 0; i < len(kv); i += 2 {
		key := fmt.Sprint(kv[i])
		if i+1 >= len(kv) {
			out = append(out, slog.String("extra", key))
			break
		}
		out = append(out, slog.Any(key, kv[i+1]))
	}
	return out
}

func levelFromString(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "error":
		return slog.LevelError
	case "warn", "warning":
		return slog.LevelWarn
	case "info":
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
