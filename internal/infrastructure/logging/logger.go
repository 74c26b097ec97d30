package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/nerrad567/gray-logic-buttonnode/internal/infrastructure/config"
)

// serviceName is attached to every record.
const serviceName = "buttonnode"

// Logger wraps slog.Logger with button node defaults.
//
// Thread Safety:
//   - All methods are safe for concurrent use, including from the
//     dispatch, consumer and hardware edge goroutines.
type Logger struct {
	*slog.Logger
}

// New creates a new Logger with the specified configuration.
//
// Parameters:
//   - cfg: Logging configuration from config.yaml
//   - version: Application version for default field
//
// Returns:
//   - *Logger: Configured logger ready for use
func New(cfg config.LoggingConfig, version string) *Logger {
	return NewWithWriter(cfg, version, outputFor(cfg.Output))
}

// NewWithWriter is New with an explicit destination, used by tests and by
// the watchdog when it relays child output.
func NewWithWriter(cfg config.LoggingConfig, version string, output io.Writer) *Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "text":
		handler = slog.NewTextHandler(output, opts)
	default:
		handler = slog.NewJSONHandler(output, opts)
	}

	handler = handler.WithAttrs([]slog.Attr{
		slog.String("service", serviceName),
		slog.String("version", version),
	})

	return &Logger{
		Logger: slog.New(handler),
	}
}

// outputFor maps the configured output name to a writer.
func outputFor(name string) io.Writer {
	switch strings.ToLower(name) {
	case "stderr":
		return os.Stderr
	case "discard", "none":
		return io.Discard
	default:
		return os.Stdout
	}
}

// parseLevel converts a string log level to slog.Level.
//
// Supported levels: debug, info, warn, error
// Defaults to info if unrecognised.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// With returns a new Logger with additional default attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger: l.Logger.With(args...),
	}
}

// Component returns a child logger tagged with component=name.
//
// Example:
//
//	bridgeLog := logger.Component("bridge")
//	bridgeLog.Warn("event dropped") // Includes component=bridge
func (l *Logger) Component(name string) *Logger {
	return l.With("component", name)
}

// Default creates a default logger for use before configuration is loaded.
//
// This logger outputs to stdout in JSON format at info level.
func Default() *Logger {
	return New(config.LoggingConfig{
		Level:  "info",
		Format: "json",
		Output: "stdout",
	}, "dev")
}

// Discard returns a logger that drops every record.
func Discard() *Logger {
	return NewWithWriter(config.LoggingConfig{Level: "error"}, "test", io.Discard)
}
