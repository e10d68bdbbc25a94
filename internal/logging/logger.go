// Package logging builds the application's structured logger.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"progress-tracker.com/progress-tracker/internal/redact"
)

const (
	LevelTrace = slog.Level(-8)
	LevelFatal = slog.Level(12)
)

// ParseLevel maps the configured level names onto slog levels.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	case "fatal":
		return LevelFatal, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

// New returns a text logger for development and a JSON logger everywhere
// else, and installs it as the slog default.
func New(env, level string) (*slog.Logger, error) {
	if strings.EqualFold(env, "development") {
		return newLogger(os.Stderr, false, level)
	}
	return newLogger(os.Stdout, true, level)
}

func newLogger(w io.Writer, asJSON bool, level string) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{
		Level:       lvl,
		ReplaceAttr: replaceLevelNames,
	}

	var handler slog.Handler
	if asJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger, nil
}

func replaceLevelNames(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	lvl, ok := a.Value.Any().(slog.Level)
	if !ok {
		return a
	}
	switch {
	case lvl < slog.LevelDebug:
		a.Value = slog.StringValue("trace")
	case lvl >= LevelFatal:
		a.Value = slog.StringValue("fatal")
	default:
		a.Value = slog.StringValue(strings.ToLower(lvl.String()))
	}
	return a
}

// Error logs err with the place it happened. The error text is redacted so
// connection details never reach the log.
func Error(ctx context.Context, logger *slog.Logger, err error, where string, attrs ...any) {
	if logger == nil {
		logger = slog.Default()
	}
	args := append([]any{
		slog.String("context", where),
		slog.String("error", redact.Error(err)),
	}, attrs...)
	logger.ErrorContext(ctx, "Error in "+where, args...)
}
