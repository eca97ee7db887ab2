// Package logger configures the process wide slog logger.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

// RunIDKey is the context key for the id of a pipeline run.
const RunIDKey ContextKey = "run_id"

// Config holds logger configuration.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // text, json
}

// ParseLevel reads a level name. The empty name is info.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
}

// New returns a logger writing to w.
func New(w io.Writer, cfg Config) (*slog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	case "", "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
	return slog.New(handler), nil
}

// Init installs a logger writing to stderr as the slog default.
// Stdout is left to command results.
func Init(cfg Config) error {
	l, err := New(os.Stderr, cfg)
	if err != nil {
		return err
	}
	slog.SetDefault(l)
	return nil
}

// WithRunID returns a context carrying the run id.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RunIDKey, id)
}

// WithContext returns the default logger with the context values attached.
func WithContext(ctx context.Context) *slog.Logger {
	l := slog.Default()
	if id, ok := ctx.Value(RunIDKey).(string); ok && id != "" {
		l = l.With("run_id", id)
	}
	return l
}
