// Package logger provides centralized slog.Logger construction with
// configurable level and output format (text or JSON).
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Option configures a logger built by New.
type Option func(*settings)

type settings struct {
	w       io.Writer
	debug   bool
	service string
}

// WithWriter redirects output. The default is stderr.
func WithWriter(w io.Writer) Option {
	return func(s *settings) {
		s.w = w
	}
}

// WithDebug forces the debug level regardless of the configured level.
// It backs the --debug CLI flag.
func WithDebug(debug bool) Option {
	return func(s *settings) {
		s.debug = debug
	}
}

// WithService tags every record with a service attribute.
func WithService(name string) Option {
	return func(s *settings) {
		s.service = name
	}
}

// New creates a *slog.Logger configured with the given level and format.
// Level: "debug", "info", "warn", "error" (default: "info").
// Format: "json" or "text" (default: "text").
func New(level, format string, opts ...Option) *slog.Logger {
	s := &settings{w: os.Stderr}
	for _, opt := range opts {
		opt(s)
	}

	lvl := ParseLevel(level)
	if s.debug {
		lvl = slog.LevelDebug
	}
	hopts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(s.w, hopts)
	} else {
		handler = slog.NewTextHandler(s.w, hopts)
	}

	l := slog.New(handler)
	if s.service != "" {
		l = l.With("service", s.service)
	}
	return l
}

// NewWithWriter creates a *slog.Logger writing to w.
func NewWithWriter(w io.Writer, level, format string) *slog.Logger {
	return New(level, format, WithWriter(w))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// Component returns l scoped to a named subsystem.
func Component(l *slog.Logger, name string) *slog.Logger {
	return l.With("component", name)
}

// ParseLevel converts a level string to slog.Level. Matching is case
// insensitive; anything unrecognized returns LevelInfo.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
