// Package logging wraps slog behind a small interface so packages log
// through one structured surface and tests can pass a silent logger.
package logging

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"os"
	"strings"
)

// Field is one structured attribute. It aliases slog.Attr so typed
// values reach the handler without an intermediate conversion.
type Field = slog.Attr

func String(key, value string) Field          { return slog.String(key, value) }
func Int(key string, value int) Field         { return slog.Int(key, value) }
func Float64(key string, value float64) Field { return slog.Float64(key, value) }
func Any(key string, value any) Field         { return slog.Any(key, value) }

// Logger is the structured logging surface used throughout the
// simulator.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...Field)
	Info(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)
	With(fields ...Field) Logger
}

// Config selects level and output format.
type Config struct {
	Level     string // debug, info, warn, error
	Format    string // json or text
	AddSource bool
}

// New builds an slog-backed Logger writing to stderr. Stdout belongs to
// the terminal UI.
func New(cfg Config) Logger {
	opts := &slog.HandlerOptions{
		Level:     levelFor(cfg.Level),
		AddSource: cfg.AddSource,
	}
	var h slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		h = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	return &slogLogger{base: slog.New(h)}
}

// NewFromEnv builds a logger from STARVIEW_LOG_LEVEL and
// STARVIEW_LOG_FORMAT, defaulting to text at info level.
func NewFromEnv() Logger {
	return New(Config{
		Level:     os.Getenv("STARVIEW_LOG_LEVEL"),
		Format:    os.Getenv("STARVIEW_LOG_FORMAT"),
		AddSource: true,
	})
}

// Noop returns a logger that discards everything.
func Noop() Logger { return nopLogger{} }

func levelFor(s string) slog.Level {
	switch strings.ToLower(s) {
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

type slogLogger struct {
	base *slog.Logger
}

func (s *slogLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	s.base.LogAttrs(ctx, slog.LevelDebug, msg, fields...)
}

func (s *slogLogger) Info(ctx context.Context, msg string, fields ...Field) {
	s.base.LogAttrs(ctx, slog.LevelInfo, msg, fields...)
}

func (s *slogLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	s.base.LogAttrs(ctx, slog.LevelWarn, msg, fields...)
}

func (s *slogLogger) Error(ctx context.Context, msg string, fields ...Field) {
	s.base.LogAttrs(ctx, slog.LevelError, msg, fields...)
}

func (s *slogLogger) With(fields ...Field) Logger {
	args := make([]any, len(fields))
	for i, f := range fields {
		args[i] = f
	}
	return &slogLogger{base: s.base.With(args...)}
}

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...Field) {}
func (nopLogger) Info(context.Context, string, ...Field)  {}
func (nopLogger) Warn(context.Context, string, ...Field)  {}
func (nopLogger) Error(context.Context, string, ...Field) {}
func (nopLogger) With(...Field) Logger                    { return nopLogger{} }

type sessionIDKey struct{}
type loggerKey struct{}

// WithSessionLogger gives the context a session ID if it lacks one and
// returns a logger annotated with it. Interactive sessions and script
// runs each get one so their lines correlate.
func WithSessionLogger(ctx context.Context, base Logger) (context.Context, Logger) {
	if base == nil {
		base = Noop()
	}
	ctx, id := EnsureSessionID(ctx)
	return ctx, base.With(String("session_id", id))
}

// EnsureSessionID returns the context's session ID, minting and
// attaching one when absent.
func EnsureSessionID(ctx context.Context) (context.Context, string) {
	if ctx == nil {
		ctx = context.Background()
	}
	if id := SessionIDFromContext(ctx); id != "" {
		return ctx, id
	}
	id := newSessionID()
	return ContextWithSessionID(ctx, id), id
}

// ContextWithSessionID stores a session ID on the context.
func ContextWithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, id)
}

// SessionIDFromContext returns the context's session ID, or "".
func SessionIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(sessionIDKey{}).(string)
	return id
}

// ContextWithLogger stores a logger on the context for callees that
// receive only a context, like the script runner's tick.
func ContextWithLogger(ctx context.Context, l Logger) context.Context {
	if l == nil {
		l = Noop()
	}
	return context.WithValue(ctx, loggerKey{}, l)
}

// LoggerFromContext returns the context's logger, or nil when none is
// attached.
func LoggerFromContext(ctx context.Context) Logger {
	if ctx == nil {
		return nil
	}
	l, _ := ctx.Value(loggerKey{}).(Logger)
	return l
}

func newSessionID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "unknown"
	}
	return hex.EncodeToString(b[:])
}
