// Package xlog wraps go.uber.org/zap into the leveled, field-structured
// logger every component reports lifecycle and error events through:
// schema commits, batch retries, kill-switch trips, and the seven error
// kinds defined in package indexer.
package xlog

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a thin facade over *zap.Logger. It exists so components depend
// on a small interface-shaped type rather than zap's full API, and so
// keysAndValues-style call sites (scheduler.Logger, in particular) don't
// need to build zap.Field values themselves.
type Logger struct {
	z *zap.Logger
}

// Level selects the minimum severity New logs at.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// New builds a Logger writing structured JSON to stdout at the given
// level, matching the teacher pack's convention of constructing one
// *zap.Logger at startup and threading it through every component that
// needs it (e.g. abiolaogu-LumaDB's platform.Server taking a *zap.Logger
// constructor argument).
func New(level Level) (*Logger, error) {
	var zl zapcore.Level
	if err := zl.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zl)
	cfg.OutputPaths = []string{"stdout"}
	z, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{z: z}, nil
}

// Noop returns a Logger that discards everything, for tests and callers
// that haven't wired a sink.
func Noop() *Logger {
	return &Logger{z: zap.NewNop()}
}

// Sync flushes any buffered log entries. Call once at shutdown.
func (l *Logger) Sync() error {
	return l.z.Sync()
}

// With returns a Logger with the given key/value pairs attached to every
// subsequent entry.
func (l *Logger) With(keysAndValues ...any) *Logger {
	return &Logger{z: l.z.With(toFields(keysAndValues)...)}
}

func (l *Logger) Debug(msg string, keysAndValues ...any) {
	l.z.Debug(msg, toFields(keysAndValues)...)
}

func (l *Logger) Info(msg string, keysAndValues ...any) {
	l.z.Info(msg, toFields(keysAndValues)...)
}

func (l *Logger) Warn(msg string, keysAndValues ...any) {
	l.z.Warn(msg, toFields(keysAndValues)...)
}

// Error satisfies scheduler.Logger: the sink a Task reports a batch
// failure's kind, indexer uid, and cause to.
func (l *Logger) Error(msg string, keysAndValues ...any) {
	l.z.Error(msg, toFields(keysAndValues)...)
}

// toFields converts an alternating key/value sequence into zap.Fields. A
// non-string key is rendered as a best-effort "!BADKEY" field and a
// trailing key with no value is dropped, rather than panicking, since call
// sites are assembled from static strings but shouldn't bring a component
// down if one isn't.
func toFields(keysAndValues []any) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = "!BADKEY"
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
