// Package logger provides structured logging for the arena server.
// Every action of the announcer and the agents is traceable through this.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps a zap sugar logger behind the small surface the rest of the
// server uses.
type Logger struct {
	z *zap.SugaredLogger
}

// New creates a production logger writing JSON to stdout.
func New() *Logger {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stdout"}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	z, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		z = zap.NewNop()
	}
	return &Logger{z: z.Sugar()}
}

// NewNop creates a logger that discards everything. Used in tests.
func NewNop() *Logger {
	return &Logger{z: zap.NewNop().Sugar()}
}

// Info logs informational messages with optional key/value pairs.
func (l *Logger) Info(msg string, kv ...interface{}) {
	l.z.Infow(msg, kv...)
}

// Warn logs warning messages.
func (l *Logger) Warn(msg string, kv ...interface{}) {
	l.z.Warnw(msg, kv...)
}

// Error logs error messages.
func (l *Logger) Error(msg string, kv ...interface{}) {
	l.z.Errorw(msg, kv...)
}

// Event logs one game event with a type tag and acting seat.
func (l *Logger) Event(eventType string, seat int, details string) {
	l.z.Infow("game event", "event", eventType, "seat", seat, "details", details)
}

// Sync flushes buffered entries. Call on shutdown.
func (l *Logger) Sync() {
	_ = l.z.Sync()
}
