package core

import (
	"go.uber.org/zap"
)

// Logger interface for structured logging
// Runners and watchers only ever talk to this interface; ZapLogger is the
// production implementation.
type Logger interface {
	// Debug logs a debug message with optional fields
	Debug(msg string, fields ...Field)

	// Info logs an info message with optional fields
	Info(msg string, fields ...Field)

	// Warn logs a warning message with optional fields
	Warn(msg string, fields ...Field)

	// Error logs an error message with optional fields
	Error(msg string, fields ...Field)
}

// Field represents a key-value pair for structured logging
type Field struct {
	Key   string
	Value any
}

// F creates a new Field with the given key and value
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// ZapLogger adapts a *zap.Logger to Logger.
type ZapLogger struct {
	l *zap.Logger
}

// NewZapLogger wraps l. A nil logger is replaced by zap.NewNop().
func NewZapLogger(l *zap.Logger) *ZapLogger {
	if l == nil {
		l = zap.NewNop()
	}
	return &ZapLogger{l: l}
}

// Zap returns the underlying zap logger.
func (z *ZapLogger) Zap() *zap.Logger {
	return z.l
}

func (z *ZapLogger) Debug(msg string, fields ...Field) { z.l.Debug(msg, zapFields(fields)...) }
func (z *ZapLogger) Info(msg string, fields ...Field)  { z.l.Info(msg, zapFields(fields)...) }
func (z *ZapLogger) Warn(msg string, fields ...Field)  { z.l.Warn(msg, zapFields(fields)...) }
func (z *ZapLogger) Error(msg string, fields ...Field) { z.l.Error(msg, zapFields(fields)...) }

func zapFields(fields []Field) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		if err, ok := f.Value.(error); ok {
			out = append(out, zap.NamedError(f.Key, err))
			continue
		}
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}

// NoOpLogger is a logger that discards all log messages
// Useful for tests or when logging is not desired
type NoOpLogger struct{}

// NewNoOpLogger creates a new NoOpLogger
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

func (l *NoOpLogger) Debug(msg string, fields ...Field) {}
func (l *NoOpLogger) Info(msg string, fields ...Field)  {}
func (l *NoOpLogger) Warn(msg string, fields ...Field)  {}
func (l *NoOpLogger) Error(msg string, fields ...Field) {}
