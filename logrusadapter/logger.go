// Package logrusadapter implements the eventbus.Logger interface on top of
// a logrus logger, for applications already standardized on logrus.
package logrusadapter

import (
	"github.com/sirupsen/logrus"

	"github.com/adyshev/eventbus/eventbus"
)

// Logger implements eventbus.Logger by forwarding to a *logrus.Logger,
// converting the slog-style key-value argument pairs to logrus fields.
type Logger struct {
	logger *logrus.Logger
}

// NewLogger creates a Logger on top of the given logrus logger.
func NewLogger(logger *logrus.Logger) *Logger {
	return &Logger{logger: logger}
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...any) {
	l.logger.WithFields(toFields(args)).Debug(msg)
}

// Info logs an info message.
func (l *Logger) Info(msg string, args ...any) {
	l.logger.WithFields(toFields(args)).Info(msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...any) {
	l.logger.WithFields(toFields(args)).Warn(msg)
}

// Error logs an error message.
func (l *Logger) Error(msg string, args ...any) {
	l.logger.WithFields(toFields(args)).Error(msg)
}

func toFields(args []any) logrus.Fields {
	fields := make(logrus.Fields, len(args)/2)

	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}

		fields[key] = args[i+1]
	}

	return fields
}

var _ eventbus.Logger = (*Logger)(nil)
