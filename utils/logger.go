package utils

import (
	"go.uber.org/zap"
)

// Logger provides structured, leveled logging throughout the application.
// Messages keep the printf style with a "[component]" prefix; zap handles
// levels, timestamps and encoding.
type Logger struct {
	sugar *zap.SugaredLogger
}

// NewLogger creates a Logger. Debug enables the development encoder and
// debug-level output.
func NewLogger(debug bool) *Logger {
	var (
		zl  *zap.Logger
		err error
	)
	if debug {
		zl, err = zap.NewDevelopment(zap.AddCallerSkip(1))
	} else {
		zl, err = zap.NewProduction(zap.AddCallerSkip(1))
	}
	if err != nil {
		zl = zap.NewExample()
	}
	return &Logger{sugar: zl.Sugar()}
}

// NewNopLogger returns a Logger that discards everything. Used by tests.
func NewNopLogger() *Logger {
	zl := zap.NewNop()
	return &Logger{sugar: zl.Sugar()}
}

func (l *Logger) Info(format string, args ...any) {
	l.sugar.Infof(format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.sugar.Warnf(format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.sugar.Errorf(format, args...)
}

func (l *Logger) Debug(format string, args ...any) {
	l.sugar.Debugf(format, args...)
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() {
	_ = l.sugar.Sync()
}
