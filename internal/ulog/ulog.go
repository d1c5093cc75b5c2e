// Package ulog provides the package-level structured logger shared by every
// component of the client. It wraps zap the same way the rest of the aRPC
// stack this client grew out of does: a small set of free functions
// (Debug/Info/Warn/Error) over a swappable global *zap.Logger.
package ulog

import "go.uber.org/zap"

var logger = mustNop()

// mustNop returns zap's production logger, falling back to a no-op logger
// only if the production logger cannot be built.
func mustNop() *zap.Logger {
	l, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// SetLogger replaces the package-level logger. Passing nil installs a no-op
// logger. Call this once during process startup; it is not safe to call
// concurrently with logging calls.
func SetLogger(l *zap.Logger) {
	if l == nil {
		logger = zap.NewNop()
		return
	}
	logger = l
}

func Debug(msg string, fields ...zap.Field) {
	logger.Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	logger.Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	logger.Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	logger.Error(msg, fields...)
}
