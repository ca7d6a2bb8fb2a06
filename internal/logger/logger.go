// Package logger holds the process-wide zap logger used by every other
// package in this module. Init always installs zap's production build,
// which logs structured JSON; calling it again replaces the logger with a
// fresh production build.
package logger

import (
	"go.uber.org/zap"
)

var Logger *zap.Logger

// Init builds the production logger and installs it as the package-level
// logger. Call once from main().
func Init() error {
	var err error
	Logger, err = zap.NewProduction()
	if err != nil {
		return err
	}
	return nil
}

// Get returns the package-level logger, lazily initializing a production
// logger if Init was never called.
func Get() *zap.Logger {
	if Logger == nil {
		Logger, _ = zap.NewProduction()
	}
	return Logger
}

// GetLogger is an alias of Get kept for callers written against the
// reference service's naming.
func GetLogger() *zap.Logger {
	return Get()
}

// Sugar returns a SugaredLogger over the package-level logger, for callers
// that want printf-style/keyed field helpers (Warnw, Infow, ...).
func Sugar() *zap.SugaredLogger {
	return Get().Sugar()
}

// Sync flushes any buffered log entries. Call from a deferred main().
func Sync() {
	if Logger != nil {
		Logger.Sync()
	}
}
