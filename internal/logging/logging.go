// Package logging configures the process-wide zap logger.
package logging

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.RWMutex
	global = zap.NewNop()
)

// New builds a JSON logger writing to stderr at the given level
// (debug, info, warn or error).
func New(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.Sampling = nil

	return cfg.Build()
}

// InitLogger builds a logger with New and installs it as the global logger.
func InitLogger(level string) (*zap.Logger, error) {
	l, err := New(level)
	if err != nil {
		return nil, err
	}
	Set(l)
	return l, nil
}

// InitLoggerFromEnv initializes the global logger from MUDRA_LOG_LEVEL,
// defaulting to info.
func InitLoggerFromEnv() (*zap.Logger, error) {
	level := os.Getenv("MUDRA_LOG_LEVEL")
	if level == "" {
		level = "info"
	}
	return InitLogger(level)
}

// Set replaces the global logger.
func Set(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	mu.Lock()
	global = l
	mu.Unlock()
}

// L returns the global logger.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

// Sync flushes any buffered log entries.
func Sync() {
	_ = L().Sync()
}

func Debugf(format string, args ...any) { L().Sugar().Debugf(format, args...) }
func Infof(format string, args ...any)  { L().Sugar().Infof(format, args...) }
func Warnf(format string, args ...any)  { L().Sugar().Warnf(format, args...) }
func Errorf(format string, args ...any) { L().Sugar().Errorf(format, args...) }
