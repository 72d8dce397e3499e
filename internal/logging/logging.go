// Package logging provides structured logging with zap.
package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	globalLogger = zap.NewNop()
	globalLevel  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// Config holds logging configuration.
type Config struct {
	Level      string // debug, info, warn, error
	Format     string // json, console
	OutputPath string // stdout, stderr, or file path; empty disables logging
}

// Init builds the global logger from cfg and returns it. The interactive UI
// owns the terminal, so an empty OutputPath yields a no-op logger.
func Init(cfg Config) (*zap.Logger, error) {
	if cfg.OutputPath == "" {
		globalLogger = zap.NewNop()
		return globalLogger, nil
	}

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var config zap.Config
	if cfg.Format == "console" {
		config = zap.NewDevelopmentConfig()
	} else {
		config = zap.NewProductionConfig()
	}

	globalLevel.SetLevel(level)
	config.Level = globalLevel
	config.OutputPaths = []string{cfg.OutputPath}
	config.ErrorOutputPaths = []string{"stderr"}
	if isFilePath(cfg.OutputPath) {
		if err := os.MkdirAll(filepath.Dir(cfg.OutputPath), 0o755); err != nil {
			return nil, err
		}
	}

	logger, err := config.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, err
	}
	globalLogger = logger
	return logger, nil
}

// Sync flushes any buffered log entries.
func Sync() error {
	return globalLogger.Sync()
}

// SetLevel changes the global log level at runtime.
func SetLevel(level string) {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return
	}
	globalLevel.SetLevel(l)
}

// L returns the global logger.
func L() *zap.Logger {
	return globalLogger
}

// DefaultLogPath returns the log file used when logging is enabled without
// an explicit path.
func DefaultLogPath() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "zipexplorer", "zipexplorer.log"), nil
}

func isFilePath(path string) bool {
	return path != "stdout" && path != "stderr"
}
