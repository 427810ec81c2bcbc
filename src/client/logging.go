package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/fl1ckyexe/ftp-admin/src/client/paths"
)

var (
	logger     *slog.Logger
	loggerOnce sync.Once
)

// LogConfig holds the logging.* config keys
type LogConfig struct {
	Level    string // debug, info, warn, error (default: warn)
	File     string // empty = {log_dir}/cli.log
	MaxSize  int    // MB before rotation (default: 10)
	MaxFiles int    // rotated files kept (default: 5)
}

// GetLogConfig returns logging configuration from viper
func GetLogConfig() LogConfig {
	return LogConfig{
		Level:    viper.GetString("logging.level"),
		File:     viper.GetString("logging.file"),
		MaxSize:  viper.GetInt("logging.max_size"),
		MaxFiles: viper.GetInt("logging.max_files"),
	}
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// InitLogging installs a JSON slog logger over a rotating log file as the default
// logger. With debug, records are also mirrored to stderr at debug level.
func InitLogging(debug bool) error {
	var initErr error
	loggerOnce.Do(func() {
		cfg := GetLogConfig()

		logPath := cfg.File
		if logPath == "" {
			logPath = paths.LogFile()
		}
		logPath = paths.ExpandHome(logPath)

		if err := paths.EnsureParent(logPath); err != nil {
			initErr = fmt.Errorf("create log dir: %w", err)
			return
		}

		maxSize := cfg.MaxSize
		if maxSize == 0 {
			maxSize = 10
		}
		maxFiles := cfg.MaxFiles
		if maxFiles == 0 {
			maxFiles = 5
		}

		var w io.Writer = &lumberjack.Logger{
			Filename:   logPath,
			MaxSize:    maxSize,
			MaxBackups: maxFiles,
			MaxAge:     30,
			Compress:   true,
		}

		level := parseLevel(cfg.Level)
		if debug {
			level = slog.LevelDebug
			w = &multiWriter{writers: []io.Writer{w, os.Stderr}}
		}

		logger = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
	})
	return initErr
}

// Logger returns the CLI logger, or a stderr logger before InitLogging
func Logger() *slog.Logger {
	if logger == nil {
		return slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return logger
}

// multiWriter writes to every destination, stopping at the first error
type multiWriter struct {
	writers []io.Writer
}

func (mw *multiWriter) Write(p []byte) (n int, err error) {
	for _, w := range mw.writers {
		n, err = w.Write(p)
		if err != nil {
			return
		}
	}
	return len(p), nil
}
