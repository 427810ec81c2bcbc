package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/viper"
)

func resetLogging(t *testing.T) {
	t.Helper()
	logger = nil
	loggerOnce = sync.Once{}
	viper.Reset()
	prev := slog.Default()
	t.Cleanup(func() {
		slog.SetDefault(prev)
		logger = nil
		loggerOnce = sync.Once{}
		viper.Reset()
	})
}

func TestGetLogConfig(t *testing.T) {
	resetLogging(t)
	viper.Set("logging.level", "error")
	viper.Set("logging.file", "/tmp/test.log")
	viper.Set("logging.max_size", 20)
	viper.Set("logging.max_files", 10)

	cfg := GetLogConfig()

	if cfg.Level != "error" || cfg.File != "/tmp/test.log" || cfg.MaxSize != 20 || cfg.MaxFiles != 10 {
		t.Errorf("GetLogConfig() = %+v", cfg)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelWarn},
		{"verbose", slog.LevelWarn},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := parseLevel(tt.in); got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestInitLoggingWritesJSON(t *testing.T) {
	resetLogging(t)
	logFile := filepath.Join(t.TempDir(), "nested", "cli.log")
	viper.Set("logging.file", logFile)
	viper.Set("logging.level", "info")

	if err := InitLogging(false); err != nil {
		t.Fatalf("InitLogging() error = %v", err)
	}
	Logger().Info("server offline", "reason", "test")
	Logger().Debug("filtered out")

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"msg":"server offline"`) || !strings.Contains(out, `"reason":"test"`) {
		t.Errorf("log output = %q", out)
	}
	if strings.Contains(out, "filtered out") {
		t.Error("debug record written at info level")
	}
	if slog.Default() != logger {
		t.Error("InitLogging() should install the default logger")
	}
}

func TestInitLoggingDebugOverridesLevel(t *testing.T) {
	resetLogging(t)
	logFile := filepath.Join(t.TempDir(), "cli.log")
	viper.Set("logging.file", logFile)
	viper.Set("logging.level", "error")

	if err := InitLogging(true); err != nil {
		t.Fatalf("InitLogging() error = %v", err)
	}
	if !Logger().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("--debug should enable debug records")
	}
}

func TestInitLoggingOnce(t *testing.T) {
	resetLogging(t)
	viper.Set("logging.file", filepath.Join(t.TempDir(), "cli.log"))

	InitLogging(false)
	first := Logger()
	InitLogging(true)
	if Logger() != first {
		t.Error("InitLogging() should only run once")
	}
}

func TestLoggerFallback(t *testing.T) {
	resetLogging(t)
	if Logger() == nil {
		t.Error("Logger() should fall back to a stderr logger")
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, errors.New("disk full") }

func TestMultiWriter(t *testing.T) {
	var a, b bytes.Buffer
	w := &multiWriter{writers: []io.Writer{&a, &b}}
	n, err := w.Write([]byte("hello"))
	if err != nil || n != 5 {
		t.Fatalf("Write() = %d, %v", n, err)
	}
	if a.String() != "hello" || b.String() != "hello" {
		t.Errorf("buffers = %q, %q", a.String(), b.String())
	}

	w = &multiWriter{writers: []io.Writer{failingWriter{}, &a}}
	if _, err := w.Write([]byte("x")); err == nil {
		t.Error("Write() should stop at the first error")
	}
	if a.String() != "hello" {
		t.Error("writers after a failure must not be written")
	}
}
