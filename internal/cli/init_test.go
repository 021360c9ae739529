package cli

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"dauvest/internal/log"
)

func bufferLogger(buf *bytes.Buffer) *log.Logger {
	return log.New(log.Config{Level: slog.LevelDebug, Output: buf})
}

func TestSetupLoggerLevel(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger := SetupLogger("worker", "warn")
	if logger.Component() != "worker" {
		t.Errorf("component = %q", logger.Component())
	}
	if logger.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info enabled at warn level")
	}
	if !logger.Enabled(context.Background(), slog.LevelWarn) {
		t.Error("warn disabled at warn level")
	}
}

func TestRunCleanup(t *testing.T) {
	var buf bytes.Buffer
	ran := false
	runCleanup(bufferLogger(&buf), time.Second, func(context.Context) { ran = true })
	if !ran || !strings.Contains(buf.String(), "Shutdown complete") {
		t.Errorf("ran=%v log=%s", ran, buf.String())
	}

	buf.Reset()
	runCleanup(bufferLogger(&buf), 10*time.Millisecond, func(ctx context.Context) { <-ctx.Done(); time.Sleep(20 * time.Millisecond) })
	if !strings.Contains(buf.String(), "Shutdown timeout reached") {
		t.Errorf("log=%s", buf.String())
	}
}

func TestCloseAll(t *testing.T) {
	var buf bytes.Buffer
	closed := 0
	CloseAll(bufferLogger(&buf), map[string]func() error{
		"ok":     func() error { closed++; return nil },
		"broken": func() error { closed++; return errors.New("boom") },
		"nil":    nil,
	})
	if closed != 2 {
		t.Errorf("closed = %d", closed)
	}
	if !strings.Contains(buf.String(), "Failed to close broken") {
		t.Errorf("log=%s", buf.String())
	}
}
