package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"extpack/internal/config"
	"extpack/internal/logging"
	"extpack/internal/services"
)

func newBufferedLogger(t *testing.T, format, level string) (*slog.Logger, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, errOut bytes.Buffer
	logger, err := logging.New(logging.Options{Format: format, Level: level, Out: &out, ErrOut: &errOut})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return logger, &out, &errOut
}

func TestNewFromConfigConsole(t *testing.T) {
	cfg := config.Default()
	var out bytes.Buffer
	logger, err := logging.NewFromConfig(&cfg, &out, &out)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("workspace ready")
	if !strings.Contains(out.String(), "INFO") || !strings.Contains(out.String(), "workspace ready") {
		t.Fatalf("expected console line, got %q", out.String())
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestErrorsGoToErrOutProgressToOut(t *testing.T) {
	logger, out, errOut := newBufferedLogger(t, "console", "info")

	logger.Info("copying file", logging.String("source", "README.md"))
	logger.Warn("history unavailable")
	logger.Error("build failed", logging.Error(errors.New("boom")))

	if !strings.Contains(out.String(), "copying file") || !strings.Contains(out.String(), "source=README.md") {
		t.Fatalf("expected progress line on stdout, got %q", out.String())
	}
	if !strings.Contains(out.String(), "WARN") {
		t.Fatalf("expected warning on stdout, got %q", out.String())
	}
	if strings.Contains(out.String(), "build failed") {
		t.Fatalf("error line leaked to stdout: %q", out.String())
	}
	if !strings.Contains(errOut.String(), "build failed") || !strings.Contains(errOut.String(), "error=boom") {
		t.Fatalf("expected error line on stderr, got %q", errOut.String())
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	logger, out, _ := newBufferedLogger(t, "console", "info")
	logger.Info("message without caller")
	if strings.Contains(out.String(), ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", out.String())
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logger, out, _ := newBufferedLogger(t, "console", "debug")
	logger.Debug("message with caller")
	if !strings.Contains(out.String(), "logger_test.go:") {
		t.Fatalf("expected caller information in debug logs, got %q", out.String())
	}
}

func TestConsoleLoggerRendersComponentAndStage(t *testing.T) {
	logger, out, _ := newBufferedLogger(t, "console", "info")

	ctx := services.WithBuildID(context.Background(), "build-123")
	ctx = services.WithStage(ctx, "archive")
	stageLogger := logging.WithContext(ctx, logging.NewComponentLogger(logger, "pipeline"))
	stageLogger.Info("stage started")

	line := out.String()
	if !strings.Contains(line, "INFO [pipeline] archive – stage started") {
		t.Fatalf("unexpected console line: %q", line)
	}
	if strings.Contains(line, "build-123") {
		t.Fatalf("expected build id hidden at info level: %q", line)
	}
}

func TestJSONLoggerCarriesContextFields(t *testing.T) {
	logger, out, _ := newBufferedLogger(t, "json", "info")

	ctx := services.WithBuildID(context.Background(), "build-123")
	logging.WithContext(ctx, logger).Info("build started")

	var payload map[string]any
	if err := json.Unmarshal(out.Bytes(), &payload); err != nil {
		t.Fatalf("decode json log: %v (%q)", err, out.String())
	}
	if payload[logging.FieldBuildID] != "build-123" {
		t.Fatalf("expected build id in json log, got %v", payload)
	}
	if payload["level"] != "info" {
		t.Fatalf("expected lowercase level, got %v", payload["level"])
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", payload)
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	logger, out, _ := newBufferedLogger(t, "console", "info")
	logging.WarnWithContext(logger, "history unavailable", "history_open_failed")
	line := out.String()
	if !strings.Contains(line, "event_type=history_open_failed") {
		t.Fatalf("expected event type, got %q", line)
	}
	if !strings.Contains(line, "impact=") {
		t.Fatalf("expected impact, got %q", line)
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	logger.Error("ignored")
	if logger.Enabled(context.Background(), 12) {
		t.Fatal("expected nop logger to be disabled")
	}
}
