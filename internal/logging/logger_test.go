package logging_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"subsync/internal/config"
	"subsync/internal/logging"
	"subsync/internal/services"
)

func newFileLogger(t *testing.T, format, level string) (func() string, *logging.Options) {
	t.Helper()
	logPath := filepath.Join(t.TempDir(), "out.log")
	noColor := false
	opts := &logging.Options{Format: format, Level: level, OutputPaths: []string{logPath}, Color: &noColor}
	read := func() string {
		data, err := os.ReadFile(logPath)
		if err != nil {
			t.Fatalf("read log file: %v", err)
		}
		return string(data)
	}
	return read, opts
}

func TestNewFromConfigCreatesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hello")

	if _, err := os.Stat(filepath.Join(cfg.Paths.LogDir, "subsync.log")); err != nil {
		t.Fatalf("expected log file: %v", err)
	}
}

func TestConsoleLoggerHoistsComponent(t *testing.T) {
	read, opts := newFileLogger(t, "console", "info")
	logger, err := logging.New(*opts)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.NewComponentLogger(logger, "align").Info("offset selected", logging.Int("score", 95), logging.String("lead_cue", "hello there"))

	line := read()
	if !strings.Contains(line, "INFO align: offset selected") {
		t.Fatalf("expected component before message, got %q", line)
	}
	if !strings.Contains(line, "score=95") || !strings.Contains(line, `lead_cue="hello there"`) {
		t.Fatalf("expected formatted attributes, got %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should not be repeated as attribute: %q", line)
	}
	if strings.Contains(line, ".go:") {
		t.Fatalf("info level should omit source, got %q", line)
	}
	if strings.Contains(line, "\x1b[") {
		t.Fatalf("colour disabled but escape codes present: %q", line)
	}
}

func TestConsoleLoggerIncludesSourceForDebug(t *testing.T) {
	read, opts := newFileLogger(t, "console", "debug")
	logger, err := logging.New(*opts)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("detail")
	if !strings.Contains(read(), "logger_test.go:") {
		t.Fatal("expected source location in debug output")
	}
}

func TestJSONLoggerUsesTsKeyAndContextFields(t *testing.T) {
	read, opts := newFileLogger(t, "json", "info")
	logger, err := logging.New(*opts)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithStage(services.WithRunID(context.Background(), "run-1"), "align")
	logging.WithContext(ctx, logger).Info("aligned")

	var payload map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(read())), &payload); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", payload)
	}
	if payload["level"] != "info" {
		t.Fatalf("expected lowercase level, got %v", payload["level"])
	}
	if payload[logging.FieldRunID] != "run-1" || payload[logging.FieldStage] != "align" {
		t.Fatalf("expected context fields, got %v", payload)
	}
}

func TestLevelFiltering(t *testing.T) {
	read, opts := newFileLogger(t, "console", "warn")
	logger, err := logging.New(*opts)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("hidden")
	logging.WarnWithContext(logger, "low confidence", "alignment_low_confidence")

	out := read()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line should be filtered: %q", out)
	}
	for _, want := range []string{"WARN", "event_type=alignment_low_confidence", "error_hint=", "impact="} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
}

func TestUnsupportedFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
