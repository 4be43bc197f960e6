package logging_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"byebye/internal/config"
	"byebye/internal/logging"
	"byebye/internal/services"
)

func TestNewFromConfigWritesDatedLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hello from config")

	content, err := os.ReadFile(logging.LogFilePath(cfg.Paths.LogDir, time.Now()))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "hello from config") {
		t.Fatalf("expected message in log file, got %q", content)
	}
}

func TestConsoleLoggerOmitsSourceForInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-info.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}, ErrorOutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.NewComponentLogger(logger, "catalog").Info("search complete", logging.String(logging.FieldSKU, "BB-20261016-0001"), logging.Int("results", 3))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	if strings.Contains(line, ".go:") {
		t.Fatalf("expected no source information in info logs, got %q", line)
	}
	for _, fragment := range []string{"INFO", "[catalog]", "BB-20261016-0001 search complete", "results=3"} {
		if !strings.Contains(line, fragment) {
			t.Fatalf("expected %q in %q", fragment, line)
		}
	}
}

func TestConsoleLoggerIncludesSourceForDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-debug.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", OutputPaths: []string{logPath}, ErrorOutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("message with source")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), ".go:") {
		t.Fatalf("expected source information in debug logs, got %q", content)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestWithContextAddsFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "context.json")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}, ErrorOutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := context.Background()
	ctx = services.WithItemID(ctx, 123)
	ctx = services.WithReleaseID(ctx, 456)
	ctx = services.WithBatchID(ctx, "run-1")
	ctx = services.WithRequestID(ctx, "req-xyz")
	logging.WithContext(ctx, logger).Info("contextual log")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(content, &record); err != nil {
		t.Fatalf("decode log line %q: %v", content, err)
	}
	if record["msg"] != "contextual log" || record["level"] != "info" {
		t.Fatalf("unexpected record header: %v", record)
	}
	if record[logging.FieldItemID] != float64(123) {
		t.Fatalf("item_id = %v", record[logging.FieldItemID])
	}
	if record[logging.FieldReleaseID] != float64(456) {
		t.Fatalf("release_id = %v", record[logging.FieldReleaseID])
	}
	if record[logging.FieldBatchID] != "run-1" {
		t.Fatalf("batch_id = %v", record[logging.FieldBatchID])
	}
	if record[logging.FieldCorrelationID] != "req-xyz" {
		t.Fatalf("correlation_id = %v", record[logging.FieldCorrelationID])
	}
}

func TestCleanupOldLogsRemovesExpiredFiles(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.Local)
	old := filepath.Join(dir, "byebye-20260901.log")
	recent := filepath.Join(dir, "byebye-20261015.log")
	other := filepath.Join(dir, "notes.txt")
	for _, path := range []string{old, recent, other} {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	stale := now.AddDate(0, 0, -30)
	for _, path := range []string{old, other} {
		if err := os.Chtimes(path, stale, stale); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
	}
	if err := os.Chtimes(recent, now, now); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	if removed := logging.CleanupOldLogs(logging.NewNop(), dir, 14, now); removed != 1 {
		t.Fatalf("expected 1 file removed, got %d", removed)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatalf("expected %s removed", old)
	}
	for _, path := range []string{recent, other} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s kept: %v", path, err)
		}
	}
}

func TestLogFileNamesRoundTripDay(t *testing.T) {
	dir := t.TempDir()
	day := time.Date(2026, 10, 16, 0, 0, 0, 0, time.Local)
	path := logging.LogFilePath(dir, day.Add(15*time.Hour))
	if filepath.Base(path) != "byebye-20261016.log" {
		t.Fatalf("unexpected log file name %q", path)
	}
	if matched, err := filepath.Match(logging.LogFilePattern(dir), path); err != nil || !matched {
		t.Fatalf("pattern %q should match %q", logging.LogFilePattern(dir), path)
	}
	got, ok := logging.LogFileDay(path)
	if !ok || !got.Equal(day) {
		t.Fatalf("LogFileDay(%q) = %v, %v", path, got, ok)
	}
	for _, name := range []string{"notes.txt", "byebye-latest.log", "byebye-20261016.txt"} {
		if _, ok := logging.LogFileDay(name); ok {
			t.Fatalf("expected %q to be rejected", name)
		}
	}
}

func TestWarnWithContextFillsMissingFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "warn.json")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WarnWithContext(logger, "scrape degraded", "quote_scrape_degraded",
		logging.String(logging.FieldImpact, "estimate only"),
		logging.Error(nil),
	)

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(content, &record); err != nil {
		t.Fatalf("decode log line %q: %v", content, err)
	}
	if record[logging.FieldEventType] != "quote_scrape_degraded" {
		t.Fatalf("event_type = %v", record[logging.FieldEventType])
	}
	if record[logging.FieldErrorHint] != "check logs for details" {
		t.Fatalf("error_hint = %v", record[logging.FieldErrorHint])
	}
	if record[logging.FieldImpact] != "estimate only" {
		t.Fatalf("impact = %v", record[logging.FieldImpact])
	}
	if record[logging.FieldError] != "<nil>" {
		t.Fatalf("error = %v", record[logging.FieldError])
	}
}
