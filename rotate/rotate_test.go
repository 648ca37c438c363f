package rotate

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestRotate_ArchivesOversizedLog(t *testing.T) {
	ctx := context.Background()
	logDir := t.TempDir()
	logName := ".project_monitor.log"
	payload := bytes.Repeat([]byte("monitor line\n"), 100_000)
	if err := os.WriteFile(filepath.Join(logDir, logName), payload, 0o644); err != nil {
		t.Fatal(err)
	}

	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	manager := New(WithClock(func() time.Time { return now }))
	report, err := manager.Rotate(ctx, &Request{
		LogDir: logDir,
		Policies: map[string]Policy{
			logName: {MaxSizeMB: 1, KeepDays: 7, Compress: true},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Rotated) != 1 || report.Rotated[0] != logName {
		t.Fatalf("expected %v rotated, got %v", logName, report.Rotated)
	}

	archivePath := filepath.Join(logDir, DefaultArchiveDirname, logName+".20260314_093000.gz")
	archived, err := os.ReadFile(archivePath)
	if err != nil {
		t.Fatal(err)
	}
	reader, err := gzip.NewReader(bytes.NewReader(archived))
	if err != nil {
		t.Fatal(err)
	}
	restored, err := io.ReadAll(reader)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(restored, payload) {
		t.Error("archived content does not match the original log")
	}

	live, err := os.ReadFile(filepath.Join(logDir, logName))
	if err != nil {
		t.Fatal(err)
	}
	if string(live) != "[Log rotated at 2026-03-14 09:30:00]\n" {
		t.Errorf("unexpected reset line: %q", live)
	}
	if status := report.Logs[logName]; status.NeedsRotation {
		t.Errorf("expected reset log below threshold, got %+v", status)
	}
	if report.Archives.Count != 1 {
		t.Errorf("expected 1 archive, got %d", report.Archives.Count)
	}
}

func TestRotate_SkipsSmallLog(t *testing.T) {
	ctx := context.Background()
	logDir := t.TempDir()
	logName := ".project_monitor.log"
	if err := os.WriteFile(filepath.Join(logDir, logName), []byte("short\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	report, err := New().Rotate(ctx, &Request{
		LogDir: logDir,
		Policies: map[string]Policy{
			logName: {MaxSizeMB: 1, KeepDays: 7, Compress: true},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Rotated) != 0 {
		t.Errorf("expected no rotation, got %v", report.Rotated)
	}
	if _, err := os.Stat(filepath.Join(logDir, DefaultArchiveDirname)); !os.IsNotExist(err) {
		t.Error("expected no archive directory for a small log")
	}
}

func TestRotate_PrunesExpiredArchives(t *testing.T) {
	ctx := context.Background()
	logDir := t.TempDir()
	archiveDir := filepath.Join(logDir, DefaultArchiveDirname)
	if err := os.Mkdir(archiveDir, 0o755); err != nil {
		t.Fatal(err)
	}
	old := filepath.Join(archiveDir, ".project_monitor.log.20260101_000000.gz")
	fresh := filepath.Join(archiveDir, ".project_monitor.log.20260313_000000.gz")
	stray := filepath.Join(archiveDir, "unmanaged.log.20260101_000000.gz")
	for _, name := range []string{old, fresh, stray} {
		if err := os.WriteFile(name, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	past := time.Now().Add(-40 * 24 * time.Hour)
	for _, name := range []string{old, stray} {
		if err := os.Chtimes(name, past, past); err != nil {
			t.Fatal(err)
		}
	}

	report, err := New().Rotate(ctx, &Request{
		LogDir: logDir,
		Policies: map[string]Policy{
			".project_monitor.log": {MaxSizeMB: 10, KeepDays: 30, Compress: true},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Deleted) != 1 || !strings.HasPrefix(report.Deleted[0], ".project_monitor.log.20260101") {
		t.Errorf("expected expired archive deleted, got %v", report.Deleted)
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Error("expected fresh archive to survive")
	}
	if _, err := os.Stat(stray); err != nil {
		t.Error("expected unmanaged archive to survive")
	}
}

func TestRotate_WritesReport(t *testing.T) {
	ctx := context.Background()
	logDir := t.TempDir()
	logName := ".project_monitor_stdout.log"
	if err := os.WriteFile(filepath.Join(logDir, logName), []byte("line\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	reportURL := filepath.Join(logDir, "log_rotation_report.json")
	if _, err := New().Rotate(ctx, &Request{
		LogDir:    logDir,
		ReportURL: reportURL,
	}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(reportURL)
	if err != nil {
		t.Fatal(err)
	}
	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatal(err)
	}
	if _, ok := report.Logs[logName]; !ok {
		t.Errorf("expected %v in report, got %+v", logName, report.Logs)
	}
}
