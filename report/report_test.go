package report

import (
	"strings"
	"testing"
	"time"

	"github.com/lkowalski/repopulse/scanner"
)

func TestRenderer_Render_Empty(t *testing.T) {
	r := New()
	if got := r.Render(nil, time.Now()); got != Empty {
		t.Errorf("expected empty sentence, got %q", got)
	}
}

func TestRenderer_Render(t *testing.T) {
	modTime := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	result := scanner.ScanResult{
		{Path: "src/main.go", ModTime: modTime, Size: 2048},
		{Path: "README.md", ModTime: modTime.Add(-time.Hour), Size: 3 * 1024 * 1024},
	}

	out := New().Render(result, now)
	lines := strings.Split(out, "\n")

	if lines[0] != "## Recent Activity (Last 20 Edits)" {
		t.Errorf("unexpected heading: %q", lines[0])
	}
	if lines[2] != "| Date & Time | File | Size |" {
		t.Errorf("unexpected table header: %q", lines[2])
	}
	if want := "| 2025-06-01 09:30:00 | `src/main.go` | 2.0KB |"; lines[4] != want {
		t.Errorf("row mismatch:\n got %q\nwant %q", lines[4], want)
	}
	if want := "| 2025-06-01 08:30:00 | `README.md` | 3.0MB |"; lines[5] != want {
		t.Errorf("row mismatch:\n got %q\nwant %q", lines[5], want)
	}
	if want := "*Last scan: 2025-06-01 10:00:00*"; lines[len(lines)-1] != want {
		t.Errorf("trailer mismatch:\n got %q\nwant %q", lines[len(lines)-1], want)
	}
}

func TestRenderer_Render_PathTruncation(t *testing.T) {
	long := strings.Repeat("a/", 40) + "leaf.go" // 87 chars
	result := scanner.ScanResult{
		{Path: long, ModTime: time.Now(), Size: 10},
	}
	out := New().Render(result, time.Now())

	if strings.Contains(out, "`"+long+"`") {
		t.Fatal("long path not truncated")
	}
	want := "..." + long[len(long)-57:]
	if !strings.Contains(out, "`"+want+"`") {
		t.Errorf("expected truncated path %q in output", want)
	}
	if !strings.Contains(out, "leaf.go") {
		t.Error("filename lost by truncation")
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{512, "0.5KB"},
		{1024, "1.0KB"},
		{1024 * 1023, "1023.0KB"},
		{1024 * 1024, "1.0MB"},
		{5*1024*1024 + 512*1024, "5.5MB"},
	}
	for _, tc := range tests {
		if got := formatSize(tc.size); got != tc.want {
			t.Errorf("formatSize(%d) = %q, want %q", tc.size, got, tc.want)
		}
	}
}
