// Package report formats a scan result into the activity section spliced
// into project documents.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/lkowalski/repopulse/scanner"
)

const (
	// DefaultMaxPathLen is the threshold beyond which paths are
	// truncated from the left.
	DefaultMaxPathLen = 60

	// Empty is rendered when a scan produced no records.
	Empty = "No recent modifications found."

	timeLayout = "2006-01-02 15:04:05"
)

// Renderer produces the fixed-layout activity section.
type Renderer struct {
	maxPathLen int
	limit      int
}

// Option defines a functional option for configuring the Renderer
type Option func(*Renderer)

// WithMaxPathLen sets the path truncation threshold.
func WithMaxPathLen(n int) Option {
	return func(r *Renderer) {
		if n > 3 {
			r.maxPathLen = n
		}
	}
}

// WithLimit sets the record limit named in the section heading.
func WithLimit(n int) Option {
	return func(r *Renderer) {
		if n > 0 {
			r.limit = n
		}
	}
}

// New creates a renderer with default layout settings.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		maxPathLen: DefaultMaxPathLen,
		limit:      scanner.DefaultLimit,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render formats result as a markdown section: heading, one table row per
// record in order, and a trailing scan marker line stamped with now.
func (r *Renderer) Render(result scanner.ScanResult, now time.Time) string {
	if len(result) == 0 {
		return Empty
	}
	var b strings.Builder
	fmt.Fprintf(&b, "## Recent Activity (Last %d Edits)\n\n", r.limit)
	b.WriteString("| Date & Time | File | Size |\n")
	b.WriteString("|-------------|------|------|\n")
	for _, rec := range result {
		fmt.Fprintf(&b, "| %s | `%s` | %s |\n",
			rec.ModTime.Format(timeLayout), r.truncate(rec.Path), formatSize(rec.Size))
	}
	fmt.Fprintf(&b, "\n*Last scan: %s*", now.Format(timeLayout))
	return b.String()
}

// truncate shortens long paths from the left so the filename stays visible.
func (r *Renderer) truncate(path string) string {
	if len(path) <= r.maxPathLen {
		return path
	}
	return "..." + path[len(path)-(r.maxPathLen-3):]
}

// formatSize renders a byte count as KB below 1024KB, MB above.
func formatSize(size int64) string {
	sizeKB := float64(size) / 1024
	if sizeKB < 1024 {
		return fmt.Sprintf("%.1fKB", sizeKB)
	}
	return fmt.Sprintf("%.1fMB", sizeKB/1024)
}
