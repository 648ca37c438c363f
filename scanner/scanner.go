package scanner

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/viant/afs/url"

	"github.com/lkowalski/repopulse/matching"
)

const (
	// DefaultLimit bounds a ScanResult to the N most recent entries.
	DefaultLimit = 20
	// DefaultTimeout bounds the duration of a whole scan.
	DefaultTimeout = 30 * time.Second
)

// Scanner walks a project directory and produces an ordered list of the
// most recently modified eligible files.
type Scanner struct {
	fs      Service
	matcher *matching.Manager
	timeout time.Duration
}

// Option defines a functional option for configuring the Scanner
type Option func(*Scanner)

// WithFS sets a custom listing service.
func WithFS(fs Service) Option {
	return func(s *Scanner) {
		if fs != nil {
			s.fs = fs
		}
	}
}

// WithTimeout sets the whole-scan time bound.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Scanner) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// New creates a new scanner using the supplied exclusion manager
func New(matcher *matching.Manager, opts ...Option) *Scanner {
	scanner := &Scanner{
		fs:      NewAFS(),
		matcher: matcher,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(scanner)
	}
	return scanner
}

// Scan enumerates regular files under root, applies exclusion rules and
// returns up to limit records sorted by modification time descending.
// Whole-scan failure or timeout yields an empty result and the error;
// individual unreadable entries are skipped.
func (s *Scanner) Scan(ctx context.Context, root string, limit int) (ScanResult, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	records, err := s.walk(ctx, root, "", true)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scan %s timed out: %w", root, err)
	}

	// Ties keep encounter order.
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].ModTime.After(records[j].ModTime)
	})
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Count walks the tree applying the same eligibility rules and returns
// the number of eligible files. Used by the metrics collector.
func (s *Scanner) Count(ctx context.Context, root string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	records, err := s.walk(ctx, root, "", true)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

func (s *Scanner) walk(ctx context.Context, location, rel string, isRoot bool) (ScanResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	objects, err := s.fs.List(ctx, location)
	if err != nil {
		if isRoot {
			return nil, fmt.Errorf("failed to list %s: %w", location, err)
		}
		// Unreadable subtree is a per-item failure.
		return nil, nil
	}

	var records ScanResult
	for _, object := range objects {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := object.Name()
		// The listing includes the directory itself.
		if object.IsDir() && url.Equals(url.Path(object.URL()), url.Path(location)) {
			continue
		}
		if name == "" || strings.HasPrefix(name, ".") {
			continue
		}
		relPath := name
		if rel != "" {
			relPath = path.Join(rel, name)
		}
		if s.matcher.IsExcluded(relPath) {
			continue
		}
		if object.IsDir() {
			sub, err := s.walk(ctx, url.Join(location, name), relPath, false)
			if err != nil {
				return nil, err
			}
			records = append(records, sub...)
			continue
		}
		records = append(records, Record{
			Path:    relPath,
			ModTime: object.ModTime(),
			Size:    object.Size(),
		})
	}
	return records, nil
}
