// Package rotate archives oversized monitor logs and prunes old archives.
package rotate

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
)

const (
	// DefaultArchiveDirname holds rotated logs next to the live ones.
	DefaultArchiveDirname = "monitor_logs_archive"
	recentArchiveLimit    = 5
	archiveTimeLayout     = "20060102_150405"
)

// Policy bounds the growth of a single log file.
type Policy struct {
	MaxSizeMB int  `yaml:"maxSizeMB" json:"max_size_mb"`
	KeepDays  int  `yaml:"keepDays" json:"keep_days"`
	Compress  bool `yaml:"compress" json:"compress"`
}

// DefaultPolicies returns the built-in log set.
func DefaultPolicies() map[string]Policy {
	return map[string]Policy{
		".project_monitor.log":        {MaxSizeMB: 10, KeepDays: 30, Compress: true},
		".project_monitor_stdout.log": {MaxSizeMB: 5, KeepDays: 7, Compress: true},
		".project_monitor_stderr.log": {MaxSizeMB: 5, KeepDays: 7, Compress: true},
	}
}

// Request holds the inputs for one rotation pass.
type Request struct {
	LogDir     string
	ArchiveDir string
	Policies   map[string]Policy
	ReportURL  string
	Logf       func(format string, args ...any)
}

// Init applies defaults
func (r *Request) Init() {
	if r.ArchiveDir == "" {
		r.ArchiveDir = url.Join(r.LogDir, DefaultArchiveDirname)
	}
	if len(r.Policies) == 0 {
		r.Policies = DefaultPolicies()
	}
	if r.Logf == nil {
		r.Logf = func(format string, args ...any) {}
	}
}

// LogStatus describes one live log in the rotation report.
type LogStatus struct {
	SizeMB        float64 `json:"size_mb"`
	MaxSizeMB     int     `json:"max_size_mb"`
	NeedsRotation bool    `json:"needs_rotation"`
}

// ArchiveInfo describes one archived log in the rotation report.
type ArchiveInfo struct {
	Name    string  `json:"name"`
	SizeMB  float64 `json:"size_mb"`
	AgeDays int     `json:"age_days"`
}

// ArchiveSummary aggregates the archive directory.
type ArchiveSummary struct {
	Count       int           `json:"count"`
	TotalSizeMB float64       `json:"total_size_mb"`
	Recent      []ArchiveInfo `json:"recent,omitempty"`
}

// Report summarizes a rotation pass.
type Report struct {
	Timestamp time.Time            `json:"timestamp"`
	Logs      map[string]LogStatus `json:"logs"`
	Archives  ArchiveSummary       `json:"archives"`
	Rotated   []string             `json:"rotated,omitempty"`
	Deleted   []string             `json:"deleted,omitempty"`
}

// Manager rotates logs according to per-log policies.
type Manager struct {
	fs  afs.Service
	now func() time.Time
}

// Option defines a functional option for configuring the Manager
type Option func(*Manager)

// WithFS overrides the file system service
func WithFS(fs afs.Service) Option {
	return func(m *Manager) {
		m.fs = fs
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// New creates a rotation manager.
func New(opts ...Option) *Manager {
	m := &Manager{}
	for _, opt := range opts {
		opt(m)
	}
	if m.fs == nil {
		m.fs = afs.New()
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// Rotate archives each oversized log, prunes expired archives and
// returns a report. A failing log is reported and skipped.
func (m *Manager) Rotate(ctx context.Context, request *Request) (*Report, error) {
	request.Init()
	report := &Report{
		Timestamp: m.now(),
		Logs:      map[string]LogStatus{},
	}
	names := make([]string, 0, len(request.Policies))
	for name := range request.Policies {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		rotated, err := m.rotateLog(ctx, request, name, request.Policies[name])
		if err != nil {
			request.Logf("failed to rotate %v: %v", name, err)
			continue
		}
		if rotated {
			report.Rotated = append(report.Rotated, name)
		}
	}
	deleted, err := m.pruneArchives(ctx, request)
	if err != nil {
		request.Logf("failed to prune archives: %v", err)
	}
	report.Deleted = deleted

	if err := m.summarize(ctx, request, report); err != nil {
		return report, err
	}
	if request.ReportURL != "" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return report, err
		}
		if err := m.fs.Upload(ctx, request.ReportURL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
			return report, fmt.Errorf("failed to save rotation report: %w", err)
		}
	}
	return report, nil
}

func (m *Manager) rotateLog(ctx context.Context, request *Request, name string, policy Policy) (bool, error) {
	logURL := url.Join(request.LogDir, name)
	object, err := m.fs.Object(ctx, logURL)
	if err != nil {
		return false, nil
	}
	sizeMB := toMB(object.Size())
	if sizeMB < float64(policy.MaxSizeMB) {
		return false, nil
	}
	data, err := m.fs.DownloadWithURL(ctx, logURL)
	if err != nil {
		return false, err
	}
	archiveName := fmt.Sprintf("%s.%s", name, m.now().Format(archiveTimeLayout))
	if policy.Compress {
		archiveName += ".gz"
		var buffer bytes.Buffer
		writer := gzip.NewWriter(&buffer)
		if _, err := writer.Write(data); err != nil {
			return false, err
		}
		if err := writer.Close(); err != nil {
			return false, err
		}
		data = buffer.Bytes()
	}
	archiveURL := url.Join(request.ArchiveDir, archiveName)
	if err := m.fs.Upload(ctx, archiveURL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return false, err
	}
	reset := fmt.Sprintf("[Log rotated at %s]\n", m.now().Format("2006-01-02 15:04:05"))
	if err := m.fs.Upload(ctx, logURL, file.DefaultFileOsMode, strings.NewReader(reset)); err != nil {
		return false, err
	}
	request.Logf("rotated %v (%.2fMB) to %v", name, sizeMB, archiveName)
	return true, nil
}

func (m *Manager) pruneArchives(ctx context.Context, request *Request) ([]string, error) {
	if ok, _ := m.fs.Exists(ctx, request.ArchiveDir); !ok {
		return nil, nil
	}
	objects, err := m.fs.List(ctx, request.ArchiveDir)
	if err != nil {
		return nil, err
	}
	var deleted []string
	now := m.now()
	for _, object := range objects {
		if object.IsDir() {
			continue
		}
		policy, ok := policyFor(request.Policies, object.Name())
		if !ok {
			continue
		}
		ageDays := int(now.Sub(object.ModTime()).Hours() / 24)
		if ageDays <= policy.KeepDays {
			continue
		}
		if err := m.fs.Delete(ctx, object.URL()); err != nil {
			request.Logf("failed to delete archive %v: %v", object.Name(), err)
			continue
		}
		request.Logf("deleted old archive: %v (%d days old)", object.Name(), ageDays)
		deleted = append(deleted, object.Name())
	}
	sort.Strings(deleted)
	return deleted, nil
}

func (m *Manager) summarize(ctx context.Context, request *Request, report *Report) error {
	for name, policy := range request.Policies {
		object, err := m.fs.Object(ctx, url.Join(request.LogDir, name))
		if err != nil {
			continue
		}
		sizeMB := toMB(object.Size())
		report.Logs[name] = LogStatus{
			SizeMB:        round2(sizeMB),
			MaxSizeMB:     policy.MaxSizeMB,
			NeedsRotation: sizeMB >= float64(policy.MaxSizeMB),
		}
	}
	if ok, _ := m.fs.Exists(ctx, request.ArchiveDir); !ok {
		return nil
	}
	objects, err := m.fs.List(ctx, request.ArchiveDir)
	if err != nil {
		return err
	}
	var archives []storage.Object
	var totalSize int64
	for _, object := range objects {
		if object.IsDir() {
			continue
		}
		archives = append(archives, object)
		totalSize += object.Size()
	}
	sort.Slice(archives, func(i, j int) bool {
		return archives[i].ModTime().After(archives[j].ModTime())
	})
	report.Archives.Count = len(archives)
	report.Archives.TotalSizeMB = round2(toMB(totalSize))
	now := m.now()
	for i, object := range archives {
		if i >= recentArchiveLimit {
			break
		}
		report.Archives.Recent = append(report.Archives.Recent, ArchiveInfo{
			Name:    object.Name(),
			SizeMB:  round2(toMB(object.Size())),
			AgeDays: int(now.Sub(object.ModTime()).Hours() / 24),
		})
	}
	return nil
}

func policyFor(policies map[string]Policy, archiveName string) (Policy, bool) {
	for name, policy := range policies {
		if strings.HasPrefix(archiveName, name) {
			return policy, true
		}
	}
	return Policy{}, false
}

func toMB(size int64) float64 {
	return float64(size) / (1024 * 1024)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
