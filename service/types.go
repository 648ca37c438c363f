package service

import (
	"time"

	"github.com/lkowalski/repopulse/metrics"
	"github.com/lkowalski/repopulse/rotate"
	"github.com/lkowalski/repopulse/scanner"
	"github.com/lkowalski/repopulse/workflow"
)

// MonitorRequest defines inputs for one monitoring pass.
type MonitorRequest struct {
	ProjectsDir    string
	ProjectPrefix  string
	DocsDir        string
	StateURL       string
	Limit          int
	Timeout        time.Duration
	Depth          int
	MaxPathLen     int
	ExcludeDirs    []string
	ExcludeExts    []string
	LogPath        string
	RotationLogDir string
	Logf           func(format string, args ...any)
}

// ProjectResult reports the outcome for one project.
type ProjectResult struct {
	Name          string             `json:"name"`
	Fingerprint   string             `json:"fingerprint"`
	Changed       bool               `json:"changed"`
	Updated       bool               `json:"updated"`
	Modifications scanner.ScanResult `json:"modifications,omitempty"`
	Error         string             `json:"error,omitempty"`
}

// MonitorResponse summarizes a monitoring pass.
type MonitorResponse struct {
	PassID   string          `json:"pass_id"`
	Started  time.Time       `json:"started"`
	Elapsed  time.Duration   `json:"elapsed"`
	Projects []ProjectResult `json:"projects"`
	Updated  int             `json:"updated"`
	Skipped  int             `json:"skipped"`
	Failed   int             `json:"failed"`
}

// WorkflowsRequest defines inputs for workflow analysis.
type WorkflowsRequest struct {
	Dir        string
	StateURL   string
	SummaryURL string
	Logf       func(format string, args ...any)
}

// WorkflowState is the persisted workflow analysis output.
type WorkflowState struct {
	Timestamp     time.Time           `json:"timestamp"`
	WorkflowCount int                 `json:"workflow_count"`
	ActiveCount   int                 `json:"active_count"`
	Workflows     []workflow.Workflow `json:"workflows"`
}

// WorkflowsResponse summarizes workflow analysis.
type WorkflowsResponse struct {
	State   *WorkflowState `json:"state"`
	Summary string         `json:"summary"`
}

// MetricsRequest defines inputs for metrics collection.
type MetricsRequest struct {
	ProjectsDir   string
	ProjectPrefix string
	RepoDir       string
	StateURL      string
	CacheURL      string
	SummaryURL    string
	HistoryDSN    string
	Logf          func(format string, args ...any)
}

// MetricsResponse summarizes metrics collection.
type MetricsResponse struct {
	Snapshot *metrics.Snapshot `json:"snapshot"`
	Summary  string            `json:"summary"`
}

// ReadmeRequest defines inputs for README generation.
type ReadmeRequest struct {
	ReadmeURL   string
	StateURL    string
	CacheURL    string
	HistoryDSN  string
	RepoDir     string
	CommitLimit int
	Force       bool
	Logf        func(format string, args ...any)
}

// ReadmeResponse summarizes README generation.
type ReadmeResponse struct {
	Updated  bool     `json:"updated"`
	Sections []string `json:"sections"`
}

// RotateRequest defines inputs for log rotation.
type RotateRequest struct {
	LogDir     string
	ArchiveDir string
	ReportURL  string
	Policies   map[string]rotate.Policy
	Logf       func(format string, args ...any)
}

// RotateResponse wraps the rotation report.
type RotateResponse struct {
	Report *rotate.Report `json:"report"`
}
