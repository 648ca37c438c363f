package metrics

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/lkowalski/repopulse/gitlog"
	"github.com/lkowalski/repopulse/matching"
	"github.com/lkowalski/repopulse/scanner"
	"github.com/lkowalski/repopulse/state"
	"github.com/viant/afs"
	"github.com/viant/afs/url"
)

// DefaultProjectPrefix selects project directories when counting.
const DefaultProjectPrefix = "PROJECT_"

// DefaultRecentWindow bounds what counts as recent activity.
const DefaultRecentWindow = 24 * time.Hour

// Request holds the inputs for one metrics collection run.
type Request struct {
	ProjectsDir   string
	ProjectPrefix string
	RepoDir       string
	StateURL      string
	WorkflowDir   string
	ScriptsDir    string
	RecentWindow  time.Duration
	Logf          func(format string, args ...any)
}

// Init applies defaults
func (r *Request) Init() {
	if r.ProjectPrefix == "" {
		r.ProjectPrefix = DefaultProjectPrefix
	}
	if r.RepoDir == "" {
		r.RepoDir = "."
	}
	if r.WorkflowDir == "" {
		r.WorkflowDir = url.Join(r.RepoDir, ".github", "workflows")
	}
	if r.ScriptsDir == "" {
		r.ScriptsDir = url.Join(r.RepoDir, "scripts")
	}
	if r.RecentWindow == 0 {
		r.RecentWindow = DefaultRecentWindow
	}
	if r.Logf == nil {
		r.Logf = func(format string, args ...any) {}
	}
}

// Collector gathers project and repository metrics.
type Collector struct {
	fs      afs.Service
	scanner *scanner.Scanner
}

// Option defines a functional option for configuring the Collector
type Option func(*Collector)

// WithFS overrides the file system service
func WithFS(fs afs.Service) Option {
	return func(c *Collector) {
		c.fs = fs
	}
}

// WithScanner overrides the repository file counter
func WithScanner(s *scanner.Scanner) Option {
	return func(c *Collector) {
		c.scanner = s
	}
}

// New creates a metrics collector.
func New(opts ...Option) *Collector {
	c := &Collector{}
	for _, opt := range opts {
		opt(c)
	}
	if c.fs == nil {
		c.fs = afs.New()
	}
	if c.scanner == nil {
		c.scanner = scanner.New(matching.New())
	}
	return c
}

// Collect gathers a snapshot. Individual probes are best effort, a
// failing probe logs and leaves its counter at zero.
func (c *Collector) Collect(ctx context.Context, request *Request) (*Snapshot, error) {
	request.Init()
	snapshot := &Snapshot{CollectedAt: time.Now()}

	count, err := c.projectCount(ctx, request.ProjectsDir, request.ProjectPrefix)
	if err != nil {
		request.Logf("error counting projects: %v", err)
	}
	snapshot.ProjectCount = count

	git := gitlog.NewReader(request.RepoDir)
	since := snapshot.CollectedAt.Add(-request.RecentWindow)
	if commits, err := git.CommitCount(ctx, since); err != nil {
		request.Logf("error getting git activity: %v", err)
	} else {
		snapshot.RecentCommits = commits
	}

	if total, err := c.scanner.Count(ctx, request.RepoDir); err != nil {
		request.Logf("error counting files: %v", err)
	} else {
		snapshot.TotalFiles = total
	}

	if request.StateURL != "" {
		if err := c.monitorStats(ctx, request, snapshot); err != nil {
			request.Logf("error analyzing monitor state: %v", err)
		}
	}
	if err := c.repositoryStats(ctx, request, snapshot); err != nil {
		request.Logf("error collecting repository stats: %v", err)
	}
	return snapshot, nil
}

func (c *Collector) projectCount(ctx context.Context, dir, prefix string) (int, error) {
	if dir == "" {
		return 0, nil
	}
	if ok, _ := c.fs.Exists(ctx, dir); !ok {
		return 0, nil
	}
	objects, err := c.fs.List(ctx, dir)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, object := range objects {
		if !object.IsDir() || url.Equals(url.Path(object.URL()), url.Path(dir)) {
			continue
		}
		if strings.HasPrefix(object.Name(), prefix) {
			count++
		}
	}
	return count, nil
}

func (c *Collector) monitorStats(ctx context.Context, request *Request, snapshot *Snapshot) error {
	store := state.NewStore(request.StateURL)
	if err := store.Load(ctx); err != nil {
		return fmt.Errorf("failed to load monitor state: %w", err)
	}
	snapshot.ProjectsMonitored = store.Size()
	cutoff := snapshot.CollectedAt.Add(-request.RecentWindow)
	for _, project := range store.Projects() {
		projectState, ok := store.Get(project)
		if !ok {
			continue
		}
		snapshot.TotalModifications += len(projectState.Modifications)
		snapshot.RecentChanges += projectState.Modifications.Since(cutoff)
	}
	return nil
}

func (c *Collector) repositoryStats(ctx context.Context, request *Request, snapshot *Snapshot) error {
	if ok, _ := c.fs.Exists(ctx, request.WorkflowDir); ok {
		objects, err := c.fs.List(ctx, request.WorkflowDir)
		if err != nil {
			return err
		}
		for _, object := range objects {
			if object.IsDir() {
				continue
			}
			name := object.Name()
			switch {
			case strings.HasSuffix(name, ".yml"), strings.HasSuffix(name, ".yaml"):
				snapshot.TotalWorkflows++
				snapshot.ActiveWorkflows++
			case strings.HasSuffix(name, ".yml.disabled"), strings.HasSuffix(name, ".yaml.disabled"):
				snapshot.TotalWorkflows++
			}
		}
	}
	if ok, _ := c.fs.Exists(ctx, request.ScriptsDir); ok {
		objects, err := c.fs.List(ctx, request.ScriptsDir)
		if err != nil {
			return err
		}
		for _, object := range objects {
			if object.IsDir() {
				continue
			}
			switch path.Ext(object.Name()) {
			case ".sh", ".py", ".go":
				snapshot.TotalScripts++
			}
		}
	}
	return nil
}
