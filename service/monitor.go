package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lkowalski/repopulse/docsync"
	"github.com/lkowalski/repopulse/fingerprint"
	"github.com/lkowalski/repopulse/matching"
	"github.com/lkowalski/repopulse/matching/option"
	"github.com/lkowalski/repopulse/report"
	"github.com/lkowalski/repopulse/rotate"
	"github.com/lkowalski/repopulse/scanner"
	"github.com/lkowalski/repopulse/state"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
)

// DefaultProjectPrefix selects monitored project directories.
const DefaultProjectPrefix = "PROJECT"

// rotateThresholdMB triggers opportunistic log rotation after a pass.
const rotateThresholdMB = 8

// activityRegion locates the activity section inside a project doc.
var activityRegion = docsync.Region{
	Name:          "ACTIVITY",
	Heading:       "## Recent Activity",
	TrailerPrefix: "*Last scan:",
	InsertBefore:  "## Context",
	AllowInsert:   true,
}

// Init applies defaults
func (r *MonitorRequest) Init() {
	if r.ProjectPrefix == "" {
		r.ProjectPrefix = DefaultProjectPrefix
	}
	if r.Limit == 0 {
		r.Limit = scanner.DefaultLimit
	}
	if r.Timeout == 0 {
		r.Timeout = scanner.DefaultTimeout
	}
	if r.Depth == 0 {
		r.Depth = fingerprint.DefaultDepth
	}
	if r.MaxPathLen == 0 {
		r.MaxPathLen = report.DefaultMaxPathLen
	}
	if r.Logf == nil {
		r.Logf = func(format string, args ...any) {}
	}
}

// Validate checks required fields
func (r *MonitorRequest) Validate() error {
	if r.ProjectsDir == "" {
		return fmt.Errorf("projectsDir was empty")
	}
	if r.DocsDir == "" {
		return fmt.Errorf("docsDir was empty")
	}
	if r.StateURL == "" {
		return fmt.Errorf("stateURL was empty")
	}
	return nil
}

// Monitor runs one monitoring pass: scans each project directory,
// fingerprints the result and splices an activity section into the
// project doc when the fingerprint changed.
func (s *Service) Monitor(ctx context.Context, request *MonitorRequest) (*MonitorResponse, error) {
	request.Init()
	if err := request.Validate(); err != nil {
		return nil, err
	}
	response := &MonitorResponse{PassID: uuid.NewString(), Started: time.Now()}
	request.Logf("starting project activity monitor, pass %v", response.PassID)

	previous := state.NewStore(request.StateURL)
	if err := previous.Load(ctx); err != nil {
		request.Logf("error loading state: %v", err)
	}

	projects, err := s.listProjects(ctx, request.ProjectsDir, request.ProjectPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects in %v: %w", request.ProjectsDir, err)
	}
	request.Logf("found %d projects to monitor", len(projects))

	var matchOptions []option.Option
	if len(request.ExcludeDirs) > 0 {
		matchOptions = append(matchOptions, option.WithExcludedDirs(request.ExcludeDirs...))
	}
	if len(request.ExcludeExts) > 0 {
		matchOptions = append(matchOptions, option.WithExcludedExtensions(request.ExcludeExts...))
	}
	matcher := matching.New(matchOptions...)
	scan := scanner.New(matcher, scanner.WithTimeout(request.Timeout))
	renderer := report.New(report.WithLimit(request.Limit), report.WithMaxPathLen(request.MaxPathLen))

	next := state.NewStore(request.StateURL)
	for _, project := range projects {
		result := s.processProject(ctx, request, scan, renderer, previous, next, project)
		response.Projects = append(response.Projects, result)
		switch {
		case result.Error != "":
			response.Failed++
		case result.Updated:
			response.Updated++
		default:
			response.Skipped++
		}
	}
	if err := next.Save(ctx); err != nil {
		request.Logf("error saving state: %v", err)
		return response, fmt.Errorf("failed to save state: %w", err)
	}
	response.Elapsed = time.Since(response.Started)
	request.Logf("monitoring complete, updated %d projects", response.Updated)

	s.maybeRotate(ctx, request)
	return response, nil
}

func (s *Service) processProject(ctx context.Context, request *MonitorRequest, scan *scanner.Scanner, renderer *report.Renderer, previous, next *state.Store, project string) ProjectResult {
	request.Logf("processing %v...", project)
	result := ProjectResult{Name: project}
	now := time.Now()

	location := url.Join(request.ProjectsDir, project)
	modifications, err := scan.Scan(ctx, location, request.Limit)
	if err != nil {
		request.Logf("  error scanning project %v: %v", project, err)
		result.Error = err.Error()
		if prior, ok := previous.Get(project); ok {
			next.Set(project, prior)
		}
		return result
	}
	if len(modifications) == 0 {
		request.Logf("  no files found in %v", project)
		entry := &state.ProjectState{LastChecked: now}
		if prior, ok := previous.Get(project); ok {
			entry.Fingerprint = prior.Fingerprint
			entry.LastUpdated = prior.LastUpdated
			entry.Modifications = prior.Modifications
		}
		next.Set(project, entry)
		return result
	}

	hash, err := fingerprint.Of(modifications, request.Depth)
	if err != nil {
		request.Logf("  error fingerprinting %v: %v", project, err)
		result.Error = err.Error()
		if prior, ok := previous.Get(project); ok {
			next.Set(project, prior)
		}
		return result
	}
	result.Fingerprint = hash
	result.Modifications = modifications

	entry := &state.ProjectState{
		Fingerprint:   hash,
		LastChecked:   now,
		Modifications: modifications,
	}
	prior, hadPrior := previous.Get(project)
	if hadPrior && prior.Fingerprint == hash {
		request.Logf("  no changes detected in %v", project)
		entry.LastUpdated = prior.LastUpdated
		next.Set(project, entry)
		return result
	}

	result.Changed = true
	request.Logf("  changes detected in %v, updating markdown...", project)
	if err := s.updateProjectDoc(ctx, request, renderer, project, modifications, now); err != nil {
		request.Logf("  failed to update %v.md: %v", project, err)
	} else {
		request.Logf("  successfully updated %v.md", project)
		result.Updated = true
	}
	entry.LastUpdated = &now
	next.Set(project, entry)
	return result
}

func (s *Service) updateProjectDoc(ctx context.Context, request *MonitorRequest, renderer *report.Renderer, project string, modifications scanner.ScanResult, now time.Time) error {
	docURL := url.Join(request.DocsDir, project+".md")
	if ok, _ := s.fs.Exists(ctx, docURL); !ok {
		return fmt.Errorf("markdown file not found for %v", project)
	}
	data, err := s.fs.DownloadWithURL(ctx, docURL)
	if err != nil {
		return err
	}
	section := renderer.Render(modifications, now)
	updated, err := docsync.Splice(string(data), activityRegion, section)
	if err != nil {
		return err
	}
	if updated == string(data) {
		return nil
	}
	return s.fs.Upload(ctx, docURL, file.DefaultFileOsMode, strings.NewReader(updated))
}

func (s *Service) listProjects(ctx context.Context, dir, prefix string) ([]string, error) {
	objects, err := s.fs.List(ctx, dir)
	if err != nil {
		return nil, err
	}
	var projects []string
	for _, object := range objects {
		if !object.IsDir() || url.Equals(url.Path(object.URL()), url.Path(dir)) {
			continue
		}
		if strings.HasPrefix(object.Name(), prefix) {
			projects = append(projects, object.Name())
		}
	}
	sort.Strings(projects)
	return projects, nil
}

// maybeRotate archives the monitor log when it approaches its size cap.
func (s *Service) maybeRotate(ctx context.Context, request *MonitorRequest) {
	if request.LogPath == "" {
		return
	}
	object, err := s.fs.Object(ctx, request.LogPath)
	if err != nil {
		return
	}
	if object.Size() < rotateThresholdMB*1024*1024 {
		return
	}
	logDir := request.RotationLogDir
	if logDir == "" {
		logDir, _ = url.Split(request.LogPath, file.Scheme)
	}
	manager := rotate.New(rotate.WithFS(s.fs))
	if _, err := manager.Rotate(ctx, &rotate.Request{LogDir: logDir, Logf: request.Logf}); err != nil {
		request.Logf("log rotation failed: %v", err)
	}
}
