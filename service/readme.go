package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lkowalski/repopulse/docsync"
	"github.com/lkowalski/repopulse/gitlog"
	"github.com/lkowalski/repopulse/metrics"
	"github.com/viant/afs/file"
)

const defaultReadme = `# 🤖 Project Automation

> GitHub Actions automation repository

<!-- AUTO-GENERATED:BADGES:START -->
<!-- AUTO-GENERATED:BADGES:END -->

## 📊 Workflow Status

<!-- AUTO-GENERATED:STATUS:START -->
<!-- AUTO-GENERATED:STATUS:END -->

## 📈 Metrics

<!-- AUTO-GENERATED:METRICS:START -->
<!-- AUTO-GENERATED:METRICS:END -->

## 📝 Recent Activity

<!-- AUTO-GENERATED:ACTIVITY:START -->
<!-- AUTO-GENERATED:ACTIVITY:END -->

---

*This README is automatically updated by GitHub Actions*
`

// readmeRegions are spliced in order; anchors place a missing region in
// a hand-written README.
var readmeRegions = []docsync.Region{
	{Name: "BADGES", InsertBefore: "## 🎯 Purpose", AllowInsert: true},
	{Name: "STATUS", InsertBefore: "## 🚀 Active Workflows", AllowInsert: true},
	{Name: "METRICS", InsertBefore: "## 📊 Monitoring Dashboard", AllowInsert: true},
	{Name: "ACTIVITY", InsertBefore: "## 🔄 Workflow Status", AllowInsert: true},
}

const footerPrefix = "*Last automated update:"

// Init applies defaults
func (r *ReadmeRequest) Init() {
	if r.ReadmeURL == "" {
		r.ReadmeURL = "README.md"
	}
	if r.RepoDir == "" {
		r.RepoDir = "."
	}
	if r.CommitLimit == 0 {
		r.CommitLimit = 5
	}
	if r.Logf == nil {
		r.Logf = func(format string, args ...any) {}
	}
}

// Readme regenerates the auto-generated README sections from the
// workflow state, the metrics cache and recent git history.
func (s *Service) Readme(ctx context.Context, request *ReadmeRequest) (*ReadmeResponse, error) {
	request.Init()
	request.Logf("starting readme generation")

	document, created, err := s.loadReadme(ctx, request.ReadmeURL)
	if err != nil {
		return nil, err
	}

	workflowState := &WorkflowState{}
	if request.StateURL != "" {
		if err := s.loadJSON(ctx, request.StateURL, workflowState); err != nil {
			request.Logf("error loading workflow state: %v", err)
		}
	}
	if len(workflowState.Workflows) == 0 && !request.Force {
		return nil, fmt.Errorf("no workflow data found, run workflow analysis first")
	}

	snapshot := &metrics.Snapshot{}
	if request.CacheURL != "" {
		if err := s.loadJSON(ctx, request.CacheURL, snapshot); err != nil {
			request.Logf("error loading metrics cache: %v", err)
		}
	}
	previous := s.previousSnapshot(ctx, request)
	now := time.Now()

	sections := map[string]string{
		"BADGES":   renderBadges(workflowState, snapshot, now),
		"STATUS":   renderWorkflowTable(workflowState),
		"METRICS":  renderMetricsSection(snapshot, previous),
		"ACTIVITY": s.renderRecentActivity(ctx, request),
	}
	response := &ReadmeResponse{}
	original := document
	for _, region := range readmeRegions {
		spliced, err := docsync.Splice(document, region, sections[region.Name])
		if err != nil {
			request.Logf("error updating %v section: %v", region.Name, err)
			continue
		}
		document = spliced
		response.Sections = append(response.Sections, region.Name)
	}
	document = replaceFooter(document, now)

	if !created && document == original {
		request.Logf("readme already up to date")
		return response, nil
	}
	if err := s.fs.Upload(ctx, request.ReadmeURL, file.DefaultFileOsMode, strings.NewReader(document)); err != nil {
		return nil, fmt.Errorf("failed to write readme: %w", err)
	}
	response.Updated = true
	request.Logf("readme successfully updated")
	return response, nil
}

func (s *Service) loadReadme(ctx context.Context, URL string) (string, bool, error) {
	if ok, _ := s.fs.Exists(ctx, URL); !ok {
		return defaultReadme, true, nil
	}
	data, err := s.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return "", false, err
	}
	return string(data), false, nil
}

func (s *Service) loadJSON(ctx context.Context, URL string, target any) error {
	if ok, _ := s.fs.Exists(ctx, URL); !ok {
		return nil
	}
	data, err := s.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, target)
}

func (s *Service) previousSnapshot(ctx context.Context, request *ReadmeRequest) *metrics.Snapshot {
	if request.HistoryDSN == "" {
		return nil
	}
	history, err := metrics.OpenHistory(request.HistoryDSN)
	if err != nil {
		request.Logf("error opening metrics history: %v", err)
		return nil
	}
	defer history.Close()
	if err := history.EnsureSchema(ctx); err != nil {
		return nil
	}
	last, err := history.Last(ctx, 2)
	if err != nil || len(last) < 2 {
		return nil
	}
	return last[1]
}

func renderBadges(workflowState *WorkflowState, snapshot *metrics.Snapshot, now time.Time) string {
	total := workflowState.WorkflowCount
	active := workflowState.ActiveCount
	var statusColor, statusText string
	switch {
	case total == 0:
		statusColor, statusText = "lightgrey", "no_workflows"
	case active == total:
		statusColor, statusText = "green", fmt.Sprintf("%d_active", active)
	case active == 0:
		statusColor, statusText = "red", fmt.Sprintf("%d_disabled", total)
	default:
		statusColor, statusText = "yellow", fmt.Sprintf("%d%%2F%d_active", active, total)
	}
	badges := []string{
		fmt.Sprintf("![Workflow Status](https://img.shields.io/badge/workflows-%s-%s?style=for-the-badge)", statusText, statusColor),
		fmt.Sprintf("![Last Update](https://img.shields.io/badge/updated-%s-blue?style=for-the-badge)", now.Format("2006--01--02_15:04")),
	}
	if snapshot.ProjectCount > 0 {
		badges = append(badges, fmt.Sprintf("![Projects](https://img.shields.io/badge/projects-%d_monitored-green?style=for-the-badge)", snapshot.ProjectCount))
	}
	if active > 0 {
		healthPercent := active * 100 / total
		healthColor := "red"
		switch {
		case healthPercent >= 75:
			healthColor = "green"
		case healthPercent >= 50:
			healthColor = "orange"
		}
		badges = append(badges, fmt.Sprintf("![Automation Health](https://img.shields.io/badge/health-%d%%25-%s?style=for-the-badge)", healthPercent, healthColor))
	}
	return strings.Join(badges, "\n")
}

func renderWorkflowTable(workflowState *WorkflowState) string {
	if len(workflowState.Workflows) == 0 {
		return "No workflows found in `.github/workflows/`"
	}
	lines := []string{
		"| Workflow | Status | Schedule | Actions |",
		"|----------|--------|----------|---------|",
	}
	disabled := 0
	for _, item := range workflowState.Workflows {
		status := "🔴 Disabled"
		actions := fmt.Sprintf("[Enable](.github/workflows/%s)", item.Filename)
		if item.Enabled {
			status = "🟢 Active"
			actions = fmt.Sprintf("[View Runs](../../actions/workflows/%s)", item.Filename)
		} else {
			disabled++
		}
		schedule := item.Schedule
		if schedule == "" {
			schedule = "Manual only"
		}
		if schedule != "Manual only" {
			schedule = "`" + schedule + "`"
		}
		lines = append(lines, fmt.Sprintf("| **%s** | %s | %s | %s |", item.Name, status, schedule, actions))
	}
	if disabled > 0 {
		plural := ""
		if disabled != 1 {
			plural = "s"
		}
		lines = append(lines, "",
			"### ⚠️ Attention Required",
			fmt.Sprintf("- **%d workflow%s currently disabled** - [View disabled workflows](.github/workflows/)", disabled, plural))
	}
	return strings.Join(lines, "\n")
}

func renderMetricsSection(snapshot, previous *metrics.Snapshot) string {
	trends := metrics.Trends(snapshot, previous)
	lines := []string{
		"### 🎯 Project Statistics",
		"| Metric | Value | Trend |",
		"|--------|-------|-------|",
		fmt.Sprintf("| **Active Projects** | %d | %s |", snapshot.ProjectCount, trends["projects"]),
	}
	if snapshot.TotalFiles > 0 {
		lines = append(lines, fmt.Sprintf("| **Files Tracked** | %d | %s |", snapshot.TotalFiles, trends["files"]))
	}
	if snapshot.RecentChanges > 0 {
		lines = append(lines, fmt.Sprintf("| **Recent Changes (24h)** | %d | %s |", snapshot.RecentChanges, trends["changes"]))
	}
	if snapshot.RecentCommits > 0 {
		lines = append(lines, fmt.Sprintf("| **Recent Commits (24h)** | %d | %s |", snapshot.RecentCommits, trends["commits"]))
	}
	return strings.Join(lines, "\n")
}

func (s *Service) renderRecentActivity(ctx context.Context, request *ReadmeRequest) string {
	commits, err := gitlog.NewReader(request.RepoDir).Recent(ctx, request.CommitLimit)
	if err != nil {
		request.Logf("error getting commits: %v", err)
	}
	if len(commits) == 0 {
		return "No recent commits found."
	}
	lines := []string{
		"### 🔄 Recent Commits",
		"| Time | Hash | Message | Author |",
		"|------|------|---------|--------|",
	}
	for _, commit := range commits {
		lines = append(lines, fmt.Sprintf("| %s | `%s` | %s | %s |", commit.TimeAgo, commit.Hash, commit.Message, commit.Author))
	}
	return strings.Join(lines, "\n")
}

// replaceFooter rewrites the trailing update timestamp line, appending
// one when absent.
func replaceFooter(document string, now time.Time) string {
	footer := fmt.Sprintf("%s %s*", footerPrefix, now.Format("2006-01-02 15:04:05 UTC"))
	idx := strings.Index(document, footerPrefix)
	if idx == -1 {
		return document + "\n---\n\n" + footer
	}
	end := strings.IndexByte(document[idx:], '\n')
	if end == -1 {
		return document[:idx] + footer
	}
	return document[:idx] + footer + document[idx+end:]
}
