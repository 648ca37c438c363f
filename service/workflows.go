package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lkowalski/repopulse/workflow"
	"github.com/viant/afs/file"
)

// Init applies defaults
func (r *WorkflowsRequest) Init() {
	if r.Dir == "" {
		r.Dir = ".github/workflows"
	}
	if r.Logf == nil {
		r.Logf = func(format string, args ...any) {}
	}
}

// Workflows analyzes GitHub Actions workflow definitions and persists
// the analysis state and a human readable summary.
func (s *Service) Workflows(ctx context.Context, request *WorkflowsRequest) (*WorkflowsResponse, error) {
	request.Init()
	request.Logf("starting workflow analysis")

	analyzer := workflow.NewAnalyzer()
	workflows, err := analyzer.Analyze(ctx, request.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze workflows in %v: %w", request.Dir, err)
	}
	if len(workflows) == 0 {
		request.Logf("no workflows found in %v", request.Dir)
	} else {
		request.Logf("found %d workflows", len(workflows))
	}

	active := 0
	for _, item := range workflows {
		if item.Enabled {
			active++
		}
	}
	response := &WorkflowsResponse{
		State: &WorkflowState{
			Timestamp:     time.Now(),
			WorkflowCount: len(workflows),
			ActiveCount:   active,
			Workflows:     workflows,
		},
		Summary: workflow.Summary(workflows),
	}

	if request.StateURL != "" {
		data, err := json.MarshalIndent(response.State, "", "  ")
		if err != nil {
			return nil, err
		}
		if err := s.fs.Upload(ctx, request.StateURL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("failed to save workflow state: %w", err)
		}
		request.Logf("state saved to %v", request.StateURL)
	}
	if request.SummaryURL != "" {
		if err := s.fs.Upload(ctx, request.SummaryURL, file.DefaultFileOsMode, strings.NewReader(response.Summary)); err != nil {
			request.Logf("error saving summary: %v", err)
		}
	}
	return response, nil
}
