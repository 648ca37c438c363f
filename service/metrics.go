package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lkowalski/repopulse/metrics"
	"github.com/viant/afs/file"
)

// Init applies defaults
func (r *MetricsRequest) Init() {
	if r.RepoDir == "" {
		r.RepoDir = "."
	}
	if r.Logf == nil {
		r.Logf = func(format string, args ...any) {}
	}
}

// Metrics collects a snapshot, persists the cache and summary files
// and appends the snapshot to the history database when configured.
func (s *Service) Metrics(ctx context.Context, request *MetricsRequest) (*MetricsResponse, error) {
	request.Init()
	request.Logf("starting metrics collection")

	collector := metrics.New(metrics.WithFS(s.fs))
	snapshot, err := collector.Collect(ctx, &metrics.Request{
		ProjectsDir:   request.ProjectsDir,
		ProjectPrefix: request.ProjectPrefix,
		RepoDir:       request.RepoDir,
		StateURL:      request.StateURL,
		Logf:          request.Logf,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to collect metrics: %w", err)
	}
	response := &MetricsResponse{Snapshot: snapshot, Summary: metrics.Summary(snapshot)}

	if request.CacheURL != "" {
		data, err := json.MarshalIndent(snapshot, "", "  ")
		if err != nil {
			return nil, err
		}
		if err := s.fs.Upload(ctx, request.CacheURL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("failed to save metrics cache: %w", err)
		}
		request.Logf("metrics saved to %v", request.CacheURL)
	}
	if request.SummaryURL != "" {
		if err := s.fs.Upload(ctx, request.SummaryURL, file.DefaultFileOsMode, strings.NewReader(response.Summary)); err != nil {
			request.Logf("error saving summary: %v", err)
		}
	}
	if request.HistoryDSN != "" {
		if err := s.appendHistory(ctx, request.HistoryDSN, snapshot); err != nil {
			request.Logf("error appending metrics history: %v", err)
		}
	}
	return response, nil
}

func (s *Service) appendHistory(ctx context.Context, dsn string, snapshot *metrics.Snapshot) error {
	history, err := metrics.OpenHistory(dsn)
	if err != nil {
		return err
	}
	defer history.Close()
	if err := history.EnsureSchema(ctx); err != nil {
		return err
	}
	_, err = history.Append(ctx, snapshot)
	return err
}
