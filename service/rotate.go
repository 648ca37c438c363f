package service

import (
	"context"
	"fmt"

	"github.com/lkowalski/repopulse/rotate"
)

// Rotate archives oversized logs and prunes expired archives.
func (s *Service) Rotate(ctx context.Context, request *RotateRequest) (*RotateResponse, error) {
	manager := rotate.New(rotate.WithFS(s.fs))
	report, err := manager.Rotate(ctx, &rotate.Request{
		LogDir:     request.LogDir,
		ArchiveDir: request.ArchiveDir,
		ReportURL:  request.ReportURL,
		Policies:   request.Policies,
		Logf:       request.Logf,
	})
	if err != nil {
		return nil, fmt.Errorf("log rotation failed: %w", err)
	}
	return &RotateResponse{Report: report}, nil
}
