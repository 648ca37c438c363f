// Package service exposes reusable operations for project monitoring,
// workflow analysis, metrics collection, README generation and log
// rotation.
package service

import (
	"github.com/viant/afs"
)

// Option configures the Service.
type Option func(*Service)

// WithFS sets the file system service.
func WithFS(fs afs.Service) Option {
	return func(s *Service) { s.fs = fs }
}

// Service exposes the monitoring operations.
type Service struct {
	fs afs.Service
}

// NewService creates a new Service.
func NewService(opts ...Option) (*Service, error) {
	s := &Service{}
	for _, opt := range opts {
		opt(s)
	}
	if s.fs == nil {
		s.fs = afs.New()
	}
	return s, nil
}
