// Package state persists per-project monitoring state between passes.
package state

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/file"

	"github.com/lkowalski/repopulse/scanner"
)

// ProjectState records what the previous pass observed for one project.
// Owned exclusively by the Store.
type ProjectState struct {
	Fingerprint   string             `json:"fingerprint"`
	LastChecked   time.Time          `json:"last_checked"`
	LastUpdated   *time.Time         `json:"last_updated,omitempty"`
	Modifications scanner.ScanResult `json:"modifications,omitempty"`
}

// Store holds the project state map and its on-disk JSON snapshot.
// The snapshot is read once at pass start and written once at pass end.
type Store struct {
	fs       afs.Service
	URL      string
	projects *Map[string, ProjectState]
}

// NewStore creates a store persisting to the given URL.
func NewStore(URL string) *Store {
	return &Store{
		fs:       afs.New(),
		URL:      URL,
		projects: NewMap[string, ProjectState](),
	}
}

// Load reads the persisted snapshot. A missing file yields an empty store.
func (s *Store) Load(ctx context.Context) error {
	if ok, _ := s.fs.Exists(ctx, s.URL); !ok {
		return nil
	}
	data, err := s.fs.DownloadWithURL(ctx, s.URL)
	if err != nil {
		return fmt.Errorf("failed to load state %s: %w", s.URL, err)
	}
	if err := s.projects.Load(data); err != nil {
		return fmt.Errorf("failed to parse state %s: %w", s.URL, err)
	}
	return nil
}

// Save writes the snapshot as a whole file.
func (s *Store) Save(ctx context.Context) error {
	data, err := s.projects.Data()
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	if err := s.fs.Upload(ctx, s.URL, file.DefaultFileOsMode, strings.NewReader(string(data))); err != nil {
		return fmt.Errorf("failed to save state %s: %w", s.URL, err)
	}
	return nil
}

// Get returns the state recorded for a project.
func (s *Store) Get(project string) (*ProjectState, bool) {
	return s.projects.Get(project)
}

// Set records the state for a project.
func (s *Store) Set(project string, st *ProjectState) {
	s.projects.Set(project, st)
}

// Delete removes a project from the store.
func (s *Store) Delete(project string) {
	s.projects.Delete(project)
}

// Projects returns tracked project names in ascending order.
func (s *Store) Projects() []string {
	return SortedKeys(s.projects)
}

// Size returns the number of tracked projects.
func (s *Store) Size() int {
	return s.projects.Size()
}
