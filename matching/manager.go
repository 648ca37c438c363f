package matching

import (
	"path/filepath"
	"strings"

	"github.com/lkowalski/repopulse/matching/option"
)

// Manager decides whether a filesystem path is eligible for tracking.
// It is a pure predicate: no I/O, no side effects.
type Manager struct {
	options *option.Options
}

// New creates a new exclusion manager with the given options
func New(opts ...option.Option) *Manager {
	return &Manager{options: option.NewOptions(opts...)}
}

// IsExcluded checks if a path should be excluded based on the configured sets
func (m *Manager) IsExcluded(location string) bool {
	// Normalize path to use forward slashes
	path := filepath.ToSlash(location)

	for _, segment := range strings.Split(path, "/") {
		if segment == "" {
			continue
		}
		if m.options.Directories[segment] {
			return true
		}
	}

	if ext := strings.ToLower(filepath.Ext(path)); ext != "" {
		if m.options.Extensions[ext] {
			return true
		}
	}
	return false
}
