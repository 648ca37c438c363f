package scanner

import (
	"time"
)

// Record captures one eligible file observed during a scan.
// Immutable once produced; ordering key is ModTime descending.
type Record struct {
	Path    string    `json:"relative_path"`
	ModTime time.Time `json:"modified_at"`
	Size    int64     `json:"size_bytes"`
}

// ScanResult is the ordered, bounded list of most-recently-modified
// eligible files for one project.
type ScanResult []Record

// Since counts records modified after the given cutoff.
func (r ScanResult) Since(cutoff time.Time) int {
	count := 0
	for _, rec := range r {
		if rec.ModTime.After(cutoff) {
			count++
		}
	}
	return count
}
