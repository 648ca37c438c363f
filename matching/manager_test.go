package matching

import (
	"testing"

	"github.com/lkowalski/repopulse/matching/option"
)

func TestManager_IsExcluded_Table(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		options  []option.Option
		excluded bool
	}{
		{
			name:     "plain source file",
			path:     "src/app/main.go",
			excluded: false,
		},
		{
			name:     "vcs metadata at root",
			path:     ".git/objects/ab/cdef",
			excluded: true,
		},
		{
			name:     "dependency cache nested deep",
			path:     "web/client/node_modules/pkg/index.js",
			excluded: true,
		},
		{
			name:     "excluded dir segment beats allowed extension",
			path:     "build/report/summary.md",
			excluded: true,
		},
		{
			name:     "compiled artifact extension",
			path:     "pkg/mod/lib.so",
			excluded: true,
		},
		{
			name:     "log extension",
			path:     "var/output.log",
			excluded: true,
		},
		{
			name:     "editor swap file",
			path:     "src/main.go.swp",
			excluded: true,
		},
		{
			name:     "sibling of excluded dir name",
			path:     "app/modules/node_modules.js",
			excluded: false,
		},
		{
			name:     "windows style separators",
			path:     `app\node_modules\pkg\index.js`,
			excluded: true,
		},
		{
			name:     "custom directory set only",
			path:     "target/classes/App.class",
			options:  []option.Option{option.WithExcludedDirs("target")},
			excluded: true,
		},
		{
			name:     "custom extension without dot",
			path:     "out/prog.exe",
			options:  []option.Option{option.WithExcludedExtensions("exe")},
			excluded: true,
		},
		{
			name:     "custom sets do not inherit defaults",
			path:     "node_modules/pkg/index.js",
			options:  []option.Option{option.WithExcludedDirs("target")},
			excluded: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := New(tc.options...)
			if got := m.IsExcluded(tc.path); got != tc.excluded {
				t.Errorf("IsExcluded(%q) = %v, want %v", tc.path, got, tc.excluded)
			}
		})
	}
}

func TestManager_IsExcluded_Pure(t *testing.T) {
	m := New()
	path := "a/node_modules/b.txt"
	first := m.IsExcluded(path)
	for i := 0; i < 3; i++ {
		if got := m.IsExcluded(path); got != first {
			t.Fatalf("IsExcluded not stable across calls: %v then %v", first, got)
		}
	}
}
