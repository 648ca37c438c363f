package option

import (
	"strings"
)

// Options provides exclusion configuration shared by the scanner and metrics walkers
type Options struct {

	// Directories contains directory names excluded wherever they appear in a path
	Directories map[string]bool

	// Extensions contains file extensions excluded (with leading dot)
	Extensions map[string]bool
}

// NewOptions creates a new Options instance with default values
func NewOptions(opts ...Option) *Options {
	options := &Options{
		Directories: map[string]bool{},
		Extensions:  map[string]bool{},
	}
	for _, opt := range opts {
		opt(options)
	}
	if len(options.Directories) == 0 && len(options.Extensions) == 0 {
		WithDefaultExclusions()(options)
	}
	return options
}

// Option is a function that modifies Options
type Option func(*Options)

// WithExcludedDirs adds directory names to exclude
func WithExcludedDirs(names ...string) Option {
	return func(o *Options) {
		for _, name := range names {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			o.Directories[name] = true
		}
	}
}

// WithExcludedExtensions adds file extensions to exclude
func WithExcludedExtensions(exts ...string) Option {
	return func(o *Options) {
		for _, ext := range exts {
			ext = strings.TrimSpace(ext)
			if ext == "" {
				continue
			}
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			o.Extensions[strings.ToLower(ext)] = true
		}
	}
}

// WithDefaultExclusions adds the default directory and extension sets
func WithDefaultExclusions() Option {
	return func(o *Options) {
		WithExcludedDirs(defaultDirectories()...)(o)
		WithExcludedExtensions(defaultExtensions()...)(o)
	}
}

// defaultDirectories returns commonly excluded directory names
func defaultDirectories() []string {
	return []string{
		".git",
		"node_modules",
		"__pycache__",
		".next",
		"dist",
		"build",
		".venv",
		"venv",
		".cache",
		".pytest_cache",
		"coverage",
		".nyc_output",
		".DS_Store",
	}
}

// defaultExtensions returns commonly excluded file extensions
func defaultExtensions() []string {
	return []string{
		".pyc",
		".pyo",
		".pyd",
		".so",
		".dll",
		".dylib",
		".log",
		".pid",
		".lock",
		".tmp",
		".swp",
		".swo",
	}
}
