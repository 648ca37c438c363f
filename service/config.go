package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lkowalski/repopulse/rotate"
	"github.com/viant/scy/cred/secret"
	"gopkg.in/yaml.v3"
)

// Config defines monitored locations and collaborator settings.
type Config struct {
	ProjectsDir   string         `yaml:"projectsDir"`
	ProjectPrefix string         `yaml:"projectPrefix"`
	DocsDir       string         `yaml:"docsDir"`
	StatePath     string         `yaml:"statePath"`
	LogPath       string         `yaml:"logPath"`
	Scan          ScanConfig     `yaml:"scan"`
	WorkflowDir   string         `yaml:"workflowDir"`
	ReadmePath    string         `yaml:"readmePath"`
	History       HistoryConfig  `yaml:"history"`
	Rotation      RotationConfig `yaml:"rotation"`
}

// ScanConfig tunes the modification scanner and its derived outputs.
type ScanConfig struct {
	Limit          int      `yaml:"limit"`
	TimeoutSeconds int      `yaml:"timeoutSeconds"`
	Depth          int      `yaml:"fingerprintDepth"`
	MaxPathLen     int      `yaml:"maxPathLen"`
	ExcludeDirs    []string `yaml:"excludeDirs"`
	ExcludeExts    []string `yaml:"excludeExts"`
}

// HistoryConfig defines the metrics history database.
type HistoryConfig struct {
	DSN    string `yaml:"dsn"`
	Secret string `yaml:"secret,omitempty"`
}

// RotationConfig defines log rotation settings.
type RotationConfig struct {
	LogDir     string                   `yaml:"logDir"`
	ArchiveDir string                   `yaml:"archiveDir"`
	ReportPath string                   `yaml:"reportPath"`
	Policies   map[string]rotate.Policy `yaml:"policies"`
}

// LoadConfig reads a YAML config and expands user paths and secrets.
func LoadConfig(path string) (*Config, error) {
	path, err := expandUserPath(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	for _, location := range []*string{
		&cfg.ProjectsDir, &cfg.DocsDir, &cfg.StatePath, &cfg.LogPath,
		&cfg.WorkflowDir, &cfg.ReadmePath, &cfg.History.DSN,
		&cfg.Rotation.LogDir, &cfg.Rotation.ArchiveDir, &cfg.Rotation.ReportPath,
	} {
		expanded, err := expandUserPath(*location)
		if err != nil {
			return nil, err
		}
		*location = expanded
	}
	if cfg.History.Secret != "" {
		expanded, err := ExpandDSNWithSecret(context.Background(), cfg.History.DSN, cfg.History.Secret)
		if err != nil {
			return nil, err
		}
		cfg.History.DSN = expanded
	}
	return &cfg, nil
}

func expandUserPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" || trimmed[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	if trimmed == "~" {
		return home, nil
	}
	if !strings.HasPrefix(trimmed, "~/") {
		return "", fmt.Errorf("config: unsupported ~user path: %s", path)
	}
	return filepath.Join(home, trimmed[2:]), nil
}

// ExpandDSNWithSecret loads a secret and expands placeholders in the DSN.
func ExpandDSNWithSecret(ctx context.Context, dsn, secretRef string) (string, error) {
	secretRef = strings.TrimSpace(secretRef)
	if secretRef == "" {
		return dsn, nil
	}
	if strings.TrimSpace(dsn) == "" {
		return "", fmt.Errorf("secret %q provided but dsn is empty", secretRef)
	}
	svc := secret.New()
	sec, err := svc.Lookup(ctx, secret.Resource(secretRef))
	if err != nil {
		return "", err
	}
	return sec.Expand(dsn), nil
}
