package workflow

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name         string
		filename     string
		data         string
		wantName     string
		wantEnabled  bool
		wantSchedule string
		wantTriggers []string
	}{
		{
			name:     "scheduled with manual dispatch",
			filename: "project-monitor.yml",
			data: `name: Project Monitor
on:
  schedule:
    - cron: '0 */2 * * *'
  workflow_dispatch:
jobs: {}
`,
			wantName:     "Project Monitor",
			wantEnabled:  true,
			wantSchedule: "Every 2 hours",
			wantTriggers: []string{"schedule", "manual"},
		},
		{
			name:     "disabled workflow",
			filename: "metrics.yml.disabled",
			data: `name: Metrics
on:
  push:
`,
			wantName:     "Metrics",
			wantEnabled:  false,
			wantSchedule: ManualOnly,
			wantTriggers: []string{"push"},
		},
		{
			name:     "name falls back to filename",
			filename: "readme-generator.yml",
			data: `on:
  pull_request:
`,
			wantName:     "Readme Generator",
			wantEnabled:  true,
			wantSchedule: ManualOnly,
			wantTriggers: []string{"PR"},
		},
		{
			name:         "scalar trigger",
			filename:     "ci.yml",
			data:         "name: CI\non: push\njobs: {}\n",
			wantName:     "CI",
			wantEnabled:  true,
			wantSchedule: ManualOnly,
			wantTriggers: []string{"push"},
		},
		{
			name:         "sequence trigger",
			filename:     "checks.yml",
			data:         "name: Checks\non: [push, pull_request]\n",
			wantName:     "Checks",
			wantEnabled:  true,
			wantSchedule: ManualOnly,
			wantTriggers: []string{"push", "PR"},
		},
		{
			name:         "unknown cron reported raw",
			filename:     "odd.yml",
			data:         "name: Odd\non:\n  schedule:\n    - cron: '7 3 * * 2'\n",
			wantName:     "Odd",
			wantEnabled:  true,
			wantSchedule: "Cron: 7 3 * * 2",
			wantTriggers: []string{"schedule"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			wf := parse(tc.filename, []byte(tc.data))
			if wf.Name != tc.wantName {
				t.Errorf("name: got %q, want %q", wf.Name, tc.wantName)
			}
			if wf.Enabled != tc.wantEnabled {
				t.Errorf("enabled: got %v, want %v", wf.Enabled, tc.wantEnabled)
			}
			if wf.Schedule != tc.wantSchedule {
				t.Errorf("schedule: got %q, want %q", wf.Schedule, tc.wantSchedule)
			}
			if len(wf.Triggers) != len(tc.wantTriggers) {
				t.Fatalf("triggers: got %v, want %v", wf.Triggers, tc.wantTriggers)
			}
			for i := range tc.wantTriggers {
				if wf.Triggers[i] != tc.wantTriggers[i] {
					t.Errorf("triggers: got %v, want %v", wf.Triggers, tc.wantTriggers)
				}
			}
		})
	}
}

func TestAnalyzer_Analyze(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"b-monitor.yml":    "name: Monitor\non:\n  schedule:\n    - cron: '0 * * * *'\n",
		"a-metrics.yml":    "name: Metrics\non: push\n",
		"old.yml.disabled": "name: Old\non: push\n",
		"notes.txt":        "not a workflow",
		".hidden.yml":      "name: Hidden\n",
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(data), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	workflows, err := NewAnalyzer().Analyze(context.Background(), dir)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(workflows) != 3 {
		t.Fatalf("expected 3 workflows, got %d: %+v", len(workflows), workflows)
	}
	// Enabled first, then by name; disabled last.
	want := []string{"Metrics", "Monitor", "Old"}
	for i, name := range want {
		if workflows[i].Name != name {
			t.Errorf("position %d: got %q, want %q", i, workflows[i].Name, name)
		}
	}
	if workflows[2].Enabled {
		t.Error("disabled workflow reported enabled")
	}
	if workflows[2].Filename != "old.yml" {
		t.Errorf("disabled suffix not stripped: %q", workflows[2].Filename)
	}
}

func TestAnalyzer_Analyze_MissingDir(t *testing.T) {
	workflows, err := NewAnalyzer().Analyze(context.Background(), filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("missing dir must not fail: %v", err)
	}
	if len(workflows) != 0 {
		t.Errorf("expected no workflows, got %d", len(workflows))
	}
}

func TestHumanizeCron(t *testing.T) {
	tests := []struct {
		cron string
		want string
	}{
		{"", ManualOnly},
		{"0 * * * *", "Hourly"},
		{"0 0 * * *", "Daily at midnight"},
		{"30 4 1 * *", "Cron: 30 4 1 * *"},
	}
	for _, tc := range tests {
		if got := humanizeCron(tc.cron); got != tc.want {
			t.Errorf("humanizeCron(%q) = %q, want %q", tc.cron, got, tc.want)
		}
	}
}
