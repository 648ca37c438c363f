// Package workflow reads GitHub Actions workflow definitions and reports
// their name, schedule, trigger set and enabled state.
package workflow

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/url"
	"gopkg.in/yaml.v3"
)

// DisabledSuffix marks a workflow file as inert.
const DisabledSuffix = ".disabled"

// Workflow describes one workflow definition file.
type Workflow struct {
	Filename    string    `json:"filename"`
	Name        string    `json:"name"`
	Enabled     bool      `json:"enabled"`
	Schedule    string    `json:"schedule"`
	Triggers    []string  `json:"triggers"`
	HasSchedule bool      `json:"has_schedule"`
	HasManual   bool      `json:"has_manual"`
	Size        int64     `json:"file_size"`
	ModTime     time.Time `json:"last_modified"`
}

// Analyzer reads workflow files from a directory.
type Analyzer struct {
	fs afs.Service
}

// NewAnalyzer creates a workflow analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{fs: afs.New()}
}

// Analyze reads every workflow definition under dir, sorted by enabled
// state then name. A missing directory yields an empty slice.
func (a *Analyzer) Analyze(ctx context.Context, dir string) ([]Workflow, error) {
	if ok, _ := a.fs.Exists(ctx, dir); !ok {
		return nil, nil
	}
	objects, err := a.fs.List(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows %s: %w", dir, err)
	}
	var workflows []Workflow
	for _, object := range objects {
		name := object.Name()
		if object.IsDir() || strings.HasPrefix(name, ".") || !isWorkflowFile(name) {
			continue
		}
		data, err := a.fs.DownloadWithURL(ctx, url.Join(dir, name))
		if err != nil {
			// Unreadable definition is a per-item failure.
			continue
		}
		wf := parse(name, data)
		wf.Size = object.Size()
		wf.ModTime = object.ModTime()
		workflows = append(workflows, wf)
	}
	sort.SliceStable(workflows, func(i, j int) bool {
		if workflows[i].Enabled != workflows[j].Enabled {
			return workflows[i].Enabled
		}
		return workflows[i].Name < workflows[j].Name
	})
	return workflows, nil
}

func isWorkflowFile(name string) bool {
	base := strings.TrimSuffix(name, DisabledSuffix)
	return strings.HasSuffix(base, ".yml") || strings.HasSuffix(base, ".yaml")
}

// parse extracts workflow metadata from a definition file.
func parse(filename string, data []byte) Workflow {
	enabled := !strings.HasSuffix(filename, DisabledSuffix)
	actual := strings.TrimSuffix(filename, DisabledSuffix)

	wf := Workflow{
		Filename: actual,
		Enabled:  enabled,
		Schedule: ManualOnly,
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err == nil && len(root.Content) > 0 {
		doc := root.Content[0]
		if name := mapEntry(doc, "name"); name != nil {
			wf.Name = strings.TrimSpace(name.Value)
		}
		// YAML 1.1 resolves a bare "on" scalar as a boolean; matching on
		// the node's literal value sidesteps that entirely.
		if on := mapEntry(doc, "on"); on != nil {
			wf.Schedule = scheduleOf(on)
			wf.Triggers = triggersOf(on, wf.Schedule != ManualOnly)
		}
	} else {
		wf.Name = scanLine(data, "name:")
		if cron := scanLine(data, "cron:"); cron != "" {
			wf.Schedule = humanizeCron(strings.Trim(cron, `"'`))
		}
		wf.Triggers = scanTriggers(data, wf.Schedule != ManualOnly)
	}

	if wf.Name == "" {
		wf.Name = titleFromFilename(actual)
	}
	wf.HasSchedule = wf.Schedule != ManualOnly
	for _, trigger := range wf.Triggers {
		if trigger == "manual" {
			wf.HasManual = true
		}
	}
	return wf
}

// mapEntry returns the value node for key inside a mapping node.
func mapEntry(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

// scheduleOf reads on.schedule[0].cron and maps it to a phrase.
func scheduleOf(on *yaml.Node) string {
	schedule := mapEntry(on, "schedule")
	if schedule == nil || schedule.Kind != yaml.SequenceNode || len(schedule.Content) == 0 {
		return ManualOnly
	}
	cron := mapEntry(schedule.Content[0], "cron")
	if cron == nil {
		return ManualOnly
	}
	return humanizeCron(cron.Value)
}

// triggersOf derives the trigger set from the "on" node, which may be a
// scalar, a sequence or a mapping.
func triggersOf(on *yaml.Node, hasSchedule bool) []string {
	present := map[string]bool{}
	switch on.Kind {
	case yaml.ScalarNode:
		present[on.Value] = true
	case yaml.SequenceNode:
		for _, item := range on.Content {
			present[item.Value] = true
		}
	case yaml.MappingNode:
		for i := 0; i < len(on.Content); i += 2 {
			present[on.Content[i].Value] = true
		}
	}
	var triggers []string
	if hasSchedule {
		triggers = append(triggers, "schedule")
	}
	if present["push"] {
		triggers = append(triggers, "push")
	}
	if present["pull_request"] {
		triggers = append(triggers, "PR")
	}
	if present["workflow_dispatch"] {
		triggers = append(triggers, "manual")
	}
	return triggers
}

// scanLine finds the first line starting with prefix and returns its value.
func scanLine(data []byte, prefix string) string {
	for _, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, prefix) {
			return strings.Trim(strings.TrimSpace(strings.TrimPrefix(trimmed, prefix)), `"'`)
		}
	}
	return ""
}

func scanTriggers(data []byte, hasSchedule bool) []string {
	content := string(data)
	var triggers []string
	if hasSchedule {
		triggers = append(triggers, "schedule")
	}
	if strings.Contains(content, "push:") {
		triggers = append(triggers, "push")
	}
	if strings.Contains(content, "pull_request:") {
		triggers = append(triggers, "PR")
	}
	if strings.Contains(content, "workflow_dispatch:") {
		triggers = append(triggers, "manual")
	}
	return triggers
}

// titleFromFilename turns "project-monitor.yml" into "Project Monitor".
func titleFromFilename(name string) string {
	name = strings.TrimSuffix(strings.TrimSuffix(name, ".yaml"), ".yml")
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || r == '_'
	})
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

// Summary renders the analyzer result as a short status report.
func Summary(workflows []Workflow) string {
	active := 0
	for _, wf := range workflows {
		if wf.Enabled {
			active++
		}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "**Total Workflows**: %d\n", len(workflows))
	fmt.Fprintf(&b, "**Active**: %d\n", active)
	fmt.Fprintf(&b, "**Disabled**: %d\n", len(workflows)-active)
	if len(workflows) == 0 {
		return b.String()
	}
	b.WriteString("\n**Workflow Details:**\n")
	for _, wf := range workflows {
		status := "❌"
		if wf.Enabled {
			status = "✅"
		}
		triggers := "none"
		if len(wf.Triggers) > 0 {
			triggers = strings.Join(wf.Triggers, ", ")
		}
		fmt.Fprintf(&b, "- %s **%s** (%s)\n", status, wf.Name, triggers)
	}
	return b.String()
}
