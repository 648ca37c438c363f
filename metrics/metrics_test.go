package metrics

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lkowalski/repopulse/scanner"
	"github.com/lkowalski/repopulse/state"
)

func TestSnapshot_BinaryRoundTrip(t *testing.T) {
	src := &Snapshot{
		CollectedAt:        time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		ProjectCount:       12,
		RecentCommits:      4,
		TotalFiles:         1543,
		ProjectsMonitored:  9,
		TotalModifications: 61,
		RecentChanges:      7,
		TotalWorkflows:     5,
		ActiveWorkflows:    3,
		TotalScripts:       8,
	}
	data, err := src.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	dest := &Snapshot{}
	if err := dest.Unmarshal(data); err != nil {
		t.Fatal(err)
	}
	if !dest.CollectedAt.Equal(src.CollectedAt) {
		t.Errorf("collected at: expected %v, got %v", src.CollectedAt, dest.CollectedAt)
	}
	dest.CollectedAt = src.CollectedAt
	if *dest != *src {
		t.Errorf("expected %+v, got %+v", src, dest)
	}
}

func TestHistory_AppendAndLast(t *testing.T) {
	ctx := context.Background()
	history, err := OpenHistory(filepath.Join(t.TempDir(), "metrics.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer history.Close()
	if err := history.EnsureSchema(ctx); err != nil {
		t.Fatal(err)
	}

	base := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		snapshot := &Snapshot{
			CollectedAt:  base.Add(time.Duration(i) * time.Hour),
			ProjectCount: 10 + i,
			TotalFiles:   1000 + i,
		}
		if _, err := history.Append(ctx, snapshot); err != nil {
			t.Fatal(err)
		}
	}

	last, err := history.Last(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(last) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(last))
	}
	if last[0].ProjectCount != 13 || last[1].ProjectCount != 12 {
		t.Errorf("expected newest first, got %d, %d", last[0].ProjectCount, last[1].ProjectCount)
	}

	pruned, err := history.Prune(ctx, base.Add(2*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if pruned != 2 {
		t.Errorf("expected 2 pruned rows, got %d", pruned)
	}
}

func TestArrow(t *testing.T) {
	testCases := []struct {
		description string
		current     int
		previous    int
		expect      string
	}{
		{description: "growth", current: 5, previous: 3, expect: trendUp},
		{description: "decline", current: 3, previous: 5, expect: trendDown},
		{description: "steady", current: 5, previous: 5, expect: trendSteady},
	}
	for _, testCase := range testCases {
		if actual := Arrow(testCase.current, testCase.previous); actual != testCase.expect {
			t.Errorf("%v: expected %v, got %v", testCase.description, testCase.expect, actual)
		}
	}
}

func TestTrends_NoHistory(t *testing.T) {
	trends := Trends(&Snapshot{ProjectCount: 3}, nil)
	for key, arrow := range trends {
		if arrow != trendNone {
			t.Errorf("%v: expected placeholder, got %v", key, arrow)
		}
	}
}

func TestSummary(t *testing.T) {
	snapshot := &Snapshot{
		ProjectCount:    3,
		RecentChanges:   2,
		TotalFiles:      120,
		TotalWorkflows:  4,
		ActiveWorkflows: 3,
		TotalScripts:    6,
	}
	expect := `**Metrics Collection Summary**

- Projects monitored: 3
- Recent changes (24h): 2
- Total files: 120

**Repository Statistics:**
- Workflows: 3/4 active
- Scripts: 6`
	if actual := Summary(snapshot); actual != expect {
		t.Errorf("expected:\n%v\ngot:\n%v", expect, actual)
	}
}

func TestCollector_Collect(t *testing.T) {
	ctx := context.Background()
	projectsDir := t.TempDir()
	for _, name := range []string{"PROJECT_alpha", "PROJECT_beta", "archive"} {
		if err := os.Mkdir(filepath.Join(projectsDir, name), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	repoDir := t.TempDir()
	workflowDir := filepath.Join(repoDir, ".github", "workflows")
	if err := os.MkdirAll(workflowDir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"monitor.yml", "metrics.yaml", "old.yml.disabled"} {
		if err := os.WriteFile(filepath.Join(workflowDir, name), []byte("name: x\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	scriptsDir := filepath.Join(repoDir, "scripts")
	if err := os.Mkdir(scriptsDir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"rotate.sh", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(scriptsDir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	now := time.Now()
	stateURL := filepath.Join(t.TempDir(), "monitor_state.json")
	store := state.NewStore(stateURL)
	store.Set("PROJECT_alpha", &state.ProjectState{
		Fingerprint: "abc",
		LastChecked: now,
		Modifications: scanner.ScanResult{
			{Path: "main.go", ModTime: now.Add(-time.Hour), Size: 10},
			{Path: "old.go", ModTime: now.Add(-72 * time.Hour), Size: 20},
		},
	})
	if err := store.Save(ctx); err != nil {
		t.Fatal(err)
	}

	collector := New()
	snapshot, err := collector.Collect(ctx, &Request{
		ProjectsDir: projectsDir,
		RepoDir:     repoDir,
		StateURL:    stateURL,
	})
	if err != nil {
		t.Fatal(err)
	}
	if snapshot.ProjectCount != 2 {
		t.Errorf("expected 2 projects, got %d", snapshot.ProjectCount)
	}
	if snapshot.ProjectsMonitored != 1 {
		t.Errorf("expected 1 monitored project, got %d", snapshot.ProjectsMonitored)
	}
	if snapshot.TotalModifications != 2 {
		t.Errorf("expected 2 modifications, got %d", snapshot.TotalModifications)
	}
	if snapshot.RecentChanges != 1 {
		t.Errorf("expected 1 recent change, got %d", snapshot.RecentChanges)
	}
	if snapshot.TotalWorkflows != 3 || snapshot.ActiveWorkflows != 2 {
		t.Errorf("expected 2/3 workflows, got %d/%d", snapshot.ActiveWorkflows, snapshot.TotalWorkflows)
	}
	if snapshot.TotalScripts != 1 {
		t.Errorf("expected 1 script, got %d", snapshot.TotalScripts)
	}
	if snapshot.TotalFiles == 0 {
		t.Error("expected repository files to be counted")
	}
}
