package state

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/lkowalski/repopulse/scanner"
)

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	url := filepath.Join(t.TempDir(), "state.json")

	checked := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	updated := checked.Add(time.Minute)

	store := NewStore(url)
	store.Set("PROJECT_alpha", &ProjectState{
		Fingerprint: "abc123",
		LastChecked: checked,
		LastUpdated: &updated,
		Modifications: scanner.ScanResult{
			{Path: "main.go", ModTime: checked, Size: 42},
		},
	})
	store.Set("PROJECT_beta", &ProjectState{
		Fingerprint: "def456",
		LastChecked: checked,
	})
	if err := store.Save(ctx); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded := NewStore(url)
	if err := reloaded.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if reloaded.Size() != 2 {
		t.Fatalf("expected 2 projects, got %d", reloaded.Size())
	}

	alpha, ok := reloaded.Get("PROJECT_alpha")
	if !ok {
		t.Fatal("PROJECT_alpha missing after reload")
	}
	if alpha.Fingerprint != "abc123" {
		t.Errorf("fingerprint mismatch: %q", alpha.Fingerprint)
	}
	if alpha.LastUpdated == nil || !alpha.LastUpdated.Equal(updated) {
		t.Errorf("last_updated mismatch: %v", alpha.LastUpdated)
	}
	if len(alpha.Modifications) != 1 || alpha.Modifications[0].Path != "main.go" {
		t.Errorf("modifications mismatch: %+v", alpha.Modifications)
	}

	beta, ok := reloaded.Get("PROJECT_beta")
	if !ok {
		t.Fatal("PROJECT_beta missing after reload")
	}
	if beta.LastUpdated != nil {
		t.Errorf("expected absent last_updated, got %v", beta.LastUpdated)
	}
}

func TestStore_LoadMissing(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nope.json"))
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("missing state file must not fail: %v", err)
	}
	if store.Size() != 0 {
		t.Errorf("expected empty store, got %d entries", store.Size())
	}
}

func TestStore_ProjectsSorted(t *testing.T) {
	store := NewStore("")
	for _, name := range []string{"PROJECT_c", "PROJECT_a", "PROJECT_b"} {
		store.Set(name, &ProjectState{})
	}
	got := store.Projects()
	want := []string{"PROJECT_a", "PROJECT_b", "PROJECT_c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("projects not sorted: %v", got)
		}
	}
}
