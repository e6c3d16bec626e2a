package backup

import (
	"path/filepath"
	"testing"
)

func TestManager_Prune(t *testing.T) {
	tmpDir := t.TempDir()
	manager := NewManagerWithDir(filepath.Join(tmpDir, "backups"), "v1.0.0")
	input := writeManifest(t, tmpDir, "brew git\n")

	for i := 0; i < 5; i++ {
		if _, err := manager.Create(input, ""); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	result, err := manager.Prune(2)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if result.Kept != 2 {
		t.Errorf("Prune() Kept = %v, want 2", result.Kept)
	}
	if len(result.Deleted) != 3 {
		t.Errorf("Prune() Deleted count = %v, want 3", len(result.Deleted))
	}

	backups, err := manager.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(backups) != 2 {
		t.Errorf("List() after prune = %v, want 2", len(backups))
	}
}

func TestManager_PruneKeepsAll(t *testing.T) {
	tmpDir := t.TempDir()
	manager := NewManagerWithDir(filepath.Join(tmpDir, "backups"), "v1.0.0")
	input := writeManifest(t, tmpDir, "brew git\n")

	if _, err := manager.Create(input, ""); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	result, err := manager.Prune(DefaultKeepCount)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if result.Kept != 1 || len(result.Deleted) != 0 {
		t.Errorf("Prune() = %+v, want nothing deleted", result)
	}
}

func TestManager_PruneNegative(t *testing.T) {
	manager := NewManagerWithDir(t.TempDir(), "v1.0.0")
	if _, err := manager.Prune(-1); err == nil {
		t.Error("Prune(-1) expected error")
	}
}
