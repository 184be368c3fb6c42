package rmdupes

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// failingDeleter refuses to remove one specific path.
type failingDeleter struct {
	failPath string
	removed  []string
}

func (d *failingDeleter) Remove(path string) error {
	if path == d.failPath {
		return fmt.Errorf("simulated failure")
	}
	d.removed = append(d.removed, path)
	return os.Remove(path)
}

func TestRemoveDuplicates_KeepsOnlyKeeper(t *testing.T) {
	root := t.TempDir()
	kept := writeTestFile(t, root, "a/x.txt", "hello")
	dup1 := writeTestFile(t, root, "b/yy.txt", "hello")
	dup2 := writeTestFile(t, root, "c/zzz.txt", "hello")
	single := writeTestFile(t, root, "d/unique.txt", "world")

	registry := resolvedRegistry(t, root, newTestConfig(t))
	if err := registry.RemoveDuplicates(OSDeleter{}); err != nil {
		t.Fatalf("RemoveDuplicates failed: %v", err)
	}

	for _, gone := range []string{dup1, dup2} {
		if _, err := os.Stat(gone); !os.IsNotExist(err) {
			t.Errorf("Expected duplicate %s to be removed", gone)
		}
	}

	content, err := os.ReadFile(kept)
	if err != nil {
		t.Fatalf("Keeper missing after removal: %v", err)
	}
	if string(content) != "hello" {
		t.Errorf("Keeper content changed: %q", content)
	}

	// Singleton groups were pruned and never touched
	if _, err := os.Stat(single); err != nil {
		t.Errorf("Unique file was removed: %v", err)
	}

	if registry.Phase() != PhaseConsumed {
		t.Errorf("Expected phase %s, got %s", PhaseConsumed, registry.Phase())
	}
}

func TestRemoveDuplicates_FailureDoesNotStopOthers(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "k.txt", "hello")
	failing := writeTestFile(t, root, "fails/here.txt", "hello")
	other := writeTestFile(t, root, "other/dup.txt", "hello")

	registry := resolvedRegistry(t, root, newTestConfig(t))
	deleter := &failingDeleter{failPath: failing}

	err := registry.RemoveDuplicates(deleter)
	if err == nil {
		t.Fatal("Expected accumulated error for failed removal")
	}
	if !strings.Contains(err.Error(), failing) {
		t.Errorf("Expected error to name the failed path %s, got: %v", failing, err)
	}

	// The failure left its file behind but the other duplicate still went
	if _, statErr := os.Stat(failing); statErr != nil {
		t.Errorf("Failed duplicate should remain on disk: %v", statErr)
	}
	if _, statErr := os.Stat(other); !os.IsNotExist(statErr) {
		t.Error("Expected removal to continue past the failure")
	}
}

func TestRemoveDuplicates_DryRunRemovesNothing(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "a/x.txt", "hello")
	writeTestFile(t, root, "b/yy.txt", "hello")

	registry := resolvedRegistry(t, root, newTestConfig(t))
	if err := registry.RemoveDuplicates(DryRunDeleter{}); err != nil {
		t.Fatalf("Dry run failed: %v", err)
	}

	for _, name := range []string{"a/x.txt", "b/yy.txt"} {
		if _, err := os.Stat(filepath.Join(root, name)); err != nil {
			t.Errorf("Dry run removed %s: %v", name, err)
		}
	}
}

func TestRemoveDuplicates_MissingFileReported(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "k.txt", "hello")
	vanishing := writeTestFile(t, root, "gone/dup.txt", "hello")

	registry := resolvedRegistry(t, root, newTestConfig(t))

	// File vanishes between scan and removal
	if err := os.Remove(vanishing); err != nil {
		t.Fatalf("Failed to remove file: %v", err)
	}

	if err := registry.RemoveDuplicates(OSDeleter{}); err == nil {
		t.Error("Expected error for duplicate that vanished before removal")
	}
}
