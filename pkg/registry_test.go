package rmdupes

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("Failed to load default config: %v", err)
	}
	return cfg
}

func scannedRegistry(t *testing.T, root string, cfg *Config) *ContentRegistry {
	t.Helper()
	registry := NewContentRegistry(root, cfg)
	if err := registry.Scan(nil); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	return registry
}

func resolvedRegistry(t *testing.T, root string, cfg *Config) *ContentRegistry {
	t.Helper()
	registry := scannedRegistry(t, root, cfg)
	if err := registry.PruneSingles(); err != nil {
		t.Fatalf("PruneSingles failed: %v", err)
	}
	if err := registry.Reorder(); err != nil {
		t.Fatalf("Reorder failed: %v", err)
	}
	return registry
}

func TestContentRegistry_ScanGroupsByContent(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "a/x.txt", "hello")
	writeTestFile(t, root, "b/yy.txt", "hello")
	writeTestFile(t, root, "c/z.txt", "world")

	registry := scannedRegistry(t, root, newTestConfig(t))

	if registry.Phase() != PhaseScanned {
		t.Errorf("Expected phase %s, got %s", PhaseScanned, registry.Phase())
	}
	if registry.ScannedFileCount() != 3 {
		t.Errorf("Expected 3 scanned files, got %d", registry.ScannedFileCount())
	}
	// Two distinct contents before pruning
	if registry.GroupCount() != 2 {
		t.Errorf("Expected 2 groups before prune, got %d", registry.GroupCount())
	}
}

func TestContentRegistry_PruneDropsSingles(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "a/x.txt", "hello")
	writeTestFile(t, root, "b/yy.txt", "hello")
	writeTestFile(t, root, "c/z.txt", "world")

	registry := scannedRegistry(t, root, newTestConfig(t))
	if err := registry.PruneSingles(); err != nil {
		t.Fatalf("PruneSingles failed: %v", err)
	}

	if registry.GroupCount() != 1 {
		t.Fatalf("Expected 1 group after prune, got %d", registry.GroupCount())
	}
	registry.ForEachGroup(func(group *ContentGroup) bool {
		if len(group.Duplicates) < 1 {
			t.Errorf("Group %s survived prune with no duplicates", group.Digest)
		}
		return true
	})
	if registry.RedundantFileCount() != 1 {
		t.Errorf("Expected 1 redundant file, got %d", registry.RedundantFileCount())
	}
	if registry.RedundancySize() != int64(len("hello")) {
		t.Errorf("Expected %d redundant bytes, got %d", len("hello"), registry.RedundancySize())
	}
}

func TestContentRegistry_ReorderShortestKeeper(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "a/x.txt", "hello")
	writeTestFile(t, root, "b/yy.txt", "hello")

	registry := resolvedRegistry(t, root, newTestConfig(t))

	registry.ForEachGroup(func(group *ContentGroup) bool {
		if filepath.Base(group.Keeper.Path) != "x.txt" {
			t.Errorf("Expected keeper x.txt (shortest path), got %s", group.Keeper.Path)
		}
		for _, dup := range group.Duplicates {
			if len(group.Keeper.Path) > len(dup.Path) {
				t.Errorf("Keeper %q longer than duplicate %q", group.Keeper.Path, dup.Path)
			}
		}
		return true
	})
}

func TestContentRegistry_PhaseEnforcement(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "a.txt", "content")
	cfg := newTestConfig(t)

	registry := NewContentRegistry(root, cfg)
	if err := registry.PruneSingles(); err == nil {
		t.Error("Expected error pruning before scan")
	}
	if err := registry.Reorder(); err == nil {
		t.Error("Expected error reordering before scan")
	}
	if err := registry.Render(os.Stdout); err == nil {
		t.Error("Expected error rendering before reorder")
	}
	if err := registry.RemoveDuplicates(DryRunDeleter{}); err == nil {
		t.Error("Expected error removing before reorder")
	}

	if err := registry.Scan(nil); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if err := registry.Scan(nil); err == nil {
		t.Error("Expected error on second scan")
	}
	if err := registry.Reorder(); err == nil {
		t.Error("Expected error reordering before prune")
	}
}

func TestContentRegistry_ParallelAndSerialAgree(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "a/one.txt", "shared content")
	writeTestFile(t, root, "b/two.txt", "shared content")
	writeTestFile(t, root, "c/three.txt", "shared content")
	writeTestFile(t, root, "d/unique.txt", "unique content")

	serialCfg := newTestConfig(t)
	serialCfg.Set("performance", "hash_workers", "1")
	serial := resolvedRegistry(t, root, serialCfg)

	parallelCfg := newTestConfig(t)
	parallelCfg.Set("performance", "hash_workers", "8")
	parallel := resolvedRegistry(t, root, parallelCfg)

	if serial.GroupCount() != parallel.GroupCount() {
		t.Errorf("Group counts differ: serial %d, parallel %d",
			serial.GroupCount(), parallel.GroupCount())
	}

	var serialKeeper, parallelKeeper string
	serial.ForEachGroup(func(g *ContentGroup) bool { serialKeeper = g.Keeper.Path; return false })
	parallel.ForEachGroup(func(g *ContentGroup) bool { parallelKeeper = g.Keeper.Path; return false })
	if serialKeeper != parallelKeeper {
		t.Errorf("Keeper differs between serial (%s) and parallel (%s) scans",
			serialKeeper, parallelKeeper)
	}
}

func TestContentRegistry_SkipHardlinks(t *testing.T) {
	root := t.TempDir()
	original := writeTestFile(t, root, "a/original.txt", "linked content")
	if err := os.Link(original, filepath.Join(root, "a/hardlink.txt")); err != nil {
		t.Skipf("hardlinks not supported here: %v", err)
	}

	// Default: a hardlink is an ordinary duplicate
	plain := scannedRegistry(t, root, newTestConfig(t))
	if plain.ScannedFileCount() != 2 {
		t.Errorf("Expected 2 files without hardlink skip, got %d", plain.ScannedFileCount())
	}

	cfg := newTestConfig(t)
	cfg.Set("scan", "skip_hardlinks", "true")
	skipping := scannedRegistry(t, root, cfg)
	if skipping.ScannedFileCount() != 1 {
		t.Errorf("Expected 1 file with hardlink skip, got %d", skipping.ScannedFileCount())
	}
}

func TestContentRegistry_ScanAbortsOnUnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("running as root; permission errors cannot be provoked")
	}

	root := t.TempDir()
	writeTestFile(t, root, "fine.txt", "fine")
	locked := writeTestFile(t, root, "locked.txt", "locked")
	if err := os.Chmod(locked, 0000); err != nil {
		t.Fatalf("Failed to chmod file: %v", err)
	}
	defer os.Chmod(locked, 0644)

	registry := NewContentRegistry(root, newTestConfig(t))
	if err := registry.Scan(nil); err == nil {
		t.Error("Expected scan to abort on unreadable file")
	}
}
