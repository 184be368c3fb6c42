package rmdupes

import (
	"encoding/hex"
	"fmt"
	"sync"
)

// ============================================================================
// TYPE DEFINITIONS
// ============================================================================

// ContentRegistry maps each distinct content digest found under a root
// directory to its ContentGroup. A registry is built once per run and moves
// strictly forward through its phases:
//
//	empty -> scanned -> pruned -> reordered -> consumed
//
// Scan populates it, PruneSingles drops contents that appear only once,
// Reorder picks each group's keeper, and then the registry is either rendered
// (repeatable, no filesystem change) or consumed by RemoveDuplicates. Methods
// called out of order fail rather than operate on undefined state.
type ContentRegistry struct {
	rootDir string
	config  *Config
	notify  Notifier
	index   *groupIndex
	phase   string

	// scannedFiles is the number of files fingerprinted, kept for
	// progress output and tests.
	scannedFiles int
}

// hashResult carries one worker's output back to the merge phase.
type hashResult struct {
	digest []byte
	err    error
}

// NewContentRegistry creates an empty registry for one run over rootDir.
func NewContentRegistry(rootDir string, config *Config) *ContentRegistry {
	return &ContentRegistry{
		rootDir: rootDir,
		config:  config,
		notify:  NewNotifier(discardWriter{}),
		index:   newGroupIndex(16),
		phase:   PhaseEmpty,
	}
}

// SetNotifier routes progress output for this registry.
func (r *ContentRegistry) SetNotifier(n Notifier) {
	r.notify = n
}

// Phase returns the registry's current phase.
func (r *ContentRegistry) Phase() string {
	return r.phase
}

// GroupCount returns the number of content groups currently held.
func (r *ContentRegistry) GroupCount() int {
	return r.index.Len()
}

// ScannedFileCount returns the number of files fingerprinted by Scan.
func (r *ContentRegistry) ScannedFileCount() int {
	return r.scannedFiles
}

// ============================================================================
// SCAN PHASE
// ============================================================================

// Scan walks the root directory, fingerprints every regular non-symlink
// file, and groups the files by digest. The walk completes before any
// grouping decision is final, fingerprinting runs on a worker pool sized by
// the performance config, and results merge into the registry on this
// goroutine in walk order, so the first-encountered file of each content is
// the provisional keeper.
//
// Any traversal or read failure aborts the scan: a file that cannot be
// listed or hashed leaves its content class incompletely observed, which
// would make both the report and the deletion set unreliable. shutdownChan
// may be nil; when it closes, hashing stops between buffer reads and Scan
// returns an error.
func (r *ContentRegistry) Scan(shutdownChan <-chan struct{}) error {
	if r.phase != PhaseEmpty {
		return fmt.Errorf("scan called in phase %s, want %s", r.phase, PhaseEmpty)
	}

	algorithm, err := r.config.GetHashAlgorithm()
	if err != nil {
		return fmt.Errorf("failed to resolve hash algorithm: %w", err)
	}
	bufferSize, err := r.config.GetHashBufferSize()
	if err != nil {
		return fmt.Errorf("failed to resolve hash buffer size: %w", err)
	}
	workers := r.config.GetPerformanceConfig().HashWorkers
	if workers < 1 {
		workers = 1
	}
	skipHardlinks := r.config.GetScanConfig().SkipHardlinks

	r.notify.ScanningDirectory(r.rootDir)

	records, err := r.collectFiles(skipHardlinks)
	if err != nil {
		return err
	}
	r.notify.CollectedFiles(len(records))

	results, err := r.hashFiles(records, algorithm, bufferSize, workers, shutdownChan)
	if err != nil {
		return err
	}

	// Merge in walk order on this goroutine; the index is never touched
	// by more than one writer.
	for i := range records {
		digest := hex.EncodeToString(results[i].digest)
		if group := r.index.Find(digest); group != nil {
			group.Append(records[i])
		} else {
			r.index.Insert(NewContentGroup(digest, records[i]), ScanContext)
		}
	}

	r.scannedFiles = len(records)
	r.phase = PhaseScanned
	return nil
}

// collectFiles drains the walker into a slice, optionally dropping records
// whose (device, inode) pair was already seen.
func (r *ContentRegistry) collectFiles(skipHardlinks bool) ([]FileRecord, error) {
	type devIno struct {
		dev uint64
		ino uint64
	}

	walker := NewFileWalker(r.rootDir)
	var records []FileRecord
	var seen map[devIno]struct{}
	if skipHardlinks {
		seen = make(map[devIno]struct{})
	}

	for {
		record, ok, err := walker.Next()
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", r.rootDir, err)
		}
		if !ok {
			return records, nil
		}

		if skipHardlinks {
			key := devIno{dev: record.Dev, ino: record.Ino}
			if _, exists := seen[key]; exists {
				r.notify.SkippedHardlink(record.Path)
				continue
			}
			seen[key] = struct{}{}
		}

		records = append(records, record)
	}
}

// hashFiles fingerprints every record, in parallel when workers > 1. The
// result slice is indexed like records, so merge order never depends on
// worker scheduling. The first failure (in walk order) is returned after all
// workers finish.
func (r *ContentRegistry) hashFiles(records []FileRecord, algorithm *HashAlgorithm, bufferSize, workers int, shutdownChan <-chan struct{}) ([]hashResult, error) {
	results := make([]hashResult, len(records))
	r.notify.HashingFiles(len(records), workers)

	if workers == 1 || len(records) < 2 {
		for i := range records {
			results[i].digest, results[i].err = HashFileInterruptible(
				records[i].Path, algorithm, bufferSize, shutdownChan)
			if results[i].err != nil {
				return nil, fmt.Errorf("failed to fingerprint file %s: %w",
					records[i].Path, results[i].err)
			}
			r.notify.HashedFile(records[i].Path)
		}
		return results, nil
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i].digest, results[i].err = HashFileInterruptible(
					records[i].Path, algorithm, bufferSize, shutdownChan)
				if results[i].err == nil {
					r.notify.HashedFile(records[i].Path)
				}
			}
		}()
	}
	for i := range records {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for i := range results {
		if results[i].err != nil {
			return nil, fmt.Errorf("failed to fingerprint file %s: %w",
				records[i].Path, results[i].err)
		}
	}
	return results, nil
}

// ============================================================================
// PRUNE AND REORDER PHASES
// ============================================================================

// PruneSingles drops every group with no duplicates. Contents that appear
// exactly once in the tree carry no removable redundancy.
func (r *ContentRegistry) PruneSingles() error {
	if r.phase != PhaseScanned {
		return fmt.Errorf("prune called in phase %s, want %s", r.phase, PhaseScanned)
	}

	var singles []string
	r.index.ForEach(func(group *ContentGroup, _ string) bool {
		if len(group.Duplicates) == 0 {
			singles = append(singles, group.Digest)
		}
		return true
	})
	for _, digest := range singles {
		r.index.Delete(digest)
	}

	r.notify.PrunedSingles(len(singles), r.index.Len())
	r.phase = PhasePruned
	return nil
}

// Reorder runs the resolution policy on every remaining group: the member
// with the shortest path becomes the keeper, ties broken by walk order. Must
// run after PruneSingles and before any report or removal, since the keep
// decision has to exist before output is rendered or anything is deleted.
func (r *ContentRegistry) Reorder() error {
	if r.phase != PhasePruned {
		return fmt.Errorf("reorder called in phase %s, want %s", r.phase, PhasePruned)
	}

	r.index.ForEach(func(group *ContentGroup, _ string) bool {
		group.Reorder()
		return true
	})

	r.phase = PhaseReordered
	return nil
}

// ============================================================================
// REDUNDANCY STATISTICS
// ============================================================================

// RedundantFileCount returns the total count of removable duplicate files.
func (r *ContentRegistry) RedundantFileCount() int {
	total := 0
	r.index.ForEach(func(group *ContentGroup, _ string) bool {
		total += group.RedundantFileCount()
		return true
	})
	return total
}

// RedundancySize returns the total bytes freed by removing every duplicate.
func (r *ContentRegistry) RedundancySize() int64 {
	var total int64
	r.index.ForEach(func(group *ContentGroup, _ string) bool {
		total += group.RedundancySize()
		return true
	})
	return total
}

// ForEachGroup iterates the registry's groups in digest order.
func (r *ContentRegistry) ForEachGroup(callback func(*ContentGroup) bool) {
	r.index.ForEach(func(group *ContentGroup, _ string) bool {
		return callback(group)
	})
}

// discardWriter is the default notifier sink before SetNotifier is called.
type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) {
	return len(p), nil
}
