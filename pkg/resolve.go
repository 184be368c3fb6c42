package rmdupes

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"
)

// Deleter abstracts the filesystem delete operation so dry runs and tests
// can prove that nothing is removed.
type Deleter interface {
	Remove(path string) error
}

// OSDeleter removes files from the real filesystem.
type OSDeleter struct{}

// Remove deletes the file at path.
func (OSDeleter) Remove(path string) error {
	return os.Remove(path)
}

// DryRunDeleter accepts every removal without touching the filesystem.
type DryRunDeleter struct{}

// Remove does nothing.
func (DryRunDeleter) Remove(string) error {
	return nil
}

// RemoveDuplicates deletes every duplicate of every group, leaving only the
// keepers. Each deletion is independent and irreversible; a failure is
// collected and reported but never stops the remaining removals, since a
// half-deleted group is still safe (the keeper is untouched and the failed
// duplicate simply survives). The registry is consumed: no report or second
// removal pass can follow.
//
// Returns the accumulated deletion failures, or nil if every removal
// succeeded.
func (r *ContentRegistry) RemoveDuplicates(deleter Deleter) error {
	if r.phase != PhaseReordered {
		return fmt.Errorf("remove duplicates called in phase %s, want %s", r.phase, PhaseReordered)
	}
	r.phase = PhaseConsumed

	var failures *multierror.Error
	r.index.ForEach(func(group *ContentGroup, _ string) bool {
		for _, dup := range group.Duplicates {
			r.notify.RemovingDuplicate(group.FileSize, dup.Path)
			if err := deleter.Remove(dup.Path); err != nil {
				r.notify.RemoveFailed(dup.Path, err)
				failures = multierror.Append(failures,
					fmt.Errorf("failed to remove duplicate %s: %w", dup.Path, err))
			}
		}
		return true
	})

	return failures.ErrorOrNil()
}
