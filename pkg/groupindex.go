package rmdupes

import (
	"strings"

	zcsl "github.com/mattkeenan/zerocopyskiplist"
)

// groupRef wraps a ContentGroup pointer so the group stays mutable in place
// while the skiplist stores its items by value.
type groupRef struct {
	group *ContentGroup
}

// Group returns the referenced content group.
func (r *groupRef) Group() *ContentGroup {
	return r.group
}

// groupIndex is a digest-ordered index of content groups. Keeping the groups
// in a skiplist keyed by digest gives O(log n) lookup while files stream in
// from the walk, and a stable digest-sorted iteration order for reports.
type groupIndex struct {
	skiplist *zcsl.ZeroCopySkiplist[groupRef, string, string]
	count    int
}

// newGroupIndex creates an empty index.
func newGroupIndex(maxLevels int) *groupIndex {
	if maxLevels < 8 {
		maxLevels = 16 // reasonable default
	}

	// Key extractor function - the digest hex string orders the index
	getKeyFromItem := func(ref *groupRef) string {
		return ref.group.Digest
	}

	// Size function; groups are never serialized through the skiplist
	getItemSize := func(ref *groupRef) int {
		return 0
	}

	cmpKey := func(a, b string) int {
		return strings.Compare(a, b)
	}

	skiplist := zcsl.MakeZeroCopySkiplist[groupRef, string, string](
		maxLevels,
		getKeyFromItem,
		getItemSize,
		cmpKey,
	)

	return &groupIndex{skiplist: skiplist}
}

// Insert adds a group with the specified context
func (gi *groupIndex) Insert(group *ContentGroup, context string) bool {
	ref := groupRef{group: group}
	if gi.skiplist.Insert(&ref, context) {
		gi.count++
		return true
	}
	return false
}

// Find returns the group for a digest, or nil if absent
func (gi *groupIndex) Find(digest string) *ContentGroup {
	itemPtr, _ := gi.skiplist.Find(digest)
	if itemPtr != nil {
		ref := itemPtr.Item()
		return ref.Group()
	}
	return nil
}

// Delete removes the group for a digest
func (gi *groupIndex) Delete(digest string) bool {
	if gi.skiplist.Delete(digest) {
		gi.count--
		return true
	}
	return false
}

// Len returns the number of indexed groups
func (gi *groupIndex) Len() int {
	return gi.count
}

// ForEach iterates through all groups in digest order with a callback
func (gi *groupIndex) ForEach(callback func(*ContentGroup, string) bool) {
	for current := gi.skiplist.First(); current != nil; current = current.Next() {
		context := current.Context()
		ref := current.Item()
		group := ref.Group()
		if group != nil {
			if !callback(group, context) {
				break
			}
		}
	}
}
