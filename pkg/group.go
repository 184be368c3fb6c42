package rmdupes

import "sort"

// ContentGroup represents one unique file content: the digest shared by its
// members, the file chosen to be kept, and the duplicates slated for removal.
type ContentGroup struct {
	// Digest is the hex content hash shared by every member. Immutable
	// once the group is created.
	Digest string

	// Keeper is the file retained after resolution. Before Reorder runs
	// it is provisional: the first file encountered with this content.
	Keeper FileRecord

	// Duplicates are the remaining members, in encounter order. Every
	// duplicate shares Digest's content and is distinct from Keeper.
	Duplicates []FileRecord

	// FileSize is the byte size shared by all members.
	FileSize int64
}

// NewContentGroup creates a group with file as its sole member and
// provisional keeper.
func NewContentGroup(digest string, file FileRecord) *ContentGroup {
	return &ContentGroup{
		Digest:   digest,
		Keeper:   file,
		FileSize: file.Size,
	}
}

// Append adds a file to the group's duplicates. The caller must only supply
// files whose content digest equals the group's Digest.
func (g *ContentGroup) Append(file FileRecord) {
	g.Duplicates = append(g.Duplicates, file)
}

// Reorder selects the member with the shortest path as the keeper; ties go to
// the earliest-encountered member. The remaining members become the
// duplicates, still in encounter order.
func (g *ContentGroup) Reorder() {
	if len(g.Duplicates) == 0 {
		return
	}

	members := make([]FileRecord, 0, len(g.Duplicates)+1)
	members = append(members, g.Keeper)
	members = append(members, g.Duplicates...)

	// Stable sort keeps encounter order among equal-length paths, so the
	// first-seen member wins ties.
	sort.SliceStable(members, func(i, j int) bool {
		return len(members[i].Path) < len(members[j].Path)
	})

	g.Keeper = members[0]
	g.Duplicates = members[1:]
}

// RedundantFileCount returns the number of removable files in the group.
func (g *ContentGroup) RedundantFileCount() int {
	return len(g.Duplicates)
}

// RedundancySize returns the total bytes freed by removing the group's
// duplicates.
func (g *ContentGroup) RedundancySize() int64 {
	return g.FileSize * int64(len(g.Duplicates))
}
