package rmdupes

// FileRecord is the metadata for one regular file found during the walk.
// Identity is the path; records are plain data with no shared state.
type FileRecord struct {
	// Path is the path to the file as built from the scan root.
	Path string

	// Size is the size of the file in bytes.
	Size int64

	// Dev and Ino identify the file's device and inode. Two records with
	// equal (Dev, Ino) are hardlinks to the same content.
	Dev uint64
	Ino uint64
}

// SameInode reports whether two records refer to the same on-disk inode.
func (f *FileRecord) SameInode(other *FileRecord) bool {
	return f.Dev == other.Dev && f.Ino == other.Ino
}
