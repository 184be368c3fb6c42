// Package rmdupes finds and removes duplicate files in a directory tree by
// content, keeping exactly one copy per unique content: the file with the
// shortest path.
//
// # Core API
//
// The main entry point is ContentRegistry, which groups the files under a
// root directory by content digest:
//
//	reg := rmdupes.NewContentRegistry("/path/to/dir", cfg)
//	if err := reg.Scan(nil); err != nil { ... }
//	reg.PruneSingles()
//	if err := reg.Reorder(); err != nil { ... }
//
// A resolved registry can either render a report:
//
//	reg.Render(os.Stdout)
//
// or delete the duplicates, keeping the shortest-named file of each group:
//
//	err := reg.RemoveDuplicates(rmdupes.OSDeleter{})
//
// The phases are ordered: Scan, then PruneSingles, then Reorder, then either
// Render/WriteReportFile or RemoveDuplicates. Out-of-order calls fail.
//
// # Configuration
//
// Behavior is controlled by an ini config (hash algorithm, worker count, hash
// buffer size, hardlink handling) loaded with LoadConfig, and by the global
// verbose switches:
//
//	rmdupes.SetVerboseLevel(2)
//	rmdupes.SetDebugFlags("walk,hash")
package rmdupes
