package rmdupes

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
)

var globalVerboseLevel int
var debugFlags map[string]bool

// SetVerboseLevel sets the global verbose level
func SetVerboseLevel(level int) {
	globalVerboseLevel = level
}

// GetVerboseLevel returns the current verbose level
func GetVerboseLevel() int {
	return globalVerboseLevel
}

// VerboseLog logs a message at the specified verbose level
func VerboseLog(level int, format string, args ...interface{}) {
	if globalVerboseLevel >= level {
		fmt.Fprintf(os.Stderr, "[VERBOSE-%d] ", level)
		fmt.Fprintf(os.Stderr, format, args...)
		if !strings.HasSuffix(format, "\n") {
			fmt.Fprintf(os.Stderr, "\n")
		}
	}
}

// SetDebugFlags sets the debug flags from a comma-separated string
// Supports both simple flags ("walk,hash") and key:value format ("walk:true,hash:false")
func SetDebugFlags(flagsStr string) {
	debugFlags = make(map[string]bool)
	if flagsStr == "" {
		return
	}

	for _, flag := range strings.Split(flagsStr, ",") {
		flag = strings.TrimSpace(flag)
		if flag == "" {
			continue
		}

		parts := strings.SplitN(flag, ":", 2)
		flagName := strings.ToLower(parts[0])
		flagValue := true

		if len(parts) > 1 {
			switch strings.ToLower(parts[1]) {
			case "true", "1", "yes", "on":
				flagValue = true
			case "false", "0", "no", "off":
				flagValue = false
			default:
				flagValue = true
			}
		}

		debugFlags[flagName] = flagValue
	}
}

// IsDebugEnabled returns true if the specified debug flag is enabled
func IsDebugEnabled(flag string) bool {
	if debugFlags == nil {
		return false
	}
	return debugFlags[strings.ToLower(flag)]
}

// SetColorMode configures colored progress output: "always", "never", or
// "auto" (the fatih/color tty default).
func SetColorMode(mode string) {
	switch strings.ToLower(mode) {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	}
}

var bold = color.New(color.Bold)
var green = color.New(color.FgGreen)
var red = color.New(color.FgRed)

// Notifier writes timestamped progress lines for a run. All methods are
// gated on the global verbose level, so a level-0 run stays silent apart
// from the report itself.
type Notifier struct {
	w io.Writer
}

// NewNotifier creates a notifier writing to w.
func NewNotifier(w io.Writer) (n Notifier) {
	n.w = w
	return
}

// ScanningDirectory announces the root being scanned.
func (n Notifier) ScanningDirectory(directory string) {
	if globalVerboseLevel < 1 {
		return
	}
	bold.Fprintf(n.w, "%s scanning directory: %s\n", nowStr(), directory)
}

// CollectedFiles reports how many regular files the walk produced.
func (n Notifier) CollectedFiles(count int) {
	if globalVerboseLevel < 1 {
		return
	}
	fmt.Fprintf(n.w, "%s collected %d files\n", nowStr(), count)
}

// SkippedHardlink reports a record dropped because its inode was already seen.
func (n Notifier) SkippedHardlink(path string) {
	if globalVerboseLevel < 2 {
		return
	}
	fmt.Fprintf(n.w, "%s skipping hardlinked file [%s]\n", nowStr(), path)
}

// HashingFiles announces the fingerprinting pass.
func (n Notifier) HashingFiles(count, workers int) {
	if globalVerboseLevel < 2 {
		return
	}
	fmt.Fprintf(n.w, "%s hashing %d files with %d workers\n", nowStr(), count, workers)
}

// HashedFile reports a single completed digest.
func (n Notifier) HashedFile(path string) {
	if globalVerboseLevel < 3 {
		return
	}
	fmt.Fprintf(n.w, "%s   hashed file [%s]\n", nowStr(), path)
}

// PrunedSingles reports how many unique contents were dropped and how many
// duplicate groups remain.
func (n Notifier) PrunedSingles(pruned, remaining int) {
	if globalVerboseLevel < 1 {
		return
	}
	fmt.Fprintf(
		n.w,
		"%s ignoring %d unique contents (%d duplicate groups remaining)\n",
		nowStr(),
		pruned,
		remaining,
	)
}

// RemovingDuplicate reports a duplicate file about to be deleted.
func (n Notifier) RemovingDuplicate(size int64, path string) {
	if globalVerboseLevel < 1 {
		return
	}
	green.Fprintf(
		n.w,
		"%s removing duplicate file (size: %s) [%s]\n",
		nowStr(),
		humanSize(size),
		path,
	)
}

// RemoveFailed reports a deletion failure. Failures print regardless of
// verbose level; silently half-deleting a group would be worse than noise.
func (n Notifier) RemoveFailed(path string, err error) {
	red.Fprintf(n.w, "%s failed to remove [%s]: %v\n", nowStr(), path, err)
}

func nowStr() string {
	return time.Now().Format("2006-01-02 15:04:05")
}
