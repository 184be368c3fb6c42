package rmdupes

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"syscall"

	"github.com/google/vectorio"
)

// maxWritevIovecs caps one writev call; Linux IOV_MAX is 1024.
const maxWritevIovecs = 1024

// reportLines renders the registry into one byte slice per output line.
// Groups come out in digest order, so the report is reproducible run-to-run
// on an unchanged tree. Format, one line per member, tab separated:
//
//	#<digest>\t<path>   the kept file
//	 <digest>\t<path>   a duplicate to remove
//
// followed by two comment lines summarizing removable file count and bytes.
func (r *ContentRegistry) reportLines() [][]byte {
	var lines [][]byte
	r.index.ForEach(func(group *ContentGroup, _ string) bool {
		lines = append(lines, fmt.Appendf(nil, "#%s\t%s\n", group.Digest, group.Keeper.Path))
		for _, dup := range group.Duplicates {
			lines = append(lines, fmt.Appendf(nil, " %s\t%s\n", group.Digest, dup.Path))
		}
		return true
	})
	lines = append(lines, fmt.Appendf(nil, "#\t%d files can be deleted freeing\n", r.RedundantFileCount()))
	lines = append(lines, fmt.Appendf(nil, "#\t%d bytes of space\n", r.RedundancySize()))
	return lines
}

// Render writes the duplicate report to w. It never touches the filesystem
// and may be called repeatedly; the registry must be reordered first, since
// the keeper of each group is undefined before then.
func (r *ContentRegistry) Render(w io.Writer) error {
	if r.phase != PhaseReordered {
		return fmt.Errorf("render called in phase %s, want %s", r.phase, PhaseReordered)
	}

	for _, line := range r.reportLines() {
		if _, err := w.Write(line); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}
	return nil
}

// WriteReportFile writes the duplicate report to outputPath with writev,
// one iovec per line, chunked to respect IOV_MAX.
func (r *ContentRegistry) WriteReportFile(outputPath string) error {
	if r.phase != PhaseReordered {
		return fmt.Errorf("write report called in phase %s, want %s", r.phase, PhaseReordered)
	}

	lines := r.reportLines()
	iovecs := make([]syscall.Iovec, 0, len(lines))
	totalSize := 0
	for i := range lines {
		iovecs = append(iovecs, syscall.Iovec{
			Base: &lines[i][0],
			Len:  uint64(len(lines[i])),
		})
		totalSize += len(lines[i])
	}

	file, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create report file %s: %w", outputPath, err)
	}
	defer file.Close()

	totalWritten := 0
	for offset := 0; offset < len(iovecs); offset += maxWritevIovecs {
		end := offset + maxWritevIovecs
		if end > len(iovecs) {
			end = len(iovecs)
		}

		// Slice without copying to keep the iovec bases stable
		chunk := iovecs[offset:end]

		nw, err := vectorio.WritevRaw(uintptr(file.Fd()), chunk)
		if err != nil {
			return fmt.Errorf("failed to write report chunk to %s: %w", outputPath, err)
		}
		totalWritten += nw
	}

	if totalWritten != totalSize {
		return fmt.Errorf("report write incomplete: wrote %d bytes, expected %d", totalWritten, totalSize)
	}

	if err := file.Sync(); err != nil {
		return fmt.Errorf("failed to sync report file %s: %w", outputPath, err)
	}

	// The line buffers backing the iovecs must stay live until the last
	// writev returns
	runtime.KeepAlive(lines)

	return nil
}
