package provision

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

const progressBarWidth = 30

// ProgressWriter copies downloads to dst and draws a single updating status
// line for them. Redraws happen only when the shown value changes.
type ProgressWriter struct {
	dst          io.Writer
	statusWriter io.Writer
	label        string
	total        int64

	mu       sync.Mutex
	written  int64
	lastDraw string
	finished bool
}

// NewProgressWriter creates a new progress writer. With an unknown total
// (0 or less) only the downloaded size is shown.
func NewProgressWriter(dst io.Writer, statusWriter io.Writer, label string, total int64) *ProgressWriter {
	return &ProgressWriter{
		dst:          dst,
		statusWriter: statusWriter,
		label:        label,
		total:        total,
	}
}

func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n, err := pw.dst.Write(p)

	pw.mu.Lock()
	defer pw.mu.Unlock()
	pw.written += int64(n)
	pw.draw()

	return n, err
}

// Written returns the number of bytes written so far.
func (pw *ProgressWriter) Written() int64 {
	pw.mu.Lock()
	defer pw.mu.Unlock()
	return pw.written
}

// Finish ends the status line with a summary. Later calls do nothing.
func (pw *ProgressWriter) Finish() {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	if pw.finished {
		return
	}
	pw.finished = true
	fmt.Fprintf(pw.statusWriter, "\r  %s: %s done\n", pw.label, formatSize(pw.written))
}

func (pw *ProgressWriter) draw() {
	var line string
	if pw.total > 0 {
		pct := min(pw.written*100/pw.total, 100)
		filled := int(pct) * progressBarWidth / 100
		bar := strings.Repeat("#", filled) + strings.Repeat(".", progressBarWidth-filled)
		line = fmt.Sprintf("  %s [%s] %3d%% of %s", pw.label, bar, pct, formatSize(pw.total))
	} else {
		line = fmt.Sprintf("  %s %s downloaded", pw.label, formatSize(pw.written))
	}

	if line == pw.lastDraw {
		return
	}
	pw.lastDraw = line
	fmt.Fprint(pw.statusWriter, "\r"+line)
}

func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit && exp < 2; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMG"[exp])
}
