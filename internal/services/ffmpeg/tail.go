package ffmpeg

import (
	"strings"
	"sync"
)

// tailWriter retains the last maxLines lines written to it. ffmpeg's
// stderr is unbounded, so the full stream is never kept in memory.
type tailWriter struct {
	mu       sync.Mutex
	maxLines int
	lines    []string
	partial  strings.Builder
}

func newTailWriter(maxLines int) *tailWriter {
	if maxLines <= 0 {
		maxLines = 1
	}
	return &tailWriter{maxLines: maxLines}
}

func (w *tailWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, b := range p {
		if b == '\n' || b == '\r' {
			w.pushLocked()
			continue
		}
		w.partial.WriteByte(b)
	}
	return len(p), nil
}

func (w *tailWriter) pushLocked() {
	line := strings.TrimSpace(w.partial.String())
	w.partial.Reset()
	if line == "" {
		return
	}
	w.lines = append(w.lines, line)
	if len(w.lines) > w.maxLines {
		w.lines = w.lines[len(w.lines)-w.maxLines:]
	}
}

// Tail returns the retained lines joined with newlines, including any
// unterminated final line.
func (w *tailWriter) Tail() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	lines := w.lines
	if rest := strings.TrimSpace(w.partial.String()); rest != "" {
		lines = append(append([]string{}, lines...), rest)
		if len(lines) > w.maxLines {
			lines = lines[len(lines)-w.maxLines:]
		}
	}
	return strings.Join(lines, "\n")
}
