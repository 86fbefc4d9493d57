// Package logbuf keeps the daemon's most recent log lines in memory so they
// can be read back over the API without a log file.
package logbuf

import (
	"bytes"
	"sync"
)

// maxLineLen caps a stored line; longer lines are cut and marked.
const maxLineLen = 4 << 10

// Ring holds the last N complete lines written to it. It is safe for
// concurrent use and is meant to sit behind a slog handler via
// io.MultiWriter.
type Ring struct {
	mu      sync.Mutex
	lines   []string
	start   int
	count   int
	partial []byte
}

// New creates a ring that keeps the last n lines. n below 1 is treated as 1.
func New(n int) *Ring {
	if n < 1 {
		n = 1
	}
	return &Ring{lines: make([]string, n)}
}

// Write stores every complete line in p. A trailing fragment is held until
// its newline arrives; bytes past the line cap are dropped.
func (r *Ring) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := p
	if len(r.partial) > 0 {
		data = append(r.partial, p...)
		r.partial = nil
	}
	for {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			break
		}
		r.push(data[:i])
		data = data[i+1:]
	}
	if len(data) > 0 {
		// One byte past the cap is enough for push to mark the cut.
		if len(data) > maxLineLen+1 {
			data = data[:maxLineLen+1]
		}
		r.partial = append([]byte(nil), data...)
	}
	return len(p), nil
}

func (r *Ring) push(line []byte) {
	line = bytes.TrimRight(line, "\r")
	s := string(line)
	if len(line) > maxLineLen {
		s = string(line[:maxLineLen]) + "…"
	}

	size := len(r.lines)
	if r.count < size {
		r.lines[(r.start+r.count)%size] = s
		r.count++
		return
	}
	r.lines[r.start] = s
	r.start = (r.start + 1) % size
}

// Last returns up to n of the newest lines, oldest first. n <= 0 returns
// everything held.
func (r *Ring) Last(n int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n <= 0 || n > r.count {
		n = r.count
	}
	out := make([]string, n)
	size := len(r.lines)
	first := r.start + r.count - n
	for i := range n {
		out[i] = r.lines[(first+i)%size]
	}
	return out
}

// Len returns the number of stored lines.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}
