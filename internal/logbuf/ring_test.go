package logbuf

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func TestRingKeepsCompleteLines(t *testing.T) {
	r := New(5)
	r.Write([]byte("line 1\nline 2\r\nline 3\n"))

	lines := r.Last(0)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "line 1" || lines[1] != "line 2" || lines[2] != "line 3" {
		t.Errorf("unexpected lines: %q", lines)
	}
}

func TestRingDropsOldest(t *testing.T) {
	r := New(3)
	r.Write([]byte("a\nb\nc\nd\ne\n"))

	lines := r.Last(0)
	if strings.Join(lines, ",") != "c,d,e" {
		t.Errorf("expected [c d e], got %v", lines)
	}
	if r.Len() != 3 {
		t.Errorf("Len() = %d, want 3", r.Len())
	}
}

func TestRingHoldsFragmentUntilNewline(t *testing.T) {
	r := New(5)
	r.Write([]byte("hel"))
	if r.Len() != 0 {
		t.Fatalf("fragment stored early: %v", r.Last(0))
	}
	r.Write([]byte("lo world\nsecond"))
	r.Write([]byte(" line\n"))

	lines := r.Last(0)
	if len(lines) != 2 || lines[0] != "hello world" || lines[1] != "second line" {
		t.Errorf("unexpected lines: %q", lines)
	}
}

func TestRingLast(t *testing.T) {
	r := New(10)
	for i := 1; i <= 6; i++ {
		fmt.Fprintf(r, "l%d\n", i)
	}

	if got := strings.Join(r.Last(2), ","); got != "l5,l6" {
		t.Errorf("Last(2) = %s, want l5,l6", got)
	}
	if got := len(r.Last(50)); got != 6 {
		t.Errorf("Last(50) returned %d lines, want 6", got)
	}
}

func TestRingLastAfterWrap(t *testing.T) {
	r := New(4)
	for i := 1; i <= 7; i++ {
		fmt.Fprintf(r, "l%d\n", i)
	}
	if got := strings.Join(r.Last(3), ","); got != "l5,l6,l7" {
		t.Errorf("Last(3) = %s, want l5,l6,l7", got)
	}
}

func TestRingEmpty(t *testing.T) {
	r := New(5)
	if lines := r.Last(3); len(lines) != 0 {
		t.Errorf("expected no lines, got %v", lines)
	}
}

func TestRingTruncatesLongLines(t *testing.T) {
	r := New(2)
	r.Write([]byte(strings.Repeat("x", maxLineLen+100) + "\n"))

	line := r.Last(1)[0]
	if !strings.HasSuffix(line, "…") || len(line) > maxLineLen+len("…") {
		t.Errorf("line not truncated: len %d", len(line))
	}
}

func TestRingBoundsUnterminatedFragment(t *testing.T) {
	r := New(2)
	chunk := []byte(strings.Repeat("y", 1024))
	for range 64 {
		r.Write(chunk)
	}
	if n := len(r.partial); n > maxLineLen+1 {
		t.Fatalf("fragment grew to %d bytes", n)
	}
	if r.Len() != 0 {
		t.Fatalf("fragment should not be stored before its newline, got %d lines", r.Len())
	}

	r.Write([]byte("\n"))
	lines := r.Last(0)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if want := strings.Repeat("y", maxLineLen) + "…"; lines[0] != want {
		t.Errorf("expected capped line of %d bytes, got %d", len(want), len(lines[0]))
	}
}

func TestRingBehindSlog(t *testing.T) {
	r := New(10)
	logger := slog.New(slog.NewTextHandler(r, nil))

	var wg sync.WaitGroup
	for i := range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.Info("posted", "platform", "X", "n", i)
		}()
	}
	wg.Wait()

	lines := r.Last(0)
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d", len(lines))
	}
	for _, l := range lines {
		if !strings.Contains(l, "msg=posted") {
			t.Errorf("unexpected line %q", l)
		}
	}
}
