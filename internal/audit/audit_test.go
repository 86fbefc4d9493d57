package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoggerWritesEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	l, err := NewLogger(path)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	defer l.Close()

	ts := time.Date(2026, 10, 19, 10, 30, 0, 0, time.UTC)

	l.Log(Entry{
		Timestamp: ts,
		Action:    ActionCredentialRead,
		Key:       "bluesky_identifier",
		Actor:     "daemon",
	})

	l.Log(Entry{
		Timestamp: ts.Add(time.Hour),
		Action:    ActionCredentialWrite,
		Key:       "x_consumer_key",
		Actor:     "cli",
	})

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	var e1 Entry
	json.Unmarshal([]byte(lines[0]), &e1)
	if e1.Action != ActionCredentialRead {
		t.Errorf("expected credential_read, got %v", e1.Action)
	}
	if e1.Key != "bluesky_identifier" {
		t.Errorf("expected bluesky_identifier, got %q", e1.Key)
	}
	if !e1.Timestamp.Equal(ts) {
		t.Errorf("expected %v, got %v", ts, e1.Timestamp)
	}

	var e2 Entry
	json.Unmarshal([]byte(lines[1]), &e2)
	if e2.Actor != "cli" {
		t.Errorf("expected cli, got %q", e2.Actor)
	}
}

func TestLoggerDefaultsTimestamp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	l, err := NewLogger(path)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	defer l.Close()

	before := time.Now().UTC().Add(-time.Second)
	if err := l.Log(Entry{Action: ActionCredentialDelete, Key: "threads_user_id"}); err != nil {
		t.Fatalf("Log: %v", err)
	}

	data, _ := os.ReadFile(path)
	var e Entry
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(data))), &e); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if e.Timestamp.Before(before) {
		t.Errorf("expected timestamp to be set to now, got %v", e.Timestamp)
	}
}

func TestLoggerAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")

	l1, err := NewLogger(path)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	l1.Log(Entry{Action: ActionCredentialWrite, Key: "a"})
	l1.Close()

	l2, err := NewLogger(path)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	l2.Log(Entry{Action: ActionCredentialWrite, Key: "b"})
	l2.Close()

	data, _ := os.ReadFile(path)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines after reopen, got %d", len(lines))
	}
}

func TestLoggerFilePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	l, err := NewLogger(path)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	defer l.Close()

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("expected 0600, got %o", perm)
	}
	if l.Path() != path {
		t.Errorf("expected path %q, got %q", path, l.Path())
	}
}

func TestLoggerCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "logs", "audit.jsonl")

	logger, err := NewLogger(path)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	defer logger.Close()

	if err := logger.Log(Entry{Action: ActionCredentialRead, Key: "x_access_token", Actor: "test"}); err != nil {
		t.Fatalf("Log: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("audit log not created: %v", err)
	}
}
