// Package logger maintains the append-only audit trail: one JSON line per
// completed audit, written to ~/.oxidized-skills/audit.jsonl.
package logger

import (
	"encoding/json"
	"os"
	"strings"
	"sync"

	"github.com/jbovet/oxidized-skills/internal/redact"
)

// TrailEntry is one line of the audit trail, summarizing a completed
// audit run.
type TrailEntry struct {
	Timestamp    string `json:"timestamp"`
	AuditID      string `json:"audit_id"`
	Skill        string `json:"skill"`
	Path         string `json:"path"`
	Status       string `json:"status"`
	RiskLevel    string `json:"risk_level"`
	Errors       int    `json:"errors"`
	Warnings     int    `json:"warnings"`
	Info         int    `json:"info"`
	Suppressed   int    `json:"suppressed"`
	FilesScanned int    `json:"files_scanned"`
	Strict       bool   `json:"strict,omitempty"`
	DurationMs   int64  `json:"duration_ms"`
}

// TrailLogger appends entries to the trail file. Safe for concurrent use.
type TrailLogger struct {
	file *os.File
	mu   sync.Mutex
}

// defaultMaxLogBytes caps the trail file size. A file at or over the cap
// is rotated to <path>.1 at open time, replacing any previous backup.
const defaultMaxLogBytes = 5 * 1024 * 1024

// New opens (or creates) the trail file for appending. The file is
// created owner-only, since paths and skill names may reveal local layout.
func New(path string) (*TrailLogger, error) {
	if info, err := os.Stat(path); err == nil && info.Size() >= defaultMaxLogBytes {
		if err := os.Rename(path, path+".1"); err != nil {
			return nil, err
		}
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, err
	}
	return &TrailLogger{file: file}, nil
}

// Log appends one entry as a single JSON line. String fields are redacted
// first so secret material never lands in the trail.
func (l *TrailLogger) Log(entry TrailEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry.Skill = redact.Redact(entry.Skill)
	entry.Path = redact.Redact(entry.Path)

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = l.file.Write(data)
	return err
}

// Close closes the underlying file.
func (l *TrailLogger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// ReadEntries parses the trail file. A missing file reads as empty, and
// malformed lines are skipped, so a truncated write cannot poison the
// whole history.
func ReadEntries(path string) ([]TrailEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var entries []TrailEntry
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var e TrailEntry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}
