// Package diag captures every raw frame, parsed event, and terminal status
// of a run as an append-only JSONL log for later replay. Recording must
// never block or fail the run it observes: all write failures are swallowed
// and at most reported once through the package logger.
package diag

import (
	"encoding/json"
	"os"
	"sync"
	"time"
)

// Record type labels.
const (
	TypeRawFrame         = "raw_frame"
	TypeParsedFrame      = "parsed_frame"
	TypeDoneMarker       = "done_marker"
	TypeAssistantMessage = "assistant_message"
	TypeUsageStats       = "usage_stats"
	TypeReasoning        = "reasoning"
	TypeParseError       = "parse_error"
	TypeError            = "error"
	TypeStatus           = "status"
)

// Nop is a recorder that records nothing. All Recorder methods are nil-safe,
// so Nop and a nil *Recorder behave identically.
var Nop *Recorder

// Recorder appends one JSON record per line to a log file. The file is
// created with a short header comment block on first use and only ever
// appended to afterwards. Appends are safe under concurrent runs.
type Recorder struct {
	path string

	mu     sync.Mutex
	f      *os.File
	report sync.Once
}

type record struct {
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Content   any    `json:"content"`
}

// New returns a recorder appending to the given path. The file is not
// touched until the first record is written.
func New(path string) *Recorder {
	if path == "" {
		return Nop
	}
	return &Recorder{path: path}
}

// Enabled reports whether records will actually be written.
func (r *Recorder) Enabled() bool {
	return r != nil && r.path != ""
}

// Record appends one entry. Failures are swallowed.
func (r *Recorder) Record(recordType string, content any) {
	if !r.Enabled() {
		return
	}

	entry := record{
		Timestamp: time.Now().Format(time.RFC3339Nano),
		Type:      recordType,
		Content:   content,
	}
	line, err := json.Marshal(entry)
	if err != nil {
		r.reportFailure(err)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.open(); err != nil {
		r.reportFailure(err)
		return
	}
	if _, err := r.f.Write(append(line, '\n')); err != nil {
		r.reportFailure(err)
	}
}

// Close releases the underlying file. Further records reopen it.
func (r *Recorder) Close() error {
	if !r.Enabled() {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.f == nil {
		return nil
	}
	err := r.f.Close()
	r.f = nil
	return err
}

// open lazily opens the log file, writing the header block when the file is
// newly created. Caller holds r.mu.
func (r *Recorder) open() error {
	if r.f != nil {
		return nil
	}

	info, statErr := os.Stat(r.path)
	fresh := statErr != nil || info.Size() == 0

	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	r.f = f

	if fresh {
		header := "# Letta Response Log\n" +
			"# Created: " + time.Now().Format(time.RFC3339) + "\n" +
			"# Format: {\"timestamp\": \"\", \"type\": \"\", \"content\": \"\"}\n\n"
		if _, err := f.WriteString(header); err != nil {
			return err
		}
	}
	return nil
}

// reportFailure logs a write failure once per recorder, out of band of the
// run being observed.
func (r *Recorder) reportFailure(err error) {
	r.report.Do(func() {
		logger.Warn("diagnostic log write failed, further failures suppressed",
			"path", r.path, "error", err)
	})
}
