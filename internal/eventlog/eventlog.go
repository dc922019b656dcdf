// Package eventlog appends reader events to a JSONL journal.
package eventlog

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Event names.
const (
	EventPassStarted  = "pass_started"
	EventPaused       = "paused"
	EventResumed      = "resumed"
	EventRestarted    = "restarted"
	EventModeChanged  = "mode_changed"
	EventChunkChanged = "chunk_changed"
	EventSpeedChanged = "speed_changed"
	EventPassFinished = "pass_finished"
	EventError        = "error"
)

// Event is one journal line.
type Event struct {
	Time        time.Time `json:"time"`
	Event       string    `json:"event"`
	Device      string    `json:"device,omitempty"`
	SessionID   string    `json:"session,omitempty"`
	TextID      string    `json:"text,omitempty"`
	Mode        string    `json:"mode,omitempty"`
	ChunkSize   int       `json:"chunk,omitempty"`
	Cursor      int       `json:"cursor,omitempty"`
	WPM         float64   `json:"wpm,omitempty"`
	RealizedWPM int       `json:"realized_wpm,omitempty"`
	DurationMs  int64     `json:"duration_ms,omitempty"`
	TooShort    bool      `json:"too_short,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// Logger appends events to a file. The zero value is not usable; a nil
// *Logger discards everything.
type Logger struct {
	path string
	mu   sync.Mutex
}

// New returns a Logger writing to path, creating its directory.
func New(path string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create event log directory: %w", err)
	}
	return &Logger{path: path}, nil
}

// Path returns the journal file path.
func (l *Logger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Append writes ev as a single line. A zero Time is set to now.
func (l *Logger) Append(ev Event) error {
	if l == nil {
		return nil
	}
	if ev.Time.IsZero() {
		ev.Time = time.Now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open event log: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close after append.
			_ = cerr
		}
	}()
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	return nil
}

// ReadAll parses every event in the journal. A missing file yields no events.
func (l *Logger) ReadAll() ([]Event, error) {
	if l == nil {
		return []Event{}, nil
	}
	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Event{}, nil
		}
		return nil, fmt.Errorf("failed to open event log: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			_ = cerr
		}
	}()

	events := []Event{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev Event
		if err := json.Unmarshal(line, &ev); err != nil {
			return nil, fmt.Errorf("failed to parse event line %d: %w", lineNum, err)
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read event log: %w", err)
	}
	return events, nil
}
