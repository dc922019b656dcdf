// Package model defines shared data structures.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects how the token sequence is presented.
type Mode int

const (
	// ModeSingle shows one unit at a time at a fixed position (RSVP).
	ModeSingle Mode = iota
	// ModeFlow scrolls the whole sequence as one line at constant velocity.
	ModeFlow
)

func (m Mode) String() string {
	switch m {
	case ModeSingle:
		return "single"
	case ModeFlow:
		return "flow"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode converts a config or flag value into a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "single", "rsvp":
		return ModeSingle, nil
	case "flow":
		return ModeFlow, nil
	default:
		return ModeSingle, fmt.Errorf("unknown mode %q (want single or flow)", s)
	}
}

// State is the pacing state machine position.
type State int

const (
	StateIdle State = iota
	StateRunning
	StatePaused
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateFinished:
		return "finished"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Config defines reader settings.
type Config struct {
	WPM            float64
	TargetWPM      float64
	MinWPM         float64
	MaxWPM         float64
	Mode           Mode
	ChunkSize      int
	Device         string
	FlowMultiplier float64
	Resume         bool
}

// PracticeConfig defines generated practice text settings.
type PracticeConfig struct {
	Lang  string
	Words int
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Device      string
	TextID      string
	Since       *time.Time
	Last        int
	CurveWindow int
}

// PacingState is the scheduler-owned reading position.
type PacingState struct {
	Cursor    int
	State     State
	WPM       float64
	Mode      Mode
	ChunkSize int
	// Progress is the fractional number of units read; it equals Cursor in SINGLE mode.
	Progress float64
	Total    int
}

// Running reports whether the pass is advancing.
func (p PacingState) Running() bool {
	return p.State == StateRunning
}

// SessionRecord captures one reading pass.
type SessionRecord struct {
	ID          string
	TextID      string
	Device      string
	Mode        Mode
	ChunkSize   int
	TargetWPM   float64
	StartTime   time.Time
	EndTime     *time.Time
	PausedMs    int64
	LiveWPM     float64
	RealizedWPM int
	DurationMs  int64
	Tokens      int
	TooShort    bool
}

// Finished reports whether the record has been finalized.
func (r SessionRecord) Finished() bool {
	return r.EndTime != nil
}

// ResumeRecord is the advisory position persisted between runs.
type ResumeRecord struct {
	Device    string
	RawText   string
	Cursor    int
	Mode      Mode
	ChunkSize int
	UpdatedAt time.Time
}

// SessionAggregate summarizes a stored session for reporting.
type SessionAggregate struct {
	SessionID   string
	TextID      string
	Device      string
	Mode        Mode
	ChunkSize   int
	EndedAt     time.Time
	Tokens      int
	TargetWPM   float64
	RealizedWPM int
	DurationMs  int64
	TooShort    bool
}

// TextAggregate summarizes all sessions for one text.
type TextAggregate struct {
	TextID      string
	Sessions    int
	BestWPM     int
	LastEndedAt time.Time
}
