// Package session tracks reading passes and computes realized speed.
package session

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/tuiread/internal/clock"
	"github.com/verte-zerg/tuiread/internal/model"
)

// MaxRealizedWPM caps the speed reported for passes too short to measure.
const MaxRealizedWPM = 2000

// ErrAlreadyFinalized is returned when a record is finalized twice.
var ErrAlreadyFinalized = errors.New("session already finalized")

// Result is the outcome of a finalized pass.
type Result struct {
	RealizedWPM int
	DurationMs  int64
	TooShort    bool
}

// BeginOptions carries the pass settings copied onto a new record.
type BeginOptions struct {
	Mode      model.Mode
	ChunkSize int
	TargetWPM float64
}

// Tracker creates and finalizes session records against a clock.
type Tracker struct {
	clock clock.Clock
}

// NewTracker returns a Tracker reading time from clk.
func NewTracker(clk clock.Clock) *Tracker {
	if clk == nil {
		clk = clock.System
	}
	return &Tracker{clock: clk}
}

// Begin starts a new record.
func (t *Tracker) Begin(textID, device string, opts BeginOptions) *model.SessionRecord {
	return &model.SessionRecord{
		ID:        uuid.NewString(),
		TextID:    textID,
		Device:    device,
		Mode:      opts.Mode,
		ChunkSize: opts.ChunkSize,
		TargetWPM: opts.TargetWPM,
		StartTime: t.clock.Now(),
	}
}

// Pause marks the start of an interruption. It returns the pause timestamp
// which must be passed back to Resume, or the zero time when rec is nil or
// already finalized.
func (t *Tracker) Pause(rec *model.SessionRecord) time.Time {
	if rec == nil || rec.Finished() {
		return time.Time{}
	}
	return t.clock.Now()
}

// Resume adds the time since pausedAt to the record's paused total.
func (t *Tracker) Resume(rec *model.SessionRecord, pausedAt time.Time) {
	if rec == nil || pausedAt.IsZero() || rec.Finished() {
		return
	}
	if d := t.clock.Now().Sub(pausedAt); d > 0 {
		rec.PausedMs += d.Milliseconds()
	}
}

// Update refreshes the live speed from the number of units read so far.
func (t *Tracker) Update(rec *model.SessionRecord, cursor int) {
	if rec == nil || rec.Finished() {
		return
	}
	durationMs := activeMs(rec, t.clock.Now())
	if durationMs <= 0 {
		return
	}
	rec.LiveWPM = float64(cursor) / (float64(durationMs) / 60000.0)
}

// Finalize closes the record. It fails with ErrAlreadyFinalized if the record
// was already finalized; the record is left untouched in that case.
func (t *Tracker) Finalize(rec *model.SessionRecord, tokenCount int) (Result, error) {
	if rec == nil {
		return Result{}, fmt.Errorf("finalize: nil session record")
	}
	if rec.Finished() {
		return Result{}, fmt.Errorf("finalize %s: %w", rec.ID, ErrAlreadyFinalized)
	}
	end := t.clock.Now()
	durationMs := activeMs(rec, end)
	wpm, tooShort := Metrics(tokenCount, durationMs)

	rec.EndTime = &end
	rec.Tokens = tokenCount
	rec.DurationMs = durationMs
	if rec.DurationMs < 0 {
		rec.DurationMs = 0
	}
	rec.RealizedWPM = wpm
	rec.TooShort = tooShort
	rec.LiveWPM = float64(wpm)
	return Result{RealizedWPM: wpm, DurationMs: rec.DurationMs, TooShort: tooShort}, nil
}

// Metrics computes the rounded realized speed for tokens read over durationMs.
// Passes with no measurable duration report tokens capped at MaxRealizedWPM.
func Metrics(tokens int, durationMs int64) (wpm int, tooShort bool) {
	if tokens <= 0 {
		return 0, durationMs <= 0
	}
	if durationMs <= 0 {
		if tokens > MaxRealizedWPM {
			return MaxRealizedWPM, true
		}
		return tokens, true
	}
	minutes := float64(durationMs) / 60000.0
	return int(math.Round(float64(tokens) / minutes)), false
}

func activeMs(rec *model.SessionRecord, now time.Time) int64 {
	return now.Sub(rec.StartTime).Milliseconds() - rec.PausedMs
}
