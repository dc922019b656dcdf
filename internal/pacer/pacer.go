// Package pacer drives the timed presentation of a token sequence.
//
// A Scheduler owns one PacingState. SINGLE mode advances one unit per
// rate.Delay; FLOW mode advances continuously on a frame timer and ends once
// the reading time implied by the speed and token count has elapsed. Only one
// tick is ever pending: every control call cancels it before scheduling anew,
// and stale callbacks are discarded by generation.
package pacer

import (
	"errors"
	"sync"
	"time"

	"github.com/verte-zerg/tuiread/internal/clock"
	"github.com/verte-zerg/tuiread/internal/model"
	"github.com/verte-zerg/tuiread/internal/rate"
	"github.com/verte-zerg/tuiread/internal/session"
	"github.com/verte-zerg/tuiread/internal/tokenize"
)

// DefaultFrameInterval is the FLOW mode tick period (~60 fps).
const DefaultFrameInterval = 16 * time.Millisecond

var (
	// ErrNothingToRead is returned when starting a pass over empty text.
	ErrNothingToRead = errors.New("nothing to read")
	// ErrInvalidChunkSize is returned for chunk sizes outside 1..3.
	ErrInvalidChunkSize = errors.New("chunk size must be 1, 2 or 3")
)

// ResumeSaver receives the advisory reading position. Implementations must not block.
type ResumeSaver interface {
	SetLayout(mode model.Mode, chunkSize int)
	Save(rawText string, cursor int)
	Clear()
}

// Hooks are invoked after the scheduler releases its lock, so they may call
// back into the Scheduler.
type Hooks struct {
	OnTick   func(cursor int, unit string)
	OnState  func(state model.State)
	OnFinish func(rec model.SessionRecord)
	OnError  func(err error)
}

// Options configures a Scheduler.
type Options struct {
	Clock          clock.Clock
	Tracker        *session.Tracker
	Saver          ResumeSaver
	Hooks          Hooks
	Device         string
	WPM            float64
	MinWPM         float64
	MaxWPM         float64
	TargetWPM      float64
	Mode           model.Mode
	ChunkSize      int
	FlowMultiplier float64
	FrameInterval  time.Duration
}

// Snapshot is a copy of the pacing state plus the immutable token sequence.
type Snapshot struct {
	model.PacingState
	Tokens []string
	TextID string
}

// Unit returns the unit under the cursor, or "" when out of range.
func (s Snapshot) Unit() string {
	if s.Cursor < 0 || s.Cursor >= len(s.Tokens) {
		return ""
	}
	return s.Tokens[s.Cursor]
}

// Scheduler is the pacing state machine.
type Scheduler struct {
	clock         clock.Clock
	tracker       *session.Tracker
	saver         ResumeSaver
	hooks         Hooks
	device        string
	minWPM        float64
	maxWPM        float64
	targetWPM     float64
	flowMult      float64
	frameInterval time.Duration

	mu          sync.Mutex
	raw         string
	textID      string
	tokens      []string
	chunkSize   int
	state       model.State
	cursor      int
	// startCursor is where the current session began; resumed passes only
	// credit the units read after it.
	startCursor int
	progress    float64
	wpm         float64
	mode        model.Mode
	lastFrame   time.Time
	pausedAt    time.Time
	timer       clock.Timer
	gen         uint64
	record      *model.SessionRecord
	closed      bool
}

// New returns an idle Scheduler with no text loaded.
func New(opts Options) *Scheduler {
	clk := opts.Clock
	if clk == nil {
		clk = clock.System
	}
	tracker := opts.Tracker
	if tracker == nil {
		tracker = session.NewTracker(clk)
	}
	frame := opts.FrameInterval
	if frame <= 0 {
		frame = DefaultFrameInterval
	}
	s := &Scheduler{
		clock:         clk,
		tracker:       tracker,
		saver:         opts.Saver,
		hooks:         opts.Hooks,
		device:        opts.Device,
		minWPM:        opts.MinWPM,
		maxWPM:        opts.MaxWPM,
		targetWPM:     opts.TargetWPM,
		flowMult:      opts.FlowMultiplier,
		frameInterval: frame,
		chunkSize:     tokenize.ClampChunkSize(opts.ChunkSize),
		mode:          opts.Mode,
		tokens:        []string{},
	}
	s.wpm = rate.ClampRange(opts.WPM, s.minWPM, s.maxWPM)
	if s.saver != nil {
		s.saver.SetLayout(s.mode, s.chunkSize)
	}
	return s
}

// Load replaces the text and rehydrates the cursor. Any pass in progress is
// abandoned without being finalized.
func (s *Scheduler) Load(raw string, cursor int) {
	var ev events
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.cancelLocked()
	s.raw = raw
	s.textID = tokenize.TextID(raw)
	s.tokens = tokenize.Tokenize(raw, s.chunkSize)
	if cursor < 0 || cursor >= len(s.tokens) {
		cursor = 0
	}
	s.cursor = cursor
	s.progress = float64(cursor)
	s.record = nil
	s.setStateLocked(model.StateIdle, &ev)
	s.mu.Unlock()
	s.dispatch(ev)
}

// Start begins or resumes the pass. It is a no-op while running or finished.
func (s *Scheduler) Start() error {
	var ev events
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	if len(s.tokens) == 0 {
		s.mu.Unlock()
		return ErrNothingToRead
	}
	switch s.state {
	case model.StateRunning, model.StateFinished:
		s.mu.Unlock()
		return nil
	case model.StateIdle:
		s.beginLocked()
		s.setStateLocked(model.StateRunning, &ev)
		s.emitLocked(&ev)
	case model.StatePaused:
		s.tracker.Resume(s.record, s.pausedAt)
		s.pausedAt = time.Time{}
		s.setStateLocked(model.StateRunning, &ev)
	}
	s.lastFrame = s.clock.Now()
	s.scheduleLocked()
	s.mu.Unlock()
	s.dispatch(ev)
	return nil
}

// Pause stops advancement. Once it returns no further cursor mutation happens
// until Start or Restart.
func (s *Scheduler) Pause() {
	var ev events
	s.mu.Lock()
	if s.closed || s.state != model.StateRunning {
		s.mu.Unlock()
		return
	}
	if s.mode == model.ModeFlow {
		prev := s.cursor
		s.integrateLocked(s.clock.Now())
		if s.settleLocked(prev, &ev) {
			s.mu.Unlock()
			s.dispatch(ev)
			return
		}
	}
	s.cancelLocked()
	s.pausedAt = s.tracker.Pause(s.record)
	s.setStateLocked(model.StatePaused, &ev)
	s.mu.Unlock()
	s.dispatch(ev)
}

// Toggle pauses a running pass and starts otherwise.
func (s *Scheduler) Toggle() error {
	s.mu.Lock()
	running := s.state == model.StateRunning
	s.mu.Unlock()
	if running {
		s.Pause()
		return nil
	}
	return s.Start()
}

// Restart begins a new pass from the first unit regardless of state.
func (s *Scheduler) Restart() error {
	var ev events
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	if len(s.tokens) == 0 {
		s.mu.Unlock()
		return ErrNothingToRead
	}
	s.restartLocked(&ev)
	s.mu.Unlock()
	s.dispatch(ev)
	return nil
}

// SetSpeed changes the reading speed and returns the clamped value applied.
// The tick already pending keeps its delay.
func (s *Scheduler) SetSpeed(wpm float64) float64 {
	var ev events
	s.mu.Lock()
	wpm = rate.ClampRange(wpm, s.minWPM, s.maxWPM)
	if !s.closed && s.state == model.StateRunning && s.mode == model.ModeFlow {
		prev := s.cursor
		s.integrateLocked(s.clock.Now())
		s.settleLocked(prev, &ev)
	}
	s.wpm = wpm
	s.mu.Unlock()
	s.dispatch(ev)
	return wpm
}

// SetMode switches presentation mode. Outside the idle state the pass
// restarts from the first unit.
func (s *Scheduler) SetMode(mode model.Mode) {
	var ev events
	s.mu.Lock()
	if s.closed || mode == s.mode {
		s.mu.Unlock()
		return
	}
	s.mode = mode
	if s.saver != nil {
		s.saver.SetLayout(s.mode, s.chunkSize)
	}
	if s.state == model.StateIdle || len(s.tokens) == 0 {
		s.progress = float64(s.cursor)
		s.mu.Unlock()
		return
	}
	s.restartLocked(&ev)
	s.mu.Unlock()
	s.dispatch(ev)
}

// SetChunkSize re-tokenizes the text. Outside the idle state the pass
// restarts from the first unit.
func (s *Scheduler) SetChunkSize(n int) error {
	if !tokenize.ValidChunkSize(n) {
		return ErrInvalidChunkSize
	}
	var ev events
	s.mu.Lock()
	if s.closed || n == s.chunkSize {
		s.mu.Unlock()
		return nil
	}
	s.chunkSize = n
	s.tokens = tokenize.Tokenize(s.raw, n)
	if s.saver != nil {
		s.saver.SetLayout(s.mode, s.chunkSize)
	}
	if s.state == model.StateIdle || len(s.tokens) == 0 {
		s.cancelLocked()
		s.resetCursorLocked()
		s.setStateLocked(model.StateIdle, &ev)
		s.mu.Unlock()
		s.dispatch(ev)
		return nil
	}
	s.restartLocked(&ev)
	s.mu.Unlock()
	s.dispatch(ev)
	return nil
}

// Snapshot returns the current state. FLOW progress is integrated up to now.
func (s *Scheduler) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	progress := s.progress
	if s.state == model.StateRunning && s.mode == model.ModeFlow {
		elapsed := s.clock.Now().Sub(s.lastFrame)
		progress += float64(elapsed) / float64(time.Millisecond) * rate.UnitsPerMillisecond(s.wpm, s.flowMult)
		if total := float64(len(s.tokens)); progress > total {
			progress = total
		}
	}
	return Snapshot{
		PacingState: model.PacingState{
			Cursor:    s.cursor,
			State:     s.state,
			WPM:       s.wpm,
			Mode:      s.mode,
			ChunkSize: s.chunkSize,
			Progress:  progress,
			Total:     len(s.tokens),
		},
		Tokens: s.tokens,
		TextID: s.textID,
	}
}

// Session returns a copy of the current session record, if any.
func (s *Scheduler) Session() (model.SessionRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.record == nil {
		return model.SessionRecord{}, false
	}
	return *s.record, true
}

// Raw returns the loaded text.
func (s *Scheduler) Raw() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.raw
}

// Close cancels the pending tick; the Scheduler ignores every later call.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
	s.closed = true
}

func (s *Scheduler) tick(gen uint64) {
	var ev events
	s.mu.Lock()
	if s.closed || gen != s.gen || s.state != model.StateRunning {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	prev := s.cursor
	switch s.mode {
	case model.ModeFlow:
		s.integrateLocked(s.clock.Now())
	default:
		s.cursor++
		s.progress = float64(s.cursor)
	}
	if s.settleLocked(prev, &ev) {
		s.mu.Unlock()
		s.dispatch(ev)
		return
	}
	s.scheduleLocked()
	s.mu.Unlock()
	s.dispatch(ev)
}

// settleLocked finishes the pass once progress reaches the end and reports
// true. Otherwise it publishes a cursor move since prev.
func (s *Scheduler) settleLocked(prev int, ev *events) bool {
	if s.progress >= float64(len(s.tokens)) {
		s.finishLocked(ev)
		return true
	}
	if s.cursor != prev {
		s.tracker.Update(s.record, s.cursor-s.startCursor)
		s.emitLocked(ev)
		if s.saver != nil {
			s.saver.Save(s.raw, s.cursor)
		}
	}
	return false
}

// integrateLocked advances FLOW progress to now at the current rate.
func (s *Scheduler) integrateLocked(now time.Time) {
	elapsed := now.Sub(s.lastFrame)
	s.lastFrame = now
	if elapsed <= 0 {
		return
	}
	s.progress += float64(elapsed) / float64(time.Millisecond) * rate.UnitsPerMillisecond(s.wpm, s.flowMult)
	total := float64(len(s.tokens))
	if s.progress > total {
		s.progress = total
	}
	s.cursor = int(s.progress)
	if s.cursor > len(s.tokens) {
		s.cursor = len(s.tokens)
	}
}

func (s *Scheduler) scheduleLocked() {
	s.cancelLocked()
	delay := s.frameInterval
	if s.mode != model.ModeFlow {
		delay = rate.Delay(s.wpm)
	}
	gen := s.gen
	s.timer = s.clock.AfterFunc(delay, func() { s.tick(gen) })
}

func (s *Scheduler) cancelLocked() {
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Scheduler) resetCursorLocked() {
	s.cursor = 0
	s.progress = 0
}

func (s *Scheduler) restartLocked(ev *events) {
	s.cancelLocked()
	s.resetCursorLocked()
	if s.saver != nil {
		s.saver.Clear()
	}
	s.pausedAt = time.Time{}
	s.beginLocked()
	s.setStateLocked(model.StateRunning, ev)
	s.emitLocked(ev)
	s.lastFrame = s.clock.Now()
	s.scheduleLocked()
}

func (s *Scheduler) beginLocked() {
	s.startCursor = s.cursor
	s.record = s.tracker.Begin(s.textID, s.device, session.BeginOptions{
		Mode:      s.mode,
		ChunkSize: s.chunkSize,
		TargetWPM: s.targetWPM,
	})
}

func (s *Scheduler) finishLocked(ev *events) {
	s.cancelLocked()
	s.cursor = len(s.tokens)
	s.progress = float64(len(s.tokens))
	s.setStateLocked(model.StateFinished, ev)
	if s.saver != nil {
		s.saver.Clear()
	}
	if _, err := s.tracker.Finalize(s.record, len(s.tokens)-s.startCursor); err != nil {
		ev.err = err
		return
	}
	rec := *s.record
	ev.finished = &rec
}

func (s *Scheduler) setStateLocked(state model.State, ev *events) {
	if s.state == state {
		return
	}
	s.state = state
	ev.states = append(ev.states, state)
}

func (s *Scheduler) emitLocked(ev *events) {
	if s.cursor < len(s.tokens) {
		ev.ticks = append(ev.ticks, tickEvent{cursor: s.cursor, unit: s.tokens[s.cursor]})
	}
}

type tickEvent struct {
	cursor int
	unit   string
}

type events struct {
	states   []model.State
	ticks    []tickEvent
	finished *model.SessionRecord
	err      error
}

func (s *Scheduler) dispatch(ev events) {
	for _, st := range ev.states {
		if s.hooks.OnState != nil {
			s.hooks.OnState(st)
		}
	}
	for _, t := range ev.ticks {
		if s.hooks.OnTick != nil {
			s.hooks.OnTick(t.cursor, t.unit)
		}
	}
	if ev.err != nil && s.hooks.OnError != nil {
		s.hooks.OnError(ev.err)
	}
	if ev.finished != nil && s.hooks.OnFinish != nil {
		s.hooks.OnFinish(*ev.finished)
	}
}
