// Package tui provides the Bubble Tea reading interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tuiread/internal/clock"
	"github.com/verte-zerg/tuiread/internal/eventlog"
	"github.com/verte-zerg/tuiread/internal/model"
	"github.com/verte-zerg/tuiread/internal/pacer"
	"github.com/verte-zerg/tuiread/internal/present"
	"github.com/verte-zerg/tuiread/internal/rate"
)

const (
	frameInterval = time.Second / 30
	toastDuration = 2 * time.Second
	speedStep     = 25
	inboxSize     = 16
)

// Store persists finished passes and supplies history for the footer.
type Store interface {
	InsertSession(ctx context.Context, rec model.SessionRecord) error
	ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error)
}

// Options configures a reader Model.
type Options struct {
	Config model.Config
	Clock  clock.Clock
	Saver  pacer.ResumeSaver
	Store  Store
	// Journal may be nil.
	Journal *eventlog.Logger
	Text    string
	Cursor  int
	// Restored marks Text and Cursor as coming from a resume record.
	Restored bool
}

type frameMsg time.Time

type finishMsg struct {
	rec model.SessionRecord
}

type errMsg struct {
	err error
}

type flowKey struct {
	total int
	chunk int
	text  string
}

// Model implements the Bubble Tea reader UI.
type Model struct {
	config  model.Config
	clock   clock.Clock
	sched   *pacer.Scheduler
	store   Store
	journal *eventlog.Logger
	inbox   chan tea.Msg

	keys KeyMap
	help help.Model
	bar  progress.Model

	width  int
	height int

	highlight  bool
	toast      string
	toastUntil time.Time

	flowLine present.FlowLine
	flowKey  flowKey

	result  *model.SessionRecord
	lastWPM int
	hasLast bool

	allWPM      float64
	allTokens   int
	allDuration int64
}

// NewModel constructs a reader model and loads the text into a fresh scheduler.
func NewModel(opts Options) *Model {
	clk := opts.Clock
	if clk == nil {
		clk = clock.System
	}
	m := &Model{
		config:  opts.Config,
		clock:   clk,
		store:   opts.Store,
		journal: opts.Journal,
		inbox:   make(chan tea.Msg, inboxSize),
		keys:    DefaultKeyMap(),
		help:    help.New(),
		bar:     progress.New(progress.WithSolidFill("#C89A3A"), progress.WithoutPercentage()),
	}
	m.sched = pacer.New(pacer.Options{
		Clock:          clk,
		Saver:          opts.Saver,
		Hooks:          m.hooks(),
		Device:         opts.Config.Device,
		WPM:            opts.Config.WPM,
		MinWPM:         opts.Config.MinWPM,
		MaxWPM:         opts.Config.MaxWPM,
		TargetWPM:      opts.Config.TargetWPM,
		Mode:           opts.Config.Mode,
		ChunkSize:      opts.Config.ChunkSize,
		FlowMultiplier: opts.Config.FlowMultiplier,
	})
	m.sched.Load(opts.Text, opts.Cursor)
	if opts.Restored {
		m.setToast("Restored previous session")
	}
	m.loadFooterStats()
	return m
}

// Scheduler exposes the pacing engine driving this model.
func (m *Model) Scheduler() *pacer.Scheduler {
	return m.sched
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(frameTick(), waitForInbox(m.inbox))
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.bar.Width = barWidth(msg.Width)
		return m, nil
	case frameMsg:
		if m.toast != "" && !m.clock.Now().Before(m.toastUntil) {
			m.toast = ""
		}
		return m, frameTick()
	case finishMsg:
		m.finishSession(msg.rec)
		return m, waitForInbox(m.inbox)
	case errMsg:
		m.record(eventlog.Event{Event: eventlog.EventError, Error: msg.err.Error()})
		m.setToast("Error: " + msg.err.Error())
		return m, waitForInbox(m.inbox)
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.sched.Close()
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Toggle):
		m.toggle()
	case key.Matches(msg, m.keys.Restart):
		m.restart()
	case key.Matches(msg, m.keys.Faster):
		m.changeSpeed(speedStep)
	case key.Matches(msg, m.keys.Slower):
		m.changeSpeed(-speedStep)
	case key.Matches(msg, m.keys.Mode):
		m.toggleMode()
	case key.Matches(msg, m.keys.Chunk1):
		m.setChunk(1)
	case key.Matches(msg, m.keys.Chunk2):
		m.setChunk(2)
	case key.Matches(msg, m.keys.Chunk3):
		m.setChunk(3)
	case key.Matches(msg, m.keys.Highlight):
		m.highlight = !m.highlight
		if m.highlight {
			m.setToast("Flow highlight on")
		} else {
			m.setToast("Flow highlight off")
		}
	}
	return nil
}

func (m *Model) toggle() {
	before := m.sched.Snapshot().State
	if before == model.StateFinished {
		m.restart()
		return
	}
	if err := m.sched.Toggle(); err != nil {
		m.reportControlError(err)
		return
	}
	snap := m.sched.Snapshot()
	switch {
	case before == model.StateIdle && snap.State == model.StateRunning:
		m.result = nil
		m.record(m.event(eventlog.EventPassStarted, snap))
	case before == model.StateRunning && snap.State == model.StatePaused:
		m.setToast("Paused")
		m.record(m.event(eventlog.EventPaused, snap))
	case before == model.StatePaused && snap.State == model.StateRunning:
		m.setToast("Resumed")
		m.record(m.event(eventlog.EventResumed, snap))
	}
}

func (m *Model) restart() {
	if err := m.sched.Restart(); err != nil {
		m.reportControlError(err)
		return
	}
	m.result = nil
	m.setToast("Restarted")
	m.record(m.event(eventlog.EventRestarted, m.sched.Snapshot()))
}

func (m *Model) changeSpeed(delta float64) {
	current := m.sched.Snapshot().WPM
	applied := m.sched.SetSpeed(current + delta)
	if applied == current {
		return
	}
	m.setToast(fmt.Sprintf("%.0f WPM", applied))
	m.record(m.event(eventlog.EventSpeedChanged, m.sched.Snapshot()))
}

func (m *Model) toggleMode() {
	next := model.ModeFlow
	if m.sched.Snapshot().Mode == model.ModeFlow {
		next = model.ModeSingle
	}
	m.sched.SetMode(next)
	m.result = nil
	m.setToast("Mode: " + next.String())
	m.record(m.event(eventlog.EventModeChanged, m.sched.Snapshot()))
}

func (m *Model) setChunk(n int) {
	if m.sched.Snapshot().ChunkSize == n {
		return
	}
	if err := m.sched.SetChunkSize(n); err != nil {
		m.reportControlError(err)
		return
	}
	m.result = nil
	m.setToast(fmt.Sprintf("Chunk: %d", n))
	m.record(m.event(eventlog.EventChunkChanged, m.sched.Snapshot()))
}

func (m *Model) reportControlError(err error) {
	if errors.Is(err, pacer.ErrNothingToRead) {
		m.setToast("Nothing to read")
		return
	}
	m.setToast("Error: " + err.Error())
	m.record(eventlog.Event{Event: eventlog.EventError, Device: m.config.Device, Error: err.Error()})
}

func (m *Model) setToast(text string) {
	m.toast = text
	m.toastUntil = m.clock.Now().Add(toastDuration)
}

func (m *Model) hooks() pacer.Hooks {
	inbox := m.inbox
	return pacer.Hooks{
		OnFinish: func(rec model.SessionRecord) {
			inbox <- finishMsg{rec: rec}
		},
		OnError: func(err error) {
			select {
			case inbox <- errMsg{err: err}:
			default:
				if jerr := m.journal.Append(eventlog.Event{Event: eventlog.EventError, Device: m.config.Device, Error: err.Error()}); jerr != nil {
					_ = jerr
				}
			}
		},
	}
}

func (m *Model) finishSession(rec model.SessionRecord) {
	rec.Device = m.config.Device
	m.result = &rec
	m.record(eventlog.Event{
		Event:       eventlog.EventPassFinished,
		Device:      rec.Device,
		SessionID:   rec.ID,
		TextID:      rec.TextID,
		Mode:        rec.Mode.String(),
		ChunkSize:   rec.ChunkSize,
		Cursor:      rec.Tokens,
		RealizedWPM: rec.RealizedWPM,
		DurationMs:  rec.DurationMs,
		TooShort:    rec.TooShort,
	})
	if m.store != nil {
		if err := m.store.InsertSession(context.Background(), rec); err != nil {
			m.reportStoreError(fmt.Errorf("failed to save session: %w", err))
		}
	}
	if rec.TooShort {
		return
	}
	m.lastWPM = rec.RealizedWPM
	m.hasLast = true
	m.allTokens += rec.Tokens
	m.allDuration += rec.DurationMs
	m.recomputeAllTime()
}

// reportStoreError journals err and shows it; stderr is hidden behind the alt screen.
func (m *Model) reportStoreError(err error) {
	m.setToast("Error: " + err.Error())
	m.record(eventlog.Event{Event: eventlog.EventError, Device: m.config.Device, Error: err.Error()})
}

func (m *Model) loadFooterStats() {
	if m.store == nil {
		return
	}
	sessions, err := m.store.ListSessions(context.Background(), model.StatsConfig{Device: m.config.Device})
	if err != nil {
		logErrf("failed to load session stats: %v\n", err)
		return
	}
	for _, s := range sessions {
		if s.TooShort {
			continue
		}
		m.lastWPM = s.RealizedWPM
		m.hasLast = true
		m.allTokens += s.Tokens
		m.allDuration += s.DurationMs
	}
	m.recomputeAllTime()
}

func (m *Model) recomputeAllTime() {
	if m.allDuration <= 0 {
		m.allWPM = 0
		return
	}
	m.allWPM = float64(m.allTokens) / (float64(m.allDuration) / 60000.0)
}

func (m *Model) event(name string, snap pacer.Snapshot) eventlog.Event {
	ev := eventlog.Event{
		Event:     name,
		Device:    m.config.Device,
		TextID:    snap.TextID,
		Mode:      snap.Mode.String(),
		ChunkSize: snap.ChunkSize,
		Cursor:    snap.Cursor,
		WPM:       snap.WPM,
	}
	if rec, ok := m.sched.Session(); ok {
		ev.SessionID = rec.ID
	}
	return ev
}

func (m *Model) record(ev eventlog.Event) {
	if err := m.journal.Append(ev); err != nil {
		logErrf("failed to write event log: %v\n", err)
	}
}

// estimate is the expected time for a pass at the current speed and mode.
func estimate(snap pacer.Snapshot, flowMultiplier float64) time.Duration {
	if snap.Mode == model.ModeFlow {
		return rate.FlowDuration(snap.Total, snap.WPM, flowMultiplier)
	}
	return rate.Estimate(snap.Total, snap.WPM)
}

// liveWPM returns the speed of the pass in progress, or the set speed.
func (m *Model) liveWPM(snap pacer.Snapshot) float64 {
	if rec, ok := m.sched.Session(); ok && rec.LiveWPM > 0 && snap.State != model.StateIdle {
		return rec.LiveWPM
	}
	return snap.WPM
}

func (m *Model) target(snap pacer.Snapshot) float64 {
	if m.config.TargetWPM > 0 {
		return m.config.TargetWPM
	}
	return snap.WPM
}

func frameTick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func waitForInbox(inbox <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-inbox
	}
}

func barWidth(total int) int {
	w := total / 3
	if w < 10 {
		w = 10
	}
	return w
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
