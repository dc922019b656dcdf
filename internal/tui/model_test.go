package tui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tuiread/internal/clock"
	"github.com/verte-zerg/tuiread/internal/eventlog"
	"github.com/verte-zerg/tuiread/internal/model"
)

type fakeStore struct {
	inserted  []model.SessionRecord
	sessions  []model.SessionAggregate
	listCalls int
	insertErr error
}

func (f *fakeStore) InsertSession(_ context.Context, rec model.SessionRecord) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, rec)
	return nil
}

func (f *fakeStore) ListSessions(_ context.Context, _ model.StatsConfig) ([]model.SessionAggregate, error) {
	f.listCalls++
	return f.sessions, nil
}

func newTestModel(t *testing.T, text string, st *fakeStore) (*Model, *clock.Fake, *eventlog.Logger) {
	t.Helper()
	clk := clock.NewFake(time.Unix(1700000000, 0))
	journal, err := eventlog.New(filepath.Join(t.TempDir(), "events.jsonl"))
	if err != nil {
		t.Fatalf("event log: %v", err)
	}
	m := NewModel(Options{
		Config: model.Config{
			WPM:       300,
			TargetWPM: 300,
			MinWPM:    60,
			MaxWPM:    1000,
			ChunkSize: 1,
			Device:    "desk",
		},
		Clock:   clk,
		Store:   st,
		Journal: journal,
		Text:    text,
	})
	return m, clk, journal
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var spaceKey = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}

// drainInbox feeds every pending scheduler message back into the model.
func drainInbox(m *Model) int {
	n := 0
	for {
		select {
		case msg := <-m.inbox:
			m.Update(msg)
			n++
		default:
			return n
		}
	}
}

func TestRenderFooterFormats(t *testing.T) {
	st := &fakeStore{sessions: []model.SessionAggregate{
		{Tokens: 300, DurationMs: 60000, RealizedWPM: 300},
		{Tokens: 5, DurationMs: 0, RealizedWPM: 5, TooShort: true},
		{Tokens: 290, DurationMs: 60000, RealizedWPM: 290},
	}}
	m, _, _ := newTestModel(t, "one two three four", st)
	if st.listCalls != 1 {
		t.Fatalf("expected history loaded once, got %d", st.listCalls)
	}
	out := m.renderFooter(m.sched.Snapshot())
	if !containsAll(out, []string{"Progress 0%", "300 WPM / target 300", "single ×1", "Last 290 WPM", "All-time 295.0 WPM"}) {
		t.Fatalf("footer missing expected segments: %s", out)
	}
}

func TestReadingPassStoresSession(t *testing.T) {
	st := &fakeStore{}
	m, clk, journal := newTestModel(t, "one two three four five", st)

	m.Update(spaceKey)
	if got := m.sched.Snapshot().State; got != model.StateRunning {
		t.Fatalf("expected running, got %s", got)
	}
	clk.Advance(1000 * time.Millisecond)
	if n := drainInbox(m); n != 1 {
		t.Fatalf("expected one finish message, got %d", n)
	}
	if len(st.inserted) != 1 {
		t.Fatalf("expected one stored session, got %d", len(st.inserted))
	}
	rec := st.inserted[0]
	if rec.RealizedWPM != 300 || rec.Device != "desk" || rec.Tokens != 5 {
		t.Fatalf("unexpected stored session: %+v", rec)
	}
	if m.result == nil || !m.hasLast || m.lastWPM != 300 {
		t.Fatalf("expected result view and footer update")
	}
	view := m.renderBody(m.sched.Snapshot(), 40, 10)
	if !containsAll(view, []string{"Finished", "300 WPM", "Time 0:01", "estimate 0:01"}) {
		t.Fatalf("unexpected result view: %s", view)
	}

	events, err := journal.ReadAll()
	if err != nil {
		t.Fatalf("read journal: %v", err)
	}
	if len(events) != 2 || events[0].Event != eventlog.EventPassStarted || events[1].Event != eventlog.EventPassFinished {
		t.Fatalf("unexpected journal: %+v", events)
	}
	if events[1].RealizedWPM != 300 || events[0].SessionID != events[1].SessionID {
		t.Fatalf("unexpected finish event: %+v", events[1])
	}
}

func TestToggleToasts(t *testing.T) {
	m, clk, _ := newTestModel(t, "one two three four five", &fakeStore{})
	m.Update(spaceKey)
	clk.Advance(100 * time.Millisecond)
	m.Update(spaceKey)
	if m.toast != "Paused" || m.sched.Snapshot().State != model.StatePaused {
		t.Fatalf("expected paused, got toast %q state %s", m.toast, m.sched.Snapshot().State)
	}
	m.Update(spaceKey)
	if m.toast != "Resumed" {
		t.Fatalf("expected resumed toast, got %q", m.toast)
	}
	clk.Advance(toastDuration)
	m.Update(frameMsg(clk.Now()))
	if m.toast != "" {
		t.Fatalf("expected toast to expire, got %q", m.toast)
	}
}

func TestSpaceAfterFinishRestarts(t *testing.T) {
	m, clk, _ := newTestModel(t, "one two", &fakeStore{})
	m.Update(spaceKey)
	clk.Advance(time.Second)
	drainInbox(m)
	if m.sched.Snapshot().State != model.StateFinished {
		t.Fatalf("expected finished pass")
	}
	m.Update(spaceKey)
	snap := m.sched.Snapshot()
	if snap.State != model.StateRunning || snap.Cursor != 0 || m.result != nil {
		t.Fatalf("expected restarted pass, got %+v", snap.PacingState)
	}
	if m.toast != "Restarted" {
		t.Fatalf("expected restart toast, got %q", m.toast)
	}
}

func TestNothingToRead(t *testing.T) {
	m, _, _ := newTestModel(t, "   ", &fakeStore{})
	m.Update(spaceKey)
	if m.toast != "Nothing to read" {
		t.Fatalf("expected nothing to read toast, got %q", m.toast)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.sched.Snapshot().State != model.StateIdle {
		t.Fatalf("expected idle")
	}
}

func TestSpeedKeysClamp(t *testing.T) {
	m, _, _ := newTestModel(t, "one two", &fakeStore{})
	m.Update(keyRunes("+"))
	if got := m.sched.Snapshot().WPM; got != 325 {
		t.Fatalf("expected 325, got %v", got)
	}
	m.Update(keyRunes("-"))
	m.Update(keyRunes("-"))
	if got := m.sched.Snapshot().WPM; got != 275 {
		t.Fatalf("expected 275, got %v", got)
	}
	for i := 0; i < 40; i++ {
		m.Update(keyRunes("+"))
	}
	if got := m.sched.Snapshot().WPM; got != 1000 {
		t.Fatalf("expected clamp at 1000, got %v", got)
	}
}

func TestModeAndChunkKeys(t *testing.T) {
	m, clk, _ := newTestModel(t, "one two three four five six", &fakeStore{})
	m.Update(spaceKey)
	clk.Advance(450 * time.Millisecond)
	m.Update(keyRunes("m"))
	snap := m.sched.Snapshot()
	if snap.Mode != model.ModeFlow || snap.Cursor != 0 || snap.State != model.StateRunning {
		t.Fatalf("expected restarted flow pass, got %+v", snap.PacingState)
	}
	if out := m.renderBody(snap, 30, 5); out == "" {
		t.Fatalf("expected flow render")
	}

	m.Update(keyRunes("2"))
	snap = m.sched.Snapshot()
	if snap.ChunkSize != 2 || snap.Total != 3 {
		t.Fatalf("expected 3 two-word units, got %+v", snap.PacingState)
	}
	if m.toast != "Chunk: 2" {
		t.Fatalf("unexpected toast %q", m.toast)
	}
}

func TestRestoredToast(t *testing.T) {
	clk := clock.NewFake(time.Unix(1700000000, 0))
	m := NewModel(Options{
		Config:   model.Config{WPM: 300, ChunkSize: 1},
		Clock:    clk,
		Text:     "one two three",
		Cursor:   2,
		Restored: true,
	})
	if m.toast != "Restored previous session" {
		t.Fatalf("unexpected toast %q", m.toast)
	}
	if got := m.sched.Snapshot().Cursor; got != 2 {
		t.Fatalf("expected cursor 2, got %d", got)
	}
	if out := m.renderIdle(m.sched.Snapshot(), 0, 0); !strings.Contains(out, "1 units") {
		t.Fatalf("expected remaining units in idle view: %s", out)
	}
}

func TestQuitClosesScheduler(t *testing.T) {
	m, clk, _ := newTestModel(t, "one two three", &fakeStore{})
	m.Update(spaceKey)
	_, cmd := m.Update(keyRunes("q"))
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected quit message")
	}
	clk.Advance(time.Second)
	if got := m.sched.Snapshot().Cursor; got != 0 {
		t.Fatalf("closed scheduler must not advance, got cursor %d", got)
	}
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}

func TestSessionSaveFailureGoesToJournal(t *testing.T) {
	st := &fakeStore{insertErr: errors.New("disk full")}
	m, clk, journal := newTestModel(t, "one two three four five", st)

	m.Update(spaceKey)
	clk.Advance(time.Second)
	drainInbox(m)

	if m.result == nil {
		t.Fatalf("expected results view after the pass")
	}
	if !strings.Contains(m.toast, "disk full") {
		t.Fatalf("expected save failure toast, got %q", m.toast)
	}
	events, err := journal.ReadAll()
	if err != nil {
		t.Fatalf("read journal: %v", err)
	}
	found := false
	for _, ev := range events {
		if ev.Event == eventlog.EventError && strings.Contains(ev.Error, "disk full") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected save failure in journal, got %+v", events)
	}
}
