package statsui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tuiread/internal/model"
)

type fakeSource struct {
	sessions []model.SessionAggregate
	texts    []model.TextAggregate
	err      error
	calls    int
	lastCfg  model.StatsConfig
}

func (f *fakeSource) ListSessions(_ context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error) {
	f.calls++
	f.lastCfg = cfg
	return f.sessions, f.err
}

func (f *fakeSource) ListTexts(_ context.Context, _ string) ([]model.TextAggregate, error) {
	return f.texts, f.err
}

func sampleSource() *fakeSource {
	base := time.Unix(1700000000, 0)
	return &fakeSource{
		sessions: []model.SessionAggregate{
			{SessionID: "a", TextID: "t1", Device: "laptop", Mode: model.ModeSingle, ChunkSize: 1, EndedAt: base, Tokens: 420, TargetWPM: 150, RealizedWPM: 140, DurationMs: 180000},
			{SessionID: "b", TextID: "t1", Device: "laptop", Mode: model.ModeFlow, ChunkSize: 2, EndedAt: base.Add(time.Hour), Tokens: 300, TargetWPM: 300, RealizedWPM: 300, DurationMs: 60000},
		},
		texts: []model.TextAggregate{{TextID: "t1", Sessions: 2, BestWPM: 300, LastEndedAt: base.Add(time.Hour)}},
	}
}

func sized(m *Model) *Model {
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(*Model)
}

func TestOverviewRendersSummary(t *testing.T) {
	m := sized(NewModel(sampleSource(), model.StatsConfig{CurveWindow: 5}))
	view := m.View()
	for _, want := range []string{"Overview", "Sessions", "Texts", "Avg WPM", "220"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
}

func TestSessionsTabListsMostRecentFirst(t *testing.T) {
	m := sized(NewModel(sampleSource(), model.StatsConfig{CurveWindow: 5}))
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = next.(*Model)
	if m.activeTab != tabSessions {
		t.Fatalf("expected sessions tab, got %d", m.activeTab)
	}
	rows := m.tables[tabSessions].Rows()
	if len(rows) != 2 || rows[0][2] != "flow" || rows[1][2] != "single" {
		t.Fatalf("unexpected rows: %v", rows)
	}
}

func TestCurveWindowKeysRefresh(t *testing.T) {
	src := sampleSource()
	m := sized(NewModel(src, model.StatsConfig{CurveWindow: 5}))
	calls := src.calls
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("=")})
	m = next.(*Model)
	if m.cfg.CurveWindow != 10 || src.calls != calls+1 {
		t.Fatalf("expected refresh with window 10, got window=%d calls=%d", m.cfg.CurveWindow, src.calls)
	}
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("-")})
	m = next.(*Model)
	if m.cfg.CurveWindow != 5 {
		t.Fatalf("expected window 5, got %d", m.cfg.CurveWindow)
	}
}

func TestLoadErrorShown(t *testing.T) {
	src := &fakeSource{err: errors.New("database is locked")}
	m := sized(NewModel(src, model.StatsConfig{}))
	if !strings.Contains(m.View(), "database is locked") {
		t.Fatalf("expected error in footer")
	}
}

func TestCurveWindowSteps(t *testing.T) {
	if nextCurveWindow(1) != 5 || nextCurveWindow(5) != 10 || nextCurveWindow(7) != 10 {
		t.Fatalf("unexpected next window")
	}
	if prevCurveWindow(5) != 1 || prevCurveWindow(10) != 5 || prevCurveWindow(7) != 5 {
		t.Fatalf("unexpected prev window")
	}
}

func TestOpenTextFiltersSessions(t *testing.T) {
	src := sampleSource()
	m := sized(NewModel(src, model.StatsConfig{CurveWindow: 5}))
	m.moveTab(2)
	if m.activeTab != tabTexts {
		t.Fatalf("expected texts tab, got %d", m.activeTab)
	}
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(*Model)
	if m.activeTab != tabSessions || m.cfg.TextID != "t1" || src.lastCfg.TextID != "t1" {
		t.Fatalf("expected sessions for t1, got tab=%d cfg=%+v", m.activeTab, src.lastCfg)
	}
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	m = next.(*Model)
	if m.cfg.TextID != "" || src.lastCfg.TextID != "" {
		t.Fatalf("expected text filter cleared")
	}
}

func TestParseFilter(t *testing.T) {
	m := NewModel(sampleSource(), model.StatsConfig{CurveWindow: 5})
	m.startFilter()
	values := []string{"laptop", "abc", "2024-01-02", "3", "7"}
	for i, v := range values {
		m.filterInputs[i].SetValue(v)
	}
	cfg, err := parseFilter(m.filterInputs, m.cfg)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Device != "laptop" || cfg.TextID != "abc" || cfg.Last != 3 || cfg.CurveWindow != 7 || cfg.Since == nil {
		t.Fatalf("unexpected cfg %+v", cfg)
	}

	m.filterInputs[3].SetValue("-1")
	if _, err := parseFilter(m.filterInputs, m.cfg); err == nil {
		t.Fatalf("expected error for negative last")
	}
}
