package present

import (
	"testing"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/tuiread/internal/model"
	"github.com/verte-zerg/tuiread/internal/pacer"
)

func snapshot(tokens []string, cursor int, progress float64) pacer.Snapshot {
	return pacer.Snapshot{
		PacingState: model.PacingState{Cursor: cursor, Progress: progress, Total: len(tokens)},
		Tokens:      tokens,
	}
}

func TestSingle(t *testing.T) {
	tokens := []string{"one", "two"}
	if got := Single(snapshot(tokens, 1, 1)); got != "two" {
		t.Fatalf("expected two, got %q", got)
	}
	if got := Single(snapshot(tokens, 2, 2)); got != Placeholder {
		t.Fatalf("expected placeholder at end, got %q", got)
	}
	if got := Single(snapshot(nil, 0, 0)); got != Placeholder {
		t.Fatalf("expected placeholder for empty text, got %q", got)
	}
}

func TestRenderSingleWidth(t *testing.T) {
	out := RenderSingle(snapshot([]string{"word"}, 0, 0), 20)
	if w := runewidth.StringWidth(stripANSI(out)); w != 20 {
		t.Fatalf("expected 20 columns, got %d (%q)", w, out)
	}
}

func TestProgress(t *testing.T) {
	if got := Progress(snapshot([]string{"a", "b", "c", "d"}, 1, 1.5)); got != 0.375 {
		t.Fatalf("expected 0.375, got %v", got)
	}
	if got := Progress(snapshot(nil, 0, 0)); got != 0 {
		t.Fatalf("expected 0 for empty text, got %v", got)
	}
}

func TestFlowLineLayout(t *testing.T) {
	line := NewFlowLine([]string{"ab", "c", "def"})
	if line.Width() != 8 {
		t.Fatalf("expected width 8, got %d", line.Width())
	}
	if got := line.Window(0, 10); got != "ab c def  " {
		t.Fatalf("unexpected window %q", got)
	}
	if got := line.Window(-1, 5); got != "b c d" {
		t.Fatalf("unexpected clipped window %q", got)
	}
	if got := line.Window(7, 10); got != "       ab " {
		t.Fatalf("unexpected trailing window %q", got)
	}
	if got := line.Window(10, 10); got != "          " {
		t.Fatalf("expected blank window before entry, got %q", got)
	}
}

func TestFlowLineWideRunes(t *testing.T) {
	line := NewFlowLine([]string{"日本"})
	if line.Width() != 4 {
		t.Fatalf("expected width 4, got %d", line.Width())
	}
	if got := line.Window(-1, 5); got != " 本  " {
		t.Fatalf("unexpected window %q", got)
	}
}

func TestFlowLineOffsetWraps(t *testing.T) {
	// Width 8 in a viewport of 10: one loop is 18 columns, 6 per unit.
	line := NewFlowLine([]string{"ab", "c", "def"})
	cases := []struct {
		progress float64
		want     int
	}{
		{0, 10},
		{1, 4},
		{1.5, 1},
		{2.5, -5},
		{3, 10},
		{4, 4},
	}
	for _, tc := range cases {
		if got := line.Offset(tc.progress, 10); got != tc.want {
			t.Fatalf("offset(%v): expected %d, got %d", tc.progress, tc.want, got)
		}
	}
	prev := line.Offset(0, 10)
	for p := 0.25; p < 3; p += 0.25 {
		off := line.Offset(p, 10)
		if off > prev {
			t.Fatalf("offset must move left before the wrap: %d -> %d at %v", prev, off, p)
		}
		prev = off
	}
	if got := NewFlowLine(nil).Offset(2, 10); got != 10 {
		t.Fatalf("empty line must sit at the trailing edge, got %d", got)
	}
}

func TestFlowLineVelocityIndependentOfWidth(t *testing.T) {
	short := NewFlowLine([]string{"a", "b"})
	long := NewFlowLine([]string{"considerably", "longer", "words", "in", "this", "line"})
	for _, p := range []float64{0.5, 1, 2} {
		if s, l := short.Offset(p, 40), long.Offset(p, 40); s != l {
			t.Fatalf("progress %v: short line at %d, long line at %d", p, s, l)
		}
	}
	// A pass longer than one loop wraps and keeps scrolling.
	loopUnits := float64(short.Width()+40) / FlowColumnsPerUnit
	if got := short.Offset(loopUnits+1, 40); got != 40-FlowColumnsPerUnit {
		t.Fatalf("expected wrapped offset %d, got %d", 40-FlowColumnsPerUnit, got)
	}
}

func TestFlowLineCenterUnit(t *testing.T) {
	line := NewFlowLine([]string{"ab", "c", "def"})
	if got := line.CenterUnit(0, 10); got != 2 {
		t.Fatalf("expected unit 2 under centre, got %d", got)
	}
	if got := line.CenterUnit(0, 4); got != -1 {
		t.Fatalf("expected gap under centre, got %d", got)
	}
	if got := line.CenterUnit(10, 10); got != -1 {
		t.Fatalf("expected no unit before entry, got %d", got)
	}
}

func TestFlowLineRenderHighlight(t *testing.T) {
	line := NewFlowLine([]string{"ab", "c", "def"})
	want := HighlightStyle.Render("ab") + " c def  "
	if got := line.Render(0, 10, 0); got != want {
		t.Fatalf("unexpected highlight render %q", got)
	}
	if got := line.Render(0, 10, -1); got != line.Window(0, 10) {
		t.Fatalf("negative highlight must render plain text")
	}
}

func TestPageStylesByCursor(t *testing.T) {
	got := Page([]string{"one", "two"}, 1, 0)
	want := ReadStyle.Render("one") + " " + FocusStyle.Render("two")
	if got != want {
		t.Fatalf("unexpected page %q", got)
	}
}

func TestPageWraps(t *testing.T) {
	got := Page([]string{"aaa", "bbb"}, 5, 4)
	want := ReadStyle.Render("aaa") + "\n" + ReadStyle.Render("bbb")
	if got != want {
		t.Fatalf("unexpected wrapped page %q", got)
	}
	got = Page([]string{"one two"}, 0, 4)
	want = FocusStyle.Render("one") + "\n" + FocusStyle.Render("two")
	if got != want {
		t.Fatalf("chunks must wrap between words, got %q", got)
	}
}

func stripANSI(s string) string {
	out := make([]rune, 0, len(s))
	inEscape := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEscape = true
		case inEscape && ((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')):
			inEscape = false
		case !inEscape:
			out = append(out, r)
		}
	}
	return string(out)
}
