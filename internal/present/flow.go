package present

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// FlowLine is the token sequence laid out as one line, units separated by a
// single space.
type FlowLine struct {
	units  []string
	starts []int
	widths []int
	width  int
}

// NewFlowLine measures the layout of units.
func NewFlowLine(units []string) FlowLine {
	line := FlowLine{
		units:  units,
		starts: make([]int, len(units)),
		widths: make([]int, len(units)),
	}
	col := 0
	for i, unit := range units {
		if i > 0 {
			col++
		}
		line.starts[i] = col
		line.widths[i] = runewidth.StringWidth(unit)
		col += line.widths[i]
	}
	line.width = col
	return line
}

// Width is the line width in terminal columns.
func (l FlowLine) Width() int {
	return l.width
}

// FlowColumnsPerUnit is the scroll distance covered while one unit is read.
// FLOW progress grows linearly with time at a rate set by WPM, so the line
// moves at a constant column rate proportional to the speed whatever its width.
const FlowColumnsPerUnit = 6

// Offset returns the column of the line's left edge within a viewport of the
// given width. At progress 0 the line sits just past the trailing edge; it
// moves left FlowColumnsPerUnit columns per unit of progress and, once it has
// fully exited the leading edge, wraps back to the trailing edge and loops.
func (l FlowLine) Offset(progress float64, viewport int) int {
	if viewport < 0 {
		viewport = 0
	}
	loop := float64(l.width + viewport)
	if len(l.units) == 0 || loop <= 0 || progress <= 0 || math.IsNaN(progress) {
		return viewport
	}
	distance := math.Mod(progress*FlowColumnsPerUnit, loop)
	return viewport - int(math.Floor(distance))
}

// Window returns the visible part of the line padded to viewport columns.
func (l FlowLine) Window(offset, viewport int) string {
	return l.render(offset, viewport, -1, lipgloss.Style{}, false)
}

// Render is Window with the highlighted unit styled. Pass highlight < 0 to
// render plain text.
func (l FlowLine) Render(offset, viewport, highlight int) string {
	return l.render(offset, viewport, highlight, HighlightStyle, true)
}

// CenterUnit returns the index of the unit under the viewport centre, or -1
// when the centre falls on a gap or outside the line.
func (l FlowLine) CenterUnit(offset, viewport int) int {
	col := viewport/2 - offset
	if col < 0 || col >= l.width {
		return -1
	}
	for i, start := range l.starts {
		if col >= start && col < start+l.widths[i] {
			return i
		}
	}
	return -1
}

func (l FlowLine) render(offset, viewport, highlight int, style lipgloss.Style, styled bool) string {
	if viewport <= 0 {
		return ""
	}
	var out strings.Builder
	x := 0
	pad := func(to int) {
		if to > x {
			out.WriteString(strings.Repeat(" ", to-x))
			x = to
		}
	}
	for i, unit := range l.units {
		pos := offset + l.starts[i]
		if pos >= viewport {
			break
		}
		if pos+l.widths[i] <= 0 {
			continue
		}
		visible, start := clipUnit(unit, pos, viewport)
		if visible == "" {
			continue
		}
		pad(start)
		if styled && i == highlight {
			out.WriteString(style.Render(visible))
		} else {
			out.WriteString(visible)
		}
		x = start + runewidth.StringWidth(visible)
	}
	pad(viewport)
	return out.String()
}

// clipUnit returns the runes of unit that lie fully within [0, viewport) when
// its first column is at pos, and the column where the visible part begins.
func clipUnit(unit string, pos, viewport int) (string, int) {
	var b strings.Builder
	start := -1
	col := pos
	for _, r := range unit {
		w := runewidth.RuneWidth(r)
		if col >= 0 && col+w <= viewport {
			if start < 0 {
				start = col
			}
			b.WriteRune(r)
		}
		col += w
		if col >= viewport {
			break
		}
	}
	return b.String(), start
}
