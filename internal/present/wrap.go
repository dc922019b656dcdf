package present

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

type styledUnit struct {
	s       string
	width   int
	isSpace bool
}

// Page renders the whole token sequence as wrapped text: units before the
// cursor dimmed, the current unit focused, the rest pending. Used for the
// idle preview and the results screen.
func Page(units []string, cursor, width int) string {
	return wrapStyledUnits(buildStyledUnits(units, cursor), width)
}

func buildStyledUnits(units []string, cursor int) []styledUnit {
	out := make([]styledUnit, 0, len(units)*2)
	for i, unit := range units {
		if i > 0 {
			out = append(out, styledUnit{s: " ", width: 1, isSpace: true})
		}
		style := PendingStyle
		switch {
		case i < cursor:
			style = ReadStyle
		case i == cursor:
			style = FocusStyle
		}
		// Chunks contain spaces; split them so wrapping can break inside a chunk.
		for j, word := range strings.Split(unit, " ") {
			if j > 0 {
				out = append(out, styledUnit{s: style.Render(" "), width: 1, isSpace: true})
			}
			out = append(out, styledUnit{s: style.Render(word), width: runewidth.StringWidth(word)})
		}
	}
	return out
}

func renderStyledUnits(items []styledUnit) string {
	var b strings.Builder
	for _, item := range items {
		b.WriteString(item.s)
	}
	return b.String()
}

func wrapStyledUnits(items []styledUnit, width int) string {
	if width <= 0 {
		return renderStyledUnits(items)
	}
	var out strings.Builder
	line := make([]styledUnit, 0, len(items))
	lineWidth := 0
	lastSpaceIdx := -1

	for i := 0; i < len(items); {
		item := items[i]
		if lineWidth+item.width > width && len(line) > 0 {
			if lastSpaceIdx >= 0 {
				out.WriteString(renderStyledUnits(line[:lastSpaceIdx]))
				out.WriteRune('\n')
				line = append([]styledUnit{}, line[lastSpaceIdx+1:]...)
				lineWidth = lineWidthOf(line)
				lastSpaceIdx = lastSpaceIndex(line)
			} else {
				out.WriteString(renderStyledUnits(line))
				out.WriteRune('\n')
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
			}
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	out.WriteString(renderStyledUnits(line))
	return out.String()
}

func lineWidthOf(line []styledUnit) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastSpaceIndex(line []styledUnit) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}
