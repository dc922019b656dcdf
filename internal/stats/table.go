package stats

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// column describes one table column. Cells wider than Max cells are cut with
// an ellipsis; Max 0 leaves them whole.
type column struct {
	Header string
	Right  bool
	Max    int
}

// formatTable lays rows out under cols, measuring by terminal cell width so
// wide runes in device names line up.
func formatTable(cols []column, rows [][]string) []string {
	if len(cols) == 0 {
		return nil
	}
	cells := make([][]string, 0, len(rows)+1)
	header := make([]string, len(cols))
	for i, col := range cols {
		header[i] = col.Header
	}
	cells = append(cells, header)
	for _, row := range rows {
		line := make([]string, len(cols))
		for i, col := range cols {
			if i < len(row) {
				line[i] = clipCell(row[i], col.Max)
			}
		}
		cells = append(cells, line)
	}

	widths := make([]int, len(cols))
	for _, line := range cells {
		for i, cell := range line {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	lines := make([]string, 0, len(cells))
	for _, line := range cells {
		var b strings.Builder
		for i, cell := range line {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(padCell(cell, widths[i], cols[i].Right))
		}
		lines = append(lines, strings.TrimRight(b.String(), " "))
	}
	return lines
}

func clipCell(value string, limit int) string {
	if limit <= 0 || runewidth.StringWidth(value) <= limit {
		return value
	}
	return runewidth.Truncate(value, limit, "…")
}

func padCell(value string, width int, right bool) string {
	pad := width - runewidth.StringWidth(value)
	if pad <= 0 {
		return value
	}
	if right {
		return strings.Repeat(" ", pad) + value
	}
	return value + strings.Repeat(" ", pad)
}
