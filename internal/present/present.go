// Package present renders pacing snapshots. Every function is a pure
// function of its arguments; nothing here touches pacing state.
package present

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuiread/internal/pacer"
)

// Placeholder is shown by the SINGLE adapter when the cursor is out of range.
const Placeholder = "·"

var (
	// ReadStyle colours units the reader has already passed.
	ReadStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	// PendingStyle colours units still ahead.
	PendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	// FocusStyle renders the unit under the cursor.
	FocusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	// HighlightStyle marks the FLOW unit nearest the viewport centre.
	HighlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#1E1E1E")).Background(lipgloss.Color("#C89A3A"))
)

// Single returns the unit under the cursor or Placeholder.
func Single(s pacer.Snapshot) string {
	if unit := s.Unit(); unit != "" {
		return unit
	}
	return Placeholder
}

// RenderSingle centres the styled SINGLE unit in width columns.
func RenderSingle(s pacer.Snapshot, width int) string {
	unit := Single(s)
	style := FocusStyle
	if unit == Placeholder {
		style = ReadStyle
	}
	rendered := style.Render(unit)
	if width <= 0 {
		return rendered
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, rendered)
}

// Progress returns the fraction of the pass completed, 0..1.
func Progress(s pacer.Snapshot) float64 {
	if s.Total == 0 {
		return 0
	}
	p := s.Progress / float64(s.Total)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}
