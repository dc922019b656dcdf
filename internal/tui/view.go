package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuiread/internal/model"
	"github.com/verte-zerg/tuiread/internal/pacer"
	"github.com/verte-zerg/tuiread/internal/present"
	statsPkg "github.com/verte-zerg/tuiread/internal/stats"
)

var (
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	toastStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	bandStyles  = map[statsPkg.Band]lipgloss.Style{
		statsPkg.BandSlow:     lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")),
		statsPkg.BandNear:     lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")),
		statsPkg.BandOnTarget: lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")),
	}
)

// View implements tea.Model.
func (m *Model) View() string {
	snap := m.sched.Snapshot()
	if m.width == 0 || m.height == 0 {
		return m.renderBody(snap, 0, 0) + "\n" + m.renderFooter(snap)
	}
	contentWidth := int(float64(m.width) * 0.70)
	if contentWidth < 1 {
		contentWidth = 1
	}

	footer := []string{m.renderFooter(snap)}
	if m.toast != "" {
		footer = append(footer, toastStyle.Render(m.toast))
	}
	footer = append(footer, m.help.View(m.keys))
	if m.height <= len(footer) {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.renderBody(snap, contentWidth, m.height))
	}

	bodyHeight := m.height - len(footer)
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, m.renderBody(snap, contentWidth, bodyHeight))
	lines := []string{body}
	for _, line := range footer {
		lines = append(lines, lipgloss.PlaceHorizontal(m.width, lipgloss.Center, line))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderBody(snap pacer.Snapshot, width, height int) string {
	switch {
	case snap.State == model.StateFinished && m.result != nil:
		return m.renderResult(snap)
	case snap.State == model.StateIdle:
		return m.renderIdle(snap, width, height)
	case snap.Mode == model.ModeFlow:
		out := m.renderFlow(snap, width)
		if snap.State == model.StatePaused {
			out += "\n" + footerStyle.Render("paused")
		}
		return out
	default:
		out := present.RenderSingle(snap, width)
		if snap.State == model.StatePaused {
			out += "\n" + lipgloss.PlaceHorizontal(max(width, 1), lipgloss.Center, footerStyle.Render("paused"))
		}
		return out
	}
}

func (m *Model) renderIdle(snap pacer.Snapshot, width, height int) string {
	if snap.Total == 0 {
		return footerStyle.Render("Nothing to read")
	}
	info := fmt.Sprintf("%d units · about %s at %.0f WPM · %s",
		snap.Total-snap.Cursor,
		statsPkg.FormatDuration(estimate(remaining(snap), m.config.FlowMultiplier).Milliseconds()),
		snap.WPM,
		snap.Mode,
	)
	lines := []string{titleStyle.Render(info), footerStyle.Render("press space to start")}
	if width <= 0 {
		return strings.Join(lines, "\n")
	}
	preview := strings.Split(present.Page(snap.Tokens, snap.Cursor, width), "\n")
	if limit := height - len(lines) - 2; limit > 0 && len(preview) > limit {
		preview = preview[:limit]
	}
	return strings.Join(append(append(lines, ""), preview...), "\n")
}

func (m *Model) renderFlow(snap pacer.Snapshot, width int) string {
	if width <= 0 {
		width = 40
	}
	line := m.flowFor(snap)
	offset := line.Offset(snap.Progress, width)
	highlight := -1
	if m.highlight {
		highlight = line.CenterUnit(offset, width)
	}
	return line.Render(offset, width, highlight)
}

func (m *Model) flowFor(snap pacer.Snapshot) present.FlowLine {
	k := flowKey{total: snap.Total, chunk: snap.ChunkSize, text: snap.TextID}
	if k != m.flowKey || m.flowLine.Width() == 0 {
		m.flowLine = present.NewFlowLine(snap.Tokens)
		m.flowKey = k
	}
	return m.flowLine
}

func (m *Model) renderResult(snap pacer.Snapshot) string {
	rec := m.result
	expected := estimate(snap, m.config.FlowMultiplier)
	lines := []string{
		titleStyle.Render("Finished"),
		m.renderMeter(float64(rec.RealizedWPM), rec.TargetWPM),
		fmt.Sprintf("Time %s · estimate %s", statsPkg.FormatDuration(rec.DurationMs), statsPkg.FormatDuration(expected.Milliseconds())),
		fmt.Sprintf("%d units · %s · chunk %d", rec.Tokens, rec.Mode, rec.ChunkSize),
	}
	if rec.TooShort {
		lines = append(lines, footerStyle.Render("too short to measure"))
	}
	lines = append(lines, "", footerStyle.Render("enter to read again · q to quit"))
	return strings.Join(lines, "\n")
}

// renderMeter colours wpm by how close it is to target.
func (m *Model) renderMeter(wpm, target float64) string {
	text := fmt.Sprintf("%.0f WPM", wpm)
	if target > 0 {
		text += fmt.Sprintf(" / target %.0f", target)
	}
	style, ok := bandStyles[statsPkg.SpeedBand(wpm, target)]
	if !ok {
		return text
	}
	return style.Render(text)
}

func (m *Model) renderFooter(snap pacer.Snapshot) string {
	percent := int(present.Progress(snap) * 100)
	segments := []string{
		m.bar.ViewAs(present.Progress(snap)),
		footerStyle.Render(fmt.Sprintf("Progress %d%%", percent)),
		m.renderMeter(m.liveWPM(snap), m.target(snap)),
		footerStyle.Render(fmt.Sprintf("%s ×%d", snap.Mode, snap.ChunkSize)),
	}
	if m.hasLast {
		segments = append(segments, footerStyle.Render(fmt.Sprintf("Last %d WPM", m.lastWPM)))
	}
	if m.allDuration > 0 {
		segments = append(segments, footerStyle.Render(fmt.Sprintf("All-time %.1f WPM", m.allWPM)))
	}
	return strings.Join(segments, "  ")
}

func remaining(snap pacer.Snapshot) pacer.Snapshot {
	snap.Total -= snap.Cursor
	return snap
}
