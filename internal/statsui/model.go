// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/tuiread/internal/model"
	"github.com/verte-zerg/tuiread/internal/stats"
)

const (
	tabOverview = iota
	tabSessions
	tabTexts
)

const plotHeight = 8

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Model implements the Bubble Tea stats UI.
type Model struct {
	src stats.Source
	cfg model.StatsConfig

	report stats.Report
	errMsg string

	tabs      []string
	activeTab int
	overview  viewport.Model
	tables    map[int]*table.Model
	// textIDs holds the full id behind each row of the Texts tab.
	textIDs []string

	keys keyMap
	help help.Model

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string
}

// filterField maps one settings input onto the stats query.
type filterField struct {
	prompt string
	get    func(model.StatsConfig) string
	set    func(*model.StatsConfig, string) error
}

var filterFields = []filterField{
	{
		prompt: "Device: ",
		get:    func(c model.StatsConfig) string { return c.Device },
		set: func(c *model.StatsConfig, v string) error {
			c.Device = v
			return nil
		},
	},
	{
		prompt: "Text id: ",
		get:    func(c model.StatsConfig) string { return c.TextID },
		set: func(c *model.StatsConfig, v string) error {
			c.TextID = v
			return nil
		},
	},
	{
		prompt: "Since (YYYY-MM-DD): ",
		get: func(c model.StatsConfig) string {
			if c.Since == nil {
				return ""
			}
			return c.Since.Format("2006-01-02")
		},
		set: func(c *model.StatsConfig, v string) error {
			c.Since = nil
			if v == "" {
				return nil
			}
			parsed, err := time.ParseInLocation("2006-01-02", v, time.Local)
			if err != nil {
				return fmt.Errorf("invalid since date (expected YYYY-MM-DD)")
			}
			c.Since = &parsed
			return nil
		},
	},
	{
		prompt: "Last: ",
		get: func(c model.StatsConfig) string {
			if c.Last <= 0 {
				return ""
			}
			return strconv.Itoa(c.Last)
		},
		set: func(c *model.StatsConfig, v string) error {
			c.Last = 0
			if v == "" {
				return nil
			}
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return fmt.Errorf("invalid last value (use 0 or positive integer)")
			}
			c.Last = n
			return nil
		},
	},
	{
		prompt: "Curve window: ",
		get:    func(c model.StatsConfig) string { return strconv.Itoa(c.CurveWindow) },
		set: func(c *model.StatsConfig, v string) error {
			if v == "" {
				return nil
			}
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				return fmt.Errorf("invalid curve window (use integer >= 1)")
			}
			c.CurveWindow = n
			return nil
		},
	},
}

// NewModel constructs a stats UI model.
func NewModel(src stats.Source, cfg model.StatsConfig) *Model {
	m := &Model{
		src:      src,
		cfg:      cfg,
		tabs:     []string{"Overview", "Sessions", "Texts"},
		overview: viewport.New(0, 0),
		keys:     defaultKeyMap(),
		help:     help.New(),
	}
	sessions := newTable(sessionColumns())
	texts := newTable(textColumns())
	m.tables = map[int]*table.Model{tabSessions: &sessions, tabTexts: &texts}
	for _, field := range filterFields {
		m.filterInputs = append(m.filterInputs, newFilterInput(field.prompt))
	}
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.updateLayout()
		m.renderOverview()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Prev):
			m.moveTab(-1)
			return m, tea.ClearScreen
		case key.Matches(msg, m.keys.Next):
			m.moveTab(1)
			return m, tea.ClearScreen
		case key.Matches(msg, m.keys.Wider):
			m.cfg.CurveWindow = nextCurveWindow(m.cfg.CurveWindow)
			m.refreshReport()
			return m, nil
		case key.Matches(msg, m.keys.Narrower):
			m.cfg.CurveWindow = prevCurveWindow(m.cfg.CurveWindow)
			m.refreshReport()
			return m, nil
		case key.Matches(msg, m.keys.Filter):
			return m, m.startFilter()
		case key.Matches(msg, m.keys.Open) && m.activeTab == tabTexts:
			m.openSelectedText()
			return m, tea.ClearScreen
		case key.Matches(msg, m.keys.Clear) && m.cfg.TextID != "":
			m.cfg.TextID = ""
			m.refreshReport()
			return m, nil
		}
		if t, ok := m.tables[m.activeTab]; ok {
			var cmd tea.Cmd
			*t, cmd = t.Update(msg)
			return m, cmd
		}
		var cmd tea.Cmd
		m.overview, cmd = m.overview.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	headerHeight = lipgloss.Height(activeNavStyle.Render("X")) + 1
	footerHeight = 1
	if !m.filterMode && m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = max(1, m.height-headerHeight-footerHeight)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.overview.Width = m.width
	m.overview.Height = bodyHeight
	for _, t := range m.tables {
		t.SetWidth(m.width)
		t.SetHeight(max(1, bodyHeight-1))
	}
	for i := range m.filterInputs {
		m.filterInputs[i].Width = max(10, m.width-lipgloss.Width(m.filterInputs[i].Prompt)-2)
	}
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	m.setTab((m.activeTab + delta + count) % count)
}

func (m *Model) setTab(tab int) {
	m.activeTab = tab
	for idx, t := range m.tables {
		if idx == m.activeTab {
			t.Focus()
		} else {
			t.Blur()
		}
	}
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.src, m.cfg)
	if err != nil {
		m.errMsg = err.Error()
		m.overview.SetContent("Failed to load stats.")
		return
	}
	m.errMsg = ""
	m.report = report
	m.tables[tabSessions].SetRows(sessionRows(report.Sessions))
	rows, ids := textRows(report.Texts)
	m.tables[tabTexts].SetRows(rows)
	m.textIDs = ids
	m.updateLayout()
	m.renderOverview()
}

// openSelectedText narrows the report to the highlighted text and shows its sessions.
func (m *Model) openSelectedText() {
	idx := m.tables[tabTexts].Cursor()
	if idx < 0 || idx >= len(m.textIDs) {
		return
	}
	m.cfg.TextID = m.textIDs[idx]
	m.refreshReport()
	m.setTab(tabSessions)
}

func (m *Model) renderOverview() {
	if m.errMsg != "" {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.overview.SetContent(renderOverview(m.report, m.cfg.CurveWindow, width))
}

func (m *Model) renderHeader() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	tabs := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	return tabs + "\n" + headerStyle.Render(truncateLine(m.filterSummary(), m.width))
}

func (m *Model) filterSummary() string {
	device := m.cfg.Device
	if device == "" {
		device = "any"
	}
	since := "any"
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format("2006-01-02")
	}
	last := "all"
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	text := "any"
	if m.cfg.TextID != "" {
		text = shortID(m.cfg.TextID)
	}
	return fmt.Sprintf("Settings: device=%s  text=%s  since=%s  last=%s  window=%d", device, text, since, last, m.cfg.CurveWindow)
}

func (m *Model) renderBody() string {
	if m.filterMode {
		lines := []string{"Settings (enter to apply, esc to cancel)"}
		for _, input := range m.filterInputs {
			lines = append(lines, input.View())
		}
		if m.filterError != "" {
			lines = append(lines, errorStyle.Render(m.filterError))
		}
		return strings.Join(lines, "\n")
	}
	if t, ok := m.tables[m.activeTab]; ok {
		if len(t.Rows()) == 0 {
			return "No sessions found."
		}
		return tableMutedStyle.Render(t.View())
	}
	return m.overview.View()
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
	}
	footer := m.help.View(m.keys)
	if m.errMsg != "" {
		return footer + "\n" + errorStyle.Render(m.errMsg)
	}
	return footer
}

func renderOverview(report stats.Report, window, width int) string {
	if len(report.Sessions) == 0 {
		return "No sessions found."
	}
	var summary bytes.Buffer
	if err := stats.RenderSummary(&summary, report.Sessions); err != nil {
		return fmt.Sprintf("Failed to render summary: %v", err)
	}
	cards := summaryCards(report.Sessions)
	var curves bytes.Buffer
	if err := stats.RenderCurvesWithSize(&curves, report.Sessions, window, width, plotHeight, true); err != nil {
		return fmt.Sprintf("Failed to render curves: %v", err)
	}
	recent := make([]float64, 0, len(report.Window))
	for _, s := range report.Window {
		if !s.TooShort {
			recent = append(recent, float64(s.RealizedWPM))
		}
	}
	spark := headerStyle.Render("Recent: " + stats.Sparkline(recent))
	return strings.TrimRight(cards+"\n"+spark+"\n\n"+curves.String(), "\n")
}

func summaryCards(sessions []model.SessionAggregate) string {
	var best, total float64
	var measured int
	var readMs int64
	for _, s := range sessions {
		readMs += s.DurationMs
		if s.TooShort {
			continue
		}
		wpm, _ := stats.ReadingMetrics(s)
		measured++
		total += wpm
		best = max(best, wpm)
	}
	avg := 0.0
	if measured > 0 {
		avg = total / float64(measured)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		metricCard("Sessions", strconv.Itoa(len(sessions))),
		metricCard("Avg WPM", fmt.Sprintf("%.0f", avg)),
		metricCard("Best WPM", fmt.Sprintf("%.0f", best)),
		metricCard("Reading time", stats.FormatDuration(readMs)),
	)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func sessionColumns() []table.Column {
	return []table.Column{
		{Title: "Ended", Width: 16},
		{Title: "Device", Width: 12},
		{Title: "Mode", Width: 6},
		{Title: "Chunk", Width: 5},
		{Title: "Units", Width: 6},
		{Title: "Target", Width: 6},
		{Title: "WPM", Width: 6},
		{Title: "Time", Width: 6},
	}
}

func sessionRows(sessions []model.SessionAggregate) []table.Row {
	rows := make([]table.Row, 0, len(sessions))
	// Most recent first.
	for i := len(sessions) - 1; i >= 0; i-- {
		s := sessions[i]
		wpm := strconv.Itoa(s.RealizedWPM)
		if s.TooShort {
			wpm += "*"
		}
		rows = append(rows, table.Row{
			s.EndedAt.Local().Format("2006-01-02 15:04"),
			s.Device,
			s.Mode.String(),
			strconv.Itoa(s.ChunkSize),
			strconv.Itoa(s.Tokens),
			fmt.Sprintf("%.0f", s.TargetWPM),
			wpm,
			stats.FormatDuration(s.DurationMs),
		})
	}
	return rows
}

func textColumns() []table.Column {
	return []table.Column{
		{Title: "Text", Width: 16},
		{Title: "Sessions", Width: 8},
		{Title: "Best WPM", Width: 8},
		{Title: "Last read", Width: 16},
	}
}

func textRows(texts []model.TextAggregate) ([]table.Row, []string) {
	rows := make([]table.Row, 0, len(texts))
	ids := make([]string, 0, len(texts))
	for _, t := range stats.TopTexts(texts, len(texts)) {
		ids = append(ids, t.TextID)
		rows = append(rows, table.Row{
			shortID(t.TextID),
			strconv.Itoa(t.Sessions),
			strconv.Itoa(t.BestWPM),
			t.LastEndedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	return rows, ids
}

func newTable(cols []table.Column) table.Model {
	t := table.New(table.WithColumns(cols), table.WithHeight(1))
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		PaddingLeft(0)
	styles.Cell = styles.Cell.PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	t.SetStyles(styles)
	return t
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) startFilter() tea.Cmd {
	m.filterMode = true
	m.filterError = ""
	for i, field := range filterFields {
		m.filterInputs[i].SetValue(field.get(m.cfg))
	}
	return m.setFilterIndex(0)
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		return m, nil
	case tea.KeyEnter:
		cfg, err := parseFilter(m.filterInputs, m.cfg)
		if err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.cfg = cfg
		m.filterMode = false
		m.refreshReport()
		return m, nil
	case tea.KeyTab:
		return m, m.setFilterIndex(m.filterIndex + 1)
	case tea.KeyShiftTab:
		return m, m.setFilterIndex(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) setFilterIndex(idx int) tea.Cmd {
	count := len(m.filterInputs)
	m.filterIndex = (idx + count) % count
	var cmd tea.Cmd
	for i := range m.filterInputs {
		if i == m.filterIndex {
			cmd = m.filterInputs[i].Focus()
		} else {
			m.filterInputs[i].Blur()
		}
	}
	return cmd
}

func parseFilter(inputs []textinput.Model, prev model.StatsConfig) (model.StatsConfig, error) {
	cfg := prev
	for i, field := range filterFields {
		if err := field.set(&cfg, strings.TrimSpace(inputs[i].Value())); err != nil {
			return prev, err
		}
	}
	return cfg, nil
}

func nextCurveWindow(n int) int {
	if n < 5 {
		return 5
	}
	return ((n / 5) + 1) * 5
}

func prevCurveWindow(n int) int {
	if n <= 5 {
		return 1
	}
	if n%5 == 0 {
		return n - 5
	}
	return (n / 5) * 5
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}

// shortID abbreviates a text hash for display.
func shortID(id string) string {
	if len(id) <= 12 {
		return id
	}
	return id[:12]
}
