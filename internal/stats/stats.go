// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/tuiread/internal/model"
	"github.com/verte-zerg/tuiread/internal/session"
)

const sparkChars = " .:-=+*#%@"

// Band classifies a live speed against the target.
type Band int

const (
	// BandSlow is below 70% of the target.
	BandSlow Band = iota
	// BandNear is at least 70% of the target but below it.
	BandNear
	// BandOnTarget meets or exceeds the target.
	BandOnTarget
)

func (b Band) String() string {
	switch b {
	case BandSlow:
		return "slow"
	case BandNear:
		return "near"
	default:
		return "on target"
	}
}

// SpeedBand returns the meter band for a live speed.
func SpeedBand(live, target float64) Band {
	if target <= 0 || live >= target {
		return BandOnTarget
	}
	if live < target*0.7 {
		return BandSlow
	}
	return BandNear
}

// ReadingMetrics returns the realized speed of a session and its ratio to the
// target speed (0 when no target was set).
func ReadingMetrics(s model.SessionAggregate) (wpm, attainment float64) {
	wpm = float64(s.RealizedWPM)
	if wpm == 0 && s.Tokens > 0 {
		realized, _ := session.Metrics(s.Tokens, s.DurationMs)
		wpm = float64(realized)
	}
	if s.TargetWPM > 0 {
		attainment = wpm / s.TargetWPM
	}
	return wpm, attainment
}

// FormatDuration renders milliseconds as m:ss.
func FormatDuration(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	secs := int64(math.Round(float64(ms) / 1000))
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints a summary for sessions. Too-short passes are counted
// but excluded from speed averages.
func RenderSummary(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	var totalWPM, totalAttain, bestWPM float64
	var totalMs int64
	var tokens, measured, targeted int
	for _, s := range sessions {
		tokens += s.Tokens
		totalMs += s.DurationMs
		if s.TooShort {
			continue
		}
		wpm, attain := ReadingMetrics(s)
		measured++
		totalWPM += wpm
		bestWPM = math.Max(bestWPM, wpm)
		if s.TargetWPM > 0 {
			targeted++
			totalAttain += attain
		}
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", len(sessions)),
		fmt.Sprintf("Units read: %d", tokens),
		fmt.Sprintf("Reading time: %s", FormatDuration(totalMs)),
	}
	if measured > 0 {
		lines = append(lines,
			fmt.Sprintf("Avg WPM: %.0f", totalWPM/float64(measured)),
			fmt.Sprintf("Best WPM: %.0f", bestWPM),
		)
	}
	if targeted > 0 {
		lines = append(lines, fmt.Sprintf("Avg of target: %.0f%%", totalAttain/float64(targeted)*100))
	}
	if skipped := len(sessions) - measured; skipped > 0 {
		lines = append(lines, fmt.Sprintf("Too short to measure: %d", skipped))
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderCurves prints the realized speed curve against the target.
func RenderCurves(w io.Writer, sessions []model.SessionAggregate, window int) error {
	return RenderCurvesWithSize(w, sessions, window, 0, defaultPlotHeight, false)
}

// RenderCurvesWithSize prints the speed curve sized to a given total width.
func RenderCurvesWithSize(w io.Writer, sessions []model.SessionAggregate, window, totalWidth, height int, useColor bool) error {
	wpms := make([]float64, 0, len(sessions))
	targets := make([]float64, 0, len(sessions))
	for _, s := range sessions {
		if s.TooShort {
			continue
		}
		wpm, _ := ReadingMetrics(s)
		wpms = append(wpms, wpm)
		targets = append(targets, s.TargetWPM)
	}
	if len(wpms) == 0 {
		return nil
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	return PlotSeriesWithColor(w, "Reading Speed", []Series{
		{Name: fmt.Sprintf("WPM (avg of %d)", max(window, 1)), Values: MovingAverage(wpms, window)},
		{Name: "Target", Values: MovingAverage(targets, window)},
	}, width, height, useColor)
}

// maxDeviceCell bounds the device column so long host names keep rows on one line.
const maxDeviceCell = 16

// RenderSessionTable prints one row per session, oldest first.
func RenderSessionTable(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	cols := []column{
		{Header: "Ended"},
		{Header: "Device", Max: maxDeviceCell},
		{Header: "Mode"},
		{Header: "Units", Right: true},
		{Header: "Target", Right: true},
		{Header: "WPM", Right: true},
		{Header: "Time", Right: true},
	}
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		wpm := fmt.Sprintf("%d", s.RealizedWPM)
		if s.TooShort {
			wpm += "*"
		}
		rows = append(rows, []string{
			s.EndedAt.Local().Format("2006-01-02 15:04"),
			s.Device,
			s.Mode.String(),
			fmt.Sprintf("%d", s.Tokens),
			fmt.Sprintf("%.0f", s.TargetWPM),
			wpm,
			FormatDuration(s.DurationMs),
		})
	}
	for _, line := range formatTable(cols, rows) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
