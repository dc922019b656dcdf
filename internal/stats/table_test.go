package stats

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/tuiread/internal/model"
)

func TestFormatTableAlignsColumns(t *testing.T) {
	cols := []column{{Header: "Mode"}, {Header: "Target", Right: true}, {Header: "WPM", Right: true}}
	rows := [][]string{
		{"single", "300", "298"},
		{"flow", "1000", "87*"},
	}

	lines := formatTable(cols, rows)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Mode   Target WPM" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "single    300 298" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "flow     1000 87*" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableWideCells(t *testing.T) {
	lines := formatTable([]column{{Header: "Device"}, {Header: "N"}}, [][]string{{"平板", "1"}})
	if lines[1] != "平板   1" {
		t.Fatalf("expected wide runes measured by cell width, got %q", lines[1])
	}
}

func TestFormatTableClipsLongCells(t *testing.T) {
	cols := []column{{Header: "Device", Max: 8}, {Header: "N", Right: true}}
	lines := formatTable(cols, [][]string{{"workstation-upstairs", "3"}, {"web"}})
	if lines[1] != "worksta… 3" {
		t.Fatalf("expected clipped device cell, got %q", lines[1])
	}
	if lines[2] != "web" {
		t.Fatalf("expected short row padded and trimmed, got %q", lines[2])
	}
}

func TestRenderSessionTable(t *testing.T) {
	var buf bytes.Buffer
	sessions := []model.SessionAggregate{{
		SessionID:   "a",
		Device:      "laptop",
		Mode:        model.ModeFlow,
		EndedAt:     time.Unix(1700000000, 0),
		Tokens:      420,
		TargetWPM:   150,
		RealizedWPM: 140,
		DurationMs:  180000,
	}, {
		SessionID:   "b",
		Device:      "laptop",
		Mode:        model.ModeSingle,
		EndedAt:     time.Unix(1700000100, 0),
		Tokens:      3,
		TargetWPM:   300,
		RealizedWPM: 3,
		TooShort:    true,
	}}
	if err := RenderSessionTable(&buf, sessions); err != nil {
		t.Fatalf("render: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %d", len(lines))
	}
	if !strings.Contains(lines[1], "flow") || !strings.HasSuffix(lines[1], "140 3:00") {
		t.Fatalf("unexpected first row: %q", lines[1])
	}
	if !strings.Contains(lines[2], "3*") {
		t.Fatalf("expected too-short marker: %q", lines[2])
	}
}
