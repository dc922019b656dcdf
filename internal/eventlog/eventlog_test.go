package eventlog

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAppendAndReadAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "events.jsonl")
	l, err := New(path)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	at := time.Unix(1700000000, 0).UTC()
	if err := l.Append(Event{Time: at, Event: EventPassStarted, SessionID: "s1", WPM: 300}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := l.Append(Event{Event: EventPassFinished, SessionID: "s1", RealizedWPM: 298}); err != nil {
		t.Fatalf("append: %v", err)
	}

	events, err := l.ReadAll()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if !events[0].Time.Equal(at) || events[0].Event != EventPassStarted || events[0].WPM != 300 {
		t.Fatalf("unexpected first event: %+v", events[0])
	}
	if events[1].Time.IsZero() {
		t.Fatalf("expected time to be filled in")
	}
	if events[1].RealizedWPM != 298 {
		t.Fatalf("unexpected second event: %+v", events[1])
	}
}

func TestReadAllMissingFile(t *testing.T) {
	l, err := New(filepath.Join(t.TempDir(), "events.jsonl"))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	events, err := l.ReadAll()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected no events, got %d", len(events))
	}
}

func TestReadAllRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	if err := os.WriteFile(path, []byte("{\"event\":\"paused\"}\n\nnot json\n"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	l, err := New(path)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := l.ReadAll(); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestNilLoggerDiscards(t *testing.T) {
	var l *Logger
	if err := l.Append(Event{Event: EventError}); err != nil {
		t.Fatalf("nil append: %v", err)
	}
	if events, err := l.ReadAll(); err != nil || len(events) != 0 {
		t.Fatalf("nil read: %v %v", events, err)
	}
}
