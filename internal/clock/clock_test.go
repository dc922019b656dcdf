package clock

import (
	"testing"
	"time"
)

func TestFakeFiresInDeadlineOrder(t *testing.T) {
	c := NewFake(time.Unix(0, 0))
	var order []int
	c.AfterFunc(30*time.Millisecond, func() { order = append(order, 3) })
	c.AfterFunc(10*time.Millisecond, func() { order = append(order, 1) })
	c.AfterFunc(20*time.Millisecond, func() { order = append(order, 2) })

	c.Advance(25 * time.Millisecond)
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("unexpected order after 25ms: %v", order)
	}
	if got := c.Now(); !got.Equal(time.Unix(0, 0).Add(25 * time.Millisecond)) {
		t.Fatalf("unexpected now: %v", got)
	}
	c.Advance(5 * time.Millisecond)
	if len(order) != 3 {
		t.Fatalf("expected third timer to fire, got %v", order)
	}
}

func TestFakeStopPreventsFire(t *testing.T) {
	c := NewFake(time.Unix(0, 0))
	fired := false
	timer := c.AfterFunc(time.Millisecond, func() { fired = true })
	if !timer.Stop() {
		t.Fatalf("expected Stop to report an active timer")
	}
	if timer.Stop() {
		t.Fatalf("expected second Stop to report false")
	}
	c.Advance(time.Second)
	if fired {
		t.Fatalf("stopped timer fired")
	}
	if c.Pending() != 0 {
		t.Fatalf("expected no pending timers, got %d", c.Pending())
	}
}

func TestFakeRunsTimersScheduledDuringAdvance(t *testing.T) {
	c := NewFake(time.Unix(0, 0))
	count := 0
	var step func()
	step = func() {
		count++
		c.AfterFunc(10*time.Millisecond, step)
	}
	c.AfterFunc(10*time.Millisecond, step)
	c.Advance(55 * time.Millisecond)
	if count != 5 {
		t.Fatalf("expected 5 chained fires, got %d", count)
	}
	if c.Pending() != 1 {
		t.Fatalf("expected one pending timer, got %d", c.Pending())
	}
}

func TestFakeCallbackSeesDeadlineAsNow(t *testing.T) {
	start := time.Unix(0, 0)
	c := NewFake(start)
	var seen time.Time
	c.AfterFunc(40*time.Millisecond, func() { seen = c.Now() })
	c.Advance(time.Second)
	if !seen.Equal(start.Add(40 * time.Millisecond)) {
		t.Fatalf("expected callback at deadline, got %v", seen.Sub(start))
	}
}
