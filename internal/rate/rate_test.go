package rate

import (
	"math"
	"testing"
	"time"
)

func TestDelayAt300WPM(t *testing.T) {
	if got := Delay(300); got != 200*time.Millisecond {
		t.Fatalf("expected 200ms, got %v", got)
	}
	if got := MillisecondsPerUnit(300); got != 200 {
		t.Fatalf("expected 200, got %v", got)
	}
}

func TestMillisecondsPerUnitStrictlyDecreasing(t *testing.T) {
	prev := MillisecondsPerUnit(1)
	for wpm := 2.0; wpm <= 1000; wpm++ {
		cur := MillisecondsPerUnit(wpm)
		if cur >= prev {
			t.Fatalf("delay not decreasing at %v wpm: %v >= %v", wpm, cur, prev)
		}
		prev = cur
	}
	if MillisecondsPerUnit(1) < MillisecondsPerUnit(1000) {
		t.Fatalf("expected 1 wpm delay >= 1000 wpm delay")
	}
}

func TestClampWPMGuardsInvalidInput(t *testing.T) {
	for _, wpm := range []float64{0, -10, math.NaN(), math.Inf(1), math.Inf(-1)} {
		if got := ClampWPM(wpm); got != 1 {
			t.Fatalf("expected clamp of %v to 1, got %v", wpm, got)
		}
		if got := MillisecondsPerUnit(wpm); got != 60000 {
			t.Fatalf("expected 60000ms for %v, got %v", wpm, got)
		}
	}
}

func TestClampRange(t *testing.T) {
	cases := []struct {
		in, lo, hi, want float64
	}{
		{in: 10, lo: 60, hi: 1000, want: 60},
		{in: 5000, lo: 60, hi: 1000, want: 1000},
		{in: 250, lo: 60, hi: 1000, want: 250},
		{in: math.NaN(), lo: 60, hi: 1000, want: 60},
		{in: 250, lo: 0, hi: 0, want: 250},
	}
	for _, tc := range cases {
		if got := ClampRange(tc.in, tc.lo, tc.hi); got != tc.want {
			t.Fatalf("ClampRange(%v, %v, %v) = %v, want %v", tc.in, tc.lo, tc.hi, got, tc.want)
		}
	}
}

func TestUnitsPerMillisecondIdempotent(t *testing.T) {
	a := UnitsPerMillisecond(300, 1)
	for i := 0; i < 100; i++ {
		if b := UnitsPerMillisecond(300, 1); b != a {
			t.Fatalf("rate drifted: %v != %v", b, a)
		}
	}
	if a != 0.005 {
		t.Fatalf("expected 0.005 units/ms at 300 wpm, got %v", a)
	}
	if got := UnitsPerMillisecond(300, 0); got != a {
		t.Fatalf("expected default multiplier fallback, got %v", got)
	}
	if got := UnitsPerMillisecond(300, 2); got != 2*a {
		t.Fatalf("expected doubled rate, got %v", got)
	}
}

func TestFlowDurationMatchesSingle(t *testing.T) {
	if got := FlowDuration(5, 300, 1); got != time.Second {
		t.Fatalf("expected 1s, got %v", got)
	}
	if got := FlowDuration(0, 300, 1); got != 0 {
		t.Fatalf("expected 0 for empty pass, got %v", got)
	}
}

func TestEstimate(t *testing.T) {
	if got := Estimate(420, 200); got != 126*time.Second {
		t.Fatalf("expected 126s, got %v", got)
	}
}
