// Package rate converts words-per-minute settings into pacing intervals.
package rate

import (
	"math"
	"time"
)

const (
	// DefaultFlowMultiplier scales FLOW scroll velocity relative to the nominal rate.
	DefaultFlowMultiplier = 1.0
	// PracticalMinWPM is the lowest speed exposed to the reader.
	PracticalMinWPM = 60
	// PracticalMaxWPM is the highest speed exposed to the reader.
	PracticalMaxWPM = 1000

	msPerMinute = 60000.0
)

// ClampWPM guards against zero, negative and non-finite speeds.
func ClampWPM(wpm float64) float64 {
	if math.IsNaN(wpm) || math.IsInf(wpm, 0) || wpm < 1 {
		return 1
	}
	return wpm
}

// ClampRange clamps wpm into [lo, hi]. Invalid bounds fall back to the practical range.
func ClampRange(wpm, lo, hi float64) float64 {
	if lo <= 0 || math.IsNaN(lo) {
		lo = PracticalMinWPM
	}
	if hi < lo || math.IsNaN(hi) || math.IsInf(hi, 0) {
		hi = PracticalMaxWPM
		if hi < lo {
			hi = lo
		}
	}
	if math.IsNaN(wpm) {
		return lo
	}
	return math.Min(hi, math.Max(lo, wpm))
}

// MillisecondsPerUnit returns the SINGLE mode delay for one display unit.
func MillisecondsPerUnit(wpm float64) float64 {
	return msPerMinute / ClampWPM(wpm)
}

// Delay is MillisecondsPerUnit as a time.Duration.
func Delay(wpm float64) time.Duration {
	return time.Duration(MillisecondsPerUnit(wpm) * float64(time.Millisecond))
}

// UnitsPerMillisecond returns the FLOW mode advance rate in units per millisecond.
func UnitsPerMillisecond(wpm, multiplier float64) float64 {
	if multiplier <= 0 || math.IsNaN(multiplier) || math.IsInf(multiplier, 0) {
		multiplier = DefaultFlowMultiplier
	}
	return ClampWPM(wpm) / msPerMinute * multiplier
}

// FlowDuration is the time a FLOW pass over units takes at wpm.
func FlowDuration(units int, wpm, multiplier float64) time.Duration {
	if units <= 0 {
		return 0
	}
	ms := float64(units) / UnitsPerMillisecond(wpm, multiplier)
	return time.Duration(ms * float64(time.Millisecond))
}

// Estimate returns the expected reading time for units at wpm.
func Estimate(units int, wpm float64) time.Duration {
	if units <= 0 {
		return 0
	}
	return time.Duration(float64(units) * MillisecondsPerUnit(wpm) * float64(time.Millisecond))
}
