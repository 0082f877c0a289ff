// Package timeline provides time-range geometry for transcript segments
// and diarization turns. All times are seconds from the start of the
// recording.
package timeline

// Interval is a half-open time range [Start, End) in seconds.
type Interval struct {
	Start float64
	End   float64
}

// Duration returns the length of the interval in seconds.
// Degenerate intervals (End before Start) have zero duration.
func (iv Interval) Duration() float64 {
	if iv.End <= iv.Start {
		return 0
	}
	return iv.End - iv.Start
}

// Midpoint returns the temporal center of the interval.
func (iv Interval) Midpoint() float64 {
	return (iv.Start + iv.End) / 2
}

// Overlap returns the duration of the intersection of two intervals.
// Non-overlapping or degenerate inputs yield zero; negative durations
// are never returned.
func Overlap(a, b Interval) float64 {
	start := a.Start
	if b.Start > start {
		start = b.Start
	}
	end := a.End
	if b.End < end {
		end = b.End
	}
	if end <= start {
		return 0
	}
	return end - start
}
