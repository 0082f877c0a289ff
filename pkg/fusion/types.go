// Package fusion combines the two timestamped streams produced for one
// recording - transcribed speech segments from the ASR engine and
// speaker turns from the diarization engine - into speaker-attributed
// transcript turns.
package fusion

import (
	"github.com/Valtora/nojoin/pkg/timeline"
)

// UnknownLabel is the sentinel speaker label assigned to transcribed
// segments that no diarization turn overlaps.
const UnknownLabel = "UNKNOWN"

// Composite-label formatting shared with the transcript codec.
const (
	// LabelSeparator joins speaker labels in a multi-speaker turn.
	LabelSeparator = " and "

	// OverlapSuffix marks a turn where multiple speakers talked over
	// each other.
	OverlapSuffix = " (Overlap)"
)

// Utterance is one transcribed speech segment from the ASR engine.
// The segment list for a recording is usually ordered by start time,
// but that is not guaranteed and not required by Fuse.
type Utterance struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Interval returns the utterance's time range.
func (u Utterance) Interval() timeline.Interval {
	return timeline.Interval{Start: u.Start, End: u.End}
}

// SpeakerTurn is one diarization turn. Turns may overlap in time and
// several turns may share a label; labels are engine-assigned opaque
// strings (e.g. "SPEAKER_00"), unique only within one recording.
type SpeakerTurn struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Label string  `json:"label"`
}

// Interval returns the turn's time range.
func (t SpeakerTurn) Interval() timeline.Interval {
	return timeline.Interval{Start: t.Start, End: t.End}
}

// Diarization is the complete diarization output for one recording.
type Diarization []SpeakerTurn

// Labels returns the distinct speaker labels in first-appearance order.
func (d Diarization) Labels() []string {
	seen := make(map[string]bool, len(d))
	var labels []string
	for _, t := range d {
		if !seen[t.Label] {
			seen[t.Label] = true
			labels = append(labels, t.Label)
		}
	}
	return labels
}

// IntervalsForLabel returns the time ranges of every turn carrying the
// given label, in turn order.
func (d Diarization) IntervalsForLabel(label string) []timeline.Interval {
	var intervals []timeline.Interval
	for _, t := range d {
		if t.Label == label {
			intervals = append(intervals, t.Interval())
		}
	}
	return intervals
}

// FusedSegment is one utterance with its winning speaker label. Its time
// range is always exactly the source utterance's range.
type FusedSegment struct {
	Start        float64 `json:"start"`
	End          float64 `json:"end"`
	SpeakerLabel string  `json:"speaker"`
	Text         string  `json:"text"`
}

// ConsolidatedTurn is a display-ready turn built from one or more fused
// segments. SpeakerLabel is either a single diarization label or a
// composite "L1 and L2 (Overlap)" string for multi-speaker turns.
type ConsolidatedTurn struct {
	Start        float64 `json:"start"`
	End          float64 `json:"end"`
	SpeakerLabel string  `json:"speaker"`
	Text         string  `json:"text"`
}
