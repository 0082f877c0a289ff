// Package transcript implements the line-oriented text format used to
// store speaker-attributed transcripts, along with the label-rewrite
// primitive every speaker identity operation builds on.
//
// The canonical format is one line per consolidated turn,
//
//	[HH.MM.SS.ss - HH.MM.SS.ss] - <speakerLabel> - <text>
//
// with a blank line between turns and a terminal "END" sentinel line.
// Transcript text always stores diarization labels, never display
// names; the label is the durable key that renaming, merging and
// deleting speakers rewrite against.
package transcript

import (
	"fmt"
	"math"
	"strings"

	"github.com/Valtora/nojoin/pkg/fusion"
)

// EndSentinel terminates every serialized transcript.
const EndSentinel = "END"

// FormatTimestamp renders seconds-from-start as "HH.MM.SS.ss": two-digit
// hours and minutes, seconds as a zero-padded two-decimal float.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		seconds = 0
	}
	h := int(seconds) / 3600
	m := (int(seconds) % 3600) / 60
	s := seconds - float64(h*3600+m*60)
	return fmt.Sprintf("%02d.%02d.%05.2f", h, m, s)
}

// Serialize renders consolidated turns in the canonical format: one line
// per turn, a blank line after each, and a final EndSentinel line.
func Serialize(turns []fusion.ConsolidatedTurn) string {
	var b strings.Builder
	for _, turn := range turns {
		b.WriteString("[")
		b.WriteString(FormatTimestamp(turn.Start))
		b.WriteString(" - ")
		b.WriteString(FormatTimestamp(turn.End))
		b.WriteString("] - ")
		b.WriteString(turn.SpeakerLabel)
		b.WriteString(" - ")
		b.WriteString(turn.Text)
		b.WriteString("\n\n")
	}
	b.WriteString(EndSentinel)
	b.WriteString("\n")
	return b.String()
}
