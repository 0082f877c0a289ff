package fusion

import (
	"strings"

	"github.com/Valtora/nojoin/pkg/timeline"
)

// Fuse assigns a diarization label to every utterance by temporal
// overlap. For each utterance the overlap duration with every turn is
// accumulated per label, and the label with the greatest accumulated
// overlap wins. When two labels tie, the label that reached the winning
// total first in turn order keeps it. Utterances no turn overlaps get
// UnknownLabel.
//
// Utterance boundaries are never adjusted, and utterances whose text is
// empty after trimming are dropped. Degenerate time ranges on either
// side contribute zero overlap rather than failing.
func Fuse(utterances []Utterance, turns Diarization) []FusedSegment {
	fused := make([]FusedSegment, 0, len(utterances))

	for _, u := range utterances {
		text := strings.TrimSpace(u.Text)
		if text == "" {
			continue
		}

		label := UnknownLabel
		maxOverlap := 0.0
		overlapByLabel := make(map[string]float64)
		for _, turn := range turns {
			overlap := timeline.Overlap(u.Interval(), turn.Interval())
			if overlap <= 0 {
				continue
			}
			overlapByLabel[turn.Label] += overlap
			if overlapByLabel[turn.Label] > maxOverlap {
				maxOverlap = overlapByLabel[turn.Label]
				label = turn.Label
			}
		}

		fused = append(fused, FusedSegment{
			Start:        u.Start,
			End:          u.End,
			SpeakerLabel: label,
			Text:         text,
		})
	}

	return fused
}
