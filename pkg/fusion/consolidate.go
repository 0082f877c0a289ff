package fusion

import (
	"sort"
	"strings"
)

// sameSpeakerGap is the largest gap, in seconds, that still counts as
// "no gap" when joining consecutive segments from the same speaker.
const sameSpeakerGap = 0.01

// Consolidate merges fused segments, assumed ordered by start time, into
// display-ready turns. Consecutive segments are folded into the current
// turn when they overlap it in time (regardless of speaker) or when they
// continue the same speaker with no gap. A turn that accumulated more
// than one speaker label is rendered with a composite
// "L1 and L2 (Overlap)" label, members sorted and de-duplicated.
//
// Every input segment lands in exactly one output turn; nothing is
// dropped or reordered.
func Consolidate(segments []FusedSegment) []ConsolidatedTurn {
	if len(segments) == 0 {
		return nil
	}

	turns := make([]ConsolidatedTurn, 0, len(segments))
	i := 0
	for i < len(segments) {
		curr := segments[i]
		start := curr.Start
		end := curr.End
		label := curr.SpeakerLabel
		var text strings.Builder
		text.WriteString(curr.Text)

		labelSet := map[string]bool{label: true}

		j := i + 1
	grow:
		for j < len(segments) {
			next := segments[j]
			switch {
			case next.Start < end:
				// Overlapping speech, possibly a different speaker.
				labelSet[next.SpeakerLabel] = true
				if next.End > end {
					end = next.End
				}
				text.WriteString(" ")
				text.WriteString(next.Text)
				j++
			case next.SpeakerLabel == label && next.Start-end < sameSpeakerGap:
				// Same speaker continuing with no audible gap.
				end = next.End
				text.WriteString(" ")
				text.WriteString(next.Text)
				j++
			default:
				break grow
			}
		}

		turns = append(turns, ConsolidatedTurn{
			Start:        start,
			End:          end,
			SpeakerLabel: renderLabelSet(labelSet, label),
			Text:         strings.TrimSpace(text.String()),
		})
		i = j
	}

	return turns
}

// renderLabelSet produces the display label for a closed turn: the
// single label when only one speaker spoke, otherwise the sorted
// composite overlap form.
func renderLabelSet(labelSet map[string]bool, single string) string {
	if len(labelSet) <= 1 {
		return single
	}
	members := make([]string, 0, len(labelSet))
	for l := range labelSet {
		members = append(members, l)
	}
	sort.Strings(members)
	return strings.Join(members, LabelSeparator) + OverlapSuffix
}
