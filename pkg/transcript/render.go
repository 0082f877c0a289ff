package transcript

import (
	"strings"

	"github.com/Valtora/nojoin/pkg/fusion"
)

// RenderDisplay substitutes speaker display names for diarization labels
// in a serialized transcript, for presentation only. The stored text is
// never modified; labels stay the durable key.
//
// Composite overlap parts are mapped member by member, keeping the
// " and " joins and the " (Overlap)" suffix. Labels missing from the
// mapping are shown as-is. Blank lines and the END sentinel pass through
// verbatim.
func RenderDisplay(text string, labelToName map[string]string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))

	for _, raw := range lines {
		line, ok := ParseLine(raw)
		if !ok {
			out = append(out, raw)
			continue
		}

		components := splitSpeakerPart(line.Speaker)
		for i := range components {
			if name, found := labelToName[components[i].label]; found {
				components[i].label = name
			}
		}

		names := make([]string, len(components))
		overlap := false
		for i, c := range components {
			names[i] = c.label
			overlap = overlap || c.overlap
		}
		display := strings.Join(names, fusion.LabelSeparator)
		if overlap {
			display += fusion.OverlapSuffix
		}

		line.Speaker = display
		out = append(out, line.String())
	}

	return strings.Join(out, "\n")
}
