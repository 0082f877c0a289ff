package transcript

import (
	"strings"

	"github.com/Valtora/nojoin/pkg/fusion"
)

// component is one member of a line's speaker part. The overlap flag
// records whether the serialized component carried the " (Overlap)"
// suffix; in canonical text only the last member does, standing for the
// whole group.
type component struct {
	label   string
	overlap bool
}

func splitSpeakerPart(part string) []component {
	raw := strings.Split(part, fusion.LabelSeparator)
	components := make([]component, 0, len(raw))
	for _, r := range raw {
		c := component{label: r}
		if strings.HasSuffix(r, fusion.OverlapSuffix) {
			c.label = strings.TrimSuffix(r, fusion.OverlapSuffix)
			c.overlap = true
		}
		c.label = strings.TrimSpace(c.label)
		components = append(components, c)
	}
	return components
}

// renderComponents rebuilds a speaker part. A multi-member group keeps
// the overlap suffix if any member carried it. A group reduced to one
// member is no longer an overlap, so the suffix is dropped unless the
// caller asks to preserve the surviving member's own suffix (rename
// mode, where a single labelled line must keep its shape).
func renderComponents(components []component, preserveSingleSuffix bool) string {
	if len(components) == 1 {
		if preserveSingleSuffix && components[0].overlap {
			return components[0].label + fusion.OverlapSuffix
		}
		return components[0].label
	}
	labels := make([]string, len(components))
	overlap := false
	for i, c := range components {
		labels[i] = c.label
		overlap = overlap || c.overlap
	}
	joined := strings.Join(labels, fusion.LabelSeparator)
	if overlap {
		joined += fusion.OverlapSuffix
	}
	return joined
}

// matchesAny reports whether the component label equals any of the old
// labels, case-insensitively. The first matching old label wins.
func matchesAny(label string, oldLabels []string) bool {
	for _, old := range oldLabels {
		if strings.EqualFold(label, old) {
			return true
		}
	}
	return false
}

// RewriteLabels is the identity-rewrite primitive behind rename, merge
// and delete. Every canonical turn line has its speaker part split into
// " and "-separated components; components case-insensitively matching
// one of oldLabels are replaced by newLabel, or removed entirely when
// newLabel is empty (delete mode).
//
// In replace mode, duplicate resulting components collapse to the first
// occurrence in order. In delete mode, a line whose components are all
// removed is deleted outright, and a group reduced to a single speaker
// loses its " (Overlap)" suffix.
//
// The returned count is the number of lines modified or deleted. Blank
// lines, the END sentinel, and lines that do not parse are preserved
// verbatim and never counted.
func RewriteLabels(text string, oldLabels []string, newLabel string) (string, int) {
	if len(oldLabels) == 0 {
		return text, 0
	}
	deleteMode := newLabel == ""

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	count := 0

	for _, raw := range lines {
		line, ok := ParseLine(raw)
		if !ok {
			out = append(out, raw)
			continue
		}

		components := splitSpeakerPart(line.Speaker)
		modified := false

		if deleteMode {
			kept := components[:0]
			for _, c := range components {
				if matchesAny(c.label, oldLabels) {
					modified = true
					continue
				}
				kept = append(kept, c)
			}
			components = kept
		} else {
			for i := range components {
				if matchesAny(components[i].label, oldLabels) {
					components[i].label = newLabel
					modified = true
				}
			}
			if modified {
				components = dedupeComponents(components)
			}
		}

		if !modified {
			out = append(out, raw)
			continue
		}

		count++
		if len(components) == 0 {
			// Every speaker on the line was removed; drop the line.
			continue
		}
		line.Speaker = renderComponents(components, !deleteMode)
		out = append(out, line.String())
	}

	return strings.Join(out, "\n"), count
}

// dedupeComponents collapses components with the same label
// (case-insensitively), keeping the first occurrence and preserving
// relative order.
func dedupeComponents(components []component) []component {
	seen := make(map[string]bool, len(components))
	kept := components[:0]
	for _, c := range components {
		key := strings.ToLower(c.label)
		if seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, c)
	}
	return kept
}
