package transcript

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Line parsing regular expressions.
var (
	// Matches the canonical turn line shape. Group 1 is the bracketed
	// timestamp prefix including its trailing separator, group 2 the
	// speaker part, group 3 the separator before the text, group 4 the
	// text itself.
	lineRegex = regexp.MustCompile(`^(\[.+?\]\s*-\s*)(.+?)(\s*-\s*)(.*)$`)

	// Matches a "HH.MM.SS.ss - HH.MM.SS.ss" range inside the prefix.
	timeRangeRegex = regexp.MustCompile(`^\[(\d+)\.(\d+)\.(\d+(?:\.\d+)?) - (\d+)\.(\d+)\.(\d+(?:\.\d+)?)\]`)

	// Matches engine-style diarization labels for label recovery.
	labelRegex = regexp.MustCompile(`(?i)Speaker[_ ]?\d+`)
)

// Line is one parsed transcript turn line, broken into named fields so
// callers never index regex groups.
type Line struct {
	// Prefix is the bracketed timestamp range plus its trailing
	// separator, kept verbatim so a rebuilt line is byte-identical
	// outside the speaker part.
	Prefix string

	// Speaker is the raw speaker part: a single diarization label or a
	// composite "L1 and L2 (Overlap)" string.
	Speaker string

	// Separator is the verbatim separator between speaker part and text.
	Separator string

	// Text is the spoken text.
	Text string
}

// String rebuilds the canonical line from its fields.
func (l Line) String() string {
	return l.Prefix + l.Speaker + l.Separator + l.Text
}

// ParseLine splits one transcript line into its named fields. The second
// return value is false for lines that do not have the canonical turn
// shape (blank lines, the END sentinel, free text); such lines pass
// through every transcript operation verbatim.
func ParseLine(line string) (Line, bool) {
	m := lineRegex.FindStringSubmatch(line)
	if m == nil {
		return Line{}, false
	}
	return Line{
		Prefix:    m[1],
		Speaker:   strings.TrimSpace(m[2]),
		Separator: m[3],
		Text:      m[4],
	}, true
}

// TimeRange extracts the start and end seconds from the line's prefix.
// The second return value is false when the prefix does not carry a
// parseable "HH.MM.SS.ss - HH.MM.SS.ss" range.
func (l Line) TimeRange() (start, end float64, ok bool) {
	m := timeRangeRegex.FindStringSubmatch(l.Prefix)
	if m == nil {
		return 0, 0, false
	}
	start = tsSeconds(m[1], m[2], m[3])
	end = tsSeconds(m[4], m[5], m[6])
	return start, end, true
}

func tsSeconds(h, m, s string) float64 {
	hours, _ := strconv.Atoi(h)
	minutes, _ := strconv.Atoi(m)
	seconds, _ := strconv.ParseFloat(s, 64)
	return float64(hours*3600+minutes*60) + seconds
}

// ParseDocument parses every canonical turn line in a serialized
// transcript, in order, skipping blank lines and the END sentinel.
func ParseDocument(text string) []Line {
	var parsed []Line
	for _, raw := range strings.Split(text, "\n") {
		if strings.TrimSpace(raw) == "" || raw == EndSentinel {
			continue
		}
		if line, ok := ParseLine(raw); ok {
			parsed = append(parsed, line)
		}
	}
	return parsed
}

// ExtractLabels recovers the distinct engine-style diarization labels
// (e.g. "SPEAKER_00") present in a transcript, uppercased and sorted.
// Used for auditing stored transcripts against speaker records.
func ExtractLabels(text string) []string {
	seen := make(map[string]bool)
	for _, match := range labelRegex.FindAllString(text, -1) {
		seen[strings.ToUpper(match)] = true
	}
	labels := make([]string, 0, len(seen))
	for label := range seen {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}
