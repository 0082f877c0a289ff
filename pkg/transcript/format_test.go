package transcript

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Valtora/nojoin/pkg/fusion"
)

func TestFormatTimestamp(t *testing.T) {
	assert.Equal(t, "00.00.00.00", FormatTimestamp(0))
	assert.Equal(t, "00.00.05.00", FormatTimestamp(5))
	assert.Equal(t, "00.01.30.50", FormatTimestamp(90.5))
	assert.Equal(t, "01.02.03.25", FormatTimestamp(3723.25))
	assert.Equal(t, "00.00.00.00", FormatTimestamp(-1))
}

func TestSerialize_CanonicalShape(t *testing.T) {
	turns := []fusion.ConsolidatedTurn{
		{Start: 0, End: 4, SpeakerLabel: "SPEAKER_00", Text: "hi there"},
		{Start: 4, End: 7.5, SpeakerLabel: "SPEAKER_01", Text: "hello"},
	}

	text := Serialize(turns)
	want := "[00.00.00.00 - 00.00.04.00] - SPEAKER_00 - hi there\n" +
		"\n" +
		"[00.00.04.00 - 00.00.07.50] - SPEAKER_01 - hello\n" +
		"\n" +
		"END\n"
	assert.Equal(t, want, text)
}

func TestSerialize_Empty(t *testing.T) {
	assert.Equal(t, "END\n", Serialize(nil))
}

func TestSerializeParse_RoundTrip(t *testing.T) {
	turns := []fusion.ConsolidatedTurn{
		{Start: 0, End: 4, SpeakerLabel: "SPEAKER_00", Text: "hi there"},
		{Start: 4, End: 9, SpeakerLabel: "SPEAKER_00 and SPEAKER_01 (Overlap)", Text: "talking over"},
		{Start: 9, End: 12.25, SpeakerLabel: "UNKNOWN", Text: "who said this"},
	}

	parsed := ParseDocument(Serialize(turns))
	require.Len(t, parsed, len(turns))
	for i, line := range parsed {
		assert.Equal(t, turns[i].SpeakerLabel, line.Speaker)
		assert.Equal(t, turns[i].Text, line.Text)

		start, end, ok := line.TimeRange()
		require.True(t, ok)
		assert.InDelta(t, turns[i].Start, start, 0.005)
		assert.InDelta(t, turns[i].End, end, 0.005)
	}
}

func TestParseLine_NonCanonicalLinesPassThrough(t *testing.T) {
	for _, raw := range []string{"", "END", "free-floating note"} {
		_, ok := ParseLine(raw)
		assert.False(t, ok, "line %q should not parse", raw)
	}
}

func TestParseLine_NamedFields(t *testing.T) {
	line, ok := ParseLine("[00.00.00.00 - 00.00.04.00] - SPEAKER_00 - hi - with dash")
	require.True(t, ok)
	assert.Equal(t, "[00.00.00.00 - 00.00.04.00] - ", line.Prefix)
	assert.Equal(t, "SPEAKER_00", line.Speaker)
	assert.Equal(t, " - ", line.Separator)
	assert.Equal(t, "hi - with dash", line.Text)
	assert.Equal(t, "[00.00.00.00 - 00.00.04.00] - SPEAKER_00 - hi - with dash", line.String())
}

func TestParseDocument_SkipsBlanksAndSentinel(t *testing.T) {
	text := Serialize([]fusion.ConsolidatedTurn{
		{Start: 0, End: 1, SpeakerLabel: "SPEAKER_00", Text: "only line"},
	})
	parsed := ParseDocument(text)
	require.Len(t, parsed, 1)
	assert.Equal(t, "only line", parsed[0].Text)
}

func TestExtractLabels(t *testing.T) {
	text := strings.Join([]string{
		"[00.00.00.00 - 00.00.01.00] - SPEAKER_01 - one",
		"",
		"[00.00.01.00 - 00.00.02.00] - speaker_00 - two",
		"",
		"[00.00.02.00 - 00.00.03.00] - SPEAKER_01 - three",
		"",
		"END",
	}, "\n")
	assert.Equal(t, []string{"SPEAKER_00", "SPEAKER_01"}, ExtractLabels(text))
}
