package transcript

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Valtora/nojoin/pkg/fusion"
)

func doc(lines ...string) string {
	return strings.Join(append(lines, "", "END", ""), "\n")
}

func TestRewriteLabels_Rename(t *testing.T) {
	text := doc("[00.00.00.00 - 00.00.04.00] - SPEAKER_00 - hi")

	got, count := RewriteLabels(text, []string{"SPEAKER_00"}, "SPEAKER_07")
	assert.Equal(t, 1, count)
	assert.Contains(t, got, "- SPEAKER_07 - hi")
	assert.NotContains(t, got, "SPEAKER_00")
}

func TestRewriteLabels_RenameIsCaseInsensitive(t *testing.T) {
	text := doc("[00.00.00.00 - 00.00.04.00] - speaker_00 - hi")

	got, count := RewriteLabels(text, []string{"SPEAKER_00"}, "SPEAKER_01")
	assert.Equal(t, 1, count)
	assert.Contains(t, got, "- SPEAKER_01 - hi")
}

func TestRewriteLabels_MergeCollapsesDuplicates(t *testing.T) {
	text := doc("[00.00.00.00 - 00.00.04.00] - SPEAKER_00 and SPEAKER_01 (Overlap) - both talking")

	// Merging SPEAKER_01 into SPEAKER_00 leaves one speaker, so the
	// overlap group dissolves.
	got, count := RewriteLabels(text, []string{"SPEAKER_01"}, "SPEAKER_00")
	assert.Equal(t, 1, count)
	assert.Contains(t, got, "- SPEAKER_00 - both talking")
	assert.NotContains(t, got, "Overlap")
}

func TestRewriteLabels_RenameWithinOverlapKeepsSuffix(t *testing.T) {
	text := doc("[00.00.00.00 - 00.00.04.00] - SPEAKER_00 and SPEAKER_01 (Overlap) - both talking")

	got, count := RewriteLabels(text, []string{"SPEAKER_00"}, "SPEAKER_05")
	assert.Equal(t, 1, count)
	assert.Contains(t, got, "- SPEAKER_05 and SPEAKER_01 (Overlap) - both talking")
}

func TestRewriteLabels_DeleteRemovesLine(t *testing.T) {
	text := doc(
		"[00.00.00.00 - 00.00.04.00] - SPEAKER_00 - gone",
		"",
		"[00.00.04.00 - 00.00.08.00] - SPEAKER_01 - kept",
	)

	got, count := RewriteLabels(text, []string{"SPEAKER_00"}, "")
	assert.Equal(t, 1, count)
	assert.NotContains(t, got, "gone")
	assert.Contains(t, got, "- SPEAKER_01 - kept")
	assert.Contains(t, got, "END")
}

func TestRewriteLabels_DeleteFromOverlapDropsSuffix(t *testing.T) {
	text := doc("[00.00.00.00 - 00.00.04.00] - A and B (Overlap) - hi")

	got, count := RewriteLabels(text, []string{"A"}, "")
	assert.Equal(t, 1, count)
	assert.Contains(t, got, "- B - hi")
	assert.NotContains(t, got, "Overlap")
	assert.NotContains(t, got, "A and")
}

func TestRewriteLabels_DeleteFromThreeWayOverlapKeepsSuffix(t *testing.T) {
	text := doc("[00.00.00.00 - 00.00.04.00] - A and B and C (Overlap) - hi")

	got, count := RewriteLabels(text, []string{"B"}, "")
	assert.Equal(t, 1, count)
	assert.Contains(t, got, "- A and C (Overlap) - hi")
}

func TestRewriteLabels_DeleteIsIdempotent(t *testing.T) {
	text := doc(
		"[00.00.00.00 - 00.00.04.00] - SPEAKER_00 - solo",
		"",
		"[00.00.04.00 - 00.00.08.00] - SPEAKER_00 and SPEAKER_01 (Overlap) - both",
	)

	once, count := RewriteLabels(text, []string{"SPEAKER_00"}, "")
	assert.Equal(t, 2, count)

	twice, count := RewriteLabels(once, []string{"SPEAKER_00"}, "")
	assert.Zero(t, count)
	assert.Equal(t, once, twice)
}

func TestRewriteLabels_MergeThenDeleteRemovesEverything(t *testing.T) {
	text := doc(
		"[00.00.00.00 - 00.00.04.00] - A - first",
		"",
		"[00.00.04.00 - 00.00.08.00] - B - second",
		"",
		"[00.00.08.00 - 00.00.12.00] - C - third",
	)

	merged, count := RewriteLabels(text, []string{"B"}, "A")
	assert.Equal(t, 1, count)

	deleted, count := RewriteLabels(merged, []string{"A"}, "")
	assert.Equal(t, 2, count)
	assert.NotContains(t, deleted, "first")
	assert.NotContains(t, deleted, "second")
	assert.Contains(t, deleted, "third")
}

func TestRewriteLabels_SentinelAndBlanksNeverCounted(t *testing.T) {
	text := doc("[00.00.00.00 - 00.00.04.00] - SPEAKER_00 - hi")

	got, count := RewriteLabels(text, []string{"END"}, "")
	assert.Zero(t, count)
	assert.Equal(t, text, got)
}

func TestRewriteLabels_NoMatchesLeavesTextIntact(t *testing.T) {
	text := doc("[00.00.00.00 - 00.00.04.00] - SPEAKER_00 - hi")

	got, count := RewriteLabels(text, []string{"SPEAKER_99"}, "SPEAKER_01")
	assert.Zero(t, count)
	assert.Equal(t, text, got)
}

func TestRewriteLabels_MultipleOldLabels(t *testing.T) {
	text := doc(
		"[00.00.00.00 - 00.00.04.00] - A - one",
		"",
		"[00.00.04.00 - 00.00.08.00] - B - two",
	)

	got, count := RewriteLabels(text, []string{"A", "B"}, "C")
	assert.Equal(t, 2, count)
	assert.NotContains(t, got, "- A -")
	assert.NotContains(t, got, "- B -")
	assert.Equal(t, 2, strings.Count(got, "- C -"))
}

func TestRewriteLabels_RoundTripWithSerializer(t *testing.T) {
	turns := []fusion.ConsolidatedTurn{
		{Start: 0, End: 2, SpeakerLabel: "SPEAKER_00", Text: "hello"},
		{Start: 2, End: 4, SpeakerLabel: "SPEAKER_01", Text: "world"},
	}
	text := Serialize(turns)

	got, count := RewriteLabels(text, []string{"SPEAKER_01"}, "SPEAKER_00")
	assert.Equal(t, 1, count)

	parsed := ParseDocument(got)
	for _, line := range parsed {
		assert.Equal(t, "SPEAKER_00", line.Speaker)
	}
}
