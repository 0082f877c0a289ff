package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	njerrors "github.com/Valtora/nojoin/pkg/errors"
)

func TestSelectClearest_OnlyIntervalMeetingFloorWins(t *testing.T) {
	got, err := SelectClearest([]Interval{{0, 1}, {10, 20}}, DefaultMinSnippetLength)
	require.NoError(t, err)
	assert.Equal(t, Interval{10, 20}, got)
}

func TestSelectClearest_PrefersMidRecording(t *testing.T) {
	// All three meet the floor; mean midpoint is (5+50+95)/3 = 50, so the
	// middle interval is closest.
	intervals := []Interval{{0, 10}, {45, 55}, {90, 100}}
	got, err := SelectClearest(intervals, 4.0)
	require.NoError(t, err)
	assert.Equal(t, Interval{45, 55}, got)
}

func TestSelectClearest_FallsBackToLongest(t *testing.T) {
	intervals := []Interval{{0, 1}, {5, 8}, {20, 22}}
	got, err := SelectClearest(intervals, 4.0)
	require.NoError(t, err)
	assert.Equal(t, Interval{5, 8}, got)
}

func TestSelectClearest_TieKeepsInputOrder(t *testing.T) {
	// Equidistant midpoints: first candidate wins.
	intervals := []Interval{{0, 10}, {20, 30}}
	got, err := SelectClearest(intervals, 4.0)
	require.NoError(t, err)
	assert.Equal(t, Interval{0, 10}, got)
}

func TestSelectClearest_LongestTieKeepsInputOrder(t *testing.T) {
	intervals := []Interval{{0, 2}, {10, 12}}
	got, err := SelectClearest(intervals, 4.0)
	require.NoError(t, err)
	assert.Equal(t, Interval{0, 2}, got)
}

func TestSelectClearest_EmptyInputIsError(t *testing.T) {
	_, err := SelectClearest(nil, 4.0)
	assert.True(t, njerrors.IsNotFound(err))
}
