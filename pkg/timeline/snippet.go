package timeline

import (
	"math"

	njerrors "github.com/Valtora/nojoin/pkg/errors"
)

// DefaultMinSnippetLength is the minimum duration, in seconds, for a
// diarization interval to be considered clear enough for voice preview.
const DefaultMinSnippetLength = 4.0

// SelectClearest picks one representative interval from a speaker's
// diarization intervals, for use as an audio preview snippet.
//
// Intervals at least minLength long are preferred; among those, the one
// whose midpoint lies closest to the mean midpoint of the whole filtered
// set wins, which biases the choice towards mid-recording speech. If no
// interval meets the floor, the single longest interval is returned.
// Ties keep the earliest candidate in input order.
func SelectClearest(intervals []Interval, minLength float64) (Interval, error) {
	if len(intervals) == 0 {
		return Interval{}, njerrors.ErrNotFound
	}

	var longEnough []Interval
	for _, iv := range intervals {
		if iv.Duration() >= minLength {
			longEnough = append(longEnough, iv)
		}
	}

	if len(longEnough) == 0 {
		longest := intervals[0]
		for _, iv := range intervals[1:] {
			if iv.Duration() > longest.Duration() {
				longest = iv
			}
		}
		return longest, nil
	}

	var sum float64
	for _, iv := range longEnough {
		sum += iv.Midpoint()
	}
	mean := sum / float64(len(longEnough))

	best := longEnough[0]
	bestDist := math.Abs(best.Midpoint() - mean)
	for _, iv := range longEnough[1:] {
		if d := math.Abs(iv.Midpoint() - mean); d < bestDist {
			best = iv
			bestDist = d
		}
	}
	return best, nil
}
