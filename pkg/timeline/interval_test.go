package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOverlap_Partial(t *testing.T) {
	assert.Equal(t, 1.0, Overlap(Interval{0, 2}, Interval{1, 3}))
	assert.Equal(t, 1.0, Overlap(Interval{1, 3}, Interval{0, 2}))
}

func TestOverlap_Containment(t *testing.T) {
	assert.Equal(t, 2.0, Overlap(Interval{0, 10}, Interval{4, 6}))
}

func TestOverlap_Disjoint(t *testing.T) {
	assert.Zero(t, Overlap(Interval{0, 1}, Interval{2, 3}))
}

func TestOverlap_Touching(t *testing.T) {
	// Shared boundary is not overlap.
	assert.Zero(t, Overlap(Interval{0, 2}, Interval{2, 4}))
}

func TestOverlap_DegenerateClampsToZero(t *testing.T) {
	assert.Zero(t, Overlap(Interval{5, 1}, Interval{0, 10}))
	assert.Zero(t, Overlap(Interval{0, 10}, Interval{3, 3}))
}

func TestInterval_Duration(t *testing.T) {
	assert.Equal(t, 2.5, Interval{1, 3.5}.Duration())
	assert.Zero(t, Interval{3, 1}.Duration())
}

func TestInterval_Midpoint(t *testing.T) {
	assert.Equal(t, 2.0, Interval{1, 3}.Midpoint())
}
