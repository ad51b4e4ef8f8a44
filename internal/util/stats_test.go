package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMedian(t *testing.T) {
	assert.Nil(t, Median(nil))

	m := Median([]float64{3})
	require.NotNil(t, m)
	assert.Equal(t, 3.0, *m)

	m = Median([]float64{1, 2, 3, 4})
	require.NotNil(t, m)
	assert.Equal(t, 2.5, *m)
}

func TestStdev(t *testing.T) {
	assert.Nil(t, Stdev(nil))
	assert.Nil(t, Stdev([]float64{5}))

	sd := Stdev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	require.NotNil(t, sd)
	assert.InDelta(t, 2.138, *sd, 0.001)
}

func TestSafeQuantiles_Empty(t *testing.T) {
	q := SafeQuantiles(nil)
	assert.Nil(t, q.Min)
	assert.Nil(t, q.Q1)
	assert.Nil(t, q.Median)
	assert.Nil(t, q.Q3)
	assert.Nil(t, q.Max)
}

func TestSafeQuantiles_Single(t *testing.T) {
	q := SafeQuantiles([]float64{7})
	require.NotNil(t, q.Min)
	assert.Equal(t, 7.0, *q.Min)
	assert.Equal(t, 7.0, *q.Q1)
	assert.Equal(t, 7.0, *q.Median)
	assert.Equal(t, 7.0, *q.Q3)
	assert.Equal(t, 7.0, *q.Max)
}

func TestSafeQuantiles_Sample(t *testing.T) {
	q := SafeQuantiles([]float64{1, 2, 3, 4, 5, 6, 7, 8})
	require.NotNil(t, q.Median)
	assert.Equal(t, 1.0, *q.Min)
	assert.Equal(t, 8.0, *q.Max)
	assert.Equal(t, 4.5, *q.Median)
	assert.Equal(t, 2.75, *q.Q1)
	assert.Equal(t, 6.25, *q.Q3)
}

func TestSafeQuantiles_InclusiveInterpolation(t *testing.T) {
	q := SafeQuantiles([]float64{1, 2, 3})
	assert.Equal(t, 1.5, *q.Q1)
	assert.Equal(t, 2.0, *q.Median)
	assert.Equal(t, 2.5, *q.Q3)

	q = SafeQuantiles([]float64{1, 2, 3, 4})
	assert.Equal(t, 1.75, *q.Q1)
	assert.Equal(t, 3.25, *q.Q3)

	// Unsorted input must not change the result.
	q = SafeQuantiles([]float64{3, 1, 2})
	assert.Equal(t, 1.5, *q.Q1)
	assert.Equal(t, 2.5, *q.Q3)
}

func TestRenderRangeBar(t *testing.T) {
	bar := RenderRangeBar([]float64{0, 2.5, 5, 7.5, 10}, 0, 10, 60)
	assert.Len(t, bar, 60)
	assert.Equal(t, byte('-'), bar[0])
	assert.Equal(t, byte('-'), bar[59])
	assert.Equal(t, 1, strings.Count(bar, "|"))
	assert.Contains(t, bar, "=")
}

func TestRenderRangeBar_Empty(t *testing.T) {
	bar := RenderRangeBar(nil, 0, 10, 20)
	assert.Equal(t, strings.Repeat(" ", 20), bar)
}

func TestRenderRangeBar_SingleValue(t *testing.T) {
	bar := RenderRangeBar([]float64{5}, 0, 10, 21)
	assert.Len(t, bar, 21)
	assert.Equal(t, byte('|'), bar[10])
	assert.Equal(t, strings.Repeat(" ", 10), bar[:10])
}

func TestRenderRangeBar_DegenerateAxis(t *testing.T) {
	// All values identical with a collapsed axis: median tick lands mid-bar.
	bar := RenderRangeBar([]float64{3, 3, 3}, 3, 3, 20)
	assert.Len(t, bar, 20)
	assert.Equal(t, byte('|'), bar[10])
}

func TestScaleToRange(t *testing.T) {
	assert.Equal(t, 0, scaleToRange(0, 0, 10, 60))
	assert.Equal(t, 59, scaleToRange(10, 0, 10, 60))
	assert.Equal(t, 30, scaleToRange(5, 5, 5, 60))
	// Out-of-range values clamp instead of overflowing the bar.
	assert.Equal(t, 0, scaleToRange(-5, 0, 10, 60))
	assert.Equal(t, 59, scaleToRange(15, 0, 10, 60))
}
