package util

import (
	"math"
	"sort"
	"strings"

	"github.com/montanaflynn/stats"
)

// Quantiles summarizes a sample. Fields are nil when the sample is too
// small to define them: an empty sample yields all-nil, a single value
// collapses min, quartiles, median and max onto that value.
type Quantiles struct {
	Min    *float64
	Q1     *float64
	Median *float64
	Q3     *float64
	Max    *float64
}

// Median returns the sample median, or nil for an empty sample.
func Median(vals []float64) *float64 {
	if len(vals) == 0 {
		return nil
	}
	m, err := stats.Median(vals)
	if err != nil {
		return nil
	}
	return &m
}

// Stdev returns the sample standard deviation, or nil when fewer than two
// values are available.
func Stdev(vals []float64) *float64 {
	if len(vals) < 2 {
		return nil
	}
	sd, err := stats.StandardDeviationSample(vals)
	if err != nil || math.IsNaN(sd) {
		return nil
	}
	return &sd
}

// SafeQuantiles computes min/q1/median/q3/max without ever raising:
// degenerate samples collapse to the available values. Quartiles use
// inclusive linear interpolation over the sorted sample.
func SafeQuantiles(vals []float64) Quantiles {
	if len(vals) == 0 {
		return Quantiles{}
	}
	if len(vals) == 1 {
		v := vals[0]
		return Quantiles{Min: &v, Q1: &v, Median: &v, Q3: &v, Max: &v}
	}

	minV, _ := stats.Min(vals)
	maxV, _ := stats.Max(vals)
	md, _ := stats.Median(vals)

	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)
	q1 := interpolateQuantile(sorted, 0.25)
	q3 := interpolateQuantile(sorted, 0.75)
	return Quantiles{Min: &minV, Q1: &q1, Median: &md, Q3: &q3, Max: &maxV}
}

// interpolateQuantile evaluates quantile p over an already sorted sample
// with inclusive linear interpolation: the quantile position spans the
// observed values, so p=0 is the minimum and p=1 the maximum.
func interpolateQuantile(sorted []float64, p float64) float64 {
	pos := p * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return sorted[lower]
	}
	frac := pos - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}

// scaleToRange maps val within [vmin, vmax] onto a column in [0, w-1].
func scaleToRange(val, vmin, vmax float64, w int) int {
	if vmin == vmax {
		return w / 2
	}
	pos := int(math.Round((val - vmin) / (vmax - vmin) * float64(w-1)))
	if pos < 0 {
		return 0
	}
	if pos > w-1 {
		return w - 1
	}
	return pos
}

// RenderRangeBar draws a one-line density bar for a sample over a shared
// axis spanning [axisMin, axisMax]: '-' between min and max, '=' across
// the interquartile range and '|' at the median. An empty sample renders
// as blank; a single value shows only the median tick.
func RenderRangeBar(vals []float64, axisMin, axisMax float64, width int) string {
	if len(vals) == 0 {
		return strings.Repeat(" ", width)
	}
	q := SafeQuantiles(vals)

	chars := make([]byte, width)
	for i := range chars {
		chars[i] = ' '
	}

	l := scaleToRange(*q.Min, axisMin, axisMax, width)
	r := scaleToRange(*q.Max, axisMin, axisMax, width)
	if l > r {
		l, r = r, l
	}
	for i := l; i <= r; i++ {
		chars[i] = '-'
	}

	i1 := scaleToRange(*q.Q1, axisMin, axisMax, width)
	i3 := scaleToRange(*q.Q3, axisMin, axisMax, width)
	if i1 > i3 {
		i1, i3 = i3, i1
	}
	for i := i1; i <= i3; i++ {
		chars[i] = '='
	}

	chars[scaleToRange(*q.Median, axisMin, axisMax, width)] = '|'

	return string(chars)
}
