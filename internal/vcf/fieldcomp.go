package vcf

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/jakobsg/rundiff/internal/report"
	"github.com/jakobsg/rundiff/internal/util"
)

// barWidth is the rendered width of the numeric density bars.
const barWidth = 60

// maxTransitions caps the categorical transition table.
const maxTransitions = 10

// ValuePair holds one field value from each side. Nil means the field was
// absent (or empty) for that variant.
type ValuePair struct {
	R1 *string
	R2 *string
}

// NumericPair is a both-present pair where both sides parsed as numbers.
type NumericPair struct {
	R1 float64
	R2 float64
}

// CategoricalPair is a both-present pair kept as raw strings.
type CategoricalPair struct {
	R1 string
	R2 string
}

// ColumnComparison partitions per-variant value pairs for one field and
// classifies the field as numeric or categorical. The field is numeric
// only when every both-present pair parses cleanly on both sides; a
// single failure anywhere demotes the whole column.
type ColumnComparison struct {
	NonePresent int
	V1Present   int
	V2Present   int
	BothPresent int
	NbrSame     int

	AllNumeric       bool
	NumericPairs     []NumericPair
	CategoricalPairs []CategoricalPair
}

func (c *ColumnComparison) String() string {
	return fmt.Sprintf("%d %d %d %d %d %t nbr numeric %d",
		c.NonePresent, c.V1Present, c.V2Present, c.BothPresent, c.NbrSame,
		c.AllNumeric, len(c.NumericPairs))
}

// NewColumnComparison builds the partition and classification from raw
// value pairs.
func NewColumnComparison(valPairs []ValuePair) *ColumnComparison {
	c := &ColumnComparison{}
	allNumeric := true

	for _, pair := range valPairs {
		v1Present := pair.R1 != nil && *pair.R1 != ""
		v2Present := pair.R2 != nil && *pair.R2 != ""

		switch {
		case !v1Present && !v2Present:
			c.NonePresent++
		case !v2Present:
			c.V1Present++
		case !v1Present:
			c.V2Present++
		default:
			c.CategoricalPairs = append(c.CategoricalPairs, CategoricalPair{R1: *pair.R1, R2: *pair.R2})

			if allNumeric {
				d1, ok1 := util.ParseDecimal(*pair.R1)
				d2, ok2 := util.ParseDecimal(*pair.R2)
				if !ok1 || !ok2 {
					allNumeric = false
				} else {
					c.NumericPairs = append(c.NumericPairs, NumericPair{R1: d1, R2: d2})
				}
			}

			c.BothPresent++
			if *pair.R1 == *pair.R2 {
				c.NbrSame++
			}
		}
	}

	c.AllNumeric = allNumeric
	return c
}

// FieldSelector extracts the compared value from a variant. Nil means
// absent.
type FieldSelector func(v *ScoredVariant) *string

// FilterField selects the FILTER column.
func FilterField(v *ScoredVariant) *string {
	return &v.Filters
}

// InfoField selects an INFO annotation by key.
func InfoField(key string) FieldSelector {
	return func(v *ScoredVariant) *string {
		if val, ok := v.Info[key]; ok {
			return &val
		}
		return nil
	}
}

// SampleField selects a FORMAT key from the first sample column.
func SampleField(key string) FieldSelector {
	return func(v *ScoredVariant) *string {
		if val, ok := v.Sample[key]; ok {
			return &val
		}
		return nil
	}
}

// CollectFieldPairs gathers the per-variant value pairs for a field over
// the shared keys.
func CollectFieldPairs(
	sharedKeys map[string]struct{},
	variantsR1, variantsR2 map[string]*ScoredVariant,
	selector FieldSelector,
) []ValuePair {
	pairs := make([]ValuePair, 0, len(sharedKeys))
	for key := range sharedKeys {
		pairs = append(pairs, ValuePair{
			R1: selector(variantsR1[key]),
			R2: selector(variantsR2[key]),
		})
	}
	return pairs
}

// CompareColumn builds and renders the comparison for one field, choosing
// the numeric or categorical rendering from the classification.
func CompareColumn(
	rep report.Reporter,
	runID1, runID2 string,
	fieldName string,
	sharedKeys map[string]struct{},
	variantsR1, variantsR2 map[string]*ScoredVariant,
	selector FieldSelector,
) *ColumnComparison {
	pairs := CollectFieldPairs(sharedKeys, variantsR1, variantsR2, selector)
	comparison := NewColumnComparison(pairs)

	rep.Info("")
	if comparison.AllNumeric && len(comparison.NumericPairs) > 0 {
		rep.Info(fmt.Sprintf("%s (numeric)", fieldName))
		reportPresenceCounts(rep, comparison)
		ShowNumericalComparison(rep, runID1, runID2, comparison.NumericPairs, barWidth)
	} else {
		rep.Info(fieldName)
		reportPresenceCounts(rep, comparison)
		ShowCategoricalComparison(rep, runID1, runID2, comparison.CategoricalPairs)
	}
	return comparison
}

func reportPresenceCounts(rep report.Reporter, c *ColumnComparison) {
	rep.Info(fmt.Sprintf("%d present in both, %d identical (%d v1 only, %d v2 only)",
		c.BothPresent, c.NbrSame, c.V1Present, c.V2Present))
}

// transitionCount is one (from, to) value pair with its frequency and the
// order it was first seen, preserving stable ranking for ties.
type transitionCount struct {
	from  string
	to    string
	count int
}

// ShowCategoricalComparison renders the most frequent value transitions,
// ranked by count descending with ties broken by first encounter. The
// sort must stay stable.
func ShowCategoricalComparison(
	rep report.Reporter,
	runID1, runID2 string,
	pairs []CategoricalPair,
) {
	counts := make(map[[2]string]int)
	var order [][2]string

	for _, pair := range pairs {
		if pair.R1 == pair.R2 {
			continue
		}
		key := [2]string{pair.R1, pair.R2}
		if _, seen := counts[key]; !seen {
			order = append(order, key)
		}
		counts[key]++
	}

	transitions := make([]transitionCount, 0, len(order))
	for _, key := range order {
		transitions = append(transitions, transitionCount{from: key[0], to: key[1], count: counts[key]})
	}
	sort.SliceStable(transitions, func(i, j int) bool {
		return transitions[i].count > transitions[j].count
	})

	rep.Info(fmt.Sprintf("%s to %s", runID1, runID2))
	rows := [][]string{{"From", "To", "Count"}}
	for i, t := range transitions {
		if i >= maxTransitions {
			break
		}
		rows = append(rows, []string{t.from, t.to, strconv.Itoa(t.count)})
	}

	if len(transitions) > maxTransitions {
		rep.Info(fmt.Sprintf("Showing first %d", maxTransitions))
	}
	if len(rows) > 1 {
		for _, row := range util.PrettifyRows(rows, 4) {
			rep.Info(row)
		}
	} else {
		rep.Info("No differences found")
	}
}

// ShowNumericalComparison renders per-side sample statistics and one
// density bar per side over a shared min/max axis.
func ShowNumericalComparison(
	rep report.Reporter,
	runID1, runID2 string,
	pairs []NumericPair,
	width int,
) {
	v1Vals := make([]float64, 0, len(pairs))
	v2Vals := make([]float64, 0, len(pairs))
	identCount := 0
	for _, p := range pairs {
		v1Vals = append(v1Vals, p.R1)
		v2Vals = append(v2Vals, p.R2)
		if p.R1 == p.R2 {
			identCount++
		}
	}

	rep.Info(fmt.Sprintf("%s -> N=%d median=%s stdev=%s", runID1, len(v1Vals), statStr(util.Median(v1Vals)), statStr(util.Stdev(v1Vals))))
	rep.Info(fmt.Sprintf("%s -> N=%d median=%s stdev=%s", runID2, len(v2Vals), statStr(util.Median(v2Vals)), statStr(util.Stdev(v2Vals))))
	rep.Info(fmt.Sprintf("Identical pairs: %d Differing pairs: %d", identCount, len(pairs)-identCount))

	axisMin, axisMax := globalRange(v1Vals, v2Vals)
	rep.Info(fmt.Sprintf("%s |%s|", runID1, util.RenderRangeBar(v1Vals, axisMin, axisMax, width)))
	rep.Info(fmt.Sprintf("%s |%s|", runID2, util.RenderRangeBar(v2Vals, axisMin, axisMax, width)))
}

func statStr(v *float64) string {
	if v == nil {
		return "NA"
	}
	return util.FormatFloat(*v)
}

// globalRange spans both samples; empty input degrades to [0, 0].
func globalRange(v1Vals, v2Vals []float64) (float64, float64) {
	all := make([]float64, 0, len(v1Vals)+len(v2Vals))
	all = append(all, v1Vals...)
	all = append(all, v2Vals...)
	if len(all) == 0 {
		return 0, 0
	}
	minV, maxV := all[0], all[0]
	for _, v := range all[1:] {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	return minV, maxV
}
