package vcf

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jakobsg/rundiff/internal/compare"
	"github.com/jakobsg/rundiff/internal/report"
	"github.com/jakobsg/rundiff/internal/util"
)

// MaxStrLen caps annotation values in report output.
const MaxStrLen = 50

// RunIDPlaceholder replaces each run's label before comparing annotation
// values, so label-only differences are not reported as drift.
const RunIDPlaceholder = "RUNID"

// AnnotComp records the first observed value difference for one INFO key.
type AnnotComp struct {
	VariantKey string
	InfoKey    string
	Variant    *ScoredVariant
	R1Annot    string
	R2Annot    string
}

// AnnotationDiffs holds the outcome of the annotation comparison: value
// differences grouped per INFO key, plus occurrence tallies for keys
// present on only one side.
type AnnotationDiffs struct {
	PerKey      map[string][]AnnotComp
	KeyOrder    []string // INFO keys in first-difference-encountered order
	R1OnlyKeys  map[string]int
	R2OnlyKeys  map[string]int
	NbrChecked  int
	TotalShared int
}

// CompareVariantAnnotation diffs INFO keys and values across the shared
// variants, capped at maxChecked, and reports a per-key summary.
func CompareVariantAnnotation(
	rep report.Reporter,
	runID1, runID2 string,
	sharedKeys map[string]struct{},
	variantsR1, variantsR2 map[string]*ScoredVariant,
	maxChecked int,
) error {
	diffs, err := CalculateAnnotationDiffs(sharedKeys, variantsR1, variantsR2, maxChecked, runID1, runID2)
	if err != nil {
		return err
	}

	if diffs.NbrChecked < diffs.TotalShared {
		rep.Info(fmt.Sprintf("Checking first %d out of %d variants", diffs.NbrChecked, diffs.TotalShared))
	}

	if len(diffs.R1OnlyKeys) == 0 && len(diffs.R2OnlyKeys) == 0 {
		rep.Info(fmt.Sprintf("No annotation keys found uniquely in one VCF among first %d variants", diffs.NbrChecked))
	} else {
		reportOneSidedKeys(rep, runID1, diffs.R1OnlyKeys, diffs.NbrChecked)
		reportOneSidedKeys(rep, runID2, diffs.R2OnlyKeys, diffs.NbrChecked)
	}

	if len(diffs.PerKey) == 0 {
		rep.Info("Among shared annotation keys, all values were the same")
		return nil
	}

	rep.Info(fmt.Sprintf(
		"Found %d shared keys with differing annotation values among %d variants",
		len(diffs.PerKey), diffs.NbrChecked))
	rep.Info("Showing number differing and first variant for each annotation")
	for _, row := range diffs.SummaryRows() {
		rep.Info(row)
	}
	return nil
}

func reportOneSidedKeys(rep report.Reporter, runID string, keys map[string]int, nbrChecked int) {
	if len(keys) == 0 {
		rep.Info(fmt.Sprintf("No annotation keys found only in %s", runID))
		return
	}
	rep.Info(fmt.Sprintf("Annotation keys only found in %s among %d variants", runID, nbrChecked))
	sorted := make([]string, 0, len(keys))
	for key := range keys {
		sorted = append(sorted, key)
	}
	sort.Strings(sorted)
	for _, key := range sorted {
		rep.Info(fmt.Sprintf("%s: %d", key, keys[key]))
	}
}

// CalculateAnnotationDiffs walks the shared variants in canonical order,
// tallying one-sided INFO keys and collecting value differences after
// run-id placeholder substitution.
func CalculateAnnotationDiffs(
	sharedKeys map[string]struct{},
	variantsR1, variantsR2 map[string]*ScoredVariant,
	maxChecked int,
	runID1, runID2 string,
) (*AnnotationDiffs, error) {
	diffs := &AnnotationDiffs{
		PerKey:      make(map[string][]AnnotComp),
		R1OnlyKeys:  make(map[string]int),
		R2OnlyKeys:  make(map[string]int),
		TotalShared: len(sharedKeys),
	}

	sorted, err := compare.SortVariantKeys(sharedKeys)
	if err != nil {
		return nil, err
	}

	for _, variantKey := range sorted {
		if diffs.NbrChecked >= maxChecked {
			break
		}
		varR1 := variantsR1[variantKey]
		varR2 := variantsR2[variantKey]

		keyComparison := compare.Compare(infoKeySet(varR1), infoKeySet(varR2))
		for infoKey := range keyComparison.R1Only {
			diffs.R1OnlyKeys[infoKey]++
		}
		for infoKey := range keyComparison.R2Only {
			diffs.R2OnlyKeys[infoKey]++
		}

		for sharedAnnotKey := range keyComparison.Shared {
			valR1 := strings.ReplaceAll(varR1.Info[sharedAnnotKey], runID1, RunIDPlaceholder)
			valR2 := strings.ReplaceAll(varR2.Info[sharedAnnotKey], runID2, RunIDPlaceholder)
			if valR1 == valR2 {
				continue
			}
			if _, seen := diffs.PerKey[sharedAnnotKey]; !seen {
				diffs.KeyOrder = append(diffs.KeyOrder, sharedAnnotKey)
			}
			diffs.PerKey[sharedAnnotKey] = append(diffs.PerKey[sharedAnnotKey], AnnotComp{
				VariantKey: variantKey,
				InfoKey:    sharedAnnotKey,
				Variant:    varR1,
				R1Annot:    valR1,
				R2Annot:    valR2,
			})
		}

		diffs.NbrChecked++
	}

	return diffs, nil
}

func infoKeySet(v *ScoredVariant) map[string]struct{} {
	keys := make(map[string]struct{}, len(v.Info))
	for k := range v.Info {
		keys[k] = struct{}{}
	}
	return keys
}

// SummaryRows renders one aligned row per differing INFO key: the count of
// differing variants and the first offending variant as the example.
func (d *AnnotationDiffs) SummaryRows() []string {
	rows := [][]string{{"key", "number", "pos", "ref/alt", "first example"}}
	for _, infoKey := range d.KeyOrder {
		valueDiffs := d.PerKey[infoKey]
		first := valueDiffs[0]
		v := first.Variant
		rows = append(rows, []string{
			infoKey,
			strconv.Itoa(len(valueDiffs)),
			fmt.Sprintf("%s:%d", v.Chrom, v.Pos),
			fmt.Sprintf("%s:%s", v.TruncRef(), v.TruncAlt()),
			fmt.Sprintf("%s / %s",
				util.TruncateString(first.R1Annot, MaxStrLen),
				util.TruncateString(first.R2Annot, MaxStrLen)),
		})
	}
	return util.PrettifyRows(rows, 2)
}
