package vcf

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/jakobsg/rundiff/internal/report"
	"github.com/jakobsg/rundiff/internal/util"
)

// ScoreOptions configures the rank-score comparison.
type ScoreOptions struct {
	Threshold         int
	MaxDisplay        int
	OutPathAboveThres string // full above-threshold table
	OutPathAllDiffing string // full table of every differing pair
	IsSV              bool
	ShowLineNumbers   bool
}

// DiffScoredVariants collects the shared-key pairs whose rank scores
// differ. A score absent on one side counts as differing from any value.
func DiffScoredVariants(
	sharedKeys map[string]struct{},
	variantsR1, variantsR2 map[string]*ScoredVariant,
) []*DiffScoredVariant {
	var diffs []*DiffScoredVariant
	for key := range sharedKeys {
		r1 := variantsR1[key]
		r2 := variantsR2[key]
		if !rankScoresEqual(r1.RankScore, r2.RankScore) {
			diffs = append(diffs, &DiffScoredVariant{R1: r1, R2: r2})
		}
	}
	return diffs
}

func rankScoresEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// sortByR1ScoreDesc orders pairs by the left-side score, highest first.
// Every retained pair must carry a left score; a nil one is a defect in
// the caller's filtering, not a sortable value.
func sortByR1ScoreDesc(variants []*DiffScoredVariant) error {
	for _, v := range variants {
		if _, err := v.R1.RankScoreValue(); err != nil {
			return err
		}
	}
	sort.SliceStable(variants, func(i, j int) bool {
		return *variants[i].R1.RankScore > *variants[j].R1.RankScore
	})
	return nil
}

// CompareVariantScore runs the full score comparison: counts, the capped
// preview table through the reporter, and the full above-threshold and
// all-differing files.
func CompareVariantScore(
	rep report.Reporter,
	runID1, runID2 string,
	sharedKeys map[string]struct{},
	variantsR1, variantsR2 map[string]*ScoredVariant,
	opts ScoreOptions,
) ([]*DiffScoredVariant, error) {
	diffs := DiffScoredVariants(sharedKeys, variantsR1, variantsR2)
	if len(diffs) == 0 {
		rep.Info("# No differently scored variants found")
		return nil, nil
	}

	if err := sortByR1ScoreDesc(diffs); err != nil {
		return nil, err
	}

	var aboveThres []*DiffScoredVariant
	for _, d := range diffs {
		if d.AnyAboveThreshold(opts.Threshold) {
			aboveThres = append(aboveThres, d)
		}
	}

	rep.Info(fmt.Sprintf("# Number differently scored total: %d", len(diffs)))
	rep.Info(fmt.Sprintf("# Number differently scored above %d: %d", opts.Threshold, len(aboveThres)))
	rep.Info(fmt.Sprintf(
		"# Total number shared variants: %d (%s: %d, %s: %d)",
		len(sharedKeys), runID1, len(variantsR1), runID2, len(variantsR2)))

	subScoreNames := subScoreNamesFor(diffs[0])

	limitedHeader := scoreTableHeader(runID1, runID2, nil, opts.IsSV, opts.ShowLineNumbers)
	fullHeader := scoreTableHeader(runID1, runID2, subScoreNames, opts.IsSV, opts.ShowLineNumbers)

	fullBody, err := scoreTable(diffs, opts.IsSV, opts.ShowLineNumbers, true)
	if err != nil {
		return nil, err
	}

	if opts.OutPathAllDiffing != "" {
		if err := writeScoreTable(opts.OutPathAllDiffing, fullHeader, fullBody); err != nil {
			return nil, err
		}
	}

	if len(aboveThres) > opts.MaxDisplay {
		rep.Info(fmt.Sprintf("# Only printing the %d first", opts.MaxDisplay))
	}

	previewRows := [][]string{limitedHeader}
	for _, row := range fullBody[:min(len(fullBody), opts.MaxDisplay)] {
		previewRows = append(previewRows, row[:len(limitedHeader)])
	}
	for _, line := range util.PrettifyRows(previewRows, 4) {
		rep.Info(line)
	}

	if opts.OutPathAboveThres != "" {
		aboveBody, err := scoreTable(aboveThres, opts.IsSV, opts.ShowLineNumbers, true)
		if err != nil {
			return nil, err
		}
		if err := writeScoreTable(opts.OutPathAboveThres, fullHeader, aboveBody); err != nil {
			return nil, err
		}
	}

	return diffs, nil
}

// WriteFullScoreTable dumps every shared variant, differing or not,
// sorted by left score.
func WriteFullScoreTable(
	runID1, runID2 string,
	sharedKeys map[string]struct{},
	variantsR1, variantsR2 map[string]*ScoredVariant,
	outPath string,
	isSV, showLineNumbers bool,
) error {
	all := make([]*DiffScoredVariant, 0, len(sharedKeys))
	for key := range sharedKeys {
		all = append(all, &DiffScoredVariant{R1: variantsR1[key], R2: variantsR2[key]})
	}
	if err := sortByR1ScoreDesc(all); err != nil {
		return err
	}

	var subScoreNames []string
	if len(all) > 0 {
		subScoreNames = subScoreNamesFor(all[0])
	}
	header := scoreTableHeader(runID1, runID2, subScoreNames, isSV, showLineNumbers)
	body, err := scoreTable(all, isSV, showLineNumbers, true)
	if err != nil {
		return err
	}
	return writeScoreTable(outPath, header, body)
}

func subScoreNamesFor(d *DiffScoredVariant) []string {
	names := make([]string, len(d.R1.SubScores))
	for i, s := range d.R1.SubScores {
		names[i] = s.Category
	}
	return names
}

// scoreTableHeader builds the column header. A nil subScoreNames slice
// yields the limited preview header without per-category columns.
func scoreTableHeader(runID1, runID2 string, subScoreNames []string, isSV, showLineNumbers bool) []string {
	header := []string{"chr", "pos", "var"}
	if isSV {
		header = append(header, "sv_len")
	}
	if showLineNumbers {
		header = append(header, "line_numbers")
	}
	header = append(header, "score_"+runID1, "score_"+runID2, "score_diff_summary")
	for _, name := range subScoreNames {
		header = append(header, "r1_"+name)
	}
	for _, name := range subScoreNames {
		header = append(header, "r2_"+name)
	}
	return header
}

func scoreTable(variants []*DiffScoredVariant, isSV, showLineNumbers, showSubScores bool) ([][]string, error) {
	rows := make([][]string, 0, len(variants))
	for _, v := range variants {
		row, err := comparisonRow(v.R1, v.R2, isSV, showLineNumbers, showSubScores)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// comparisonRow renders one shared variant pair as table cells.
func comparisonRow(var1, var2 *ScoredVariant, showSVLen, showLineNumbers, showSubScores bool) ([]string, error) {
	if !var1.SameVariant(var2) {
		return nil, fmt.Errorf("must compare the same variant, this: %s other: %s", var1, var2)
	}

	fields := []string{
		var1.Chrom,
		strconv.Itoa(var1.Pos),
		fmt.Sprintf("%s/%s", var1.TruncRef(), var1.TruncAlt()),
	}

	if showSVLen {
		svLen := "NA"
		if var1.SVLength != nil {
			svLen = strconv.Itoa(*var1.SVLength)
		}
		fields = append(fields, svLen)
	}

	if showLineNumbers {
		fields = append(fields, fmt.Sprintf("%d/%d", var1.LineNumber, var2.LineNumber))
	}

	fields = append(fields, var1.RankScoreStr(), var2.RankScoreStr())

	summary, err := subScoreSummary(var1.SubScores, var2.SubScores)
	if err != nil {
		return nil, err
	}
	fields = append(fields, summary)

	if showSubScores {
		for _, sub := range var1.SubScores {
			fields = append(fields, strconv.Itoa(sub.Value))
		}
		for _, sub := range var2.SubScores {
			fields = append(fields, strconv.Itoa(sub.Value))
		}
	}
	return fields, nil
}

func writeScoreTable(outPath string, header []string, body [][]string) error {
	fh, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create score table output: %w", err)
	}
	defer fh.Close()

	for _, row := range append([][]string{header}, body...) {
		if _, err := fmt.Fprintln(fh, strings.Join(row, "\t")); err != nil {
			return fmt.Errorf("write score table: %w", err)
		}
	}
	return nil
}
