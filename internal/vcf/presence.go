package vcf

import (
	"fmt"
	"os"

	"github.com/jakobsg/rundiff/internal/compare"
	"github.com/jakobsg/rundiff/internal/report"
	"github.com/jakobsg/rundiff/internal/util"
)

// PresenceOptions configures the variant presence report.
type PresenceOptions struct {
	MaxDisplay            int
	OutPath               string // optional full-table destination
	ShowLineNumbers       bool
	AdditionalAnnotations []string
}

// CompareVariantPresence reports variants found on only one side: a capped
// preview through the reporter and, when an output path is given, the
// unbounded tables to file.
func CompareVariantPresence(
	rep report.Reporter,
	runID1, runID2 string,
	variantsR1, variantsR2 map[string]*ScoredVariant,
	comparison compare.Comparison[string],
	opts PresenceOptions,
) error {
	summary, err := presenceSummary(
		runID1, runID2,
		comparison.R1Only, comparison.R2Only,
		variantsR1, variantsR2,
		opts.ShowLineNumbers, &opts.MaxDisplay, opts.AdditionalAnnotations,
	)
	if err != nil {
		return err
	}

	if len(summary) > 0 {
		for _, line := range summary {
			rep.Info(line)
		}
	} else {
		rep.Info("No difference found")
	}

	if opts.OutPath != "" {
		full, err := presenceSummary(
			runID1, runID2,
			comparison.R1Only, comparison.R2Only,
			variantsR1, variantsR2,
			opts.ShowLineNumbers, nil, opts.AdditionalAnnotations,
		)
		if err != nil {
			return err
		}
		fh, err := os.Create(opts.OutPath)
		if err != nil {
			return fmt.Errorf("create presence output: %w", err)
		}
		defer fh.Close()
		for _, line := range full {
			fmt.Fprintln(fh, line)
		}
	}
	return nil
}

// presenceSummary renders the one-sided tables in canonical order. A nil
// maxDisplay means unbounded.
func presenceSummary(
	runID1, runID2 string,
	r1Only, r2Only map[string]struct{},
	variantsR1, variantsR2 map[string]*ScoredVariant,
	showLineNumbers bool,
	maxDisplay *int,
	additionalAnnotations []string,
) ([]string, error) {
	var output []string

	appendSide := func(runID string, only map[string]struct{}, variants map[string]*ScoredVariant) error {
		if len(only) == 0 {
			return nil
		}
		if maxDisplay != nil {
			output = append(output, fmt.Sprintf("# First %d only found in %s", min(len(only), *maxDisplay), runID))
		} else {
			output = append(output, fmt.Sprintf("Only found in %s", runID))
		}

		sorted, err := compare.SortVariantKeys(only)
		if err != nil {
			return err
		}
		if maxDisplay != nil && len(sorted) > *maxDisplay {
			sorted = sorted[:*maxDisplay]
		}

		table := make([][]string, 0, len(sorted))
		for _, key := range sorted {
			table = append(table, variants[key].Row(showLineNumbers, additionalAnnotations))
		}
		output = append(output, util.PrettifyRows(table, 4)...)
		return nil
	}

	if err := appendSide(runID1, r1Only, variantsR1); err != nil {
		return nil, err
	}
	if err := appendSide(runID2, r2Only, variantsR2); err != nil {
		return nil, err
	}
	return output, nil
}
