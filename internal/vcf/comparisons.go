package vcf

import (
	"fmt"

	"github.com/jakobsg/rundiff/internal/compare"
	"github.com/jakobsg/rundiff/internal/report"
)

// ComparisonOptions configures one VCF pair comparison.
type ComparisonOptions struct {
	IsSV            bool
	ScoreThreshold  int
	MaxDisplay      int
	MaxCheckedAnnot int
	ShowLineNumbers bool

	DoScoreCheck bool
	DoAnnotCheck bool

	// Optional output destinations; empty string skips the artifact.
	OutPathPresence        string
	OutPathScoreAboveThres string
	OutPathScoreAllDiffing string
	OutPathScoreFull       string

	// Extra INFO keys surfaced in the presence report.
	AnnotationInfoKeys []string

	// Extra fields run through the column comparison engine.
	CompareFilter  bool
	SampleFields   []string
	CustomInfoKeys []string
}

// ComparisonResult summarizes one completed pair comparison.
type ComparisonResult struct {
	RunID1, RunID2 string
	VCF1, VCF2     *ScoredVCF
	Presence       compare.Comparison[string]
	ScoreDiffs     []*DiffScoredVariant
}

// VariantComparisons parses both files and runs the presence, annotation,
// score and column comparisons requested by the options. Everything is
// reported through rep; file artifacts go to the configured paths.
func VariantComparisons(
	rep report.Reporter,
	runID1, runID2 string,
	vcfPath1, vcfPath2 string,
	opts ComparisonOptions,
) (*ComparisonResult, error) {
	vcf1, err := ParseScoredVCF(vcfPath1, opts.IsSV, rep)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", vcfPath1, err)
	}
	vcf2, err := ParseScoredVCF(vcfPath2, opts.IsSV, rep)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", vcfPath2, err)
	}

	comparison := compare.Compare(vcf1.KeySet(), vcf2.KeySet())

	err = CompareVariantPresence(rep, runID1, runID2, vcf1.Variants, vcf2.Variants, comparison, PresenceOptions{
		MaxDisplay:            opts.MaxDisplay,
		OutPath:               opts.OutPathPresence,
		ShowLineNumbers:       opts.ShowLineNumbers,
		AdditionalAnnotations: opts.AnnotationInfoKeys,
	})
	if err != nil {
		return nil, err
	}

	result := &ComparisonResult{
		RunID1:   runID1,
		RunID2:   runID2,
		VCF1:     vcf1,
		VCF2:     vcf2,
		Presence: comparison,
	}

	sharedKeys := comparison.Shared

	if opts.DoAnnotCheck {
		rep.Info("")
		rep.Info("--- Comparing annotations ---")
		err = CompareVariantAnnotation(rep, runID1, runID2, sharedKeys, vcf1.Variants, vcf2.Variants, opts.MaxCheckedAnnot)
		if err != nil {
			return nil, err
		}
	}

	if opts.DoScoreCheck {
		rep.Info("")
		rep.Info("--- Comparing score ---")
		diffs, err := CompareVariantScore(rep, runID1, runID2, sharedKeys, vcf1.Variants, vcf2.Variants, ScoreOptions{
			Threshold:         opts.ScoreThreshold,
			MaxDisplay:        opts.MaxDisplay,
			OutPathAboveThres: opts.OutPathScoreAboveThres,
			OutPathAllDiffing: opts.OutPathScoreAllDiffing,
			IsSV:              opts.IsSV,
			ShowLineNumbers:   opts.ShowLineNumbers,
		})
		if err != nil {
			return nil, err
		}
		result.ScoreDiffs = diffs

		if opts.OutPathScoreFull != "" {
			err = WriteFullScoreTable(runID1, runID2, sharedKeys, vcf1.Variants, vcf2.Variants,
				opts.OutPathScoreFull, opts.IsSV, opts.ShowLineNumbers)
			if err != nil {
				return nil, err
			}
		}
	}

	if opts.CompareFilter {
		rep.Info("")
		rep.Info("--- Comparing filter differences ---")
		CompareColumn(rep, runID1, runID2, "FILTER", sharedKeys, vcf1.Variants, vcf2.Variants, FilterField)
	}

	for _, key := range opts.SampleFields {
		CompareColumn(rep, runID1, runID2, "FORMAT:"+key, sharedKeys, vcf1.Variants, vcf2.Variants, SampleField(key))
	}

	for _, key := range opts.CustomInfoKeys {
		CompareColumn(rep, runID1, runID2, key, sharedKeys, vcf1.Variants, vcf2.Variants, InfoField(key))
	}

	return result, nil
}
