package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jakobsg/rundiff/internal/history"
	"github.com/jakobsg/rundiff/internal/report"
	"github.com/jakobsg/rundiff/internal/vcf"
)

type vcfCmdOptions struct {
	vcf1            string
	vcf2            string
	id1             string
	id2             string
	isSV            bool
	results         string
	dbPath          string
	scoreThreshold  int
	maxDisplay      int
	maxCheckedAnnot int
	annotations     string
	allVariants     bool
	compareFilter   bool
	sampleFields    string
	infoFields      string
	verbose         bool
}

func newVCFCmd() *cobra.Command {
	opts := &vcfCmdOptions{}

	cmd := &cobra.Command{
		Use:   "vcf",
		Short: "Compare two scored VCF files",
		Long: `Compare two scored VCF files directly: variant presence, rank score
differences, annotation drift and optional per-field comparisons.`,
		Example: `  rundiff vcf -1 run1.scored.vcf.gz -2 run2.scored.vcf.gz
  rundiff vcf -1 a.vcf -2 b.vcf --is-sv --results outdir --score-threshold 17`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVCFCompare(opts)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&opts.vcf1, "vcf1", "1", "", "VCF to compare in .vcf or .vcf.gz format")
	fs.StringVarP(&opts.vcf2, "vcf2", "2", "", "VCF to compare in .vcf or .vcf.gz format")
	fs.StringVar(&opts.id1, "id1", "", "Optional run ID for first VCF")
	fs.StringVar(&opts.id2, "id2", "", "Optional run ID for second VCF")
	fs.BoolVar(&opts.isSV, "is-sv", false, "Process VCFs in SV mode")
	fs.StringVar(&opts.results, "results", "", "Optional results folder")
	fs.StringVar(&opts.dbPath, "db", "", "Optional DuckDB file recording score diffs")
	fs.IntVar(&opts.scoreThreshold, "score-threshold", 17, "Variants with higher rank score get extra attention")
	fs.IntVar(&opts.maxDisplay, "max-display", 10, "Limit the number of entries printed to stdout")
	fs.IntVar(&opts.maxCheckedAnnot, "max-checked-annots", 10000, "Limit the number of annotations to check (for performance)")
	fs.StringVar(&opts.annotations, "annotations", "", "Comma separated additional annotations to retain in output")
	fs.BoolVar(&opts.allVariants, "all-variants", false, "Also write the full score table of every shared variant")
	fs.BoolVar(&opts.compareFilter, "compare-filter", false, "Compare FILTER column values")
	fs.StringVar(&opts.sampleFields, "sample-fields", "", "Comma separated FORMAT keys to compare from the first sample")
	fs.StringVar(&opts.infoFields, "info-fields", "", "Comma separated INFO keys to run through the column comparison")
	fs.BoolVar(&opts.verbose, "verbose", false, "Print additional information")

	cmd.MarkFlagRequired("vcf1")
	cmd.MarkFlagRequired("vcf2")

	return cmd
}

func runVCFCompare(opts *vcfCmdOptions) error {
	logger := buildLogger(opts.verbose)
	defer logger.Sync()
	rep := report.NewZapReporter(logger)

	runID1 := opts.id1
	if runID1 == "" {
		runID1 = runIDFromFilename(opts.vcf1)
		rep.Info(fmt.Sprintf("# --id1 not set, assigned: %s", runID1))
	}
	runID2 := opts.id2
	if runID2 == "" {
		runID2 = runIDFromFilename(opts.vcf2)
		if runID1 == runID2 {
			runID2 += "_2"
		}
		rep.Info(fmt.Sprintf("# --id2 not set, assigned: %s", runID2))
	}

	compOpts := vcf.ComparisonOptions{
		IsSV:            opts.isSV,
		ScoreThreshold:  opts.scoreThreshold,
		MaxDisplay:      opts.maxDisplay,
		MaxCheckedAnnot: opts.maxCheckedAnnot,
		ShowLineNumbers: true,
		DoScoreCheck:    true,
		DoAnnotCheck:    true,
		CompareFilter:   opts.compareFilter,
		SampleFields:    splitCommaList(opts.sampleFields),
		CustomInfoKeys:  splitCommaList(opts.infoFields),
	}
	compOpts.AnnotationInfoKeys = splitCommaList(opts.annotations)

	if opts.results != "" {
		if err := os.MkdirAll(opts.results, 0755); err != nil {
			return fmt.Errorf("create results folder: %w", err)
		}
		compOpts.OutPathPresence = filepath.Join(opts.results, "presence.txt")
		compOpts.OutPathScoreAboveThres = filepath.Join(opts.results, fmt.Sprintf("above_thres_%d.txt", opts.scoreThreshold))
		compOpts.OutPathScoreAllDiffing = filepath.Join(opts.results, "score_all.txt")
		if opts.allVariants {
			compOpts.OutPathScoreFull = filepath.Join(opts.results, "score_full.txt")
		}
	}

	result, err := vcf.VariantComparisons(rep, runID1, runID2, opts.vcf1, opts.vcf2, compOpts)
	if err != nil {
		return err
	}

	if opts.dbPath != "" && len(result.ScoreDiffs) > 0 {
		store, err := history.Open(opts.dbPath)
		if err != nil {
			return err
		}
		defer store.Close()
		label := "snv"
		if opts.isSV {
			label = "sv"
		}
		if err := store.RecordScoreDiffs(runID1, runID2, label, result.ScoreDiffs); err != nil {
			return err
		}
		rep.Info(fmt.Sprintf("Recorded %d score diffs to %s", len(result.ScoreDiffs), opts.dbPath))
	}

	return nil
}

// runIDFromFilename derives a run id from the filename stem.
func runIDFromFilename(path string) string {
	base := filepath.Base(path)
	if idx := strings.Index(base, "."); idx > 0 {
		return base[:idx]
	}
	return base
}

func splitCommaList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
