package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jakobsg/rundiff/internal/config"
	"github.com/jakobsg/rundiff/internal/history"
	"github.com/jakobsg/rundiff/internal/report"
	"github.com/jakobsg/rundiff/internal/run"
	"github.com/jakobsg/rundiff/internal/vcf"
)

// isVCFPattern matches scored VCF files in a result tree.
const isVCFPattern = `\.vcf$|\.vcf\.gz$`

var validComparisons = []string{
	"default", "file", "vcf", "score_snv", "score_sv",
	"annotation_snv", "annotation_sv", "yaml", "versions",
}

type evalCmdOptions struct {
	runID1          string
	runID2          string
	results1        string
	results2        string
	configPath      string
	comparisons     string
	scoreThreshold  int
	maxDisplay      int
	maxCheckedAnnot int
	outdir          string
	dbPath          string
	showLineNumbers bool
	annotations     string
	allVariants     bool
	verbose         bool
}

func newEvalCmd() *cobra.Command {
	opts := &evalCmdOptions{}

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Compare two pipeline result directories",
		Long: `Compare results for two runs of the pipeline.

Performs all or a subset of the comparisons:

- What files are present
- Do the VCF files have the same number of variants
- For the scored SNV and SV VCFs, call differences and rank score differences
- Are there differences in the YAML and version reports`,
		Example: `  rundiff eval -1 results/240101-1200_runA -2 results/240102-0900_runB
  rundiff eval -1 old -2 new --comparisons score_snv,annotation_snv --outdir cmp`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(opts)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&opts.results1, "results1", "1", "", "First result directory")
	fs.StringVarP(&opts.results2, "results2", "2", "", "Second result directory")
	fs.StringVar(&opts.runID1, "run-id1", "", "Run ID used in some file names, defaults to the base folder name")
	fs.StringVar(&opts.runID2, "run-id2", "", "See --run-id1")
	fs.StringVar(&opts.configPath, "config", "", "Additional configurations (YAML)")
	fs.StringVar(&opts.comparisons, "comparisons", "default",
		fmt.Sprintf("Comma separated, run all by: %s", strings.Join(validComparisons[1:], ",")))
	fs.IntVar(&opts.scoreThreshold, "score-threshold", 17, "Limit score comparisons to above this threshold")
	fs.IntVar(&opts.maxDisplay, "max-display", 15, "Max number of top variants to print to stdout")
	fs.IntVar(&opts.maxCheckedAnnot, "max-checked-annots", 10000, "Limit the number of annotations to check")
	fs.StringVar(&opts.outdir, "outdir", "", "Folder receiving the full report files")
	fs.StringVar(&opts.dbPath, "db", "", "Optional DuckDB file recording score diffs")
	fs.BoolVar(&opts.showLineNumbers, "line-numbers", false, "Show originating line numbers in variant tables")
	fs.StringVar(&opts.annotations, "annotations", "", "Comma separated additional annotations to retain in output")
	fs.BoolVar(&opts.allVariants, "all-variants", false, "Also write the full score table of every shared variant")
	fs.BoolVar(&opts.verbose, "verbose", false, "Print additional information")

	cmd.MarkFlagRequired("results1")
	cmd.MarkFlagRequired("results2")

	return cmd
}

// evalContext carries the shared state of one eval invocation.
type evalContext struct {
	rep      report.Reporter
	opts     *evalCmdOptions
	settings config.Settings
	runID1   string
	runID2   string
	r1Paths  []run.PathObj
	r2Paths  []run.PathObj
	selected map[string]bool
	store    *history.Store
	failures int
}

func runEval(opts *evalCmdOptions) error {
	logger := buildLogger(opts.verbose)
	defer logger.Sync()
	rep := report.NewZapReporter(logger)

	selected, err := parseComparisons(opts.comparisons)
	if err != nil {
		return err
	}

	settings, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	if err := verifyDirsExist(opts.results1, opts.results2); err != nil {
		return err
	}
	if opts.outdir != "" {
		if err := os.MkdirAll(opts.outdir, 0755); err != nil {
			return fmt.Errorf("create outdir: %w", err)
		}
	}

	runID1 := opts.runID1
	if runID1 == "" {
		runID1 = run.DetectRunID(rep, filepath.Base(opts.results1), opts.verbose)
		rep.Info(fmt.Sprintf("# --run-id1 not set, assigned: %s", runID1))
	}
	runID2 := opts.runID2
	if runID2 == "" {
		runID2 = run.DetectRunID(rep, filepath.Base(opts.results2), opts.verbose)
		rep.Info(fmt.Sprintf("# --run-id2 not set, assigned: %s", runID2))
	}

	r1Paths, err := run.FilesInDir(opts.results1, runID1)
	if err != nil {
		return err
	}
	r2Paths, err := run.FilesInDir(opts.results2, runID2)
	if err != nil {
		return err
	}

	ctx := &evalContext{
		rep:      rep,
		opts:     opts,
		settings: settings,
		runID1:   runID1,
		runID2:   runID2,
		r1Paths:  r1Paths,
		r2Paths:  r2Paths,
		selected: selected,
	}

	if opts.dbPath != "" {
		store, err := history.Open(opts.dbPath)
		if err != nil {
			return err
		}
		defer store.Close()
		ctx.store = store
	}

	// Independent comparisons: one failing does not stop the others.
	ctx.runComparison("file", ctx.compareFiles)
	ctx.runComparison("vcf", ctx.compareVCFCounts)
	ctx.runScoredComparison("snv", false)
	ctx.runScoredComparison("sv", true)
	ctx.runComparison("yaml", func() error { return ctx.diffReport("Scout YAMLs", ctx.settings.YAML, "yaml_diff.txt") })
	ctx.runComparison("versions", func() error { return ctx.diffReport("versions", ctx.settings.Versions, "versions_diff.txt") })

	if ctx.failures > 0 {
		return fmt.Errorf("%d comparison(s) failed", ctx.failures)
	}
	return nil
}

func parseComparisons(arg string) (map[string]bool, error) {
	selected := make(map[string]bool)
	valid := make(map[string]bool)
	for _, c := range validComparisons {
		valid[c] = true
	}
	for _, c := range splitCommaList(arg) {
		if !valid[c] {
			return nil, fmt.Errorf("valid comparisons are: %s, found: %s",
				strings.Join(validComparisons, ","), c)
		}
		selected[c] = true
	}
	if len(selected) == 0 {
		selected["default"] = true
	}
	return selected, nil
}

// wants reports whether a comparison was requested. "default" selects
// everything except the verbose per-VCF count comparison.
func (ctx *evalContext) wants(name string) bool {
	if ctx.selected[name] {
		return true
	}
	return ctx.selected["default"] && name != "vcf"
}

func (ctx *evalContext) runComparison(name string, fn func() error) {
	if !ctx.wants(name) {
		return
	}
	if err := fn(); err != nil {
		ctx.rep.Error(fmt.Sprintf("%s comparison failed: %v", name, err))
		ctx.failures++
	}
}

func (ctx *evalContext) outPath(name string) string {
	if ctx.opts.outdir == "" {
		return ""
	}
	return filepath.Join(ctx.opts.outdir, name)
}

func (ctx *evalContext) compareFiles() error {
	ctx.rep.Info("")
	ctx.rep.Info("### Comparing existing files ###")
	return run.CheckSameFiles(
		ctx.rep, ctx.runID1, ctx.runID2,
		ctx.r1Paths, ctx.r2Paths,
		ctx.settings.Ignore,
		ctx.outPath("check_sample_files.txt"),
	)
}

func (ctx *evalContext) compareVCFCounts() error {
	ctx.rep.Info("")
	ctx.rep.Info("--- Comparing VCF numbers ---")
	r1VCFs, err := run.FilesEndingWith(isVCFPattern, ctx.r1Paths)
	if err != nil {
		return err
	}
	r2VCFs, err := run.FilesEndingWith(isVCFPattern, ctx.r2Paths)
	if err != nil {
		return err
	}
	if len(r1VCFs) == 0 && len(r2VCFs) == 0 {
		ctx.rep.Warning("No VCFs detected, skipping VCF comparison")
		return nil
	}
	return run.CompareAllVCFCounts(ctx.rep, ctx.runID1, ctx.runID2, r1VCFs, r2VCFs, ctx.outPath("all_vcf_compare.txt"))
}

// runScoredComparison runs the score and/or annotation comparison for the
// scored SNV or SV VCF pair.
func (ctx *evalContext) runScoredComparison(label string, isSV bool) {
	scoreName := "score_" + label
	annotName := "annotation_" + label
	if !ctx.wants(scoreName) && !ctx.wants(annotName) {
		return
	}

	ctx.rep.Info("")
	ctx.rep.Info(fmt.Sprintf("--- Comparing scored %s VCFs ---", strings.ToUpper(label)))

	patterns := ctx.settings.ScoredSNV
	if isSV {
		patterns = ctx.settings.ScoredSV
	}

	vcf1, vcf2, err := run.PairMatch(ctx.rep, "scored "+strings.ToUpper(label)+"s", patterns,
		ctx.r1Paths, ctx.r2Paths, ctx.opts.verbose)
	if err != nil {
		ctx.rep.Error(fmt.Sprintf("%s comparison failed: %v", scoreName, err))
		ctx.failures++
		return
	}

	compOpts := vcf.ComparisonOptions{
		IsSV:                   isSV,
		ScoreThreshold:         ctx.opts.scoreThreshold,
		MaxDisplay:             ctx.opts.maxDisplay,
		MaxCheckedAnnot:        ctx.opts.maxCheckedAnnot,
		ShowLineNumbers:        ctx.opts.showLineNumbers,
		DoScoreCheck:           ctx.wants(scoreName),
		DoAnnotCheck:           ctx.wants(annotName),
		OutPathPresence:        ctx.outPath(fmt.Sprintf("scored_%s_presence.txt", label)),
		OutPathScoreAboveThres: ctx.outPath(fmt.Sprintf("scored_%s_score_thres_%d.txt", label, ctx.opts.scoreThreshold)),
		OutPathScoreAllDiffing: ctx.outPath(fmt.Sprintf("scored_%s_score_all.txt", label)),
		AnnotationInfoKeys:     splitCommaList(ctx.opts.annotations),
	}
	if ctx.opts.allVariants {
		compOpts.OutPathScoreFull = ctx.outPath(fmt.Sprintf("scored_%s_score_full.txt", label))
	}

	result, err := vcf.VariantComparisons(ctx.rep, ctx.runID1, ctx.runID2, vcf1, vcf2, compOpts)
	if err != nil {
		ctx.rep.Error(fmt.Sprintf("%s comparison failed: %v", scoreName, err))
		ctx.failures++
		return
	}

	if ctx.store != nil && len(result.ScoreDiffs) > 0 {
		if err := ctx.store.RecordScoreDiffs(ctx.runID1, ctx.runID2, label, result.ScoreDiffs); err != nil {
			ctx.rep.Error(fmt.Sprintf("recording %s score diffs failed: %v", label, err))
			ctx.failures++
		}
	}
}

func (ctx *evalContext) diffReport(label string, patterns []string, outName string) error {
	ctx.rep.Info("")
	ctx.rep.Info(fmt.Sprintf("--- Comparing %s ---", label))
	file1, file2, err := run.PairMatch(ctx.rep, label, patterns, ctx.r1Paths, ctx.r2Paths, ctx.opts.verbose)
	if err != nil {
		return err
	}
	return run.DiffCompareFiles(ctx.rep, ctx.runID1, ctx.runID2, file1, file2, ctx.outPath(outName))
}

func verifyDirsExist(dir1, dir2 string) error {
	for _, dir := range []string{dir1, dir2} {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("result dir %s: %w", dir, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("result dir %s is not a directory", dir)
		}
	}
	return nil
}
