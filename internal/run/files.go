package run

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/jakobsg/rundiff/internal/compare"
	"github.com/jakobsg/rundiff/internal/report"
	"github.com/jakobsg/rundiff/internal/vcf"
)

// teeToFile wraps a reporter so Info lines also land in outPath when set.
// The returned closer is a no-op when no path was requested.
func teeToFile(rep report.Reporter, outPath string) (report.Reporter, func() error, error) {
	if outPath == "" {
		return rep, func() error { return nil }, nil
	}
	fh, err := os.Create(outPath)
	if err != nil {
		return nil, nil, fmt.Errorf("create output file: %w", err)
	}
	return &report.Tee{Inner: rep, W: fh}, fh.Close, nil
}

// CheckSameFiles compares which files exist in the two result trees,
// ignoring configured directories but tallying what was ignored.
func CheckSameFiles(
	rep report.Reporter,
	r1Label, r2Label string,
	r1Paths, r2Paths []PathObj,
	ignoreDirs []string,
	outPath string,
) error {
	out, closeOut, err := teeToFile(rep, outPath)
	if err != nil {
		return err
	}
	defer closeOut()

	r1Set := make(map[string]struct{}, len(r1Paths))
	for _, p := range r1Paths {
		r1Set[p.RelativePath] = struct{}{}
	}
	r2Set := make(map[string]struct{}, len(r2Paths))
	for _, p := range r2Paths {
		r2Set[p.RelativePath] = struct{}{}
	}

	comparison := compare.Compare(r1Set, r2Set)
	ignored := make(map[string]int)

	splitIgnored := func(only map[string]struct{}) []string {
		var kept []string
		for path := range only {
			if AnyIsParent(path, ignoreDirs) {
				ignored[filepath.Dir(path)]++
			} else {
				kept = append(kept, path)
			}
		}
		sort.Strings(kept)
		return kept
	}

	r1Kept := splitIgnored(comparison.R1Only)
	r2Kept := splitIgnored(comparison.R2Only)

	if len(r1Kept) > 0 {
		out.Info(fmt.Sprintf("Files present in %s but missing in %s:", r1Label, r2Label))
		for _, path := range r1Kept {
			out.Info("  " + path)
		}
	}
	if len(r2Kept) > 0 {
		out.Info(fmt.Sprintf("Files present in %s but missing in %s:", r2Label, r1Label))
		for _, path := range r2Kept {
			out.Info("  " + path)
		}
	}
	if len(r1Kept) == 0 && len(r2Kept) == 0 {
		out.Info("All non-ignored files present in both results")
	}

	if len(ignored) > 0 {
		out.Info("Ignored")
		dirs := make([]string, 0, len(ignored))
		for dir := range ignored {
			dirs = append(dirs, dir)
		}
		sort.Strings(dirs)
		for _, dir := range dirs {
			out.Info(fmt.Sprintf("  %s: %d", dir, ignored[dir]))
		}
	}
	return nil
}

// CompareAllVCFCounts counts variants of every VCF in both runs and
// renders them side by side.
func CompareAllVCFCounts(
	rep report.Reporter,
	runID1, runID2 string,
	r1VCFs, r2VCFs []PathObj,
	outPath string,
) error {
	out, closeOut, err := teeToFile(rep, outPath)
	if err != nil {
		return err
	}
	defer closeOut()

	countSide := func(paths []PathObj) map[string]int {
		counts := make(map[string]int, len(paths))
		for _, p := range paths {
			n, err := vcf.CountVariants(p.RealPath)
			if err != nil {
				rep.Warning(fmt.Sprintf("could not count %s: %v", p.RealPath, err))
				n = 0
			}
			counts[p.RelativePath] = n
		}
		return counts
	}

	r1Counts := countSide(r1VCFs)
	r2Counts := countSide(r2VCFs)

	allPaths := make(map[string]struct{})
	for p := range r1Counts {
		allPaths[p] = struct{}{}
	}
	for p := range r2Counts {
		allPaths[p] = struct{}{}
	}

	maxPathLen := 0
	sorted := make([]string, 0, len(allPaths))
	for p := range allPaths {
		sorted = append(sorted, p)
		if len(p) > maxPathLen {
			maxPathLen = len(p)
		}
	}
	sort.Strings(sorted)

	out.Info(fmt.Sprintf("%-*s %10s %10s", maxPathLen, "Path", runID1, runID2))
	for _, p := range sorted {
		out.Info(fmt.Sprintf("%-*s %10s %10s", maxPathLen, p, countOrDash(r1Counts, p), countOrDash(r2Counts, p)))
	}
	return nil
}

func countOrDash(counts map[string]int, path string) string {
	if n, ok := counts[path]; ok {
		return fmt.Sprintf("%d", n)
	}
	return "-"
}

// DiffCompareFiles renders a unified diff of two text reports after
// substituting each run's label with the shared placeholder.
func DiffCompareFiles(
	rep report.Reporter,
	runID1, runID2 string,
	file1, file2 string,
	outPath string,
) error {
	out, closeOut, err := teeToFile(rep, outPath)
	if err != nil {
		return err
	}
	defer closeOut()

	r1Lines, err := readNormalizedLines(file1, runID1)
	if err != nil {
		return err
	}
	r2Lines, err := readNormalizedLines(file2, runID2)
	if err != nil {
		return err
	}

	diffText, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        r1Lines,
		B:        r2Lines,
		FromFile: runID1,
		ToFile:   runID2,
		Context:  3,
	})
	if err != nil {
		return fmt.Errorf("compute diff: %w", err)
	}

	if diffText == "" {
		out.Info("No difference found")
		return nil
	}
	for _, line := range strings.Split(strings.TrimRight(diffText, "\n"), "\n") {
		out.Info(line)
	}
	return nil
}

func readNormalizedLines(path, runID string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	normalized := strings.ReplaceAll(string(content), runID, RunIDPlaceholder)
	return difflib.SplitLines(normalized), nil
}
