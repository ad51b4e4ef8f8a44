// Package run handles result-directory traversal and the non-VCF
// comparisons between two pipeline runs: file presence, variant counts
// and plain-text diffs of ancillary reports.
package run

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jakobsg/rundiff/internal/report"
)

// RunIDPlaceholder normalizes run-specific labels in relative paths and
// report contents, matching the placeholder used by the VCF engines.
const RunIDPlaceholder = "RUNID"

// datestampPattern matches result directories named like 240101-1200_<id>.
var datestampPattern = regexp.MustCompile(`^\d{6}-\d{4}_(.*)`)

// PathObj is one file of a result directory: its real location plus a
// relative path with the run id replaced by a placeholder so the two runs
// can be matched file by file.
type PathObj struct {
	RealPath     string
	RelativePath string
}

func (p PathObj) String() string {
	return p.RealPath
}

// DetectRunID derives a run identifier from the base directory name. A
// leading datestamp is stripped; otherwise the whole name is the id.
func DetectRunID(rep report.Reporter, baseDirName string, verbose bool) string {
	if match := datestampPattern.FindStringSubmatch(baseDirName); match != nil {
		if verbose {
			rep.Info("Datestamp detected, run ID assigned as remainder of base folder name")
			rep.Info(fmt.Sprintf("Full name: %s", baseDirName))
			rep.Info(fmt.Sprintf("Detected ID: %s", match[1]))
		}
		return match[1]
	}
	rep.Info("Datestamp not detected, full folder name used as run ID")
	return baseDirName
}

// FilesInDir walks a result directory into PathObjs. Relative paths have
// the run id normalized to the placeholder.
func FilesInDir(dir, runID string) ([]PathObj, error) {
	var paths []PathObj
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		paths = append(paths, PathObj{
			RealPath:     path,
			RelativePath: strings.ReplaceAll(rel, runID, RunIDPlaceholder),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk result dir %s: %w", dir, err)
	}
	return paths, nil
}

// FilesEndingWith filters paths whose real path matches the pattern.
func FilesEndingWith(pattern string, paths []PathObj) ([]PathObj, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid file pattern %q: %w", pattern, err)
	}
	var matching []PathObj
	for _, p := range paths {
		if re.MatchString(p.RealPath) {
			matching = append(matching, p)
		}
	}
	return matching, nil
}

// SingleFileEndingWith tries patterns in order and returns the one file
// matching the first productive pattern. More than one match for a
// pattern is an error; no match for any pattern returns nil.
func SingleFileEndingWith(patterns []string, paths []PathObj) (*PathObj, error) {
	for _, pattern := range patterns {
		matching, err := FilesEndingWith(pattern, paths)
		if err != nil {
			return nil, err
		}
		if len(matching) > 1 {
			names := make([]string, len(matching))
			for i, m := range matching {
				names[i] = m.RealPath
			}
			return nil, fmt.Errorf("only one matching file allowed, found: %s", strings.Join(names, ","))
		}
		if len(matching) == 1 {
			return &matching[0], nil
		}
	}
	return nil, nil
}

// PairMatch locates the same report file in both runs. Both must exist.
func PairMatch(
	rep report.Reporter,
	errorLabel string,
	validPatterns []string,
	r1Paths, r2Paths []PathObj,
	verbose bool,
) (string, string, error) {
	r1Match, err := SingleFileEndingWith(validPatterns, r1Paths)
	if err != nil {
		return "", "", err
	}
	r2Match, err := SingleFileEndingWith(validPatterns, r2Paths)
	if err != nil {
		return "", "", err
	}

	if verbose {
		logPatternMatch(rep, validPatterns, r1Match, "r1")
		logPatternMatch(rep, validPatterns, r2Match, "r2")
	}

	if r1Match == nil || r2Match == nil {
		return "", "", fmt.Errorf(
			"both %s must exist, is the correct run_id detected/assigned? (patterns: %s)",
			errorLabel, strings.Join(validPatterns, ","))
	}
	return r1Match.RealPath, r2Match.RealPath, nil
}

func logPatternMatch(rep report.Reporter, patterns []string, match *PathObj, side string) {
	if match != nil {
		rep.Info(fmt.Sprintf("Looking for pattern(s) %v, found %s in %s", patterns, match.RealPath, side))
	} else {
		rep.Info(fmt.Sprintf("Looking for pattern(s) %v, did not match any file in %s", patterns, side))
	}
}

// AnyIsParent reports whether any parent directory of path has one of the
// given names. Used to skip files in ignored folders.
func AnyIsParent(path string, names []string) bool {
	dir := filepath.Dir(path)
	for dir != "." && dir != string(filepath.Separator) && dir != "" {
		base := filepath.Base(dir)
		for _, name := range names {
			if base == name {
				return true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return false
}
