package vcf

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakobsg/rundiff/internal/report"
)

func TestVariantComparisons(t *testing.T) {
	rep := &report.Capture{}
	result, err := VariantComparisons(rep, "run1", "run2",
		filepath.Join("testdata", "run1.vcf"), filepath.Join("testdata", "run2.vcf"),
		ComparisonOptions{
			ScoreThreshold:  17,
			MaxDisplay:      10,
			MaxCheckedAnnot: 10000,
			ShowLineNumbers: true,
			DoScoreCheck:    true,
			DoAnnotCheck:    true,
		})
	require.NoError(t, err)

	assert.Equal(t, "run1", result.RunID1)
	assert.Equal(t, "run2", result.RunID2)
	assert.Len(t, result.VCF1.Variants, 4)
	assert.Len(t, result.VCF2.Variants, 3)
	assert.Len(t, result.Presence.Shared, 3)
	assert.Contains(t, result.Presence.R1Only, "1_500_T_G")
	require.Len(t, result.ScoreDiffs, 1)
	assert.Equal(t, "1_100_A_C", result.ScoreDiffs[0].R1.Key())

	joined := strings.Join(rep.Infos, "\n")
	assert.Contains(t, joined, "# First 1 only found in run1")
	assert.Contains(t, joined, "--- Comparing annotations ---")
	assert.Contains(t, joined, "--- Comparing score ---")
	assert.Contains(t, joined, "# Number differently scored total: 1")
}

func TestVariantComparisons_ChecksDisabled(t *testing.T) {
	rep := &report.Capture{}
	result, err := VariantComparisons(rep, "run1", "run2",
		filepath.Join("testdata", "run1.vcf"), filepath.Join("testdata", "run2.vcf"),
		ComparisonOptions{MaxDisplay: 10})
	require.NoError(t, err)

	assert.Nil(t, result.ScoreDiffs)
	joined := strings.Join(rep.Infos, "\n")
	assert.NotContains(t, joined, "--- Comparing annotations ---")
	assert.NotContains(t, joined, "--- Comparing score ---")
}

func TestVariantComparisons_ColumnChecks(t *testing.T) {
	rep := &report.Capture{}
	_, err := VariantComparisons(rep, "run1", "run2",
		filepath.Join("testdata", "run1.vcf"), filepath.Join("testdata", "run2.vcf"),
		ComparisonOptions{
			MaxDisplay:     10,
			CompareFilter:  true,
			SampleFields:   []string{"GT"},
			CustomInfoKeys: []string{"AF"},
		})
	require.NoError(t, err)

	joined := strings.Join(rep.Infos, "\n")
	assert.Contains(t, joined, "--- Comparing filter differences ---")
	assert.Regexp(t, `LowQual\s+PASS\s+1`, joined)
	assert.Contains(t, joined, "FORMAT:GT")
	assert.Contains(t, joined, "AF (numeric)")
}

func TestVariantComparisons_WritesArtifacts(t *testing.T) {
	dir := t.TempDir()
	opts := ComparisonOptions{
		ScoreThreshold:         17,
		MaxDisplay:             10,
		MaxCheckedAnnot:        10000,
		ShowLineNumbers:        true,
		DoScoreCheck:           true,
		OutPathPresence:        filepath.Join(dir, "presence.txt"),
		OutPathScoreAboveThres: filepath.Join(dir, "above.txt"),
		OutPathScoreAllDiffing: filepath.Join(dir, "all.txt"),
	}

	_, err := VariantComparisons(report.Nop{}, "run1", "run2",
		filepath.Join("testdata", "run1.vcf"), filepath.Join("testdata", "run2.vcf"), opts)
	require.NoError(t, err)

	presence := readLines(t, opts.OutPathPresence)
	assert.Equal(t, "Only found in run1", presence[0])

	above := readLines(t, opts.OutPathScoreAboveThres)
	require.Len(t, above, 2)
	assert.Contains(t, above[0], "score_run1")

	all := readLines(t, opts.OutPathScoreAllDiffing)
	assert.Len(t, all, 2)
}

func TestVariantComparisons_SVMode(t *testing.T) {
	rep := &report.Capture{}
	result, err := VariantComparisons(rep, "sv1", "sv2",
		filepath.Join("testdata", "sv.vcf"), filepath.Join("testdata", "sv.vcf"),
		ComparisonOptions{IsSV: true, MaxDisplay: 10})
	require.NoError(t, err)

	assert.Len(t, result.Presence.Shared, 2)
	assert.Contains(t, result.Presence.Shared, "1_1000_1000_N_<DEL>")
	assert.Contains(t, result.Presence.Shared, "2_5000_NA_N_<DUP>")
	assert.Contains(t, rep.Infos, "No difference found")
}

func TestVariantComparisons_MissingFile(t *testing.T) {
	_, err := VariantComparisons(report.Nop{}, "a", "b",
		filepath.Join("testdata", "does_not_exist.vcf"), filepath.Join("testdata", "run2.vcf"),
		ComparisonOptions{MaxDisplay: 10})
	assert.Error(t, err)
}
