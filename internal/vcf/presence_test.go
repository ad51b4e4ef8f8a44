package vcf

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakobsg/rundiff/internal/compare"
	"github.com/jakobsg/rundiff/internal/report"
)

func parseFixturePair(t *testing.T) (*ScoredVCF, *ScoredVCF) {
	t.Helper()
	r1, err := ParseScoredVCF(filepath.Join("testdata", "run1.vcf"), false, report.Nop{})
	require.NoError(t, err)
	r2, err := ParseScoredVCF(filepath.Join("testdata", "run2.vcf"), false, report.Nop{})
	require.NoError(t, err)
	return r1, r2
}

func TestCompareVariantPresence(t *testing.T) {
	r1, r2 := parseFixturePair(t)
	comp := compare.Compare(r1.KeySet(), r2.KeySet())

	assert.Len(t, comp.Shared, 3)
	assert.Equal(t, map[string]struct{}{"1_500_T_G": {}}, comp.R1Only)
	assert.Empty(t, comp.R2Only)

	rep := &report.Capture{}
	err := CompareVariantPresence(rep, "run1", "run2", r1.Variants, r2.Variants, comp,
		PresenceOptions{MaxDisplay: 10, ShowLineNumbers: true})
	require.NoError(t, err)

	require.NotEmpty(t, rep.Infos)
	assert.Equal(t, "# First 1 only found in run1", rep.Infos[0])
	assert.Contains(t, rep.Infos[1], "1")
	assert.Contains(t, rep.Infos[1], "500")
	assert.Contains(t, rep.Infos[1], "T")
	assert.Contains(t, rep.Infos[1], "G")
}

func TestCompareVariantPresence_NoDifference(t *testing.T) {
	r1, _ := parseFixturePair(t)
	comp := compare.Compare(r1.KeySet(), r1.KeySet())

	rep := &report.Capture{}
	err := CompareVariantPresence(rep, "run1", "run1b", r1.Variants, r1.Variants, comp,
		PresenceOptions{MaxDisplay: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"No difference found"}, rep.Infos)
}

func TestCompareVariantPresence_MaxDisplayCapsPreview(t *testing.T) {
	variants := map[string]*ScoredVariant{}
	for i := 1; i <= 5; i++ {
		v := &ScoredVariant{Chrom: "1", Pos: i * 100, Ref: "A", Alt: "C"}
		variants[v.Key()] = v
	}
	comp := compare.Compare(keySetOf(variants), map[string]struct{}{})

	rep := &report.Capture{}
	err := CompareVariantPresence(rep, "left", "right", variants, nil, comp,
		PresenceOptions{MaxDisplay: 2})
	require.NoError(t, err)

	// Header plus the two first rows in canonical order.
	require.Len(t, rep.Infos, 3)
	assert.Equal(t, "# First 2 only found in left", rep.Infos[0])
	assert.Contains(t, rep.Infos[1], "100")
	assert.Contains(t, rep.Infos[2], "200")
}

func TestCompareVariantPresence_WritesFullTable(t *testing.T) {
	variants := map[string]*ScoredVariant{}
	for i := 1; i <= 5; i++ {
		v := &ScoredVariant{Chrom: "1", Pos: i * 100, Ref: "A", Alt: "C"}
		variants[v.Key()] = v
	}
	comp := compare.Compare(keySetOf(variants), map[string]struct{}{})

	outPath := filepath.Join(t.TempDir(), "presence.txt")
	err := CompareVariantPresence(report.Nop{}, "left", "right", variants, nil, comp,
		PresenceOptions{MaxDisplay: 2, OutPath: outPath})
	require.NoError(t, err)

	raw, err := os.ReadFile(outPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	require.Len(t, lines, 6, "file output is not capped by max display")
	assert.Equal(t, "Only found in left", lines[0])
	assert.Contains(t, lines[5], "500")
}

func TestCompareVariantPresence_CanonicalOrder(t *testing.T) {
	variants := map[string]*ScoredVariant{}
	for _, loc := range []struct {
		chrom string
		pos   int
	}{{"X", 300}, {"2", 200}, {"1", 500}, {"1", 100}} {
		v := &ScoredVariant{Chrom: loc.chrom, Pos: loc.pos, Ref: "A", Alt: "C"}
		variants[v.Key()] = v
	}
	comp := compare.Compare(keySetOf(variants), map[string]struct{}{})

	rep := &report.Capture{}
	err := CompareVariantPresence(rep, "left", "right", variants, nil, comp,
		PresenceOptions{MaxDisplay: 10})
	require.NoError(t, err)

	require.Len(t, rep.Infos, 5)
	assert.Regexp(t, `^1\s+100`, rep.Infos[1])
	assert.Regexp(t, `^1\s+500`, rep.Infos[2])
	assert.Regexp(t, `^2\s+200`, rep.Infos[3])
	assert.Regexp(t, `^X\s+300`, rep.Infos[4])
}

func keySetOf(variants map[string]*ScoredVariant) map[string]struct{} {
	set := make(map[string]struct{}, len(variants))
	for k := range variants {
		set[k] = struct{}{}
	}
	return set
}
