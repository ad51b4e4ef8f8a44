package run

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakobsg/rundiff/internal/report"
)

func TestDetectRunID(t *testing.T) {
	rep := &report.Capture{}
	assert.Equal(t, "sample_a", DetectRunID(rep, "240101-1200_sample_a", false))
	assert.Empty(t, rep.Infos)

	rep = &report.Capture{}
	assert.Equal(t, "sample_a", DetectRunID(rep, "240101-1200_sample_a", true))
	assert.NotEmpty(t, rep.Infos)

	rep = &report.Capture{}
	assert.Equal(t, "myrun", DetectRunID(rep, "myrun", false))
	assert.Contains(t, rep.Infos[0], "Datestamp not detected")
}

func TestFilesInDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sample_a.vcf"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "report.txt"), []byte("x"), 0644))

	paths, err := FilesInDir(dir, "sample_a")
	require.NoError(t, err)
	require.Len(t, paths, 2)

	rels := map[string]bool{}
	for _, p := range paths {
		rels[p.RelativePath] = true
	}
	assert.True(t, rels["RUNID.vcf"], "run id normalized to placeholder")
	assert.True(t, rels[filepath.Join("sub", "report.txt")])
}

func TestFilesInDir_MissingDir(t *testing.T) {
	_, err := FilesInDir(filepath.Join(t.TempDir(), "nope"), "x")
	assert.Error(t, err)
}

func TestFilesEndingWith(t *testing.T) {
	paths := []PathObj{
		{RealPath: "/r/a.ranked.snv.vcf.gz"},
		{RealPath: "/r/a.ranked.sv.vcf.gz"},
		{RealPath: "/r/notes.txt"},
	}

	matching, err := FilesEndingWith(`\.ranked\.snv\.vcf\.gz$`, paths)
	require.NoError(t, err)
	require.Len(t, matching, 1)
	assert.Equal(t, "/r/a.ranked.snv.vcf.gz", matching[0].RealPath)

	_, err = FilesEndingWith(`([`, paths)
	assert.Error(t, err)
}

func TestSingleFileEndingWith(t *testing.T) {
	paths := []PathObj{
		{RealPath: "/r/a.yaml"},
		{RealPath: "/r/b.txt"},
	}

	match, err := SingleFileEndingWith([]string{`\.yaml$`}, paths)
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "/r/a.yaml", match.RealPath)

	// First productive pattern wins.
	match, err = SingleFileEndingWith([]string{`\.json$`, `\.txt$`}, paths)
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "/r/b.txt", match.RealPath)

	match, err = SingleFileEndingWith([]string{`\.json$`}, paths)
	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestSingleFileEndingWith_MultipleMatchesFail(t *testing.T) {
	paths := []PathObj{
		{RealPath: "/r/a.yaml"},
		{RealPath: "/r/b.yaml"},
	}
	_, err := SingleFileEndingWith([]string{`\.yaml$`}, paths)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only one matching file allowed")
}

func TestPairMatch(t *testing.T) {
	r1 := []PathObj{{RealPath: "/r1/versions.yml"}}
	r2 := []PathObj{{RealPath: "/r2/versions.yml"}}

	p1, p2, err := PairMatch(report.Nop{}, "versions files", []string{`versions\.yml$`}, r1, r2, false)
	require.NoError(t, err)
	assert.Equal(t, "/r1/versions.yml", p1)
	assert.Equal(t, "/r2/versions.yml", p2)
}

func TestPairMatch_OneSideMissing(t *testing.T) {
	r1 := []PathObj{{RealPath: "/r1/versions.yml"}}
	r2 := []PathObj{{RealPath: "/r2/other.txt"}}

	_, _, err := PairMatch(report.Nop{}, "versions files", []string{`versions\.yml$`}, r1, r2, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "versions files must exist")
}

func TestAnyIsParent(t *testing.T) {
	assert.True(t, AnyIsParent(filepath.Join("work", "stage", "file.txt"), []string{"work"}))
	assert.True(t, AnyIsParent(filepath.Join("out", "pipeline_info", "trace.txt"), []string{"work", "pipeline_info"}))
	assert.False(t, AnyIsParent(filepath.Join("out", "file.txt"), []string{"work"}))
	assert.False(t, AnyIsParent("file.txt", []string{"work"}))
}
