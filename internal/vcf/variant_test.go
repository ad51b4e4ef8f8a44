package vcf

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoredVariant_Key(t *testing.T) {
	snv := &ScoredVariant{Chrom: "1", Pos: 100, Ref: "A", Alt: "C"}
	assert.Equal(t, "1_100_A_C", snv.Key())

	sv := &ScoredVariant{Chrom: "1", Pos: 1000, Ref: "N", Alt: "<DEL>", IsSV: true, SVLength: intPtr(1000)}
	assert.Equal(t, "1_1000_1000_N_<DEL>", sv.Key())

	svNoLen := &ScoredVariant{Chrom: "2", Pos: 5000, Ref: "N", Alt: "<DUP>", IsSV: true}
	assert.Equal(t, "2_5000_NA_N_<DUP>", svNoLen.Key())
}

func TestScoredVariant_TruncatedAlleles(t *testing.T) {
	longRef := strings.Repeat("A", TruncLength+5)
	v := &ScoredVariant{Chrom: "1", Pos: 1, Ref: longRef, Alt: "C"}

	assert.Equal(t, strings.Repeat("A", TruncLength)+"...", v.TruncRef())
	assert.Equal(t, "C", v.TruncAlt())

	// The cut counts runes, not bytes.
	wide := &ScoredVariant{Chrom: "1", Pos: 1, Ref: strings.Repeat("Ä", TruncLength+1), Alt: "C"}
	assert.Equal(t, strings.Repeat("Ä", TruncLength)+"...", wide.TruncRef())
	assert.True(t, utf8.ValidString(wide.TruncRef()))
}

func TestScoredVariant_String(t *testing.T) {
	scored := &ScoredVariant{Chrom: "1", Pos: 100, Ref: "A", Alt: "C", RankScore: intPtr(15)}
	assert.Equal(t, "1:100 A/C (Score: 15)", scored.String())

	unscored := &ScoredVariant{Chrom: "2", Pos: 200, Ref: "G", Alt: "T"}
	assert.Equal(t, "2:200 G/T (Score: None)", unscored.String())
}

func TestScoredVariant_RankScoreValue(t *testing.T) {
	scored := &ScoredVariant{Chrom: "1", Pos: 100, Ref: "A", Alt: "C", RankScore: intPtr(15)}
	val, err := scored.RankScoreValue()
	require.NoError(t, err)
	assert.Equal(t, 15, val)

	unscored := &ScoredVariant{Chrom: "2", Pos: 200, Ref: "G", Alt: "T"}
	_, err = unscored.RankScoreValue()
	assert.Error(t, err)
	assert.Equal(t, "", unscored.RankScoreStr())
}

func TestScoredVariant_Row(t *testing.T) {
	v := &ScoredVariant{
		Chrom: "1", Pos: 100, Ref: "A", Alt: "C",
		RankScore:  intPtr(15),
		LineNumber: 7,
		Info:       map[string]string{"AF": "0.5"},
	}

	assert.Equal(t, []string{"1", "100", "A", "C", "7", "15", "0.5"},
		v.Row(true, []string{"AF"}))
	assert.Equal(t, []string{"1", "100", "A", "C", "15"},
		v.Row(false, nil))
}

func TestScoredVariant_SameVariant(t *testing.T) {
	a := &ScoredVariant{Chrom: "1", Pos: 100, Ref: "A", Alt: "C"}
	b := &ScoredVariant{Chrom: "1", Pos: 100, Ref: "A", Alt: "C", RankScore: intPtr(20)}
	c := &ScoredVariant{Chrom: "1", Pos: 101, Ref: "A", Alt: "C"}

	assert.True(t, a.SameVariant(b), "scores do not affect identity")
	assert.False(t, a.SameVariant(c))
	assert.False(t, a.SameVariant(nil))

	sv1 := &ScoredVariant{Chrom: "1", Pos: 1000, Ref: "N", Alt: "<DEL>", IsSV: true, SVLength: intPtr(500)}
	sv2 := &ScoredVariant{Chrom: "1", Pos: 1000, Ref: "N", Alt: "<DEL>", IsSV: true, SVLength: intPtr(600)}
	sv3 := &ScoredVariant{Chrom: "1", Pos: 1000, Ref: "N", Alt: "<DEL>", IsSV: true}
	assert.False(t, sv1.SameVariant(sv2))
	assert.False(t, sv1.SameVariant(sv3))
}

func TestDiffScoredVariant_AnyAboveThreshold(t *testing.T) {
	pair := func(s1, s2 *int) *DiffScoredVariant {
		return &DiffScoredVariant{
			R1: &ScoredVariant{Chrom: "1", Pos: 100, Ref: "A", Alt: "C", RankScore: s1},
			R2: &ScoredVariant{Chrom: "1", Pos: 100, Ref: "A", Alt: "C", RankScore: s2},
		}
	}

	assert.True(t, pair(intPtr(15), intPtr(20)).AnyAboveThreshold(17))
	assert.True(t, pair(intPtr(20), intPtr(15)).AnyAboveThreshold(17))
	assert.True(t, pair(intPtr(17), intPtr(10)).AnyAboveThreshold(17), "threshold is inclusive")
	assert.False(t, pair(intPtr(15), intPtr(16)).AnyAboveThreshold(17))
	assert.True(t, pair(nil, intPtr(20)).AnyAboveThreshold(17))
	assert.False(t, pair(nil, nil).AnyAboveThreshold(17))
}

func TestSubScoreSummary(t *testing.T) {
	sub1 := []SubScore{{"Consequence", 5}, {"Conservation", 5}, {"Frequency", 5}}
	sub2 := []SubScore{{"Consequence", 5}, {"Conservation", 8}, {"Frequency", 7}}

	summary, err := subScoreSummary(sub1, sub2)
	require.NoError(t, err)
	assert.Equal(t, "Conservation:5/8,Frequency:5/7", summary)
}

func TestSubScoreSummary_NoDifference(t *testing.T) {
	sub := []SubScore{{"Consequence", 5}}
	summary, err := subScoreSummary(sub, sub)
	require.NoError(t, err)
	assert.Equal(t, "-", summary)

	summary, err = subScoreSummary(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "-", summary)
}

func TestSubScoreSummary_MismatchedCategories(t *testing.T) {
	_, err := subScoreSummary(
		[]SubScore{{"Consequence", 5}},
		[]SubScore{{"Consequence", 5}, {"Frequency", 7}})
	assert.Error(t, err)

	_, err = subScoreSummary(
		[]SubScore{{"Consequence", 5}},
		[]SubScore{{"Frequency", 5}})
	assert.Error(t, err)
}

func TestScoredVCF_KeySet(t *testing.T) {
	s := &ScoredVCF{Variants: map[string]*ScoredVariant{
		"1_100_A_C": {Chrom: "1", Pos: 100, Ref: "A", Alt: "C"},
		"2_200_G_T": {Chrom: "2", Pos: 200, Ref: "G", Alt: "T"},
	}}
	keys := s.KeySet()
	assert.Len(t, keys, 2)
	assert.Contains(t, keys, "1_100_A_C")
	assert.Contains(t, keys, "2_200_G_T")
}
