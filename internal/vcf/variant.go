// Package vcf implements parsing of rank-scored VCF files and the
// comparison engines operating on two parsed files.
package vcf

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jakobsg/rundiff/internal/util"
)

// TruncLength caps ref/alt alleles in display output.
const TruncLength = 30

// SubScore is one named rank sub-score category. Order matters: categories
// are declared once in the file header and every variant carries them in
// declaration order.
type SubScore struct {
	Category string
	Value    int
}

// ScoredVariant is one called variant: position, call, scores and
// annotations from a single VCF data line.
type ScoredVariant struct {
	Chrom      string
	Pos        int
	Ref        string
	Alt        string
	RankScore  *int
	SubScores  []SubScore
	IsSV       bool
	SVLength   *int
	Info       map[string]string
	Filters    string
	LineNumber int
	Sample     map[string]string
}

// TruncRef returns the reference allele capped for display.
func (v *ScoredVariant) TruncRef() string {
	return util.TruncateString(v.Ref, TruncLength)
}

// TruncAlt returns the alternate allele capped for display.
func (v *ScoredVariant) TruncAlt() string {
	return util.TruncateString(v.Alt, TruncLength)
}

func (v *ScoredVariant) String() string {
	score := "None"
	if v.RankScore != nil {
		score = strconv.Itoa(*v.RankScore)
	}
	return fmt.Sprintf("%s:%d %s/%s (Score: %s)", v.Chrom, v.Pos, v.TruncRef(), v.TruncAlt(), score)
}

// Key derives the identity key used to match variants across files:
// chrom_pos_ref_alt for short variants, chrom_pos_svlen_ref_alt for
// structural variants. An SV without a known length keeps a deterministic
// NA segment.
func (v *ScoredVariant) Key() string {
	if !v.IsSV {
		return fmt.Sprintf("%s_%d_%s_%s", v.Chrom, v.Pos, v.Ref, v.Alt)
	}
	svLen := "NA"
	if v.SVLength != nil {
		svLen = strconv.Itoa(*v.SVLength)
	}
	return fmt.Sprintf("%s_%d_%s_%s_%s", v.Chrom, v.Pos, svLen, v.Ref, v.Alt)
}

// RankScoreValue returns the rank score, failing when it is absent.
// Callers sorting on the score must check presence first.
func (v *ScoredVariant) RankScoreValue() (int, error) {
	if v.RankScore == nil {
		return 0, fmt.Errorf("rank score not present, check before using it, variant: %s", v)
	}
	return *v.RankScore, nil
}

// RankScoreStr renders the rank score, empty when absent.
func (v *ScoredVariant) RankScoreStr() string {
	if v.RankScore == nil {
		return ""
	}
	return strconv.Itoa(*v.RankScore)
}

// BasicInfo is the position and truncated call without the score.
func (v *ScoredVariant) BasicInfo() string {
	return fmt.Sprintf("%s:%d %s/%s", v.Chrom, v.Pos, v.TruncRef(), v.TruncAlt())
}

// Row renders the variant as table cells for the presence report.
func (v *ScoredVariant) Row(showLineNumbers bool, additionalAnnotations []string) []string {
	row := []string{v.Chrom, strconv.Itoa(v.Pos), v.TruncRef(), v.TruncAlt()}
	if showLineNumbers {
		row = append(row, strconv.Itoa(v.LineNumber))
	}
	if v.SVLength != nil {
		row = append(row, strconv.Itoa(*v.SVLength))
	}
	if v.RankScore != nil {
		row = append(row, strconv.Itoa(*v.RankScore))
	}
	for _, key := range additionalAnnotations {
		row = append(row, v.Info[key])
	}
	return row
}

// SameVariant reports whether two records describe the same call.
func (v *ScoredVariant) SameVariant(other *ScoredVariant) bool {
	if other == nil {
		return false
	}
	sameLen := (v.SVLength == nil) == (other.SVLength == nil) &&
		(v.SVLength == nil || *v.SVLength == *other.SVLength)
	return v.Chrom == other.Chrom &&
		v.Pos == other.Pos &&
		v.Ref == other.Ref &&
		v.Alt == other.Alt &&
		sameLen
}

// DiffScoredVariant pairs the two records sharing an identity key whose
// rank scores differ.
type DiffScoredVariant struct {
	R1 *ScoredVariant
	R2 *ScoredVariant
}

// AnyAboveThreshold is true when either side's rank score reaches the
// threshold. Both sides absent is false.
func (d *DiffScoredVariant) AnyAboveThreshold(threshold int) bool {
	if d.R1.RankScore != nil && *d.R1.RankScore >= threshold {
		return true
	}
	if d.R2.RankScore != nil && *d.R2.RankScore >= threshold {
		return true
	}
	return false
}

// ScoredVCF is one parsed file: immutable after construction.
type ScoredVCF struct {
	Path          string
	IsSV          bool
	InfoRows      map[string]string
	SubScoreNames []string
	Variants      map[string]*ScoredVariant
	KeyOverwrites int
}

// KeySet returns the identity keys of all variants.
func (s *ScoredVCF) KeySet() map[string]struct{} {
	keys := make(map[string]struct{}, len(s.Variants))
	for k := range s.Variants {
		keys[k] = struct{}{}
	}
	return keys
}

// subScoreSummary renders differing sub-score categories as
// "category:left/right" joined by commas, or "-" when none differ.
// The category sets of both sides must match.
func subScoreSummary(sub1, sub2 []SubScore) (string, error) {
	if len(sub1) != len(sub2) {
		return "", fmt.Errorf("number of sub score categories must match, found %d and %d", len(sub1), len(sub2))
	}
	var diffs []string
	for i, s1 := range sub1 {
		s2 := sub2[i]
		if s1.Category != s2.Category {
			return "", fmt.Errorf("sub score categories differing, found %q and %q", s1.Category, s2.Category)
		}
		if s1.Value != s2.Value {
			diffs = append(diffs, fmt.Sprintf("%s:%d/%d", s1.Category, s1.Value, s2.Value))
		}
	}
	if len(diffs) == 0 {
		return "-", nil
	}
	return strings.Join(diffs, ","), nil
}
