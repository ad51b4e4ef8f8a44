// Package compare provides generic set comparison and the canonical
// ordering used for variant identity keys.
package compare

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Comparison holds the three-way split of two key sets: keys only in the
// first set, keys only in the second, and keys present in both.
type Comparison[T comparable] struct {
	R1Only map[T]struct{}
	R2Only map[T]struct{}
	Shared map[T]struct{}
}

// Compare splits two sets into one-sided and shared parts. Works for any
// comparable key type: file paths, INFO keys and variant keys alike.
func Compare[T comparable](set1, set2 map[T]struct{}) Comparison[T] {
	c := Comparison[T]{
		R1Only: make(map[T]struct{}),
		R2Only: make(map[T]struct{}),
		Shared: make(map[T]struct{}),
	}
	for k := range set1 {
		if _, ok := set2[k]; ok {
			c.Shared[k] = struct{}{}
		} else {
			c.R1Only[k] = struct{}{}
		}
	}
	for k := range set2 {
		if _, ok := set1[k]; !ok {
			c.R2Only[k] = struct{}{}
		}
	}
	return c
}

// ToSet builds a set from a slice of keys.
func ToSet[T comparable](keys []T) map[T]struct{} {
	set := make(map[T]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}

// VariantSortKey is the canonical ordering of a variant identity key:
// chromosome mapped to a number, then position.
type VariantSortKey struct {
	Chrom int
	Pos   int
}

var chromMap = map[string]int{"X": 24, "Y": 25, "M": 26, "MT": 26}

// ParseVariantSortKey derives the sort key from a variant identity key of
// the form chrom_pos_... A chromosome outside the numeric/X/Y/M set is an
// error rather than a silent misordering.
func ParseVariantSortKey(key string) (VariantSortKey, error) {
	fields := strings.SplitN(key, "_", 3)
	if len(fields) < 2 {
		return VariantSortKey{}, fmt.Errorf("malformed variant key: %q", key)
	}
	chrom := strings.TrimPrefix(fields[0], "chr")

	chromNum, ok := chromMap[chrom]
	if !ok {
		parsed, err := strconv.Atoi(chrom)
		if err != nil {
			return VariantSortKey{}, fmt.Errorf("unexpected chromosome format: %q", chrom)
		}
		chromNum = parsed
	}

	pos, err := strconv.Atoi(fields[1])
	if err != nil {
		return VariantSortKey{}, fmt.Errorf("invalid position in variant key %q: %w", key, err)
	}
	return VariantSortKey{Chrom: chromNum, Pos: pos}, nil
}

// SortVariantKeys returns the keys in canonical chromosome/position order.
// Fails on the first key with an unrecognized chromosome.
func SortVariantKeys(keys map[string]struct{}) ([]string, error) {
	type entry struct {
		key  string
		sort VariantSortKey
	}
	entries := make([]entry, 0, len(keys))
	for k := range keys {
		sk, err := ParseVariantSortKey(k)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry{key: k, sort: sk})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].sort.Chrom != entries[j].sort.Chrom {
			return entries[i].sort.Chrom < entries[j].sort.Chrom
		}
		if entries[i].sort.Pos != entries[j].sort.Pos {
			return entries[i].sort.Pos < entries[j].sort.Pos
		}
		return entries[i].key < entries[j].key
	})
	sorted := make([]string, len(entries))
	for i, e := range entries {
		sorted[i] = e.key
	}
	return sorted, nil
}
