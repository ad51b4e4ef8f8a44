// Package util holds text and statistics helpers shared by the
// comparison engines.
package util

import (
	"math"
	"strconv"
	"strings"
)

// PrettifyRows left-aligns a table of cells into fixed-width columns.
// Column widths are derived from the longest cell plus padding.
func PrettifyRows(rows [][]string, padding int) []string {
	if len(rows) == 0 {
		return nil
	}

	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	pretty := make([]string, 0, len(rows))
	var b strings.Builder
	for _, row := range rows {
		b.Reset()
		for i, cell := range row {
			b.WriteString(cell)
			b.WriteString(strings.Repeat(" ", widths[i]+padding-len(cell)))
		}
		pretty = append(pretty, strings.TrimRight(b.String(), " "))
	}
	return pretty
}

// TruncateString caps a string at maxLen runes of content, marking the cut
// with an ellipsis. The cut never splits a multibyte rune.
func TruncateString(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) > maxLen {
		return string(runes[:maxLen]) + "..."
	}
	return text
}

// ParseDecimal parses a finite decimal number. Returns false for anything
// else: empty strings, text, NaN and infinities.
func ParseDecimal(val string) (float64, bool) {
	d, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
	if err != nil {
		return 0, false
	}
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return 0, false
	}
	return d, true
}

// FormatFloat renders a float the way the report tables expect: no
// exponent, trailing zeros trimmed.
func FormatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	return s
}
