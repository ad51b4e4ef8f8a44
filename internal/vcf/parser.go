package vcf

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/jakobsg/rundiff/internal/report"
)

// infoMissing is the sentinel value for INFO entries without '='.
const infoMissing = "<MISSING>"

var (
	infoIDPattern       = regexp.MustCompile(`ID=([^,]+),`)
	subScoreNamePattern = regexp.MustCompile(`ID=RankResult,.*Description="(.*)">`)
)

// ParseError is a fatal parse failure with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("vcf parse error at line %d: %s", e.Line, e.Message)
}

// openReader opens a plain or gzip-compressed file. Gzip is detected from
// the magic bytes rather than the filename.
func openReader(path string) (*bufio.Reader, func() error, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open vcf file: %w", err)
	}

	magic := make([]byte, 2)
	if _, err := io.ReadFull(file, magic); err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		file.Close()
		return nil, nil, fmt.Errorf("read vcf header: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		return nil, nil, fmt.Errorf("seek vcf file: %w", err)
	}

	if magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, nil, fmt.Errorf("create gzip reader: %w", err)
		}
		closer := func() error {
			gz.Close()
			return file.Close()
		}
		return bufio.NewReader(gz), closer, nil
	}

	return bufio.NewReader(file), file.Close, nil
}

// ParseScoredVCF reads one VCF in a single streaming pass into a variant
// index keyed on identity. Duplicate keys overwrite (last write wins) and
// are counted; the count is surfaced through the reporter.
func ParseScoredVCF(path string, isSV bool, rep report.Reporter) (*ScoredVCF, error) {
	reader, closer, err := openReader(path)
	if err != nil {
		return nil, err
	}
	defer closer()

	parsed := &ScoredVCF{
		Path:     path,
		IsSV:     isSV,
		InfoRows: make(map[string]string),
		Variants: make(map[string]*ScoredVariant),
	}

	lineNbr := 0
	for {
		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("read vcf line: %w", err)
		}
		if line == "" && err == io.EOF {
			break
		}
		lineNbr++
		line = strings.TrimRight(line, "\r\n")

		if strings.HasPrefix(line, "#") {
			if parseErr := parsed.parseHeaderLine(line, lineNbr); parseErr != nil {
				return nil, parseErr
			}
		} else if line != "" {
			variant, parseErr := parseDataLine(line, lineNbr, isSV, parsed.SubScoreNames)
			if parseErr != nil {
				return nil, parseErr
			}
			key := variant.Key()
			if _, exists := parsed.Variants[key]; exists {
				parsed.KeyOverwrites++
			}
			parsed.Variants[key] = variant
		}

		if err == io.EOF {
			break
		}
	}

	if parsed.KeyOverwrites > 0 {
		rep.Warning(fmt.Sprintf("%s: %d variant key collisions, last record kept for each", path, parsed.KeyOverwrites))
	}

	return parsed, nil
}

// parseHeaderLine indexes INFO definitions by their declared ID and
// captures the rank sub-score category names the first time the
// RankResult definition is seen.
func (s *ScoredVCF) parseHeaderLine(line string, lineNbr int) error {
	if !strings.HasPrefix(line, "##INFO=") {
		return nil
	}

	idMatch := infoIDPattern.FindStringSubmatch(line)
	if idMatch == nil {
		return &ParseError{Line: lineNbr, Message: fmt.Sprintf("expected ID match in line: %s", line)}
	}
	s.InfoRows[idMatch[1]] = line

	if s.SubScoreNames == nil && strings.HasPrefix(line, "##INFO=<ID=RankResult,") {
		nameMatch := subScoreNamePattern.FindStringSubmatch(line)
		if nameMatch == nil {
			return &ParseError{Line: lineNbr, Message: fmt.Sprintf("rank score categories expected but not found in: %s", line)}
		}
		s.SubScoreNames = strings.Split(nameMatch[1], "|")
	}
	return nil
}

func parseDataLine(line string, lineNbr int, isSV bool, subScoreNames []string) (*ScoredVariant, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 8 {
		return nil, &ParseError{
			Line:    lineNbr,
			Message: fmt.Sprintf("expected at least 8 columns, found %d", len(fields)),
		}
	}

	pos, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, &ParseError{Line: lineNbr, Message: fmt.Sprintf("invalid position: %s", fields[1])}
	}

	info := parseInfoField(fields[7])

	rankScore, err := parseRankScore(info, lineNbr)
	if err != nil {
		return nil, err
	}

	subScores, err := parseSubScores(info, subScoreNames, line, lineNbr)
	if err != nil {
		return nil, err
	}

	var svLength *int
	if endVal, ok := info["END"]; ok && isSV {
		end, err := strconv.Atoi(endVal)
		if err != nil {
			return nil, &ParseError{Line: lineNbr, Message: fmt.Sprintf("invalid END annotation: %s", endVal)}
		}
		length := end - pos + 1
		svLength = &length
	}

	sample := make(map[string]string)
	if len(fields) > 9 && fields[8] != "" {
		formatKeys := strings.Split(fields[8], ":")
		sampleValues := strings.Split(fields[9], ":")
		for i, key := range formatKeys {
			if i < len(sampleValues) {
				sample[key] = sampleValues[i]
			} else {
				sample[key] = ""
			}
		}
	}

	return &ScoredVariant{
		Chrom:      fields[0],
		Pos:        pos,
		Ref:        fields[3],
		Alt:        fields[4],
		RankScore:  rankScore,
		SubScores:  subScores,
		IsSV:       isSV,
		SVLength:   svLength,
		Info:       info,
		Filters:    fields[6],
		LineNumber: lineNbr,
		Sample:     sample,
	}, nil
}

// parseInfoField splits the INFO column on ';' and each entry on the
// first '='. Entries without '=' get a sentinel value instead of failing.
func parseInfoField(infoField string) map[string]string {
	info := make(map[string]string)
	for _, entry := range strings.Split(infoField, ";") {
		key, value, found := strings.Cut(entry, "=")
		if !found {
			value = infoMissing
		}
		info[key] = value
	}
	return info
}

// parseRankScore extracts the integer score from a "label:score" INFO
// entry, accepting a trailing ".0". Absence yields nil, never an error.
func parseRankScore(info map[string]string, lineNbr int) (*int, error) {
	raw, ok := info["RankScore"]
	if !ok {
		return nil, nil
	}
	_, scorePart, found := strings.Cut(raw, ":")
	if !found {
		return nil, &ParseError{Line: lineNbr, Message: fmt.Sprintf("malformed RankScore entry: %s", raw)}
	}
	scorePart = strings.TrimSuffix(scorePart, ".0")
	score, err := strconv.Atoi(scorePart)
	if err != nil {
		return nil, &ParseError{Line: lineNbr, Message: fmt.Sprintf("non-integer RankScore: %s", raw)}
	}
	return &score, nil
}

// parseSubScores zips the pipe-delimited RankResult values against the
// category names declared in the header. A length mismatch is fatal.
func parseSubScores(info map[string]string, names []string, line string, lineNbr int) ([]SubScore, error) {
	raw, ok := info["RankResult"]
	if !ok {
		return nil, nil
	}
	if names == nil {
		return nil, &ParseError{Line: lineNbr, Message: "found rank sub scores, but no header declaration"}
	}

	values := strings.Split(raw, "|")
	if len(values) != len(names) {
		return nil, &ParseError{
			Line: lineNbr,
			Message: fmt.Sprintf(
				"length of sub score names and values should match, found %v and %v in line: %s",
				names, values, line),
		}
	}

	subScores := make([]SubScore, len(names))
	for i, val := range values {
		score, err := strconv.Atoi(val)
		if err != nil {
			return nil, &ParseError{Line: lineNbr, Message: fmt.Sprintf("non-integer rank sub score: %s", val)}
		}
		subScores[i] = SubScore{Category: names[i], Value: score}
	}
	return subScores, nil
}

// CountVariants counts the data lines of a VCF without building an index.
func CountVariants(path string) (int, error) {
	reader, closer, err := openReader(path)
	if err != nil {
		return 0, err
	}
	defer closer()

	count := 0
	for {
		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return 0, fmt.Errorf("read vcf line: %w", err)
		}
		trimmed := strings.TrimRight(line, "\r\n")
		if trimmed != "" && !strings.HasPrefix(trimmed, "#") {
			count++
		}
		if err == io.EOF {
			break
		}
	}
	return count, nil
}
