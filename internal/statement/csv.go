package statement

import (
	"encoding/csv"
	"io"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const delimiterProbe = 1000

var candidateDelimiters = []rune{',', ';', '\t', '|'}

// DetectDelimiter picks the candidate among , ; tab | that splits the first
// non-blank line (within the first 1000 characters) into the most fields.
// Ties keep the earlier candidate; a line no candidate splits falls back to ','.
func DetectDelimiter(text string) rune {
	probe := text
	if len(probe) > delimiterProbe {
		probe = probe[:delimiterProbe]
	}
	first := ""
	for _, line := range splitLines(probe) {
		if strings.TrimSpace(line) != "" {
			first = line
			break
		}
	}
	best, bestFields := ',', 1
	for _, d := range candidateDelimiters {
		if n := countFields(first, d); n > bestFields {
			best, bestFields = d, n
		}
	}
	return best
}

// countFields counts the fields of one line, honouring quoted fields.
func countFields(line string, delim rune) int {
	r := csv.NewReader(strings.NewReader(line))
	r.Comma = delim
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	rec, err := r.Read()
	if err != nil {
		return strings.Count(line, string(delim)) + 1
	}
	return len(rec)
}

// columns holds header positions; -1 means absent.
type columns struct {
	date, amount, desc, credit, debit int
}

var (
	dateHeaders   = []string{"data", "date", "dt"}
	amountHeaders = []string{"valor", "amount", "value", "quantia", "montante"}
	descHeaders   = []string{"historico", "descri", "lancamento", "memo", "detalhe", "estabelecimento"}
	creditHeaders = []string{"credito", "credit", "entrada"}
	debitHeaders  = []string{"debito", "debit", "saida"}
	// Balance columns look like amounts but never are.
	ignoredHeaders = []string{"saldo", "balance"}
)

// ParseCSV extracts raw rows from delimited text. It looks for a header
// line naming the date and amount/description columns; without one it
// falls back to classifying each line's fields.
func ParseCSV(text string) []RawRow {
	lines := splitLines(text)
	delim := DetectDelimiter(text)

	if idx, cols, ok := findHeader(lines, delim); ok {
		if rows := parseWithHeader(lines, idx, cols, delim); len(rows) > 0 {
			return rows
		}
	}
	return parseHeuristic(lines, delim)
}

func findHeader(lines []string, delim rune) (int, columns, bool) {
	for i, line := range lines {
		folded := foldHeader(line)
		if !containsAny(folded, dateHeaders[:2]) {
			continue
		}
		if !containsAny(folded, amountHeaders) && !containsAny(folded, descHeaders) &&
			!containsAny(folded, creditHeaders) {
			continue
		}
		cols := mapColumns(splitFields(line, delim))
		if cols.date < 0 {
			continue
		}
		return i, cols, true
	}
	return 0, columns{}, false
}

func mapColumns(fields []string) columns {
	cols := columns{date: -1, amount: -1, desc: -1, credit: -1, debit: -1}
	used := make(map[int]bool)
	pick := func(keys []string) int {
		for i, f := range fields {
			h := foldHeader(f)
			if used[i] || containsAny(h, ignoredHeaders) {
				continue
			}
			if containsAny(h, keys) {
				used[i] = true
				return i
			}
		}
		return -1
	}
	cols.date = pick(dateHeaders)
	cols.credit = pick(creditHeaders)
	cols.debit = pick(debitHeaders)
	cols.amount = pick(amountHeaders)
	cols.desc = pick(descHeaders)
	return cols
}

func parseWithHeader(lines []string, headerIdx int, cols columns, delim rune) []RawRow {
	r := csv.NewReader(strings.NewReader(strings.Join(lines[headerIdx+1:], "\n")))
	r.Comma = delim
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var rows []RawRow
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		line, _ := r.FieldPos(0)
		if isBlank(rec) {
			continue
		}
		row := RawRow{
			Line:     headerIdx + 1 + line,
			DateText: field(rec, cols.date),
			Raw:      strings.Join(rec, string(delim)),
		}
		row.AmountText = amountFromColumns(rec, cols)
		if cols.desc >= 0 {
			row.DescriptionText = field(rec, cols.desc)
		} else {
			row.DescriptionText = longestText(rec, cols.date)
		}
		rows = append(rows, row)
	}
	return rows
}

// amountFromColumns reads a single amount column, or a credit/debit pair
// where a debit becomes a negative amount.
func amountFromColumns(rec []string, cols columns) string {
	if cols.amount >= 0 {
		if v := field(rec, cols.amount); v != "" {
			return v
		}
	}
	if cols.credit >= 0 {
		if v := field(rec, cols.credit); v != "" {
			if c, _, err := ParseAmount(v); err == nil && c != 0 {
				return v
			}
		}
	}
	if cols.debit >= 0 {
		if v := field(rec, cols.debit); v != "" {
			return "-" + strings.TrimPrefix(v, "-")
		}
	}
	return ""
}

// parseHeuristic keeps lines with one field that parses as a date and
// another that parses as a nonzero amount.
func parseHeuristic(lines []string, delim rune) []RawRow {
	var rows []RawRow
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := splitFields(line, delim)
		dateIdx := -1
		for j, f := range fields {
			if _, ok := ParseDate(f, 2000); ok {
				dateIdx = j
				break
			}
		}
		if dateIdx < 0 {
			continue
		}
		amountIdx := -1
		for j, f := range fields {
			if j == dateIdx {
				continue
			}
			if c, _, err := ParseAmount(f); err == nil && c != 0 {
				amountIdx = j
				break
			}
		}
		if amountIdx < 0 {
			continue
		}
		desc := longestText(fields, dateIdx, amountIdx)
		if desc == "" {
			desc = line
		}
		rows = append(rows, RawRow{
			Line:            i + 1,
			DateText:        fields[dateIdx],
			AmountText:      fields[amountIdx],
			DescriptionText: desc,
			Raw:             line,
		})
	}
	return rows
}

func splitFields(line string, delim rune) []string {
	parts := strings.Split(line, string(delim))
	for i, p := range parts {
		parts[i] = strings.Trim(strings.TrimSpace(p), `"`)
	}
	return parts
}

// longestText returns the longest field that is neither a date nor a number.
func longestText(fields []string, skip ...int) string {
	best := ""
outer:
	for i, f := range fields {
		for _, s := range skip {
			if i == s {
				continue outer
			}
		}
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if _, ok := ParseDate(f, 2000); ok {
			continue
		}
		if _, _, err := ParseAmount(f); err == nil {
			continue
		}
		if len(f) > len(best) {
			best = f
		}
	}
	return best
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func containsAny(s string, keys []string) bool {
	for _, k := range keys {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// foldHeader lowercases and strips accents: "Histórico" -> "historico".
func foldHeader(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return strings.ToLower(out)
}
