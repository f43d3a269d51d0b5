package statement

import (
	"regexp"
	"strings"
)

var (
	lineDateRe   = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2}|\d{2}/\d{2}(?:/\d{4}|/\d{2})?)\b`)
	lineAmountRe = regexp.MustCompile(`-?\d{1,3}(?:\.\d{3})+,\d{2}|-?\d+,\d{2}|-?\d+\.\d{2}\b`)
)

// ParseText extracts rows from free text (PDF output). A line is kept when
// it has both a date and an amount; the amount is the last amount-looking
// token and the description is what remains.
func ParseText(text string) []RawRow {
	var rows []RawRow
	for i, line := range splitLines(text) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		dateText := lineDateRe.FindString(line)
		if dateText == "" || !lineAmountRe.MatchString(line) {
			continue
		}
		tokens := strings.Fields(line)
		amountIdx := -1
		for j := len(tokens) - 1; j >= 0; j-- {
			if looksLikeAmount(tokens[j]) {
				amountIdx = j
				break
			}
		}
		if amountIdx < 0 {
			continue
		}

		dateDropped := false
		desc := make([]string, 0, len(tokens))
		for j, tok := range tokens {
			if j == amountIdx {
				continue
			}
			if !dateDropped && tok == dateText {
				dateDropped = true
				continue
			}
			desc = append(desc, tok)
		}
		rows = append(rows, RawRow{
			Line:            i + 1,
			DateText:        dateText,
			AmountText:      tokens[amountIdx],
			DescriptionText: strings.Join(desc, " "),
			Raw:             line,
		})
	}
	return rows
}

func looksLikeAmount(tok string) bool {
	if !strings.Contains(tok, ",") && !lineAmountRe.MatchString(tok) {
		return false
	}
	c, _, err := ParseAmount(tok)
	return err == nil && c != 0
}
