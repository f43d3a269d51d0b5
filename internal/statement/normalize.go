package statement

import (
	"errors"
	"strings"
	"time"

	"github.com/boddenberg/finance-dashboard-bfa-go/internal/domain"

	"github.com/shopspring/decimal"
)

// dateLayouts are tried in order; the first valid parse wins.
var dateLayouts = []string{
	"02/01/2006",
	"2006-01-02",
	"01/02/2006",
	"02-01-2006",
	"02/01/06",
	"02/01",
}

// ParseDate parses a statement date. Dates without a year ("25/12") take
// refYear. ok is false when no layout matches.
func ParseDate(s string, refYear int) (time.Time, bool) {
	s = padDateParts(strings.TrimSpace(s))
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if layout == "02/01" {
			if len(s) != 5 {
				continue
			}
			t, err := time.Parse("02/01/2006", s+"/"+yearString(refYear))
			if err == nil {
				return t, true
			}
			continue
		}
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// padDateParts zero-pads one-digit day and month fields ("5/3/2024" ->
// "05/03/2024") since the layouts require two digits.
func padDateParts(s string) string {
	sep := ""
	switch {
	case strings.Contains(s, "/"):
		sep = "/"
	case strings.Count(s, "-") >= 2:
		sep = "-"
	default:
		return s
	}
	parts := strings.Split(s, sep)
	for i, p := range parts {
		if len(p) == 1 && p[0] >= '0' && p[0] <= '9' {
			parts[i] = "0" + p
		}
	}
	return strings.Join(parts, sep)
}

func yearString(y int) string {
	return time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC).Format("2006")
}

var errNotAmount = errors.New("not an amount")

var currencyMarks = []string{"R$", "US$", "BRL", "USD", "$"}

// ParseAmount parses a localized amount into cents and a direction.
//
//	"1.234,56" -> 123456   both separators: dot groups, comma is decimal
//	"1234,56"  -> 123456   comma only: decimal
//	"1234.56"  -> 123456   dot with 1-2 trailing digits: decimal
//	"1.234"    -> 123400   dot with 3 trailing digits: thousands
//
// A minus sign anywhere, or surrounding parentheses, makes the direction OUT.
func ParseAmount(s string) (domain.Cents, domain.Direction, error) {
	s = strings.TrimSpace(s)
	for _, mark := range currencyMarks {
		s = strings.ReplaceAll(s, mark, "")
	}
	s = strings.TrimSpace(s)

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	}
	if strings.Contains(s, "-") {
		negative = true
		s = strings.ReplaceAll(s, "-", "")
	}
	s = strings.TrimPrefix(strings.TrimSpace(s), "+")
	s = strings.ReplaceAll(s, " ", "")

	if s == "" {
		return 0, "", errNotAmount
	}
	digits := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.' || r == ',':
		default:
			return 0, "", errNotAmount
		}
	}
	if digits == 0 {
		return 0, "", errNotAmount
	}

	d, err := decimal.NewFromString(canonicalNumber(s))
	if err != nil {
		return 0, "", errNotAmount
	}
	cents := domain.FromMajor(d).Abs()

	dir := domain.DirectionIn
	if negative {
		dir = domain.DirectionOut
	}
	return cents, dir, nil
}

// canonicalNumber rewrites a grouped/localized number as "1234.56".
func canonicalNumber(s string) string {
	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")

	switch {
	case hasComma && hasDot:
		if strings.LastIndex(s, ".") > strings.LastIndex(s, ",") {
			// "1,234.56": US grouping accepted as an extension of the
			// dot-groups rule; the later separator is the decimal one.
			return strings.ReplaceAll(s, ",", "")
		}
		s = strings.ReplaceAll(s, ".", "")
		return strings.Replace(s, ",", ".", 1)
	case hasComma:
		return keepLastSeparator(s, ",")
	case hasDot:
		last := s[strings.LastIndex(s, ".")+1:]
		if len(last) == 1 || len(last) == 2 {
			return keepLastSeparator(s, ".")
		}
		return strings.ReplaceAll(s, ".", "")
	}
	return s
}

// keepLastSeparator drops every sep but the last, which becomes ".".
func keepLastSeparator(s, sep string) string {
	i := strings.LastIndex(s, sep)
	head := strings.ReplaceAll(s[:i], sep, "")
	return head + "." + s[i+1:]
}

// NormalizeDescription collapses whitespace and trims.
func NormalizeDescription(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Normalize validates raw rows. Rows without a parseable date or with an
// invalid or zero amount are dropped; the count of dropped rows is returned.
func Normalize(raws []RawRow, refYear int) ([]NormalizedRow, int) {
	out := make([]NormalizedRow, 0, len(raws))
	dropped := 0
	for _, r := range raws {
		date, ok := ParseDate(r.DateText, refYear)
		if !ok {
			dropped++
			continue
		}
		amount, dir, err := ParseAmount(r.AmountText)
		if err != nil || amount == 0 {
			dropped++
			continue
		}
		raw := strings.TrimSpace(r.DescriptionText)
		if raw == "" {
			raw = strings.TrimSpace(r.Raw)
		}
		out = append(out, NormalizedRow{
			Line:           r.Line,
			Date:           date,
			Amount:         amount,
			Direction:      dir,
			RawDescription: raw,
			Description:    NormalizeDescription(raw),
		})
	}
	return out, dropped
}
