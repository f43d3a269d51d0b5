// Package statement turns uploaded bank statements (CSV or PDF) into typed,
// normalized candidate rows, then categorizes them and flags duplicates.
//
// Every function here is pure; persistence belongs to service.ImportService.
package statement

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/boddenberg/finance-dashboard-bfa-go/internal/domain"

	"golang.org/x/text/encoding/charmap"
)

const sampleSize = 300

// RawRow is a candidate line as found in the file. Fields hold the original
// text; nothing has been validated yet.
type RawRow struct {
	Line            int
	DateText        string
	AmountText      string
	DescriptionText string
	Raw             string
}

// NormalizedRow is a RawRow that passed date and amount validation.
type NormalizedRow struct {
	Line           int
	Date           time.Time
	Amount         domain.Cents // always positive
	Direction      domain.Direction
	RawDescription string
	Description    string
}

// Parse extracts raw rows from a statement. It fails with *domain.ErrParse
// when nothing usable is found; it never returns an empty success.
func Parse(data []byte, source domain.SourceType) ([]RawRow, error) {
	switch source {
	case domain.SourceCSV:
		text := decodeText(data)
		rows := ParseCSV(text)
		if len(rows) == 0 {
			return nil, parseFailure("no transaction rows found", source, text)
		}
		return rows, nil
	case domain.SourcePDF:
		text, err := ExtractPDFText(data)
		if err != nil {
			return nil, &domain.ErrParse{
				Reason: "pdf text extraction failed: " + err.Error(),
				Debug:  domain.ParseDebug{SourceType: source},
			}
		}
		rows := ParseText(text)
		if len(rows) == 0 {
			return nil, parseFailure("no lines with both a date and an amount", source, text)
		}
		return rows, nil
	default:
		return nil, &domain.ErrParse{
			Reason: "unsupported source type " + string(source),
			Debug:  domain.ParseDebug{SourceType: source},
		}
	}
}

// ParseSourceType accepts "csv"/"pdf" in any case.
func ParseSourceType(s string) (domain.SourceType, error) {
	switch domain.SourceType(strings.ToUpper(strings.TrimSpace(s))) {
	case domain.SourceCSV:
		return domain.SourceCSV, nil
	case domain.SourcePDF:
		return domain.SourcePDF, nil
	}
	return "", &domain.ErrValidation{Field: "source_type", Message: "must be CSV or PDF"}
}

func parseFailure(reason string, source domain.SourceType, text string) *domain.ErrParse {
	return &domain.ErrParse{
		Reason: reason,
		Debug: domain.ParseDebug{
			LineCount:  len(splitLines(text)),
			SourceType: source,
			Sample:     sample(text),
		},
	}
}

// NoValidRows is the failure for a statement whose raw rows were all
// dropped by Normalize.
func NoValidRows(raws []RawRow, source domain.SourceType) *domain.ErrParse {
	lines := make([]string, len(raws))
	for i, r := range raws {
		lines[i] = r.Raw
	}
	return &domain.ErrParse{
		Reason: "no row had a valid date and amount",
		Debug: domain.ParseDebug{
			LineCount:  len(raws),
			SourceType: source,
			Sample:     sample(strings.Join(lines, "\n")),
		},
	}
}

// decodeText returns data as UTF-8. Many bank exports are Windows-1252.
func decodeText(data []byte) string {
	data = trimBOM(data)
	if utf8.Valid(data) {
		return string(data)
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(out)
}

func trimBOM(data []byte) []byte {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return data[3:]
	}
	return data
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}

func sample(text string) string {
	if utf8.RuneCountInString(text) <= sampleSize {
		return text
	}
	return string([]rune(text)[:sampleSize])
}
