package statement

import (
	"sort"
	"strings"
	"time"

	"github.com/boddenberg/finance-dashboard-bfa-go/internal/domain"
)

// Candidate is a normalized row with its category suggestion and duplicate
// flag; it becomes a domain.ImportRow when the batch is persisted.
type Candidate struct {
	NormalizedRow
	SuggestedCategoryID string
	Confidence          domain.Confidence
	DuplicateOfID       string
}

// Status is the initial review status of the row.
func (c Candidate) Status() domain.RowStatus {
	if c.DuplicateOfID != "" {
		return domain.RowDuplicateSuspect
	}
	return domain.RowNew
}

// OrderRules returns the active rules, highest priority first. Rules with
// equal priority keep their input order.
func OrderRules(rules []domain.CategorizationRule) []domain.CategorizationRule {
	out := make([]domain.CategorizationRule, 0, len(rules))
	for _, r := range rules {
		if r.Active {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority > out[j].Priority })
	return out
}

// Matches reports whether rule applies to a normalized description.
// CONTAINS ignores case; EXACT compares after whitespace normalization.
func Matches(rule domain.CategorizationRule, description string) bool {
	pattern := NormalizeDescription(rule.Pattern)
	if pattern == "" {
		return false
	}
	switch rule.MatchType {
	case domain.MatchExact:
		return NormalizeDescription(description) == pattern
	default:
		return strings.Contains(strings.ToLower(description), strings.ToLower(pattern))
	}
}

// MatchRule returns the first rule in ordered that matches description.
func MatchRule(ordered []domain.CategorizationRule, description string) (domain.CategorizationRule, bool) {
	for _, r := range ordered {
		if Matches(r, description) {
			return r, true
		}
	}
	return domain.CategorizationRule{}, false
}

// Categorize applies the first matching rule to each row. Matched rows get
// confidence HIGH; the rest stay LOW with no suggestion.
func Categorize(rows []NormalizedRow, rules []domain.CategorizationRule) []Candidate {
	ordered := OrderRules(rules)
	out := make([]Candidate, len(rows))
	for i, row := range rows {
		c := Candidate{NormalizedRow: row, Confidence: domain.ConfidenceLow}
		if r, ok := MatchRule(ordered, row.Description); ok {
			c.SuggestedCategoryID = r.CategoryID
			c.Confidence = domain.ConfidenceHigh
		}
		out[i] = c
	}
	return out
}

const (
	// DuplicateDays is the date tolerance for a duplicate suspect.
	DuplicateDays = 2
	// DuplicateTolerance is the amount tolerance in cents.
	DuplicateTolerance domain.Cents = 10
	// windowPadDays widens the existing-transaction lookup around the rows.
	windowPadDays = 5
)

// FlagDuplicates marks each candidate that has an existing transaction
// within ±2 days and 10 cents. It returns how many were flagged.
func FlagDuplicates(cands []Candidate, existing []domain.Transaction) int {
	flagged := 0
	for i := range cands {
		for _, tx := range existing {
			if withinDays(cands[i].Date, tx.Date, DuplicateDays) &&
				(cands[i].Amount-tx.Amount).Abs() <= DuplicateTolerance {
				cands[i].DuplicateOfID = tx.ID
				flagged++
				break
			}
		}
	}
	return flagged
}

// DateRange returns the earliest and latest row dates.
func DateRange(rows []NormalizedRow) (from, to time.Time, ok bool) {
	if len(rows) == 0 {
		return time.Time{}, time.Time{}, false
	}
	from, to = rows[0].Date, rows[0].Date
	for _, r := range rows[1:] {
		if r.Date.Before(from) {
			from = r.Date
		}
		if r.Date.After(to) {
			to = r.Date
		}
	}
	return from, to, true
}

// DuplicateWindow returns [earliest-5d, latest+5d] over the rows' dates.
func DuplicateWindow(rows []NormalizedRow) (from, to time.Time, ok bool) {
	from, to, ok = DateRange(rows)
	if !ok {
		return from, to, false
	}
	return from.AddDate(0, 0, -windowPadDays), to.AddDate(0, 0, windowPadDays), true
}

func withinDays(a, b time.Time, days int) bool {
	d := civil(a).Sub(civil(b))
	if d < 0 {
		d = -d
	}
	return d <= time.Duration(days)*24*time.Hour
}

// civil drops the clock and zone so comparisons count calendar days.
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
