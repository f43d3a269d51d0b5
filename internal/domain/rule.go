package domain

import "time"

// MatchType selects how a rule pattern is compared with a description.
type MatchType string

const (
	MatchContains MatchType = "CONTAINS"
	MatchExact    MatchType = "EXACT"
)

// CategorizationRule maps a description pattern to a category.
// Higher priority rules are tried first.
type CategorizationRule struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Ledger     Ledger    `json:"ledger_type"`
	MatchType  MatchType `json:"match_type"`
	Pattern    string    `json:"pattern"`
	CategoryID string    `json:"category_id"`
	Priority   int       `json:"priority"`
	Active     bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

// RuleInput is the body for creating a rule (also used by apply-rule).
type RuleInput struct {
	Ledger     Ledger    `json:"ledger_type"`
	MatchType  MatchType `json:"match_type"`
	Pattern    string    `json:"pattern"`
	CategoryID string    `json:"category_id"`
	Priority   int       `json:"priority"`
	Active     *bool     `json:"is_active,omitempty"`
}

// Validate checks the input and fills defaults.
func (in *RuleInput) Validate() error {
	if !in.Ledger.Valid() {
		return &ErrValidation{Field: "ledger_type", Message: "must be PF or PJ"}
	}
	if in.MatchType == "" {
		in.MatchType = MatchContains
	}
	if in.MatchType != MatchContains && in.MatchType != MatchExact {
		return &ErrValidation{Field: "match_type", Message: "must be CONTAINS or EXACT"}
	}
	if in.Pattern == "" {
		return &ErrValidation{Field: "pattern", Message: "required"}
	}
	if in.CategoryID == "" {
		return &ErrValidation{Field: "category_id", Message: "required"}
	}
	return nil
}
