package supabase

import (
	"context"
	"time"

	"github.com/boddenberg/finance-dashboard-bfa-go/internal/domain"
)

// ruleRow maps the categorization_rules table.
type ruleRow struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	LedgerType string    `json:"ledger_type"`
	MatchType  string    `json:"match_type"`
	Pattern    string    `json:"pattern"`
	CategoryID string    `json:"category_id"`
	Priority   int       `json:"priority"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

func (r ruleRow) toDomain() domain.CategorizationRule {
	return domain.CategorizationRule{
		ID:         r.ID,
		UserID:     r.UserID,
		Ledger:     domain.Ledger(r.LedgerType),
		MatchType:  domain.MatchType(r.MatchType),
		Pattern:    r.Pattern,
		CategoryID: r.CategoryID,
		Priority:   r.Priority,
		Active:     r.IsActive,
		CreatedAt:  r.CreatedAt,
	}
}

func ruleToRow(r *domain.CategorizationRule) ruleRow {
	return ruleRow{
		ID:         r.ID,
		UserID:     r.UserID,
		LedgerType: string(r.Ledger),
		MatchType:  string(r.MatchType),
		Pattern:    r.Pattern,
		CategoryID: r.CategoryID,
		Priority:   r.Priority,
		IsActive:   r.Active,
		CreatedAt:  r.CreatedAt,
	}
}

// ListRules returns every rule (active or not) in the view, highest
// priority first.
func (c *Client) ListRules(ctx context.Context, userID string, view domain.LedgerView) ([]domain.CategorizationRule, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListRules")
	defer span.End()

	var rules []domain.CategorizationRule
	err := c.call(ctx, "rules", func() error {
		body, err := c.doGet(ctx, from("categorization_rules").eq("user_id", userID).view("ledger_type", view).order("priority.desc,created_at.asc").String())
		if err != nil {
			return err
		}
		rows, err := decodeRows[ruleRow](body)
		if err != nil {
			return err
		}
		rules = make([]domain.CategorizationRule, 0, len(rows))
		for _, r := range rows {
			rules = append(rules, r.toDomain())
		}
		return nil
	})
	return rules, err
}

func (c *Client) GetRule(ctx context.Context, userID, ruleID string) (*domain.CategorizationRule, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetRule")
	defer span.End()

	var rule *domain.CategorizationRule
	err := c.call(ctx, "rules", func() error {
		body, err := c.doGet(ctx, from("categorization_rules").eq("id", ruleID).eq("user_id", userID).String())
		if err != nil {
			return err
		}
		row, err := decodeOne[ruleRow](body, "rule", ruleID)
		if err != nil {
			return err
		}
		r := row.toDomain()
		rule = &r
		return nil
	})
	return rule, err
}

func (c *Client) CreateRule(ctx context.Context, rule *domain.CategorizationRule) error {
	ctx, span := tracer.Start(ctx, "Supabase.CreateRule")
	defer span.End()

	return c.call(ctx, "rules", func() error {
		_, err := c.doPost(ctx, "categorization_rules", ruleToRow(rule))
		return err
	})
}

func (c *Client) UpdateRule(ctx context.Context, rule *domain.CategorizationRule) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateRule")
	defer span.End()

	return c.call(ctx, "rules", func() error {
		body, err := c.doPatch(ctx, from("categorization_rules").eq("id", rule.ID).eq("user_id", rule.UserID).String(), ruleToRow(rule))
		if err != nil {
			return err
		}
		_, err = decodeOne[ruleRow](body, "rule", rule.ID)
		return err
	})
}

func (c *Client) DeleteRule(ctx context.Context, userID, ruleID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteRule")
	defer span.End()

	return c.call(ctx, "rules", func() error {
		body, err := c.doDelete(ctx, from("categorization_rules").eq("id", ruleID).eq("user_id", userID).String())
		if err != nil {
			return err
		}
		_, err = decodeOne[ruleRow](body, "rule", ruleID)
		return err
	})
}
