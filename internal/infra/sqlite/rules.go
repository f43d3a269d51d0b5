package sqlite

import (
	"context"

	"github.com/boddenberg/finance-dashboard-bfa-go/internal/domain"
)

const ruleColumns = `id, user_id, ledger_type, match_type, pattern, category_id, priority, is_active, created_at`

func scanRule(sc scanner) (domain.CategorizationRule, error) {
	var (
		r                        domain.CategorizationRule
		ledger, match, createdAt string
		active                   int
	)
	if err := sc.Scan(&r.ID, &r.UserID, &ledger, &match, &r.Pattern, &r.CategoryID, &r.Priority, &active, &createdAt); err != nil {
		return r, err
	}
	r.Ledger = domain.Ledger(ledger)
	r.MatchType = domain.MatchType(match)
	r.Active = active != 0
	r.CreatedAt = parseTime(createdAt)
	return r, nil
}

func (s *Store) ListRules(ctx context.Context, userID string, view domain.LedgerView) ([]domain.CategorizationRule, error) {
	ctx, span := tracer.Start(ctx, "SQLite.ListRules")
	defer span.End()

	clause, args := viewClause("ledger_type", view)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+ruleColumns+` FROM categorization_rules WHERE user_id = ?`+clause+` ORDER BY priority DESC, created_at, id`,
		append([]any{userID}, args...)...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []domain.CategorizationRule
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) GetRule(ctx context.Context, userID, ruleID string) (*domain.CategorizationRule, error) {
	ctx, span := tracer.Start(ctx, "SQLite.GetRule")
	defer span.End()

	r, err := scanRule(s.db.QueryRowContext(ctx,
		`SELECT `+ruleColumns+` FROM categorization_rules WHERE id = ? AND user_id = ?`, ruleID, userID))
	if err != nil {
		return nil, notFound(err, "rule", ruleID)
	}
	return &r, nil
}

func (s *Store) CreateRule(ctx context.Context, r *domain.CategorizationRule) error {
	ctx, span := tracer.Start(ctx, "SQLite.CreateRule")
	defer span.End()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO categorization_rules (`+ruleColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.UserID, string(r.Ledger), string(r.MatchType), r.Pattern, r.CategoryID, r.Priority,
		boolInt(r.Active), formatTime(r.CreatedAt))
	return mapError(err)
}

func (s *Store) UpdateRule(ctx context.Context, r *domain.CategorizationRule) error {
	ctx, span := tracer.Start(ctx, "SQLite.UpdateRule")
	defer span.End()

	res, err := s.db.ExecContext(ctx,
		`UPDATE categorization_rules SET ledger_type = ?, match_type = ?, pattern = ?, category_id = ?,
		 priority = ?, is_active = ? WHERE id = ? AND user_id = ?`,
		string(r.Ledger), string(r.MatchType), r.Pattern, r.CategoryID, r.Priority, boolInt(r.Active), r.ID, r.UserID)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(res, "rule", r.ID)
}

func (s *Store) DeleteRule(ctx context.Context, userID, ruleID string) error {
	ctx, span := tracer.Start(ctx, "SQLite.DeleteRule")
	defer span.End()

	res, err := s.db.ExecContext(ctx, `DELETE FROM categorization_rules WHERE id = ? AND user_id = ?`, ruleID, userID)
	if err != nil {
		return err
	}
	return requireAffected(res, "rule", ruleID)
}
