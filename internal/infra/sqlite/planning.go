package sqlite

import (
	"context"

	"github.com/boddenberg/finance-dashboard-bfa-go/internal/domain"
)

// ============================================================
// budgets
// ============================================================

const budgetColumns = `id, user_id, category_id, mode, monthly_limit, alert_threshold_pct, is_active, created_at`

func scanBudget(sc scanner) (domain.Budget, error) {
	var (
		b               domain.Budget
		mode, createdAt string
		active          int
	)
	if err := sc.Scan(&b.ID, &b.UserID, &b.CategoryID, &mode, &b.MonthlyLimit, &b.AlertThresholdPct, &active, &createdAt); err != nil {
		return b, err
	}
	b.Ledger = domain.Ledger(mode)
	b.Active = active != 0
	b.CreatedAt = parseTime(createdAt)
	return b, nil
}

func (s *Store) ListBudgets(ctx context.Context, userID string, view domain.LedgerView) ([]domain.Budget, error) {
	ctx, span := tracer.Start(ctx, "SQLite.ListBudgets")
	defer span.End()

	clause, args := viewClause("mode", view)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE user_id = ?`+clause+` ORDER BY created_at, id`,
		append([]any{userID}, args...)...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []domain.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) GetBudget(ctx context.Context, userID, budgetID string) (*domain.Budget, error) {
	ctx, span := tracer.Start(ctx, "SQLite.GetBudget")
	defer span.End()

	b, err := scanBudget(s.db.QueryRowContext(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE id = ? AND user_id = ?`, budgetID, userID))
	if err != nil {
		return nil, notFound(err, "budget", budgetID)
	}
	return &b, nil
}

func (s *Store) CreateBudget(ctx context.Context, b *domain.Budget) error {
	ctx, span := tracer.Start(ctx, "SQLite.CreateBudget")
	defer span.End()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO budgets (`+budgetColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.UserID, b.CategoryID, string(b.Ledger), b.MonthlyLimit, b.AlertThresholdPct,
		boolInt(b.Active), formatTime(b.CreatedAt))
	return mapError(err)
}

func (s *Store) UpdateBudget(ctx context.Context, b *domain.Budget) error {
	ctx, span := tracer.Start(ctx, "SQLite.UpdateBudget")
	defer span.End()

	res, err := s.db.ExecContext(ctx,
		`UPDATE budgets SET category_id = ?, mode = ?, monthly_limit = ?, alert_threshold_pct = ?, is_active = ?
		 WHERE id = ? AND user_id = ?`,
		b.CategoryID, string(b.Ledger), b.MonthlyLimit, b.AlertThresholdPct, boolInt(b.Active), b.ID, b.UserID)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(res, "budget", b.ID)
}

// ============================================================
// recurrences
// ============================================================

func (s *Store) ListRecurrences(ctx context.Context, userID string, view domain.LedgerView) ([]domain.Recurrence, error) {
	ctx, span := tracer.Start(ctx, "SQLite.ListRecurrences")
	defer span.End()

	clause, args := viewClause("mode", view)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, description, amount, type, category_id, mode, day_of_month, installments,
		 start_date, created_at FROM recurrences WHERE user_id = ?`+clause+` ORDER BY created_at, id`,
		append([]any{userID}, args...)...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []domain.Recurrence
	for rows.Next() {
		var (
			r                           domain.Recurrence
			typ, mode, start, createdAt string
		)
		if err := rows.Scan(&r.ID, &r.UserID, &r.Description, &r.Amount, &typ, &r.CategoryID, &mode,
			&r.DayOfMonth, &r.Installments, &start, &createdAt); err != nil {
			return nil, err
		}
		r.Type = domain.TransactionType(typ)
		r.Ledger = domain.Ledger(mode)
		r.StartDate = parseDate(start)
		r.CreatedAt = parseTime(createdAt)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) CreateRecurrence(ctx context.Context, r *domain.Recurrence) error {
	ctx, span := tracer.Start(ctx, "SQLite.CreateRecurrence")
	defer span.End()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO recurrences (id, user_id, description, amount, type, category_id, mode, day_of_month,
		 installments, start_date, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.UserID, r.Description, r.Amount, string(r.Type), r.CategoryID, string(r.Ledger),
		r.DayOfMonth, r.Installments, formatDate(r.StartDate), formatTime(r.CreatedAt))
	return mapError(err)
}
