package sqlite

import (
	"context"

	"github.com/boddenberg/finance-dashboard-bfa-go/internal/domain"
)

const debtColumns = `id, user_id, name, balance, interest_rate, minimum_payment, due_day, status, mode, created_at, updated_at`

func scanDebt(sc scanner) (domain.Debt, error) {
	var (
		d                  domain.Debt
		status, mode       string
		createdAt, updated string
	)
	err := sc.Scan(&d.ID, &d.UserID, &d.Name, &d.Balance, &d.InterestRate, &d.MinimumPayment,
		&d.DueDay, &status, &mode, &createdAt, &updated)
	if err != nil {
		return d, err
	}
	d.Status = domain.DebtStatus(status)
	d.Ledger = domain.Ledger(mode)
	d.CreatedAt = parseTime(createdAt)
	d.UpdatedAt = parseTime(updated)
	return d, nil
}

func (s *Store) ListDebts(ctx context.Context, userID string, view domain.LedgerView) ([]domain.Debt, error) {
	ctx, span := tracer.Start(ctx, "SQLite.ListDebts")
	defer span.End()

	clause, args := viewClause("mode", view)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+debtColumns+` FROM debts WHERE user_id = ?`+clause+` ORDER BY created_at, id`,
		append([]any{userID}, args...)...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []domain.Debt
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) GetDebt(ctx context.Context, userID, debtID string) (*domain.Debt, error) {
	ctx, span := tracer.Start(ctx, "SQLite.GetDebt")
	defer span.End()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+debtColumns+` FROM debts WHERE id = ? AND user_id = ?`, debtID, userID)
	d, err := scanDebt(row)
	if err != nil {
		return nil, notFound(err, "debt", debtID)
	}
	return &d, nil
}

func (s *Store) CreateDebt(ctx context.Context, d *domain.Debt) error {
	ctx, span := tracer.Start(ctx, "SQLite.CreateDebt")
	defer span.End()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO debts (`+debtColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.UserID, d.Name, d.Balance, d.InterestRate, d.MinimumPayment, d.DueDay,
		string(d.Status), string(d.Ledger), formatTime(d.CreatedAt), formatTime(d.UpdatedAt))
	return mapError(err)
}

func (s *Store) UpdateDebt(ctx context.Context, d *domain.Debt) error {
	ctx, span := tracer.Start(ctx, "SQLite.UpdateDebt")
	defer span.End()

	res, err := s.db.ExecContext(ctx,
		`UPDATE debts SET name = ?, balance = ?, interest_rate = ?, minimum_payment = ?, due_day = ?,
		 status = ?, mode = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		d.Name, d.Balance, d.InterestRate, d.MinimumPayment, d.DueDay,
		string(d.Status), string(d.Ledger), formatTime(d.UpdatedAt), d.ID, d.UserID)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(res, "debt", d.ID)
}

func (s *Store) DeleteDebt(ctx context.Context, userID, debtID string) error {
	ctx, span := tracer.Start(ctx, "SQLite.DeleteDebt")
	defer span.End()

	res, err := s.db.ExecContext(ctx, `DELETE FROM debts WHERE id = ? AND user_id = ?`, debtID, userID)
	if err != nil {
		return err
	}
	return requireAffected(res, "debt", debtID)
}
