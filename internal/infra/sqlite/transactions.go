package sqlite

import (
	"context"
	"strings"

	"github.com/boddenberg/finance-dashboard-bfa-go/internal/domain"
)

const txColumns = `id, user_id, description, amount, type, status, date, category_id, mode,
	project_id, client_id, recurrence_id, import_batch_id, created_at`

func scanTransaction(sc scanner) (domain.Transaction, error) {
	var (
		t                             domain.Transaction
		typ, status, date, mode, crAt string
	)
	err := sc.Scan(&t.ID, &t.UserID, &t.Description, &t.Amount, &typ, &status, &date, &t.CategoryID,
		&mode, &t.ProjectID, &t.ClientID, &t.RecurrenceID, &t.ImportBatchID, &crAt)
	if err != nil {
		return t, err
	}
	t.Type = domain.TransactionType(typ)
	t.Status = domain.TransactionStatus(status)
	t.Date = parseDate(date)
	t.Ledger = domain.Ledger(mode)
	t.CreatedAt = parseTime(crAt)
	return t, nil
}

func (s *Store) ListTransactions(ctx context.Context, f domain.TransactionFilter) ([]domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "SQLite.ListTransactions")
	defer span.End()

	var q strings.Builder
	q.WriteString(`SELECT ` + txColumns + ` FROM transactions WHERE user_id = ?`)
	args := []any{f.UserID}

	clause, viewArgs := viewClause("mode", f.View)
	q.WriteString(clause)
	args = append(args, viewArgs...)
	if !f.From.IsZero() {
		q.WriteString(` AND date >= ?`)
		args = append(args, formatDate(f.From))
	}
	if !f.To.IsZero() {
		q.WriteString(` AND date <= ?`)
		args = append(args, formatDate(f.To))
	}
	if f.Status != "" {
		q.WriteString(` AND status = ?`)
		args = append(args, string(f.Status))
	}
	if f.Type != "" {
		q.WriteString(` AND type = ?`)
		args = append(args, string(f.Type))
	}
	q.WriteString(` ORDER BY date, created_at, id`)

	rows, err := s.db.QueryContext(ctx, q.String(), args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) GetTransaction(ctx context.Context, userID, txID string) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "SQLite.GetTransaction")
	defer span.End()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+txColumns+` FROM transactions WHERE id = ? AND user_id = ?`, txID, userID)
	t, err := scanTransaction(row)
	if err != nil {
		return nil, notFound(err, "transaction", txID)
	}
	return &t, nil
}

// CreateTransactions inserts all of txs in one transaction.
func (s *Store) CreateTransactions(ctx context.Context, txs []domain.Transaction) error {
	ctx, span := tracer.Start(ctx, "SQLite.CreateTransactions")
	defer span.End()

	if len(txs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO transactions (`+txColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for i := range txs {
		t := &txs[i]
		_, err := stmt.ExecContext(ctx, t.ID, t.UserID, t.Description, t.Amount, string(t.Type),
			string(t.Status), formatDate(t.Date), t.CategoryID, string(t.Ledger), t.ProjectID,
			t.ClientID, t.RecurrenceID, t.ImportBatchID, formatTime(t.CreatedAt))
		if err != nil {
			return mapError(err)
		}
	}
	return tx.Commit()
}

func (s *Store) UpdateTransaction(ctx context.Context, t *domain.Transaction) error {
	ctx, span := tracer.Start(ctx, "SQLite.UpdateTransaction")
	defer span.End()

	res, err := s.db.ExecContext(ctx,
		`UPDATE transactions SET description = ?, amount = ?, type = ?, status = ?, date = ?,
		 category_id = ?, mode = ?, project_id = ?, client_id = ? WHERE id = ? AND user_id = ?`,
		t.Description, t.Amount, string(t.Type), string(t.Status), formatDate(t.Date),
		t.CategoryID, string(t.Ledger), t.ProjectID, t.ClientID, t.ID, t.UserID)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(res, "transaction", t.ID)
}

func (s *Store) DeleteTransaction(ctx context.Context, userID, txID string) error {
	ctx, span := tracer.Start(ctx, "SQLite.DeleteTransaction")
	defer span.End()

	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ? AND user_id = ?`, txID, userID)
	if err != nil {
		return err
	}
	return requireAffected(res, "transaction", txID)
}

func (s *Store) DeleteTransactionsByBatch(ctx context.Context, userID, batchID string) (int, error) {
	ctx, span := tracer.Start(ctx, "SQLite.DeleteTransactionsByBatch")
	defer span.End()

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE user_id = ? AND import_batch_id = ?`, userID, batchID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
