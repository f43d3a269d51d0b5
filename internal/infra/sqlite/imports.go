package sqlite

import (
	"context"
	"database/sql"

	"github.com/boddenberg/finance-dashboard-bfa-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// import_files
// ============================================================

func (s *Store) CreateFile(ctx context.Context, f *domain.ImportFile) error {
	ctx, span := tracer.Start(ctx, "SQLite.CreateFile")
	defer span.End()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO import_files (id, user_id, storage_path, original_name, content_type, size_bytes, ledger_type, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.UserID, f.StoragePath, f.OriginalName, f.ContentType, f.Size, string(f.Ledger), formatTime(f.CreatedAt))
	return mapError(err)
}

func (s *Store) GetFile(ctx context.Context, userID, fileID string) (*domain.ImportFile, error) {
	ctx, span := tracer.Start(ctx, "SQLite.GetFile")
	defer span.End()

	var (
		f                 domain.ImportFile
		ledger, createdAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, storage_path, original_name, content_type, size_bytes, ledger_type, created_at
		 FROM import_files WHERE id = ? AND user_id = ?`, fileID, userID).
		Scan(&f.ID, &f.UserID, &f.StoragePath, &f.OriginalName, &f.ContentType, &f.Size, &ledger, &createdAt)
	if err != nil {
		return nil, notFound(err, "import file", fileID)
	}
	f.Ledger = domain.Ledger(ledger)
	f.CreatedAt = parseTime(createdAt)
	return &f, nil
}

// ============================================================
// import_batches
// ============================================================

// batchDates returns the nullable date range columns of b.
func batchDates(b *domain.ImportBatch) (from, to any) {
	if b.DateFrom != nil {
		from = formatDate(*b.DateFrom)
	}
	if b.DateTo != nil {
		to = formatDate(*b.DateTo)
	}
	return from, to
}

func (s *Store) CreateBatch(ctx context.Context, b *domain.ImportBatch) error {
	ctx, span := tracer.Start(ctx, "SQLite.CreateBatch")
	defer span.End()

	from, to := batchDates(b)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO import_batches (id, user_id, file_id, ledger_type, source_type, status, total_incoming,
		 total_outgoing, row_count, date_from, date_to, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.UserID, b.FileID, string(b.Ledger), string(b.SourceType), string(b.Status),
		b.TotalIncoming, b.TotalOutgoing, b.RowCount, from, to,
		formatTime(b.CreatedAt), formatTime(b.UpdatedAt))
	return mapError(err)
}

func (s *Store) GetBatch(ctx context.Context, userID, batchID string) (*domain.ImportBatch, error) {
	ctx, span := tracer.Start(ctx, "SQLite.GetBatch")
	defer span.End()
	span.SetAttributes(attribute.String("batch.id", batchID))

	var (
		b                      domain.ImportBatch
		ledger, source, status string
		from, to               sql.NullString
		createdAt, updatedAt   string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, file_id, ledger_type, source_type, status, total_incoming, total_outgoing,
		 row_count, date_from, date_to, created_at, updated_at
		 FROM import_batches WHERE id = ? AND user_id = ?`, batchID, userID).
		Scan(&b.ID, &b.UserID, &b.FileID, &ledger, &source, &status, &b.TotalIncoming, &b.TotalOutgoing,
			&b.RowCount, &from, &to, &createdAt, &updatedAt)
	if err != nil {
		return nil, notFound(err, "import batch", batchID)
	}
	b.Ledger = domain.Ledger(ledger)
	b.SourceType = domain.SourceType(source)
	b.Status = domain.BatchStatus(status)
	if from.Valid {
		t := parseDate(from.String)
		b.DateFrom = &t
	}
	if to.Valid {
		t := parseDate(to.String)
		b.DateTo = &t
	}
	b.CreatedAt = parseTime(createdAt)
	b.UpdatedAt = parseTime(updatedAt)
	return &b, nil
}

func (s *Store) UpdateBatch(ctx context.Context, b *domain.ImportBatch) error {
	ctx, span := tracer.Start(ctx, "SQLite.UpdateBatch")
	defer span.End()
	span.SetAttributes(attribute.String("batch.id", b.ID), attribute.String("batch.status", string(b.Status)))

	from, to := batchDates(b)
	res, err := s.db.ExecContext(ctx,
		`UPDATE import_batches SET status = ?, total_incoming = ?, total_outgoing = ?, row_count = ?,
		 date_from = ?, date_to = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		string(b.Status), b.TotalIncoming, b.TotalOutgoing, b.RowCount, from, to,
		formatTime(b.UpdatedAt), b.ID, b.UserID)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(res, "import batch", b.ID)
}

// ============================================================
// import_rows
// ============================================================

const importRowColumns = `id, batch_id, user_id, line_number, date, raw_description, normalized_description,
	amount, direction, suggested_category_id, final_category_id, confidence, status,
	duplicate_of_transaction_id, imported_transaction_id`

// CreateRows inserts every row or none.
func (s *Store) CreateRows(ctx context.Context, rows []domain.ImportRow) error {
	ctx, span := tracer.Start(ctx, "SQLite.CreateRows")
	defer span.End()
	span.SetAttributes(attribute.Int("rows.count", len(rows)))

	if len(rows) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO import_rows (`+importRowColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for i := range rows {
		r := &rows[i]
		_, err := stmt.ExecContext(ctx, r.ID, r.BatchID, r.UserID, r.Line, formatDate(r.Date),
			r.RawDescription, r.Description, r.Amount, string(r.Direction), r.SuggestedCategoryID,
			r.FinalCategoryID, string(r.Confidence), string(r.Status), r.DuplicateOfID, r.ImportedTransactionID)
		if err != nil {
			return mapError(err)
		}
	}
	return tx.Commit()
}

func (s *Store) ListRows(ctx context.Context, batchID string) ([]domain.ImportRow, error) {
	ctx, span := tracer.Start(ctx, "SQLite.ListRows")
	defer span.End()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+importRowColumns+` FROM import_rows WHERE batch_id = ? ORDER BY line_number, id`, batchID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []domain.ImportRow
	for rows.Next() {
		var (
			r                                   domain.ImportRow
			date, direction, confidence, status string
		)
		if err := rows.Scan(&r.ID, &r.BatchID, &r.UserID, &r.Line, &date, &r.RawDescription, &r.Description,
			&r.Amount, &direction, &r.SuggestedCategoryID, &r.FinalCategoryID, &confidence, &status,
			&r.DuplicateOfID, &r.ImportedTransactionID); err != nil {
			return nil, err
		}
		r.Date = parseDate(date)
		r.Direction = domain.Direction(direction)
		r.Confidence = domain.Confidence(confidence)
		r.Status = domain.RowStatus(status)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) UpdateRow(ctx context.Context, r *domain.ImportRow) error {
	ctx, span := tracer.Start(ctx, "SQLite.UpdateRow")
	defer span.End()

	res, err := s.db.ExecContext(ctx,
		`UPDATE import_rows SET suggested_category_id = ?, final_category_id = ?, confidence = ?, status = ?,
		 duplicate_of_transaction_id = ?, imported_transaction_id = ? WHERE id = ? AND batch_id = ?`,
		r.SuggestedCategoryID, r.FinalCategoryID, string(r.Confidence), string(r.Status),
		r.DuplicateOfID, r.ImportedTransactionID, r.ID, r.BatchID)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(res, "import row", r.ID)
}
