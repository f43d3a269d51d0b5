package supabase

import (
	"context"
	"time"

	"github.com/boddenberg/finance-dashboard-bfa-go/internal/domain"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// import_files
// ============================================================

type fileRow struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	StoragePath  string    `json:"storage_path"`
	OriginalName string    `json:"original_name"`
	ContentType  string    `json:"content_type"`
	Size         int64     `json:"size_bytes"`
	LedgerType   string    `json:"ledger_type"`
	CreatedAt    time.Time `json:"created_at"`
}

func (r fileRow) toDomain() domain.ImportFile {
	return domain.ImportFile{
		ID:           r.ID,
		UserID:       r.UserID,
		StoragePath:  r.StoragePath,
		OriginalName: r.OriginalName,
		ContentType:  r.ContentType,
		Size:         r.Size,
		Ledger:       domain.Ledger(r.LedgerType),
		CreatedAt:    r.CreatedAt,
	}
}

func (c *Client) CreateFile(ctx context.Context, f *domain.ImportFile) error {
	ctx, span := tracer.Start(ctx, "Supabase.CreateFile")
	defer span.End()

	row := fileRow{
		ID:           f.ID,
		UserID:       f.UserID,
		StoragePath:  f.StoragePath,
		OriginalName: f.OriginalName,
		ContentType:  f.ContentType,
		Size:         f.Size,
		LedgerType:   string(f.Ledger),
		CreatedAt:    f.CreatedAt,
	}
	return c.call(ctx, "import_files", func() error {
		_, err := c.doPost(ctx, "import_files", row)
		return err
	})
}

func (c *Client) GetFile(ctx context.Context, userID, fileID string) (*domain.ImportFile, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetFile")
	defer span.End()

	var file *domain.ImportFile
	err := c.call(ctx, "import_files", func() error {
		body, err := c.doGet(ctx, from("import_files").eq("id", fileID).eq("user_id", userID).String())
		if err != nil {
			return err
		}
		row, err := decodeOne[fileRow](body, "import file", fileID)
		if err != nil {
			return err
		}
		f := row.toDomain()
		file = &f
		return nil
	})
	return file, err
}

// ============================================================
// import_batches
// ============================================================

type batchRow struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	FileID        string          `json:"file_id"`
	LedgerType    string          `json:"ledger_type"`
	SourceType    string          `json:"source_type"`
	Status        string          `json:"status"`
	TotalIncoming decimal.Decimal `json:"total_incoming"`
	TotalOutgoing decimal.Decimal `json:"total_outgoing"`
	RowCount      int             `json:"row_count"`
	DateFrom      *string         `json:"date_from"`
	DateTo        *string         `json:"date_to"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (r batchRow) toDomain() domain.ImportBatch {
	b := domain.ImportBatch{
		ID:            r.ID,
		UserID:        r.UserID,
		FileID:        r.FileID,
		Ledger:        domain.Ledger(r.LedgerType),
		SourceType:    domain.SourceType(r.SourceType),
		Status:        domain.BatchStatus(r.Status),
		TotalIncoming: fromMajor(r.TotalIncoming),
		TotalOutgoing: fromMajor(r.TotalOutgoing),
		RowCount:      r.RowCount,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if r.DateFrom != nil {
		t := parseDate(*r.DateFrom)
		b.DateFrom = &t
	}
	if r.DateTo != nil {
		t := parseDate(*r.DateTo)
		b.DateTo = &t
	}
	return b
}

func batchToRow(b *domain.ImportBatch) batchRow {
	r := batchRow{
		ID:            b.ID,
		UserID:        b.UserID,
		FileID:        b.FileID,
		LedgerType:    string(b.Ledger),
		SourceType:    string(b.SourceType),
		Status:        string(b.Status),
		TotalIncoming: toMajor(b.TotalIncoming),
		TotalOutgoing: toMajor(b.TotalOutgoing),
		RowCount:      b.RowCount,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
	if b.DateFrom != nil {
		r.DateFrom = nullable(formatDate(*b.DateFrom))
	}
	if b.DateTo != nil {
		r.DateTo = nullable(formatDate(*b.DateTo))
	}
	return r
}

func (c *Client) CreateBatch(ctx context.Context, b *domain.ImportBatch) error {
	ctx, span := tracer.Start(ctx, "Supabase.CreateBatch")
	defer span.End()

	return c.call(ctx, "import_batches", func() error {
		_, err := c.doPost(ctx, "import_batches", batchToRow(b))
		return err
	})
}

func (c *Client) GetBatch(ctx context.Context, userID, batchID string) (*domain.ImportBatch, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetBatch")
	defer span.End()
	span.SetAttributes(attribute.String("batch.id", batchID))

	var batch *domain.ImportBatch
	err := c.call(ctx, "import_batches", func() error {
		body, err := c.doGet(ctx, from("import_batches").eq("id", batchID).eq("user_id", userID).String())
		if err != nil {
			return err
		}
		row, err := decodeOne[batchRow](body, "import batch", batchID)
		if err != nil {
			return err
		}
		b := row.toDomain()
		batch = &b
		return nil
	})
	return batch, err
}

func (c *Client) UpdateBatch(ctx context.Context, b *domain.ImportBatch) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateBatch")
	defer span.End()
	span.SetAttributes(attribute.String("batch.id", b.ID), attribute.String("batch.status", string(b.Status)))

	return c.call(ctx, "import_batches", func() error {
		body, err := c.doPatch(ctx, from("import_batches").eq("id", b.ID).eq("user_id", b.UserID).String(), batchToRow(b))
		if err != nil {
			return err
		}
		_, err = decodeOne[batchRow](body, "import batch", b.ID)
		return err
	})
}

// ============================================================
// import_rows
// ============================================================

type importRowRow struct {
	ID                    string          `json:"id"`
	BatchID               string          `json:"batch_id"`
	UserID                string          `json:"user_id"`
	LineNumber            int             `json:"line_number"`
	Date                  string          `json:"date"`
	RawDescription        string          `json:"raw_description"`
	NormalizedDescription string          `json:"normalized_description"`
	Amount                decimal.Decimal `json:"amount"`
	Direction             string          `json:"direction"`
	SuggestedCategoryID   *string         `json:"suggested_category_id"`
	FinalCategoryID       *string         `json:"final_category_id"`
	Confidence            string          `json:"confidence"`
	Status                string          `json:"status"`
	DuplicateOfID         *string         `json:"duplicate_of_transaction_id"`
	ImportedTransactionID *string         `json:"imported_transaction_id"`
}

func (r importRowRow) toDomain() domain.ImportRow {
	return domain.ImportRow{
		ID:                    r.ID,
		BatchID:               r.BatchID,
		UserID:                r.UserID,
		Line:                  r.LineNumber,
		Date:                  parseDate(r.Date),
		RawDescription:        r.RawDescription,
		Description:           r.NormalizedDescription,
		Amount:                fromMajor(r.Amount),
		Direction:             domain.Direction(r.Direction),
		SuggestedCategoryID:   deref(r.SuggestedCategoryID),
		FinalCategoryID:       deref(r.FinalCategoryID),
		Confidence:            domain.Confidence(r.Confidence),
		Status:                domain.RowStatus(r.Status),
		DuplicateOfID:         deref(r.DuplicateOfID),
		ImportedTransactionID: deref(r.ImportedTransactionID),
	}
}

func importRowToRow(r *domain.ImportRow) importRowRow {
	return importRowRow{
		ID:                    r.ID,
		BatchID:               r.BatchID,
		UserID:                r.UserID,
		LineNumber:            r.Line,
		Date:                  formatDate(r.Date),
		RawDescription:        r.RawDescription,
		NormalizedDescription: r.Description,
		Amount:                toMajor(r.Amount),
		Direction:             string(r.Direction),
		SuggestedCategoryID:   nullable(r.SuggestedCategoryID),
		FinalCategoryID:       nullable(r.FinalCategoryID),
		Confidence:            string(r.Confidence),
		Status:                string(r.Status),
		DuplicateOfID:         nullable(r.DuplicateOfID),
		ImportedTransactionID: nullable(r.ImportedTransactionID),
	}
}

// CreateRows inserts all rows of a batch in one request.
func (c *Client) CreateRows(ctx context.Context, rows []domain.ImportRow) error {
	ctx, span := tracer.Start(ctx, "Supabase.CreateRows")
	defer span.End()
	span.SetAttributes(attribute.Int("rows.count", len(rows)))

	if len(rows) == 0 {
		return nil
	}
	payload := make([]importRowRow, len(rows))
	for i := range rows {
		payload[i] = importRowToRow(&rows[i])
	}
	return c.call(ctx, "import_rows", func() error {
		_, err := c.doPost(ctx, "import_rows", payload)
		return err
	})
}

// ListRows returns a batch's rows in statement order.
func (c *Client) ListRows(ctx context.Context, batchID string) ([]domain.ImportRow, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListRows")
	defer span.End()

	var rows []domain.ImportRow
	err := c.call(ctx, "import_rows", func() error {
		body, err := c.doGet(ctx, from("import_rows").eq("batch_id", batchID).order("line_number.asc").String())
		if err != nil {
			return err
		}
		decoded, err := decodeRows[importRowRow](body)
		if err != nil {
			return err
		}
		rows = make([]domain.ImportRow, 0, len(decoded))
		for _, r := range decoded {
			rows = append(rows, r.toDomain())
		}
		return nil
	})
	return rows, err
}

func (c *Client) UpdateRow(ctx context.Context, row *domain.ImportRow) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateRow")
	defer span.End()

	return c.call(ctx, "import_rows", func() error {
		body, err := c.doPatch(ctx, from("import_rows").eq("id", row.ID).eq("batch_id", row.BatchID).String(), importRowToRow(row))
		if err != nil {
			return err
		}
		_, err = decodeOne[importRowRow](body, "import row", row.ID)
		return err
	})
}
