package supabase

import (
	"context"
	"time"

	"github.com/boddenberg/finance-dashboard-bfa-go/internal/domain"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// transactionRow maps the transactions table.
type transactionRow struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	Type          string          `json:"type"`
	Status        string          `json:"status"`
	Date          string          `json:"date"`
	CategoryID    *string         `json:"category_id"`
	Mode          string          `json:"mode"`
	ProjectID     *string         `json:"project_id"`
	ClientID      *string         `json:"client_id"`
	RecurrenceID  *string         `json:"recurrence_id"`
	ImportBatchID *string         `json:"import_batch_id"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (r transactionRow) toDomain() domain.Transaction {
	return domain.Transaction{
		ID:            r.ID,
		UserID:        r.UserID,
		Description:   r.Description,
		Amount:        fromMajor(r.Amount),
		Type:          domain.TransactionType(r.Type),
		Status:        domain.TransactionStatus(r.Status),
		Date:          parseDate(r.Date),
		CategoryID:    deref(r.CategoryID),
		Ledger:        domain.Ledger(r.Mode),
		ProjectID:     deref(r.ProjectID),
		ClientID:      deref(r.ClientID),
		RecurrenceID:  deref(r.RecurrenceID),
		ImportBatchID: deref(r.ImportBatchID),
		CreatedAt:     r.CreatedAt,
	}
}

func transactionToRow(t *domain.Transaction) transactionRow {
	return transactionRow{
		ID:            t.ID,
		UserID:        t.UserID,
		Description:   t.Description,
		Amount:        toMajor(t.Amount),
		Type:          string(t.Type),
		Status:        string(t.Status),
		Date:          formatDate(t.Date),
		CategoryID:    nullable(t.CategoryID),
		Mode:          string(t.Ledger),
		ProjectID:     nullable(t.ProjectID),
		ClientID:      nullable(t.ClientID),
		RecurrenceID:  nullable(t.RecurrenceID),
		ImportBatchID: nullable(t.ImportBatchID),
		CreatedAt:     t.CreatedAt,
	}
}

// ListTransactions returns the transactions matching f, newest first.
func (c *Client) ListTransactions(ctx context.Context, f domain.TransactionFilter) ([]domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListTransactions")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", f.UserID), attribute.String("ledger.view", string(f.View)))

	q := from("transactions").eq("user_id", f.UserID).view("mode", f.View)
	if !f.From.IsZero() {
		q.gte("date", formatDate(f.From))
	}
	if !f.To.IsZero() {
		q.lte("date", formatDate(f.To))
	}
	if f.Status != "" {
		q.eq("status", string(f.Status))
	}
	if f.Type != "" {
		q.eq("type", string(f.Type))
	}
	q.order("date.desc")

	var txs []domain.Transaction
	err := c.call(ctx, "transactions", func() error {
		body, err := c.doGet(ctx, q.String())
		if err != nil {
			return err
		}
		rows, err := decodeRows[transactionRow](body)
		if err != nil {
			return err
		}
		txs = make([]domain.Transaction, 0, len(rows))
		for _, r := range rows {
			txs = append(txs, r.toDomain())
		}
		return nil
	})
	return txs, err
}

func (c *Client) GetTransaction(ctx context.Context, userID, txID string) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetTransaction")
	defer span.End()

	var tx *domain.Transaction
	err := c.call(ctx, "transactions", func() error {
		body, err := c.doGet(ctx, from("transactions").eq("id", txID).eq("user_id", userID).String())
		if err != nil {
			return err
		}
		row, err := decodeOne[transactionRow](body, "transaction", txID)
		if err != nil {
			return err
		}
		t := row.toDomain()
		tx = &t
		return nil
	})
	return tx, err
}

// CreateTransactions inserts all rows in one request.
func (c *Client) CreateTransactions(ctx context.Context, txs []domain.Transaction) error {
	ctx, span := tracer.Start(ctx, "Supabase.CreateTransactions")
	defer span.End()
	span.SetAttributes(attribute.Int("transactions.count", len(txs)))

	if len(txs) == 0 {
		return nil
	}
	rows := make([]transactionRow, len(txs))
	for i := range txs {
		rows[i] = transactionToRow(&txs[i])
	}
	return c.call(ctx, "transactions", func() error {
		_, err := c.doPost(ctx, "transactions", rows)
		return err
	})
}

func (c *Client) UpdateTransaction(ctx context.Context, tx *domain.Transaction) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateTransaction")
	defer span.End()

	return c.call(ctx, "transactions", func() error {
		body, err := c.doPatch(ctx, from("transactions").eq("id", tx.ID).eq("user_id", tx.UserID).String(), transactionToRow(tx))
		if err != nil {
			return err
		}
		_, err = decodeOne[transactionRow](body, "transaction", tx.ID)
		return err
	})
}

func (c *Client) DeleteTransaction(ctx context.Context, userID, txID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteTransaction")
	defer span.End()

	return c.call(ctx, "transactions", func() error {
		body, err := c.doDelete(ctx, from("transactions").eq("id", txID).eq("user_id", userID).String())
		if err != nil {
			return err
		}
		_, err = decodeOne[transactionRow](body, "transaction", txID)
		return err
	})
}

// DeleteTransactionsByBatch removes the transactions an import commit created.
func (c *Client) DeleteTransactionsByBatch(ctx context.Context, userID, batchID string) (int, error) {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteTransactionsByBatch")
	defer span.End()
	span.SetAttributes(attribute.String("batch.id", batchID))

	var n int
	err := c.call(ctx, "transactions", func() error {
		body, err := c.doDelete(ctx, from("transactions").eq("user_id", userID).eq("import_batch_id", batchID).String())
		if err != nil {
			return err
		}
		rows, err := decodeRows[transactionRow](body)
		n = len(rows)
		return err
	})
	return n, err
}
