package supabase

import (
	"context"
	"time"

	"github.com/boddenberg/finance-dashboard-bfa-go/internal/domain"

	"github.com/shopspring/decimal"
)

// ============================================================
// budgets
// ============================================================

type budgetRow struct {
	ID                string          `json:"id"`
	UserID            string          `json:"user_id"`
	CategoryID        string          `json:"category_id"`
	Mode              string          `json:"mode"`
	MonthlyLimit      decimal.Decimal `json:"monthly_limit"`
	AlertThresholdPct float64         `json:"alert_threshold_pct"`
	IsActive          bool            `json:"is_active"`
	CreatedAt         time.Time       `json:"created_at"`
}

func (r budgetRow) toDomain() domain.Budget {
	return domain.Budget{
		ID:                r.ID,
		UserID:            r.UserID,
		CategoryID:        r.CategoryID,
		Ledger:            domain.Ledger(r.Mode),
		MonthlyLimit:      fromMajor(r.MonthlyLimit),
		AlertThresholdPct: r.AlertThresholdPct,
		Active:            r.IsActive,
		CreatedAt:         r.CreatedAt,
	}
}

func budgetToRow(b *domain.Budget) budgetRow {
	return budgetRow{
		ID:                b.ID,
		UserID:            b.UserID,
		CategoryID:        b.CategoryID,
		Mode:              string(b.Ledger),
		MonthlyLimit:      toMajor(b.MonthlyLimit),
		AlertThresholdPct: b.AlertThresholdPct,
		IsActive:          b.Active,
		CreatedAt:         b.CreatedAt,
	}
}

func (c *Client) ListBudgets(ctx context.Context, userID string, view domain.LedgerView) ([]domain.Budget, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListBudgets")
	defer span.End()

	var budgets []domain.Budget
	err := c.call(ctx, "budgets", func() error {
		body, err := c.doGet(ctx, from("budgets").eq("user_id", userID).view("mode", view).order("created_at.asc").String())
		if err != nil {
			return err
		}
		rows, err := decodeRows[budgetRow](body)
		if err != nil {
			return err
		}
		budgets = make([]domain.Budget, 0, len(rows))
		for _, r := range rows {
			budgets = append(budgets, r.toDomain())
		}
		return nil
	})
	return budgets, err
}

func (c *Client) GetBudget(ctx context.Context, userID, budgetID string) (*domain.Budget, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetBudget")
	defer span.End()

	var budget *domain.Budget
	err := c.call(ctx, "budgets", func() error {
		body, err := c.doGet(ctx, from("budgets").eq("id", budgetID).eq("user_id", userID).String())
		if err != nil {
			return err
		}
		row, err := decodeOne[budgetRow](body, "budget", budgetID)
		if err != nil {
			return err
		}
		b := row.toDomain()
		budget = &b
		return nil
	})
	return budget, err
}

func (c *Client) CreateBudget(ctx context.Context, b *domain.Budget) error {
	ctx, span := tracer.Start(ctx, "Supabase.CreateBudget")
	defer span.End()

	return c.call(ctx, "budgets", func() error {
		_, err := c.doPost(ctx, "budgets", budgetToRow(b))
		return err
	})
}

func (c *Client) UpdateBudget(ctx context.Context, b *domain.Budget) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateBudget")
	defer span.End()

	return c.call(ctx, "budgets", func() error {
		body, err := c.doPatch(ctx, from("budgets").eq("id", b.ID).eq("user_id", b.UserID).String(), budgetToRow(b))
		if err != nil {
			return err
		}
		_, err = decodeOne[budgetRow](body, "budget", b.ID)
		return err
	})
}

// ============================================================
// recurrences
// ============================================================

type recurrenceRow struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"`
	Type         string          `json:"type"`
	CategoryID   *string         `json:"category_id"`
	Mode         string          `json:"mode"`
	DayOfMonth   int             `json:"day_of_month"`
	Installments int             `json:"installments"`
	StartDate    string          `json:"start_date"`
	CreatedAt    time.Time       `json:"created_at"`
}

func (r recurrenceRow) toDomain() domain.Recurrence {
	return domain.Recurrence{
		ID:           r.ID,
		UserID:       r.UserID,
		Description:  r.Description,
		Amount:       fromMajor(r.Amount),
		Type:         domain.TransactionType(r.Type),
		CategoryID:   deref(r.CategoryID),
		Ledger:       domain.Ledger(r.Mode),
		DayOfMonth:   r.DayOfMonth,
		Installments: r.Installments,
		StartDate:    parseDate(r.StartDate),
		CreatedAt:    r.CreatedAt,
	}
}

func (c *Client) ListRecurrences(ctx context.Context, userID string, view domain.LedgerView) ([]domain.Recurrence, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListRecurrences")
	defer span.End()

	var recs []domain.Recurrence
	err := c.call(ctx, "recurrences", func() error {
		body, err := c.doGet(ctx, from("recurrences").eq("user_id", userID).view("mode", view).order("created_at.asc").String())
		if err != nil {
			return err
		}
		rows, err := decodeRows[recurrenceRow](body)
		if err != nil {
			return err
		}
		recs = make([]domain.Recurrence, 0, len(rows))
		for _, r := range rows {
			recs = append(recs, r.toDomain())
		}
		return nil
	})
	return recs, err
}

func (c *Client) CreateRecurrence(ctx context.Context, rec *domain.Recurrence) error {
	ctx, span := tracer.Start(ctx, "Supabase.CreateRecurrence")
	defer span.End()

	row := recurrenceRow{
		ID:           rec.ID,
		UserID:       rec.UserID,
		Description:  rec.Description,
		Amount:       toMajor(rec.Amount),
		Type:         string(rec.Type),
		CategoryID:   nullable(rec.CategoryID),
		Mode:         string(rec.Ledger),
		DayOfMonth:   rec.DayOfMonth,
		Installments: rec.Installments,
		StartDate:    formatDate(rec.StartDate),
		CreatedAt:    rec.CreatedAt,
	}
	return c.call(ctx, "recurrences", func() error {
		_, err := c.doPost(ctx, "recurrences", row)
		return err
	})
}
