package supabase

import (
	"context"
	"time"

	"github.com/boddenberg/finance-dashboard-bfa-go/internal/domain"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// debtRow maps the debts table.
type debtRow struct {
	ID             string           `json:"id"`
	UserID         string           `json:"user_id"`
	Name           string           `json:"name"`
	Balance        decimal.Decimal  `json:"balance"`
	InterestRate   float64          `json:"interest_rate"`
	MinimumPayment *decimal.Decimal `json:"minimum_payment"`
	DueDay         *int             `json:"due_day"`
	Status         string           `json:"status"`
	Mode           string           `json:"mode"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

func (r debtRow) toDomain() domain.Debt {
	d := domain.Debt{
		ID:           r.ID,
		UserID:       r.UserID,
		Name:         r.Name,
		Balance:      fromMajor(r.Balance),
		InterestRate: r.InterestRate,
		Status:       domain.DebtStatus(r.Status),
		Ledger:       domain.Ledger(r.Mode),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if r.MinimumPayment != nil {
		d.MinimumPayment = fromMajor(*r.MinimumPayment)
	}
	if r.DueDay != nil {
		d.DueDay = *r.DueDay
	}
	return d
}

func debtToRow(d *domain.Debt) debtRow {
	r := debtRow{
		ID:           d.ID,
		UserID:       d.UserID,
		Name:         d.Name,
		Balance:      toMajor(d.Balance),
		InterestRate: d.InterestRate,
		Status:       string(d.Status),
		Mode:         string(d.Ledger),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
	if d.MinimumPayment > 0 {
		m := toMajor(d.MinimumPayment)
		r.MinimumPayment = &m
	}
	if d.DueDay > 0 {
		day := d.DueDay
		r.DueDay = &day
	}
	return r
}

// ListDebts returns the user's debts in the view, oldest first.
func (c *Client) ListDebts(ctx context.Context, userID string, view domain.LedgerView) ([]domain.Debt, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListDebts")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID), attribute.String("ledger.view", string(view)))

	var debts []domain.Debt
	err := c.call(ctx, "debts", func() error {
		body, err := c.doGet(ctx, from("debts").eq("user_id", userID).view("mode", view).order("created_at.asc").String())
		if err != nil {
			return err
		}
		rows, err := decodeRows[debtRow](body)
		if err != nil {
			return err
		}
		debts = make([]domain.Debt, 0, len(rows))
		for _, r := range rows {
			debts = append(debts, r.toDomain())
		}
		return nil
	})
	return debts, err
}

func (c *Client) GetDebt(ctx context.Context, userID, debtID string) (*domain.Debt, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetDebt")
	defer span.End()

	var debt *domain.Debt
	err := c.call(ctx, "debts", func() error {
		body, err := c.doGet(ctx, from("debts").eq("id", debtID).eq("user_id", userID).String())
		if err != nil {
			return err
		}
		row, err := decodeOne[debtRow](body, "debt", debtID)
		if err != nil {
			return err
		}
		d := row.toDomain()
		debt = &d
		return nil
	})
	return debt, err
}

func (c *Client) CreateDebt(ctx context.Context, debt *domain.Debt) error {
	ctx, span := tracer.Start(ctx, "Supabase.CreateDebt")
	defer span.End()

	return c.call(ctx, "debts", func() error {
		_, err := c.doPost(ctx, "debts", debtToRow(debt))
		return err
	})
}

func (c *Client) UpdateDebt(ctx context.Context, debt *domain.Debt) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateDebt")
	defer span.End()

	return c.call(ctx, "debts", func() error {
		body, err := c.doPatch(ctx, from("debts").eq("id", debt.ID).eq("user_id", debt.UserID).String(), debtToRow(debt))
		if err != nil {
			return err
		}
		_, err = decodeOne[debtRow](body, "debt", debt.ID)
		return err
	})
}

func (c *Client) DeleteDebt(ctx context.Context, userID, debtID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteDebt")
	defer span.End()

	return c.call(ctx, "debts", func() error {
		body, err := c.doDelete(ctx, from("debts").eq("id", debtID).eq("user_id", userID).String())
		if err != nil {
			return err
		}
		_, err = decodeOne[debtRow](body, "debt", debtID)
		return err
	})
}
