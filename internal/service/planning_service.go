package service

import (
	"context"
	"fmt"
	"time"

	"github.com/boddenberg/finance-dashboard-bfa-go/internal/domain"
	"github.com/boddenberg/finance-dashboard-bfa-go/internal/port"

	"go.uber.org/zap"
)

// OpenEndedHorizon is how many monthly occurrences an open-ended
// recurrence generates up front.
const OpenEndedHorizon = 12

// ============================================================
// Budgets
// ============================================================

type BudgetService struct {
	store  port.BudgetStore
	logger *zap.Logger
}

func NewBudgetService(store port.BudgetStore, logger *zap.Logger) *BudgetService {
	return &BudgetService{store: store, logger: logger}
}

func (s *BudgetService) List(ctx context.Context, userID string, view domain.LedgerView) ([]domain.Budget, error) {
	ctx, span := tracer.Start(ctx, "BudgetService.List")
	defer span.End()

	return s.store.ListBudgets(ctx, userID, view)
}

func (s *BudgetService) Create(ctx context.Context, userID string, in *domain.BudgetInput) (*domain.Budget, error) {
	ctx, span := tracer.Start(ctx, "BudgetService.Create")
	defer span.End()

	if err := in.Validate(); err != nil {
		return nil, err
	}
	b := &domain.Budget{
		ID:                newID(),
		UserID:            userID,
		CategoryID:        in.CategoryID,
		Ledger:            in.Ledger,
		MonthlyLimit:      in.MonthlyLimit,
		AlertThresholdPct: in.AlertThresholdPct,
		Active:            in.Active == nil || *in.Active,
		CreatedAt:         time.Now().UTC(),
	}
	if err := s.store.CreateBudget(ctx, b); err != nil {
		s.logger.Error("create budget failed", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("create budget: %w", err)
	}
	return b, nil
}

func (s *BudgetService) Update(ctx context.Context, userID, budgetID string, in *domain.BudgetInput) (*domain.Budget, error) {
	ctx, span := tracer.Start(ctx, "BudgetService.Update")
	defer span.End()

	if err := in.Validate(); err != nil {
		return nil, err
	}
	b, err := s.store.GetBudget(ctx, userID, budgetID)
	if err != nil {
		return nil, err
	}
	b.CategoryID = in.CategoryID
	b.Ledger = in.Ledger
	b.MonthlyLimit = in.MonthlyLimit
	b.AlertThresholdPct = in.AlertThresholdPct
	if in.Active != nil {
		b.Active = *in.Active
	}
	if err := s.store.UpdateBudget(ctx, b); err != nil {
		s.logger.Error("update budget failed", zap.String("budget_id", budgetID), zap.Error(err))
		return nil, fmt.Errorf("update budget: %w", err)
	}
	return b, nil
}

// ============================================================
// Recurring bills
// ============================================================

type RecurringService struct {
	store  port.RecurrenceStore
	txs    port.TransactionStore
	logger *zap.Logger
}

func NewRecurringService(store port.RecurrenceStore, txs port.TransactionStore, logger *zap.Logger) *RecurringService {
	return &RecurringService{store: store, txs: txs, logger: logger}
}

func (s *RecurringService) List(ctx context.Context, userID string, view domain.LedgerView) ([]domain.Recurrence, error) {
	ctx, span := tracer.Start(ctx, "RecurringService.List")
	defer span.End()

	return s.store.ListRecurrences(ctx, userID, view)
}

// Create persists the recurrence and its SCHEDULED occurrences.
func (s *RecurringService) Create(ctx context.Context, userID string, in *domain.RecurrenceInput) (*domain.Recurrence, []domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "RecurringService.Create")
	defer span.End()

	start, err := in.Validate()
	if err != nil {
		return nil, nil, err
	}

	rec := &domain.Recurrence{
		ID:           newID(),
		UserID:       userID,
		Description:  in.Description,
		Amount:       in.Amount,
		Type:         in.Type,
		CategoryID:   in.CategoryID,
		Ledger:       in.Ledger,
		DayOfMonth:   in.DayOfMonth,
		Installments: in.Installments,
		StartDate:    start,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.CreateRecurrence(ctx, rec); err != nil {
		s.logger.Error("create recurrence failed", zap.String("user_id", userID), zap.Error(err))
		return nil, nil, fmt.Errorf("create recurrence: %w", err)
	}

	txs := Occurrences(rec)
	if err := s.txs.CreateTransactions(ctx, txs); err != nil {
		s.logger.Error("create scheduled transactions failed", zap.String("recurrence_id", rec.ID), zap.Error(err))
		return nil, nil, fmt.Errorf("create scheduled transactions: %w", err)
	}
	return rec, txs, nil
}

// Occurrences expands a recurrence into scheduled transactions. Installment
// plans split Amount with the remainder on the last part; open-ended ones
// repeat Amount for OpenEndedHorizon months.
func Occurrences(rec *domain.Recurrence) []domain.Transaction {
	var amounts []domain.Cents
	n := rec.Installments
	if n > 0 {
		amounts = domain.SplitInstallments(rec.Amount, n)
	} else {
		n = OpenEndedHorizon
		amounts = make([]domain.Cents, n)
		for i := range amounts {
			amounts[i] = rec.Amount
		}
	}

	first := rec.StartDate
	if first.Day() > rec.DayOfMonth {
		first = time.Date(first.Year(), first.Month()+1, 1, 0, 0, 0, 0, time.UTC)
	}

	out := make([]domain.Transaction, n)
	for i := range out {
		desc := rec.Description
		if rec.Installments > 0 {
			desc = fmt.Sprintf("%s (%d/%d)", rec.Description, i+1, n)
		}
		out[i] = domain.Transaction{
			ID:           newID(),
			UserID:       rec.UserID,
			Description:  desc,
			Amount:       amounts[i],
			Type:         rec.Type,
			Status:       domain.TxScheduled,
			Date:         dayInMonth(first.Year(), first.Month()+time.Month(i), rec.DayOfMonth),
			CategoryID:   rec.CategoryID,
			Ledger:       rec.Ledger,
			RecurrenceID: rec.ID,
			CreatedAt:    rec.CreatedAt,
		}
	}
	return out
}

// dayInMonth clamps day to the month's length (31 → 28/29/30).
func dayInMonth(year int, month time.Month, day int) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	return first.AddDate(0, 0, min(day, last)-1)
}
