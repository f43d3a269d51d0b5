package service

import (
	"context"
	"fmt"
	"time"

	"github.com/boddenberg/finance-dashboard-bfa-go/internal/domain"
	"github.com/boddenberg/finance-dashboard-bfa-go/internal/infra/observability"
	"github.com/boddenberg/finance-dashboard-bfa-go/internal/port"

	"go.uber.org/zap"
)

const (
	// ReconcileDays is how far a bank date may sit from the pending entry.
	ReconcileDays = 5
	// ReconcileTolerance is the accepted amount difference in cents.
	ReconcileTolerance domain.Cents = 5
)

// ReconcileService imports already-parsed bank transactions, settling
// matching pending entries instead of duplicating them.
type ReconcileService struct {
	store   port.TransactionStore
	metrics *observability.Metrics
	logger  *zap.Logger
}

func NewReconcileService(store port.TransactionStore, metrics *observability.Metrics, logger *zap.Logger) *ReconcileService {
	return &ReconcileService{store: store, metrics: metrics, logger: logger}
}

type parsedItem struct {
	in   domain.ParsedTransaction
	date time.Time
}

func (s *ReconcileService) Import(ctx context.Context, userID string, ledger domain.Ledger, items []domain.ParsedTransaction) (*domain.ReconcileResult, error) {
	ctx, span := tracer.Start(ctx, "ReconcileService.Import")
	defer span.End()

	if !ledger.Valid() {
		return nil, &domain.ErrValidation{Field: "mode", Message: "must be PF or PJ"}
	}
	if len(items) == 0 {
		return &domain.ReconcileResult{Inserted: []string{}, Reconciled: []string{}}, nil
	}

	parsed := make([]parsedItem, len(items))
	from, to := time.Time{}, time.Time{}
	for i, it := range items {
		d, err := time.Parse(domain.DateLayout, it.Date)
		if err != nil {
			return nil, &domain.ErrValidation{Field: fmt.Sprintf("transactions[%d].date", i), Message: "must be YYYY-MM-DD"}
		}
		if it.Amount <= 0 {
			return nil, &domain.ErrValidation{Field: fmt.Sprintf("transactions[%d].amount", i), Message: "must be positive"}
		}
		if !it.Type.Valid() {
			return nil, &domain.ErrValidation{Field: fmt.Sprintf("transactions[%d].type", i), Message: "must be INCOME or EXPENSE"}
		}
		parsed[i] = parsedItem{in: it, date: d}
		if from.IsZero() || d.Before(from) {
			from = d
		}
		if d.After(to) {
			to = d
		}
	}

	pending, err := s.store.ListTransactions(ctx, domain.TransactionFilter{
		UserID: userID,
		View:   domain.ViewOf(ledger),
		From:   from.AddDate(0, 0, -ReconcileDays),
		To:     to.AddDate(0, 0, ReconcileDays),
		Status: domain.TxPending,
	})
	if err != nil {
		return nil, fmt.Errorf("list pending transactions: %w", err)
	}

	res := &domain.ReconcileResult{Inserted: []string{}, Reconciled: []string{}}
	claimed := make(map[string]bool, len(pending))
	var inserts []domain.Transaction
	now := time.Now().UTC()

	for _, p := range parsed {
		match := bestMatch(pending, claimed, p)
		if match != nil {
			claimed[match.ID] = true
			match.Status = domain.TxPaid
			match.Date = p.date
			if err := s.store.UpdateTransaction(ctx, match); err != nil {
				s.logger.Error("reconcile update failed", zap.String("tx_id", match.ID), zap.Error(err))
				return nil, fmt.Errorf("reconcile transaction: %w", err)
			}
			res.Reconciled = append(res.Reconciled, match.ID)
			continue
		}
		tx := domain.Transaction{
			ID:          newID(),
			UserID:      userID,
			Description: p.in.Description,
			Amount:      p.in.Amount,
			Type:        p.in.Type,
			Status:      domain.TxPaid,
			Date:        p.date,
			CategoryID:  p.in.CategoryID,
			Ledger:      ledger,
			CreatedAt:   now,
		}
		inserts = append(inserts, tx)
		res.Inserted = append(res.Inserted, tx.ID)
	}

	if err := s.store.CreateTransactions(ctx, inserts); err != nil {
		s.logger.Error("reconcile insert failed", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("insert transactions: %w", err)
	}

	s.metrics.AddReconciliations("reconciled", len(res.Reconciled))
	s.metrics.AddReconciliations("inserted", len(res.Inserted))
	return res, nil
}

// bestMatch picks the closest unclaimed pending entry by date, then amount.
func bestMatch(pending []domain.Transaction, claimed map[string]bool, p parsedItem) *domain.Transaction {
	var (
		best     *domain.Transaction
		bestDays int
		bestDiff domain.Cents
	)
	for i := range pending {
		tx := &pending[i]
		if claimed[tx.ID] || tx.Type != p.in.Type {
			continue
		}
		days := daysApart(tx.Date, p.date)
		diff := (tx.Amount - p.in.Amount).Abs()
		if days > ReconcileDays || diff > ReconcileTolerance {
			continue
		}
		if best == nil || days < bestDays || (days == bestDays && diff < bestDiff) {
			best, bestDays, bestDiff = tx, days, diff
		}
	}
	return best
}
