package service

import (
	"context"
	"fmt"
	"time"

	"github.com/boddenberg/finance-dashboard-bfa-go/internal/domain"
	"github.com/boddenberg/finance-dashboard-bfa-go/internal/port"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// TransactionService manages the income/expense ledger.
type TransactionService struct {
	store  port.TransactionStore
	logger *zap.Logger
}

func NewTransactionService(store port.TransactionStore, logger *zap.Logger) *TransactionService {
	return &TransactionService{store: store, logger: logger}
}

func (s *TransactionService) List(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "TransactionService.List")
	defer span.End()
	span.SetAttributes(attribute.String("ledger.view", string(filter.View)))

	if !filter.To.IsZero() && filter.From.After(filter.To) {
		return nil, &domain.ErrValidation{Field: "from", Message: "must not be after to"}
	}
	return s.store.ListTransactions(ctx, filter)
}

func (s *TransactionService) Create(ctx context.Context, userID string, in *domain.TransactionInput) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "TransactionService.Create")
	defer span.End()

	date, err := in.Validate()
	if err != nil {
		return nil, err
	}

	tx := domain.Transaction{
		ID:          newID(),
		UserID:      userID,
		Description: in.Description,
		Amount:      in.Amount,
		Type:        in.Type,
		Status:      in.Status,
		Date:        date,
		CategoryID:  in.CategoryID,
		Ledger:      in.Ledger,
		ProjectID:   in.ProjectID,
		ClientID:    in.ClientID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.CreateTransactions(ctx, []domain.Transaction{tx}); err != nil {
		s.logger.Error("create transaction failed", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("create transaction: %w", err)
	}
	return &tx, nil
}

func (s *TransactionService) Update(ctx context.Context, userID, txID string, in *domain.TransactionInput) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "TransactionService.Update")
	defer span.End()

	date, err := in.Validate()
	if err != nil {
		return nil, err
	}

	tx, err := s.store.GetTransaction(ctx, userID, txID)
	if err != nil {
		return nil, err
	}
	tx.Description = in.Description
	tx.Amount = in.Amount
	tx.Type = in.Type
	tx.Status = in.Status
	tx.Date = date
	tx.CategoryID = in.CategoryID
	tx.Ledger = in.Ledger
	tx.ProjectID = in.ProjectID
	tx.ClientID = in.ClientID

	if err := s.store.UpdateTransaction(ctx, tx); err != nil {
		s.logger.Error("update transaction failed", zap.String("tx_id", txID), zap.Error(err))
		return nil, fmt.Errorf("update transaction: %w", err)
	}
	return tx, nil
}

func (s *TransactionService) Delete(ctx context.Context, userID, txID string) error {
	ctx, span := tracer.Start(ctx, "TransactionService.Delete")
	defer span.End()

	if err := s.store.DeleteTransaction(ctx, userID, txID); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

// MarkPaid settles an open transaction. An empty date means today.
func (s *TransactionService) MarkPaid(ctx context.Context, userID, txID, date string) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "TransactionService.MarkPaid")
	defer span.End()

	paidOn := today(time.Now())
	if date != "" {
		d, err := time.Parse(domain.DateLayout, date)
		if err != nil {
			return nil, &domain.ErrValidation{Field: "date", Message: "must be YYYY-MM-DD"}
		}
		paidOn = d
	}

	tx, err := s.store.GetTransaction(ctx, userID, txID)
	if err != nil {
		return nil, err
	}
	if tx.Status == domain.TxPaid {
		return tx, nil
	}
	tx.Status = domain.TxPaid
	tx.Date = paidOn

	if err := s.store.UpdateTransaction(ctx, tx); err != nil {
		s.logger.Error("mark paid failed", zap.String("tx_id", txID), zap.Error(err))
		return nil, fmt.Errorf("mark transaction paid: %w", err)
	}
	return tx, nil
}
