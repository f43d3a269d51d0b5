// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations (Supabase, SQLite, Redis).
package port

import (
	"context"

	"github.com/boddenberg/finance-dashboard-bfa-go/internal/domain"
)

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}

// DebtStore persists debts.
type DebtStore interface {
	ListDebts(ctx context.Context, userID string, view domain.LedgerView) ([]domain.Debt, error)
	GetDebt(ctx context.Context, userID, debtID string) (*domain.Debt, error)
	CreateDebt(ctx context.Context, debt *domain.Debt) error
	UpdateDebt(ctx context.Context, debt *domain.Debt) error
	DeleteDebt(ctx context.Context, userID, debtID string) error
}

// TransactionStore persists committed transactions.
type TransactionStore interface {
	ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error)
	GetTransaction(ctx context.Context, userID, txID string) (*domain.Transaction, error)
	CreateTransactions(ctx context.Context, txs []domain.Transaction) error
	UpdateTransaction(ctx context.Context, tx *domain.Transaction) error
	DeleteTransaction(ctx context.Context, userID, txID string) error
	// DeleteTransactionsByBatch removes everything an import commit created.
	DeleteTransactionsByBatch(ctx context.Context, userID, batchID string) (int, error)
}

// RuleStore persists categorization rules.
type RuleStore interface {
	ListRules(ctx context.Context, userID string, view domain.LedgerView) ([]domain.CategorizationRule, error)
	GetRule(ctx context.Context, userID, ruleID string) (*domain.CategorizationRule, error)
	CreateRule(ctx context.Context, rule *domain.CategorizationRule) error
	UpdateRule(ctx context.Context, rule *domain.CategorizationRule) error
	DeleteRule(ctx context.Context, userID, ruleID string) error
}

// ImportStore persists uploaded files, import batches and their rows.
type ImportStore interface {
	CreateFile(ctx context.Context, file *domain.ImportFile) error
	GetFile(ctx context.Context, userID, fileID string) (*domain.ImportFile, error)

	CreateBatch(ctx context.Context, batch *domain.ImportBatch) error
	GetBatch(ctx context.Context, userID, batchID string) (*domain.ImportBatch, error)
	UpdateBatch(ctx context.Context, batch *domain.ImportBatch) error

	CreateRows(ctx context.Context, rows []domain.ImportRow) error
	ListRows(ctx context.Context, batchID string) ([]domain.ImportRow, error)
	UpdateRow(ctx context.Context, row *domain.ImportRow) error
}

// FileStorage keeps the raw bytes of uploaded statements.
type FileStorage interface {
	Put(ctx context.Context, path, contentType string, data []byte) error
	Get(ctx context.Context, path string) ([]byte, error)
}

// BudgetStore persists category budgets.
type BudgetStore interface {
	ListBudgets(ctx context.Context, userID string, view domain.LedgerView) ([]domain.Budget, error)
	GetBudget(ctx context.Context, userID, budgetID string) (*domain.Budget, error)
	CreateBudget(ctx context.Context, budget *domain.Budget) error
	UpdateBudget(ctx context.Context, budget *domain.Budget) error
}

// RecurrenceStore persists recurring bills.
type RecurrenceStore interface {
	ListRecurrences(ctx context.Context, userID string, view domain.LedgerView) ([]domain.Recurrence, error)
	CreateRecurrence(ctx context.Context, rec *domain.Recurrence) error
}

// Authenticator verifies a user's credentials against the identity provider.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*domain.Principal, error)
}

// Store bundles every persistence port; both backends implement it.
type Store interface {
	DebtStore
	TransactionStore
	RuleStore
	ImportStore
	BudgetStore
	RecurrenceStore
}
