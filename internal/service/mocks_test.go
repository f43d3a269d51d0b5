package service_test

import (
	"context"
	"sort"
	"sync"

	"github.com/boddenberg/finance-dashboard-bfa-go/internal/domain"
	"github.com/boddenberg/finance-dashboard-bfa-go/internal/port"
)

// --- Mocks ---

// memStore is an in-memory port.Store + port.FileStorage.
type memStore struct {
	mu       sync.Mutex
	debts    map[string]domain.Debt
	txs      []domain.Transaction
	rules    map[string]domain.CategorizationRule
	files    map[string]domain.ImportFile
	batches  map[string]domain.ImportBatch
	rows     []domain.ImportRow
	budgets  map[string]domain.Budget
	recs     []domain.Recurrence
	blobs    map[string][]byte
	ruleList int

	failCreateRows bool
	failUpdateTx   error
	// failRowUpdate makes the n-th UpdateRow call (1-based) fail once.
	failRowUpdate int
	rowUpdates    int
}

var (
	_ port.Store       = (*memStore)(nil)
	_ port.FileStorage = (*memStore)(nil)
)

func newMemStore() *memStore {
	return &memStore{
		debts:   map[string]domain.Debt{},
		rules:   map[string]domain.CategorizationRule{},
		files:   map[string]domain.ImportFile{},
		batches: map[string]domain.ImportBatch{},
		budgets: map[string]domain.Budget{},
		blobs:   map[string][]byte{},
	}
}

func notFound(resource, id string) error {
	return &domain.ErrNotFound{Resource: resource, ID: id}
}

// debts

func (m *memStore) ListDebts(_ context.Context, userID string, view domain.LedgerView) ([]domain.Debt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Debt
	for _, d := range m.debts {
		if d.UserID == userID && view.Includes(d.Ledger) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) GetDebt(_ context.Context, userID, id string) (*domain.Debt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.debts[id]
	if !ok || d.UserID != userID {
		return nil, notFound("debt", id)
	}
	return &d, nil
}

func (m *memStore) CreateDebt(_ context.Context, d *domain.Debt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.debts[d.ID] = *d
	return nil
}

func (m *memStore) UpdateDebt(_ context.Context, d *domain.Debt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.debts[d.ID]; !ok {
		return notFound("debt", d.ID)
	}
	m.debts[d.ID] = *d
	return nil
}

func (m *memStore) DeleteDebt(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.debts[id]
	if !ok || d.UserID != userID {
		return notFound("debt", id)
	}
	delete(m.debts, id)
	return nil
}

// transactions

func (m *memStore) ListTransactions(_ context.Context, f domain.TransactionFilter) ([]domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Transaction
	for _, t := range m.txs {
		if t.UserID != f.UserID || !f.View.Includes(t.Ledger) {
			continue
		}
		if !f.From.IsZero() && t.Date.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && t.Date.After(f.To) {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.Type != "" && t.Type != f.Type {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (m *memStore) GetTransaction(_ context.Context, userID, id string) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.txs {
		if t.ID == id && t.UserID == userID {
			return &t, nil
		}
	}
	return nil, notFound("transaction", id)
}

func (m *memStore) CreateTransactions(_ context.Context, txs []domain.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txs = append(m.txs, txs...)
	return nil
}

func (m *memStore) UpdateTransaction(_ context.Context, tx *domain.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUpdateTx != nil {
		return m.failUpdateTx
	}
	for i := range m.txs {
		if m.txs[i].ID == tx.ID {
			m.txs[i] = *tx
			return nil
		}
	}
	return notFound("transaction", tx.ID)
}

func (m *memStore) DeleteTransaction(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.txs {
		if m.txs[i].ID == id && m.txs[i].UserID == userID {
			m.txs = append(m.txs[:i], m.txs[i+1:]...)
			return nil
		}
	}
	return notFound("transaction", id)
}

func (m *memStore) DeleteTransactionsByBatch(_ context.Context, userID, batchID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.txs[:0]
	deleted := 0
	for _, t := range m.txs {
		if t.UserID == userID && t.ImportBatchID == batchID {
			deleted++
			continue
		}
		kept = append(kept, t)
	}
	m.txs = kept
	return deleted, nil
}

// rules

func (m *memStore) ListRules(_ context.Context, userID string, view domain.LedgerView) ([]domain.CategorizationRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ruleList++
	var out []domain.CategorizationRule
	for _, r := range m.rules {
		if r.UserID == userID && view.Includes(r.Ledger) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) GetRule(_ context.Context, userID, id string) (*domain.CategorizationRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rules[id]
	if !ok || r.UserID != userID {
		return nil, notFound("rule", id)
	}
	return &r, nil
}

func (m *memStore) CreateRule(_ context.Context, r *domain.CategorizationRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules[r.ID] = *r
	return nil
}

func (m *memStore) UpdateRule(_ context.Context, r *domain.CategorizationRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules[r.ID] = *r
	return nil
}

func (m *memStore) DeleteRule(_ context.Context, _, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rules, id)
	return nil
}

// imports

func (m *memStore) CreateFile(_ context.Context, f *domain.ImportFile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[f.ID] = *f
	return nil
}

func (m *memStore) GetFile(_ context.Context, userID, id string) (*domain.ImportFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[id]
	if !ok || f.UserID != userID {
		return nil, notFound("import file", id)
	}
	return &f, nil
}

func (m *memStore) CreateBatch(_ context.Context, b *domain.ImportBatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches[b.ID] = *b
	return nil
}

func (m *memStore) GetBatch(_ context.Context, userID, id string) (*domain.ImportBatch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.batches[id]
	if !ok || b.UserID != userID {
		return nil, notFound("import batch", id)
	}
	return &b, nil
}

func (m *memStore) UpdateBatch(_ context.Context, b *domain.ImportBatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches[b.ID] = *b
	return nil
}

func (m *memStore) CreateRows(_ context.Context, rows []domain.ImportRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreateRows {
		return &domain.ErrExternalService{Service: "import_rows"}
	}
	m.rows = append(m.rows, rows...)
	return nil
}

func (m *memStore) ListRows(_ context.Context, batchID string) ([]domain.ImportRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ImportRow
	for _, r := range m.rows {
		if r.BatchID == batchID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Line < out[j].Line })
	return out, nil
}

func (m *memStore) UpdateRow(_ context.Context, row *domain.ImportRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rowUpdates++
	if m.failRowUpdate > 0 && m.rowUpdates == m.failRowUpdate {
		return &domain.ErrExternalService{Service: "import_rows"}
	}
	for i := range m.rows {
		if m.rows[i].ID == row.ID {
			m.rows[i] = *row
			return nil
		}
	}
	return notFound("import row", row.ID)
}

// planning

func (m *memStore) ListBudgets(_ context.Context, userID string, view domain.LedgerView) ([]domain.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Budget
	for _, b := range m.budgets {
		if b.UserID == userID && view.Includes(b.Ledger) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) GetBudget(_ context.Context, userID, id string) (*domain.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.budgets[id]
	if !ok || b.UserID != userID {
		return nil, notFound("budget", id)
	}
	return &b, nil
}

func (m *memStore) CreateBudget(_ context.Context, b *domain.Budget) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.budgets[b.ID] = *b
	return nil
}

func (m *memStore) UpdateBudget(_ context.Context, b *domain.Budget) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.budgets[b.ID] = *b
	return nil
}

func (m *memStore) ListRecurrences(_ context.Context, userID string, view domain.LedgerView) ([]domain.Recurrence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Recurrence
	for _, r := range m.recs {
		if r.UserID == userID && view.Includes(r.Ledger) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) CreateRecurrence(_ context.Context, r *domain.Recurrence) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = append(m.recs, *r)
	return nil
}

// file storage

func (m *memStore) Put(_ context.Context, path, _ string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[path] = data
	return nil
}

func (m *memStore) Get(_ context.Context, path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.blobs[path]
	if !ok {
		return nil, notFound("file", path)
	}
	return b, nil
}

type mockAuthenticator struct {
	principal *domain.Principal
	err       error
	calls     int
}

func (m *mockAuthenticator) Authenticate(_ context.Context, _, _ string) (*domain.Principal, error) {
	m.calls++
	return m.principal, m.err
}
