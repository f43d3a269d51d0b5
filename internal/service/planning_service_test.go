package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/boddenberg/finance-dashboard-bfa-go/internal/domain"
	"github.com/boddenberg/finance-dashboard-bfa-go/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOccurrences_Installments(t *testing.T) {
	rec := &domain.Recurrence{
		ID: "rc", UserID: "u1", Description: "Notebook", Amount: 1000, Type: domain.TxExpense,
		Ledger: domain.LedgerPF, DayOfMonth: 31, Installments: 3, StartDate: date("2026-01-15"),
	}

	txs := service.Occurrences(rec)

	require.Len(t, txs, 3)
	assert.Equal(t, []domain.Cents{333, 333, 334}, []domain.Cents{txs[0].Amount, txs[1].Amount, txs[2].Amount})
	assert.Equal(t, date("2026-01-31"), txs[0].Date)
	assert.Equal(t, date("2026-02-28"), txs[1].Date)
	assert.Equal(t, date("2026-03-31"), txs[2].Date)
	assert.Equal(t, "Notebook (1/3)", txs[0].Description)
	for _, tx := range txs {
		assert.Equal(t, domain.TxScheduled, tx.Status)
		assert.Equal(t, "rc", tx.RecurrenceID)
	}
}

func TestOccurrences_OpenEnded(t *testing.T) {
	rec := &domain.Recurrence{
		ID: "rc", UserID: "u1", Description: "Academia", Amount: 9990, Type: domain.TxExpense,
		Ledger: domain.LedgerPF, DayOfMonth: 10, StartDate: date("2026-01-20"),
	}

	txs := service.Occurrences(rec)

	require.Len(t, txs, service.OpenEndedHorizon)
	assert.Equal(t, date("2026-02-10"), txs[0].Date)
	assert.Equal(t, date("2027-01-10"), txs[11].Date)
	assert.Equal(t, "Academia", txs[0].Description)
	assert.Equal(t, domain.Cents(9990), txs[11].Amount)
}

func TestRecurringService_CreatePersistsSchedule(t *testing.T) {
	store := newMemStore()
	svc := service.NewRecurringService(store, store, zap.NewNop())

	rec, txs, err := svc.Create(context.Background(), "u1", &domain.RecurrenceInput{
		Description: "Contador", Amount: 60000, Type: domain.TxExpense, Ledger: domain.LedgerPJ,
		DayOfMonth: 5, Installments: 2, StartDate: "2026-03-01",
	})
	require.NoError(t, err)
	assert.Len(t, txs, 2)
	assert.Len(t, store.recs, 1)
	assert.Len(t, store.txs, 2)
	assert.Equal(t, rec.ID, store.txs[0].RecurrenceID)
	assert.Equal(t, domain.Cents(30000), store.txs[1].Amount)
}

func TestBudgetService_Defaults(t *testing.T) {
	svc := service.NewBudgetService(newMemStore(), zap.NewNop())

	b, err := svc.Create(context.Background(), "u1", &domain.BudgetInput{CategoryID: "food", Ledger: domain.LedgerPF, MonthlyLimit: 80000})
	require.NoError(t, err)
	assert.InDelta(t, 80.0, b.AlertThresholdPct, 0.001)
	assert.True(t, b.Active)

	off := false
	b, err = svc.Update(context.Background(), "u1", b.ID, &domain.BudgetInput{CategoryID: "food", Ledger: domain.LedgerPF, MonthlyLimit: 90000, Active: &off})
	require.NoError(t, err)
	assert.False(t, b.Active)
	assert.Equal(t, domain.Cents(90000), b.MonthlyLimit)
}

func TestAlertService_List(t *testing.T) {
	store := newMemStore()
	store.budgets["b-food"] = domain.Budget{ID: "b-food", UserID: "u1", CategoryID: "food", Ledger: domain.LedgerPF,
		MonthlyLimit: 10000, AlertThresholdPct: 80, Active: true}
	store.budgets["b-fun"] = domain.Budget{ID: "b-fun", UserID: "u1", CategoryID: "fun", Ledger: domain.LedgerPF,
		MonthlyLimit: 5000, AlertThresholdPct: 80, Active: true}
	store.txs = []domain.Transaction{
		{ID: "food", UserID: "u1", Description: "Mercado", Amount: 8500, Type: domain.TxExpense,
			Status: domain.TxPaid, Date: date("2026-03-03"), CategoryID: "food", Ledger: domain.LedgerPF},
		{ID: "fun", UserID: "u1", Description: "Show", Amount: 6000, Type: domain.TxExpense,
			Status: domain.TxPaid, Date: date("2026-03-04"), CategoryID: "fun", Ledger: domain.LedgerPF},
		{ID: "rent", UserID: "u1", Description: "Aluguel", Amount: 200000, Type: domain.TxExpense,
			Status: domain.TxPending, Date: date("2026-03-15"), CategoryID: "rent", Ledger: domain.LedgerPF},
		{ID: "gym", UserID: "u1", Description: "Academia", Amount: 9990, Type: domain.TxExpense,
			Status: domain.TxScheduled, Date: date("2026-03-25"), Ledger: domain.LedgerPF},
		{ID: "later", UserID: "u1", Description: "IPVA", Amount: 90000, Type: domain.TxExpense,
			Status: domain.TxScheduled, Date: date("2026-04-10"), Ledger: domain.LedgerPF},
	}
	store.debts["d1"] = domain.Debt{ID: "d1", UserID: "u1", Name: "Cartão", Balance: 50000,
		Status: domain.DebtLate, Ledger: domain.LedgerPF}

	svc := service.NewAlertService(store, store, store, zap.NewNop())
	alerts, err := svc.List(context.Background(), "u1", domain.ViewConsolidated, time.Date(2026, 3, 20, 15, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	kinds := make([]domain.AlertKind, len(alerts))
	for i, a := range alerts {
		kinds[i] = a.Kind
	}
	assert.Equal(t, []domain.AlertKind{
		domain.AlertBudgetExceeded,
		domain.AlertOverdue,
		domain.AlertBudgetWarning,
		domain.AlertDebtLate,
		domain.AlertDueSoon,
	}, kinds)
	assert.Equal(t, "rent", alerts[1].ReferenceID)
	assert.Equal(t, "2026-03-25", alerts[4].Date)

	pj, err := svc.List(context.Background(), "u1", domain.ViewPJ, time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, pj)
}

func TestSummaryService_Month(t *testing.T) {
	store := newMemStore()
	store.txs = []domain.Transaction{
		{ID: "1", UserID: "u1", Amount: 500000, Type: domain.TxIncome, Status: domain.TxPaid, Date: date("2026-03-05"), Ledger: domain.LedgerPF},
		{ID: "2", UserID: "u1", Amount: 80000, Type: domain.TxIncome, Status: domain.TxPending, Date: date("2026-03-20"), Ledger: domain.LedgerPJ},
		{ID: "3", UserID: "u1", Amount: 12000, Type: domain.TxExpense, Status: domain.TxPaid, Date: date("2026-03-06"), CategoryID: "food", Ledger: domain.LedgerPF},
		{ID: "4", UserID: "u1", Amount: 3000, Type: domain.TxExpense, Status: domain.TxPaid, Date: date("2026-03-07"), CategoryID: "food", Ledger: domain.LedgerPF},
		{ID: "5", UserID: "u1", Amount: 200000, Type: domain.TxExpense, Status: domain.TxPending, Date: date("2026-03-10"), CategoryID: "rent", Ledger: domain.LedgerPF},
		{ID: "6", UserID: "u1", Amount: 999, Type: domain.TxExpense, Status: domain.TxPaid, Date: date("2026-04-01"), Ledger: domain.LedgerPF},
	}
	store.debts["d1"] = domain.Debt{ID: "d1", UserID: "u1", Balance: 70000, Ledger: domain.LedgerPF}
	store.debts["d2"] = domain.Debt{ID: "d2", UserID: "u1", Balance: 30000, Ledger: domain.LedgerPJ}

	svc := service.NewSummaryService(store, store, zap.NewNop())
	month, err := service.ParseMonth("2026-03", time.Now())
	require.NoError(t, err)

	sum, err := svc.Month(context.Background(), "u1", domain.ViewConsolidated, month)
	require.NoError(t, err)
	assert.Equal(t, "2026-03", sum.Month)
	assert.Equal(t, domain.Cents(500000), sum.Income)
	assert.Equal(t, domain.Cents(15000), sum.Expenses)
	assert.Equal(t, domain.Cents(485000), sum.Net)
	assert.Equal(t, domain.Cents(80000), sum.PendingIncome)
	assert.Equal(t, domain.Cents(200000), sum.PendingExpenses)
	assert.Equal(t, 5, sum.TransactionCount)
	require.Len(t, sum.Categories, 2)
	assert.Equal(t, "rent", sum.Categories[0].CategoryID)
	assert.Equal(t, 2, sum.Categories[1].Count)
	assert.Equal(t, domain.Cents(100000), sum.TotalDebt)

	pf, err := svc.Month(context.Background(), "u1", domain.ViewPF, month)
	require.NoError(t, err)
	assert.Equal(t, domain.Cents(0), pf.PendingIncome)
	assert.Equal(t, domain.Cents(70000), pf.TotalDebt)

	_, err = service.ParseMonth("03/2026", time.Now())
	assert.Error(t, err)
}
