package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/boddenberg/finance-dashboard-bfa-go/internal/domain"
	"github.com/boddenberg/finance-dashboard-bfa-go/internal/infra/observability"
	"github.com/boddenberg/finance-dashboard-bfa-go/internal/service"
	"github.com/boddenberg/finance-dashboard-bfa-go/internal/simulation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDebtService_CreateAndSimulate(t *testing.T) {
	store := newMemStore()
	svc := service.NewDebtService(store, observability.NewMetrics(), zap.NewNop())
	ctx := context.Background()

	card, err := svc.Create(ctx, "u1", &domain.DebtInput{Name: "Cartão", Balance: 100000, InterestRate: 8, Ledger: domain.LedgerPF})
	require.NoError(t, err)
	assert.Equal(t, domain.DebtNormal, card.Status)
	_, err = svc.Create(ctx, "u1", &domain.DebtInput{Name: "Giro", Balance: 300000, InterestRate: 2, Ledger: domain.LedgerPJ})
	require.NoError(t, err)

	resp, err := svc.Simulate(ctx, "u1", domain.ViewConsolidated, &service.SimulationRequest{
		Params:    simulation.Params{MonthlyPayment: 50000, PayMinimums: true},
		Scenarios: true,
	})
	require.NoError(t, err)
	assert.False(t, resp.Insufficient)
	assert.Len(t, resp.Plan, 2)
	assert.Len(t, resp.Scenarios, 3)

	onlyPF, err := svc.Simulate(ctx, "u1", domain.ViewPF, &service.SimulationRequest{
		Params: simulation.Params{Strategy: simulation.Snowball, MonthlyPayment: 50000},
	})
	require.NoError(t, err)
	require.Len(t, onlyPF.Plan, 1)
	assert.Equal(t, card.ID, onlyPF.Plan[0].DebtID)
	assert.Empty(t, onlyPF.Scenarios)

	selected, err := svc.Simulate(ctx, "u1", domain.ViewConsolidated, &service.SimulationRequest{
		Params:  simulation.Params{MonthlyPayment: 50000},
		DebtIDs: []string{card.ID},
	})
	require.NoError(t, err)
	assert.Len(t, selected.Plan, 1)

	var verr *domain.ErrValidation
	_, err = svc.Simulate(ctx, "u1", domain.ViewPF, &service.SimulationRequest{Params: simulation.Params{Strategy: "RANDOM"}})
	assert.True(t, errors.As(err, &verr))
}

func TestDebtService_Validation(t *testing.T) {
	svc := service.NewDebtService(newMemStore(), observability.NewMetrics(), zap.NewNop())
	ctx := context.Background()
	var verr *domain.ErrValidation

	cases := []domain.DebtInput{
		{Balance: 100, Ledger: domain.LedgerPF},
		{Name: "x", Balance: -1, Ledger: domain.LedgerPF},
		{Name: "x", InterestRate: -1, Ledger: domain.LedgerPF},
		{Name: "x", Ledger: domain.Ledger("CONSOLIDATED")},
	}
	for _, in := range cases {
		_, err := svc.Create(ctx, "u1", &in)
		assert.True(t, errors.As(err, &verr), "input %+v", in)
	}

	var nf *domain.ErrNotFound
	_, err := svc.Update(ctx, "u1", "missing", &domain.DebtInput{Name: "x", Ledger: domain.LedgerPF})
	assert.True(t, errors.As(err, &nf))
}

func TestTransactionService_MarkPaid(t *testing.T) {
	store := newMemStore()
	svc := service.NewTransactionService(store, zap.NewNop())
	ctx := context.Background()

	tx, err := svc.Create(ctx, "u1", &domain.TransactionInput{
		Description: "Aluguel", Amount: 250000, Type: domain.TxExpense, Date: "2026-03-05", Ledger: domain.LedgerPF,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TxPending, tx.Status)

	paid, err := svc.MarkPaid(ctx, "u1", tx.ID, "2026-03-07")
	require.NoError(t, err)
	assert.Equal(t, domain.TxPaid, paid.Status)
	assert.Equal(t, date("2026-03-07"), paid.Date)
	assert.Equal(t, domain.TxPaid, store.txs[0].Status)

	var verr *domain.ErrValidation
	_, err = svc.MarkPaid(ctx, "u1", tx.ID, "07/03/2026")
	assert.True(t, errors.As(err, &verr))

	_, err = svc.List(ctx, domain.TransactionFilter{UserID: "u1", From: date("2026-04-01"), To: date("2026-03-01")})
	assert.True(t, errors.As(err, &verr))
}

func TestTransactionService_UpdateReturnsPersistenceError(t *testing.T) {
	store := newMemStore()
	svc := service.NewTransactionService(store, zap.NewNop())
	ctx := context.Background()

	tx, err := svc.Create(ctx, "u1", &domain.TransactionInput{
		Description: "Luz", Amount: 15000, Type: domain.TxExpense, Date: "2026-03-10", Ledger: domain.LedgerPF,
	})
	require.NoError(t, err)

	store.failUpdateTx = &domain.ErrExternalService{Service: "supabase", Err: errors.New("boom")}
	_, err = svc.MarkPaid(ctx, "u1", tx.ID, "")

	var ext *domain.ErrExternalService
	assert.True(t, errors.As(err, &ext))
}

func TestReconcileService_Import(t *testing.T) {
	store := newMemStore()
	store.txs = []domain.Transaction{
		{ID: "p1", UserID: "u1", Description: "Internet", Amount: 10000, Type: domain.TxExpense,
			Status: domain.TxPending, Date: date("2026-03-10"), Ledger: domain.LedgerPF},
		{ID: "p2", UserID: "u1", Description: "Internet 2", Amount: 10000, Type: domain.TxExpense,
			Status: domain.TxPending, Date: date("2026-03-12"), Ledger: domain.LedgerPF},
		{ID: "p3", UserID: "u1", Description: "Cliente", Amount: 50000, Type: domain.TxIncome,
			Status: domain.TxPending, Date: date("2026-03-10"), Ledger: domain.LedgerPF},
	}
	svc := service.NewReconcileService(store, observability.NewMetrics(), zap.NewNop())

	res, err := svc.Import(context.Background(), "u1", domain.LedgerPF, []domain.ParsedTransaction{
		{Description: "NET", Amount: 10003, Type: domain.TxExpense, Date: "2026-03-11"},
		{Description: "NET", Amount: 10000, Type: domain.TxExpense, Date: "2026-03-11"},
		{Description: "NET", Amount: 10000, Type: domain.TxExpense, Date: "2026-03-11"},
		{Description: "PIX", Amount: 9999, Type: domain.TxIncome, Date: "2026-03-10"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, res.Reconciled)
	assert.Len(t, res.Inserted, 2)

	assert.Equal(t, domain.TxPaid, store.txs[0].Status)
	assert.Equal(t, date("2026-03-11"), store.txs[0].Date)
	assert.Equal(t, domain.TxPending, store.txs[2].Status)
	require.Len(t, store.txs, 5)
	assert.Equal(t, domain.TxPaid, store.txs[4].Status)

	var verr *domain.ErrValidation
	_, err = svc.Import(context.Background(), "u1", domain.LedgerPF, []domain.ParsedTransaction{
		{Description: "x", Amount: 1, Type: domain.TxIncome, Date: "11/03/2026"},
	})
	assert.True(t, errors.As(err, &verr))
}

func TestRuleService_CacheInvalidation(t *testing.T) {
	store := newMemStore()
	svc := newRuleService(store)
	ctx := context.Background()

	_, err := svc.Create(ctx, "u1", &domain.RuleInput{Ledger: domain.LedgerPF, Pattern: "ifood", CategoryID: "food"})
	require.NoError(t, err)

	rules, err := svc.ForLedger(ctx, "u1", domain.LedgerPF)
	require.NoError(t, err)
	assert.Len(t, rules, 1)
	_, err = svc.ForLedger(ctx, "u1", domain.LedgerPF)
	require.NoError(t, err)
	assert.Equal(t, 1, store.ruleList)

	off := false
	r2, err := svc.Create(ctx, "u1", &domain.RuleInput{Ledger: domain.LedgerPF, Pattern: "uber", CategoryID: "transport", Active: &off})
	require.NoError(t, err)
	assert.False(t, r2.Active)

	rules, err = svc.ForLedger(ctx, "u1", domain.LedgerPF)
	require.NoError(t, err)
	assert.Len(t, rules, 2)
	assert.Equal(t, 2, store.ruleList)

	require.NoError(t, svc.Delete(ctx, "u1", r2.ID))
	rules, err = svc.ForLedger(ctx, "u1", domain.LedgerPF)
	require.NoError(t, err)
	assert.Len(t, rules, 1)
}
