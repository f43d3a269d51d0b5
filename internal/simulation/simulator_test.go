package simulation_test

import (
	"testing"

	"github.com/boddenberg/finance-dashboard-bfa-go/internal/domain"
	"github.com/boddenberg/finance-dashboard-bfa-go/internal/simulation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulate_SingleDebtMinimums(t *testing.T) {
	debts := []domain.Debt{
		{ID: "d1", Name: "Cartão", Balance: 100000, InterestRate: 2, MinimumPayment: 5000},
	}

	res := simulation.Simulate(debts, simulation.Params{
		Strategy:       simulation.Avalanche,
		MonthlyPayment: 5000,
		PayMinimums:    true,
	})

	require.GreaterOrEqual(t, len(res.Timeline), 3)
	// 100000 +2000 -5000 = 97000; +1940 -5000 = 93940; +1879 -5000 = 90819
	assert.Equal(t, domain.Cents(97000), res.Timeline[0].RemainingDebt)
	assert.Equal(t, domain.Cents(93940), res.Timeline[1].RemainingDebt)
	assert.Equal(t, domain.Cents(90819), res.Timeline[2].RemainingDebt)
	assert.Equal(t, domain.Cents(2000+1940+1879), res.Timeline[2].AccumulatedInterest)

	require.Len(t, res.Month1Plan, 1)
	assert.Equal(t, simulation.AllocationMinimum, res.Month1Plan[0].Kind)
	assert.Equal(t, domain.Cents(5000), res.Month1Plan[0].Amount)
	assert.False(t, res.Insufficient)
	assert.Equal(t, domain.Cents(0), res.Remaining)
}

func TestSimulate_EmptyDebts(t *testing.T) {
	res := simulation.Simulate(nil, simulation.Params{MonthlyPayment: 1000})

	assert.Equal(t, 0, res.Months)
	assert.Empty(t, res.Timeline)
	assert.Empty(t, res.Month1Plan)
	assert.False(t, res.Insufficient)
}

func TestSimulate_InsufficientPaymentHitsCap(t *testing.T) {
	debts := []domain.Debt{{ID: "d1", Name: "Cheque especial", Balance: 100000, InterestRate: 10}}

	res := simulation.Simulate(debts, simulation.Params{MonthlyPayment: 5000, PayMinimums: true})

	assert.Equal(t, simulation.MaxMonths, res.Months)
	assert.True(t, res.Insufficient)
	assert.Positive(t, int64(res.Remaining))
}

func TestSimulate_ZeroPayment(t *testing.T) {
	debts := []domain.Debt{{ID: "d1", Name: "Loan", Balance: 1000, InterestRate: 0}}

	res := simulation.Simulate(debts, simulation.Params{})

	assert.Equal(t, simulation.MaxMonths, res.Months)
	assert.True(t, res.Insufficient)
	assert.Equal(t, domain.Cents(0), res.TotalPaid)
}

func TestSimulate_Conservation(t *testing.T) {
	debts := []domain.Debt{
		{ID: "a", Name: "A", Balance: 250000, InterestRate: 3.5, MinimumPayment: 7500},
		{ID: "b", Name: "B", Balance: 40000, InterestRate: 8, MinimumPayment: 2000},
		{ID: "c", Name: "C", Balance: 90000, InterestRate: 1.2, Status: domain.DebtRenegotiated},
	}
	cases := []simulation.Params{
		{Strategy: simulation.Avalanche, MonthlyPayment: 30000, PayMinimums: true},
		{Strategy: simulation.Snowball, MonthlyPayment: 30000, PayMinimums: true, ExtraOneTime: 50000},
		{Strategy: simulation.Avalanche, MonthlyPayment: 12000, PauseRenegotiated: true},
		{Strategy: simulation.Snowball, MonthlyPayment: 1000, PayMinimums: true},
	}

	var initial domain.Cents
	for _, d := range debts {
		initial += d.Balance
	}

	for _, p := range cases {
		res := simulation.Simulate(debts, p)
		assert.Equal(t, initial+res.TotalInterest, res.TotalPaid+res.Remaining,
			"strategy=%s payment=%d", p.Strategy, p.MonthlyPayment)
		assert.LessOrEqual(t, res.Months, simulation.MaxMonths)
	}
}

func TestSimulate_DoesNotMutateInput(t *testing.T) {
	debts := []domain.Debt{
		{ID: "a", Name: "A", Balance: 1000, InterestRate: 1},
		{ID: "b", Name: "B", Balance: 500, InterestRate: 5},
	}

	simulation.Simulate(debts, simulation.Params{Strategy: simulation.Snowball, MonthlyPayment: 2000})

	assert.Equal(t, "a", debts[0].ID)
	assert.Equal(t, domain.Cents(1000), debts[0].Balance)
	assert.Equal(t, domain.Cents(500), debts[1].Balance)
}

func TestSimulate_AvalancheNeverCostsMoreInterest(t *testing.T) {
	debts := []domain.Debt{
		{ID: "big", Name: "Financiamento", Balance: 100000, InterestRate: 5},
		{ID: "small", Name: "Loja", Balance: 20000, InterestRate: 1},
	}
	p := simulation.Params{MonthlyPayment: 20000}

	p.Strategy = simulation.Avalanche
	avalanche := simulation.Simulate(debts, p)
	p.Strategy = simulation.Snowball
	snowball := simulation.Simulate(debts, p)

	require.False(t, avalanche.Insufficient)
	require.False(t, snowball.Insufficient)
	assert.LessOrEqual(t, avalanche.TotalInterest, snowball.TotalInterest)

	// Snowball clears the small debt first.
	require.NotEmpty(t, snowball.Month1Plan)
	assert.Equal(t, "small", snowball.Month1Plan[0].DebtID)
	assert.Equal(t, "big", avalanche.Month1Plan[0].DebtID)
}

func TestSimulate_ExtraOneTimeOnlyInFirstMonth(t *testing.T) {
	debts := []domain.Debt{{ID: "d", Name: "D", Balance: 100000}}

	res := simulation.Simulate(debts, simulation.Params{MonthlyPayment: 10000, ExtraOneTime: 40000})

	require.GreaterOrEqual(t, len(res.Timeline), 2)
	assert.Equal(t, domain.Cents(50000), res.Timeline[0].RemainingDebt)
	assert.Equal(t, domain.Cents(40000), res.Timeline[1].RemainingDebt)
	assert.Equal(t, 6, res.Months)
}

func TestSimulate_PauseRenegotiatedSkipsSurplus(t *testing.T) {
	debts := []domain.Debt{
		{ID: "r", Name: "Renegociada", Balance: 10000, InterestRate: 9, Status: domain.DebtRenegotiated},
		{ID: "n", Name: "Normal", Balance: 10000, InterestRate: 1},
	}

	res := simulation.Simulate(debts, simulation.Params{
		Strategy:          simulation.Avalanche,
		MonthlyPayment:    5000,
		PauseRenegotiated: true,
	})

	for _, a := range res.Month1Plan {
		assert.NotEqual(t, "r", a.DebtID, "renegotiated debt must not receive surplus")
	}
}

func TestSimulate_CustomPaymentSchedule(t *testing.T) {
	debts := []domain.Debt{{ID: "d", Name: "D", Balance: 10000}}

	res := simulation.Simulate(debts, simulation.Params{
		MonthlyPayment: 3000,
		CustomPayments: map[string]map[int]domain.Cents{"d": {1: 1000}},
	})

	require.Len(t, res.Month1Plan, 2)
	assert.Equal(t, simulation.AllocationMinimum, res.Month1Plan[0].Kind)
	assert.Equal(t, domain.Cents(1000), res.Month1Plan[0].Amount)
	assert.Equal(t, simulation.AllocationExtra, res.Month1Plan[1].Kind)
	assert.Equal(t, domain.Cents(2000), res.Month1Plan[1].Amount)
}

func TestDefaultMinimum(t *testing.T) {
	assert.Equal(t, domain.Cents(1000), simulation.DefaultMinimum(100000))
	assert.Equal(t, domain.Cents(1), simulation.DefaultMinimum(30))
	assert.Equal(t, domain.Cents(0), simulation.DefaultMinimum(0))
}

func TestPlanByDebt(t *testing.T) {
	debts := []domain.Debt{
		{ID: "a", Name: "A", Balance: 10000, InterestRate: 0, MinimumPayment: 1000},
		{ID: "b", Name: "B", Balance: 3000, InterestRate: 0, MinimumPayment: 500},
	}

	res := simulation.Simulate(debts, simulation.Params{
		Strategy:       simulation.Snowball,
		MonthlyPayment: 5000,
		PayMinimums:    true,
	})
	plans := simulation.PlanByDebt(debts, res)

	require.Len(t, plans, 2)
	// Snowball: B min 500, A min 1000, surplus 3500 -> B gets 2500, A gets 1000.
	assert.Equal(t, domain.Cents(3000), plans[1].Total)
	assert.Equal(t, domain.Cents(0), plans[1].RemainingAfter)
	assert.Equal(t, domain.Cents(1000), plans[0].Minimum)
	assert.Equal(t, domain.Cents(1000), plans[0].Extra)
	assert.Equal(t, domain.Cents(8000), plans[0].RemainingAfter)
}

func TestScenarios(t *testing.T) {
	debts := []domain.Debt{{ID: "d", Name: "D", Balance: 120000, InterestRate: 1}}

	out := simulation.Scenarios(debts, simulation.Params{MonthlyPayment: 10000})

	require.Len(t, out, 3)
	assert.Equal(t, "conservative", out[0].Name)
	assert.Equal(t, domain.Cents(8000), out[0].MonthlyPayment)
	assert.Equal(t, domain.Cents(10000), out[1].MonthlyPayment)
	assert.Equal(t, domain.Cents(12000), out[2].MonthlyPayment)
	assert.GreaterOrEqual(t, out[0].Result.Months, out[1].Result.Months)
	assert.GreaterOrEqual(t, out[1].Result.Months, out[2].Result.Months)
}
