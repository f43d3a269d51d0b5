package simulation

import (
	"math"

	"github.com/boddenberg/finance-dashboard-bfa-go/internal/domain"
)

// DebtPlan is the "what to pay this month" line for one debt.
type DebtPlan struct {
	DebtID         string       `json:"debt_id"`
	DebtName       string       `json:"debt_name"`
	Balance        domain.Cents `json:"balance"`
	Minimum        domain.Cents `json:"minimum"`
	Extra          domain.Cents `json:"extra"`
	Total          domain.Cents `json:"total"`
	RemainingAfter domain.Cents `json:"remaining_after"`
}

// PlanByDebt sums the month-1 allocations per debt, in the caller's debt order.
// RemainingAfter is the original balance minus what is paid this month.
func PlanByDebt(debts []domain.Debt, res Result) []DebtPlan {
	byID := make(map[string]*DebtPlan, len(debts))
	plans := make([]DebtPlan, len(debts))
	for i, d := range debts {
		plans[i] = DebtPlan{DebtID: d.ID, DebtName: d.Name, Balance: d.Balance}
		byID[d.ID] = &plans[i]
	}
	for _, a := range res.Month1Plan {
		p, ok := byID[a.DebtID]
		if !ok {
			continue
		}
		switch a.Kind {
		case AllocationMinimum:
			p.Minimum += a.Amount
		case AllocationExtra:
			p.Extra += a.Amount
		}
		p.Total += a.Amount
	}
	for i := range plans {
		plans[i].RemainingAfter = plans[i].Balance - plans[i].Total
		if plans[i].RemainingAfter < 0 {
			plans[i].RemainingAfter = 0
		}
	}
	return plans
}

// Scenario is one named variant of the monthly payment.
type Scenario struct {
	Name           string       `json:"name"`
	Factor         float64      `json:"factor"`
	MonthlyPayment domain.Cents `json:"monthly_payment"`
	Result         Result       `json:"result"`
}

var scenarioFactors = []struct {
	name   string
	factor float64
}{
	{"conservative", 0.8},
	{"current", 1.0},
	{"aggressive", 1.2},
}

// Scenarios runs Simulate with the monthly payment scaled by 0.8, 1.0 and 1.2.
func Scenarios(debts []domain.Debt, p Params) []Scenario {
	out := make([]Scenario, 0, len(scenarioFactors))
	for _, s := range scenarioFactors {
		scaled := p
		scaled.MonthlyPayment = domain.Cents(math.Round(float64(p.MonthlyPayment) * s.factor))
		out = append(out, Scenario{
			Name:           s.name,
			Factor:         s.factor,
			MonthlyPayment: scaled.MonthlyPayment,
			Result:         Simulate(debts, scaled),
		})
	}
	return out
}
