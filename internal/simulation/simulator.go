// Package simulation runs month-by-month debt payoff simulations.
//
// Simulate is a pure function: it works on a copy of the debts and is safe
// to call concurrently with different inputs.
package simulation

import (
	"math"
	"sort"

	"github.com/boddenberg/finance-dashboard-bfa-go/internal/domain"
)

// MaxMonths caps every simulation. Reaching it with balance left means the
// payment is insufficient; Result.Insufficient reports exactly that.
const MaxMonths = 180

// Strategy decides which debt receives surplus cash first.
type Strategy string

const (
	// Avalanche pays the highest interest rate first.
	Avalanche Strategy = "AVALANCHE"
	// Snowball pays the smallest balance first.
	Snowball Strategy = "SNOWBALL"
)

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool {
	return s == Avalanche || s == Snowball
}

// AllocationKind tags how a payment was decided.
type AllocationKind string

const (
	AllocationMinimum AllocationKind = "MINIMUM"
	AllocationExtra   AllocationKind = "EXTRA"
)

// Params configures a simulation.
type Params struct {
	Strategy          Strategy     `json:"strategy"`
	MonthlyPayment    domain.Cents `json:"monthly_payment"`
	ExtraOneTime      domain.Cents `json:"extra_one_time"`
	PayMinimums       bool         `json:"pay_minimums"`
	PauseRenegotiated bool         `json:"pause_renegotiated"`
	// CustomPayments overrides the required payment: debt ID -> month (1-based) -> amount.
	CustomPayments map[string]map[int]domain.Cents `json:"custom_payments,omitempty"`
}

// Allocation is one payment made to one debt.
type Allocation struct {
	DebtID   string         `json:"debt_id"`
	DebtName string         `json:"debt_name"`
	Kind     AllocationKind `json:"kind"`
	Amount   domain.Cents   `json:"amount"`
}

// Snapshot is the state after a simulated month.
type Snapshot struct {
	Month               int          `json:"month"`
	RemainingDebt       domain.Cents `json:"remaining_debt"`
	AccumulatedInterest domain.Cents `json:"accumulated_interest"`
}

// Result is derived on every call and never persisted.
type Result struct {
	Months        int          `json:"months"`
	TotalInterest domain.Cents `json:"total_interest"`
	TotalPaid     domain.Cents `json:"total_paid"`
	Remaining     domain.Cents `json:"remaining"`
	Insufficient  bool         `json:"insufficient"`
	Timeline      []Snapshot   `json:"timeline"`
	Month1Plan    []Allocation `json:"month1_plan"`
}

type workingDebt struct {
	id      string
	name    string
	balance domain.Cents
	rate    float64
	minimum domain.Cents
	status  domain.DebtStatus
}

// Simulate amortizes debts month by month under p.
func Simulate(debts []domain.Debt, p Params) Result {
	work := make([]workingDebt, 0, len(debts))
	for _, d := range debts {
		work = append(work, workingDebt{
			id:      d.ID,
			name:    d.Name,
			balance: d.Balance,
			rate:    d.InterestRate,
			minimum: d.MinimumPayment,
			status:  d.Status,
		})
	}
	order(work, p.Strategy)

	res := Result{Timeline: []Snapshot{}, Month1Plan: []Allocation{}}

	for res.Months < MaxMonths && outstanding(work) > 0 {
		res.Months++
		month := res.Months

		available := p.MonthlyPayment
		if month == 1 {
			available += p.ExtraOneTime
		}

		record := func(d *workingDebt, kind AllocationKind, amount domain.Cents) {
			d.balance -= amount
			available -= amount
			res.TotalPaid += amount
			if month == 1 {
				res.Month1Plan = append(res.Month1Plan, Allocation{
					DebtID: d.id, DebtName: d.name, Kind: kind, Amount: amount,
				})
			}
		}

		// Interest, then required payments.
		for i := range work {
			d := &work[i]
			if d.balance <= 0 {
				continue
			}
			interest := Interest(d.balance, d.rate)
			d.balance += interest
			res.TotalInterest += interest

			required := requiredPayment(d, month, p)
			pay := minCents(required, available, d.balance)
			if pay > 0 {
				record(d, AllocationMinimum, pay)
			}
		}

		// Surplus in priority order.
		for i := range work {
			if available <= 0 {
				break
			}
			d := &work[i]
			if d.balance <= 0 {
				continue
			}
			if p.PauseRenegotiated && d.status == domain.DebtRenegotiated {
				continue
			}
			pay := minCents(d.balance, available)
			if pay > 0 {
				record(d, AllocationExtra, pay)
			}
		}

		res.Timeline = append(res.Timeline, Snapshot{
			Month:               month,
			RemainingDebt:       outstanding(work),
			AccumulatedInterest: res.TotalInterest,
		})
	}

	res.Remaining = outstanding(work)
	res.Insufficient = res.Months >= MaxMonths && res.Remaining > 0
	return res
}

// Interest returns round(balance * rate / 100), half away from zero.
func Interest(balance domain.Cents, ratePct float64) domain.Cents {
	return domain.Cents(math.Round(float64(balance) * ratePct / 100))
}

// DefaultMinimum is 1% of the balance, at least one cent while it is positive.
func DefaultMinimum(balance domain.Cents) domain.Cents {
	if balance <= 0 {
		return 0
	}
	m := domain.Cents(math.Round(float64(balance) / 100))
	if m < 1 {
		m = 1
	}
	return m
}

func requiredPayment(d *workingDebt, month int, p Params) domain.Cents {
	if sched, ok := p.CustomPayments[d.id]; ok {
		if amount, ok := sched[month]; ok {
			return amount
		}
	}
	if !p.PayMinimums {
		return 0
	}
	minimum := d.minimum
	if minimum <= 0 {
		minimum = DefaultMinimum(d.balance)
	}
	return minCents(d.balance, minimum)
}

func order(work []workingDebt, s Strategy) {
	switch s {
	case Snowball:
		sort.SliceStable(work, func(i, j int) bool { return work[i].balance < work[j].balance })
	default:
		sort.SliceStable(work, func(i, j int) bool { return work[i].rate > work[j].rate })
	}
}

func outstanding(work []workingDebt) domain.Cents {
	var total domain.Cents
	for _, d := range work {
		if d.balance > 0 {
			total += d.balance
		}
	}
	return total
}

func minCents(first domain.Cents, rest ...domain.Cents) domain.Cents {
	m := first
	for _, v := range rest {
		if v < m {
			m = v
		}
	}
	if m < 0 {
		return 0
	}
	return m
}
