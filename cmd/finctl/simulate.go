package main

import (
	"fmt"
	"strings"

	"github.com/boddenberg/finance-dashboard-bfa-go/internal/cli"
	"github.com/boddenberg/finance-dashboard-bfa-go/internal/domain"
	"github.com/boddenberg/finance-dashboard-bfa-go/internal/simulation"
	"github.com/boddenberg/finance-dashboard-bfa-go/internal/statement"

	"github.com/spf13/cobra"
)

var (
	flagDebtsFile   string
	flagPayment     string
	flagExtra       string
	flagStrategy    string
	flagScenarios   bool
	flagNoMinimums  bool
	flagPauseReneg  bool
	flagTimelineMax int
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Simulate a debt payoff plan",
	Example: `  finctl simulate --debts debts.toml --payment 1.500,00
  finctl simulate --debts debts.toml --payment 800 --strategy snowball --scenarios`,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().StringVar(&flagDebtsFile, "debts", "debts.toml", "TOML file with [[debt]] entries")
	simulateCmd.Flags().StringVar(&flagPayment, "payment", "", "Monthly payment (e.g. 1500 or 1.500,00)")
	simulateCmd.Flags().StringVar(&flagExtra, "extra", "", "One-time extra payment in the first month")
	simulateCmd.Flags().StringVar(&flagStrategy, "strategy", "", "avalanche or snowball (default from config)")
	simulateCmd.Flags().BoolVar(&flagScenarios, "scenarios", false, "Also run the conservative/aggressive variants")
	simulateCmd.Flags().BoolVar(&flagNoMinimums, "no-minimums", false, "Do not pay minimums before the surplus")
	simulateCmd.Flags().BoolVar(&flagPauseReneg, "pause-renegotiated", false, "Send no surplus to renegotiated debts")
	simulateCmd.Flags().IntVar(&flagTimelineMax, "timeline", 12, "Months of timeline to print")
	_ = simulateCmd.MarkFlagRequired("payment")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	debts, err := loadDebts(flagDebtsFile)
	if err != nil {
		return err
	}

	params := simulation.Params{
		Strategy:          simulation.Strategy(strings.ToUpper(cfg.Simulation.Strategy)),
		PayMinimums:       cfg.Simulation.PayMinimums && !flagNoMinimums,
		PauseRenegotiated: cfg.Simulation.PauseRenegotiated || flagPauseReneg,
	}
	if flagStrategy != "" {
		params.Strategy = simulation.Strategy(strings.ToUpper(flagStrategy))
	}
	if !params.Strategy.Valid() {
		return fmt.Errorf("unknown strategy %q (avalanche or snowball)", flagStrategy)
	}
	if params.MonthlyPayment, err = parseMoneyFlag("payment", flagPayment); err != nil {
		return err
	}
	if flagExtra != "" {
		if params.ExtraOneTime, err = parseMoneyFlag("extra", flagExtra); err != nil {
			return err
		}
	}

	res := simulation.Simulate(debts, params)
	out := cmd.OutOrStdout()

	fmt.Fprintln(out)
	fmt.Fprintln(out, cli.RenderTitle(fmt.Sprintf("PAYOFF PLAN  %s", params.Strategy)))
	fmt.Fprintln(out)
	fmt.Fprint(out, cli.RenderKV([][2]string{
		{"Monthly payment", cli.FormatMoney(params.MonthlyPayment)},
		{"Months", cli.FormatMonths(res.Months)},
		{"Total interest", cli.FormatMoney(res.TotalInterest)},
		{"Total paid", cli.FormatMoney(res.TotalPaid)},
	}))
	if res.Insufficient {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "  "+cli.Error(fmt.Sprintf(
			"Payment is not enough: %s still owed after %d months.",
			cli.FormatMoney(res.Remaining), simulation.MaxMonths)))
	}
	fmt.Fprintln(out)

	fmt.Fprint(out, cli.RenderTable(planTable(debts, res)))
	fmt.Fprintln(out)
	fmt.Fprint(out, cli.RenderTable(timelineTable(res, flagTimelineMax)))

	if flagScenarios {
		fmt.Fprintln(out)
		fmt.Fprint(out, cli.RenderTable(scenarioTable(simulation.Scenarios(debts, params))))
	}
	return nil
}

func parseMoneyFlag(name, v string) (domain.Cents, error) {
	c, _, err := statement.ParseAmount(v)
	if err != nil {
		return 0, fmt.Errorf("--%s: %w", name, err)
	}
	return c.Abs(), nil
}

func planTable(debts []domain.Debt, res simulation.Result) cli.Table {
	plans := simulation.PlanByDebt(debts, res)
	t := cli.Table{
		Title:   "This month",
		Headers: []string{"Debt", "Balance", "Minimum", "Extra", "Pay", "After"},
	}
	var total domain.Cents
	for _, p := range plans {
		total += p.Total
		t.Rows = append(t.Rows, []string{
			p.DebtName,
			cli.FormatMoney(p.Balance),
			cli.FormatMoney(p.Minimum),
			cli.FormatMoney(p.Extra),
			cli.FormatMoney(p.Total),
			cli.FormatMoney(p.RemainingAfter),
		})
	}
	t.Rows = append(t.Rows, []string{"---"}, []string{"Total", "", "", "", cli.FormatMoney(total), ""})
	return t
}

func timelineTable(res simulation.Result, limit int) cli.Table {
	t := cli.Table{
		Title:   "Timeline",
		Headers: []string{"Month", "Remaining", "Interest so far"},
	}
	for i, s := range res.Timeline {
		if limit > 0 && i >= limit && i != len(res.Timeline)-1 {
			continue
		}
		t.Rows = append(t.Rows, []string{
			fmt.Sprintf("%d", s.Month),
			cli.FormatMoney(s.RemainingDebt),
			cli.FormatMoney(s.AccumulatedInterest),
		})
	}
	return t
}

func scenarioTable(scenarios []simulation.Scenario) cli.Table {
	t := cli.Table{
		Title:   "Scenarios",
		Headers: []string{"Scenario", "Payment", "Months", "Interest"},
	}
	for _, s := range scenarios {
		months := cli.FormatMonths(s.Result.Months)
		if s.Result.Insufficient {
			months = cli.Warn("never")
		}
		t.Rows = append(t.Rows, []string{
			s.Name,
			cli.FormatMoney(s.MonthlyPayment),
			months,
			cli.FormatMoney(s.Result.TotalInterest),
		})
	}
	return t
}
