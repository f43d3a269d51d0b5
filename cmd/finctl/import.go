package main

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/boddenberg/finance-dashboard-bfa-go/internal/cli"
	"github.com/boddenberg/finance-dashboard-bfa-go/internal/domain"
	"github.com/boddenberg/finance-dashboard-bfa-go/internal/infra/cache"
	"github.com/boddenberg/finance-dashboard-bfa-go/internal/infra/observability"
	"github.com/boddenberg/finance-dashboard-bfa-go/internal/infra/resilience"
	"github.com/boddenberg/finance-dashboard-bfa-go/internal/service"

	"github.com/spf13/cobra"
)

var (
	flagUser   string
	flagLedger string
	flagCommit bool
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Upload, parse and optionally commit a statement into the local database",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	importCmd.Flags().StringVar(&flagUser, "user", "", "Email of the local user that owns the data")
	importCmd.Flags().StringVar(&flagLedger, "ledger", "PF", "PF or PJ")
	importCmd.Flags().StringVar(&flagSource, "source", "", "csv or pdf (default from the file extension)")
	importCmd.Flags().BoolVar(&flagCommit, "commit", false, "Commit the batch after parsing")
	_ = importCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	ledger, err := domain.ParseLedger(flagLedger)
	if err != nil {
		return err
	}
	source, err := sourceFor(args[0], flagSource)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	logger := newLogger()
	store, err := openStore(logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	user, err := store.FindUser(ctx, flagUser)
	if err != nil {
		return fmt.Errorf("%w (create it with `finctl user add`)", err)
	}

	metrics := observability.NewMetrics()
	ruleCache := cache.New[[]domain.CategorizationRule](time.Minute)
	defer ruleCache.Close()
	rules := service.NewRuleService(store, ruleCache, metrics, logger)
	imports := service.NewImportService(store, store, store, rules, resilience.NewBulkhead(1), metrics, logger)

	contentType := mime.TypeByExtension(filepath.Ext(args[0]))
	file, err := imports.Upload(ctx, user.ID, filepath.Base(args[0]), ledger, contentType, data)
	if err != nil {
		return err
	}
	batch, summary, err := imports.Parse(ctx, user.ID, file.ID, source)
	if err != nil {
		return explainParseError(err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintln(out, cli.RenderTitle("STATEMENT IMPORT"))
	fmt.Fprintln(out)
	fmt.Fprint(out, cli.RenderKV([][2]string{
		{"Batch", batch.ID},
		{"Ledger", string(batch.Ledger)},
		{"Rows", fmt.Sprintf("%d", summary.RowCount)},
		{"Categorized", fmt.Sprintf("%d", summary.Categorized)},
		{"Duplicate suspects", fmt.Sprintf("%d", summary.DuplicateCount)},
		{"Dropped lines", fmt.Sprintf("%d", summary.DroppedLines)},
		{"Incoming", cli.FormatMoney(summary.TotalIncoming)},
		{"Outgoing", cli.FormatMoney(summary.TotalOutgoing)},
	}))

	detail, err := imports.GetBatch(ctx, user.ID, batch.ID)
	if err != nil {
		return err
	}
	fmt.Fprintln(out)
	fmt.Fprint(out, cli.RenderTable(rowsTable(detail.Rows)))

	if !flagCommit {
		fmt.Fprintln(out, "\n  "+cli.Warn("Batch left for review; rerun with --commit to import it."))
		return nil
	}
	n, err := imports.Commit(ctx, user.ID, batch.ID)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "\n  "+cli.Good(fmt.Sprintf("Imported %d transactions.", n)))
	return nil
}

func rowsTable(rows []domain.ImportRow) cli.Table {
	t := cli.Table{
		Headers:   []string{"Line", "Date", "Description", "Amount", "Category", "Status"},
		LeftAlign: []int{2, 4, 5},
	}
	for _, r := range rows {
		amount := r.Amount
		if r.Direction == domain.DirectionOut {
			amount = -amount
		}
		status := string(r.Status)
		if r.Status == domain.RowDuplicateSuspect {
			status = cli.Warn(status)
		}
		t.Rows = append(t.Rows, []string{
			fmt.Sprintf("%d", r.Line),
			cli.FormatDate(r.Date),
			r.Description,
			cli.FormatMoney(amount),
			r.CategoryID(),
			status,
		})
	}
	return t
}
