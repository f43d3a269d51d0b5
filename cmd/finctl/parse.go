package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/boddenberg/finance-dashboard-bfa-go/internal/cli"
	"github.com/boddenberg/finance-dashboard-bfa-go/internal/domain"
	"github.com/boddenberg/finance-dashboard-bfa-go/internal/statement"

	"github.com/spf13/cobra"
)

var flagSource string

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse a bank statement and print the normalized rows",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().StringVar(&flagSource, "source", "", "csv or pdf (default from the file extension)")
	rootCmd.AddCommand(parseCmd)
}

// sourceFor resolves --source, falling back to the file extension.
func sourceFor(path, flag string) (domain.SourceType, error) {
	if flag == "" {
		flag = strings.TrimPrefix(filepath.Ext(path), ".")
	}
	return statement.ParseSourceType(flag)
}

func runParse(cmd *cobra.Command, args []string) error {
	source, err := sourceFor(args[0], flagSource)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	raws, err := statement.Parse(data, source)
	if err != nil {
		return explainParseError(err)
	}
	rows, dropped := statement.Normalize(raws, time.Now().Year())
	if len(rows) == 0 {
		return explainParseError(statement.NoValidRows(raws, source))
	}

	out := cmd.OutOrStdout()
	t := cli.Table{
		Title:     fmt.Sprintf("%s  %d rows", filepath.Base(args[0]), len(rows)),
		Headers:   []string{"Line", "Date", "Description", "Amount"},
		LeftAlign: []int{2},
	}
	var in, outgoing domain.Cents
	for _, r := range rows {
		amount := r.Amount
		if r.Direction == domain.DirectionOut {
			outgoing += r.Amount
			amount = -amount
		} else {
			in += r.Amount
		}
		t.Rows = append(t.Rows, []string{
			fmt.Sprintf("%d", r.Line),
			cli.FormatDate(r.Date),
			r.Description,
			cli.FormatMoney(amount),
		})
	}
	fmt.Fprintln(out)
	fmt.Fprint(out, cli.RenderTable(t))
	fmt.Fprint(out, cli.RenderKV([][2]string{
		{"Incoming", cli.FormatMoney(in)},
		{"Outgoing", cli.FormatMoney(outgoing)},
		{"Dropped lines", fmt.Sprintf("%d", dropped)},
	}))
	return nil
}

// explainParseError adds the parse diagnostics to the message.
func explainParseError(err error) error {
	var pe *domain.ErrParse
	if !errors.As(err, &pe) {
		return err
	}
	msg := fmt.Sprintf("%s (%d lines read)", pe.Error(), pe.Debug.LineCount)
	if pe.Debug.Sample != "" {
		msg += "\n  first lines:\n    " + strings.ReplaceAll(pe.Debug.Sample, "\n", "\n    ")
	}
	return errors.New(msg)
}
