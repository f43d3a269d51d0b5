package main

import (
	"fmt"
	"os"

	"github.com/boddenberg/finance-dashboard-bfa-go/internal/config"
	"github.com/boddenberg/finance-dashboard-bfa-go/internal/infra/observability"
	"github.com/boddenberg/finance-dashboard-bfa-go/internal/infra/sqlite"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagConfig  string
	flagDB      string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:           "finctl",
	Short:         "Personal and business finance from the terminal",
	Long:          "Simulate debt payoff plans and import bank statements into the local finance database.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "  error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default "+config.CLIConfigPath()+")")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging to stderr")
}

func loadConfig() (config.CLIConfig, error) {
	cfg, err := config.LoadCLI(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagDB != "" {
		cfg.Store.SQLitePath = flagDB
	}
	return cfg, nil
}

func newLogger() *zap.Logger {
	if flagVerbose {
		return observability.NewLogger("debug")
	}
	return zap.NewNop()
}

// openStore opens the configured database; the caller closes it.
func openStore(logger *zap.Logger) (*sqlite.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	store, err := sqlite.Open(cfg.Store.SQLitePath, logger)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", cfg.Store.SQLitePath, err)
	}
	return store, nil
}
