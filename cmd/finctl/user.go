package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/boddenberg/finance-dashboard-bfa-go/internal/cli"

	"github.com/spf13/cobra"
)

var flagPassword string

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage local logins (SQLite backend)",
}

var userAddCmd = &cobra.Command{
	Use:   "add <email>",
	Short: "Create a local login",
	Long:  "Create a local login. Without --password the password is read from the first line of stdin.",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserAdd,
}

func init() {
	userAddCmd.Flags().StringVar(&flagPassword, "password", "", "Password (at least 8 characters)")
	userCmd.AddCommand(userAddCmd)
	rootCmd.AddCommand(userCmd)
}

func runUserAdd(cmd *cobra.Command, args []string) error {
	password := flagPassword
	if password == "" {
		fmt.Fprint(os.Stderr, "  password: ")
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("reading password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	store, err := openStore(newLogger())
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	p, err := store.CreateUser(cmd.Context(), args[0], password)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "  "+cli.Good("created")+" "+p.Email+" ("+p.ID+")")
	fmt.Fprintln(cmd.OutOrStdout(), "  Add it to ALLOWED_EMAILS to let it log in to the API.")
	return nil
}
