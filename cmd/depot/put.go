package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/folioforge/depot/pkg/types"
)

// putFlags holds account fields for "put accounts".
type putFlags struct {
	email    string
	name     string
	password string
}

func newPutCmd() *cobra.Command {
	var pf putFlags

	cmd := &cobra.Command{
		Use:   "put <table> [args]",
		Short: "Insert or replace a row",
		Long: "put accounts --email <email> --name <name> --password <password>\n" +
			"    Register an account. The password is bcrypt-hashed before it\n" +
			"    reaches the store; plaintext is never written.\n" +
			"put portfolios <owner-email> <payload-json>\n" +
			"    Replace the owner's current snapshot, or create one if none\n" +
			"    exists (upsert).",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPut(cmd, args, pf)
		},
	}

	cmd.Flags().StringVar(&pf.email, "email", "", "account email (accounts)")
	cmd.Flags().StringVar(&pf.name, "name", "", "account display name (accounts)")
	cmd.Flags().StringVar(&pf.password, "password", "", "account password, hashed before storage (accounts)")

	return cmd
}

func runPut(cmd *cobra.Command, args []string, pf putFlags) error {
	tableName := args[0]
	if err := checkTableName(tableName); err != nil {
		return err
	}

	store, err := attachStore(newLogger())
	if err != nil {
		return err
	}
	defer store.Detach()

	table, err := store.GetTable(tableName)
	if err != nil {
		return err
	}

	switch tableName {
	case types.AccountsTable:
		return putAccount(cmd, table, pf)
	case types.PortfoliosTable:
		return putPortfolio(cmd, table, args[1:])
	}
	return nil
}

func putAccount(cmd *cobra.Command, table types.Table, pf putFlags) error {
	if pf.email == "" || pf.password == "" {
		return fmt.Errorf("put accounts requires --email and --password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pf.password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	row, err := table.InsertRow(&types.Account{
		Email:        pf.email,
		PasswordHash: string(hash),
		DisplayName:  pf.name,
	})
	if err != nil {
		return err
	}
	return printRow(cmd, row)
}

func putPortfolio(cmd *cobra.Command, table types.Table, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("put portfolios requires <owner-email> and <payload-json>")
	}
	owner, payloadJSON := args[0], args[1]

	var payload any
	if err := json.Unmarshal([]byte(payloadJSON), &payload); err != nil {
		return fmt.Errorf("payload is not valid JSON: %w", err)
	}

	// Upsert: replace the current snapshot, insert when none exists.
	n, err := table.UpdateRow(
		types.Criteria{Field: types.FieldOwnerEmail, Value: owner},
		types.Patch{types.PatchPayload: payload},
	)
	if err != nil {
		return err
	}
	if n > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Replaced snapshot for %s\n", owner)
		return nil
	}

	row, err := table.InsertRow(&types.PortfolioSnapshot{
		OwnerEmail: owner,
		Payload:    payload,
	})
	if err != nil {
		return err
	}
	return printRow(cmd, row)
}
