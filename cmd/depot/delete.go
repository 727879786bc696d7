package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/folioforge/depot/pkg/types"
)

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <table> <key>",
		Short: "Delete rows",
		Long: "delete accounts <email>     Delete an account and, atomically, every\n" +
			"                            portfolio snapshot it owns.\n" +
			"delete portfolios <owner>   Delete all snapshots for an owner.",
		Args: cobra.ExactArgs(2),
		RunE: runDelete,
	}
}

func runDelete(cmd *cobra.Command, args []string) error {
	tableName, key := args[0], args[1]
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

	field := types.FieldEmail
	if tableName == types.PortfoliosTable {
		field = types.FieldOwnerEmail
	}

	n, err := table.DeleteRows(types.Criteria{Field: field, Value: key})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d row(s)\n", n)
	return nil
}
