package main

import (
	"github.com/spf13/cobra"

	"github.com/folioforge/depot/pkg/types"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <table> [owner-email]",
		Short: "List rows in a table",
		Long: "list accounts [email]       All accounts, or one by email.\n" +
			"list portfolios             All snapshots, newest first.\n" +
			"list portfolios <owner>     All snapshots for one owner, newest first.",
		Args: cobra.RangeArgs(1, 2),
		RunE: runList,
	}
}

func runList(cmd *cobra.Command, args []string) error {
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

	var q types.Query
	if len(args) == 2 {
		field := types.FieldOwnerEmail
		if tableName == types.AccountsTable {
			field = types.FieldEmail
		}
		q = types.Query{Field: field, Value: args[1]}
	}

	rows, err := table.Search(q)
	if err != nil {
		return err
	}
	return printRows(cmd, rows)
}
