package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/folioforge/depot/pkg/types"
)

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <table> <key>",
		Short: "Look up a single row",
		Long: "get accounts <email>      Look up an account by email.\n" +
			"get portfolios <owner>    Return the owner's newest snapshot.",
		Args: cobra.ExactArgs(2),
		RunE: runGet,
	}
}

func runGet(cmd *cobra.Command, args []string) error {
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

	var q types.Query
	switch tableName {
	case types.AccountsTable:
		q = types.Query{Field: types.FieldEmail, Value: key}
	case types.PortfoliosTable:
		q = types.Query{Field: types.FieldOwnerEmail, Value: key, NewestOnly: true}
	}

	rows, err := table.Search(q)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no row in %s for %q", tableName, key)
	}
	return printRow(cmd, rows[0])
}
