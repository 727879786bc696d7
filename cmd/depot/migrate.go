package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/folioforge/depot/internal/migrate"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate <snapshot-file>",
		Short: "Migrate a legacy flat account snapshot into the store",
		Long: "Read a legacy JSON snapshot (email -> account blob), hash any\n" +
			"plaintext passwords, insert account and portfolio rows, and write a\n" +
			"timestamped backup of the original file. Safe to re-run: accounts\n" +
			"already migrated are skipped.",
		Args: cobra.ExactArgs(1),
		RunE: runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, args []string) error {
	log := newLogger()

	store, err := attachStore(log)
	if err != nil {
		return err
	}
	defer store.Detach()

	job := migrate.NewJob(store, args[0], log)
	summary, err := job.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if summary.NothingToMigrate {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to migrate")
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(),
		"Migrated %d account(s), skipped %d, carried %d portfolio(s)\nBackup: %s\n",
		summary.AccountsMigrated, summary.AccountsSkipped,
		summary.PortfoliosCarried, summary.BackupPath)
	return nil
}
