// Shared helpers for depot CLI commands.

package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/folioforge/depot/pkg/logging"
	"github.com/folioforge/depot/pkg/sqlite"
	"github.com/folioforge/depot/pkg/types"
)

// validTableNamesStr is a comma-separated list of valid table names for
// error output.
var validTableNamesStr = strings.Join(types.StandardTableNames, ", ")

// attachStore resolves the config and data directories, creates a SQLite
// backend, and attaches it. The caller must defer store.Detach().
func attachStore(log logging.Logger) (types.Store, error) {
	configDir, err := resolveConfigDir()
	if err != nil {
		return nil, fmt.Errorf("resolve config dir: %w", err)
	}

	v, err := loadConfig(configDir)
	if err != nil {
		return nil, err
	}

	dataDir, err := resolveDataDir(v.GetString(cfgKeyDataDir))
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}

	store := sqlite.NewBackend(log)
	if err := store.Attach(types.Config{
		Backend: v.GetString(cfgKeyBackend),
		DataDir: dataDir,
	}); err != nil {
		return nil, fmt.Errorf("attach store: %w", err)
	}

	return store, nil
}

// checkTableName validates a table-name argument before the store sees
// it, so the usage message can enumerate the valid names.
func checkTableName(name string) error {
	for _, t := range types.StandardTableNames {
		if t == name {
			return nil
		}
	}
	return fmt.Errorf("%w: %q (valid: %s)", types.ErrUnknownTable, name, validTableNamesStr)
}

// printRow writes one row to stdout, as JSON in --json mode or as a
// compact text line otherwise.
func printRow(cmd *cobra.Command, row any) error {
	if flags.jsonMode {
		data, err := json.MarshalIndent(row, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal output: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	switch r := row.(type) {
	case *types.Account:
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t(created %s)\n",
			r.Email, r.DisplayName, r.CreatedAt.Format("2006-01-02 15:04:05"))
	case *types.PortfolioSnapshot:
		payload, err := json.Marshal(r.Payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t(updated %s)\n",
			r.OwnerEmail, string(payload), r.LastUpdated.Format("2006-01-02 15:04:05"))
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "%v\n", row)
	}
	return nil
}

// printRows writes each row followed by a count line in text mode.
func printRows(cmd *cobra.Command, rows []any) error {
	if flags.jsonMode {
		data, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal output: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	for _, row := range rows {
		if err := printRow(cmd, row); err != nil {
			return err
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d row(s)\n", len(rows))
	return nil
}
