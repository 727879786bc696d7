package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/folioforge/depot/internal/paths"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize depot storage",
		Long:  "Create configuration and data directories, then initialize the storage schema.",
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	// Attach creates the data directory and the schema; Detach releases
	// the handle so the next command starts clean.
	store, err := attachStore(newLogger())
	if err != nil {
		return err
	}
	if err := store.Detach(); err != nil {
		return fmt.Errorf("finalize storage: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Depot initialized successfully")
	return nil
}

// resolveConfigDir returns the config directory from flag, env, or default.
func resolveConfigDir() (string, error) {
	return paths.ResolveConfigDir(flags.configDir)
}

// resolveDataDir returns the data directory from flag, config value,
// env, or the CWD-relative default.
func resolveDataDir(configYAMLValue string) (string, error) {
	return paths.ResolveDataDir(flags.dataDir, configYAMLValue)
}
