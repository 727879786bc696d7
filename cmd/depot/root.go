package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/folioforge/depot/pkg/logging"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
	verbose   bool
}

var flags rootFlags

// NewRootCmd creates the top-level "depot" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "depot",
		Short: "A local table-service emulator for the Folio portfolio tracker",
		Long: "Depot emulates a managed, table-oriented datastore service locally\n" +
			"using an embedded SQLite engine, and migrates legacy flat account\n" +
			"snapshots into the relational schema.",
		// Do not print usage on errors returned by subcommands.
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flags.configDir, "config-dir", "", "configuration directory (default: .depot)")
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "data directory (default: .depot-db)")
	root.PersistentFlags().BoolVar(&flags.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "log at info level")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newPutCmd())
	root.AddCommand(newGetCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newDeleteCmd())

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(exitUserError)
	}
}

// newLogger builds the CLI logger. Warnings (for example the raw-query
// passthrough notice) are always visible; info requires --verbose.
func newLogger() logging.Logger {
	level := slog.LevelWarn
	if flags.verbose {
		level = slog.LevelInfo
	}
	return logging.NewSlogLogger(slog.New(
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}),
	))
}
