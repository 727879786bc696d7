package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/folioforge/depot/pkg/depot"
)

const modulePath = "github.com/folioforge/depot"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the depot version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "depot v%s\nmodule: %s\n", depot.Version, modulePath)
			return nil
		},
	}
}
