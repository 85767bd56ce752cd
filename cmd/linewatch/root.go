package main

import (
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands
type RootOptions struct {
	Verbose bool
}

// NewRootCommand creates the root command for the linewatch CLI
func NewRootCommand() *cobra.Command {

	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "linewatch",
		Short: "Boundary violation tracking for multi-subject video",
		Long: "Tracks subjects across video frames with stable identities, tests\n" +
			"their ground contact against a boundary line and records evidence\n" +
			"of debounced violations.",
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewBoundaryCommand(opts))

	return cmd
}
