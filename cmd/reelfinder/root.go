package main

import (
	"github.com/spf13/cobra"

	"github.com/reelfinder/reelfinder/internal/config"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var fixturesFlag string

	ctx := newCommandContext(&configFlag, &fixturesFlag)

	rootCmd := &cobra.Command{
		Use:           "reelfinder",
		Short:         "Find movies and TV series from vague descriptions",
		Version:       config.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), ctx)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&fixturesFlag, "fixtures", "", `Serve the catalog from a YAML fixture file ("builtin" for the bundled one)`)

	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newLookupCommand(ctx))

	return rootCmd
}
