package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reelfinder/reelfinder/internal/finder"
	"github.com/reelfinder/reelfinder/internal/logger"
)

func newLookupCommand(ctx *commandContext) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "lookup <description>",
		Short: "Find the movies or TV series that best match a description",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			description := strings.TrimSpace(strings.Join(args, " "))
			if description == "" {
				return errors.New("description is required")
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			// Diagnostics already go to stdout; logs stay quiet unless asked for.
			level := "warn"
			if verbose {
				level = cfg.Logging.Level
			}
			log := logger.New(logger.Config{Level: level, Format: logger.FormatAuto, Output: cmd.ErrOrStderr()})
			defer log.Close()

			a, err := newApp(cfg, log.Logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			sink := finder.SinkFuncs{
				OnDiagnostic: func(line string) {
					fmt.Fprintln(out, line)
				},
			}

			result := a.selector.FindMatches(cmd.Context(), description, sink)
			if len(result.Matches) == 0 {
				return nil
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, renderMatches(result.Matches))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show log output on stderr")
	return cmd
}
