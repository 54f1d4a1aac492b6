package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/oib/internal/cli"
)

func resetCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset the usage counters to zero",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if !force {
				fmt.Fprint(cmd.OutOrStdout(), "Reset all usage counters? [y/N] ")
				answer, err := cli.NewLineReader(cmd.InOrStdin()).ReadLine(ctx)
				if err != nil && !errors.Is(err, io.EOF) {
					return err
				}
				answer = strings.ToLower(strings.TrimSpace(answer))
				if answer != "y" && answer != "yes" {
					writeLine(cmd.OutOrStdout(), cli.FormatInfo("Nothing was reset."))
					return nil
				}
			}

			app, cleanup, err := initApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := app.engine.Reset(ctx); err != nil {
				return fmt.Errorf("failed to reset counters: %w", err)
			}
			writeLine(cmd.OutOrStdout(), cli.FormatSuccess("Usage counters reset."))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip the confirmation prompt")
	return cmd
}
