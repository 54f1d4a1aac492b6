package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/oib/internal/cli"
	"github.com/Veraticus/oib/internal/httpapi"
)

func validateCmd() *cobra.Command {
	var (
		showTrace bool
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "validate [OIB...]",
		Short: "Validate one or more OIBs",
		Long: `Validate checks each OIB given as an argument, or one per line on stdin
when no arguments are given. Whitespace inside an OIB is ignored, so grouped
input such as "69 435 151 530" works when quoted.

Exits with status 1 if any OIB is invalid.`,
		Example: `  oib validate 69435151530
  oib validate --trace "69 435 151 530"
  cat oibs.txt | oib validate --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			inputs := args
			if len(inputs) == 0 {
				lines, err := cli.NewLineReader(cmd.InOrStdin()).ReadAll(ctx)
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				inputs = lines
			}
			if len(inputs) == 0 {
				return errors.New("no OIB given: pass one as an argument or pipe them on stdin")
			}

			app, cleanup, err := initApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			invalid := 0
			responses := make([]httpapi.ValidateResponse, 0, len(inputs))
			for _, input := range inputs {
				res := app.engine.Validate(ctx, input)
				if !res.Outcome.Valid {
					invalid++
				}

				if asJSON {
					resp := httpapi.NewValidateResponse(res, app.renderer.Localizer())
					resp.Input = input
					responses = append(responses, resp)
					continue
				}

				writeLine(out, app.renderer.Outcome(res.Outcome))
				if showTrace && len(res.Steps) > 0 {
					writeLine(out, "")
					writeLine(out, app.renderer.Trace(res.Steps))
				}
			}

			if asJSON {
				if err := writeJSON(out, responses); err != nil {
					return err
				}
			}

			if invalid > 0 {
				return errInvalidFound
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showTrace, "trace", false, "Show the check digit calculation")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output results as JSON")

	return cmd
}
