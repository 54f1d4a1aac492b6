package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/oib/internal/httpapi"
	"github.com/Veraticus/oib/internal/oib"
)

func traceCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "trace OIB",
		Short: "Show the check digit calculation step by step",
		Long: `Trace prints every step of the ISO 7064 MOD 11,10 fold for an eleven
digit OIB. The check digit of the input is not inspected, so trace also
explains why an invalid OIB fails. Tracing is not counted as a validation.`,
		Example: `  oib trace 69435151530
  oib trace 69 435 151 530`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := initApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			input := joinArgs(args)
			steps := app.engine.Trace(input)
			if len(steps) == 0 {
				return fmt.Errorf("cannot trace %q: need exactly %d digits", input, oib.Length)
			}

			if asJSON {
				resp := httpapi.TraceResponse{Steps: steps}
				if d, ok := oib.CheckDigitFromTrace(steps); ok {
					resp.CheckDigit = &d
				}
				return writeJSON(cmd.OutOrStdout(), resp)
			}

			writeLine(cmd.OutOrStdout(), app.renderer.Trace(steps))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output steps as JSON")
	return cmd
}
