package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Veraticus/oib/internal/cli"
	"github.com/Veraticus/oib/internal/httpapi"
	"github.com/Veraticus/oib/internal/oib"
)

func checkDigitCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "check-digit PAYLOAD",
		Short:   "Compute the check digit for ten digits",
		Example: `  oib check-digit 6943515153`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := initApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			payload := oib.Strip(joinArgs(args))
			d, err := app.engine.CheckDigit(payload)
			if err != nil {
				return fmt.Errorf("cannot compute check digit for %q: %w", payload, err)
			}

			full := payload + strconv.Itoa(d)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), httpapi.CheckDigitResponse{CheckDigit: d, OIB: full})
			}

			writeLine(cmd.OutOrStdout(), fmt.Sprintf("%d  %s", d, cli.IdentifierStyle.Render(cli.FormatOIB(full))))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
