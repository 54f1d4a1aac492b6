package main

import (
	"github.com/spf13/cobra"

	"github.com/Veraticus/oib/internal/cli"
	"github.com/Veraticus/oib/internal/i18n"
	"github.com/Veraticus/oib/internal/tui"
	"github.com/Veraticus/oib/internal/tui/themes"
)

func interactiveCmd() *cobra.Command {
	var inline bool

	cmd := &cobra.Command{
		Use:     "interactive",
		Aliases: []string{"ui", "tui"},
		Short:   "Validate and generate OIBs in an interactive terminal UI",
		Long: `Interactive opens a terminal UI with live validation as you type.

Keys: enter validates, ctrl+g generates, ctrl+y copies the generated OIB,
ctrl+u moves it into the input, ctrl+t toggles the calculation steps,
ctrl+l clears and esc quits.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			app, cleanup, err := initApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			return tui.Run(ctx, app.engine,
				tui.WithLocalizer(i18n.New(app.settings.Language)),
				tui.WithTheme(themes.ByName(app.settings.Theme)),
				tui.WithClipboard(cli.CopyToClipboard),
				tui.WithAltScreen(!inline),
			)
		},
	}

	cmd.Flags().BoolVar(&inline, "inline", false, "Render below the prompt instead of the alternate screen")
	return cmd
}
