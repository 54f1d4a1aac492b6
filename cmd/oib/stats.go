package main

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/oib/internal/engine"
	"github.com/Veraticus/oib/internal/httpapi"
	"github.com/Veraticus/oib/internal/model"
)

func statsCmd() *cobra.Command {
	var (
		since  string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show how many OIBs were generated and validated",
		Example: `  oib stats
  oib stats --since 24h
  oib stats --since 2026-01-01 --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			var from *time.Time
			if since != "" {
				t, err := parseSince(since, time.Now())
				if err != nil {
					return err
				}
				from = &t
			}

			app, cleanup, err := initApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			var stats *model.Stats
			if from != nil {
				stats, err = app.engine.StatsSince(ctx, *from)
				if errors.Is(err, engine.ErrHistoryUnsupported) {
					return errors.New("--since needs the sqlite or memory backend")
				}
			} else {
				stats, err = app.engine.Stats(ctx)
			}
			if err != nil {
				return err
			}

			if asJSON {
				resp := httpapi.StatsResponse{
					Since:     from,
					Generated: stats.Generated,
					Validated: stats.Validated,
					Total:     stats.Total(),
				}
				if !stats.UpdatedAt.IsZero() {
					resp.UpdatedAt = &stats.UpdatedAt
				}
				return writeJSON(cmd.OutOrStdout(), resp)
			}

			writeLine(cmd.OutOrStdout(), app.renderer.Stats(stats, from))
			return nil
		},
	}

	cmd.Flags().StringVar(&since, "since", "", "Only count events after this time (24h, RFC 3339 or 2006-01-02)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}
