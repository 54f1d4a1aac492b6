package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/oib/internal/cli"
	"github.com/Veraticus/oib/internal/engine"
	"github.com/Veraticus/oib/internal/httpapi"
	"github.com/Veraticus/oib/internal/i18n"
)

// progressThreshold is the batch size from which a progress bar is shown.
const progressThreshold = 10_000

func generateCmd() *cobra.Command {
	var (
		count   int
		workers int
		unique  bool
		format  string
		copyOut bool
		asJSON  bool
		seed    int64
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate checksum-valid OIBs for testing",
		Long: `Generate produces random OIBs with a correct check digit. They are meant
for test fixtures and do not belong to real people.

Large batches are generated in parallel; --seed makes the output reproducible.`,
		Example: `  oib generate
  oib generate -n 1000 --unique --format plain > fixtures.txt
  oib generate --copy`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if format != cli.FormatGrouped && format != cli.FormatPlain {
				return fmt.Errorf("invalid --format %q (want grouped or plain)", format)
			}
			if count < 1 || count > engine.MaxBatchSize {
				return fmt.Errorf("--count must be between 1 and %d", engine.MaxBatchSize)
			}

			var opts []engine.Option
			if cmd.Flags().Changed("seed") {
				opts = append(opts, engine.WithSeed(seed))
			}

			app, cleanup, err := initApp(ctx, opts...)
			if err != nil {
				return err
			}
			defer cleanup()

			ids, err := generateIDs(cmd, app, count, workers, unique, asJSON)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case asJSON:
				if err := writeJSON(out, httpapi.GenerateResponse{OIBs: ids}); err != nil {
					return err
				}
			case len(ids) == 1:
				writeLine(out, app.renderer.Generated(ids[0], format))
			default:
				for _, id := range ids {
					writeLine(out, cli.FormatAs(id, format))
				}
			}

			if copyOut {
				loc := app.renderer.Localizer()
				if err := cli.CopyToClipboard(strings.Join(ids, "\n")); err != nil {
					writeLine(cmd.ErrOrStderr(), cli.FormatWarning(loc.T(i18n.KeyCopyFailed)+": "+err.Error()))
				} else {
					writeLine(cmd.ErrOrStderr(), cli.FormatSuccess(loc.T(i18n.KeyCopied)))
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 1, "Number of OIBs to generate")
	cmd.Flags().IntVar(&workers, "workers", 0, "Parallel workers for batches (default: number of CPUs)")
	cmd.Flags().BoolVar(&unique, "unique", false, "Never repeat an OIB within the batch")
	cmd.Flags().StringVar(&format, "format", cli.FormatGrouped, "Output format (grouped, plain)")
	cmd.Flags().BoolVar(&copyOut, "copy", false, "Copy the result to the clipboard")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Seed for reproducible output")

	return cmd
}

func generateIDs(cmd *cobra.Command, app *appContext, count, workers int, unique, quiet bool) ([]string, error) {
	ctx := cmd.Context()

	if count == 1 {
		id, err := app.engine.Generate(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", app.renderer.Localizer().T(i18n.KeyGenFailed), err)
		}
		return []string{id}, nil
	}

	handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx, stop := handler.HandleInterrupts(ctx, "Generation")
	defer stop()

	opts := engine.BatchOptions{Count: count, Workers: workers, Unique: unique}
	if count >= progressThreshold && !quiet {
		bar := cli.NewProgressBar(cmd.ErrOrStderr(), count, app.renderer.Localizer().T(i18n.KeyGenerating))
		opts.OnGenerated = func() { _ = bar.Add(1) }
	}

	ids, err := app.engine.GenerateBatch(ctx, opts)
	if err != nil {
		if handler.WasInterrupted() {
			return nil, errors.New("generation interrupted")
		}
		return nil, err
	}
	return ids, nil
}
