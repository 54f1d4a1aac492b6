package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/oib/internal/cli"
	"github.com/Veraticus/oib/internal/config"
	"github.com/Veraticus/oib/internal/storage"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the SQLite counter database",
		Long: `Migrate applies pending schema migrations to the SQLite database and
prints the resulting schema version. Every other command migrates on open,
so running this is only needed to prepare a database ahead of time.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			if settings.Storage.Backend != config.BackendSQLite {
				return errors.New("migrate only applies to the sqlite backend")
			}

			version, err := migrateSQLite(cmd.Context(), settings.Storage.DatabasePath)
			if err != nil {
				return err
			}

			writeLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%s is at schema version %d", settings.Storage.DatabasePath, version)))
			return nil
		},
	}
}

func migrateSQLite(ctx context.Context, path string) (int, error) {
	store, err := storage.NewSQLiteStorage(path)
	if err != nil {
		return 0, err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Warn("Failed to close database", "error", closeErr)
		}
	}()

	if err := store.Migrate(ctx); err != nil {
		return 0, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store.SchemaVersion(ctx)
}
