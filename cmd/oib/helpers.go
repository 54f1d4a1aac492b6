package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/oib/internal/cli"
	"github.com/Veraticus/oib/internal/common"
	"github.com/Veraticus/oib/internal/config"
	"github.com/Veraticus/oib/internal/engine"
	"github.com/Veraticus/oib/internal/i18n"
	platformredis "github.com/Veraticus/oib/internal/platform/redis"
	"github.com/Veraticus/oib/internal/service"
	"github.com/Veraticus/oib/internal/storage"
)

// loadSettings returns the validated configuration.
func loadSettings() (*config.Settings, error) {
	settings, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return settings, nil
}

// openStore opens the configured counter backend. The SQLite database is
// migrated on open.
func openStore(ctx context.Context, settings *config.Settings) (service.CounterStore, error) {
	switch settings.Storage.Backend {
	case config.BackendMemory:
		return storage.NewMemoryCounter(), nil

	case config.BackendRedis:
		client, err := platformredis.New(ctx, settings.Redis)
		if err != nil {
			return nil, err
		}
		return storage.NewRedisCounter(client.Client, storage.WithKeyPrefix(settings.Redis.KeyPrefix)), nil

	default:
		store, err := storage.NewSQLiteStorage(settings.Storage.DatabasePath)
		if err != nil {
			return nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return store, nil
	}
}

// appContext bundles what every command needs.
type appContext struct {
	settings *config.Settings
	store    service.CounterStore
	engine   *engine.Engine
	renderer *cli.Renderer
}

// initApp loads settings, opens the store and builds the engine. The
// returned cleanup closes the store.
func initApp(ctx context.Context, opts ...engine.Option) (*appContext, func(), error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, nil, err
	}

	store, err := openStore(ctx, settings)
	if err != nil {
		return nil, nil, common.NewUserError(
			fmt.Sprintf("cannot open the %s counter store (use --backend memory to run without one)", settings.Storage.Backend), err)
	}
	cleanup := func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Warn("Failed to close counter store", "error", closeErr)
		}
	}

	return &appContext{
		settings: settings,
		store:    store,
		engine:   engine.New(store, opts...),
		renderer: cli.NewRenderer(i18n.New(settings.Language)),
	}, cleanup, nil
}

// joinArgs lets users pass a grouped OIB without quoting it.
func joinArgs(args []string) string {
	return strings.Join(args, "")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}

func writeLine(w io.Writer, s string) {
	if _, err := fmt.Fprintln(w, s); err != nil {
		slog.Error("failed to write output", "error", err)
	}
}

// parseSince accepts a duration ("24h"), an RFC 3339 timestamp or a date.
func parseSince(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if d, err := time.ParseDuration(s); err == nil {
		if d < 0 {
			return time.Time{}, fmt.Errorf("--since duration must be positive: %s", s)
		}
		return now.Add(-d), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("--since must be a duration (24h), RFC 3339 timestamp or date (2006-01-02): %q", s)
}
