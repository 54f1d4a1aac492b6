package tui

import (
	"context"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/oib/internal/model"
)

const storeTimeout = 5 * time.Second

// loadStats reads the usage counters.
func (m Model) loadStats() tea.Cmd {
	eng := m.engine
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		stats, err := eng.Stats(ctx)
		return statsLoadedMsg{stats: stats, err: err}
	}
}

// validate runs a counted validation of input.
func (m Model) validate(input string) tea.Cmd {
	eng := m.engine
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		result := eng.Validate(ctx, input)
		return validatedMsg{result: result, stats: refreshStats(ctx, eng)}
	}
}

// generate asks the engine for a new identifier.
func (m Model) generate() tea.Cmd {
	eng := m.engine
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		id, err := eng.Generate(ctx)
		if err != nil {
			return generatedMsg{err: err}
		}
		return generatedMsg{id: id, stats: refreshStats(ctx, eng)}
	}
}

// copyGenerated puts id on the clipboard.
func (m Model) copyGenerated(id string) tea.Cmd {
	copyFn := m.config.Copy
	return func() tea.Msg {
		return copiedMsg{id: id, err: copyFn(id)}
	}
}

func refreshStats(ctx context.Context, eng Engine) *model.Stats {
	stats, err := eng.Stats(ctx)
	if err != nil {
		slog.Debug("Failed to refresh stats", "error", err)
		return nil
	}
	return stats
}
