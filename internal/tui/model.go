// Package tui implements the interactive validator and generator.
package tui

import (
	"context"
	"log/slog"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/oib/internal/engine"
	"github.com/Veraticus/oib/internal/i18n"
	"github.com/Veraticus/oib/internal/model"
	"github.com/Veraticus/oib/internal/oib"
	"github.com/Veraticus/oib/internal/tui/themes"
)

// inputLimit leaves room for a grouped identifier plus stray characters.
const inputLimit = 20

// Engine is the subset of engine.Engine the TUI drives.
type Engine interface {
	Validate(ctx context.Context, input string) engine.Result
	Generate(ctx context.Context) (string, error)
	Stats(ctx context.Context) (*model.Stats, error)
}

// Model holds the TUI state.
type Model struct {
	theme     themes.Theme
	engine    Engine
	loc       *i18n.Localizer
	stats     *model.Stats
	result    *engine.Result
	keymap    KeyMap
	config    Config
	input     textinput.Model
	generated string
	status    string
	width     int
	height    int
	statusErr bool
	showSteps bool
	quitting  bool
}

// New creates the TUI model.
func New(eng Engine, opts ...Option) Model {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	ti := textinput.New()
	ti.Placeholder = cfg.Localizer.T(i18n.KeyPlaceholder)
	ti.CharLimit = inputLimit
	ti.Width = inputLimit
	ti.Prompt = "OIB › "
	ti.Focus()

	return Model{
		theme:  cfg.Theme,
		engine: eng,
		loc:    cfg.Localizer,
		keymap: DefaultKeyMap(),
		config: cfg,
		input:  ti,
		width:  cfg.Width,
		height: cfg.Height,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadStats())
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case validatedMsg:
		m.result = &msg.result
		m.setStats(msg.stats)
		m.clearStatus()
		return m, nil

	case generatedMsg:
		if msg.err != nil {
			slog.Warn("Generation failed", "error", msg.err)
			m.setStatus(m.loc.T(i18n.KeyGenFailed), true)
			return m, nil
		}
		m.generated = msg.id
		m.setStats(msg.stats)
		m.clearStatus()
		return m, nil

	case statsLoadedMsg:
		if msg.err != nil {
			slog.Debug("Failed to load stats", "error", msg.err)
			return m, nil
		}
		m.setStats(msg.stats)
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			slog.Debug("Clipboard copy failed", "error", msg.err)
			m.setStatus(m.loc.T(i18n.KeyCopyFailed), true)
		} else {
			m.setStatus(m.loc.T(i18n.KeyCopied), false)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Validate):
		return m, m.validate(m.input.Value())

	case key.Matches(msg, m.keymap.Generate):
		return m, m.generate()

	case key.Matches(msg, m.keymap.Copy):
		if m.generated == "" {
			return m, nil
		}
		if m.config.Copy == nil {
			m.setStatus(m.loc.T(i18n.KeyCopyFailed), true)
			return m, nil
		}
		return m, m.copyGenerated(m.generated)

	case key.Matches(msg, m.keymap.UseGenerated):
		if m.generated == "" {
			return m, nil
		}
		m.input.SetValue(m.generated)
		return m, m.validate(m.generated)

	case key.Matches(msg, m.keymap.ToggleSteps):
		m.showSteps = !m.showSteps
		return m, nil

	case key.Matches(msg, m.keymap.Clear):
		m.input.Reset()
		m.result = nil
		m.clearStatus()
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		// The counted result belongs to the old input.
		m.result = nil
	}
	return m, cmd
}

// live validates the current input without counting it.
func (m Model) live() oib.Outcome {
	return oib.Validate(m.input.Value())
}

func (m *Model) setStats(stats *model.Stats) {
	if stats != nil {
		m.stats = stats
	}
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

func (m *Model) clearStatus() {
	m.status = ""
	m.statusErr = false
}
