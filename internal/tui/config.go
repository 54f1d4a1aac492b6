package tui

import (
	"github.com/Veraticus/oib/internal/i18n"
	"github.com/Veraticus/oib/internal/tui/themes"
)

// Config holds TUI configuration.
type Config struct {
	Theme     themes.Theme
	Localizer *i18n.Localizer
	// Copy places text on the clipboard. Nil disables copying.
	Copy      func(text string) error
	Width     int
	Height    int
	AltScreen bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Theme:     themes.Default,
		Localizer: i18n.ForTag(i18n.Default()),
		Width:     80,
		Height:    24,
		AltScreen: true,
	}
}

// WithTheme sets the color theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithLocalizer sets the message language.
func WithLocalizer(loc *i18n.Localizer) Option {
	return func(c *Config) {
		if loc != nil {
			c.Localizer = loc
		}
	}
}

// WithClipboard enables copying generated identifiers.
func WithClipboard(copyFn func(text string) error) Option {
	return func(c *Config) {
		c.Copy = copyFn
	}
}

// WithAltScreen controls whether the TUI takes over the whole terminal.
func WithAltScreen(enabled bool) Option {
	return func(c *Config) {
		c.AltScreen = enabled
	}
}

// WithSize sets the initial dimensions before the first resize event.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}
