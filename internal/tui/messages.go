package tui

import (
	"github.com/Veraticus/oib/internal/engine"
	"github.com/Veraticus/oib/internal/model"
)

// validatedMsg carries the result of a counted validation.
type validatedMsg struct {
	stats  *model.Stats
	result engine.Result
}

// generatedMsg carries a freshly generated identifier.
type generatedMsg struct {
	err   error
	stats *model.Stats
	id    string
}

// statsLoadedMsg carries refreshed usage counters.
type statsLoadedMsg struct {
	err   error
	stats *model.Stats
}

// copiedMsg reports the outcome of a clipboard copy.
type copiedMsg struct {
	err error
	id  string
}
