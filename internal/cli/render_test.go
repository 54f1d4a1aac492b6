package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/oib/internal/i18n"
	"github.com/Veraticus/oib/internal/model"
	"github.com/Veraticus/oib/internal/oib"
)

func TestRenderOutcome(t *testing.T) {
	r := NewRenderer(i18n.New("en"))

	valid := r.Outcome(oib.Validate("69435151530"))
	assert.Contains(t, valid, SuccessIcon)
	assert.Contains(t, valid, "OIB is valid")
	assert.Contains(t, valid, "69 435 151 530")

	mismatch := r.Outcome(oib.Validate("69435151531"))
	assert.Contains(t, mismatch, ErrorIcon)
	assert.Contains(t, mismatch, "69 435 151 531")
	assert.Contains(t, mismatch, "should be 0 but 1")

	short := r.Outcome(oib.Validate("123"))
	assert.Contains(t, short, "entered: 3")
	assert.Contains(t, short, "Add the missing digits")
}

func TestRenderOutcomeCroatian(t *testing.T) {
	r := NewRenderer(i18n.New("hr"))
	assert.Contains(t, r.Outcome(oib.Validate("")), "OIB ne može biti prazan")
	assert.Contains(t, r.Outcome(oib.Validate("11111111111")), "ponovljena 11 puta")
}

func TestNewRendererDefaultsToEnglish(t *testing.T) {
	r := NewRenderer(nil)
	assert.Contains(t, r.Outcome(oib.Validate("69435151530")), "OIB is valid")
}

func TestRenderTrace(t *testing.T) {
	r := NewRenderer(i18n.New("en"))

	out := r.Trace(oib.Trace("69435151530"))
	assert.Contains(t, out, "Check digit calculation")
	assert.Contains(t, out, "Step")
	assert.Contains(t, out, "Check digit: 11 - 1 = 10 → 0")
	// header, ten steps, blank line, result
	lines := strings.Split(out, "\n")
	assert.GreaterOrEqual(t, len(lines), 13)

	// The 0 -> 10 wrap is marked.
	wrapped := r.Trace(oib.Trace("00000000001"))
	assert.Contains(t, wrapped, "10*")
	assert.Contains(t, wrapped, "Check digit: 11 - 10 = 1")

	assert.Empty(t, r.Trace(nil))
}

func TestRenderStats(t *testing.T) {
	stats := &model.Stats{Generated: 1234567, Validated: 42}

	en := NewRenderer(i18n.New("en")).Stats(stats, nil)
	assert.Contains(t, en, "Usage statistics")
	assert.Contains(t, en, "1,234,567")
	assert.Contains(t, en, "1,234,609")

	hr := NewRenderer(i18n.New("hr")).Stats(stats, nil)
	assert.Contains(t, hr, "Statistike korištenja")
	assert.Contains(t, hr, "1.234.567")

	since := time.Date(2026, 1, 2, 3, 4, 0, 0, time.Local)
	windowed := NewRenderer(i18n.New("en")).Stats(&model.Stats{}, &since)
	assert.Contains(t, windowed, "since 2026-01-02 03:04")

	assert.Contains(t, NewRenderer(nil).Stats(nil, nil), "Total")
}

func TestRenderGenerated(t *testing.T) {
	r := NewRenderer(i18n.New("en"))
	assert.Equal(t, "69435151530", r.Generated("69435151530", FormatPlain))

	grouped := r.Generated("69435151530", FormatGrouped)
	assert.Contains(t, grouped, "69 435 151 530")
	assert.Contains(t, grouped, "Unformatted: 69435151530")
}
