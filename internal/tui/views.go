package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/oib/internal/cli"
	"github.com/Veraticus/oib/internal/i18n"
	"github.com/Veraticus/oib/internal/oib"
)

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{
		m.theme.Title.Render(cli.IDIcon + " OIB"),
		m.input.View(),
		m.theme.Preview.Render(cli.PadPreview(m.input.Value())),
	}

	if status := m.renderOutcome(); status != "" {
		sections = append(sections, "", status)
	}

	if m.showSteps && m.result != nil && len(m.result.Steps) > 0 {
		sections = append(sections, "", cli.NewRenderer(m.loc).Trace(m.result.Steps))
	}

	if m.generated != "" {
		sections = append(sections, "", m.renderGenerated())
	}

	sections = append(sections, "", m.renderStats())

	if m.status != "" {
		style := m.theme.StatusInfo
		if m.statusErr {
			style = m.theme.StatusError
		}
		sections = append(sections, style.Render(m.status))
	}

	sections = append(sections, m.theme.Help.Render(m.loc.T(i18n.KeyInteractiveHelp)))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderOutcome shows the counted result if there is one, otherwise the live
// check of what has been typed so far.
func (m Model) renderOutcome() string {
	var out oib.Outcome
	switch {
	case m.result != nil:
		out = m.result.Outcome
	case strings.TrimSpace(m.input.Value()) != "":
		out = m.live()
	default:
		return ""
	}

	var b strings.Builder
	if out.Valid {
		b.WriteString(m.theme.StatusSuccess.Render(cli.SuccessIcon + " " + m.loc.Headline(out)))
	} else {
		b.WriteString(m.theme.StatusError.Render(cli.ErrorIcon + " " + m.loc.Headline(out)))
	}
	if hint := m.loc.Hint(out); hint != "" {
		b.WriteString("\n")
		b.WriteString(m.theme.Subtitle.Render(hint))
	}
	return b.String()
}

func (m Model) renderGenerated() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		m.theme.Identifier.Render(cli.FormatOIB(m.generated)),
		m.theme.Subtitle.Render(m.loc.T(i18n.KeyUnformatted, m.generated)),
		m.theme.Subtitle.Render(m.loc.T(i18n.KeyTestOnly)),
	)
	return m.theme.RoundedBox.Render(content)
}

func (m Model) renderStats() string {
	var generated, validated int64
	if m.stats != nil {
		generated = m.stats.Generated
		validated = m.stats.Validated
	}
	return m.theme.Subtitle.Render(cli.ChartIcon + " " +
		m.loc.T(i18n.KeyGenerated) + ": " + m.loc.Number(generated) + "   " +
		m.loc.T(i18n.KeyValidated) + ": " + m.loc.Number(validated))
}
