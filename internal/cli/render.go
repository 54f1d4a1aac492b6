package cli

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Veraticus/oib/internal/i18n"
	"github.com/Veraticus/oib/internal/model"
	"github.com/Veraticus/oib/internal/oib"
)

// Renderer turns engine results into localized terminal output.
type Renderer struct {
	loc *i18n.Localizer
}

// NewRenderer creates a renderer for the given localizer. A nil localizer
// renders English.
func NewRenderer(loc *i18n.Localizer) *Renderer {
	if loc == nil {
		loc = i18n.ForTag(i18n.Default())
	}
	return &Renderer{loc: loc}
}

// Localizer returns the renderer's localizer.
func (r *Renderer) Localizer() *i18n.Localizer {
	return r.loc
}

// Outcome renders a validation result: a status line, the grouped identifier
// when the input was eleven digits, and the follow-up hint when invalid.
func (r *Renderer) Outcome(out oib.Outcome) string {
	var b strings.Builder

	headline := r.loc.Headline(out)
	if out.Valid {
		b.WriteString(FormatSuccess(headline))
	} else {
		b.WriteString(FormatError(headline))
	}

	if out.HasDigits {
		b.WriteString("  ")
		b.WriteString(IdentifierStyle.Render(FormatOIB(out.Normalized)))
	}

	if hint := r.loc.Hint(out); hint != "" {
		b.WriteString("\n  ")
		b.WriteString(SubtleStyle.Render(hint))
	}
	return b.String()
}

// Trace renders the calculation steps as a table followed by the derived
// check digit. An empty trace renders nothing.
func (r *Renderer) Trace(steps []oib.Step) string {
	if len(steps) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(FormatTitle(CalcIcon, r.loc.T(i18n.KeyTraceTitle)))
	b.WriteString("\n")

	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(w, "%s\t%s\tacc\t+d\tmod 10\t×2\tmod 11\t\n",
		r.loc.T(i18n.KeyTraceStep), r.loc.T(i18n.KeyTraceDigit))
	for _, s := range steps {
		mod10 := strconv.Itoa(s.AfterMod10)
		if s.AfterAdd%10 == 0 {
			mod10 += "*"
		}
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%s\t%d\t%d\t\n",
			s.Index, s.Digit, s.BeforeAdd, s.AfterAdd, mod10, s.AfterDouble, s.AfterMod11)
	}
	_ = w.Flush()

	acc := oib.FinalAccumulator(steps)
	check, _ := oib.CheckDigitFromTrace(steps)
	line := fmt.Sprintf("%s: 11 - %d = %d", r.loc.T(i18n.KeyCheckDigit), acc, 11-acc)
	if check != 11-acc {
		line += fmt.Sprintf(" → %d", check)
	}
	b.WriteString("\n")
	b.WriteString(IdentifierStyle.Render(line))
	return b.String()
}

// Stats renders the usage counters in a box. since is optional and labels a
// windowed report.
func (r *Renderer) Stats(stats *model.Stats, since *time.Time) string {
	if stats == nil {
		stats = &model.Stats{}
	}

	title := ChartIcon + " " + r.loc.T(i18n.KeyStatsTitle)
	if since != nil {
		title += " (" + r.loc.T(i18n.KeyStatsSince, since.Local().Format("2006-01-02 15:04")) + ")"
	}

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", r.loc.T(i18n.KeyGenerated), SuccessStyle.Render(r.loc.Number(stats.Generated)))
	fmt.Fprintf(w, "%s\t%s\n", r.loc.T(i18n.KeyValidated), InfoStyle.Render(r.loc.Number(stats.Validated)))
	fmt.Fprintf(w, "%s\t%s", r.loc.T(i18n.KeyTotal), r.loc.Number(stats.Total()))
	_ = w.Flush()

	return RenderBox(title, b.String())
}

// Generated renders a freshly generated identifier in the requested format,
// with the unformatted value underneath when grouped.
func (r *Renderer) Generated(id, format string) string {
	if format == FormatPlain {
		return id
	}
	return IdentifierStyle.Render(FormatOIB(id)) + "\n" +
		SubtleStyle.Render(r.loc.T(i18n.KeyUnformatted, id))
}
