// Package i18n holds the English and Croatian message catalog used by every
// user-facing surface.
package i18n

import (
	"net/http"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/Veraticus/oib/internal/oib"
)

// LangParam is the query parameter used to select a language over HTTP.
const LangParam = "lang"

// Message keys.
const (
	KeyValid           = "oib.valid"
	KeyEmpty           = "oib.empty"
	KeyEmptyHint       = "oib.empty.hint"
	KeyNonDigit        = "oib.non_digit"
	KeyNonDigitHint    = "oib.non_digit.hint"
	KeyWrongLength     = "oib.wrong_length"
	KeyTooShortHint    = "oib.too_short.hint"
	KeyTooLongHint     = "oib.too_long.hint"
	KeyAllZero         = "oib.all_zero"
	KeyRepeated        = "oib.repeated_digit"
	KeyEnterValid      = "oib.enter_valid.hint"
	KeyMismatch        = "oib.checksum_mismatch"
	KeyMismatchHint    = "oib.checksum_mismatch.hint"
	KeyGenFailed       = "generate.failed"
	KeyCopied          = "clipboard.copied"
	KeyCopyFailed      = "clipboard.failed"
	KeyStatsTitle      = "stats.title"
	KeyGenerated       = "stats.generated"
	KeyValidated       = "stats.validated"
	KeyTotal           = "stats.total"
	KeyStatsSince      = "stats.since"
	KeyTraceTitle      = "trace.title"
	KeyTraceStep       = "trace.step"
	KeyTraceDigit      = "trace.digit"
	KeyCheckDigit      = "trace.check_digit"
	KeyPlaceholder     = "input.placeholder"
	KeyUnformatted     = "generate.unformatted"
	KeyGenerating      = "generate.progress"
	KeyTestOnly        = "generate.test_only"
	KeyInteractiveHelp = "interactive.help"
)

type entry struct {
	key string
	en  string
	hr  string
}

var entries = []entry{
	{KeyValid, "OIB is valid", "OIB je valjan"},
	{KeyEmpty, "OIB cannot be empty", "OIB ne može biti prazan"},
	{KeyEmptyHint, "Please enter an OIB", "Molimo unesite OIB broj"},
	{KeyNonDigit, "OIB may only contain digits", "OIB može sadržavati samo brojeve"},
	{KeyNonDigitHint, "Remove every character that is not a digit", "Uklonite sve znakove koji nisu brojevi"},
	{KeyWrongLength, "OIB must have exactly 11 digits (entered: %d)", "OIB mora imati točno 11 znamenaka (uneseno: %d)"},
	{KeyTooShortHint, "Add the missing digits", "Dodajte nedostajuće znamenke"},
	{KeyTooLongHint, "Remove the extra digits", "Uklonite suvišne znamenke"},
	{KeyAllZero, "OIB cannot be all zeros", "OIB ne može biti samo nule"},
	{KeyRepeated, "OIB cannot be the same digit repeated 11 times", "OIB ne može biti ista znamenka ponovljena 11 puta"},
	{KeyEnterValid, "Enter a valid OIB", "Unesite valjan OIB broj"},
	{KeyMismatch, "OIB is not valid: the check digit does not match", "OIB nije valjan - kontrolna znamenka ne odgovara"},
	{KeyMismatchHint, "The check digit should be %d but %d was entered", "Kontrolna znamenka trebala bi biti %d, a unesena je %d"},
	{KeyGenFailed, "Generated OIB is not valid. Please try again.", "Generirani OIB nije valjan. Molimo pokušajte ponovno."},
	{KeyCopied, "OIB copied to clipboard", "OIB je kopiran u međuspremnik"},
	{KeyCopyFailed, "Could not copy OIB", "Nije moguće kopirati OIB"},
	{KeyStatsTitle, "Usage statistics", "Statistike korištenja"},
	{KeyGenerated, "Generated", "Generiranje"},
	{KeyValidated, "Validated", "Validacija"},
	{KeyTotal, "Total", "Ukupno"},
	{KeyStatsSince, "since %s", "od %s"},
	{KeyTraceTitle, "Check digit calculation", "Detaljni izračun"},
	{KeyTraceStep, "Step", "Korak"},
	{KeyTraceDigit, "Digit", "Znamenka"},
	{KeyCheckDigit, "Check digit", "Kontrolna znamenka"},
	{KeyPlaceholder, "Enter an 11-digit OIB", "Unesite 11-znamenkasti OIB"},
	{KeyUnformatted, "Unformatted: %s", "Neformatirano: %s"},
	{KeyGenerating, "Generating", "Generiranje"},
	{KeyTestOnly, "For software testing only. Generated numbers do not belong to real people.",
		"Isključivo za testiranje softvera. Generirani brojevi ne pripadaju stvarnim osobama."},
	{KeyInteractiveHelp, "enter validate • ctrl+g generate • ctrl+y copy • ctrl+u use • ctrl+t steps • ctrl+l clear • esc quit",
		"enter provjeri • ctrl+g generiraj • ctrl+y kopiraj • ctrl+u koristi • ctrl+t koraci • ctrl+l očisti • esc izlaz"},
}

var supportedTags = []language.Tag{
	language.English,
	language.Croatian,
}

var (
	tagMatcher = language.NewMatcher(supportedTags)
	messages   = mustBuildCatalog()
)

func mustBuildCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for _, e := range entries {
		if err := b.SetString(language.English, e.key, e.en); err != nil {
			panic(err)
		}
		if err := b.SetString(language.Croatian, e.key, e.hr); err != nil {
			panic(err)
		}
	}
	return b
}

// Supported returns the list of supported language tags.
func Supported() []language.Tag {
	tags := make([]language.Tag, len(supportedTags))
	copy(tags, supportedTags)
	return tags
}

// Default returns the default language tag.
func Default() language.Tag {
	return language.English
}

// Match maps any language string ("hr", "hr-HR", "en-GB") onto a supported
// tag, falling back to English.
func Match(lang string) language.Tag {
	tag, err := language.Parse(strings.TrimSpace(lang))
	if err != nil {
		return Default()
	}
	_, idx, conf := tagMatcher.Match(tag)
	if conf == language.No {
		return Default()
	}
	return supportedTags[idx]
}

// ResolveTag picks the language for an HTTP request from the lang query
// parameter, then Accept-Language, then the fallback.
func ResolveTag(r *http.Request, fallback language.Tag) language.Tag {
	if r == nil {
		return fallback
	}
	if lang := strings.TrimSpace(r.URL.Query().Get(LangParam)); lang != "" {
		return Match(lang)
	}
	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			_, idx, conf := tagMatcher.Match(tags...)
			if conf != language.No {
				return supportedTags[idx]
			}
		}
	}
	return fallback
}

// Localizer renders catalog messages and numbers for one language.
type Localizer struct {
	printer *message.Printer
	tag     language.Tag
}

// New returns a Localizer for the given language string.
func New(lang string) *Localizer {
	return ForTag(Match(lang))
}

// ForTag returns a Localizer for an already matched tag.
func ForTag(tag language.Tag) *Localizer {
	return &Localizer{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(messages)),
	}
}

// Tag returns the localizer's language.
func (l *Localizer) Tag() language.Tag {
	return l.tag
}

// T renders a catalog message.
func (l *Localizer) T(key string, args ...any) string {
	return l.printer.Sprintf(key, args...)
}

// Number formats n with the language's digit grouping.
func (l *Localizer) Number(n int64) string {
	return l.printer.Sprintf("%d", n)
}

// Headline returns the one-line message for a validation outcome.
func (l *Localizer) Headline(out oib.Outcome) string {
	switch out.Reason {
	case oib.ReasonNone:
		return l.T(KeyValid)
	case oib.ReasonEmpty:
		return l.T(KeyEmpty)
	case oib.ReasonNonDigit:
		return l.T(KeyNonDigit)
	case oib.ReasonWrongLength:
		return l.T(KeyWrongLength, out.Length)
	case oib.ReasonAllZero:
		return l.T(KeyAllZero)
	case oib.ReasonRepeatedDigit:
		return l.T(KeyRepeated)
	case oib.ReasonChecksumMismatch:
		return l.T(KeyMismatch)
	default:
		return out.Reason.String()
	}
}

// Hint returns the follow-up advice for a rejected outcome, or "" when the
// outcome is valid.
func (l *Localizer) Hint(out oib.Outcome) string {
	switch out.Reason {
	case oib.ReasonEmpty:
		return l.T(KeyEmptyHint)
	case oib.ReasonNonDigit:
		return l.T(KeyNonDigitHint)
	case oib.ReasonWrongLength:
		if out.LengthIssue == oib.LengthTooShort {
			return l.T(KeyTooShortHint)
		}
		return l.T(KeyTooLongHint)
	case oib.ReasonAllZero, oib.ReasonRepeatedDigit:
		return l.T(KeyEnterValid)
	case oib.ReasonChecksumMismatch:
		return l.T(KeyMismatchHint, out.Expected, out.Provided)
	default:
		return ""
	}
}
