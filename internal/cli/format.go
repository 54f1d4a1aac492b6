package cli

import (
	"strings"

	"github.com/Veraticus/oib/internal/oib"
)

// PreviewPlaceholder fills the positions of a partial identifier.
const PreviewPlaceholder = '·'

// Output formats for generated identifiers.
const (
	FormatGrouped = "grouped"
	FormatPlain   = "plain"
)

// group boundaries for XX XXX XXX XXX
var groupBreaks = map[int]bool{2: true, 5: true, 8: true}

// FormatOIB groups an eleven digit identifier as XX XXX XXX XXX. Any other
// input is returned unchanged.
func FormatOIB(s string) string {
	if len(s) != oib.Length || !oib.IsDigits(s) {
		return s
	}
	return groupRunes([]rune(s))
}

// FormatAs renders id in the named output format.
func FormatAs(id, format string) string {
	if format == FormatPlain {
		return id
	}
	return FormatOIB(id)
}

// PadPreview shows partial input as a grouped eleven place preview, with
// missing positions filled by a middle dot. Input longer than eleven
// characters is returned without grouping.
func PadPreview(input string) string {
	runes := []rune(oib.Strip(input))
	if len(runes) > oib.Length {
		return string(runes)
	}
	for len(runes) < oib.Length {
		runes = append(runes, PreviewPlaceholder)
	}
	return groupRunes(runes)
}

func groupRunes(runes []rune) string {
	var b strings.Builder
	for i, r := range runes {
		if groupBreaks[i] {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}
