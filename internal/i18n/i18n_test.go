package i18n

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"

	"github.com/Veraticus/oib/internal/oib"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		in   string
		want language.Tag
	}{
		{"en", language.English},
		{"hr", language.Croatian},
		{"hr-HR", language.Croatian},
		{" HR ", language.Croatian},
		{"de", language.English},
		{"", language.English},
		{"not a tag!", language.English},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Match(tt.in))
		})
	}
}

func TestEveryKeyTranslated(t *testing.T) {
	en := New("en")
	hr := New("hr")
	for _, e := range entries {
		assert.NotEqual(t, e.key, en.T(e.key), e.key)
		assert.NotEqual(t, e.key, hr.T(e.key), e.key)
		assert.NotEqual(t, e.en, e.hr, e.key)
	}
}

func TestHeadlineAndHint(t *testing.T) {
	en := New("en")
	hr := New("hr")

	valid := oib.Validate("69435151530")
	assert.Equal(t, "OIB is valid", en.Headline(valid))
	assert.Equal(t, "OIB je valjan", hr.Headline(valid))
	assert.Empty(t, en.Hint(valid))

	short := oib.Validate("1234567")
	assert.Equal(t, "OIB must have exactly 11 digits (entered: 7)", en.Headline(short))
	assert.Equal(t, "Dodajte nedostajuće znamenke", hr.Hint(short))

	long := oib.Validate("694351515301")
	assert.Equal(t, "Uklonite suvišne znamenke", hr.Hint(long))

	mismatch := oib.Validate("69435151531")
	assert.Equal(t, "The check digit should be 0 but 1 was entered", en.Hint(mismatch))
	assert.Equal(t, "Kontrolna znamenka trebala bi biti 0, a unesena je 1", hr.Hint(mismatch))

	for _, in := range []string{"", "12a", "00000000000", "11111111111"} {
		out := oib.Validate(in)
		assert.NotEmpty(t, en.Headline(out), in)
		assert.NotEmpty(t, hr.Hint(out), in)
	}
}

func TestNumber(t *testing.T) {
	assert.Equal(t, "1,234,567", New("en").Number(1234567))
	assert.Equal(t, "1.234.567", New("hr").Number(1234567))
	assert.Equal(t, "42", New("hr").Number(42))
}

func TestResolveTag(t *testing.T) {
	r := httptest.NewRequest("GET", "/v1/stats?lang=hr", nil)
	assert.Equal(t, language.Croatian, ResolveTag(r, language.English))

	r = httptest.NewRequest("GET", "/v1/stats", nil)
	r.Header.Set("Accept-Language", "hr-HR,hr;q=0.9,en;q=0.8")
	assert.Equal(t, language.Croatian, ResolveTag(r, language.English))

	r = httptest.NewRequest("GET", "/v1/stats", nil)
	assert.Equal(t, language.Croatian, ResolveTag(r, language.Croatian))
	assert.Equal(t, language.English, ResolveTag(nil, language.English))
}
