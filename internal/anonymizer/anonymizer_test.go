package anonymizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestAnonymizeEmail(t *testing.T) {
	s := New(zap.NewNop())
	got := s.Anonymize("Elérhetőség: john.doe@example.com")
	assert.Equal(t, "Elérhetőség: [EMAIL]", got)
}

func TestAnonymizePhone(t *testing.T) {
	s := New(zap.NewNop())
	got := s.Anonymize("Hívj: +36 30 123 4567!")
	assert.Equal(t, "Hívj: [PHONE]!", got)
}

func TestAnonymizeAddress(t *testing.T) {
	s := New(zap.NewNop())
	got := s.Anonymize("Lakcím: Kossuth Lajos utca 12")
	assert.Equal(t, "Lakcím: [ADDRESS]", got)
}

func TestAnonymizeAddressWithAccentedInitial(t *testing.T) {
	s := New(zap.NewNop())
	// ASCII \b has no boundary before an accented capital; the guarded
	// replacement must still mask the whole address.
	got := s.Anonymize("Lakcím: Árpád utca 5")
	assert.Equal(t, "Lakcím: [ADDRESS]", got)

	got = s.Anonymize("Lakcím: Üllői út 10")
	assert.Equal(t, "Lakcím: [ADDRESS]", got)
}

func TestAnonymizeDigitWords(t *testing.T) {
	s := New(zap.NewNop())
	got := s.Anonymize("A kód: három öt kettő")
	assert.Equal(t, "A kód: [NUMBER] [NUMBER] [NUMBER]", got)
}

func TestAnonymizeDigitWordInsideWordKept(t *testing.T) {
	s := New(zap.NewNop())
	// "hat" appears inside the word but is not a standalone number word here.
	got := s.Anonymize("hatékony megoldás")
	assert.Equal(t, "hatékony megoldás", got)
}

func TestAnonymizeLongNumber(t *testing.T) {
	s := New(zap.NewNop())
	// Nine digits cannot form a phone shape, so the generic fallback applies.
	got := s.Anonymize("Azonosító: 123456789")
	assert.Equal(t, "Azonosító: [ID]", got)
}

func TestAnonymizeEightDigitsLooksLikePhone(t *testing.T) {
	s := New(zap.NewNop())
	// Accepted false positive: an eight-digit run fits the phone shape and
	// the phone pattern runs before the long-number fallback.
	got := s.Anonymize("Ügyfélszám: 12345678")
	assert.Equal(t, "Ügyfélszám: [PHONE]", got)
}

func TestAnonymizeMasksAllDigits(t *testing.T) {
	s := New(zap.NewNop())
	inputs := []string{
		"Kártya: 1234-5678-9012-3456",
		"IBAN: HU42 1177 3016 1111 1018 0000 0000 11",
		"Tel: 06 70 555 1234, ügyfélszám 987654321",
	}
	for _, in := range inputs {
		got := s.Anonymize(in)
		assert.NotRegexp(t, `\d{5,}`, got, "input %q", in)
	}
}

func TestAnonymizeWhitespaceCollapsed(t *testing.T) {
	s := New(zap.NewNop())
	got := s.Anonymize("  hello   world  ")
	assert.Equal(t, "hello world", got)
}

func TestAnonymizeEmptyUnchanged(t *testing.T) {
	s := New(zap.NewNop())
	assert.Equal(t, "", s.Anonymize(""))
	assert.Equal(t, "   ", s.Anonymize("   "))
}

func TestAnonymizeIdempotent(t *testing.T) {
	s := New(zap.NewNop())
	inputs := []string{
		"Írj a john@example.com címre vagy hívd a +36 20 123 4567 számot.",
		"Cím: Petőfi Sándor utca 3, kód: öt hat",
		"Azonosító: 123456789",
	}
	for _, in := range inputs {
		once := s.Anonymize(in)
		assert.Equal(t, once, s.Anonymize(once), "input %q", in)
	}
}
