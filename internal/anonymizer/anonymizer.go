package anonymizer

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Pattern-based PII masking tuned for Hungarian text. This is deliberately an
// MVP matcher, not a named-entity recognizer: false positives on ambiguous
// digit strings are accepted behavior.
var (
	emailRe = regexp.MustCompile(`(?i)\b[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}\b`)
	phoneRe = regexp.MustCompile(`(?:\+?36|06)?[\s-]?(?:1|20|30|31|50|70|90)?[\s-]?\d{2,3}[\s-]?\d{3,4}`)
	ibanRe  = regexp.MustCompile(`(?i)\bHU\d{2}(?:[\s-]?\d){26}\b`)
	cardRe  = regexp.MustCompile(`(?:\d{4}[-\s]?){3}\d{4}`)

	// Simplified Hungarian street address: capitalized phrase, street-type
	// token, building number. No \b anchors: ASCII \b misses boundaries at
	// accented initials, so whole-word matching is guarded in code instead.
	addressRe = regexp.MustCompile(`(?i)([A-ZÁÉÍÓÖŐÚÜŰ][\wÁÉÍÓÖŐÚÜŰ\- ]+?)\s+(utca|u\.|út|tér|krt\.|körút|köz|sétány|sugárút)\s+\d+[A-Za-z]?`)

	// Spelled-out digits, 0-9 (with common unaccented variants).
	digitWordRe = regexp.MustCompile(`(?i)(nulla|egy|kettő|ketto|két|harom|három|négy|negy|öt|ot|hat|hét|het|nyolc|kilenc)`)

	// Remaining long numeric identifiers.
	longNumberRe = regexp.MustCompile(`\d{6,}`)

	multiSpaceRe = regexp.MustCompile(`\s{2,}`)
)

// Service applies the fixed-order PII substitutions. It is a pure function
// over its input apart from logging.
type Service struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger}
}

// Anonymize masks PII patterns in the given text. Longer, more specific
// patterns run before the generic long-digit fallback so already-masked spans
// are not masked twice. Empty or whitespace-only input is returned unchanged.
func (s *Service) Anonymize(text string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}

	out := text
	out = emailRe.ReplaceAllString(out, "[EMAIL]")
	out = replaceGuarded(out, phoneRe, "[PHONE]", digitGuard)
	out = ibanRe.ReplaceAllString(out, "[IBAN]")
	out = replaceGuarded(out, cardRe, "[CARD]", digitGuard)
	out = replaceGuarded(out, addressRe, "[ADDRESS]", letterGuard)
	out = replaceGuarded(out, digitWordRe, "[NUMBER]", letterGuard)
	out = replaceGuarded(out, longNumberRe, "[ID]", digitGuard)
	out = strings.TrimSpace(multiSpaceRe.ReplaceAllString(out, " "))

	if out != text {
		s.logger.Debug("anonymized text", zap.Int("in_len", len(text)), zap.Int("out_len", len(out)))
	}
	return out
}

// digitGuard rejects matches adjacent to further digits, standing in for the
// (?<!\d)...(?!\d) lookarounds RE2 does not support.
func digitGuard(prev, next rune) bool {
	return !unicode.IsDigit(prev) && !unicode.IsDigit(next)
}

// letterGuard keeps only whole words, including words with accented letters
// that ASCII \b would split.
func letterGuard(prev, next rune) bool {
	return !unicode.IsLetter(prev) && !unicode.IsLetter(next)
}

// replaceGuarded substitutes every match of re whose neighbouring runes pass
// the guard with token.
func replaceGuarded(s string, re *regexp.Regexp, token string, guard func(prev, next rune) bool) string {
	matches := re.FindAllStringIndex(s, -1)
	if matches == nil {
		return s
	}
	var b strings.Builder
	last := 0
	for _, m := range matches {
		if !guard(runeBefore(s, m[0]), runeAt(s, m[1])) {
			continue
		}
		b.WriteString(s[last:m[0]])
		b.WriteString(token)
		last = m[1]
	}
	b.WriteString(s[last:])
	return b.String()
}

func runeBefore(s string, i int) rune {
	if i <= 0 {
		return 0
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return r
}

func runeAt(s string, i int) rune {
	if i >= len(s) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return r
}
