package localnames

import (
	"strconv"
	"strings"
)

// typeReplacements is applied in order. Compound spellings come before the
// words they contain.
var typeReplacements = []struct {
	from, to string
}{
	{"volatile ", ""},
	{"*", "p"},
	{"unsigned int", "u32"},
	{"unsigned short", "u16"},
	{"unsigned char", "u8"},
	{"unsigned long", "u32"},
	{"int", "s32"},
	{"short", "s16"},
	{"char", "s8"},
	{"long", "s32"},
	{" ", "_"},
}

// BaseToken derives the naming stem from a rendered C type, e.g.
// "unsigned int" -> "u32" and "char *" -> "s8_p". Spellings without a
// replacement pass through with spaces turned into underscores. Characters
// that cannot appear in an identifier, together with the underscores next to
// them, collapse into a single underscore; a trailing run of them is dropped.
func BaseToken(rendered string) string {
	token := strings.TrimSpace(strings.ToLower(rendered))

	for _, r := range typeReplacements {
		token = strings.ReplaceAll(token, r.from, r.to)
	}

	return sanitizeIdentifier(token)
}

func sanitizeIdentifier(token string) string {
	var sb strings.Builder

	sb.Grow(len(token))

	// run counts the pending underscores and invalid characters; mixed marks
	// a run holding at least one invalid character.
	run, mixed := 0, false

	flush := func(last bool) {
		switch {
		case run == 0:
		case !mixed:
			sb.WriteString(strings.Repeat("_", run))
		case !last:
			sb.WriteByte('_')
		}

		run, mixed = 0, false
	}

	for _, r := range token {
		switch {
		case r == '_':
			run++
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			flush(false)
			sb.WriteRune(r)
		default:
			run++
			mixed = true
		}
	}

	flush(true)

	return sb.String()
}

// NameSynthesizer hands out names of the form {base}_{n}, counting from zero
// separately for every base token.
type NameSynthesizer struct {
	counters map[string]int
}

// NewNameSynthesizer returns a synthesizer with all counters at zero.
func NewNameSynthesizer() *NameSynthesizer {
	return &NameSynthesizer{counters: make(map[string]int)}
}

// Next returns the next name for base and advances its counter.
func (s *NameSynthesizer) Next(base string) string {
	n := s.counters[base]
	s.counters[base] = n + 1

	return base + "_" + strconv.Itoa(n)
}
