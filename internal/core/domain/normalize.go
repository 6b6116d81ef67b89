package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeName lowercases, strips diacritics, and collapses whitespace in a
// player or runner display name, so that feed variants like "Núñez" and
// "Nunez" resolve to the same Player identity. Adapted from the teacher's
// internal/core/ticker/normalize.go, dropping its alias-map resolution step
// (team aliasing has no equivalent here: player identity is keyed on the
// normalised name alone).
func NormalizeName(s string) string {
	if s == "" {
		return ""
	}
	s = stripDiacritics(s)
	s = strings.ToLower(strings.TrimSpace(s))
	return collapseWhitespace(s)
}

func stripDiacritics(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range norm.NFD.String(s) {
		if !unicode.Is(unicode.Mn, r) { // Mn = Mark, Nonspacing (combining accents)
			b.WriteRune(r)
		}
	}
	return b.String()
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
