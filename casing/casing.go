// Package casing converts property names into identifier casings for
// case-transformed output keys.
package casing

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Words splits name on separators and case boundaries.
// "mobile_number" -> [mobile number], "XMLHttpRequest" -> [XML Http Request].
func Words(name string) []string {
	rs := []rune(name)
	var words []string
	start := -1
	flush := func(end int) {
		if start >= 0 && end > start {
			words = append(words, string(rs[start:end]))
		}
		start = -1
	}
	for i, r := range rs {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush(i)
			continue
		}
		if start < 0 {
			start = i
			continue
		}
		prev := rs[i-1]
		switch {
		case unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
			flush(i)
			start = i
		case unicode.IsUpper(r) && unicode.IsUpper(prev) && i+1 < len(rs) && unicode.IsLower(rs[i+1]):
			flush(i)
			start = i
		}
	}
	flush(len(rs))
	return words
}

// ToCamelCase converts name to lowerCamelCase. Names without any letter or
// digit are returned unchanged.
func ToCamelCase(name string) string {
	words := Words(name)
	if len(words) == 0 {
		return name
	}
	lower := cases.Lower(language.Und)
	title := cases.Title(language.Und)
	var b strings.Builder
	b.WriteString(lower.String(words[0]))
	for _, w := range words[1:] {
		b.WriteString(title.String(w))
	}
	return b.String()
}
