package translate

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Labeler derives a display label from a property name when the schema has no
// title.
type Labeler func(name string) string

// RawLabeler uses the property name unchanged.
func RawLabeler(name string) string { return name }

var splitWordsPattern = regexp.MustCompile(`[_\-\s]+`)

// HumanizeLabeler converts a property name into a human-friendly label. It
// splits on underscores, dashes and camelCase boundaries: zipCode becomes
// "Zip Code".
func HumanizeLabeler(name string) string {
	if name == "" {
		return ""
	}

	words := splitWordsPattern.Split(name, -1)
	var segments []string
	for _, word := range words {
		if word == "" {
			continue
		}
		segments = append(segments, titleCase(splitCamel(word)))
	}
	return strings.TrimSpace(strings.Join(segments, " "))
}

func splitCamel(input string) string {
	var (
		out  strings.Builder
		prev rune
	)
	for i, r := range input {
		if i > 0 && isBoundary(prev, r) {
			out.WriteRune(' ')
		}
		out.WriteRune(r)
		prev = r
	}
	return out.String()
}

func isBoundary(prev, r rune) bool {
	return (unicode.IsLower(prev) && unicode.IsUpper(r)) ||
		(unicode.IsLetter(prev) && unicode.IsDigit(r)) ||
		(unicode.IsDigit(prev) && unicode.IsLetter(r))
}

func titleCase(segment string) string {
	words := strings.Fields(segment)
	for i, word := range words {
		lower := strings.ToLower(word)
		first, size := utf8.DecodeRuneInString(lower)
		words[i] = string(unicode.ToUpper(first)) + lower[size:]
	}
	return strings.Join(words, " ")
}
