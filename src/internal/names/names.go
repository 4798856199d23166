package names

import (
	"strings"
	"unicode"
)

// Initial reduces a given name to its first letter followed by a period:
// "Chris" -> "C.", "Jean-Luc" -> "J.". Leading punctuation is skipped.
func Initial(given string) string {
	for _, r := range strings.TrimSpace(given) {
		if unicode.IsLetter(r) {
			return string(unicode.ToUpper(r)) + "."
		}
	}
	return ""
}

// Credit formats an author as "Family, G." using only the first initial.
// A missing given name yields the family name alone.
func Credit(family, given string) string {
	family = strings.TrimSpace(family)
	if ini := Initial(given); ini != "" {
		return family + ", " + ini
	}
	return family
}

// Matches reports whether family contains highlight, ignoring case.
// An empty highlight never matches.
func Matches(family, highlight string) bool {
	highlight = strings.ToLower(strings.TrimSpace(highlight))
	if highlight == "" {
		return false
	}
	return strings.Contains(strings.ToLower(family), highlight)
}
