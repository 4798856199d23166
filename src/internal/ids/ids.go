// Package ids cleans and merges DOI lists gathered from several sources.
package ids

import (
	"regexp"
	"strings"
)

var doiRegex = regexp.MustCompile(`(?i)10\.\d{4,9}/[-._;()/:A-Z0-9<>\[\]]+`)

// prefixes that registries put in front of a bare DOI
var prefixes = []string{
	"https://doi.org/",
	"http://doi.org/",
	"https://dx.doi.org/",
	"http://dx.doi.org/",
	"doi.org/",
	"dx.doi.org/",
	"doi:",
}

// Clean normalizes a DOI as delivered by a registry: surrounding space and
// a resolver URL or "doi:" prefix are removed. The rest is returned as is,
// since identifiers are opaque to the rest of the pipeline.
func Clean(s string) string {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)
	for _, p := range prefixes {
		if strings.HasPrefix(lower, p) {
			return strings.TrimSpace(s[len(p):])
		}
	}
	return s
}

// Key is the comparison key for a DOI. DOIs are case-insensitive.
func Key(s string) string { return strings.ToLower(Clean(s)) }

// Merge combines lists into one deduplicated list. The first spelling seen of
// each identifier wins and first-seen order is preserved. Blank values are
// dropped.
func Merge(lists ...[]string) []string {
	seen := map[string]bool{}
	var out []string
	for _, list := range lists {
		for _, v := range list {
			c := Clean(v)
			if c == "" {
				continue
			}
			k := strings.ToLower(c)
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, c)
		}
	}
	return out
}

// Find extracts the first DOI-looking token from free text, or "".
func Find(text string) string {
	m := doiRegex.FindString(text)
	return strings.TrimRight(m, ".,;")
}
