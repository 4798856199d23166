package sanitize

import (
	"net/url"
	"strings"

	"publist/src/internal/schema"
)

// CleanString trims and removes ASCII control characters except tab/newline/carriage
// return up to max runes (if max <= 0, no truncation).
func CleanString(s string, max int) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	// remove controls except \n, \t, \r
	var b strings.Builder
	n := 0
	for _, r := range s {
		if r == '\n' || r == '\t' || r == '\r' || (r >= 0x20 && r != 0x7f) {
			b.WriteRune(r)
			n++
			if max > 0 && n >= max {
				break
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// CleanLine is CleanString with internal whitespace runs collapsed to a single
// space. Titles from citeproc often carry embedded newlines and indentation.
func CleanLine(s string, max int) string {
	return CleanString(strings.Join(strings.Fields(s), " "), max)
}

// CleanURL returns a validated http/https URL or empty string.
func CleanURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	// remove embedded whitespace
	u.Path = strings.ReplaceAll(u.Path, " ", "%20")
	return u.String()
}

// CleanRecord applies conservative sanitization to the free-text fields of r.
// Authors and reference are composed markdown and are only trimmed.
func CleanRecord(r *schema.Record) {
	if r == nil {
		return
	}
	r.Title = CleanLine(r.Title, 1024)
	r.Journal = CleanLine(r.Journal, 512)
	r.Type = CleanString(r.Type, 64)
	r.Authors = strings.TrimSpace(r.Authors)
	r.Reference = strings.TrimSpace(r.Reference)
}
