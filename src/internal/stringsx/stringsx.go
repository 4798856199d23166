package stringsx

import "strings"

// FirstNonEmpty returns the first string in vals that is non-empty when trimmed.
func FirstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

// Or returns the trimmed value, or def when it is blank.
func Or(v, def string) string {
	if s := strings.TrimSpace(v); s != "" {
		return s
	}
	return def
}
