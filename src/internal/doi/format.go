package doi

import (
	"fmt"
	"strings"
)

// Format selects the representation requested from the resolver.
type Format int

const (
	// FormatCiteproc is structured CSL JSON metadata.
	FormatCiteproc Format = iota + 1
	// FormatBibTeX is a raw BibTeX record.
	FormatBibTeX
	// FormatReference is a plain APA-style citation string.
	FormatReference
)

var formatNames = map[Format]string{
	FormatCiteproc:  "citeproc",
	FormatBibTeX:    "bibtex",
	FormatReference: "reference",
}

func (f Format) String() string {
	if n, ok := formatNames[f]; ok {
		return n
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Accept returns the content negotiation header value for f.
func (f Format) Accept() (string, error) {
	switch f {
	case FormatCiteproc:
		return "application/citeproc+json", nil
	case FormatBibTeX:
		return "application/x-bibtex", nil
	case FormatReference:
		return "text/x-bibliography; style=apa", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidFormat, f)
	}
}

// ParseFormat maps a user-facing name to a Format. "dict" and "json" are
// accepted as aliases of citeproc, "apa" of reference.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "citeproc", "dict", "json", "csl":
		return FormatCiteproc, nil
	case "bibtex", "bib":
		return FormatBibTeX, nil
	case "reference", "apa", "text":
		return FormatReference, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}
}
