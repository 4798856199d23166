package doi

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Metadata is a partial model of the citeproc JSON returned by doi.org.
// Every field is optional; consumers decide which ones they require.
type Metadata struct {
	Title          Text     `json:"title"`
	ContainerTitle Text     `json:"container-title"`
	Author         []Author `json:"author"`
	Issued         *Date    `json:"issued"`
	ReferenceCount *int     `json:"reference-count"`
	ReferencedBy   *int     `json:"is-referenced-by-count"`
	DOI            string   `json:"DOI"`
	URL            string   `json:"URL"`
	Publisher      string   `json:"publisher"`
	Type           string   `json:"type"`
}

// Author is one CSL name. Institutional authors carry only Literal.
type Author struct {
	Given   string `json:"given"`
	Family  string `json:"family"`
	Literal string `json:"literal"`
	ORCID   string `json:"ORCID"`
}

// Date is a CSL date. Only the date-parts form is modelled.
type Date struct {
	DateParts [][]any `json:"date-parts"`
}

// Year returns the first element of the first date-parts entry.
// Resolvers emit it as a number and occasionally as a numeric string.
func (d *Date) Year() (int, bool) {
	if d == nil || len(d.DateParts) == 0 || len(d.DateParts[0]) == 0 {
		return 0, false
	}
	switch v := d.DateParts[0][0].(type) {
	case float64:
		if v <= 0 || v != float64(int(v)) {
			return 0, false
		}
		return int(v), true
	case string:
		y, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || y <= 0 {
			return 0, false
		}
		return y, true
	default:
		return 0, false
	}
}

// Year is a shorthand for m.Issued.Year().
func (m *Metadata) Year() (int, bool) {
	if m == nil {
		return 0, false
	}
	return m.Issued.Year()
}

// Text is a CSL string field that some registrants deliver as a list.
// The first element of a list is kept.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*t = Text(toString(v))
	return nil
}

func (t Text) String() string { return string(t) }

// toString coerces a string or first element of an array to a string.
func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		if len(t) > 0 {
			if s, ok := t[0].(string); ok {
				return s
			}
		}
	}
	return ""
}
