// Package normalize turns resolver metadata into fixed-shape publication rows.
package normalize

import (
	"errors"
	"fmt"
	"strings"

	"publist/src/internal/doi"
	"publist/src/internal/names"
	"publist/src/internal/sanitize"
	"publist/src/internal/schema"
	"publist/src/internal/stringsx"
)

// ErrMalformedRecord is returned when a required field is missing. The record
// returned alongside it is empty.
var ErrMalformedRecord = errors.New("malformed record")

// Normalizer maps metadata to rows. Highlight is a family name (matched
// case-insensitively) to emphasise in author lists; empty disables it.
type Normalizer struct {
	Highlight string
}

// Normalize builds the row for id. Optional fields degrade to schema.NoData;
// a missing issued year yields the empty record and ErrMalformedRecord.
func (n Normalizer) Normalize(id string, m *doi.Metadata) (schema.Record, error) {
	if m == nil {
		return schema.Record{}, fmt.Errorf("%w: %s: no metadata", ErrMalformedRecord, id)
	}
	year, ok := m.Year()
	if !ok {
		return schema.Record{}, fmt.Errorf("%w: %s: missing issued date-parts", ErrMalformedRecord, id)
	}

	url := stringsx.Or(sanitize.CleanURL(m.URL), schema.NoData)
	r := schema.Record{
		Title:         stringsx.Or(sanitize.CleanLine(m.Title.String(), 1024), schema.NoData),
		Authors:       n.Authors(m.Author),
		Year:          year,
		Journal:       stringsx.Or(stringsx.FirstNonEmpty(m.Publisher, m.ContainerTitle.String()), schema.NoData),
		CitationCount: m.ReferenceCount,
		URLDOI:        StripScheme(url),
		URL:           url,
		Type:          stringsx.Or(m.Type, schema.NoData),
	}
	sanitize.CleanRecord(&r)
	r.Reference = Citation(r)
	return r, nil
}

// Authors renders the author credit string: "Family, G." per author, bold
// when the family name matches the highlight, linked when an ORCID is known,
// joined with "; ". No usable authors yields schema.NoData.
func (n Normalizer) Authors(authors []doi.Author) string {
	var parts []string
	for _, a := range authors {
		if s := n.Author(a); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return schema.NoData
	}
	return strings.Join(parts, "; ")
}

// Author renders one author credit, or "" when the author has no name.
func (n Normalizer) Author(a doi.Author) string {
	family := sanitize.CleanLine(a.Family, 256)
	var name string
	switch {
	case family != "":
		name = names.Credit(family, a.Given)
	case strings.TrimSpace(a.Literal) != "":
		family = sanitize.CleanLine(a.Literal, 256)
		name = family
	default:
		return ""
	}
	if names.Matches(family, n.Highlight) {
		name = "**" + name + "**"
	}
	if orcid := strings.TrimSpace(a.ORCID); orcid != "" {
		return "[" + name + "](" + orcid + ")"
	}
	return name
}

// StripScheme drops everything up to and including the first "//":
// "https://doi.org/10.1/xyz" -> "doi.org/10.1/xyz". Inputs without "//"
// are returned unchanged.
func StripScheme(url string) string {
	if _, rest, ok := strings.Cut(url, "//"); ok {
		return rest
	}
	return url
}

// Citation composes the pre-formatted markdown reference for r.
func Citation(r schema.Record) string {
	return fmt.Sprintf("%s (%d). **%s**. %s. [%s](%s)", r.Authors, r.Year, r.Title, r.Journal, r.URLDOI, r.URL)
}
