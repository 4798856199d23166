package schema

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// NoData is the placeholder stored for optional fields the resolver did not return.
const NoData = "NO_DATA"

// Record is one normalized publication row. The zero Record is the empty
// placeholder kept for identifiers whose metadata could not be normalized.
type Record struct {
	Title         string `yaml:"title" json:"title"`
	Authors       string `yaml:"authors" json:"authors"`
	Year          int    `yaml:"year" json:"year"`
	Journal       string `yaml:"journal" json:"journal"`
	CitationCount *int   `yaml:"citation_count,omitempty" json:"citation_count,omitempty"`
	URLDOI        string `yaml:"url_doi" json:"url_doi"`
	URL           string `yaml:"url" json:"url"`
	Reference     string `yaml:"reference" json:"reference"`
	Type          string `yaml:"type" json:"type"`
}

// IsEmpty reports whether r is the empty placeholder record.
func (r Record) IsEmpty() bool {
	return r.Year == 0 && r.Title == "" && r.Reference == "" && r.CitationCount == nil &&
		r.Authors == "" && r.Journal == "" && r.URL == "" && r.URLDOI == "" && r.Type == ""
}

// Row pairs a record with the DOI that keys it.
type Row struct {
	DOI    string `yaml:"doi" json:"doi"`
	Record `yaml:",inline"`
}

// Columns is the header shared by every tabular representation of a Row.
var Columns = []string{"doi", "title", "authors", "year", "journal", "citation_count", "url_doi", "url", "reference", "type"}

// Cells renders the row in Columns order. Empty records keep blank year and
// citation count cells so that they read back as empty.
func (r Row) Cells() []string {
	year := ""
	if r.Year != 0 {
		year = strconv.Itoa(r.Year)
	}
	count := ""
	if r.CitationCount != nil {
		count = strconv.Itoa(*r.CitationCount)
	} else if !r.IsEmpty() {
		count = NoData
	}
	return []string{r.DOI, r.Title, r.Authors, year, r.Journal, count, r.URLDOI, r.URL, r.Reference, r.Type}
}

// ErrMissingDOI is returned when a tabular row has no identifier cell.
var ErrMissingDOI = errors.New("row has no doi")

// ParseRow maps header/cell pairs back to a Row. Unknown columns are ignored
// and missing trailing cells read as blank.
func ParseRow(header, cells []string) (Row, error) {
	var r Row
	for i, h := range header {
		v := ""
		if i < len(cells) {
			v = cells[i]
		}
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "doi":
			r.DOI = strings.TrimSpace(v)
		case "title":
			r.Title = v
		case "authors":
			r.Authors = v
		case "year":
			y, err := parseInt(v)
			if err != nil {
				return Row{}, fmt.Errorf("year %q: %w", v, err)
			}
			if y != nil {
				r.Year = *y
			}
		case "journal":
			r.Journal = v
		case "citation_count":
			c, err := parseInt(v)
			if err != nil {
				return Row{}, fmt.Errorf("citation_count %q: %w", v, err)
			}
			r.CitationCount = c
		case "url_doi":
			r.URLDOI = v
		case "url":
			r.URL = v
		case "reference":
			r.Reference = v
		case "type":
			r.Type = v
		}
	}
	if r.DOI == "" {
		return Row{}, ErrMissingDOI
	}
	return r, nil
}

// parseInt accepts blank and NoData as absent. Spreadsheet tools sometimes
// write whole numbers as "2020.0", which is accepted too.
func parseInt(v string) (*int, error) {
	v = strings.TrimSpace(v)
	if v == "" || v == NoData {
		return nil, nil
	}
	if n, err := strconv.Atoi(v); err == nil {
		return &n, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, err
	}
	n := int(f)
	if float64(n) != f {
		return nil, fmt.Errorf("not a whole number")
	}
	return &n, nil
}

// IntPtr returns a pointer to n.
func IntPtr(n int) *int { return &n }
