package scopus

import (
	"strconv"
	"strings"
)

// Response is one page of Scopus search results.
type Response struct {
	Results struct {
		TotalResults string  `json:"opensearch:totalResults"`
		StartIndex   string  `json:"opensearch:startIndex"`
		Entry        []Entry `json:"entry"`
	} `json:"search-results"`
}

// Entry is one search result. An empty result set is reported as a single
// entry carrying only Error.
type Entry struct {
	Identifier string `json:"dc:identifier"`
	Title      string `json:"dc:title"`
	DOI        string `json:"prism:doi"`
	CoverDate  string `json:"prism:coverDate"`
	Subtype    string `json:"subtypeDescription"`
	Error      string `json:"error"`
}

func (r *Response) total() int {
	n, _ := strconv.Atoi(strings.TrimSpace(r.Results.TotalResults))
	return n
}

// documents drops the placeholder entry of an empty result set.
func (r *Response) documents() []Entry {
	var out []Entry
	for _, e := range r.Results.Entry {
		if e.Error != "" {
			continue
		}
		out = append(out, e)
	}
	return out
}

// ExtractDOIs returns the DOI of each entry in order, skipping entries without one.
func ExtractDOIs(entries []Entry) []string {
	var out []string
	for _, e := range entries {
		if d := strings.TrimSpace(e.DOI); d != "" {
			out = append(out, d)
		}
	}
	return out
}
