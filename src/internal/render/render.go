// Package render turns publication rows into a year-grouped markdown
// bibliography, its HTML translation and spreadsheet subsets.
package render

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"

	"publist/src/internal/schema"
	"publist/src/internal/store"
)

var (
	// JournalTypes are the resolver types of the journals subset.
	JournalTypes = []string{"journal-article", "proceedings-article", "posted-content", "book-chapter"}
	// BookTypes are the resolver types of the books subset.
	BookTypes = []string{"book"}
)

// Subset names a type-filtered output written next to the full list.
type Subset struct {
	Suffix string
	Types  []string
}

// DefaultSubsets are written by a full run.
var DefaultSubsets = []Subset{
	{Suffix: "journals", Types: JournalTypes},
	{Suffix: "books", Types: BookTypes},
}

// Markdown renders rows as "## {year}" sections, newest year first. Each
// reference is followed by a blank line and each section by another one.
// Rows without a year, empty records included, are skipped.
func Markdown(rows []schema.Row) string {
	sorted := make([]schema.Row, 0, len(rows))
	for _, r := range rows {
		if r.Year > 0 {
			sorted = append(sorted, r)
		}
	}
	store.SortRows(sorted)
	var lines []string
	for i, r := range sorted {
		if i == 0 || sorted[i-1].Year != r.Year {
			if i > 0 {
				lines = append(lines, "")
			}
			lines = append(lines, fmt.Sprintf("## %d", r.Year))
		}
		lines = append(lines, r.Reference, "")
	}
	if len(sorted) > 0 {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// HTML translates markdown to an HTML fragment.
func HTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}
	return buf.String(), nil
}

// WithNewTab makes every link in the fragment open in a new tab.
func WithNewTab(fragment string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", err
	}
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		a.SetAttr("target", "_blank")
		a.SetAttr("rel", "noopener noreferrer")
	})
	return doc.Find("body").Html()
}

// FilterTypes keeps the rows whose type is one of types, in order.
func FilterTypes(rows []schema.Row, types ...string) []schema.Row {
	want := map[string]bool{}
	for _, t := range types {
		want[t] = true
	}
	var out []schema.Row
	for _, r := range rows {
		if want[r.Type] {
			out = append(out, r)
		}
	}
	return out
}

// TypeCount is one line of a type summary.
type TypeCount struct {
	Type  string
	Count int
}

// TypeSummary counts non-empty rows per type, ordered by type name.
func TypeSummary(rows []schema.Row) []TypeCount {
	counts := map[string]int{}
	for _, r := range rows {
		if !r.IsEmpty() {
			counts[r.Type]++
		}
	}
	out := make([]TypeCount, 0, len(counts))
	for t, n := range counts {
		out = append(out, TypeCount{Type: t, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// Options controls Write.
type Options struct {
	// NewTab makes HTML links open in a new tab.
	NewTab bool
	// Spreadsheet also writes {basename}.xlsx.
	Spreadsheet bool
}

// Write renders rows to {dir}/{basename}.md and .html, plus the spreadsheet
// when requested, and returns the written paths.
func Write(dir, basename string, rows []schema.Row, opts Options) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	base := filepath.Join(dir, basename)
	md := Markdown(rows)
	html, err := HTML(md)
	if err != nil {
		return nil, err
	}
	if opts.NewTab {
		if html, err = WithNewTab(html); err != nil {
			return nil, err
		}
	}
	var written []string
	for _, f := range []struct{ path, body string }{{base + ".md", md}, {base + ".html", html}} {
		if err := os.WriteFile(f.path, []byte(f.body), 0o644); err != nil {
			return written, err
		}
		written = append(written, f.path)
	}
	if opts.Spreadsheet {
		sorted := append([]schema.Row(nil), rows...)
		store.SortRows(sorted)
		if err := store.WriteRows(base+".xlsx", sorted); err != nil {
			return written, err
		}
		written = append(written, base+".xlsx")
	}
	return written, nil
}

// WriteSubsets writes one Write output per subset, named {basename}-{suffix}.
// The subset spreadsheets are always written.
func WriteSubsets(dir, basename string, rows []schema.Row, subsets []Subset, newTab bool) ([]string, error) {
	var written []string
	for _, s := range subsets {
		paths, err := Write(dir, basename+"-"+s.Suffix, FilterTypes(rows, s.Types...), Options{NewTab: newTab, Spreadsheet: true})
		written = append(written, paths...)
		if err != nil {
			return written, err
		}
	}
	return written, nil
}
