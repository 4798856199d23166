// Package pdfscan finds DOIs in a directory of local PDF files.
package pdfscan

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"publist/src/internal/ids"
	"publist/src/internal/pipeline"
)

// MaxPages is how many leading pages are searched; the DOI is usually on page one.
const MaxPages = 3

// pageText returns the plain text of the first n pages. Tests replace it.
var pageText = func(path string, n int) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if n > r.NumPage() {
		n = r.NumPage()
	}
	var b strings.Builder
	for i := 1; i <= n; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// ExtractDOI returns the first DOI on the leading pages of the PDF at path,
// or "" when there is none. The PDF parser panics on some malformed files;
// that is reported as an error.
func ExtractDOI(path string) (id string, err error) {
	defer func() {
		if r := recover(); r != nil {
			id, err = "", fmt.Errorf("parsing pdf: %v", r)
		}
	}()
	text, err := pageText(path, MaxPages)
	if err != nil {
		return "", err
	}
	return ids.Find(text), nil
}

// Source scans directories for PDFs.
type Source struct {
	Dirs []string
}

// Name identifies the source in logs.
func (Source) Name() string { return "PDF" }

// Collect walks every directory in lexical order. PDFs that cannot be read or
// carry no DOI are reported as warnings; a missing directory is an error.
func (s Source) Collect(ctx context.Context) (pipeline.Collection, error) {
	var col pipeline.Collection
	for _, dir := range s.Dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".pdf") {
				return nil
			}
			id, err := ExtractDOI(path)
			switch {
			case err != nil:
				col.Warnings = append(col.Warnings, fmt.Sprintf("unreadable pdf %s: %v", path, err))
			case id == "":
				col.Warnings = append(col.Warnings, fmt.Sprintf("no doi in %s", path))
			default:
				col.DOIs = append(col.DOIs, id)
			}
			return nil
		})
		if err != nil {
			return pipeline.Collection{}, fmt.Errorf("scanning %s: %w", dir, err)
		}
	}
	col.Label = strings.Join(s.Dirs, ",")
	return col, nil
}
