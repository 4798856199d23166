// Package store keeps the DOI-keyed publication table and persists it to a
// spreadsheet, CSV file or SQLite database chosen by file extension.
package store

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"publist/src/internal/ids"
	"publist/src/internal/schema"
)

// ErrUnsupportedFormat is returned for cache paths with an unknown extension.
var ErrUnsupportedFormat = errors.New("store: unsupported cache format")

// backend reads and writes a whole table.
type backend interface {
	read(path string) ([]schema.Row, error)
	write(path string, rows []schema.Row) error
}

// backendFor picks the backend from the file extension.
func backendFor(path string) (backend, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return xlsxBackend{}, nil
	case ".csv":
		return csvBackend{}, nil
	case ".db", ".sqlite", ".sqlite3":
		return sqliteBackend{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
	}
}

// Table is the in-memory cache of normalized records keyed by DOI. Keys
// compare case-insensitively and the first spelling stored is kept. Safe for
// concurrent use.
type Table struct {
	mu   sync.RWMutex
	rows map[string]schema.Row
}

// New returns an empty table.
func New() *Table { return &Table{rows: map[string]schema.Row{}} }

// Load reads the table stored at path. A missing file yields an empty table.
func Load(path string) (*Table, error) {
	b, err := backendFor(path)
	if err != nil {
		return nil, err
	}
	t := New()
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return t, nil
	}
	rows, err := b.read(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	for _, r := range rows {
		t.put(r)
	}
	return t, nil
}

func (t *Table) put(r schema.Row) {
	k := ids.Key(r.DOI)
	if prev, ok := t.rows[k]; ok {
		r.DOI = prev.DOI
	}
	t.rows[k] = r
}

// Contains reports whether a record is stored for id.
func (t *Table) Contains(id string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.rows[ids.Key(id)]
	return ok
}

// Get returns the record stored for id.
func (t *Table) Get(id string) (schema.Record, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	r, ok := t.rows[ids.Key(id)]
	return r.Record, ok
}

// Upsert stores rec under id, replacing any previous record.
func (t *Table) Upsert(id string, rec schema.Record) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.put(schema.Row{DOI: ids.Clean(id), Record: rec})
}

// Len returns the number of stored records.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

// IDs returns the stored identifiers in sorted row order.
func (t *Table) IDs() []string {
	rows := t.Sorted()
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.DOI
	}
	return out
}

// Sorted returns a snapshot of the rows ordered by year descending, ties by DOI.
func (t *Table) Sorted() []schema.Row {
	t.mu.RLock()
	out := make([]schema.Row, 0, len(t.rows))
	for _, r := range t.rows {
		out = append(out, r)
	}
	t.mu.RUnlock()
	SortRows(out)
	return out
}

// Persist writes the table to path in sorted order.
func (t *Table) Persist(path string) error {
	return WriteRows(path, t.Sorted())
}

// WriteRows writes rows to path with the backend matching its extension.
// Parent directories are created as needed.
func WriteRows(path string, rows []schema.Row) error {
	b, err := backendFor(path)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := b.write(path, rows); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// SortRows orders rows by year descending, ties broken by DOI ascending.
func SortRows(rows []schema.Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Year != rows[j].Year {
			return rows[i].Year > rows[j].Year
		}
		return strings.ToLower(rows[i].DOI) < strings.ToLower(rows[j].DOI)
	})
}

// writeAtomic writes through a temp file in the target directory and renames
// it over path once fn succeeds.
func writeAtomic(path string, fn func(w io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	defer os.Remove(name)
	if err := fn(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(name, path)
}
