package store

import (
	"encoding/csv"
	"io"
	"os"

	"publist/src/internal/schema"
)

type csvBackend struct{}

func (csvBackend) read(path string) ([]schema.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	grid, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	return parseGrid(grid)
}

func (csvBackend) write(path string, rows []schema.Row) error {
	return writeAtomic(path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(schema.Columns); err != nil {
			return err
		}
		for _, r := range rows {
			if err := cw.Write(r.Cells()); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
}
