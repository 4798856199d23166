package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"publist/src/internal/schema"
)

const createTable = `
	CREATE TABLE IF NOT EXISTS publications (
		doi TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		authors TEXT NOT NULL,
		year INTEGER,
		journal TEXT NOT NULL,
		citation_count INTEGER,
		url_doi TEXT NOT NULL,
		url TEXT NOT NULL,
		reference TEXT NOT NULL,
		type TEXT NOT NULL
	);
`

type sqliteBackend struct{}

func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return db, nil
}

func (sqliteBackend) read(path string) ([]schema.Row, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	rows, err := db.Query(`SELECT doi, title, authors, year, journal, citation_count, url_doi, url, reference, type FROM publications`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []schema.Row
	for rows.Next() {
		var (
			r     schema.Row
			year  sql.NullInt64
			count sql.NullInt64
		)
		if err := rows.Scan(&r.DOI, &r.Title, &r.Authors, &year, &r.Journal, &count, &r.URLDOI, &r.URL, &r.Reference, &r.Type); err != nil {
			return nil, err
		}
		if year.Valid {
			r.Year = int(year.Int64)
		}
		if count.Valid {
			r.CitationCount = schema.IntPtr(int(count.Int64))
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// write replaces the table contents in one transaction.
func (sqliteBackend) write(path string, rows []schema.Row) error {
	db, err := openDB(path)
	if err != nil {
		return err
	}
	defer db.Close()
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.Exec(`DELETE FROM publications`); err != nil {
		return fmt.Errorf("clearing publications: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO publications (doi, title, authors, year, journal, citation_count, url_doi, url, reference, type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		var year, count any
		if r.Year != 0 {
			year = r.Year
		}
		if r.CitationCount != nil {
			count = *r.CitationCount
		}
		if _, err := stmt.Exec(r.DOI, r.Title, r.Authors, year, r.Journal, count, r.URLDOI, r.URL, r.Reference, r.Type); err != nil {
			return fmt.Errorf("inserting %s: %w", r.DOI, err)
		}
	}
	return tx.Commit()
}
