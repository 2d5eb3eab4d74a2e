// Package storage keeps an ephemeral SQLite index of the library for search.
// The .bib file stays the source of truth; the index can be rebuilt at any
// time.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/matsen/bibscrape/internal/bibtex"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// selectRecordFields contains the standard field list for SELECT queries.
const selectRecordFields = `key, type, fields_json`

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS records (
			key TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			title TEXT,
			author TEXT,
			journal TEXT,
			year TEXT,
			doi TEXT,
			fields_json TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_records_doi ON records(doi) WHERE doi IS NOT NULL AND doi != '';

		-- Standalone full-text table, refilled on every rebuild
		CREATE VIRTUAL TABLE IF NOT EXISTS records_fts USING fts5(
			key,
			title,
			author,
			journal,
			year
		);
	`

	_, err := db.Exec(schema)
	return err
}

// RebuildFromLibrary replaces the index contents with records.
func (d *DB) RebuildFromLibrary(records []*bibtex.Record) (int, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting rebuild: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM records"); err != nil {
		return 0, fmt.Errorf("clearing records table: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM records_fts"); err != nil {
		return 0, fmt.Errorf("clearing records_fts table: %w", err)
	}

	recordsStmt, err := tx.Prepare(`
		INSERT INTO records (key, type, title, author, journal, year, doi, fields_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing records insert: %w", err)
	}
	defer recordsStmt.Close()

	ftsStmt, err := tx.Prepare(`
		INSERT INTO records_fts (key, title, author, journal, year)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing fts insert: %w", err)
	}
	defer ftsStmt.Close()

	for _, r := range records {
		fieldsJSON, err := json.Marshal(r.Fields)
		if err != nil {
			return 0, fmt.Errorf("marshaling fields for %s: %w", r.Key, err)
		}

		f := r.Fields
		_, err = recordsStmt.Exec(
			r.Key, r.Type,
			nullableString(f["title"]), nullableString(f["author"]),
			nullableString(f["journal"]), nullableString(f["year"]),
			nullableString(f["doi"]), string(fieldsJSON),
		)
		if err != nil {
			return 0, fmt.Errorf("inserting record %s: %w", r.Key, err)
		}

		_, err = ftsStmt.Exec(r.Key, f["title"], authorsText(f["author"]), f["journal"], f["year"])
		if err != nil {
			return 0, fmt.Errorf("inserting fts for %s: %w", r.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing rebuild: %w", err)
	}
	return len(records), nil
}

// authorsText turns "Public, Jane and Doe, John" into "Jane Public, John Doe"
// so that searches for "Jane Public" match.
func authorsText(author string) string {
	if author == "" {
		return ""
	}
	var names []string
	for _, name := range strings.Split(author, " and ") {
		last, first, found := strings.Cut(name, ",")
		if found {
			names = append(names, strings.TrimSpace(first)+" "+strings.TrimSpace(last))
		} else {
			names = append(names, strings.TrimSpace(name))
		}
	}
	return strings.Join(names, ", ")
}

// GetByKey retrieves a record by its key. Returns nil if it is not indexed.
func (d *DB) GetByKey(key string) (*bibtex.Record, error) {
	row := d.db.QueryRow(`SELECT `+selectRecordFields+` FROM records WHERE key = ?`, key)
	return scanRecord(row)
}

// GetByDOI retrieves the first record with the given DOI.
func (d *DB) GetByDOI(doi string) (*bibtex.Record, error) {
	row := d.db.QueryRow(`SELECT `+selectRecordFields+` FROM records WHERE lower(doi) = lower(?) ORDER BY key LIMIT 1`, doi)
	return scanRecord(row)
}

// Search performs a full-text search over key, title, author, journal and year.
func (d *DB) Search(query string, limit int) ([]*bibtex.Record, error) {
	ftsQuery := prepareFTSQuery(query)
	if ftsQuery == "" {
		return nil, nil
	}

	rows, err := d.db.Query(`
		SELECT `+selectRecordFields+`
		FROM records
		WHERE key IN (SELECT key FROM records_fts WHERE records_fts MATCH ?)
		ORDER BY key
		LIMIT ?`, ftsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// SearchField performs a full-text search on one column. Every term of value
// must match in that column.
func (d *DB) SearchField(field, value string, limit int) ([]*bibtex.Record, error) {
	switch field {
	case "author", "title", "journal":
	default:
		return nil, fmt.Errorf("unknown search field: %s", field)
	}

	ftsQuery := prepareFTSQuery(value)
	if ftsQuery == "" {
		return nil, nil
	}

	rows, err := d.db.Query(`
		SELECT `+selectRecordFields+`
		FROM records
		WHERE key IN (SELECT key FROM records_fts WHERE records_fts MATCH ?)
		ORDER BY key
		LIMIT ?
	`, field+":("+ftsQuery+")", limit)
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", field, err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// ListAll returns all records ordered by key, optionally limited.
func (d *DB) ListAll(limit int) ([]*bibtex.Record, error) {
	query := `SELECT ` + selectRecordFields + ` FROM records ORDER BY key`
	var args []interface{}

	if limit > 0 {
		query += " LIMIT ?"
		args = []interface{}{limit}
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Count returns the total number of indexed records.
func (d *DB) Count() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM records").Scan(&count)
	return count, err
}

// scanner interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(s scanner) (*bibtex.Record, error) {
	var r bibtex.Record
	var fieldsJSON string

	if err := s.Scan(&r.Key, &r.Type, &fieldsJSON); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if err := json.Unmarshal([]byte(fieldsJSON), &r.Fields); err != nil {
		return nil, fmt.Errorf("parsing fields JSON for %s: %w", r.Key, err)
	}
	if r.Fields == nil {
		r.Fields = make(map[string]string)
	}
	return &r, nil
}

func scanRecords(rows *sql.Rows) ([]*bibtex.Record, error) {
	var records []*bibtex.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		if r != nil {
			records = append(records, r)
		}
	}
	return records, rows.Err()
}

// nullableString converts a string to sql.NullString, treating empty as NULL.
func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// prepareFTSQuery escapes special characters for FTS5 queries.
func prepareFTSQuery(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	// FTS5 uses double quotes for phrase matching
	if strings.ContainsAny(query, "\"*+-:(){}[]^~,.") {
		query = strings.ReplaceAll(query, "\"", "\"\"")
		return "\"" + query + "\""
	}

	return query
}
