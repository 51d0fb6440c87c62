package databook

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Ingest is a write handle used to create development databooks and test
// fixtures. Production facts come from the external ingest pipeline; the
// resolution core only ever reads.
type Ingest struct {
	db *sql.DB
}

// Create opens (or creates) a databook at path and ensures the ingest schema
// exists.
func Create(path string) (*Ingest, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("create databook %s: %w", path, err)
	}

	ddl := []string{
		`CREATE TABLE IF NOT EXISTS ` + factsTable + ` (
			fact_id INTEGER PRIMARY KEY AUTOINCREMENT,
			file TEXT,
			sheet TEXT,
			row_header TEXT,
			col_header TEXT,
			raw_text TEXT,
			unit TEXT,
			value_real REAL
		)`,
		`CREATE INDEX IF NOT EXISTS ix_` + factsTable + `_sheet ON ` + factsTable + `(sheet)`,
		`CREATE INDEX IF NOT EXISTS ix_` + factsTable + `_headers ON ` + factsTable + `(row_header, col_header)`,
		`CREATE TABLE IF NOT EXISTS ` + knownFactsTable + ` (
			known_fact_id INTEGER PRIMARY KEY AUTOINCREMENT,
			fact_id INTEGER NOT NULL,
			known_value TEXT NOT NULL,
			known_period TEXT,
			FOREIGN KEY(fact_id) REFERENCES ` + factsTable + `(fact_id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS ix_` + knownFactsTable + `_lookup ON ` + knownFactsTable + `(known_value, known_period)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_` + knownFactsTable + `_fact ON ` + knownFactsTable + `(fact_id)`,
	}
	for _, stmt := range ddl {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create databook schema: %w", err)
		}
	}
	return &Ingest{db: db}, nil
}

// Close releases the write handle.
func (w *Ingest) Close() error {
	return w.db.Close()
}

// AddFact inserts one fact and returns its id.
func (w *Ingest) AddFact(f Fact) (int64, error) {
	res, err := w.db.Exec(`INSERT INTO `+factsTable+
		` (file, sheet, row_header, col_header, raw_text, unit, value_real)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		f.File, f.Sheet, f.RowHeader, f.ColHeader, f.RawText, f.Unit, f.Value)
	if err != nil {
		return 0, fmt.Errorf("insert fact: %w", err)
	}
	return res.LastInsertId()
}

// Annotate links a fact to a canonical metric. The unique index keeps the
// relation at most one annotation per fact.
func (w *Ingest) Annotate(factID int64, canonical string, period *string) error {
	_, err := w.db.Exec(`INSERT INTO `+knownFactsTable+
		` (fact_id, known_value, known_period) VALUES (?, ?, ?)`,
		factID, canonical, period)
	if err != nil {
		return fmt.Errorf("annotate fact %d as %q: %w", factID, canonical, err)
	}
	return nil
}
