package databook

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"regexp"
	"strings"

	_ "modernc.org/sqlite"
)

const (
	factsTable      = "facts"
	knownFactsTable = "kpi_facts"
)

// Store locates the databook file. Connections are opened read-only and
// scoped to one batch via Acquire; the core never writes through a Store.
type Store struct {
	path string
}

// NewStore creates a store for the databook at path. The file is not touched
// until Acquire.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the databook file path.
func (s *Store) Path() string {
	return s.path
}

// Available reports whether the databook file exists.
func (s *Store) Available() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Acquire opens a read-only connection for one resolution batch. The caller
// must Close it on every exit path.
func (s *Store) Acquire(ctx context.Context) (*Conn, error) {
	if _, err := os.Stat(s.path); err != nil {
		return nil, fmt.Errorf("databook %s: %w", s.path, err)
	}
	db, err := sql.Open("sqlite", "file:"+s.path+"?mode=ro&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open databook %s: %w", s.path, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("open databook %s: %w", s.path, err)
	}
	return &Conn{db: db}, nil
}

// Conn is a scoped read-only databook connection.
type Conn struct {
	db *sql.DB
}

// Close releases the connection.
func (c *Conn) Close() error {
	return c.db.Close()
}

var yearRe = regexp.MustCompile(`^\d{4}$`)

// periodClause appends the period filter. A bare 4-digit year matches the
// annual column exactly and excludes date labels inside that year
// ("2024" must not match "2024-06-30"); any other label matches exactly.
func periodClause(period string, args *[]any) string {
	switch {
	case period == "":
		return ""
	case yearRe.MatchString(period):
		*args = append(*args, period, period)
		return " AND f.col_header = ? AND f.col_header NOT LIKE ? || '-%'"
	default:
		*args = append(*args, period)
		return " AND f.col_header = ?"
	}
}

// FetchByCanonical selects curated facts whose annotation equals canonical
// (exact, case-sensitive), optionally filtered by period.
func (c *Conn) FetchByCanonical(ctx context.Context, canonical, period string) ([]KnownFact, error) {
	q := `SELECT f.fact_id, f.file, f.sheet, f.row_header, f.col_header,
		f.unit, f.value_real, kf.known_value, kf.known_period
		FROM ` + factsTable + ` f
		JOIN ` + knownFactsTable + ` kf ON kf.fact_id = f.fact_id
		WHERE kf.known_value = ?`
	args := []any{canonical}
	q += periodClause(period, &args)

	rows, err := c.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch canonical %q: %w", canonical, err)
	}
	defer rows.Close()

	var out []KnownFact
	for rows.Next() {
		var kf KnownFact
		if err := rows.Scan(&kf.ID, &kf.File, &kf.Sheet, &kf.RowHeader, &kf.ColHeader,
			&kf.Unit, &kf.Value, &kf.Canonical, &kf.Annotation.Period); err != nil {
			return nil, fmt.Errorf("scan known fact: %w", err)
		}
		out = append(out, kf)
	}
	return out, rows.Err()
}

// FetchByFreeText selects facts whose row or column header contains term
// (case-insensitive), optionally filtered by period and unit.
func (c *Conn) FetchByFreeText(ctx context.Context, term, period, unit string) ([]Fact, error) {
	q := `SELECT f.fact_id, f.file, f.sheet, f.row_header, f.col_header,
		f.unit, f.value_real, f.raw_text
		FROM ` + factsTable + ` f
		WHERE (LOWER(f.row_header) LIKE ? OR LOWER(f.col_header) LIKE ?)`
	pat := "%" + strings.ToLower(term) + "%"
	args := []any{pat, pat}
	q += periodClause(period, &args)

	switch unit {
	case UnitUSD:
		q += " AND f.unit = 'USD'"
	case UnitPercent:
		q += " AND f.unit = '%'"
	}

	rows, err := c.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch free-text %q: %w", term, err)
	}
	defer rows.Close()

	var out []Fact
	for rows.Next() {
		var f Fact
		if err := rows.Scan(&f.ID, &f.File, &f.Sheet, &f.RowHeader, &f.ColHeader,
			&f.Unit, &f.Value, &f.RawText); err != nil {
			return nil, fmt.Errorf("scan fact: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
