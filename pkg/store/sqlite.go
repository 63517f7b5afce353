package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id          TEXT PRIMARY KEY,
    batch_id    TEXT NOT NULL,
    kind        TEXT NOT NULL,
    strategy    TEXT NOT NULL,
    n           INTEGER NOT NULL,
    k           INTEGER NOT NULL,
    seed        INTEGER NOT NULL,
    solved      INTEGER NOT NULL,
    energy      INTEGER NOT NULL,
    attempts    INTEGER NOT NULL,
    steps       INTEGER NOT NULL,
    solutions   INTEGER NOT NULL DEFAULT -1,
    duration_ns INTEGER NOT NULL,
    created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_batch ON runs(batch_id);
CREATE INDEX IF NOT EXISTS idx_runs_nk ON runs(n, k);
`

// timeLayout is fixed-width so that created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore keeps records in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path. Use
// ":memory:" for a throwaway store.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if path == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}
	s, err := NewSQLiteStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLiteStore creates the schema on db and returns a store using it.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("runs schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Save inserts recs in one transaction. Records with an existing ID are
// replaced.
func (s *SQLiteStore) Save(ctx context.Context, recs ...Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO runs (id, batch_id, kind, strategy, n, k, seed, solved, energy, attempts, steps, solutions, duration_ns, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range recs {
		created := r.CreatedAt
		if created.IsZero() {
			created = time.Now()
		}
		_, err := stmt.ExecContext(ctx,
			r.ID, r.BatchID, r.Kind, r.Strategy, r.N, r.K, int64(r.Seed), r.Solved,
			r.Energy, r.Attempts, r.Steps, r.Solutions, int64(r.Duration), created.UTC().Format(timeLayout))
		if err != nil {
			return fmt.Errorf("insert %s: %w", r.ID, err)
		}
	}
	return tx.Commit()
}

// List returns matching records, oldest first.
func (s *SQLiteStore) List(ctx context.Context, f Filter) ([]Record, error) {
	var where []string
	var args []any
	if f.BatchID != "" {
		where = append(where, "batch_id = ?")
		args = append(args, f.BatchID)
	}
	if f.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, f.Kind)
	}
	if f.N > 0 {
		where = append(where, "n = ?")
		args = append(args, f.N)
	}

	q := `SELECT id, batch_id, kind, strategy, n, k, seed, solved, energy, attempts, steps, solutions, duration_ns, created_at FROM runs`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at, id"
	if f.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var seed, dur int64
		var created string
		if err := rows.Scan(&r.ID, &r.BatchID, &r.Kind, &r.Strategy, &r.N, &r.K, &seed, &r.Solved,
			&r.Energy, &r.Attempts, &r.Steps, &r.Solutions, &dur, &created); err != nil {
			return nil, err
		}
		r.Seed = uint64(seed)
		r.Duration = time.Duration(dur)
		r.CreatedAt, _ = time.Parse(timeLayout, created)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLiteStore)(nil)
