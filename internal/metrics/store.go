package metrics

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store is the embedded query engine behind `metrics compare`, grounded on
// the teacher's StateStore aggregation queries (GetStepPerformanceStats,
// GetRecentPerformanceHistory). The CSV history remains the
// conformance-visible artifact; `metrics compare` loads every CSV row into
// this store on each invocation before running its aggregate queries.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if absent) the sqlite database at path and
// ensures its schema exists.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("metrics: opening store: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	cols := make([]string, 0, len(taxonomy))
	for _, k := range taxonomy {
		cols = append(cols, string(k)+" REAL")
	}
	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		timestamp INTEGER NOT NULL,
		diff_classification TEXT,
		%s
	)`, strings.Join(cols, ",\n\t\t"))
	_, err := db.Exec(stmt)
	if err != nil {
		return fmt.Errorf("metrics: migrating schema: %w", err)
	}
	return nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Insert records one run's snapshot, replacing any prior row with the
// same run ID (a re-run of a checkpointed pipeline overwrites, never
// duplicates).
func (s *Store) Insert(snap Snapshot) error {
	cols := []string{"run_id", "timestamp", "diff_classification"}
	placeholders := []string{"?", "?", "?"}
	args := []any{snap.RunID, snap.Timestamp.Unix(), snap.DiffClassification}

	for _, k := range taxonomy {
		if v, ok := snap.Values[k]; ok {
			cols = append(cols, string(k))
			placeholders = append(placeholders, "?")
			args = append(args, v)
		}
	}

	stmt := fmt.Sprintf("INSERT OR REPLACE INTO runs (%s) VALUES (%s)",
		strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	if _, err := s.db.Exec(stmt, args...); err != nil {
		return fmt.Errorf("metrics: inserting run %s: %w", snap.RunID, err)
	}
	return nil
}

// Recent returns the most recent limit runs, newest first.
func (s *Store) Recent(limit int) ([]Snapshot, error) {
	rows, err := s.db.Query("SELECT run_id, timestamp, diff_classification FROM runs ORDER BY timestamp DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("metrics: querying recent runs: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var snap Snapshot
		var ts int64
		var class sql.NullString
		if err := rows.Scan(&snap.RunID, &ts, &class); err != nil {
			return nil, fmt.Errorf("metrics: scanning run row: %w", err)
		}
		snap.Timestamp = time.Unix(ts, 0).UTC()
		snap.DiffClassification = class.String
		full, err := s.byID(snap.RunID)
		if err != nil {
			return nil, err
		}
		out = append(out, full)
	}
	return out, rows.Err()
}

func (s *Store) byID(runID string) (Snapshot, error) {
	cols := make([]string, len(taxonomy))
	for i, k := range taxonomy {
		cols[i] = string(k)
	}
	query := fmt.Sprintf("SELECT run_id, timestamp, diff_classification, %s FROM runs WHERE run_id = ?", strings.Join(cols, ", "))

	dest := make([]any, len(taxonomy))
	values := make([]sql.NullFloat64, len(taxonomy))
	for i := range values {
		dest[i] = &values[i]
	}

	var runIDOut string
	var ts int64
	var class sql.NullString
	scanArgs := append([]any{&runIDOut, &ts, &class}, dest...)

	row := s.db.QueryRow(query, runID)
	if err := row.Scan(scanArgs...); err != nil {
		return Snapshot{}, fmt.Errorf("metrics: scanning run %s: %w", runID, err)
	}

	snap := Snapshot{RunID: runIDOut, Timestamp: time.Unix(ts, 0).UTC(), DiffClassification: class.String, Values: make(map[Key]float64)}
	for i, k := range taxonomy {
		if values[i].Valid {
			snap.Values[k] = values[i].Float64
		}
	}
	return snap, nil
}

// Average reports the mean of key across every recorded run that has it,
// used by `metrics compare`. Returns an error for any key outside the
// fixed taxonomy rather than interpolating an arbitrary column name.
func (s *Store) Average(key Key) (float64, error) {
	if !isTaxonomyKey(key) {
		return 0, fmt.Errorf("metrics: %q is not a recognized metric key", key)
	}
	var avg sql.NullFloat64
	query := fmt.Sprintf("SELECT AVG(%s) FROM runs WHERE %s IS NOT NULL", key, key)
	if err := s.db.QueryRow(query).Scan(&avg); err != nil {
		return 0, fmt.Errorf("metrics: averaging %s: %w", key, err)
	}
	return avg.Float64, nil
}

func isTaxonomyKey(key Key) bool {
	for _, k := range taxonomy {
		if k == key {
			return true
		}
	}
	return false
}
