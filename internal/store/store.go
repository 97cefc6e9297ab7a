// Package store persists enrolment records in SQLite and hands the
// analytics layer uniform tabular snapshots. modernc.org/sqlite keeps the
// binary free of cgo.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"

	"uidpulse/internal/dataset"
)

// ErrFileAlreadyLoaded is returned when an upload's filename was ingested
// before; uploads are deduplicated by name.
var ErrFileAlreadyLoaded = errors.New("file already processed")

// recordColumns is the fixed schema of the enrolment table, in snapshot
// column order.
var recordColumns = []string{
	"state",
	"district",
	"sub_district",
	"pincode",
	"gender",
	"age",
	"enrolment_agency",
	"registrar",
	"status",
	"date",
	"total_enrolments",
	"total_updates",
	"demo_age_5_17",
	"demo_age_17_",
	"bio_age_5_17",
	"bio_age_17_",
}

const schema = `
CREATE TABLE IF NOT EXISTS enrolment_records (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	state TEXT,
	district TEXT,
	sub_district TEXT,
	pincode TEXT,
	gender TEXT,
	age INTEGER,
	enrolment_agency TEXT,
	registrar TEXT,
	status TEXT,
	date TEXT,
	total_enrolments INTEGER DEFAULT 0,
	total_updates INTEGER DEFAULT 0,
	demo_age_5_17 INTEGER DEFAULT 0,
	demo_age_17_ INTEGER DEFAULT 0,
	bio_age_5_17 INTEGER DEFAULT 0,
	bio_age_17_ INTEGER DEFAULT 0,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS uploaded_files (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	filename TEXT UNIQUE,
	record_count INTEGER,
	uploaded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_enrolment_records_state ON enrolment_records(state);
CREATE INDEX IF NOT EXISTS idx_enrolment_records_status ON enrolment_records(status);
`

// Store wraps the SQLite database holding ingested enrolment records.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the SQLite database at path and ensures
// the schema exists.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	logger.Info("record store opened", slog.String("path", path))
	return &Store{db: db, logger: logger}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// InsertDataset bulk-inserts a parsed dataset under the given source
// filename. Dataset columns outside the fixed schema are ignored; a
// previously loaded filename returns ErrFileAlreadyLoaded.
func (s *Store) InsertDataset(ctx context.Context, d *dataset.Dataset, filename string) (int, error) {
	var existing int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM uploaded_files WHERE filename = ?", filename).Scan(&existing)
	if err != nil {
		return 0, fmt.Errorf("check uploaded files: %w", err)
	}
	if existing > 0 {
		return 0, ErrFileAlreadyLoaded
	}

	known := make(map[string]struct{}, len(recordColumns))
	for _, c := range recordColumns {
		known[c] = struct{}{}
	}
	var cols []string
	for _, c := range d.Columns {
		if _, ok := known[c]; ok {
			cols = append(cols, c)
		}
	}
	if len(cols) == 0 {
		return 0, fmt.Errorf("dataset has no storable columns")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	placeholders := "?"
	for i := 1; i < len(cols); i++ {
		placeholders += ", ?"
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO enrolment_records (%s) VALUES (%s)",
		joinColumns(cols), placeholders))
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, row := range d.Rows {
		args := make([]any, len(cols))
		for i, c := range cols {
			args[i] = row[c]
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("insert row: %w", err)
		}
		inserted++
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO uploaded_files (filename, record_count) VALUES (?, ?)",
		filename, inserted); err != nil {
		return 0, fmt.Errorf("record upload: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit insert: %w", err)
	}

	s.logger.InfoContext(ctx, "dataset stored",
		slog.String("file", filename),
		slog.Int("rows", inserted))
	return inserted, nil
}

// Snapshot fetches all records as a uniform tabular dataset. Analytics
// operate on the returned snapshot and never touch the database again
// during a computation.
func (s *Store) Snapshot(ctx context.Context) (*dataset.Dataset, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		"SELECT %s FROM enrolment_records ORDER BY id", joinColumns(recordColumns)))
	if err != nil {
		return nil, fmt.Errorf("fetch records: %w", err)
	}
	defer rows.Close()

	d := dataset.New(append([]string(nil), recordColumns...))
	for rows.Next() {
		scanned := make([]sql.NullString, len(recordColumns))
		targets := make([]any, len(recordColumns))
		for i := range scanned {
			targets[i] = &scanned[i]
		}
		if err := rows.Scan(targets...); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec := make(dataset.Record, len(recordColumns))
		for i, c := range recordColumns {
			if scanned[i].Valid {
				rec[c] = scanned[i].String
			}
		}
		d.Append(rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return d, nil
}

// Stats summarizes the stored records for the dashboard without loading a
// full snapshot.
type Stats struct {
	TotalRecords     int64            `json:"total_records"`
	ByStatus         map[string]int64 `json:"by_status"`
	TopStates        []StateCount     `json:"top_states"`
	TotalDemographic int64            `json:"total_demographic"`
	TotalBiometric   int64            `json:"total_biometric"`
}

// StateCount pairs a state label with its summed enrolments.
type StateCount struct {
	State string `json:"state"`
	Total int64  `json:"total"`
}

// Stats computes the dashboard aggregates in SQL.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{ByStatus: map[string]int64{}}

	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM enrolment_records").Scan(&stats.TotalRecords); err != nil {
		return nil, fmt.Errorf("count records: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT COALESCE(status, ''), COUNT(*) FROM enrolment_records GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		stats.ByStatus[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status counts: %w", err)
	}

	stateRows, err := s.db.QueryContext(ctx, `
		SELECT COALESCE(state, ''), COALESCE(SUM(total_enrolments), 0) AS total
		FROM enrolment_records GROUP BY state ORDER BY total DESC LIMIT 5`)
	if err != nil {
		return nil, fmt.Errorf("top states: %w", err)
	}
	defer stateRows.Close()
	for stateRows.Next() {
		var sc StateCount
		if err := stateRows.Scan(&sc.State, &sc.Total); err != nil {
			return nil, fmt.Errorf("scan state count: %w", err)
		}
		stats.TopStates = append(stats.TopStates, sc)
	}
	if err := stateRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate state counts: %w", err)
	}

	if err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(demo_age_5_17 + demo_age_17_), 0),
		       COALESCE(SUM(bio_age_5_17 + bio_age_17_), 0)
		FROM enrolment_records`).Scan(&stats.TotalDemographic, &stats.TotalBiometric); err != nil {
		return nil, fmt.Errorf("bracket totals: %w", err)
	}

	return stats, nil
}

// UploadedFiles lists the filenames already ingested, oldest first.
func (s *Store) UploadedFiles(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT filename FROM uploaded_files ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list uploaded files: %w", err)
	}
	defer rows.Close()

	files := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan filename: %w", err)
		}
		files = append(files, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate filenames: %w", err)
	}
	return files, nil
}

// Ping verifies the database is reachable, for health checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func joinColumns(cols []string) string {
	out := ""
	for i, c := range cols {
		if i > 0 {
			out += ", "
		}
		out += c
	}
	return out
}
