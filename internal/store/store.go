// Package store archives computed light curves in a SQLite file so ensemble
// runs can be inspected after the fact. It relies solely on the standard
// database/sql package over the pure-Go sqlite driver.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store is a handle on the run archive.
type Store struct {
	db *sql.DB
}

// RunMeta describes one archived run.
type RunMeta struct {
	ID           int64
	CreatedAt    time.Time
	Mode         string // rotation | transit
	Scenario     string // scenario file contents or description
	Realizations int
	Samples      int
}

// Open opens (and if necessary creates) the archive at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open archive %q: %w", path, err)
	}
	// The archive is written by a single CLI process; one connection keeps
	// sqlite's locking out of the picture.
	db.SetMaxOpenConns(1)
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

func migrate(db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at    TEXT    NOT NULL,
	mode          TEXT    NOT NULL,
	scenario      TEXT    NOT NULL,
	realizations  INTEGER NOT NULL,
	samples       INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS flux_samples (
	run_id       INTEGER NOT NULL REFERENCES runs(id),
	idx          INTEGER NOT NULL,
	realization  INTEGER NOT NULL,
	t            REAL    NOT NULL,
	flux         REAL    NOT NULL,
	PRIMARY KEY (run_id, idx, realization)
);`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// SaveRun archives one light curve. times holds the phase-or-time axis and
// flux one row per sample with one column per realization.
func (s *Store) SaveRun(ctx context.Context, mode, scenario string, times []float64, flux [][]float64) (int64, error) {
	if len(flux) != len(times) {
		return 0, fmt.Errorf("flux has %d rows for %d times", len(flux), len(times))
	}
	nReal := 0
	if len(flux) > 0 {
		nReal = len(flux[0])
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (created_at, mode, scenario, realizations, samples) VALUES (?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339Nano), mode, scenario, nReal, len(times),
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO flux_samples (run_id, idx, realization, t, flux) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare samples: %w", err)
	}
	defer stmt.Close()

	for i, t := range times {
		if len(flux[i]) != nReal {
			return 0, fmt.Errorf("flux row %d has ragged width %d", i, len(flux[i]))
		}
		for j, f := range flux[i] {
			if _, err := stmt.ExecContext(ctx, runID, i, j, t, f); err != nil {
				return 0, fmt.Errorf("insert sample (%d,%d): %w", i, j, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return runID, nil
}

// ListRuns returns the archived run metadata, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]RunMeta, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, mode, scenario, realizations, samples FROM runs ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []RunMeta
	for rows.Next() {
		var (
			m  RunMeta
			ts string
		)
		if err := rows.Scan(&m.ID, &ts, &m.Mode, &m.Scenario, &m.Realizations, &m.Samples); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if m.CreatedAt, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("parse created_at %q: %w", ts, err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// LoadRun reads back one archived light curve.
func (s *Store) LoadRun(ctx context.Context, runID int64) ([]float64, [][]float64, error) {
	var nReal, nSamples int
	err := s.db.QueryRowContext(ctx,
		`SELECT realizations, samples FROM runs WHERE id = ?`, runID).Scan(&nReal, &nSamples)
	if err == sql.ErrNoRows {
		return nil, nil, fmt.Errorf("run %d not found", runID)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load run %d: %w", runID, err)
	}

	times := make([]float64, nSamples)
	flux := make([][]float64, nSamples)
	for i := range flux {
		flux[i] = make([]float64, nReal)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT idx, realization, t, flux FROM flux_samples WHERE run_id = ? ORDER BY idx, realization`, runID)
	if err != nil {
		return nil, nil, fmt.Errorf("load samples: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			idx, j int
			t, f   float64
		)
		if err := rows.Scan(&idx, &j, &t, &f); err != nil {
			return nil, nil, fmt.Errorf("scan sample: %w", err)
		}
		if idx < 0 || idx >= nSamples || j < 0 || j >= nReal {
			return nil, nil, fmt.Errorf("sample (%d,%d) outside run shape (%d,%d)", idx, j, nSamples, nReal)
		}
		times[idx] = t
		flux[idx][j] = f
	}
	return times, flux, rows.Err()
}
