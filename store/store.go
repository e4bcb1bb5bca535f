// Package store keeps a SQLite history of finished relaxation runs and the
// final shape of their districts.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/katalvlaran/redistrict/grid"
	"github.com/katalvlaran/redistrict/relax"
)

// ErrNotFound is returned by GetRun for an unknown id.
var ErrNotFound = errors.New("store: run not found")

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// timeLayout is fixed width so that started_at sorts chronologically as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id              TEXT PRIMARY KEY,
	started_at      TEXT NOT NULL,
	source          TEXT NOT NULL,
	width           INTEGER NOT NULL,
	height          INTEGER NOT NULL,
	districts       INTEGER NOT NULL,
	metric          TEXT NOT NULL,
	policy          TEXT NOT NULL,
	randomness      REAL NOT NULL,
	seed            INTEGER NOT NULL,
	updates         INTEGER NOT NULL,
	iterations      INTEGER NOT NULL,
	accepted        INTEGER NOT NULL,
	random_accepted INTEGER NOT NULL,
	guard_rejected  INTEGER NOT NULL,
	score_rejected  INTEGER NOT NULL,
	elapsed_ms      INTEGER NOT NULL,
	output          TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS runs_started ON runs(started_at);

CREATE TABLE IF NOT EXISTS district_stats (
	run_id      TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	district    INTEGER NOT NULL,
	population  INTEGER NOT NULL,
	centroid_x  REAL NOT NULL,
	centroid_y  REAL NOT NULL,
	components  INTEGER NOT NULL,
	PRIMARY KEY (run_id, district)
);
`

// Run is one recorded relaxation.
type Run struct {
	ID         string
	StartedAt  time.Time
	Source     string
	Width      int
	Height     int
	Districts  int
	Metric     string
	Policy     string
	Randomness float64
	Seed       int64
	Updates    int
	Stats      relax.Stats
	Output     string
}

// District is the final state of one district of a run.
type District struct {
	District   int
	Population int
	CentroidX  float64
	CentroidY  float64
	Components int
}

// Summarize captures every district of g. Empty districts are included with
// zero population and a zero centroid.
// Complexity: O(K × W×H) for the component scans.
func Summarize(g *grid.Grid) []District {
	out := make([]District, 0, g.Districts())
	for l := 1; l <= g.Districts(); l++ {
		d := District{District: l, Population: g.Population(l)}
		if d.Population > 0 {
			d.CentroidX, d.CentroidY = g.CentroidF(l)
			d.Components = len(g.Components(l))
		}
		out = append(out, d)
	}

	return out
}

// Store wraps the history database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("store: mkdir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1) // sqlite
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error { return s.db.Close() }

// withTx runs fn in a transaction.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// RecordRun inserts run and its districts atomically and returns the run id,
// generating one when run.ID is empty.
func (s *Store) RecordRun(ctx context.Context, run Run, districts []District) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	st := run.Stats

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs(id, started_at, source, width, height, districts, metric, policy,
			randomness, seed, updates, iterations, accepted, random_accepted,
			guard_rejected, score_rejected, elapsed_ms, output)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
		`, run.ID, run.StartedAt.UTC().Format(timeLayout), run.Source, run.Width, run.Height,
			run.Districts, run.Metric, run.Policy, run.Randomness, run.Seed, run.Updates,
			st.Iterations, st.Accepted, st.RandomAccepted, st.GuardRejected, st.ScoreRejected,
			st.Elapsed.Milliseconds(), run.Output); err != nil {
			return fmt.Errorf("insert run: %w", err)
		}
		for _, d := range districts {
			if _, err := tx.ExecContext(ctx, `
			INSERT INTO district_stats(run_id, district, population, centroid_x, centroid_y, components)
			VALUES (?, ?, ?, ?, ?, ?);
			`, run.ID, d.District, d.Population, d.CentroidX, d.CentroidY, d.Components); err != nil {
				return fmt.Errorf("insert district %d: %w", d.District, err)
			}
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("store: %w", err)
	}

	return run.ID, nil
}

const runColumns = `id, started_at, source, width, height, districts, metric, policy,
	randomness, seed, updates, iterations, accepted, random_accepted,
	guard_rejected, score_rejected, elapsed_ms, output`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		r       Run
		started string
		ms      int64
	)
	if err := row.Scan(&r.ID, &started, &r.Source, &r.Width, &r.Height, &r.Districts,
		&r.Metric, &r.Policy, &r.Randomness, &r.Seed, &r.Updates,
		&r.Stats.Iterations, &r.Stats.Accepted, &r.Stats.RandomAccepted,
		&r.Stats.GuardRejected, &r.Stats.ScoreRejected, &ms, &r.Output); err != nil {
		return Run{}, err
	}
	t, err := time.Parse(timeLayout, started)
	if err != nil {
		return Run{}, fmt.Errorf("parse started_at %q: %w", started, err)
	}
	r.StartedAt = t
	r.Stats.Elapsed = time.Duration(ms) * time.Millisecond

	return r, nil
}

// ListRuns returns up to limit runs, newest first. limit ≤ 0 returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	q := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan run: %w", err)
		}
		out = append(out, r)
	}

	return out, rows.Err()
}

// GetRun returns one run and its districts ordered by district number.
func (s *Store) GetRun(ctx context.Context, id string) (Run, []District, error) {
	r, err := scanRun(s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Run{}, nil, fmt.Errorf("store: get run: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
	SELECT district, population, centroid_x, centroid_y, components
	FROM district_stats WHERE run_id = ? ORDER BY district`, id)
	if err != nil {
		return Run{}, nil, fmt.Errorf("store: get districts: %w", err)
	}
	defer rows.Close()

	var ds []District
	for rows.Next() {
		var d District
		if err := rows.Scan(&d.District, &d.Population, &d.CentroidX, &d.CentroidY, &d.Components); err != nil {
			return Run{}, nil, fmt.Errorf("store: scan district: %w", err)
		}
		ds = append(ds, d)
	}

	return r, ds, rows.Err()
}

// DeleteRun removes a run and, through the foreign key, its districts.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return nil
}
