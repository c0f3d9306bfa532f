package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// CatalogFile is the catalog database name inside a store directory.
const CatalogFile = "runs.db"

// fixed width so created_at sorts lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const catalogSchema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    substrate TEXT NOT NULL,
    created_at TEXT NOT NULL,
    seed INTEGER NOT NULL,
    steps INTEGER NOT NULL,
    cones INTEGER NOT NULL,
    adaptation TEXT NOT NULL,
    metrics TEXT  -- JSON object
);
CREATE INDEX IF NOT EXISTS idx_runs_substrate ON runs(substrate);

CREATE TABLE IF NOT EXISTS run_metrics (
    run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    value REAL NOT NULL,
    PRIMARY KEY (run_id, name)
);
CREATE INDEX IF NOT EXISTS idx_run_metrics_name ON run_metrics(name, value);
`

// Catalog indexes run metadata in SQLite so runs can be filtered and
// ranked by metric without reading every run directory.
type Catalog struct {
	db *sql.DB
}

// OpenCatalog opens (or creates) the catalog at path. Use ":memory:" for a
// throwaway catalog.
func OpenCatalog(ctx context.Context, path string) (*Catalog, error) {
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, catalogSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create catalog schema: %w", err)
	}
	return &Catalog{db: db}, nil
}

// OpenStoreCatalog opens the catalog that lives next to a store's runs.
func OpenStoreCatalog(ctx context.Context, s *Store) (*Catalog, error) {
	return OpenCatalog(ctx, filepath.Join(s.Dir(), CatalogFile))
}

func (c *Catalog) Close() error { return c.db.Close() }

// Add records a run, replacing any previous entry with the same ID.
func (c *Catalog) Add(ctx context.Context, meta RunMetadata) error {
	metrics, err := json.Marshal(meta.Metrics)
	if err != nil {
		return err
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs (id, substrate, created_at, seed, steps, cones, adaptation, metrics)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.ID, meta.Substrate, meta.Timestamp.UTC().Format(timeLayout),
		meta.Seed, meta.Steps, meta.Cones, meta.Adaptation, string(metrics),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM run_metrics WHERE run_id = ?`, meta.ID); err != nil {
		return fmt.Errorf("failed to clear metrics: %w", err)
	}
	for name, value := range meta.Metrics {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_metrics (run_id, name, value) VALUES (?, ?, ?)`,
			meta.ID, name, value,
		); err != nil {
			return fmt.Errorf("failed to insert metric %s: %w", name, err)
		}
	}
	return tx.Commit()
}

// Query filters the catalog. Empty fields match everything.
type Query struct {
	Substrate string
	// OrderBy ranks by a metric name, descending. Runs without it are
	// excluded.
	OrderBy string
	Limit   int
}

// Find returns matching runs, newest first unless OrderBy is set.
func (c *Catalog) Find(ctx context.Context, q Query) ([]RunMetadata, error) {
	stmt := `SELECT r.id, r.substrate, r.created_at, r.seed, r.steps, r.cones, r.adaptation, r.metrics FROM runs r`
	var args []any
	if q.OrderBy != "" {
		stmt += ` JOIN run_metrics m ON m.run_id = r.id AND m.name = ?`
		args = append(args, q.OrderBy)
	}
	if q.Substrate != "" {
		stmt += ` WHERE r.substrate = ?`
		args = append(args, q.Substrate)
	}
	if q.OrderBy != "" {
		stmt += ` ORDER BY m.value DESC, r.id`
	} else {
		stmt += ` ORDER BY r.created_at DESC, r.id`
	}
	if q.Limit > 0 {
		stmt += ` LIMIT ?`
		args = append(args, q.Limit)
	}

	rows, err := c.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var out []RunMetadata
	for rows.Next() {
		var (
			meta    RunMetadata
			created string
			metrics sql.NullString
		)
		if err := rows.Scan(&meta.ID, &meta.Substrate, &created, &meta.Seed, &meta.Steps, &meta.Cones, &meta.Adaptation, &metrics); err != nil {
			return nil, err
		}
		if meta.Timestamp, err = time.Parse(timeLayout, created); err != nil {
			return nil, fmt.Errorf("run %s: %w", meta.ID, err)
		}
		if metrics.Valid && metrics.String != "" {
			if err := json.Unmarshal([]byte(metrics.String), &meta.Metrics); err != nil {
				return nil, fmt.Errorf("run %s: %w", meta.ID, err)
			}
		}
		out = append(out, meta)
	}
	return out, rows.Err()
}

// Count returns the number of catalogued runs.
func (c *Catalog) Count(ctx context.Context) (int, error) {
	var n int
	err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&n)
	return n, err
}

// Sync adds every run of s that the catalog does not know yet.
func (c *Catalog) Sync(ctx context.Context, s *Store) (int, error) {
	runs, err := s.List()
	if err != nil {
		return 0, err
	}
	added := 0
	for _, meta := range runs {
		var exists int
		err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE id = ?`, meta.ID).Scan(&exists)
		if err != nil {
			return added, err
		}
		if exists > 0 {
			continue
		}
		if err := c.Add(ctx, meta); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}
