package probe

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/notargets/femview/mesh"
	"github.com/notargets/femview/neutral"

	_ "modernc.org/sqlite"
)

// Store keeps the raw samples of every bound step so per-entity time series
// can be read back without touching the snapshot files.
type Store struct {
	conn *sql.DB
	path string
}

// Open opens (or creates) the SQLite file at path
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create probe directory: %w", err)
	}
	conn, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer
	conn.SetMaxOpenConns(1)

	s := &Store{conn: conn, path: path}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) Path() string { return s.path }

func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS steps (
			step INTEGER PRIMARY KEY,
			time REAL NOT NULL,
			set_id INTEGER NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			run_id TEXT NOT NULL REFERENCES runs(id)
		)`,
		`CREATE TABLE IF NOT EXISTS group_entities (
			group_name TEXT NOT NULL,
			kind INTEGER NOT NULL,
			entity_id INTEGER NOT NULL,
			PRIMARY KEY (group_name, kind, entity_id)
		)`,
		`CREATE TABLE IF NOT EXISTS samples (
			step INTEGER NOT NULL REFERENCES steps(step),
			field TEXT NOT NULL,
			kind INTEGER NOT NULL,
			entity_id INTEGER NOT NULL,
			value REAL NOT NULL,
			PRIMARY KEY (step, field, entity_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_samples_entity ON samples(entity_id)`,
		`CREATE INDEX IF NOT EXISTS idx_group_entities_entity ON group_entities(kind, entity_id)`,
	}
	for _, m := range migrations {
		if _, err := s.conn.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

// BeginRun registers one bind invocation and returns its id
func (s *Store) BeginRun(ctx context.Context, source string) (string, error) {
	id := uuid.NewString()
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO runs (id, source, created_at) VALUES (?, ?, ?)`,
		id, source, time.Now(),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// RegisterMesh records which elements and nodes belong to each group,
// replacing any membership registered before
func (s *Store) RegisterMesh(ctx context.Context, m *mesh.Mesh) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err = tx.ExecContext(ctx, `DELETE FROM group_entities`); err != nil {
		return fmt.Errorf("clear groups: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO group_entities (group_name, kind, entity_id) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for g := range m.Groups {
		grp := &m.Groups[g]
		seen := make(map[int]bool)
		for i, c := range grp.Cells {
			if _, err = stmt.ExecContext(ctx, grp.Name, int(neutral.Elemental), grp.ElementIDs[i]); err != nil {
				return fmt.Errorf("group %s: %w", grp.Name, err)
			}
			for _, v := range c.Vertices {
				if seen[v] {
					continue
				}
				seen[v] = true
				if _, err = stmt.ExecContext(ctx, grp.Name, int(neutral.Nodal), m.Index.SourceID(v)); err != nil {
					return fmt.Errorf("group %s: %w", grp.Name, err)
				}
			}
		}
	}
	return tx.Commit()
}

// RecordStep stores the values of one output set under a step index.
// Recording the same step and field again replaces the earlier samples.
func (s *Store) RecordStep(ctx context.Context, runID string, step int, set neutral.TimeSet, vectors []neutral.ResultVector) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO steps (step, time, set_id, title, run_id) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(step) DO UPDATE SET run_id=excluded.run_id`,
		step, set.Time, set.ID, set.Title, runID,
	)
	if err != nil {
		return fmt.Errorf("upsert step %d: %w", step, err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO samples (step, field, kind, entity_id, value) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(step, field, entity_id) DO UPDATE SET kind=excluded.kind, value=excluded.value`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, v := range vectors {
		if v.SetID != set.ID {
			continue
		}
		for id, val := range v.Values {
			if _, err = stmt.ExecContext(ctx, step, v.Name, int(v.Kind), id, val); err != nil {
				return fmt.Errorf("step %d field %s: %w", step, v.Name, err)
			}
		}
	}
	return tx.Commit()
}

// Steps returns the recorded step times in step order
func (s *Store) Steps(ctx context.Context) ([]float64, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT time FROM steps ORDER BY step ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var times []float64
	for rows.Next() {
		var t float64
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		times = append(times, t)
	}
	return times, rows.Err()
}
