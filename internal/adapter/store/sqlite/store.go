// Package sqlite implements run-history persistence on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/zigzalgo/autoreview/internal/domain"
	"github.com/zigzalgo/autoreview/internal/store"
)

// Store implements the store.Store interface using SQLite.
type Store struct {
	db *sql.DB
}

// NewStore creates a new SQLite store at the given path.
// Use ":memory:" for an in-memory database (useful for testing).
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return s, nil
}

func (s *Store) createSchema() error {
	schema := `
	-- Metadata about each review run
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		timestamp INTEGER NOT NULL,
		repo_root TEXT NOT NULL,
		segments INTEGER NOT NULL,
		succeeded INTEGER NOT NULL
	);

	-- Positioned annotations produced by a run
	CREATE TABLE IF NOT EXISTS annotations (
		annotation_id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		path TEXT NOT NULL,
		position INTEGER,
		line INTEGER,
		side TEXT,
		body TEXT NOT NULL,
		FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
	);

	-- Recoverable warnings produced by a run
	CREATE TABLE IF NOT EXISTS diagnostics (
		diagnostic_id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		message TEXT NOT NULL,
		FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_annotations_run ON annotations(run_id);
	CREATE INDEX IF NOT EXISTS idx_diagnostics_run ON diagnostics(run_id);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// CreateRun stores a new review run.
func (s *Store) CreateRun(ctx context.Context, run store.Run) error {
	query := `
		INSERT INTO runs (run_id, timestamp, repo_root, segments, succeeded)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		run.RunID,
		run.Timestamp.Unix(),
		run.RepoRoot,
		run.Segments,
		run.Succeeded,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}

	return nil
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(ctx context.Context, runID string) (store.Run, error) {
	query := `
		SELECT run_id, timestamp, repo_root, segments, succeeded
		FROM runs
		WHERE run_id = ?
	`

	var run store.Run
	var timestamp int64

	err := s.db.QueryRowContext(ctx, query, runID).Scan(
		&run.RunID,
		&timestamp,
		&run.RepoRoot,
		&run.Segments,
		&run.Succeeded,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return store.Run{}, fmt.Errorf("run not found: %s", runID)
		}
		return store.Run{}, fmt.Errorf("failed to get run: %w", err)
	}

	run.Timestamp = time.Unix(timestamp, 0)
	return run, nil
}

// ListRuns retrieves the most recent runs, limited by the given count.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	query := `
		SELECT run_id, timestamp, repo_root, segments, succeeded
		FROM runs
		ORDER BY timestamp DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []store.Run
	for rows.Next() {
		var run store.Run
		var timestamp int64

		if err := rows.Scan(
			&run.RunID,
			&timestamp,
			&run.RepoRoot,
			&run.Segments,
			&run.Succeeded,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		run.Timestamp = time.Unix(timestamp, 0)
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

// SaveAnnotations stores all annotations of a run in one transaction.
func (s *Store) SaveAnnotations(ctx context.Context, runID string, annotations []domain.Annotation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO annotations (run_id, path, position, line, side, body)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, annotation := range annotations {
		var position, line interface{}
		if annotation.Position != nil {
			position = *annotation.Position
		}
		if annotation.Line != nil {
			line = *annotation.Line
		}

		if _, err := stmt.ExecContext(ctx,
			runID,
			annotation.Path,
			position,
			line,
			string(annotation.Side),
			annotation.Body,
		); err != nil {
			return fmt.Errorf("failed to insert annotation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetAnnotationsByRun retrieves all annotations for a given run in
// insertion order.
func (s *Store) GetAnnotationsByRun(ctx context.Context, runID string) ([]store.AnnotationRecord, error) {
	query := `
		SELECT run_id, path, position, line, side, body
		FROM annotations
		WHERE run_id = ?
		ORDER BY annotation_id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get annotations by run: %w", err)
	}
	defer rows.Close()

	var records []store.AnnotationRecord
	for rows.Next() {
		var record store.AnnotationRecord
		var position, line sql.NullInt64

		if err := rows.Scan(
			&record.RunID,
			&record.Path,
			&position,
			&line,
			&record.Side,
			&record.Body,
		); err != nil {
			return nil, fmt.Errorf("failed to scan annotation: %w", err)
		}

		if position.Valid {
			v := int(position.Int64)
			record.Position = &v
		}
		if line.Valid {
			v := int(line.Int64)
			record.Line = &v
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating annotations: %w", err)
	}

	return records, nil
}

// SaveDiagnostics stores all diagnostics of a run in one transaction.
func (s *Store) SaveDiagnostics(ctx context.Context, runID string, diagnostics []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO diagnostics (run_id, message)
		VALUES (?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, message := range diagnostics {
		if _, err := stmt.ExecContext(ctx, runID, message); err != nil {
			return fmt.Errorf("failed to insert diagnostic: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetDiagnosticsByRun retrieves all diagnostics for a given run in
// insertion order.
func (s *Store) GetDiagnosticsByRun(ctx context.Context, runID string) ([]store.DiagnosticRecord, error) {
	query := `
		SELECT run_id, message
		FROM diagnostics
		WHERE run_id = ?
		ORDER BY diagnostic_id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get diagnostics by run: %w", err)
	}
	defer rows.Close()

	var records []store.DiagnosticRecord
	for rows.Next() {
		var record store.DiagnosticRecord
		if err := rows.Scan(&record.RunID, &record.Message); err != nil {
			return nil, fmt.Errorf("failed to scan diagnostic: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating diagnostics: %w", err)
	}

	return records, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
