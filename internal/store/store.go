// Package store defines the persistence records and queries for review
// run history.
package store

import (
	"context"
	"time"

	"github.com/zigzalgo/autoreview/internal/domain"
)

// Run is the persisted metadata of one review run.
type Run struct {
	RunID     string
	Timestamp time.Time
	RepoRoot  string
	Segments  int
	Succeeded int
}

// AnnotationRecord is one persisted annotation, keyed to its run.
type AnnotationRecord struct {
	RunID    string
	Path     string
	Position *int
	Line     *int
	Side     string
	Body     string
}

// DiagnosticRecord is one persisted recoverable warning, keyed to its
// run.
type DiagnosticRecord struct {
	RunID   string
	Message string
}

// Store provides run-history persistence and retrieval.
type Store interface {
	CreateRun(ctx context.Context, run Run) error
	GetRun(ctx context.Context, runID string) (Run, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	SaveAnnotations(ctx context.Context, runID string, annotations []domain.Annotation) error
	GetAnnotationsByRun(ctx context.Context, runID string) ([]AnnotationRecord, error)

	SaveDiagnostics(ctx context.Context, runID string, diagnostics []string) error
	GetDiagnosticsByRun(ctx context.Context, runID string) ([]DiagnosticRecord, error)

	Close() error
}
