// Package store bridges the persistence layer to the review use case
// port.
package store

import (
	"context"

	"github.com/zigzalgo/autoreview/internal/domain"
	"github.com/zigzalgo/autoreview/internal/store"
	"github.com/zigzalgo/autoreview/internal/usecase/review"
)

// Bridge adapts a store.Store to the review.Store port.
type Bridge struct {
	backend store.Store
}

// NewBridge wraps a persistence backend for use by the orchestrator.
func NewBridge(backend store.Store) *Bridge {
	return &Bridge{backend: backend}
}

// CreateRun persists run metadata.
func (b *Bridge) CreateRun(ctx context.Context, run review.StoreRun) error {
	return b.backend.CreateRun(ctx, store.Run{
		RunID:     run.RunID,
		Timestamp: run.Timestamp,
		RepoRoot:  run.RepoRoot,
		Segments:  run.Segments,
		Succeeded: run.Succeeded,
	})
}

// SaveAnnotations persists the annotations of a run.
func (b *Bridge) SaveAnnotations(ctx context.Context, runID string, annotations []domain.Annotation) error {
	return b.backend.SaveAnnotations(ctx, runID, annotations)
}

// SaveDiagnostics persists the diagnostics of a run.
func (b *Bridge) SaveDiagnostics(ctx context.Context, runID string, diagnostics []string) error {
	return b.backend.SaveDiagnostics(ctx, runID, diagnostics)
}

// Close releases the backend.
func (b *Bridge) Close() error {
	return b.backend.Close()
}
