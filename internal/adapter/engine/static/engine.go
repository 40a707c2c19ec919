// Package static provides an offline analysis engine that returns canned
// issues. It backs dry runs and tests where no API access is available.
package static

import (
	"context"

	"github.com/zigzalgo/autoreview/internal/domain"
	"github.com/zigzalgo/autoreview/internal/usecase/review"
)

// Engine returns pre-configured issues keyed by resolved file path.
type Engine struct {
	issues map[string][]domain.Issue
}

// New constructs a static engine. A nil map means every file reviews
// clean.
func New(issues map[string][]domain.Issue) *Engine {
	return &Engine{issues: issues}
}

// Name identifies the engine in errors and logs.
func (e *Engine) Name() string { return "static" }

// Analyze returns the canned issues for the request path, or an empty
// list when none are configured.
func (e *Engine) Analyze(ctx context.Context, req review.EngineRequest) ([]domain.Issue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if canned, ok := e.issues[req.Path]; ok {
		out := make([]domain.Issue, len(canned))
		copy(out, canned)
		return out, nil
	}
	return []domain.Issue{}, nil
}

// Close is a no-op for the static engine.
func (e *Engine) Close() error { return nil }
