package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zigzalgo/autoreview/internal/diff"
	"github.com/zigzalgo/autoreview/internal/domain"
	"github.com/zigzalgo/autoreview/internal/locate"
)

// Engine defines the outbound port for the external analysis engine.
type Engine interface {
	// Analyze returns the issue list for one file, given its full current
	// content and the opaque diff body covering it.
	Analyze(ctx context.Context, req EngineRequest) ([]domain.Issue, error)
}

// EngineRequest describes the payload the analysis engine expects.
type EngineRequest struct {
	Path        string
	FileContent string
	DiffBody    []string
}

// ContentSource defines the outbound port for reading current file
// contents from the repository checkout.
type ContentSource interface {
	ReadFile(path string) ([]byte, error)
}

// Logger defines the outbound port for structured warnings and info.
type Logger interface {
	LogWarning(ctx context.Context, message string, fields map[string]interface{})
	LogInfo(ctx context.Context, message string, fields map[string]interface{})
}

// Store defines the outbound port for persisting run history.
type Store interface {
	CreateRun(ctx context.Context, run StoreRun) error
	SaveAnnotations(ctx context.Context, runID string, annotations []domain.Annotation) error
	SaveDiagnostics(ctx context.Context, runID string, diagnostics []string) error
	Close() error
}

// StoreRun captures run metadata for persistence.
type StoreRun struct {
	RunID     string
	Timestamp time.Time
	RepoRoot  string
	Segments  int
	Succeeded int
}

// SegmentFailure records a per-segment fatal error. The orchestrator
// continues with remaining segments unless fail-fast is requested.
type SegmentFailure struct {
	Index  int
	Header string
	Path   string
	Err    error
}

// Request is an inbound review request.
type Request struct {
	// DiffLines is the raw concatenated unified-diff input, split into lines.
	DiffLines []string

	// RepoRoot is the repository checkout the diff applies to. Always an
	// explicit value, never process-wide state.
	RepoRoot string

	// FailFast aborts the whole run on the first segment-level error.
	FailFast bool

	// Concurrency caps parallel per-segment work. Values below 2 mean
	// sequential processing.
	Concurrency int

	// SegmentTimeout bounds each segment's engine call. A timed-out
	// segment contributes zero annotations and a diagnostic. Zero means
	// no per-segment timeout.
	SegmentTimeout time.Duration
}

// Result captures the orchestrator outcome.
type Result struct {
	Annotations []domain.Annotation
	Segments    int
	Succeeded   int
	Failures    []SegmentFailure
	Unmatched   []domain.UnmatchedSnippetWarning
	OutOfHunk   []domain.OutOfHunkWarning
}

// Diagnostics renders every per-segment failure and non-fatal warning as
// a flat string list, for the run summary and the history store.
func (r Result) Diagnostics() []string {
	var out []string
	for _, f := range r.Failures {
		out = append(out, fmt.Sprintf("segment %d (%s): %v", f.Index, f.Header, f.Err))
	}
	for _, w := range r.Unmatched {
		out = append(out, w.String())
	}
	for _, w := range r.OutOfHunk {
		out = append(out, w.String())
	}
	return out
}

// OrchestratorDeps captures the collaborators for the orchestrator.
type OrchestratorDeps struct {
	Engine  Engine
	Content ContentSource
	Locator *locate.Locator
	Store   Store  // Optional: run history persistence
	Logger  Logger // Optional: structured logging

	// SeparatorPrefix overrides the "diff" segment separator. Empty uses
	// the default.
	SeparatorPrefix string
}

// Orchestrator drives the segment pipeline: segment the diff, resolve
// each segment's path, fetch content, analyze, locate, assemble.
type Orchestrator struct {
	deps OrchestratorDeps
}

// NewOrchestrator wires the orchestrator dependencies. A nil Locator is
// replaced with one using default options.
func NewOrchestrator(deps OrchestratorDeps) *Orchestrator {
	if deps.Locator == nil {
		deps.Locator = locate.New(locate.Options{HeaderSkipCount: locate.DefaultHeaderSkipCount})
	}
	return &Orchestrator{deps: deps}
}

func (o *Orchestrator) validateDependencies() error {
	if o.deps.Engine == nil {
		return errors.New("analysis engine is required")
	}
	if o.deps.Content == nil {
		return errors.New("content source is required")
	}
	return nil
}

// segmentOutcome is the result of processing one segment. Exactly one of
// failure or the warning slices is meaningful; annotations go straight
// to the assembler.
type segmentOutcome struct {
	failure   *SegmentFailure
	unmatched []domain.UnmatchedSnippetWarning
	outOfHunk []domain.OutOfHunkWarning
}

// Run executes the pipeline for one diff. Per-segment fatal errors
// (malformed header, missing file, engine failure, timeout) abort only
// that segment's contribution; the run errors only when fail-fast is set
// or no segment at all succeeded.
func (o *Orchestrator) Run(ctx context.Context, req Request) (Result, error) {
	if err := o.validateDependencies(); err != nil {
		return Result{}, err
	}

	segments := diff.Segment(req.DiffLines, o.deps.SeparatorPrefix)
	result := Result{Segments: len(segments)}
	if len(segments) == 0 {
		return result, nil
	}

	assembler := NewAssembler(len(segments))
	outcomes := make([]segmentOutcome, len(segments))

	group, groupCtx := errgroup.WithContext(ctx)
	limit := req.Concurrency
	if limit < 2 {
		limit = 1
	}
	group.SetLimit(limit)

	for i, segment := range segments {
		group.Go(func() error {
			outcome := o.processSegment(groupCtx, i, segment, req, assembler)
			outcomes[i] = outcome

			if outcome.failure != nil && req.FailFast {
				return fmt.Errorf("segment %d (%s): %w", i, segment.Header, outcome.failure.Err)
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return Result{}, err
	}

	succeeded := 0
	for _, outcome := range outcomes {
		if outcome.failure != nil {
			result.Failures = append(result.Failures, *outcome.failure)
			continue
		}
		succeeded++
		result.Unmatched = append(result.Unmatched, outcome.unmatched...)
		result.OutOfHunk = append(result.OutOfHunk, outcome.outOfHunk...)
	}
	result.Succeeded = succeeded
	result.Annotations = assembler.Flatten()

	if succeeded == 0 {
		return result, fmt.Errorf("all %d segments failed", len(segments))
	}

	o.logSummary(ctx, result)
	o.persist(ctx, req, result)

	return result, nil
}

// processSegment runs the full per-segment pipeline. It touches no
// shared state beyond the assembler.
func (o *Orchestrator) processSegment(ctx context.Context, index int, segment domain.DiffSegment, req Request, assembler *Assembler) segmentOutcome {
	var outcome segmentOutcome

	fail := func(path string, err error) {
		outcome.failure = &SegmentFailure{Index: index, Header: segment.Header, Path: path, Err: err}
		o.logWarning(ctx, "segment failed", map[string]interface{}{
			"segment": index,
			"header":  segment.Header,
			"error":   err.Error(),
		})
	}

	sourcePath, err := diff.SourcePath(segment.Header)
	if err != nil {
		fail("", err)
		return outcome
	}
	segment.SourcePath = sourcePath

	resolved, err := diff.Resolve(segment.Header, req.RepoRoot)
	if err != nil {
		fail(sourcePath, err)
		return outcome
	}

	content, err := o.deps.Content.ReadFile(resolved)
	if err != nil {
		var notFound *domain.NotFoundError
		if !errors.As(err, &notFound) {
			err = &domain.NotFoundError{Path: resolved, Err: err}
		}
		fail(sourcePath, err)
		return outcome
	}

	segmentCtx := ctx
	if req.SegmentTimeout > 0 {
		var cancel context.CancelFunc
		segmentCtx, cancel = context.WithTimeout(ctx, req.SegmentTimeout)
		defer cancel()
	}

	issues, err := o.deps.Engine.Analyze(segmentCtx, EngineRequest{
		Path:        sourcePath,
		FileContent: string(content),
		DiffBody:    segment.Body,
	})
	if err != nil {
		fail(sourcePath, err)
		return outcome
	}

	located := o.deps.Locator.Locate(segment, issues)
	assembler.Put(index, located.Annotations)
	outcome.unmatched = located.Unmatched
	outcome.outOfHunk = located.OutOfHunk
	return outcome
}

func (o *Orchestrator) logSummary(ctx context.Context, result Result) {
	if o.deps.Logger == nil {
		return
	}
	o.deps.Logger.LogInfo(ctx, "review completed", map[string]interface{}{
		"segments":    result.Segments,
		"succeeded":   result.Succeeded,
		"failed":      len(result.Failures),
		"annotations": len(result.Annotations),
		"unmatched":   len(result.Unmatched),
	})
}

func (o *Orchestrator) logWarning(ctx context.Context, message string, fields map[string]interface{}) {
	if o.deps.Logger == nil {
		return
	}
	o.deps.Logger.LogWarning(ctx, message, fields)
}

// persist saves the run to the history store, if configured. Store
// failures never break a review.
func (o *Orchestrator) persist(ctx context.Context, req Request, result Result) {
	if o.deps.Store == nil {
		return
	}

	now := time.Now()
	runID := generateRunID(now, req.RepoRoot)
	run := StoreRun{
		RunID:     runID,
		Timestamp: now,
		RepoRoot:  req.RepoRoot,
		Segments:  result.Segments,
		Succeeded: result.Succeeded,
	}

	if err := o.deps.Store.CreateRun(ctx, run); err != nil {
		o.logWarning(ctx, "failed to create run record", map[string]interface{}{"runID": runID, "error": err.Error()})
		return
	}
	if err := o.deps.Store.SaveAnnotations(ctx, runID, result.Annotations); err != nil {
		o.logWarning(ctx, "failed to save annotations", map[string]interface{}{"runID": runID, "error": err.Error()})
	}
	if diags := result.Diagnostics(); len(diags) > 0 {
		if err := o.deps.Store.SaveDiagnostics(ctx, runID, diags); err != nil {
			o.logWarning(ctx, "failed to save diagnostics", map[string]interface{}{"runID": runID, "error": err.Error()})
		}
	}
}
