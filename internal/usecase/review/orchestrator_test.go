package review_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zigzalgo/autoreview/internal/domain"
	"github.com/zigzalgo/autoreview/internal/locate"
	"github.com/zigzalgo/autoreview/internal/usecase/review"
)

// stubEngine returns canned issues per source path.
type stubEngine struct {
	mu      sync.Mutex
	issues  map[string][]domain.Issue
	errs    map[string]error
	delay   time.Duration
	queried []string
}

func (e *stubEngine) Analyze(ctx context.Context, req review.EngineRequest) ([]domain.Issue, error) {
	if e.delay > 0 {
		select {
		case <-time.After(e.delay):
		case <-ctx.Done():
			return nil, &domain.EngineError{Engine: "stub", Reason: "cancelled", Err: ctx.Err()}
		}
	}
	e.mu.Lock()
	e.queried = append(e.queried, req.Path)
	e.mu.Unlock()
	if err, ok := e.errs[req.Path]; ok {
		return nil, err
	}
	return e.issues[req.Path], nil
}

// stubContent serves file contents from a map keyed by resolved path.
type stubContent struct {
	files map[string]string
}

func (c *stubContent) ReadFile(path string) ([]byte, error) {
	content, ok := c.files[path]
	if !ok {
		return nil, &domain.NotFoundError{Path: path}
	}
	return []byte(content), nil
}

type recordingLogger struct {
	mu       sync.Mutex
	warnings []string
	infos    []string
}

func (l *recordingLogger) LogWarning(ctx context.Context, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warnings = append(l.warnings, msg)
}

func (l *recordingLogger) LogInfo(ctx context.Context, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, msg)
}

func diffLines() []string {
	return []string{
		"diff --git a/a.py b/a.py",
		"--- a/a.py",
		"+++ b/a.py",
		"@@ -1 +1 @@",
		"+def f(): return 1/0",
		"diff --git a/b.py b/b.py",
		"--- a/b.py",
		"+++ b/b.py",
		"@@ -2 +2 @@",
		"+x = open(path)",
	}
}

func newOrchestrator(engine review.Engine, content review.ContentSource, logger review.Logger) *review.Orchestrator {
	return review.NewOrchestrator(review.OrchestratorDeps{
		Engine:  engine,
		Content: content,
		Locator: locate.New(locate.Options{HeaderSkipCount: 3}),
		Logger:  logger,
	})
}

func TestRun_TwoSegments(t *testing.T) {
	engine := &stubEngine{issues: map[string][]domain.Issue{
		"a.py": {{Kind: domain.IssueSnippet, Summary: "division by zero", Snippet: "1/0"}},
		"b.py": {{Kind: domain.IssueLine, Summary: "unclosed file", Line: 2}},
	}}
	content := &stubContent{files: map[string]string{
		"/repo/a.py": "def f(): return 1/0\n",
		"/repo/b.py": "x = open(path)\n",
	}}

	orch := newOrchestrator(engine, content, nil)
	result, err := orch.Run(context.Background(), review.Request{
		DiffLines: diffLines(),
		RepoRoot:  "/repo",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Segments)
	assert.Equal(t, 2, result.Succeeded)
	require.Len(t, result.Annotations, 2)

	first := result.Annotations[0]
	assert.Equal(t, "a.py", first.Path)
	require.NotNil(t, first.Position)
	assert.Equal(t, 3, *first.Position)

	second := result.Annotations[1]
	assert.Equal(t, "b.py", second.Path)
	require.NotNil(t, second.Line)
	assert.Equal(t, 2, *second.Line)
	assert.Equal(t, domain.SideRight, second.Side)
}

func TestRun_EmptyDiff(t *testing.T) {
	orch := newOrchestrator(&stubEngine{}, &stubContent{}, nil)
	result, err := orch.Run(context.Background(), review.Request{DiffLines: nil, RepoRoot: "/repo"})
	require.NoError(t, err)
	assert.Zero(t, result.Segments)
	assert.Empty(t, result.Annotations)
}

func TestRun_MissingFileFailsSegmentOnly(t *testing.T) {
	engine := &stubEngine{issues: map[string][]domain.Issue{
		"b.py": {{Kind: domain.IssueLine, Summary: "s", Line: 2}},
	}}
	content := &stubContent{files: map[string]string{
		// a.py is missing
		"/repo/b.py": "x = open(path)\n",
	}}
	logger := &recordingLogger{}

	orch := newOrchestrator(engine, content, logger)
	result, err := orch.Run(context.Background(), review.Request{
		DiffLines: diffLines(),
		RepoRoot:  "/repo",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Succeeded)
	require.Len(t, result.Failures, 1)
	var notFound *domain.NotFoundError
	assert.True(t, errors.As(result.Failures[0].Err, &notFound))
	assert.Len(t, result.Annotations, 1)
	assert.NotEmpty(t, logger.warnings)
}

func TestRun_AllSegmentsFailed(t *testing.T) {
	orch := newOrchestrator(&stubEngine{}, &stubContent{files: map[string]string{}}, nil)
	result, err := orch.Run(context.Background(), review.Request{
		DiffLines: diffLines(),
		RepoRoot:  "/repo",
	})
	require.Error(t, err)
	assert.Equal(t, 0, result.Succeeded)
	assert.Len(t, result.Failures, 2)
}

func TestRun_FailFast(t *testing.T) {
	engine := &stubEngine{errs: map[string]error{
		"a.py": &domain.EngineError{Engine: "stub", Reason: "bad response"},
	}}
	content := &stubContent{files: map[string]string{
		"/repo/a.py": "content",
		"/repo/b.py": "content",
	}}

	orch := newOrchestrator(engine, content, nil)
	_, err := orch.Run(context.Background(), review.Request{
		DiffLines: diffLines(),
		RepoRoot:  "/repo",
		FailFast:  true,
	})
	require.Error(t, err)
	var engineErr *domain.EngineError
	assert.True(t, errors.As(err, &engineErr))
}

func TestRun_MalformedHeaderFailsSegment(t *testing.T) {
	lines := []string{
		"diff --git a", // malformed: missing third token
		"+x",
		"diff --git a/ok.py b/ok.py",
		"--- a/ok.py",
		"+++ b/ok.py",
		"@@ -1 +1 @@",
		"+fine",
	}
	engine := &stubEngine{}
	content := &stubContent{files: map[string]string{"/repo/ok.py": "fine\n"}}

	orch := newOrchestrator(engine, content, nil)
	result, err := orch.Run(context.Background(), review.Request{DiffLines: lines, RepoRoot: "/repo"})
	require.NoError(t, err)

	require.Len(t, result.Failures, 1)
	var malformed *domain.MalformedHeaderError
	assert.True(t, errors.As(result.Failures[0].Err, &malformed))
	assert.Equal(t, 1, result.Succeeded)
}

func TestRun_SegmentTimeout(t *testing.T) {
	engine := &stubEngine{delay: 200 * time.Millisecond}
	content := &stubContent{files: map[string]string{
		"/repo/a.py": "content",
		"/repo/b.py": "content",
	}}

	orch := newOrchestrator(engine, content, nil)
	result, err := orch.Run(context.Background(), review.Request{
		DiffLines:      diffLines()[:5], // only segment a.py
		RepoRoot:       "/repo",
		SegmentTimeout: 10 * time.Millisecond,
	})
	// Single segment timing out means zero successes.
	require.Error(t, err)
	require.Len(t, result.Failures, 1)
}

func TestRun_ParallelOrderingDeterministic(t *testing.T) {
	// Many segments processed concurrently must flatten in segment order.
	var lines []string
	files := map[string]string{}
	issues := map[string][]domain.Issue{}
	for i := 0; i < 20; i++ {
		path := fmt.Sprintf("f%02d.py", i)
		lines = append(lines,
			fmt.Sprintf("diff --git a/%s b/%s", path, path),
			"--- a/"+path,
			"+++ b/"+path,
			"@@ -1 +1 @@",
			"+marker_"+path,
		)
		files["/repo/"+path] = "marker_" + path + "\n"
		issues[path] = []domain.Issue{{Kind: domain.IssueSnippet, Summary: path, Snippet: "marker_" + path}}
	}

	engine := &stubEngine{issues: issues}
	content := &stubContent{files: files}

	orch := newOrchestrator(engine, content, nil)
	run := func() []domain.Annotation {
		result, err := orch.Run(context.Background(), review.Request{
			DiffLines:   lines,
			RepoRoot:    "/repo",
			Concurrency: 8,
		})
		require.NoError(t, err)
		return result.Annotations
	}

	first := run()
	second := run()
	require.Len(t, first, 20)
	require.Equal(t, first, second)
	for i, a := range first {
		assert.Equal(t, fmt.Sprintf("f%02d.py", i), a.Path)
	}
}

func TestRun_UnmatchedSnippetDiagnostic(t *testing.T) {
	engine := &stubEngine{issues: map[string][]domain.Issue{
		"a.py": {{Kind: domain.IssueSnippet, Summary: "s", Snippet: "not in diff"}},
	}}
	content := &stubContent{files: map[string]string{"/repo/a.py": "content"}}

	orch := newOrchestrator(engine, content, nil)
	result, err := orch.Run(context.Background(), review.Request{
		DiffLines: diffLines()[:5],
		RepoRoot:  "/repo",
	})
	require.NoError(t, err)

	assert.Empty(t, result.Annotations)
	require.Len(t, result.Unmatched, 1)
	diags := result.Diagnostics()
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0], "not in diff")
}

func TestRun_MissingDependencies(t *testing.T) {
	orch := review.NewOrchestrator(review.OrchestratorDeps{})
	_, err := orch.Run(context.Background(), review.Request{})
	require.Error(t, err)
}
