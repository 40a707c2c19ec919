package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	enginehttp "github.com/zigzalgo/autoreview/internal/adapter/engine/http"
	"github.com/zigzalgo/autoreview/internal/domain"
	"github.com/zigzalgo/autoreview/internal/usecase/review"
)

const systemPrompt = "You are a code review assistant. " +
	"Review the file as if commenting on a pull request, focusing on logical errors " +
	"rather than style. Respond with JSON only, in the form " +
	`{"issues": [{"summary": "...", "snippet": "..."} or {"summary": "...", "line": N}]}. ` +
	"A snippet must be an exact excerpt from the changed lines; a line number refers to " +
	"the new version of the file. Report each issue with exactly one of snippet or line. " +
	"Return {\"issues\": []} when the change looks correct."

// Client abstracts the HTTP transport so the engine can be tested with a
// fake.
type Client interface {
	Call(ctx context.Context, system, prompt string, options CallOptions) (*APIResponse, error)
	Close() error
}

// Engine adapts the OpenAI chat API to the analysis engine port.
type Engine struct {
	client    Client
	model     string
	seed      *uint64
	maxTokens int
	logger    enginehttp.Logger
}

// Config holds construction parameters for the engine.
type Config struct {
	APIKey    string
	Model     string
	Seed      *uint64
	MaxTokens int
	Logger    enginehttp.Logger

	// Timeout overrides the default HTTP timeout when positive.
	Timeout time.Duration

	// Retry overrides the default retry behaviour when set.
	Retry *enginehttp.RetryConfig
}

// New creates an Engine backed by the real OpenAI HTTP client.
func New(cfg Config) *Engine {
	client := NewHTTPClient(cfg.APIKey, cfg.Model)
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	if cfg.Retry != nil {
		client.SetRetryConfig(*cfg.Retry)
	}
	return NewWithClient(client, cfg)
}

// NewWithClient creates an Engine with an explicit client (for testing).
func NewWithClient(client Client, cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = enginehttp.NewDefaultLogger(enginehttp.LogLevelError, enginehttp.LogFormatHuman, true)
	}
	return &Engine{
		client:    client,
		model:     cfg.Model,
		seed:      cfg.Seed,
		maxTokens: cfg.MaxTokens,
		logger:    logger,
	}
}

// Name identifies the engine in errors and logs.
func (e *Engine) Name() string { return "openai" }

// Analyze sends the file content and diff body to the model and returns
// the validated issue list.
func (e *Engine) Analyze(ctx context.Context, req review.EngineRequest) ([]domain.Issue, error) {
	prompt := buildPrompt(req)
	start := time.Now()

	e.logger.LogRequest(ctx, enginehttp.RequestLog{
		Engine:      "openai",
		Model:       e.model,
		Path:        req.Path,
		Timestamp:   start,
		PromptChars: len(prompt),
	})

	resp, err := e.client.Call(ctx, systemPrompt, prompt, CallOptions{
		Temperature: 0.0,
		Seed:        e.seed,
		MaxTokens:   e.maxTokens,
	})
	if err != nil {
		e.logger.LogError(ctx, enginehttp.ErrorLog{
			Engine:    "openai",
			Model:     e.model,
			Path:      req.Path,
			Timestamp: time.Now(),
			Duration:  time.Since(start),
			Error:     err,
			Retryable: enginehttp.ShouldRetry(err),
		})
		var engineErr *domain.EngineError
		if errors.As(err, &engineErr) {
			return nil, err
		}
		return nil, &domain.EngineError{Engine: "openai", Reason: "request failed", Err: err}
	}

	issues, err := enginehttp.ParseIssueList("openai", resp.Text)
	if err != nil {
		return nil, err
	}

	e.logger.LogResponse(ctx, enginehttp.ResponseLog{
		Engine:    "openai",
		Model:     resp.Model,
		Path:      req.Path,
		Timestamp: time.Now(),
		Duration:  time.Since(start),
		Issues:    len(issues),
	})

	return issues, nil
}

// Close releases the underlying client.
func (e *Engine) Close() error {
	return e.client.Close()
}

func buildPrompt(req review.EngineRequest) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "File: %s\n\n", req.Path)
	sb.WriteString("Current file content:\n```\n")
	sb.WriteString(req.FileContent)
	if !strings.HasSuffix(req.FileContent, "\n") {
		sb.WriteString("\n")
	}
	sb.WriteString("```\n\nDiff under review:\n```\n")
	for _, line := range req.DiffBody {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	sb.WriteString("```\n")
	return sb.String()
}
