package http

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/zigzalgo/autoreview/internal/domain"
)

var (
	// Greedy match from the first ``` to the last ``` so nested code
	// fences inside issue summaries don't truncate the JSON block.
	jsonBlockRegex = regexp.MustCompile("(?s)```(?:json)?\\s*([\\s\\S]*)```")
)

// ExtractJSONFromMarkdown extracts JSON from a markdown code block.
// Returns the original text (trimmed) if no code block is present, which
// covers models that answer with raw JSON.
func ExtractJSONFromMarkdown(text string) string {
	matches := jsonBlockRegex.FindStringSubmatch(text)
	if len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}
	return strings.TrimSpace(text)
}

// issueRecord is the wire shape of one issue in the engine response.
// Exactly one of snippet or line must be present.
type issueRecord struct {
	Summary string  `json:"summary"`
	Snippet *string `json:"snippet,omitempty"`
	Line    *int    `json:"line,omitempty"`
}

// ParseIssueList validates an engine response into typed issues. This is
// the boundary where duck-typed records become the tagged Issue variant:
// a record missing a summary, carrying neither snippet nor line, carrying
// both, or citing a line below 1 is rejected here rather than failing
// deep inside matching logic.
func ParseIssueList(engineName, text string) ([]domain.Issue, error) {
	jsonText := ExtractJSONFromMarkdown(text)
	if jsonText == "" {
		return nil, &domain.EngineError{Engine: engineName, Reason: "empty response"}
	}

	var payload struct {
		Issues []issueRecord `json:"issues"`
	}
	if err := json.Unmarshal([]byte(jsonText), &payload); err != nil {
		return nil, &domain.EngineError{Engine: engineName, Reason: "unparseable response", Err: err}
	}

	issues := make([]domain.Issue, 0, len(payload.Issues))
	for i, record := range payload.Issues {
		issue, err := validateRecord(record)
		if err != nil {
			return nil, &domain.EngineError{
				Engine: engineName,
				Reason: fmt.Sprintf("issue %d invalid", i),
				Err:    err,
			}
		}
		issues = append(issues, issue)
	}

	return issues, nil
}

func validateRecord(record issueRecord) (domain.Issue, error) {
	if strings.TrimSpace(record.Summary) == "" {
		return domain.Issue{}, fmt.Errorf("missing summary")
	}

	hasSnippet := record.Snippet != nil && *record.Snippet != ""
	hasLine := record.Line != nil

	switch {
	case hasSnippet && hasLine:
		return domain.Issue{}, fmt.Errorf("both snippet and line present")
	case hasSnippet:
		return domain.Issue{
			Kind:    domain.IssueSnippet,
			Summary: record.Summary,
			Snippet: *record.Snippet,
		}, nil
	case hasLine:
		if *record.Line < 1 {
			return domain.Issue{}, fmt.Errorf("line %d below 1", *record.Line)
		}
		return domain.Issue{
			Kind:    domain.IssueLine,
			Summary: record.Summary,
			Line:    *record.Line,
		}, nil
	default:
		return domain.Issue{}, fmt.Errorf("neither snippet nor line present")
	}
}
