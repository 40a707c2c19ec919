package diff

import (
	"path/filepath"
	"strings"

	"github.com/zigzalgo/autoreview/internal/domain"
)

// SourcePath extracts the repository-relative path from a segment header
// of the form "diff <tool-args> a/<path> b/<path>". The third
// whitespace-delimited token is used. For git output that is the a/
// side; both sides carry the same path except for renames.
func SourcePath(header string) (string, error) {
	tokens := strings.Fields(header)
	if len(tokens) < 3 {
		return "", &domain.MalformedHeaderError{
			Header: header,
			Reason: "expected at least 3 whitespace-delimited tokens",
		}
	}

	token := tokens[2]
	if len(token) < 2 || (!strings.HasPrefix(token, "a/") && !strings.HasPrefix(token, "b/")) {
		return "", &domain.MalformedHeaderError{
			Header: header,
			Reason: "path token missing a/ or b/ prefix",
		}
	}

	path := token[2:]
	if path == "" {
		return "", &domain.MalformedHeaderError{
			Header: header,
			Reason: "empty path after prefix",
		}
	}

	return path, nil
}

// Resolve joins the header's repository-relative path with repoRoot.
// Deterministic and pure: no filesystem access.
func Resolve(header, repoRoot string) (string, error) {
	rel, err := SourcePath(header)
	if err != nil {
		return "", err
	}
	return filepath.Join(repoRoot, rel), nil
}
