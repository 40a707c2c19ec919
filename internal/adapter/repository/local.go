// Package repository provides filesystem access to the repository
// checkout whose files the diff describes.
package repository

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zigzalgo/autoreview/internal/domain"
)

// LocalRepository reads file contents rooted at a directory.
// Resolved paths must stay within the root; traversal attempts are
// rejected.
type LocalRepository struct {
	root string
}

// NewLocalRepository creates a LocalRepository rooted at the given
// directory.
func NewLocalRepository(root string) *LocalRepository {
	return &LocalRepository{root: root}
}

// ReadFile reads the contents of a file. The path can be relative to
// the root or absolute (if within root). A missing or unreadable file
// yields a NotFoundError carrying the attempted path.
func (r *LocalRepository) ReadFile(path string) ([]byte, error) {
	resolved, err := r.resolvePath(path)
	if err != nil {
		return nil, &domain.NotFoundError{Path: path, Err: err}
	}
	content, err := os.ReadFile(resolved)
	if err != nil {
		return nil, &domain.NotFoundError{Path: path, Err: err}
	}
	return content, nil
}

// FileExists reports whether a regular file exists at the given path.
func (r *LocalRepository) FileExists(path string) bool {
	resolved, err := r.resolvePath(path)
	if err != nil {
		return false
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// resolvePath validates that a path stays within the repository root.
// Symlinks are resolved first so a link cannot escape the root.
func (r *LocalRepository) resolvePath(path string) (string, error) {
	var resolved string
	if filepath.IsAbs(path) {
		resolved = path
	} else {
		resolved = filepath.Join(r.root, path)
	}
	resolved = filepath.Clean(resolved)

	realRoot, err := filepath.EvalSymlinks(r.root)
	if err != nil {
		realRoot = filepath.Clean(r.root)
	}

	realPath, err := filepath.EvalSymlinks(resolved)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("resolving symlinks: %w", err)
		}
		rel, relErr := filepath.Rel(realRoot, resolved)
		if relErr != nil || strings.HasPrefix(rel, "..") {
			return "", fmt.Errorf("path traversal detected")
		}
		return resolved, nil
	}

	rel, err := filepath.Rel(realRoot, realPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("path traversal detected")
	}

	return realPath, nil
}
