package git_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	goGit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/zigzalgo/autoreview/internal/adapter/git"
	"github.com/zigzalgo/autoreview/internal/diff"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func defaultSignature() *object.Signature {
	return &object.Signature{
		Name:  "tester",
		Email: "tester@example.com",
		When:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func checkoutBranch(worktree *goGit.Worktree, name string) error {
	return worktree.Checkout(&goGit.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(name),
		Create: true,
	})
}

func initRepoWithBranches(t *testing.T) (string, string) {
	t.Helper()
	tmp := t.TempDir()

	repo, err := goGit.PlainInit(tmp, false)
	if err != nil {
		t.Fatalf("init repo: %v", err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("worktree: %v", err)
	}

	writeFile(t, tmp, "main.go", "package main\n\nfunc main() {\n\tprintln(\"hello\")\n}\n")
	if _, err := worktree.Add("main.go"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := worktree.Commit("initial", &goGit.CommitOptions{Author: defaultSignature()}); err != nil {
		t.Fatalf("commit: %v", err)
	}

	head, err := repo.Head()
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	base := head.Name().Short()

	if err := checkoutBranch(worktree, "feature"); err != nil {
		t.Fatalf("checkout: %v", err)
	}
	writeFile(t, tmp, "main.go", "package main\n\nfunc main() {\n\tprintln(\"feature\")\n}\n")
	if _, err := worktree.Add("main.go"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := worktree.Commit("feature change", &goGit.CommitOptions{Author: defaultSignature()}); err != nil {
		t.Fatalf("commit: %v", err)
	}

	return tmp, base
}

func TestSourceDiffLinesBetweenRefs(t *testing.T) {
	tmp, base := initRepoWithBranches(t)

	source := git.NewSource(tmp)
	lines, err := source.DiffLines(context.Background(), base, "feature", false)
	if err != nil {
		t.Fatalf("DiffLines: %v", err)
	}

	text := strings.Join(lines, "\n")
	if !strings.Contains(text, "diff --git a/main.go b/main.go") {
		t.Errorf("expected git diff header, got:\n%s", text)
	}
	if !strings.Contains(text, `+	println("feature")`) {
		t.Errorf("expected added line in diff, got:\n%s", text)
	}
}

func TestSourceDiffLinesSegmentable(t *testing.T) {
	tmp, base := initRepoWithBranches(t)

	source := git.NewSource(tmp)
	lines, err := source.DiffLines(context.Background(), base, "feature", false)
	if err != nil {
		t.Fatalf("DiffLines: %v", err)
	}

	segments := diff.Segment(lines, diff.DefaultSeparatorPrefix)
	if len(segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segments))
	}
	if !strings.Contains(segments[0].Header, "main.go") {
		t.Errorf("unexpected segment header %q", segments[0].Header)
	}
}

func TestSourceDiffLinesUnknownRef(t *testing.T) {
	tmp, _ := initRepoWithBranches(t)

	source := git.NewSource(tmp)
	if _, err := source.DiffLines(context.Background(), "nope", "feature", false); err == nil {
		t.Fatal("expected error for unknown ref")
	}
}

func TestSourceCurrentBranch(t *testing.T) {
	tmp, _ := initRepoWithBranches(t)

	source := git.NewSource(tmp)
	branch, err := source.CurrentBranch(context.Background())
	if err != nil {
		t.Fatalf("CurrentBranch: %v", err)
	}
	if branch != "feature" {
		t.Errorf("expected feature, got %q", branch)
	}
}
