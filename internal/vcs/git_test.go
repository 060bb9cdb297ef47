package vcs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

func initTestRepoWithCommit(t *testing.T) string {
	t.Helper()
	repoPath := t.TempDir()
	repo, err := git.PlainInit(repoPath, false)
	if err != nil {
		t.Fatalf("Failed to init repo: %v", err)
	}

	if err := os.MkdirAll(filepath.Join(repoPath, "lib"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(repoPath, "lib", "a.ts"), []byte("export const a = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := repo.Worktree()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Add("lib/a.ts"); err != nil {
		t.Fatal(err)
	}
	_, err = w.Commit("Initial commit", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Test",
			Email: "test@example.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return repoPath
}

func TestIsDirty_Clean(t *testing.T) {
	repoPath := initTestRepoWithCommit(t)

	dirty, err := IsDirty(repoPath)
	if err != nil {
		t.Fatalf("IsDirty: %v", err)
	}
	if dirty {
		t.Error("expected clean working directory")
	}
}

func TestIsDirty_UntrackedIgnored(t *testing.T) {
	repoPath := initTestRepoWithCommit(t)
	if err := os.WriteFile(filepath.Join(repoPath, "lib", "new.ts"), []byte("x\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	dirty, err := IsDirty(repoPath)
	if err != nil {
		t.Fatalf("IsDirty: %v", err)
	}
	if dirty {
		t.Error("untracked files should not make the tree dirty")
	}
}

func TestIsDirty_Modified(t *testing.T) {
	repoPath := initTestRepoWithCommit(t)
	if err := os.WriteFile(filepath.Join(repoPath, "lib", "a.ts"), []byte("export const a = 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	dirty, err := IsDirty(repoPath)
	if err != nil {
		t.Fatalf("IsDirty: %v", err)
	}
	if !dirty {
		t.Error("expected dirty working directory")
	}

	changed, err := ChangedFiles(repoPath)
	if err != nil {
		t.Fatalf("ChangedFiles: %v", err)
	}
	if len(changed) != 1 || changed[0] != "lib/a.ts" {
		t.Errorf("ChangedFiles = %v, want [lib/a.ts]", changed)
	}
}

func TestIsDirty_FromSubdirectory(t *testing.T) {
	repoPath := initTestRepoWithCommit(t)
	if err := os.Remove(filepath.Join(repoPath, "lib", "a.ts")); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(repoPath, "web"), 0o755); err != nil {
		t.Fatal(err)
	}

	dirty, err := IsDirty(filepath.Join(repoPath, "web"))
	if err != nil {
		t.Fatalf("IsDirty: %v", err)
	}
	if !dirty {
		t.Error("expected deleted tracked file to make the tree dirty")
	}
}

func TestIsDirty_NotRepository(t *testing.T) {
	_, err := IsDirty(t.TempDir())
	if !errors.Is(err, ErrNotRepository) {
		t.Errorf("expected ErrNotRepository, got %v", err)
	}
}
