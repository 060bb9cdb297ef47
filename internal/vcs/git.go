// Package vcs reports the git state of a project before files are moved.
package vcs

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-git/go-git/v5"
)

// ErrNotRepository is returned when no git repository contains the path.
var ErrNotRepository = git.ErrRepositoryNotExists

// ErrDirtyWorkingDir is returned when the working directory has uncommitted changes.
var ErrDirtyWorkingDir = errors.New("working directory has uncommitted changes")

// open finds the repository containing path, searching parent directories.
func open(path string) (*git.Repository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, err
	}
	return repo, nil
}

// ChangedFiles lists tracked files with staged or unstaged changes, relative
// to the repository root and sorted. Untracked files are not included.
func ChangedFiles(path string) ([]string, error) {
	repo, err := open(path)
	if err != nil {
		return nil, err
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("open worktree: %w", err)
	}

	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("read status: %w", err)
	}

	var changed []string
	for file, s := range status {
		if s.Staging == git.Untracked && s.Worktree == git.Untracked {
			continue
		}
		if s.Staging != git.Unmodified || s.Worktree != git.Unmodified {
			changed = append(changed, file)
		}
	}
	sort.Strings(changed)
	return changed, nil
}

// IsDirty returns true if there are uncommitted changes to tracked files.
func IsDirty(path string) (bool, error) {
	changed, err := ChangedFiles(path)
	if err != nil {
		return false, err
	}
	return len(changed) > 0, nil
}
