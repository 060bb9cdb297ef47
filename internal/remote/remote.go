// Package remote clones a remote repository so it can be analyzed like a
// local project.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Source is a remote repository reference.
type Source struct {
	URL      string // clone URL
	Ref      string // branch or tag; empty means the default branch
	CloneDir string // set by Clone
}

// knownHosts may be written without a scheme.
var knownHosts = []string{"github.com/", "gitlab.com/", "bitbucket.org/"}

// Parse reports whether path names a remote repository. Existing local paths
// always win and yield nil. Accepted forms are owner/repo (GitHub), host/owner/repo
// for well-known hosts, http(s):// and ssh:// URLs and scp-like git@host:path,
// each optionally followed by @ref.
func Parse(path string) (*Source, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, nil
	}

	path, ref := splitRef(path)
	if path == "" {
		return nil, nil
	}

	switch {
	case strings.HasPrefix(path, "https://"), strings.HasPrefix(path, "http://"),
		strings.HasPrefix(path, "ssh://"), strings.HasPrefix(path, "git@"):
		return &Source{URL: path, Ref: ref}, nil
	}

	for _, host := range knownHosts {
		if strings.HasPrefix(path, host) {
			return &Source{URL: "https://" + path, Ref: ref}, nil
		}
	}

	if isGitHubShorthand(path) {
		return &Source{URL: "https://github.com/" + path, Ref: ref}, nil
	}
	return nil, nil
}

// splitRef cuts a trailing @ref. The search starts after the first slash of
// the path part so the user in git@host and ssh://git@host is kept.
func splitRef(path string) (string, string) {
	start := 0
	if i := strings.Index(path, "://"); i != -1 {
		start = i + len("://")
	}
	slash := strings.Index(path[start:], "/")
	if slash == -1 {
		return path, ""
	}
	slash += start
	at := strings.LastIndex(path[slash:], "@")
	if at == -1 {
		return path, ""
	}
	return path[:slash+at], path[slash+at+1:]
}

// isGitHubShorthand returns true if path matches owner/repo.
func isGitHubShorthand(path string) bool {
	owner, repo, ok := strings.Cut(path, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return false
	}
	// A dot in the first segment means a host or a relative path.
	return !strings.Contains(owner, ".")
}

// Clone makes a depth-1 clone of the source into a new temporary directory
// and records it in CloneDir. The ref is tried as a branch, then as a tag.
// progress receives the remote's status output and may be nil.
func (s *Source) Clone(ctx context.Context, progress io.Writer) error {
	dir, err := os.MkdirTemp("", "orphan-clone-*")
	if err != nil {
		return fmt.Errorf("create clone directory: %w", err)
	}

	refs := []plumbing.ReferenceName{""}
	if s.Ref != "" {
		refs = []plumbing.ReferenceName{
			plumbing.NewBranchReferenceName(s.Ref),
			plumbing.NewTagReferenceName(s.Ref),
		}
	}

	var cloneErr error
	for _, ref := range refs {
		_, cloneErr = git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
			URL:           s.URL,
			ReferenceName: ref,
			SingleBranch:  ref != "",
			Depth:         1,
			Progress:      progress,
		})
		if cloneErr == nil {
			s.CloneDir = dir
			return nil
		}
		if !errors.Is(cloneErr, git.NoMatchingRefSpecError{}) {
			break
		}
		// Clear the partial checkout before trying the next ref kind.
		if err := resetDir(dir); err != nil {
			break
		}
	}

	_ = os.RemoveAll(dir)
	if s.Ref != "" {
		return fmt.Errorf("clone %s@%s: %w", s.URL, s.Ref, cloneErr)
	}
	return fmt.Errorf("clone %s: %w", s.URL, cloneErr)
}

func resetDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return os.Mkdir(dir, 0o700)
}

// Cleanup removes the clone directory.
func (s *Source) Cleanup() error {
	if s.CloneDir == "" {
		return nil
	}
	err := os.RemoveAll(s.CloneDir)
	s.CloneDir = ""
	return err
}

// String returns the URL with its ref.
func (s *Source) String() string {
	if s.Ref == "" {
		return s.URL
	}
	return s.URL + "@" + s.Ref
}
