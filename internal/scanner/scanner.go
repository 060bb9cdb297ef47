package scanner

import (
	"bufio"
	"bytes"
	"os"
	"path"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/panbanda/orphan/pkg/config"
	"github.com/panbanda/orphan/pkg/project"
	"github.com/spf13/afero"
)

// Scanner enumerates the project files taking part in the analysis.
type Scanner struct {
	fs      afero.Fs
	config  *config.Config
	matcher gitignore.Matcher
}

// NewScanner creates a new file scanner.
func NewScanner(fs afero.Fs, cfg *config.Config) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Scanner{fs: fs, config: cfg}
}

// ScanDir returns the source files under root, relative to root, slash
// separated and sorted. Excluded and dot-prefixed directories are pruned
// and paths present in ignore are dropped.
func (s *Scanner) ScanDir(root string, ignore *project.IgnoreList) ([]string, error) {
	s.LoadGitignore(root)

	files := make([]string, 0, 256)
	err := afero.Walk(s.fs, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			// Unreadable entries are skipped; the root itself must exist.
			if p == root {
				return err
			}
			return nil
		}

		rel, relErr := relSlash(root, p)
		if relErr != nil {
			return nil
		}

		if info.IsDir() {
			if rel != "." && s.IsExcludedDir(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if !s.config.HasExtension(p) || s.isGitignored(rel, false) || s.matchesExcludePattern(rel) {
			return nil
		}
		if ignore.Contains(rel) {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// IsSourceFile reports whether rel would be enumerated by ScanDir, ignoring
// the ignore list.
func (s *Scanner) IsSourceFile(rel string) bool {
	rel = project.Normalize(rel)
	if !s.config.HasExtension(rel) {
		return false
	}
	dir := path.Dir(rel)
	for dir != "." && dir != "/" {
		if s.IsExcludedDir(dir) {
			return false
		}
		dir = path.Dir(dir)
	}
	return !s.isGitignored(rel, false) && !s.matchesExcludePattern(rel)
}

// matchesExcludePattern reports whether rel matches a configured glob.
// Malformed patterns never match.
func (s *Scanner) matchesExcludePattern(rel string) bool {
	for _, pattern := range s.config.Scan.ExcludePatterns {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// EmptyDirs returns directories below root (root excluded) that contain no
// files and no non-excluded subdirectories. Excluded directories are not
// descended into.
func (s *Scanner) EmptyDirs(root string) ([]string, error) {
	s.LoadGitignore(root)

	var empty []string
	if _, err := s.collectEmpty(root, ".", &empty); err != nil {
		return nil, err
	}
	sort.Strings(empty)
	return empty, nil
}

// collectEmpty walks dir bottom up and reports whether it has any files or
// non-excluded subdirectories.
func (s *Scanner) collectEmpty(root, rel string, empty *[]string) (bool, error) {
	entries, err := afero.ReadDir(s.fs, filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return false, err
	}

	occupied := false
	for _, e := range entries {
		childRel := path.Join(rel, e.Name())
		if !e.IsDir() {
			occupied = true
			continue
		}
		if s.IsExcludedDir(childRel) {
			continue
		}
		occupied = true
		if _, err := s.collectEmpty(root, childRel, empty); err != nil {
			return false, err
		}
	}

	if !occupied && rel != "." {
		*empty = append(*empty, rel)
	}
	return occupied, nil
}

// IsExcludedDir reports whether the directory at rel is pruned.
func (s *Scanner) IsExcludedDir(rel string) bool {
	name := path.Base(rel)
	if strings.HasPrefix(name, ".") {
		return true
	}
	if slices.Contains(s.config.ExcludedDirs(), name) {
		return true
	}
	if q := project.Normalize(s.config.Quarantine.Dir); q != "" && rel == q {
		return true
	}
	return s.isGitignored(rel, true)
}

// LoadGitignore reads every .gitignore below root when enabled in config.
// ScanDir calls it; callers of IsSourceFile and IsExcludedDir call it first.
func (s *Scanner) LoadGitignore(root string) {
	s.matcher = nil
	if !s.config.Scan.Gitignore {
		return
	}

	var patterns []gitignore.Pattern
	_ = afero.Walk(s.fs, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		rel, relErr := relSlash(root, p)
		if relErr != nil {
			return nil
		}
		if info.IsDir() {
			if rel != "." && (strings.HasPrefix(info.Name(), ".") || slices.Contains(s.config.ExcludedDirs(), info.Name())) {
				return filepath.SkipDir
			}
			return nil
		}
		if info.Name() != ".gitignore" {
			return nil
		}

		data, readErr := afero.ReadFile(s.fs, p)
		if readErr != nil {
			return nil
		}
		var domain []string
		if dir := path.Dir(rel); dir != "." {
			domain = strings.Split(dir, "/")
		}
		patterns = append(patterns, parsePatterns(data, domain)...)
		return nil
	})

	if len(patterns) > 0 {
		s.matcher = gitignore.NewMatcher(patterns)
	}
}

func parsePatterns(data []byte, domain []string) []gitignore.Pattern {
	var patterns []gitignore.Pattern
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, domain))
	}
	return patterns
}

func (s *Scanner) isGitignored(rel string, isDir bool) bool {
	if s.matcher == nil {
		return false
	}
	return s.matcher.Match(strings.Split(rel, "/"), isDir)
}

func relSlash(root, p string) (string, error) {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}
