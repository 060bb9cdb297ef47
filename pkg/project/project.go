// Package project locates the project root and manages the persisted ignore list.
package project

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

// ErrManifestNotFound is returned when no ancestor directory holds the manifest.
var ErrManifestNotFound = errors.New("project manifest not found")

// FindRoot walks from start upward and returns the first directory containing manifest.
func FindRoot(fs afero.Fs, start, manifest string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", start, err)
	}

	for {
		if info, err := fs.Stat(filepath.Join(dir, manifest)); err == nil && !info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w: no %s in %s or any parent directory", ErrManifestNotFound, manifest, start)
		}
		dir = parent
	}
}

// Normalize converts a user or OS supplied relative path into the slash form
// used as a file identity throughout the analysis.
func Normalize(rel string) string {
	rel = strings.TrimSpace(filepath.ToSlash(rel))
	if rel == "" {
		return ""
	}
	rel = path.Clean(rel)
	rel = strings.TrimPrefix(rel, "./")
	if rel == "." {
		return ""
	}
	return rel
}

// IgnoreList is the set of project-relative paths excluded from every scan.
// It is persisted as one path per line in the project root.
type IgnoreList struct {
	fs      afero.Fs
	path    string
	entries map[string]struct{}
	mu      sync.RWMutex
}

// LoadIgnoreList reads the ignore file at path. A missing or unreadable file
// yields an empty list.
func LoadIgnoreList(fs afero.Fs, path string) *IgnoreList {
	l := &IgnoreList{
		fs:      fs,
		path:    path,
		entries: make(map[string]struct{}),
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return l
	}

	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		if rel := Normalize(sc.Text()); rel != "" {
			l.entries[rel] = struct{}{}
		}
	}
	return l
}

// Contains reports whether rel is ignored.
func (l *IgnoreList) Contains(rel string) bool {
	if l == nil {
		return false
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.entries[Normalize(rel)]
	return ok
}

// Len returns the number of ignored paths.
func (l *IgnoreList) Len() int {
	if l == nil {
		return 0
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Entries returns the ignored paths sorted.
func (l *IgnoreList) Entries() []string {
	if l == nil {
		return nil
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]string, 0, len(l.entries))
	for rel := range l.entries {
		out = append(out, rel)
	}
	slices.Sort(out)
	return out
}

// Add appends rel to the ignore file. Already-ignored paths are not duplicated.
func (l *IgnoreList) Add(rel string) error {
	rel = Normalize(rel)
	if rel == "" {
		return errors.New("empty path")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.entries[rel]; ok {
		return nil
	}

	line := rel + "\n"
	if l.missingTrailingNewline() {
		line = "\n" + line
	}

	f, err := l.fs.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open ignore list: %w", err)
	}
	if _, err := io.WriteString(f, line); err != nil {
		f.Close()
		return fmt.Errorf("write ignore list: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close ignore list: %w", err)
	}

	l.entries[rel] = struct{}{}
	return nil
}

// missingTrailingNewline reports whether the ignore file ends mid-line, as
// hand-edited files often do.
func (l *IgnoreList) missingTrailingNewline() bool {
	data, err := afero.ReadFile(l.fs, l.path)
	if err != nil || len(data) == 0 {
		return false
	}
	return data[len(data)-1] != '\n'
}
