// Package quarantine relocates obsolete files and empty directories into a
// holding directory inside the project instead of deleting them.
package quarantine

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"
)

var (
	// ErrOutsideRoot is returned for paths that are absolute or escape the
	// project root.
	ErrOutsideRoot = errors.New("path is outside the project root")

	// ErrNotFile is returned when a file move targets a directory.
	ErrNotFile = errors.New("not a regular file")

	// ErrNotDir is returned when a directory move targets a file.
	ErrNotDir = errors.New("not a directory")

	// ErrDirNotEmpty is returned when an empty-directory move finds content.
	ErrDirNotEmpty = errors.New("directory is not empty")
)

// timestampLayout is appended to names that collide inside the quarantine.
const timestampLayout = "20060102_150405"

// Move records one relocation. Paths are project-relative and slash-separated.
type Move struct {
	From string `json:"from" toon:"from" yaml:"from"`
	To   string `json:"to" toon:"to" yaml:"to"`
}

// Failure records a path that could not be relocated.
type Failure struct {
	Path  string `json:"path" toon:"path" yaml:"path"`
	Error string `json:"error" toon:"error" yaml:"error"`
}

// Result summarizes a batch of relocations.
type Result struct {
	Moved  []Move    `json:"moved" toon:"moved" yaml:"moved"`
	Failed []Failure `json:"failed,omitempty" toon:"failed,omitempty" yaml:"failed,omitempty"`
}

// Mover relocates project paths under the quarantine directory, mirroring
// their relative layout.
type Mover struct {
	fs     afero.Fs
	root   string
	dir    string
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Mover.
type Option func(*Mover)

// WithFs sets the filesystem (for testing).
func WithFs(fs afero.Fs) Option {
	return func(m *Mover) {
		m.fs = fs
	}
}

// WithClock sets the time source used for collision suffixes.
func WithClock(now func() time.Time) Option {
	return func(m *Mover) {
		m.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Mover) {
		m.logger = l
	}
}

// New creates a Mover for the project at root. dir is the quarantine
// directory, relative to root unless absolute.
func New(root, dir string, opts ...Option) *Mover {
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, filepath.FromSlash(dir))
	}
	m := &Mover{
		fs:     afero.NewOsFs(),
		root:   root,
		dir:    dir,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Dir returns the absolute quarantine directory.
func (m *Mover) Dir() string {
	return m.dir
}

// MoveFile copies the file at rel into the quarantine, preserving its mode
// and modification time, then removes the original. When the destination
// already exists the new copy gets a timestamp suffix before its extension.
// The returned path is relative to the project root.
func (m *Mover) MoveFile(rel string) (string, error) {
	clean, err := cleanRel(rel)
	if err != nil {
		return "", err
	}
	src := filepath.Join(m.root, filepath.FromSlash(clean))

	info, err := m.fs.Stat(src)
	if err != nil {
		return "", err
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%s: %w", clean, ErrNotFile)
	}

	dst, err := m.destination(clean)
	if err != nil {
		return "", err
	}
	if err := m.copyFile(src, dst, info); err != nil {
		return "", err
	}
	if err := m.fs.Remove(src); err != nil {
		return "", fmt.Errorf("remove original: %w", err)
	}

	to := m.relToRoot(dst)
	m.logger.Debug("file quarantined", "from", clean, "to", to)
	return to, nil
}

// MoveFiles relocates every path, continuing past failures.
func (m *Mover) MoveFiles(ctx context.Context, rels []string) (*Result, error) {
	result := &Result{Moved: make([]Move, 0, len(rels))}
	for _, rel := range rels {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		to, err := m.MoveFile(rel)
		if err != nil {
			m.logger.Warn("failed to quarantine file", "path", rel, "error", err)
			result.Failed = append(result.Failed, Failure{Path: rel, Error: err.Error()})
			continue
		}
		result.Moved = append(result.Moved, Move{From: rel, To: to})
	}
	return result, nil
}

// MoveEmptyDir recreates rel under the quarantine and removes the original.
// A directory that still has entries is left untouched.
func (m *Mover) MoveEmptyDir(rel string) (string, error) {
	clean, err := cleanRel(rel)
	if err != nil {
		return "", err
	}
	src := filepath.Join(m.root, filepath.FromSlash(clean))

	isDir, err := afero.IsDir(m.fs, src)
	if err != nil {
		return "", err
	}
	if !isDir {
		return "", fmt.Errorf("%s: %w", clean, ErrNotDir)
	}
	empty, err := afero.IsEmpty(m.fs, src)
	if err != nil {
		return "", err
	}
	if !empty {
		return "", fmt.Errorf("%s: %w", clean, ErrDirNotEmpty)
	}

	dst := filepath.Join(m.dir, filepath.FromSlash(clean))
	if err := m.fs.MkdirAll(dst, 0o755); err != nil {
		return "", fmt.Errorf("create quarantine dir: %w", err)
	}
	if err := m.fs.Remove(src); err != nil {
		return "", fmt.Errorf("remove directory: %w", err)
	}
	return m.relToRoot(dst), nil
}

// MoveEmptyDirs relocates each directory, children before parents.
func (m *Mover) MoveEmptyDirs(ctx context.Context, rels []string) (*Result, error) {
	ordered := make([]string, len(rels))
	copy(ordered, rels)
	sortDeepestFirst(ordered)

	result := &Result{Moved: make([]Move, 0, len(ordered))}
	for _, rel := range ordered {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		to, err := m.MoveEmptyDir(rel)
		if err != nil {
			m.logger.Warn("failed to quarantine directory", "path", rel, "error", err)
			result.Failed = append(result.Failed, Failure{Path: rel, Error: err.Error()})
			continue
		}
		result.Moved = append(result.Moved, Move{From: rel, To: to})
	}
	return result, nil
}

// destination picks a free path under the quarantine for rel and creates
// its parent directories.
func (m *Mover) destination(rel string) (string, error) {
	dst := filepath.Join(m.dir, filepath.FromSlash(rel))
	if err := m.fs.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create quarantine dir: %w", err)
	}

	if !m.exists(dst) {
		return dst, nil
	}

	base := filepath.Base(dst)
	ext := filepath.Ext(base)
	if ext == base {
		ext = ""
	}
	stem := strings.TrimSuffix(base, ext) + "_" + m.now().Format(timestampLayout)

	candidate := filepath.Join(filepath.Dir(dst), stem+ext)
	for n := 2; m.exists(candidate); n++ {
		candidate = filepath.Join(filepath.Dir(dst), stem+"_"+strconv.Itoa(n)+ext)
	}
	return candidate, nil
}

func (m *Mover) copyFile(src, dst string, info os.FileInfo) (err error) {
	in, err := m.fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := m.fs.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("create copy: %w", err)
	}
	defer func() {
		if err != nil {
			_ = m.fs.Remove(dst)
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy: %w", err)
	}
	if err = out.Close(); err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	if err = m.fs.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("preserve times: %w", err)
	}
	return nil
}

func (m *Mover) exists(p string) bool {
	_, err := m.fs.Stat(p)
	return err == nil
}

func (m *Mover) relToRoot(p string) string {
	rel, err := filepath.Rel(m.root, p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}

func cleanRel(rel string) (string, error) {
	rel = filepath.ToSlash(rel)
	if rel == "" || path.IsAbs(rel) {
		return "", fmt.Errorf("%q: %w", rel, ErrOutsideRoot)
	}
	clean := path.Clean(rel)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%q: %w", rel, ErrOutsideRoot)
	}
	return clean, nil
}

func sortDeepestFirst(rels []string) {
	depth := func(s string) int { return strings.Count(path.Clean(filepath.ToSlash(s)), "/") }
	slices.SortFunc(rels, func(a, b string) int {
		if d := cmp.Compare(depth(b), depth(a)); d != 0 {
			return d
		}
		return strings.Compare(a, b)
	})
}
