package obsolete

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sort"
	"unicode/utf8"

	"github.com/panbanda/orphan/internal/cache"
	"github.com/panbanda/orphan/internal/fileproc"
	"github.com/spf13/afero"
)

// ErrInvalidUTF8 is reported for files that cannot be decoded as text.
var ErrInvalidUTF8 = errors.New("file is not valid UTF-8")

// GraphOptions configures BuildGraph.
type GraphOptions struct {
	Workers    int
	Cache      *cache.Cache
	OnProgress func()
	Logger     *slog.Logger
}

// BuildGraph reads every file, extracts and resolves its imports, and
// returns the forward and reverse graphs. Only edges to files in the input
// set are kept. Files that cannot be read contribute no edges and are
// returned as warnings.
func BuildGraph(ctx context.Context, fs afero.Fs, root string, files []string, resolver *Resolver, opts GraphOptions) (*Graph, []FileError) {
	g := NewGraph(files)
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	known := make(map[string]struct{}, len(g.Files))
	for _, f := range g.Files {
		known[f] = struct{}{}
	}

	deps, errs := fileproc.ForEachFileIndexedN(ctx, g.Files, opts.Workers, func(file string) ([]string, error) {
		literals, err := fileLiterals(fs, root, file, opts.Cache)
		if err != nil {
			return nil, err
		}
		var targets []string
		for _, literal := range literals {
			target, ok := resolver.Resolve(literal, file)
			if !ok {
				continue
			}
			if _, inSet := known[target]; inSet {
				targets = append(targets, target)
			}
		}
		return targets, nil
	}, opts.OnProgress, func(path string, err error) {
		logger.Warn("failed to read file", "path", path, "error", err)
	})

	// Single-threaded merge in sorted file order.
	for i, file := range g.Files {
		targets := dedupeSorted(deps[i])
		g.Forward[file] = targets
		for _, t := range targets {
			g.Reverse[t] = append(g.Reverse[t], file)
		}
	}

	var warnings []FileError
	for _, e := range errs.Sorted() {
		warnings = append(warnings, FileError{Path: e.Path, Message: e.Err.Error()})
	}
	return g, warnings
}

// fileLiterals returns the import literals of one file, using the cache
// when its content hash is unchanged.
func fileLiterals(fs afero.Fs, root, file string, c *cache.Cache) ([]string, error) {
	content, err := afero.ReadFile(fs, filepath.Join(root, filepath.FromSlash(file)))
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(content) {
		return nil, ErrInvalidUTF8
	}

	if !c.Enabled() {
		return ExtractAll(content), nil
	}

	hash := cache.HashBytes(content)
	if literals, ok := c.GetStrings(file, hash); ok {
		return literals, nil
	}
	literals := ExtractAll(content)
	if err := c.SetStrings(file, hash, literals); err != nil {
		slog.Debug("cache write failed", "path", file, "error", err)
	}
	return literals, nil
}

func dedupeSorted(in []string) []string {
	out := make([]string, 0, len(in))
	if len(in) == 0 {
		return out
	}
	sorted := make([]string, len(in))
	copy(sorted, in)
	sort.Strings(sorted)
	for i, s := range sorted {
		if i > 0 && s == sorted[i-1] {
			continue
		}
		out = append(out, s)
	}
	return out
}
