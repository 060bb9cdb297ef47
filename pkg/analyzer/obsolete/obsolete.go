// Package obsolete finds project files that cannot be reached through the
// import graph from any framework entry point.
package obsolete

import (
	"context"
	"log/slog"
	"sort"

	"github.com/panbanda/orphan/internal/cache"
	"github.com/panbanda/orphan/pkg/analyzer"
	"github.com/spf13/afero"
)

// Analyzer runs the obsolete-file analysis for one project root.
type Analyzer struct {
	fs           afero.Fs
	root         string
	signals      Signals
	aliases      AliasTable
	aliasConfigs []string
	aliasOpts    []AliasOption
	resolverOpts []ResolverOption
	workers      int
	cache        *cache.Cache
	onProgress   func()
	logger       *slog.Logger
}

// Compile-time check that Analyzer implements analyzer.FileAnalyzer[*Report]
var _ analyzer.FileAnalyzer[*Report] = (*Analyzer)(nil)

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithFs sets the filesystem (defaults to the OS filesystem).
func WithFs(fs afero.Fs) Option {
	return func(a *Analyzer) {
		a.fs = fs
	}
}

// WithSignals sets the entry-point signals.
func WithSignals(s Signals) Option {
	return func(a *Analyzer) {
		a.signals = s
	}
}

// WithAliases uses a fixed alias table instead of reading alias configs.
func WithAliases(t AliasTable) Option {
	return func(a *Analyzer) {
		a.aliases = t
	}
}

// WithAliasConfigs sets the candidate alias config files.
func WithAliasConfigs(names []string) Option {
	return func(a *Analyzer) {
		a.aliasConfigs = names
	}
}

// WithAliasOptions passes options through to LoadAliases.
func WithAliasOptions(opts ...AliasOption) Option {
	return func(a *Analyzer) {
		a.aliasOpts = append(a.aliasOpts, opts...)
	}
}

// WithResolverOptions passes options through to the Resolver.
func WithResolverOptions(opts ...ResolverOption) Option {
	return func(a *Analyzer) {
		a.resolverOpts = append(a.resolverOpts, opts...)
	}
}

// WithWorkers caps the number of concurrent file readers.
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		a.workers = n
	}
}

// WithCache enables the extracted-imports cache.
func WithCache(c *cache.Cache) Option {
	return func(a *Analyzer) {
		a.cache = c
	}
}

// WithProgress sets a callback fired after each file is read.
func WithProgress(fn func()) Option {
	return func(a *Analyzer) {
		a.onProgress = fn
	}
}

// WithLogger sets the logger used for per-file warnings.
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = l
	}
}

// New creates an analyzer for the project at root.
func New(root string, opts ...Option) *Analyzer {
	a := &Analyzer{
		fs:           afero.NewOsFs(),
		root:         root,
		signals:      NextJSSignals(),
		aliasConfigs: DefaultAliasConfigs,
		cache:        cache.Disabled(),
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Resolver returns the resolver the analyzer would use.
func (a *Analyzer) Resolver() *Resolver {
	aliases := a.aliases
	if aliases == nil {
		aliases = LoadAliases(a.fs, a.root, a.aliasConfigs, a.aliasOpts...)
	}
	return NewResolver(a.fs, a.root, aliases, a.resolverOpts...)
}

// Analyze builds the import graph over files (project-relative, slash
// separated) and classifies every file not reachable from an entry point.
func (a *Analyzer) Analyze(ctx context.Context, files []string) (*Report, error) {
	resolver := a.Resolver()
	a.logger.Debug("resolved aliases", "aliases", resolver.Aliases())

	g, warnings := BuildGraph(ctx, a.fs, a.root, files, resolver, GraphOptions{
		Workers:    a.workers,
		Cache:      a.cache,
		OnProgress: a.onProgress,
		Logger:     a.logger,
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries := EntryPoints(g.Files, a.signals)
	reachable := Reachable(g, entries)
	reasons := Classify(g, reachable)

	obsolete := make([]ObsoleteFile, 0, len(reasons))
	for path, reason := range reasons {
		obsolete = append(obsolete, ObsoleteFile{Path: path, Reason: reason})
	}
	sort.Slice(obsolete, func(i, j int) bool { return obsolete[i].Path < obsolete[j].Path })

	report := &Report{
		Root:        a.root,
		EntryPoints: entries,
		Obsolete:    obsolete,
		EmptyDirs:   []string{},
		Warnings:    warnings,
		Graph:       g,
		Summary: Summary{
			TotalFiles:     len(g.Files),
			EntryPoints:    len(entries),
			ReachableFiles: reachable.Len(),
			ObsoleteFiles:  len(obsolete),
			Edges:          g.EdgeCount(),
			Warnings:       len(warnings),
		},
	}
	a.logger.Debug("analysis complete",
		"files", report.Summary.TotalFiles,
		"reachable", report.Summary.ReachableFiles,
		"obsolete", report.Summary.ObsoleteFiles)
	return report, nil
}
