package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/panbanda/orphan/internal/cache"
	"github.com/panbanda/orphan/internal/scanner"
	"github.com/panbanda/orphan/pkg/analyzer/obsolete"
	"github.com/panbanda/orphan/pkg/config"
	"github.com/panbanda/orphan/pkg/project"
	"github.com/spf13/afero"
)

// Service orchestrates project discovery, scanning and obsolete-file analysis.
type Service struct {
	fs         afero.Fs
	config     *config.Config
	configPath string
	logger     *slog.Logger
	noCache    bool
	workers    int
}

// Option configures a Service.
type Option func(*Service)

// WithFs sets the filesystem (for testing).
func WithFs(fs afero.Fs) Option {
	return func(s *Service) {
		s.fs = fs
	}
}

// WithConfig sets the configuration. Without it the config is looked up in
// the project root once the root is known.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithNoCache disables the import cache regardless of config.
func WithNoCache() Option {
	return func(s *Service) {
		s.noCache = true
	}
}

// WithWorkers overrides the configured worker count.
func WithWorkers(n int) Option {
	return func(s *Service) {
		s.workers = n
	}
}

// New creates a new analysis service.
func New(opts ...Option) *Service {
	s := &Service{
		fs:     afero.NewOsFs(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Project is a discovered project with its effective configuration.
type Project struct {
	Root       string
	Config     *config.Config
	ConfigPath string
	Ignore     *project.IgnoreList
}

// IgnorePath returns the absolute path of the ignore file.
func (p *Project) IgnorePath() string {
	return filepath.Join(p.Root, p.Config.Scan.IgnoreFile)
}

// QuarantineDir returns the absolute path of the quarantine directory.
func (p *Project) QuarantineDir() string {
	return filepath.Join(p.Root, filepath.FromSlash(p.Config.Quarantine.Dir))
}

// Open locates the project root from start and loads its configuration and
// ignore list. A missing manifest is returned as project.ErrManifestNotFound.
func (s *Service) Open(start string) (*Project, error) {
	manifest := "package.json"
	if s.config != nil && s.config.Scan.Manifest != "" {
		manifest = s.config.Scan.Manifest
	}

	root, err := project.FindRoot(s.fs, start, manifest)
	if err != nil {
		return nil, err
	}

	cfg, cfgPath := s.config, ""
	if cfg == nil {
		cfg, cfgPath = config.LoadOrDefault(s.fs, root)
	}

	p := &Project{
		Root:       root,
		Config:     cfg,
		ConfigPath: cfgPath,
	}
	p.Ignore = project.LoadIgnoreList(s.fs, p.IgnorePath())
	s.logger.Debug("project opened", "root", root, "config", cfgPath, "ignored", p.Ignore.Len())
	return p, nil
}

// Options configures a single analysis run.
type Options struct {
	// OnStart is called with the number of files about to be read.
	OnStart func(total int)
	// OnProgress is called after each file is read.
	OnProgress func()
	// SkipEmptyDirs leaves Report.EmptyDirs empty.
	SkipEmptyDirs bool
}

// Scan enumerates the project's source files.
func (s *Service) Scan(p *Project) ([]string, error) {
	files, err := scanner.NewScanner(s.fs, p.Config).ScanDir(p.Root, p.Ignore)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", p.Root, err)
	}
	return files, nil
}

// EmptyDirs lists empty directories under the project root.
func (s *Service) EmptyDirs(p *Project) ([]string, error) {
	dirs, err := scanner.NewScanner(s.fs, p.Config).EmptyDirs(p.Root)
	if err != nil {
		return nil, fmt.Errorf("find empty directories: %w", err)
	}
	return dirs, nil
}

// Analyze scans the project and classifies its obsolete files.
func (s *Service) Analyze(ctx context.Context, p *Project, opts Options) (*obsolete.Report, error) {
	files, err := s.Scan(p)
	if err != nil {
		return nil, err
	}
	if opts.OnStart != nil {
		opts.OnStart(len(files))
	}

	c := s.openCache(p)
	workers := p.Config.Workers
	if s.workers > 0 {
		workers = s.workers
	}

	a := obsolete.New(p.Root,
		obsolete.WithFs(s.fs),
		obsolete.WithSignals(obsolete.Signals{
			Folders:   p.Config.EntryPoints.Folders,
			Basenames: p.Config.EntryPoints.Basenames,
		}),
		obsolete.WithAliasConfigs(p.Config.Resolve.AliasConfigs),
		obsolete.WithAliasOptions(obsolete.WithBaseURL(p.Config.Resolve.BaseURL)),
		obsolete.WithResolverOptions(
			obsolete.WithExtensions(p.Config.Resolve.Extensions),
			obsolete.WithIndexName(p.Config.Resolve.IndexName),
		),
		obsolete.WithWorkers(workers),
		obsolete.WithCache(c),
		obsolete.WithProgress(opts.OnProgress),
		obsolete.WithLogger(s.logger),
	)

	report, err := a.Analyze(ctx, files)
	if err != nil {
		return nil, err
	}

	if !opts.SkipEmptyDirs {
		dirs, err := s.EmptyDirs(p)
		if err != nil {
			return nil, err
		}
		report.SetEmptyDirs(dirs)
	}
	return report, nil
}

// Resolver returns the import resolver configured for p.
func (s *Service) Resolver(p *Project) *obsolete.Resolver {
	aliases := obsolete.LoadAliases(s.fs, p.Root, p.Config.Resolve.AliasConfigs,
		obsolete.WithBaseURL(p.Config.Resolve.BaseURL))
	return obsolete.NewResolver(s.fs, p.Root, aliases,
		obsolete.WithExtensions(p.Config.Resolve.Extensions),
		obsolete.WithIndexName(p.Config.Resolve.IndexName),
	)
}

// ClearCache removes the project's import cache.
func (s *Service) ClearCache(p *Project) error {
	c, err := cache.New(s.fs, s.cacheDir(p), p.Config.Cache.TTL, true)
	if err != nil {
		return err
	}
	return c.Clear()
}

func (s *Service) openCache(p *Project) *cache.Cache {
	if s.noCache || !p.Config.Cache.Enabled {
		return cache.Disabled()
	}
	c, err := cache.New(s.fs, s.cacheDir(p), p.Config.Cache.TTL, true)
	if err != nil {
		s.logger.Warn("cache unavailable", "error", err)
		return cache.Disabled()
	}
	return c
}

func (s *Service) cacheDir(p *Project) string {
	dir := filepath.FromSlash(p.Config.Cache.Dir)
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(p.Root, dir)
}
