package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/afero"
)

// Config holds all configuration options for orphan.
type Config struct {
	// Project discovery and file enumeration
	Scan ScanConfig `koanf:"scan" toml:"scan"`

	// Import resolution settings
	Resolve ResolveConfig `koanf:"resolve" toml:"resolve"`

	// Framework entry-point signals
	EntryPoints EntryPointConfig `koanf:"entry_points" toml:"entry_points"`

	// Where obsolete files are moved
	Quarantine QuarantineConfig `koanf:"quarantine" toml:"quarantine"`

	// Cache settings
	Cache CacheConfig `koanf:"cache" toml:"cache"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output"`

	// Workers caps the file-processing fan-out (0 = 2x NumCPU).
	Workers int `koanf:"workers" toml:"workers"`
}

// ScanConfig controls which files make up the project.
type ScanConfig struct {
	Manifest    string   `koanf:"manifest" toml:"manifest"`
	Extensions  []string `koanf:"extensions" toml:"extensions"`
	ExcludeDirs []string `koanf:"exclude_dirs" toml:"exclude_dirs"`
	// ExcludePatterns are doublestar globs matched against project-relative
	// file paths, e.g. "**/*.stories.tsx".
	ExcludePatterns []string `koanf:"exclude_patterns" toml:"exclude_patterns"`
	IgnoreFile      string   `koanf:"ignore_file" toml:"ignore_file"`
	Gitignore       bool     `koanf:"gitignore" toml:"gitignore"`
}

// ResolveConfig controls how import literals become files.
type ResolveConfig struct {
	AliasConfigs []string `koanf:"alias_configs" toml:"alias_configs"`
	// BaseURL prefixes alias targets with compilerOptions.baseUrl.
	BaseURL    bool     `koanf:"base_url" toml:"base_url"`
	Extensions []string `koanf:"extensions" toml:"extensions"`
	IndexName  string   `koanf:"index_name" toml:"index_name"`
}

// EntryPointConfig lists the framework-significant folder names and basenames.
type EntryPointConfig struct {
	Folders   []string `koanf:"folders" toml:"folders"`
	Basenames []string `koanf:"basenames" toml:"basenames"`
}

// QuarantineConfig controls relocation of obsolete files.
type QuarantineConfig struct {
	Dir string `koanf:"dir" toml:"dir"`
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled" toml:"enabled"`
	Dir     string `koanf:"dir" toml:"dir"`
	TTL     int    `koanf:"ttl" toml:"ttl"` // TTL in hours
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format  string `koanf:"format" toml:"format"` // text, json, markdown, toon, yaml
	Color   bool   `koanf:"color" toml:"color"`
	Verbose bool   `koanf:"verbose" toml:"verbose"`
}

// DefaultConfig returns a config tuned for Next.js projects.
func DefaultConfig() *Config {
	return &Config{
		Scan: ScanConfig{
			Manifest:   "package.json",
			Extensions: []string{".ts", ".tsx", ".js", ".jsx", ".css", ".scss"},
			ExcludeDirs: []string{
				".git",
				"node_modules",
				".next",
				"out",
				"build",
				".bolt",
			},
			ExcludePatterns: []string{},
			IgnoreFile:      ".orphan-ignore",
			Gitignore:       false,
		},
		Resolve: ResolveConfig{
			AliasConfigs: []string{"tsconfig.json", "jsconfig.json"},
			BaseURL:      false,
			Extensions:   []string{".ts", ".tsx", ".js", ".jsx"},
			IndexName:    "index",
		},
		EntryPoints: EntryPointConfig{
			Folders:   []string{"app", "pages", "public", "styles"},
			Basenames: []string{"page", "layout", "loading", "error", "not-found", "route", "template"},
		},
		Quarantine: QuarantineConfig{
			Dir: "obsolete",
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".orphan/cache",
			TTL:     24,
		},
		Output: OutputConfig{
			Format:  "text",
			Color:   true,
			Verbose: false,
		},
	}
}

// Load loads configuration from a file, layered over the defaults.
func Load(path string) (*Config, error) {
	return decode(file.Provider(path), path)
}

// LoadFs is Load reading through fs.
func LoadFs(fs afero.Fs, path string) (*Config, error) {
	return decode(fsProvider(fs, path), path)
}

func decode(p koanf.Provider, path string) (*Config, error) {
	k, err := loadKoanf(p, path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	return cfg, nil
}

func loadKoanf(p koanf.Provider, path string) (*koanf.Koanf, error) {
	k := koanf.New(".")
	if err := k.Load(p, parserFor(path)); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return k, nil
}

// afs is a koanf provider that reads a single file from an afero filesystem.
type afs struct {
	fs   afero.Fs
	path string
}

func fsProvider(fs afero.Fs, path string) *afs {
	return &afs{fs: fs, path: path}
}

func (a *afs) ReadBytes() ([]byte, error) {
	return afero.ReadFile(a.fs, a.path)
}

func (a *afs) Read() (map[string]any, error) {
	return nil, errors.New("afero provider does not support this method")
}

// parserFor picks a koanf parser from the file extension, defaulting to TOML.
func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	case ".json":
		return json.Parser()
	default:
		return toml.Parser()
	}
}

// FileNames are the config file names searched for, in order.
var FileNames = []string{
	"orphan.toml",
	"orphan.yaml",
	"orphan.yml",
	"orphan.json",
	".orphan.toml",
	".orphan.yaml",
	".orphan.yml",
	".orphan.json",
}

// Find returns the first config file in fs under dir or dir/.orphan, or "".
func Find(fs afero.Fs, dir string) string {
	for _, d := range []string{dir, filepath.Join(dir, ".orphan")} {
		for _, name := range FileNames {
			path := filepath.Join(d, name)
			if info, err := fs.Stat(path); err == nil && !info.IsDir() {
				return path
			}
		}
	}
	return ""
}

// LoadOrDefault loads the config found in fs under dir, falling back to
// defaults. The returned source is the file used, or "" for defaults.
func LoadOrDefault(fs afero.Fs, dir string) (*Config, string) {
	path := Find(fs, dir)
	if path == "" {
		return DefaultConfig(), ""
	}
	cfg, err := LoadFs(fs, path)
	if err != nil {
		return DefaultConfig(), ""
	}
	return cfg, path
}

// ExcludedDirs returns the configured exclusions plus the quarantine directory.
func (c *Config) ExcludedDirs() []string {
	dirs := make([]string, 0, len(c.Scan.ExcludeDirs)+1)
	dirs = append(dirs, c.Scan.ExcludeDirs...)
	if q := strings.Trim(filepath.ToSlash(c.Quarantine.Dir), "/"); q != "" && !strings.Contains(q, "/") {
		dirs = append(dirs, q)
	}
	return dirs
}

// HasExtension reports whether path carries one of the scanned extensions.
func (c *Config) HasExtension(path string) bool {
	ext := filepath.Ext(path)
	for _, e := range c.Scan.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}
