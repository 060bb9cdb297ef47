package obsolete

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// DefaultResolveExtensions are probed, in order, for extensionless imports.
var DefaultResolveExtensions = []string{".ts", ".tsx", ".js", ".jsx"}

// Resolver turns import literals into project-relative file paths.
type Resolver struct {
	fs         afero.Fs
	root       string
	aliases    AliasTable
	extensions []string
	indexName  string
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithExtensions overrides the probed extensions.
func WithExtensions(exts []string) ResolverOption {
	return func(r *Resolver) {
		if len(exts) > 0 {
			r.extensions = exts
		}
	}
}

// WithIndexName overrides the directory index basename.
func WithIndexName(name string) ResolverOption {
	return func(r *Resolver) {
		if name != "" {
			r.indexName = name
		}
	}
}

// NewResolver creates a resolver for the project at root.
func NewResolver(fs afero.Fs, root string, aliases AliasTable, opts ...ResolverOption) *Resolver {
	if aliases == nil {
		aliases = DefaultAliases()
	}
	r := &Resolver{
		fs:         fs,
		root:       root,
		aliases:    aliases,
		extensions: DefaultResolveExtensions,
		indexName:  "index",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Aliases returns the alias table in match order.
func (r *Resolver) Aliases() AliasTable {
	return r.aliases
}

// Resolve maps literal, imported from the project file importer, to an
// existing project file. Bare package literals are never resolved.
func (r *Resolver) Resolve(literal, importer string) (string, bool) {
	var candidate string
	switch {
	case strings.HasPrefix(literal, "."):
		candidate = path.Join(path.Dir(importer), literal)
	default:
		substituted, ok := r.aliases.Match(literal)
		if !ok {
			return "", false
		}
		candidate = path.Clean(substituted)
	}

	if !withinRoot(candidate) {
		return "", false
	}

	if path.Ext(candidate) == "" {
		for _, ext := range r.extensions {
			if r.isFile(candidate + ext) {
				return candidate + ext, true
			}
			index := path.Join(candidate, r.indexName+ext)
			if r.isFile(index) {
				return index, true
			}
		}
		return "", false
	}

	if r.isFile(candidate) {
		return candidate, true
	}
	return "", false
}

func withinRoot(rel string) bool {
	if rel == ".." || path.IsAbs(rel) {
		return false
	}
	return !strings.HasPrefix(rel, "../")
}

func (r *Resolver) isFile(rel string) bool {
	info, err := r.fs.Stat(filepath.Join(r.root, filepath.FromSlash(rel)))
	return err == nil && info.Mode().IsRegular()
}
