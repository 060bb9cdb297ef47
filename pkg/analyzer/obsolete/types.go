package obsolete

import "sort"

// Reason explains why a file is considered obsolete.
type Reason string

const (
	ReasonUnimportedNotEntry Reason = "not imported by any file and not an entry point"
	ReasonUnimported         Reason = "not imported by any file"
	ReasonOnlyObsoleteUsers  Reason = "imported only by other obsolete files"
	ReasonUnreachable        Reason = "not reachable from any entry point"
)

// String returns the string representation.
func (r Reason) String() string {
	return string(r)
}

// Graph is the project-wide import graph. Forward has an entry for every
// analyzed file; Reverse only for files imported at least once.
type Graph struct {
	Files   []string            `json:"files" toon:"files" yaml:"files"`
	Forward map[string][]string `json:"forward" toon:"forward" yaml:"forward"`
	Reverse map[string][]string `json:"reverse" toon:"reverse" yaml:"reverse"`
}

// NewGraph creates an empty graph over the given files.
func NewGraph(files []string) *Graph {
	sorted := make([]string, len(files))
	copy(sorted, files)
	sort.Strings(sorted)

	g := &Graph{
		Files:   sorted,
		Forward: make(map[string][]string, len(sorted)),
		Reverse: make(map[string][]string),
	}
	for _, f := range sorted {
		g.Forward[f] = []string{}
	}
	return g
}

// Imports returns the files that file imports.
func (g *Graph) Imports(file string) []string {
	return g.Forward[file]
}

// ImportedBy returns the files importing file and whether any entry exists.
func (g *Graph) ImportedBy(file string) ([]string, bool) {
	importers, ok := g.Reverse[file]
	return importers, ok
}

// EdgeCount returns the number of import edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, deps := range g.Forward {
		n += len(deps)
	}
	return n
}

// FileError records a per-file failure that was tolerated during analysis.
type FileError struct {
	Path    string `json:"path" toon:"path" yaml:"path"`
	Message string `json:"message" toon:"message" yaml:"message"`
}

// ObsoleteFile pairs an unreachable file with its classification.
type ObsoleteFile struct {
	Path   string `json:"path" toon:"path" yaml:"path"`
	Reason Reason `json:"reason" toon:"reason" yaml:"reason"`
}

// Summary provides aggregate counts for a run.
type Summary struct {
	TotalFiles     int `json:"total_files" toon:"total_files" yaml:"total_files"`
	EntryPoints    int `json:"entry_points" toon:"entry_points" yaml:"entry_points"`
	ReachableFiles int `json:"reachable_files" toon:"reachable_files" yaml:"reachable_files"`
	ObsoleteFiles  int `json:"obsolete_files" toon:"obsolete_files" yaml:"obsolete_files"`
	Edges          int `json:"edges" toon:"edges" yaml:"edges"`
	EmptyDirs      int `json:"empty_dirs" toon:"empty_dirs" yaml:"empty_dirs"`
	Warnings       int `json:"warnings" toon:"warnings" yaml:"warnings"`
}

// Report is the result of an obsolete-file analysis.
type Report struct {
	Root        string         `json:"root" toon:"root" yaml:"root"`
	EntryPoints []string       `json:"entry_points" toon:"entry_points" yaml:"entry_points"`
	Obsolete    []ObsoleteFile `json:"obsolete" toon:"obsolete" yaml:"obsolete"`
	EmptyDirs   []string       `json:"empty_dirs" toon:"empty_dirs" yaml:"empty_dirs"`
	Warnings    []FileError    `json:"warnings,omitempty" toon:"warnings,omitempty" yaml:"warnings,omitempty"`
	Summary     Summary        `json:"summary" toon:"summary" yaml:"summary"`
	Graph       *Graph         `json:"-" toon:"-" yaml:"-"`
}

// Reasons returns the obsolete files as a path to reason map.
func (r *Report) Reasons() map[string]Reason {
	out := make(map[string]Reason, len(r.Obsolete))
	for _, o := range r.Obsolete {
		out[o.Path] = o.Reason
	}
	return out
}

// SetEmptyDirs attaches empty directory results and updates the summary.
func (r *Report) SetEmptyDirs(dirs []string) {
	if dirs == nil {
		dirs = []string{}
	}
	r.EmptyDirs = dirs
	r.Summary.EmptyDirs = len(dirs)
}
