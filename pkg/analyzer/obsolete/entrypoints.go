package obsolete

import (
	"path"
	"slices"
	"strings"
)

// Signals are the framework-specific markers of files loaded directly by
// the framework rather than imported.
type Signals struct {
	Folders   []string `json:"folders"`
	Basenames []string `json:"basenames"`
}

// NextJSSignals returns the entry-point signals for Next.js projects.
func NextJSSignals() Signals {
	return Signals{
		Folders:   []string{"app", "pages", "public", "styles"},
		Basenames: []string{"page", "layout", "loading", "error", "not-found", "route", "template"},
	}
}

// IsEntryPoint reports whether any path segment of rel is a framework folder
// or its stem contains a framework basename.
func (s Signals) IsEntryPoint(rel string) bool {
	for _, segment := range strings.Split(rel, "/") {
		if slices.Contains(s.Folders, segment) {
			return true
		}
	}

	base := path.Base(rel)
	stem := strings.TrimSuffix(base, path.Ext(base))
	for _, name := range s.Basenames {
		if name != "" && strings.Contains(stem, name) {
			return true
		}
	}
	return false
}

// EntryPoints returns the files that are entry points, in input order.
func EntryPoints(files []string, s Signals) []string {
	entries := []string{}
	for _, f := range files {
		if s.IsEntryPoint(f) {
			entries = append(entries, f)
		}
	}
	return entries
}
