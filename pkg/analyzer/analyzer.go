// Package analyzer defines the contract shared by project analyzers.
package analyzer

import "context"

// FileAnalyzer analyzes a set of project files. Paths are relative to the
// analyzer's project root and slash separated.
type FileAnalyzer[T any] interface {
	// Analyze processes files and returns the analysis result. Cancelling
	// ctx stops work between files.
	Analyze(ctx context.Context, files []string) (T, error)
}
