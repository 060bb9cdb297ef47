package report

import (
	"time"

	"github.com/panbanda/orphan/pkg/analyzer/graph"
	"github.com/panbanda/orphan/pkg/analyzer/obsolete"
	"github.com/panbanda/orphan/pkg/stats"
)

// Metadata contains report generation metadata.
type Metadata struct {
	Project       string    `json:"project"`
	GeneratedAt   time.Time `json:"generated_at"`
	OrphanVersion string    `json:"orphan_version"`
}

// RenderData contains all data needed to render the report.
type RenderData struct {
	Metadata Metadata
	Analysis *obsolete.Report

	// Share of analyzed files that are obsolete, 0-100.
	ObsoletePercent float64
	ReachClass      string

	Reasons     []ReasonCount
	Directories []DirectoryCount

	// Graph is nil when the report was rendered from saved analysis JSON,
	// which does not carry the import graph.
	Graph *GraphData
}

// ReasonCount is the number of obsolete files with one reason.
type ReasonCount struct {
	Reason obsolete.Reason
	Count  int
}

// DirectoryCount is the number of obsolete files under a top-level directory.
type DirectoryCount struct {
	Directory string
	Count     int
}

// GraphData holds import graph statistics for the report.
type GraphData struct {
	Summary graph.Summary
	Top     []graph.NodeMetric
	FanIn   stats.Summary
}
