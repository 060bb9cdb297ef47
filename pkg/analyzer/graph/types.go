package graph

import (
	"strings"
)

// Status is the reachability state of a file node.
type Status string

const (
	StatusEntry     Status = "entry"
	StatusReachable Status = "reachable"
	StatusObsolete  Status = "obsolete"
)

// String returns the string representation.
func (s Status) String() string {
	return string(s)
}

// Node is a project file in the import graph.
type Node struct {
	ID     string `json:"id" toon:"id" yaml:"id"`
	Status Status `json:"status" toon:"status" yaml:"status"`
}

// Edge is an import from one file to another.
type Edge struct {
	From string `json:"from" toon:"from" yaml:"from"`
	To   string `json:"to" toon:"to" yaml:"to"`
}

// DependencyGraph is the serializable form of the file import graph.
type DependencyGraph struct {
	Nodes []Node `json:"nodes" toon:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" toon:"edges" yaml:"edges"`
}

// NewDependencyGraph creates an empty graph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		Nodes: make([]Node, 0),
		Edges: make([]Edge, 0),
	}
}

// AddNode adds a node to the graph.
func (g *DependencyGraph) AddNode(node Node) {
	g.Nodes = append(g.Nodes, node)
}

// AddEdge adds an edge to the graph.
func (g *DependencyGraph) AddEdge(edge Edge) {
	g.Edges = append(g.Edges, edge)
}

// Metrics holds per-file and whole-graph statistics.
type Metrics struct {
	NodeMetrics []NodeMetric `json:"node_metrics" toon:"node_metrics" yaml:"node_metrics"`
	Summary     Summary      `json:"summary" toon:"summary" yaml:"summary"`
}

// NodeMetric holds statistics for a single file.
type NodeMetric struct {
	NodeID    string  `json:"node_id" toon:"node_id" yaml:"node_id"`
	Status    Status  `json:"status" toon:"status" yaml:"status"`
	InDegree  int     `json:"in_degree" toon:"in_degree" yaml:"in_degree"`
	OutDegree int     `json:"out_degree" toon:"out_degree" yaml:"out_degree"`
	PageRank  float64 `json:"pagerank" toon:"pagerank" yaml:"pagerank"`
}

// Summary provides aggregate graph statistics.
type Summary struct {
	TotalNodes       int        `json:"total_nodes" toon:"total_nodes" yaml:"total_nodes"`
	TotalEdges       int        `json:"total_edges" toon:"total_edges" yaml:"total_edges"`
	ObsoleteNodes    int        `json:"obsolete_nodes" toon:"obsolete_nodes" yaml:"obsolete_nodes"`
	Components       int        `json:"components" toon:"components" yaml:"components"`
	LargestComponent int        `json:"largest_component" toon:"largest_component" yaml:"largest_component"`
	CycleCount       int        `json:"cycle_count" toon:"cycle_count" yaml:"cycle_count"`
	Cycles           [][]string `json:"cycles,omitempty" toon:"cycles,omitempty" yaml:"cycles,omitempty"`
	IsCyclic         bool       `json:"is_cyclic" toon:"is_cyclic" yaml:"is_cyclic"`
	MaxInDegree      int        `json:"max_in_degree" toon:"max_in_degree" yaml:"max_in_degree"`
	MaxOutDegree     int        `json:"max_out_degree" toon:"max_out_degree" yaml:"max_out_degree"`
}

// MermaidDirection specifies the graph direction.
type MermaidDirection string

const (
	DirectionTD MermaidDirection = "TD" // Top-down
	DirectionLR MermaidDirection = "LR" // Left-right
)

// MermaidOptions configures Mermaid diagram generation.
type MermaidOptions struct {
	MaxNodes     int              `json:"max_nodes" toon:"max_nodes" yaml:"max_nodes"`
	ObsoleteOnly bool             `json:"obsolete_only" toon:"obsolete_only" yaml:"obsolete_only"`
	Direction    MermaidDirection `json:"direction" toon:"direction" yaml:"direction"`
}

// DefaultMermaidOptions returns sensible defaults.
func DefaultMermaidOptions() MermaidOptions {
	return MermaidOptions{
		MaxNodes:  100,
		Direction: DirectionLR,
	}
}

// ToMermaid generates Mermaid flowchart syntax with default options.
func (g *DependencyGraph) ToMermaid() string {
	return g.ToMermaidWithOptions(DefaultMermaidOptions())
}

// ToMermaidWithOptions generates Mermaid flowchart syntax. Obsolete files are
// drawn red and entry points green.
func (g *DependencyGraph) ToMermaidWithOptions(opts MermaidOptions) string {
	direction := opts.Direction
	if direction == "" {
		direction = DirectionLR
	}

	var b strings.Builder
	b.WriteString("graph " + string(direction) + "\n")

	nodes := make([]Node, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		if opts.ObsoleteOnly && n.Status != StatusObsolete {
			continue
		}
		nodes = append(nodes, n)
	}
	if opts.MaxNodes > 0 && len(nodes) > opts.MaxNodes {
		nodes = nodes[:opts.MaxNodes]
	}

	kept := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		kept[n.ID] = true
		b.WriteString("    " + SanitizeMermaidID(n.ID) + "[\"" + EscapeMermaidLabel(n.ID) + "\"]")
		if n.Status != "" {
			b.WriteString(":::" + string(n.Status))
		}
		b.WriteString("\n")
	}

	for _, e := range g.Edges {
		if kept[e.From] && kept[e.To] {
			b.WriteString("    " + SanitizeMermaidID(e.From) + " --> " + SanitizeMermaidID(e.To) + "\n")
		}
	}

	b.WriteString("    classDef entry fill:#90EE90\n")
	b.WriteString("    classDef obsolete fill:#FF6347\n")
	return b.String()
}

// SanitizeMermaidID makes a file path safe for use as a Mermaid node ID.
func SanitizeMermaidID(id string) string {
	if id == "" {
		return "empty"
	}
	result := make([]byte, 0, len(id)+1)
	for i := 0; i < len(id); i++ {
		c := id[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			result = append(result, c)
		} else {
			result = append(result, '_')
		}
	}
	if result[0] >= '0' && result[0] <= '9' {
		result = append([]byte{'n'}, result...)
	}
	return string(result)
}

var mermaidEscaper = strings.NewReplacer(
	"&", "&amp;",
	`"`, "&quot;",
	"<", "&lt;",
	">", "&gt;",
	"|", "&#124;",
	"[", "&#91;",
	"]", "&#93;",
	"{", "&#123;",
	"}", "&#125;",
	"\n", "<br/>",
)

// EscapeMermaidLabel escapes special characters in labels for Mermaid.
func EscapeMermaidLabel(s string) string {
	return mermaidEscaper.Replace(s)
}
