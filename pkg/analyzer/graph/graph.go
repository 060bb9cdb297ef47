// Package graph exports the file import graph and computes structural
// statistics over it.
package graph

import (
	"sort"

	"github.com/panbanda/orphan/pkg/analyzer/obsolete"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// FromReport converts an analysis report into a DependencyGraph with each
// file tagged by its reachability status.
func FromReport(r *obsolete.Report) *DependencyGraph {
	g := NewDependencyGraph()
	if r == nil || r.Graph == nil {
		return g
	}

	obsoleteSet := make(map[string]bool, len(r.Obsolete))
	for _, o := range r.Obsolete {
		obsoleteSet[o.Path] = true
	}
	entrySet := make(map[string]bool, len(r.EntryPoints))
	for _, e := range r.EntryPoints {
		entrySet[e] = true
	}

	for _, f := range r.Graph.Files {
		status := StatusReachable
		switch {
		case entrySet[f]:
			status = StatusEntry
		case obsoleteSet[f]:
			status = StatusObsolete
		}
		g.AddNode(Node{ID: f, Status: status})
	}
	for _, f := range r.Graph.Files {
		for _, dep := range r.Graph.Forward[f] {
			g.AddEdge(Edge{From: f, To: dep})
		}
	}
	return g
}

// fileNode is a gonum node carrying the file path for DOT output.
type fileNode struct {
	id     int64
	path   string
	status Status
}

var _ graph.Node = fileNode{}

// ID implements graph.Node.
func (n fileNode) ID() int64 { return n.id }

// DOTID labels the node with its file path.
func (n fileNode) DOTID() string { return n.path }

// Attributes colors entry points and obsolete files.
func (n fileNode) Attributes() []encoding.Attribute {
	switch n.status {
	case StatusEntry:
		return []encoding.Attribute{{Key: "style", Value: "filled"}, {Key: "fillcolor", Value: "palegreen"}}
	case StatusObsolete:
		return []encoding.Attribute{{Key: "style", Value: "filled"}, {Key: "fillcolor", Value: "tomato"}}
	default:
		return nil
	}
}

// gonumGraph holds the gonum representation and mappings.
type gonumGraph struct {
	directed   *simple.DirectedGraph
	undirected *simple.UndirectedGraph
	nodes      []fileNode
	pathToID   map[string]int64
}

// toGonumGraph converts a DependencyGraph to gonum graph types.
func toGonumGraph(g *DependencyGraph) *gonumGraph {
	gg := &gonumGraph{
		directed:   simple.NewDirectedGraph(),
		undirected: simple.NewUndirectedGraph(),
		nodes:      make([]fileNode, len(g.Nodes)),
		pathToID:   make(map[string]int64, len(g.Nodes)),
	}

	for i, node := range g.Nodes {
		n := fileNode{id: int64(i), path: node.ID, status: node.Status}
		gg.nodes[i] = n
		gg.pathToID[node.ID] = n.id
		gg.directed.AddNode(n)
		gg.undirected.AddNode(n)
	}

	// Simple graphs panic on self loops.
	for _, edge := range g.Edges {
		fromID, fromOK := gg.pathToID[edge.From]
		toID, toOK := gg.pathToID[edge.To]
		if !fromOK || !toOK || fromID == toID {
			continue
		}
		from, to := gg.nodes[fromID], gg.nodes[toID]
		gg.directed.SetEdge(simple.Edge{F: from, T: to})
		if !gg.undirected.HasEdgeBetween(fromID, toID) {
			gg.undirected.SetEdge(simple.Edge{F: from, T: to})
		}
	}
	return gg
}

// CalculateMetrics computes degree, PageRank, component and cycle
// statistics for g.
func CalculateMetrics(g *DependencyGraph) *Metrics {
	metrics := &Metrics{
		NodeMetrics: make([]NodeMetric, 0, len(g.Nodes)),
		Summary: Summary{
			TotalNodes: len(g.Nodes),
			TotalEdges: len(g.Edges),
		},
	}
	if len(g.Nodes) == 0 {
		return metrics
	}

	gg := toGonumGraph(g)
	pageRank := network.PageRank(gg.directed, 0.85, 1e-6)

	for _, n := range gg.nodes {
		in := gg.directed.To(n.id).Len()
		out := gg.directed.From(n.id).Len()
		metrics.NodeMetrics = append(metrics.NodeMetrics, NodeMetric{
			NodeID:    n.path,
			Status:    n.status,
			InDegree:  in,
			OutDegree: out,
			PageRank:  pageRank[n.id],
		})
		if in > metrics.Summary.MaxInDegree {
			metrics.Summary.MaxInDegree = in
		}
		if out > metrics.Summary.MaxOutDegree {
			metrics.Summary.MaxOutDegree = out
		}
		if n.status == StatusObsolete {
			metrics.Summary.ObsoleteNodes++
		}
	}

	components := topo.ConnectedComponents(gg.undirected)
	metrics.Summary.Components = len(components)
	for _, comp := range components {
		if len(comp) > metrics.Summary.LargestComponent {
			metrics.Summary.LargestComponent = len(comp)
		}
	}

	cycles := gg.cycles()
	metrics.Summary.Cycles = cycles
	metrics.Summary.CycleCount = len(cycles)
	metrics.Summary.IsCyclic = len(cycles) > 0

	return metrics
}

// FindCycles returns the import cycles of g, each sorted, ordered by their
// first file.
func FindCycles(g *DependencyGraph) [][]string {
	return toGonumGraph(g).cycles()
}

// cycles returns the strongly connected components with more than one file.
func (gg *gonumGraph) cycles() [][]string {
	var cycles [][]string
	for _, scc := range topo.TarjanSCC(gg.directed) {
		if len(scc) < 2 {
			continue
		}
		cycle := make([]string, 0, len(scc))
		for _, n := range scc {
			cycle = append(cycle, gg.nodes[n.ID()].path)
		}
		sort.Strings(cycle)
		cycles = append(cycles, cycle)
	}
	sort.Slice(cycles, func(i, j int) bool { return cycles[i][0] < cycles[j][0] })
	return cycles
}

// TopByPageRank returns the n most depended-upon files.
func (m *Metrics) TopByPageRank(n int) []NodeMetric {
	sorted := make([]NodeMetric, len(m.NodeMetrics))
	copy(sorted, m.NodeMetrics)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].PageRank != sorted[j].PageRank {
			return sorted[i].PageRank > sorted[j].PageRank
		}
		return sorted[i].NodeID < sorted[j].NodeID
	})
	if n > 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// MarshalDOT renders g in Graphviz DOT format.
func MarshalDOT(g *DependencyGraph, name string) ([]byte, error) {
	return dot.Marshal(toGonumGraph(g).directed, name, "", "  ")
}
