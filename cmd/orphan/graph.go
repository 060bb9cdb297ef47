package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/panbanda/orphan/internal/output"
	"github.com/panbanda/orphan/pkg/analyzer/graph"
	"github.com/urfave/cli/v2"
)

func graphCmd() *cli.Command {
	return &cli.Command{
		Name:      "graph",
		Aliases:   []string{"dag"},
		Usage:     "Show the import graph, its most depended-upon files and cycles",
		ArgsUsage: "[path | repo[@ref]]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "dot",
				Usage: "Print the graph in Graphviz DOT format",
			},
			&cli.BoolFlag{
				Name:  "mermaid",
				Usage: "Print the graph as a Mermaid flowchart",
			},
			&cli.BoolFlag{
				Name:  "obsolete-only",
				Usage: "Restrict the Mermaid flowchart to obsolete files",
			},
			&cli.BoolFlag{
				Name:  "cycles",
				Usage: "Only list import cycles",
			},
			&cli.IntFlag{
				Name:  "top",
				Value: 10,
				Usage: "Number of most depended-upon files to show",
			},
		},
		Action: runGraphCmd,
	}
}

// graphResult is the structured form of the graph command output.
type graphResult struct {
	Summary graph.Summary      `json:"summary" toon:"summary" yaml:"summary"`
	Top     []graph.NodeMetric `json:"top" toon:"top" yaml:"top"`
}

func runGraphCmd(c *cli.Context) error {
	svc, p, cleanup, err := openSource(c)
	defer cleanup()
	if err != nil {
		return err
	}

	report, err := analyzeProject(c, svc, p, true)
	if err != nil {
		return err
	}
	g := graph.FromReport(report)

	formatter, err := newFormatter(c, p)
	if err != nil {
		return err
	}
	defer formatter.Close()
	w := formatter.Writer()

	switch {
	case c.Bool("dot"):
		data, err := graph.MarshalDOT(g, "imports")
		if err != nil {
			return fmt.Errorf("render dot: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err

	case c.Bool("mermaid"):
		opts := graph.DefaultMermaidOptions()
		opts.ObsoleteOnly = c.Bool("obsolete-only")
		fmt.Fprintln(w, "```mermaid")
		fmt.Fprint(w, g.ToMermaidWithOptions(opts))
		fmt.Fprintln(w, "```")
		return nil

	case c.Bool("cycles"):
		cycles := graph.FindCycles(g)
		if cycles == nil {
			cycles = [][]string{}
		}
		rows := make([][]string, len(cycles))
		for i, cycle := range cycles {
			rows[i] = []string{strconv.Itoa(len(cycle)), strings.Join(cycle, " -> ")}
		}
		table := output.NewTable("Import Cycles", []string{"Files", "Cycle"}, rows, nil, cycles)
		table.Empty = "No import cycles found."
		return formatter.Output(table)
	}

	metrics := graph.CalculateMetrics(g)
	top := metrics.TopByPageRank(c.Int("top"))

	rows := make([][]string, len(top))
	for i, nm := range top {
		rows[i] = []string{
			nm.NodeID,
			nm.Status.String(),
			strconv.Itoa(nm.InDegree),
			strconv.Itoa(nm.OutDegree),
			fmt.Sprintf("%.4f", nm.PageRank),
		}
	}

	s := metrics.Summary
	return formatter.Output(&output.Report{
		Title: "Import Graph",
		Sections: []output.Renderable{
			&output.Section{
				Title: "Summary",
				Content: fmt.Sprintf("Files: %d  Imports: %d  Obsolete: %d\nComponents: %d (largest %d)  Cycles: %d  Max fan-in: %d  Max fan-out: %d",
					s.TotalNodes, s.TotalEdges, s.ObsoleteNodes,
					s.Components, s.LargestComponent, s.CycleCount, s.MaxInDegree, s.MaxOutDegree),
			},
			output.NewTable("Most Depended-Upon Files", []string{"File", "Status", "In", "Out", "PageRank"}, rows, nil, nil),
		},
		Data: graphResult{Summary: s, Top: top},
	})
}
