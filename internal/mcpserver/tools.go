package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/panbanda/orphan/internal/output"
	"github.com/panbanda/orphan/internal/service/analysis"
	"github.com/panbanda/orphan/pkg/analyzer/graph"
	"github.com/panbanda/orphan/pkg/analyzer/obsolete"
	"github.com/panbanda/orphan/pkg/project"
	toon "github.com/toon-format/toon-go"
)

// ProjectInput is the base input for all tools.
type ProjectInput struct {
	Path   string `json:"path,omitempty" jsonschema:"Directory inside the project. The root is the nearest ancestor with package.json. Defaults to the current directory."`
	Format string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

// FindObsoleteInput adds obsolete-file options.
type FindObsoleteInput struct {
	ProjectInput
	SkipEmptyDirs bool `json:"skip_empty_dirs,omitempty" jsonschema:"Do not list empty directories."`
}

// EmptyDirsInput lists empty directories.
type EmptyDirsInput struct {
	ProjectInput
}

// GraphInput adds graph options.
type GraphInput struct {
	ProjectInput
	Top          int  `json:"top,omitempty" jsonschema:"Number of most depended-upon files to return. Default 10."`
	Mermaid      bool `json:"mermaid,omitempty" jsonschema:"Include a Mermaid flowchart of the graph."`
	ObsoleteOnly bool `json:"obsolete_only,omitempty" jsonschema:"Restrict the Mermaid flowchart to obsolete files."`
}

// ResolveInput resolves a single import specifier.
type ResolveInput struct {
	ProjectInput
	Specifier string `json:"specifier" jsonschema:"The import string as written in the source, e.g. @/components/Button or ./utils."`
	Importer  string `json:"importer" jsonschema:"Project-relative path of the importing file, e.g. app/page.tsx."`
}

// EmptyDirsResult is the list_empty_dirs payload.
type EmptyDirsResult struct {
	Root      string   `json:"root" toon:"root"`
	EmptyDirs []string `json:"empty_dirs" toon:"empty_dirs"`
}

// GraphResult is the dependency_graph payload.
type GraphResult struct {
	Summary graph.Summary      `json:"summary" toon:"summary"`
	Top     []graph.NodeMetric `json:"top" toon:"top"`
	Mermaid string             `json:"mermaid,omitempty" toon:"mermaid,omitempty"`
}

// ResolveResult is the resolve_import payload.
type ResolveResult struct {
	Specifier string              `json:"specifier" toon:"specifier"`
	Importer  string              `json:"importer" toon:"importer"`
	Resolved  bool                `json:"resolved" toon:"resolved"`
	Target    string              `json:"target,omitempty" toon:"target,omitempty"`
	Aliases   obsolete.AliasTable `json:"aliases" toon:"aliases"`
}

const defaultTop = 10

func projectPath(input ProjectInput) string {
	if input.Path == "" {
		return "."
	}
	return input.Path
}

func getFormat(input ProjectInput) output.Format {
	switch input.Format {
	case "json":
		return output.FormatJSON
	case "markdown", "md":
		return output.FormatMarkdown
	default:
		return output.FormatTOON
	}
}

func formatOutput(data any, format output.Format) (string, error) {
	if format == output.FormatJSON {
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return "", err
		}
		return string(out), nil
	}

	out, err := toon.Marshal(data, toon.WithIndent(2))
	if err != nil {
		return "", err
	}
	if format == output.FormatMarkdown {
		return "```\n" + string(out) + "\n```", nil
	}
	return string(out), nil
}

func toolResult(data any, format output.Format) (*mcp.CallToolResult, any, error) {
	text, err := formatOutput(data, format)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

// Tool handlers

func (s *Server) handleFindObsoleteFiles(ctx context.Context, req *mcp.CallToolRequest, input FindObsoleteInput) (*mcp.CallToolResult, any, error) {
	p, err := s.svc.Open(projectPath(input.ProjectInput))
	if err != nil {
		return toolError(err.Error())
	}

	report, err := s.svc.Analyze(ctx, p, analysis.Options{SkipEmptyDirs: input.SkipEmptyDirs})
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(report, getFormat(input.ProjectInput))
}

func (s *Server) handleListEmptyDirs(ctx context.Context, req *mcp.CallToolRequest, input EmptyDirsInput) (*mcp.CallToolResult, any, error) {
	p, err := s.svc.Open(projectPath(input.ProjectInput))
	if err != nil {
		return toolError(err.Error())
	}

	dirs, err := s.svc.EmptyDirs(p)
	if err != nil {
		return toolError(err.Error())
	}
	if dirs == nil {
		dirs = []string{}
	}
	return toolResult(EmptyDirsResult{Root: p.Root, EmptyDirs: dirs}, getFormat(input.ProjectInput))
}

func (s *Server) handleDependencyGraph(ctx context.Context, req *mcp.CallToolRequest, input GraphInput) (*mcp.CallToolResult, any, error) {
	p, err := s.svc.Open(projectPath(input.ProjectInput))
	if err != nil {
		return toolError(err.Error())
	}

	report, err := s.svc.Analyze(ctx, p, analysis.Options{SkipEmptyDirs: true})
	if err != nil {
		return toolError(err.Error())
	}

	g := graph.FromReport(report)
	metrics := graph.CalculateMetrics(g)

	top := input.Top
	if top <= 0 {
		top = defaultTop
	}
	result := GraphResult{
		Summary: metrics.Summary,
		Top:     metrics.TopByPageRank(top),
	}
	if input.Mermaid {
		opts := graph.DefaultMermaidOptions()
		opts.ObsoleteOnly = input.ObsoleteOnly
		result.Mermaid = g.ToMermaidWithOptions(opts)
	}
	return toolResult(result, getFormat(input.ProjectInput))
}

func (s *Server) handleResolveImport(ctx context.Context, req *mcp.CallToolRequest, input ResolveInput) (*mcp.CallToolResult, any, error) {
	if input.Specifier == "" || input.Importer == "" {
		return toolError("specifier and importer are required")
	}

	p, err := s.svc.Open(projectPath(input.ProjectInput))
	if err != nil {
		return toolError(err.Error())
	}

	resolver := s.svc.Resolver(p)
	target, ok := resolver.Resolve(input.Specifier, project.Normalize(input.Importer))
	return toolResult(ResolveResult{
		Specifier: input.Specifier,
		Importer:  input.Importer,
		Resolved:  ok,
		Target:    target,
		Aliases:   resolver.Aliases(),
	}, getFormat(input.ProjectInput))
}
