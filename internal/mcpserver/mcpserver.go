package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/panbanda/orphan/internal/service/analysis"
)

// Server wraps the MCP server and registers the orphan tools.
type Server struct {
	server *mcp.Server
	svc    *analysis.Service
}

// Option configures a Server.
type Option func(*Server)

// WithService sets the analysis service used by the tools.
func WithService(svc *analysis.Service) Option {
	return func(s *Server) {
		s.svc = svc
	}
}

// NewServer creates a new MCP server with all tools and prompts registered.
func NewServer(version string, opts ...Option) *Server {
	if version == "" {
		version = "dev"
	}
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "orphan",
			Version: version,
		},
		nil,
	)

	s := &Server{server: server}
	for _, opt := range opts {
		opt(s)
	}
	if s.svc == nil {
		s.svc = analysis.New()
	}
	s.registerTools()
	s.registerPrompts()
	return s
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "find_obsolete_files",
		Description: describeFindObsoleteFiles(),
	}, s.handleFindObsoleteFiles)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_empty_dirs",
		Description: describeListEmptyDirs(),
	}, s.handleListEmptyDirs)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "dependency_graph",
		Description: describeDependencyGraph(),
	}, s.handleDependencyGraph)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "resolve_import",
		Description: describeResolveImport(),
	}, s.handleResolveImport)
}
