package main

import (
	"fmt"

	"github.com/panbanda/orphan/internal/mcpserver"
	"github.com/urfave/cli/v2"
)

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Start MCP (Model Context Protocol) server for LLM tool integration",
		Description: `Starts an MCP server over stdio transport that exposes orphan's analysis
as tools an assistant can call.

To use with Claude Desktop, add to your config:
  {
    "mcpServers": {
      "orphan": {
        "command": "orphan",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - find_obsolete_files   Unreachable source files with reasons, plus empty directories
  - list_empty_dirs       Directories without files
  - dependency_graph      Import graph summary, PageRank ranking, cycles, Mermaid
  - resolve_import        Resolve one import specifier the way the analysis does`,
		Action: runMCPCmd,
		Subcommands: []*cli.Command{
			{
				Name:  "manifest",
				Usage: "Print the MCP registry server.json",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "image",
						Usage: "Container image name",
					},
				},
				Action: runMCPManifestCmd,
			},
		},
	}
}

func runMCPCmd(c *cli.Context) error {
	svc, err := newService(c)
	if err != nil {
		return err
	}
	server := mcpserver.NewServer(version, mcpserver.WithService(svc))
	return server.Run(c.Context)
}

func runMCPManifestCmd(c *cli.Context) error {
	data, err := mcpserver.GenerateManifest(version, c.String("image"))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout(c), string(data))
	return err
}
