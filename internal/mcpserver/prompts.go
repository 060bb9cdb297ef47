package mcpserver

import (
	"bytes"
	"context"
	"embed"
	"path"
	"sort"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"gopkg.in/yaml.v3"
)

//go:embed prompts/*.md
var promptFiles embed.FS

type promptFrontmatter struct {
	Description string `yaml:"description"`
}

// promptDef is a prompt parsed from an embedded markdown file.
type promptDef struct {
	Name        string
	Description string
	Body        string
}

// loadPrompts parses every embedded prompt, sorted by name.
func loadPrompts() ([]promptDef, error) {
	entries, err := promptFiles.ReadDir("prompts")
	if err != nil {
		return nil, err
	}

	defs := make([]promptDef, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".md" {
			continue
		}
		content, err := promptFiles.ReadFile(path.Join("prompts", entry.Name()))
		if err != nil {
			return nil, err
		}
		description, body := parseFrontmatter(content)
		defs = append(defs, promptDef{
			Name:        strings.TrimSuffix(entry.Name(), ".md"),
			Description: description,
			Body:        body,
		})
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs, nil
}

func (s *Server) registerPrompts() {
	defs, err := loadPrompts()
	if err != nil {
		return
	}
	for _, def := range defs {
		s.server.AddPrompt(&mcp.Prompt{
			Name:        def.Name,
			Description: def.Description,
		}, promptHandler(def))
	}
}

// parseFrontmatter splits a leading YAML block from the prompt body. Content
// without a well-formed block is returned whole as the body.
func parseFrontmatter(content []byte) (description string, body string) {
	rest, ok := bytes.CutPrefix(content, []byte("---\n"))
	if !ok {
		return "", string(content)
	}
	header, after, ok := bytes.Cut(rest, []byte("\n---\n"))
	if !ok {
		return "", string(content)
	}

	var fm promptFrontmatter
	if err := yaml.Unmarshal(header, &fm); err != nil {
		return "", string(content)
	}
	return fm.Description, strings.TrimPrefix(string(after), "\n")
}

func promptHandler(def promptDef) mcp.PromptHandler {
	return func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		return &mcp.GetPromptResult{
			Description: def.Description,
			Messages: []*mcp.PromptMessage{
				{
					Role:    "user",
					Content: &mcp.TextContent{Text: def.Body},
				},
			},
		}, nil
	}
}
