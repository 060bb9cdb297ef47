package mcpserver

import (
	"encoding/json"
)

const (
	manifestSchema = "https://static.modelcontextprotocol.io/schemas/2025-10-17/server.schema.json"
	defaultImage   = "ghcr.io/panbanda/orphan"
)

// Manifest is the MCP registry server.json document.
type Manifest struct {
	Schema      string      `json:"$schema"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Version     string      `json:"version"`
	Repository  *Repository `json:"repository,omitempty"`
	Packages    []Package   `json:"packages,omitempty"`
}

// Repository points at the source repository.
type Repository struct {
	URL    string `json:"url"`
	Source string `json:"source"`
}

// Package tells a registry client how to launch the server.
type Package struct {
	RegistryType     string     `json:"registryType"`
	Identifier       string     `json:"identifier"`
	PackageArguments []Argument `json:"packageArguments,omitempty"`
	Transport        Transport  `json:"transport"`
}

// Argument is a command-line argument passed to the package.
type Argument struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
}

// Transport names the communication channel.
type Transport struct {
	Type string `json:"type"`
}

// GenerateManifest renders server.json for the given version. image
// overrides the container image name when non-empty.
func GenerateManifest(version, image string) ([]byte, error) {
	if version == "" {
		version = "0.0.0"
	}
	if image == "" {
		image = defaultImage
	}

	return json.MarshalIndent(Manifest{
		Schema:      manifestSchema,
		Name:        "io.github.panbanda/orphan",
		Description: "Finds unreachable source files and empty directories in Next.js and other web projects",
		Version:     version,
		Repository:  &Repository{URL: "https://github.com/panbanda/orphan", Source: "github"},
		Packages: []Package{{
			RegistryType:     "oci",
			Identifier:       image + ":" + version,
			PackageArguments: []Argument{{Type: "positional", Value: "mcp"}},
			Transport:        Transport{Type: "stdio"},
		}},
	}, "", "  ")
}
