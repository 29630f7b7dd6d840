package mcpserver

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/panbanda/cyclo/pkg/config"
)

const (
	manifestSchema = "https://static.modelcontextprotocol.io/schemas/2025-10-17/server.schema.json"
	serverName     = "io.github.panbanda/cyclo"
	repositoryURL  = "https://github.com/panbanda/cyclo"
	imageName      = "ghcr.io/panbanda/cyclo"
)

// Manifest is the MCP registry entry (server.json) for cyclo.
type Manifest struct {
	Schema      string      `json:"$schema"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Version     string      `json:"version"`
	Repository  *Repository `json:"repository,omitempty"`
	Packages    []Package   `json:"packages,omitempty"`
}

// Repository points at the source of the server.
type Repository struct {
	URL    string `json:"url"`
	Source string `json:"source"`
}

// Package describes one way to run the server.
type Package struct {
	RegistryType         string                `json:"registryType"`
	Identifier           string                `json:"identifier"`
	PackageArguments     []Argument            `json:"packageArguments,omitempty"`
	EnvironmentVariables []EnvironmentVariable `json:"environmentVariables,omitempty"`
	Transport            Transport             `json:"transport"`
}

// Argument is a command-line argument passed to the package.
type Argument struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
}

// EnvironmentVariable documents a setting read from the environment.
type EnvironmentVariable struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Default     string `json:"default,omitempty"`
	IsRequired  bool   `json:"isRequired"`
}

// Transport is how clients talk to the server.
type Transport struct {
	Type string `json:"type"`
}

// environment lists the CYCLO_* settings that change tool defaults.
func environment() []EnvironmentVariable {
	d := config.DefaultConfig()
	return []EnvironmentVariable{
		{
			Name:        "CYCLO_CONFIG",
			Description: "Path to a cyclo config file (TOML, YAML, or JSON)",
		},
		{
			Name:        config.EnvPrefix + "THRESHOLD",
			Description: "Score above which a function is flagged",
			Default:     strconv.Itoa(d.Threshold),
		},
		{
			Name:        config.EnvPrefix + "LANGUAGES",
			Description: "Comma-separated languages to analyze",
			Default:     strings.Join(d.Languages, ","),
		},
		{
			Name:        config.EnvPrefix + "EXCLUDE__DIRS",
			Description: "Comma-separated directory names to skip",
			Default:     strings.Join(d.Exclude.Dirs, ","),
		},
		{
			Name:        config.EnvPrefix + "WORKERS",
			Description: "Files analyzed concurrently (0 = 2x CPU count)",
			Default:     strconv.Itoa(d.Workers),
		},
	}
}

// GenerateManifest renders the registry entry for version as indented JSON.
func GenerateManifest(version string) ([]byte, error) {
	if version == "" {
		version = "0.0.0"
	}

	manifest := Manifest{
		Schema:      manifestSchema,
		Name:        serverName,
		Description: "Cyclomatic complexity scoring for Python and other tree-sitter languages",
		Version:     version,
		Repository:  &Repository{URL: repositoryURL, Source: "github"},
		Packages: []Package{{
			RegistryType:         "oci",
			Identifier:           imageName + ":" + version,
			PackageArguments:     []Argument{{Type: "positional", Value: "mcp"}},
			EnvironmentVariables: environment(),
			Transport:            Transport{Type: "stdio"},
		}},
	}

	return json.MarshalIndent(manifest, "", "  ")
}
