package main

import (
	"fmt"

	"github.com/panbanda/cyclo/internal/mcpserver"
	"github.com/urfave/cli/v2"
)

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Start MCP (Model Context Protocol) server for LLM tool integration",
		Description: `Starts an MCP server over stdio transport that exposes cyclo's
complexity analysis as a tool that LLMs can invoke. Tool arguments that are
left out fall back to the loaded configuration.

To use with Claude Desktop, add to your config:
  {
    "mcpServers": {
      "cyclo": {
        "command": "cyclo",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - analyze_complexity    Per-function cyclomatic complexity and summary`,
		Action: runMCPCmd,
		Subcommands: []*cli.Command{
			{
				Name:   "manifest",
				Usage:  "Print the MCP registry manifest",
				Action: runManifestCmd,
			},
		},
	}
}

func runMCPCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}
	logger, err := newLogger(c.Bool("verbose"))
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	server := mcpserver.NewServer(version, cfg, logger)
	return server.Run(c.Context)
}

func runManifestCmd(c *cli.Context) error {
	data, err := mcpserver.GenerateManifest(version)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, string(data))
	return err
}
