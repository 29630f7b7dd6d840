// Package mcpserver exposes the complexity analyzer over the Model Context Protocol.
package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/panbanda/cyclo/pkg/config"
	"go.uber.org/zap"
)

// Server is a stdio MCP server offering the analyze_complexity tool and
// the embedded prompts.
type Server struct {
	server *mcp.Server
	config *config.Config
	logger *zap.Logger
}

// NewServer creates a server. cfg supplies the defaults for tool arguments
// a client leaves out; nil means config.DefaultConfig.
func NewServer(version string, cfg *config.Config, logger *zap.Logger) *Server {
	if version == "" {
		version = "dev"
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{config: cfg, logger: logger}
	s.server = mcp.NewServer(
		&mcp.Implementation{Name: "cyclo", Version: version},
		&mcp.ServerOptions{Instructions: instructions(cfg)},
	)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_complexity",
		Description: describeComplexity(),
	}, s.handleAnalyzeComplexity)
	s.registerPrompts()
	return s
}

// instructions tells clients which defaults apply to this server.
func instructions(cfg *config.Config) string {
	return fmt.Sprintf(
		"cyclo scores functions by cyclomatic complexity. Unless a call overrides them, "+
			"functions scoring above %d are flagged and these languages are analyzed: %s.",
		cfg.Threshold, strings.Join(cfg.Languages, ", "))
}

// Run serves requests over stdin/stdout until ctx is cancelled or the
// client disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("mcp server started",
		zap.Int("threshold", s.config.Threshold),
		zap.Strings("languages", s.config.Languages))
	return s.server.Run(ctx, &mcp.StdioTransport{})
}
