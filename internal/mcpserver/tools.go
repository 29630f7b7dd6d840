package mcpserver

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/panbanda/cyclo/pkg/analyzer/complexity"
	"github.com/panbanda/cyclo/pkg/config"
	"github.com/panbanda/cyclo/pkg/scanner"
	toon "github.com/toon-format/toon-go"
	"go.uber.org/zap"
)

// ComplexityInput is the input of the analyze_complexity tool.
type ComplexityInput struct {
	Paths     []string `json:"paths,omitempty" jsonschema:"Files or directories to analyze. Defaults to the current directory if empty."`
	Format    string   `json:"format,omitempty" jsonschema:"Output format: toon (default) or json."`
	Threshold *int     `json:"threshold,omitempty" jsonschema:"Score above which a function is flagged. Default 10."`
	Languages []string `json:"languages,omitempty" jsonschema:"Languages to analyze, e.g. python, go, rust. Default python."`
}

// Output formats accepted by the tools.
const (
	formatTOON = "toon"
	formatJSON = "json"
)

func getPaths(paths []string) []string {
	if len(paths) == 0 {
		return []string{"."}
	}
	return paths
}

func getFormat(format string) string {
	if strings.EqualFold(format, formatJSON) {
		return formatJSON
	}
	return formatTOON
}

func formatOutput(data any, format string) (string, error) {
	switch format {
	case formatJSON:
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return "", err
		}
		return string(out), nil
	default:
		out, err := toon.Marshal(data, toon.WithIndent(2))
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
}

func toolResult(data any, format string) (*mcp.CallToolResult, any, error) {
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

// scanPaths discovers files under every path, dropping duplicates while
// keeping first-seen order.
func scanPaths(cfg *config.Config, paths []string) ([]string, error) {
	s := scanner.NewScanner(cfg)
	seen := make(map[string]bool)
	var files []string
	for _, p := range paths {
		found, err := s.Scan(p)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			if !seen[f] {
				seen[f] = true
				files = append(files, f)
			}
		}
	}
	return files, nil
}

func (s *Server) handleAnalyzeComplexity(ctx context.Context, req *mcp.CallToolRequest, input ComplexityInput) (*mcp.CallToolResult, any, error) {
	cfg := *s.config
	if len(input.Languages) > 0 {
		cfg.Languages = input.Languages
	}
	threshold := cfg.Threshold
	if input.Threshold != nil {
		if *input.Threshold < 0 {
			return toolError("threshold must be a non-negative integer")
		}
		threshold = *input.Threshold
	}

	langs, err := complexity.ParseLanguages(cfg.Languages)
	if err != nil {
		return toolError(err.Error())
	}

	files, err := scanPaths(&cfg, getPaths(input.Paths))
	if err != nil {
		return toolError(err.Error())
	}
	if len(files) == 0 {
		return toolError("no source files found")
	}
	s.logger.Debug("analyze_complexity", zap.Strings("paths", input.Paths), zap.Int("files", len(files)))

	a := complexity.New(
		complexity.WithLogger(s.logger),
		complexity.WithLanguages(langs...),
		complexity.WithWorkers(cfg.Workers),
		complexity.WithMaxFileSize(cfg.MaxFileSize),
	)
	defer a.Close()

	analysis, err := a.Analyze(ctx, files)
	if err != nil {
		return toolError(err.Error())
	}

	return toolResult(complexity.NewReport(analysis, threshold, true), getFormat(input.Format))
}
