package mcpserver

import (
	"bytes"
	"context"
	"embed"
	"path"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed prompts/*.md
var promptFiles embed.FS

// promptSpec is a prompt file: YAML frontmatter followed by a markdown body
// that may reference arguments as {{name}}.
type promptSpec struct {
	Name        string        `yaml:"-"`
	Description string        `yaml:"description"`
	Arguments   []promptParam `yaml:"arguments"`
	Body        string        `yaml:"-"`
}

type promptParam struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Required    bool   `yaml:"required"`
	Default     string `yaml:"default"`
}

// registerPrompts adds one prompt per embedded markdown file, named after
// the file.
func (s *Server) registerPrompts() {
	entries, err := promptFiles.ReadDir("prompts")
	if err != nil {
		s.logger.Warn("reading embedded prompts", zap.Error(err))
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".md")
		content, err := promptFiles.ReadFile(path.Join("prompts", entry.Name()))
		if err != nil {
			s.logger.Warn("reading prompt", zap.String("prompt", name), zap.Error(err))
			continue
		}

		spec := parsePrompt(name, content)
		s.withConfigDefaults(spec)
		s.server.AddPrompt(spec.prompt(), spec.handler())
	}
}

// withConfigDefaults fills the threshold argument from the server config
// when the prompt file leaves its default empty.
func (s *Server) withConfigDefaults(spec *promptSpec) {
	for i := range spec.Arguments {
		if spec.Arguments[i].Name == "threshold" && spec.Arguments[i].Default == "" {
			spec.Arguments[i].Default = strconv.Itoa(s.config.Threshold)
		}
	}
}

// parsePrompt splits YAML frontmatter from the body. Content without valid
// frontmatter becomes the body of a prompt with no description.
func parsePrompt(name string, content []byte) *promptSpec {
	spec := &promptSpec{Name: name, Body: string(content)}
	if !bytes.HasPrefix(content, []byte("---\n")) {
		return spec
	}

	rest := content[4:]
	end := bytes.Index(rest, []byte("\n---\n"))
	if end == -1 {
		return spec
	}

	var fm promptSpec
	if err := yaml.Unmarshal(rest[:end], &fm); err != nil {
		return spec
	}
	fm.Name = name
	fm.Body = strings.TrimPrefix(string(rest[end+5:]), "\n")
	return &fm
}

func (p *promptSpec) prompt() *mcp.Prompt {
	args := make([]*mcp.PromptArgument, len(p.Arguments))
	for i, a := range p.Arguments {
		args[i] = &mcp.PromptArgument{
			Name:        a.Name,
			Description: a.Description,
			Required:    a.Required,
		}
	}
	return &mcp.Prompt{
		Name:        p.Name,
		Description: p.Description,
		Arguments:   args,
	}
}

// render substitutes {{name}} placeholders with the given values, falling
// back to each argument's default.
func (p *promptSpec) render(values map[string]string) string {
	pairs := make([]string, 0, 2*len(p.Arguments))
	for _, a := range p.Arguments {
		v, ok := values[a.Name]
		if !ok || v == "" {
			v = a.Default
		}
		pairs = append(pairs, "{{"+a.Name+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(p.Body)
}

func (p *promptSpec) handler() mcp.PromptHandler {
	return func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		var values map[string]string
		if req != nil && req.Params != nil {
			values = req.Params.Arguments
		}
		return &mcp.GetPromptResult{
			Description: p.Description,
			Messages: []*mcp.PromptMessage{
				{
					Role:    "user",
					Content: &mcp.TextContent{Text: p.render(values)},
				},
			},
		}, nil
	}
}
