package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variables read by Load.
// A double underscore separates sections: CYCLO_EXCLUDE__DIRS=a,b.
const EnvPrefix = "CYCLO_"

// ErrInvalid is wrapped by every error returned from Validate.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all configuration options for cyclo.
type Config struct {
	// Threshold is the score above which a function is flagged.
	Threshold int `koanf:"threshold"`

	// Output is the report format: table or json.
	Output string `koanf:"output"`

	// Summary adds the corpus summary block to the report.
	Summary bool `koanf:"summary"`

	// Languages lists the languages that are analyzed.
	Languages []string `koanf:"languages"`

	// Workers caps concurrent file analysis (0 = 2x NumCPU).
	Workers int `koanf:"workers"`

	// MaxFileSize skips files larger than this many bytes (0 = no limit).
	MaxFileSize int64 `koanf:"max_file_size"`

	// File exclusion rules
	Exclude ExcludeConfig `koanf:"exclude"`
}

// ExcludeConfig defines file exclusion rules.
type ExcludeConfig struct {
	// Dirs are directory names skipped wherever they appear.
	Dirs []string `koanf:"dirs"`

	// Patterns use gitignore syntax, relative to the scanned root.
	Patterns []string `koanf:"patterns"`

	// Gitignore also honours .gitignore files of the enclosing repository.
	Gitignore bool `koanf:"gitignore"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Threshold: 10,
		Output:    "table",
		Languages: []string{"python"},
		Exclude: ExcludeConfig{
			Dirs: []string{
				"__pycache__",
				"venv",
			},
		},
	}
}

// Load builds a configuration from the defaults, then the file at path (if
// path is not empty), then CYCLO_* environment variables, then overrides.
// Override keys use koanf's dotted form, e.g. "exclude.dirs".
func Load(path string, overrides map[string]any) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaultValues(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
			return nil, fmt.Errorf("loading config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: transformEnv,
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
			return nil, fmt.Errorf("applying overrides: %w", err)
		}
	}

	// Decode into a zero value: decoding over populated slices would keep
	// stale default elements.
	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	return cfg, nil
}

// defaultValues flattens DefaultConfig into koanf keys.
func defaultValues() map[string]any {
	d := DefaultConfig()
	return map[string]any{
		"threshold":         d.Threshold,
		"output":            d.Output,
		"summary":           d.Summary,
		"languages":         d.Languages,
		"workers":           d.Workers,
		"max_file_size":     d.MaxFileSize,
		"exclude.dirs":      d.Exclude.Dirs,
		"exclude.patterns":  d.Exclude.Patterns,
		"exclude.gitignore": d.Exclude.Gitignore,
	}
}

// parserFor picks a koanf parser from the file extension, defaulting to TOML.
func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	case ".json":
		return json.Parser()
	default:
		return toml.Parser()
	}
}

// listKeys are parsed from comma-separated environment values.
var listKeys = map[string]bool{
	"languages":        true,
	"exclude.dirs":     true,
	"exclude.patterns": true,
}

// transformEnv maps CYCLO_EXCLUDE__DIRS to exclude.dirs and
// CYCLO_MAX_FILE_SIZE to max_file_size.
func transformEnv(k, v string) (string, any) {
	key := strings.ToLower(strings.TrimPrefix(k, EnvPrefix))
	key = strings.ReplaceAll(key, "__", ".")
	if key == "config" {
		// CYCLO_CONFIG names the file; it is not a setting.
		return "", nil
	}
	if listKeys[key] {
		return key, splitList(v)
	}
	return key, v
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// configNames are the file names searched by Find.
var configNames = []string{
	"cyclo.toml",
	"cyclo.yaml",
	"cyclo.yml",
	"cyclo.json",
	".cyclo.toml",
	".cyclo.yaml",
	".cyclo.yml",
	".cyclo.json",
}

// Find returns the first config file found in the current directory or
// .cyclo, or an empty string.
func Find() string {
	for _, dir := range []string{".", ".cyclo"} {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path
			}
		}
	}
	return ""
}

// Validate checks value ranges and the output format.
func (c *Config) Validate() error {
	if c.Threshold < 0 {
		return fmt.Errorf("%w: threshold must be a non-negative integer, got %d", ErrInvalid, c.Threshold)
	}
	switch c.Output {
	case "table", "json":
	default:
		return fmt.Errorf("%w: output must be table or json, got %q", ErrInvalid, c.Output)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalid, c.Workers)
	}
	if c.MaxFileSize < 0 {
		return fmt.Errorf("%w: max_file_size must not be negative, got %d", ErrInvalid, c.MaxFileSize)
	}
	if len(c.Languages) == 0 {
		return fmt.Errorf("%w: at least one language must be enabled", ErrInvalid)
	}
	return nil
}
