package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/panbanda/cyclo/internal/output"
	"github.com/panbanda/cyclo/internal/progress"
	"github.com/panbanda/cyclo/pkg/analyzer"
	"github.com/panbanda/cyclo/pkg/analyzer/complexity"
	"github.com/panbanda/cyclo/pkg/config"
	"github.com/panbanda/cyclo/pkg/scanner"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func runAnalyzeCmd(c *cli.Context) error {
	switch {
	case c.NArg() == 0:
		return cli.Exit("missing <path> argument", exitUsage)
	case c.NArg() > 1:
		return cli.Exit(fmt.Sprintf("expected one path, got %d: %s",
			c.NArg(), strings.Join(c.Args().Slice(), " ")), exitUsage)
	}
	root := c.Args().First()

	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}
	format, err := output.ParseFormat(cfg.Output)
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}
	langs, err := complexity.ParseLanguages(cfg.Languages)
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}

	if c.Bool("no-color") {
		color.NoColor = true
	}

	logger, err := newLogger(c.Bool("verbose"))
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}

	scan := scanner.NewScanner(cfg)
	var spinner *progress.Bar
	if c.Bool("progress") {
		spinner = progress.NewSpinner(c.App.ErrWriter, "Discovering files...")
		scan.OnFile(func(string) { spinner.Tick() })
	}
	files, err := scan.Scan(root)
	if spinner != nil {
		spinner.Done(nil)
	}
	if err != nil {
		return err
	}
	logger.Debug("discovered files", zap.String("root", root), zap.Int("files", len(files)))
	groups, order := scanner.GroupByLanguage(files)
	for _, lang := range order {
		logger.Debug("files by language", zap.String("language", string(lang)), zap.Int("files", len(groups[lang])))
	}
	if len(files) == 0 {
		color.New(color.FgYellow).Fprintln(c.App.ErrWriter, "No source files found")
	}

	ctx := c.Context
	var bar *progress.Bar
	if c.Bool("progress") && len(files) > 0 {
		bar = progress.NewBar(c.App.ErrWriter, "Analyzing complexity...", len(files))
		ctx = analyzer.WithTracker(ctx, analyzer.NewTracker(len(files), bar.Callback()))
	}

	cxAnalyzer := complexity.New(
		complexity.WithLogger(logger),
		complexity.WithLanguages(langs...),
		complexity.WithWorkers(cfg.Workers),
		complexity.WithMaxFileSize(cfg.MaxFileSize),
	)
	defer cxAnalyzer.Close()

	analysis, err := cxAnalyzer.Analyze(ctx, files)
	if bar != nil {
		bar.Done(err)
	}
	if err != nil {
		return fmt.Errorf("analysis aborted: %w", err)
	}

	report := complexity.NewReport(analysis, cfg.Threshold, cfg.Summary)
	colored := !color.NoColor
	return output.NewFormatter(format, c.App.Writer, colored).Output(report)
}

// loadConfig layers the config file (--config, CYCLO_CONFIG or the first
// file found by config.Find), CYCLO_* variables and explicitly set flags.
func loadConfig(c *cli.Context) (*config.Config, error) {
	path := c.String("config")
	if path == "" {
		path = config.Find()
	}

	cfg, err := config.Load(path, flagOverrides(c))
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// flagOverrides returns the config keys of flags given on the command line.
// Flag defaults never override the file or the environment.
func flagOverrides(c *cli.Context) map[string]any {
	overrides := make(map[string]any)
	if c.IsSet("threshold") {
		overrides["threshold"] = c.Int("threshold")
	}
	if c.IsSet("output") {
		overrides["output"] = c.String("output")
	}
	if c.IsSet("summary") {
		overrides["summary"] = c.Bool("summary")
	}
	if c.IsSet("languages") {
		overrides["languages"] = c.StringSlice("languages")
	}
	if c.IsSet("workers") {
		overrides["workers"] = c.Int("workers")
	}
	if c.IsSet("max-file-size") {
		overrides["max_file_size"] = c.Int64("max-file-size")
	}
	return overrides
}

// newLogger builds a console logger on stderr: debug with --verbose,
// warnings and errors otherwise.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true
	return cfg.Build()
}
