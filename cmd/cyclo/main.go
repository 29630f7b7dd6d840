package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

// Exit codes.
const (
	exitFatal = 1
	exitUsage = 2
)

func newApp() *cli.App {
	return &cli.App{
		Name:      "cyclo",
		Usage:     "Cyclomatic complexity analyzer",
		Version:   version,
		ArgsUsage: "<path>",
		Description: `cyclo walks a file or directory, scores every function with
1 + the number of decision points it contains (if, elif, loops, try,
except handlers, with, boolean operators) and reports the results.

Nested functions are scored separately and never add to their parent.

Supports: Python (default), Go, Rust, TypeScript, JavaScript, Java, C, C++`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "threshold",
				Aliases: []string{"t"},
				Value:   10,
				Usage:   "Flag functions scoring above this value",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   "table",
				Usage:   "Output format: table, json",
			},
			&cli.BoolFlag{
				Name:    "summary",
				Aliases: []string{"s"},
				Usage:   "Append the corpus summary to the report",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{"CYCLO_CONFIG"},
			},
			&cli.StringSliceFlag{
				Name:    "languages",
				Aliases: []string{"l"},
				Usage:   "Languages to analyze (default: python)",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent files (default: 2x CPU count)",
			},
			&cli.Int64Flag{
				Name:  "max-file-size",
				Usage: "Report files larger than this many bytes as errors (0 = no limit)",
			},
			&cli.BoolFlag{
				Name:  "progress",
				Usage: "Show a progress bar on stderr",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable colored output",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable verbose logging",
			},
		},
		Action: runAnalyzeCmd,
		Commands: []*cli.Command{
			mcpCmd(),
		},
		OnUsageError: func(c *cli.Context, err error, isSubcommand bool) error {
			return cli.Exit(err.Error(), exitUsage)
		},
		// main owns printing and exit codes.
		ExitErrHandler: func(c *cli.Context, err error) {},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	app := newApp()
	err := app.RunContext(ctx, flagsFirst(app, os.Args))
	stop()

	if err != nil {
		os.Exit(reportError(os.Stderr, err))
	}
}

// flagsFirst moves root flags that follow the path in front of it, so
// `cyclo <path> --threshold 5` parses like `cyclo --threshold 5 <path>`.
// urfave/cli stops reading flags at the first positional argument.
// Arguments after "--" and subcommand invocations are left alone.
func flagsFirst(app *cli.App, args []string) []string {
	if len(args) < 2 {
		return args
	}

	commands := map[string]bool{"help": true, "h": true}
	for _, cmd := range app.Commands {
		for _, name := range cmd.Names() {
			commands[name] = true
		}
	}
	takesValue := make(map[string]bool)
	for _, f := range app.Flags {
		_, isBool := f.(*cli.BoolFlag)
		for _, name := range f.Names() {
			takesValue[name] = !isBool
		}
	}

	var flags, positional []string
	rest := args[1:]
	for i := 0; i < len(rest); i++ {
		arg := rest[i]
		switch {
		case arg == "--":
			positional = append(positional, rest[i:]...)
			i = len(rest)
		case len(arg) > 1 && strings.HasPrefix(arg, "-"):
			flags = append(flags, arg)
			name := strings.TrimLeft(arg, "-")
			if !strings.Contains(name, "=") && takesValue[name] && i+1 < len(rest) {
				i++
				flags = append(flags, rest[i])
			}
		default:
			if len(positional) == 0 && commands[arg] {
				return args
			}
			positional = append(positional, arg)
		}
	}

	out := make([]string, 0, len(args))
	out = append(out, args[0])
	out = append(out, flags...)
	return append(out, positional...)
}

// reportError prints err to w and returns the exit code it maps to.
func reportError(w io.Writer, err error) int {
	code := exitFatal
	var exitErr cli.ExitCoder
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	}
	if err.Error() != "" {
		color.New(color.FgRed).Fprintf(w, "Error: %v\n", err)
	}
	return code
}
