package complexity

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/panbanda/cyclo/internal/fileproc"
	"github.com/panbanda/cyclo/pkg/analyzer"
	"github.com/panbanda/cyclo/pkg/ast"
	"github.com/panbanda/cyclo/pkg/ast/treesitter"
	"github.com/panbanda/cyclo/pkg/parser"
	"go.uber.org/zap"
)

// Ensure Analyzer implements analyzer.FileAnalyzer.
var _ analyzer.FileAnalyzer[*Analysis] = (*Analyzer)(nil)

// Analyzer scores every function in a set of files.
type Analyzer struct {
	logger      *zap.Logger
	workers     int
	maxFileSize int64
	languages   []ast.Language
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger used for per-file diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithWorkers caps the number of files analyzed concurrently (0 = 2x NumCPU).
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		a.workers = n
	}
}

// WithMaxFileSize sets the maximum file size to analyze (0 = no limit).
func WithMaxFileSize(maxSize int64) Option {
	return func(a *Analyzer) {
		a.maxFileSize = maxSize
	}
}

// WithLanguages replaces the set of languages that are scored.
func WithLanguages(langs ...ast.Language) Option {
	return func(a *Analyzer) {
		if len(langs) > 0 {
			a.languages = slices.Clone(langs)
		}
	}
}

// New creates a new complexity analyzer. Only Python is enabled by default.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		logger:    zap.NewNop(),
		languages: []ast.Language{ast.LangPython},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Languages returns the enabled languages.
func (a *Analyzer) Languages() []ast.Language {
	return slices.Clone(a.languages)
}

// rules returns the rule set for lang if it is enabled.
func (a *Analyzer) rules(lang ast.Language) (*RuleSet, bool) {
	if !slices.Contains(a.languages, lang) {
		return nil, false
	}
	return RulesFor(lang)
}

// AnalyzeFile reads and scores one file from disk.
// A failure is returned as a *FileError.
func (a *Analyzer) AnalyzeFile(provider ast.Provider, path string) (FileReport, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return FileReport{}, &FileError{Path: path, Reason: fmt.Sprintf("read failed: %v", err), Err: err}
	}
	return a.AnalyzeSource(provider, path, src)
}

// AnalyzeSource scores every function in src, which was read from path.
// Unsupported languages, unparseable trees and internal failures are
// returned as a *FileError; no partial report is produced for such files.
func (a *Analyzer) AnalyzeSource(provider ast.Provider, path string, src []byte) (report FileReport, err error) {
	defer func() {
		if r := recover(); r != nil {
			report = FileReport{}
			err = &FileError{Path: path, Reason: fmt.Sprintf("internal error: %v", r)}
		}
	}()

	lang := provider.Language(path)
	rules, ok := a.rules(lang)
	if !ok {
		return FileReport{}, &FileError{Path: path, Reason: ast.ErrUnsupportedLanguage.Error(), Err: ast.ErrUnsupportedLanguage}
	}

	file, err := provider.Parse(path, src)
	if err != nil {
		return FileReport{}, &FileError{Path: path, Reason: fmt.Sprintf("parse failed: %v", err), Err: err}
	}
	defer file.Close()
	if serr := file.SyntaxError(); serr != nil {
		return FileReport{}, &FileError{Path: path, Reason: serr.Error(), Err: serr}
	}

	report = FileReport{Path: path, Language: lang, Functions: make([]FunctionResult, 0)}
	for unit := range Locate(file.Root(), rules, path) {
		d := CountDecisions(unit.Root, rules)
		report.Functions = append(report.Functions, FunctionResult{
			Name:          unit.Name,
			QualifiedName: unit.QualifiedName,
			File:          path,
			StartLine:     unit.StartLine,
			EndLine:       unit.EndLine,
			Score:         1 + d.Total(),
			Decisions:     d,
		})
	}
	return report, nil
}

// Analyze scores all files using parallel processing. Reports and errors
// keep the order of files. Progress is tracked via context using
// analyzer.WithTracker. A cancelled context aborts the whole run.
func (a *Analyzer) Analyze(ctx context.Context, files []string) (*Analysis, error) {
	opts := fileproc.Options{Workers: a.workers, MaxFileSize: a.maxFileSize}
	results, errs := fileproc.MapFilesIndexed(ctx, files, opts, func(psr *parser.Parser, path string) (FileReport, error) {
		provider := treesitter.NewWithParser(psr).WithContext(ctx)
		return a.AnalyzeFile(provider, path)
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var failed map[int]fileproc.ProcessingError
	if errs != nil {
		failed = errs.ByIndex()
	}

	analysis := &Analysis{
		Files:  make([]FileReport, 0, len(files)),
		Errors: make([]FileError, 0),
	}
	for i, report := range results {
		pe, bad := failed[i]
		if !bad {
			a.logger.Debug("analyzed file",
				zap.String("file", report.Path),
				zap.Int("functions", len(report.Functions)))
			analysis.Files = append(analysis.Files, report)
			continue
		}

		fe := toFileError(pe)
		a.logger.Warn("skipping file", zap.String("file", fe.Path), zap.String("reason", fe.Reason))
		analysis.Errors = append(analysis.Errors, fe)
	}
	return analysis, nil
}

// Close releases analyzer resources. Parsers are owned by the worker pool,
// so there is nothing to release between runs.
func (a *Analyzer) Close() {
	_ = a.logger.Sync()
}

func toFileError(pe fileproc.ProcessingError) FileError {
	var fe *FileError
	if errors.As(pe.Err, &fe) {
		return *fe
	}
	return FileError{Path: pe.Path, Reason: pe.Err.Error(), Err: pe.Err}
}
