// Package fileproc provides concurrent file processing utilities.
package fileproc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sort"
	"sync"

	"github.com/panbanda/cyclo/pkg/analyzer"
	"github.com/panbanda/cyclo/pkg/parser"
	"github.com/sourcegraph/conc/pool"
)

// ErrFileTooLarge is returned for files above the configured size limit.
var ErrFileTooLarge = errors.New("file exceeds size limit")

// ProcessingError represents an error that occurred while processing a file.
type ProcessingError struct {
	Index int
	Path  string
	Err   error
}

func (e ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e ProcessingError) Unwrap() error {
	return e.Err
}

// ProcessingErrors collects multiple file processing errors.
type ProcessingErrors struct {
	Errors []ProcessingError
	mu     sync.Mutex
}

func (e *ProcessingErrors) add(index int, path string, err error) {
	e.mu.Lock()
	e.Errors = append(e.Errors, ProcessingError{Index: index, Path: path, Err: err})
	e.mu.Unlock()
}

// HasErrors returns true if any errors were collected.
func (e *ProcessingErrors) HasErrors() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Errors) > 0
}

// Error implements the error interface.
func (e *ProcessingErrors) Error() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d files failed to process (first: %v)", len(e.Errors), e.Errors[0])
}

// Unwrap returns nil (ProcessingErrors doesn't wrap a single error).
func (e *ProcessingErrors) Unwrap() error {
	return nil
}

// ByIndex returns the collected errors keyed by input position.
func (e *ProcessingErrors) ByIndex() map[int]ProcessingError {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[int]ProcessingError, len(e.Errors))
	for _, pe := range e.Errors {
		out[pe.Index] = pe
	}
	return out
}

func (e *ProcessingErrors) sort() {
	e.mu.Lock()
	sort.SliceStable(e.Errors, func(i, j int) bool { return e.Errors[i].Index < e.Errors[j].Index })
	e.mu.Unlock()
}

// DefaultWorkerMultiplier is the multiplier applied to NumCPU for worker count.
// 2x is optimal for mixed I/O and CGO workloads.
const DefaultWorkerMultiplier = 2

// Options configures a parallel run.
type Options struct {
	// Workers caps concurrent goroutines. Zero means 2x NumCPU.
	Workers int

	// MaxFileSize skips files larger than this many bytes. Zero disables the check.
	MaxFileSize int64
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.NumCPU() * DefaultWorkerMultiplier
}

// processFile runs fn on one file with a parser borrowed from parsers.
func processFile[T any](ctx context.Context, path string, opts Options, parsers chan *parser.Parser, fn func(*parser.Parser, string) (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	if opts.MaxFileSize > 0 {
		info, err := os.Stat(path)
		if err != nil {
			return zero, err
		}
		if info.Size() > opts.MaxFileSize {
			return zero, fmt.Errorf("%w: %d > %d bytes", ErrFileTooLarge, info.Size(), opts.MaxFileSize)
		}
	}

	psr := <-parsers
	defer func() { parsers <- psr }()
	return fn(psr, path)
}

// MapFilesIndexed processes files in parallel, giving fn a parser borrowed from
// a per-worker pool. Each result is written to the slot matching its input index,
// so the output order equals the input order regardless of scheduling.
//
// Per-file errors never stop the run. Files not started before ctx is
// cancelled are reported with the context error. Progress is reported to the
// analyzer.Tracker carried by ctx, if any.
func MapFilesIndexed[T any](ctx context.Context, files []string, opts Options, fn func(*parser.Parser, string) (T, error)) ([]T, *ProcessingErrors) {
	if len(files) == 0 {
		return nil, nil
	}

	tracker := analyzer.TrackerFromContext(ctx)
	results := make([]T, len(files))
	errs := &ProcessingErrors{}

	workers := min(opts.workers(), len(files))
	parsers := make(chan *parser.Parser, workers)
	for range workers {
		parsers <- parser.New()
	}

	p := pool.New().WithMaxGoroutines(workers)
	for i, path := range files {
		p.Go(func() {
			result, err := processFile(ctx, path, opts, parsers, fn)
			if tracker != nil {
				tracker.Finish(path, err)
			}
			if err != nil {
				errs.add(i, path, err)
				return
			}
			results[i] = result
		})
	}
	p.Wait()

	close(parsers)
	for psr := range parsers {
		psr.Close()
	}

	if !errs.HasErrors() {
		return results, nil
	}
	errs.sort()
	return results, errs
}
