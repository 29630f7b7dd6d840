// Package analyzer defines what the worker pool and the CLI expect from a
// file analyzer, and how they share progress.
package analyzer

import "context"

// FileAnalyzer scores a batch of files. Implementations return results in
// the order of files and treat a cancelled ctx as fatal for the batch.
type FileAnalyzer[T any] interface {
	Analyze(ctx context.Context, files []string) (T, error)

	// Close flushes anything the analyzer buffered, such as its logger.
	Close()
}
