package analyzer

import (
	"context"
	"sync/atomic"
)

// ProgressFunc is called after each file with the number of finished
// files, the batch size and the file that just finished.
type ProgressFunc func(done, total int, path string)

// Tracker counts finished and failed files of one batch. It is safe for
// concurrent use by the workers of the batch.
type Tracker struct {
	total    int
	done     atomic.Int64
	failed   atomic.Int64
	callback ProgressFunc
}

// NewTracker creates a tracker for a batch of total files. callback may be nil.
func NewTracker(total int, callback ProgressFunc) *Tracker {
	return &Tracker{total: total, callback: callback}
}

// Finish records that path finished, with err set if it failed.
func (t *Tracker) Finish(path string, err error) {
	if err != nil {
		t.failed.Add(1)
	}
	done := int(t.done.Add(1))
	if t.callback != nil {
		t.callback(done, t.total, path)
	}
}

// Done returns how many files finished, failed ones included.
func (t *Tracker) Done() int {
	return int(t.done.Load())
}

// Failed returns how many finished files reported an error.
func (t *Tracker) Failed() int {
	return int(t.failed.Load())
}

// Total returns the batch size.
func (t *Tracker) Total() int {
	return t.total
}

// Remaining returns how many files have not finished yet.
func (t *Tracker) Remaining() int {
	return max(t.total-t.Done(), 0)
}

type trackerKey struct{}

// WithTracker returns a context carrying t for the worker pool.
func WithTracker(ctx context.Context, t *Tracker) context.Context {
	return context.WithValue(ctx, trackerKey{}, t)
}

// TrackerFromContext returns the tracker carried by ctx, or nil.
func TrackerFromContext(ctx context.Context) *Tracker {
	t, _ := ctx.Value(trackerKey{}).(*Tracker)
	return t
}
