package complexity

import "github.com/panbanda/cyclo/pkg/stats"

// Aggregator folds file reports into a Summary in a single pass.
// It is a single-writer accumulator: feed it from one goroutine.
type Aggregator struct {
	threshold int
	count     int
	sum       int
	max       int
	scores    []int
	flagged   []FlaggedFunction
	errors    []FileError
}

// NewAggregator creates an aggregator that flags scores above threshold.
func NewAggregator(threshold int) *Aggregator {
	return &Aggregator{threshold: threshold}
}

// Add folds one file report. Reports must arrive in discovery order for the
// flagged list to follow it.
func (a *Aggregator) Add(report FileReport) {
	for _, fn := range report.Functions {
		a.count++
		a.sum += fn.Score
		if fn.Score > a.max {
			a.max = fn.Score
		}
		a.scores = append(a.scores, fn.Score)
		if fn.Score > a.threshold {
			a.flagged = append(a.flagged, FlaggedFunction{
				File:     report.Path,
				Function: fn.QualifiedName,
				Line:     fn.StartLine,
				Score:    fn.Score,
			})
		}
	}
}

// AddError records a file that failed; it never touches the numeric aggregates.
func (a *Aggregator) AddError(err FileError) {
	a.errors = append(a.errors, err)
}

// Summary returns the aggregate statistics gathered so far.
func (a *Aggregator) Summary() *Summary {
	s := &Summary{
		Count:        a.count,
		Threshold:    a.threshold,
		FlaggedCount: len(a.flagged),
		AtOrBelow:    a.count - len(a.flagged),
		Flagged:      append([]FlaggedFunction{}, a.flagged...),
		Errors:       append([]FileError{}, a.errors...),
	}
	if a.count == 0 {
		return s
	}

	mean := float64(a.sum) / float64(a.count)
	maxScore := a.max
	samples := stats.Ints(a.scores)
	p50 := stats.Quantile(samples, 0.5)
	p90 := stats.Quantile(samples, 0.9)

	s.Mean = &mean
	s.Max = &maxScore
	s.P50 = &p50
	s.P90 = &p90
	return s
}

// Summarize aggregates a whole analysis against threshold.
func Summarize(analysis *Analysis, threshold int) *Summary {
	agg := NewAggregator(threshold)
	for _, report := range analysis.Files {
		agg.Add(report)
	}
	for _, fe := range analysis.Errors {
		agg.AddError(fe)
	}
	return agg.Summary()
}
