package complexity

import (
	"fmt"
	"io"
	"strconv"

	"github.com/panbanda/cyclo/internal/output"
)

// Record is one function row of a report.
type Record struct {
	File     string `json:"file"`
	Function string `json:"function"`
	Line     int    `json:"line"`
	EndLine  int    `json:"end_line"`
	Score    int    `json:"score"`
	Flagged  bool   `json:"flagged"`
}

// Report is the renderable result of a run. Summary is present only when
// requested; Errors carries failed files when there is no summary to hold them.
type Report struct {
	Functions []Record    `json:"functions"`
	Summary   *Summary    `json:"summary,omitempty"`
	Errors    []FileError `json:"errors,omitempty"`

	threshold int
}

var _ output.Renderable = (*Report)(nil)

// NewReport flattens an analysis into function records in discovery order
// and, when withSummary is set, attaches the corpus summary.
func NewReport(analysis *Analysis, threshold int, withSummary bool) *Report {
	r := &Report{Functions: make([]Record, 0), threshold: threshold}
	for _, file := range analysis.Files {
		for _, fn := range file.Functions {
			r.Functions = append(r.Functions, Record{
				File:     file.Path,
				Function: fn.QualifiedName,
				Line:     fn.StartLine,
				EndLine:  fn.EndLine,
				Score:    fn.Score,
				Flagged:  fn.Score > threshold,
			})
		}
	}

	if withSummary {
		r.Summary = Summarize(analysis, threshold)
	} else if len(analysis.Errors) > 0 {
		r.Errors = append([]FileError{}, analysis.Errors...)
	}
	return r
}

// RenderData returns the report itself for JSON serialization.
func (r *Report) RenderData() any {
	return r
}

// RenderText writes the function table, then the summary and error blocks.
func (r *Report) RenderText(w io.Writer, colored bool) error {
	rows := make([][]string, 0, len(r.Functions))
	for _, rec := range r.Functions {
		score := strconv.Itoa(rec.Score)
		if colored {
			score = output.ScoreColor(rec.Score, r.threshold, score)
		}
		marker := ""
		if rec.Flagged {
			marker = "!"
		}
		rows = append(rows, []string{rec.File, rec.Function, strconv.Itoa(rec.Line), score, marker})
	}

	table := output.NewTable("", []string{"File", "Function", "Line", "Score", "Flagged"}, rows).AlignRight(2, 3)
	sections := []output.Renderable{table}
	if r.Summary != nil {
		sections = append(sections, summarySection(r.Summary))
	}
	errs := r.Errors
	if r.Summary != nil {
		errs = r.Summary.Errors
	}
	if len(errs) > 0 {
		sections = append(sections, errorSection(errs))
	}

	report := &output.Report{Parts: sections}
	return report.RenderText(w, colored)
}

func summarySection(s *Summary) *output.Section {
	lines := []output.KV{
		{Key: "Total functions", Value: strconv.Itoa(s.Count)},
		{Key: "Mean complexity", Value: formatFloat(s.Mean)},
		{Key: "Max complexity", Value: formatInt(s.Max)},
		{Key: "Median (p50)", Value: formatFloat(s.P50)},
		{Key: "p90", Value: formatFloat(s.P90)},
		{Key: fmt.Sprintf("Above threshold (%d)", s.Threshold), Value: strconv.Itoa(s.FlaggedCount)},
		{Key: "At or below threshold", Value: strconv.Itoa(s.AtOrBelow)},
	}
	if len(s.Errors) > 0 {
		lines = append(lines, output.KV{Key: "Files with errors", Value: strconv.Itoa(len(s.Errors))})
	}
	return &output.Section{Title: "Summary", Lines: lines}
}

func errorSection(errs []FileError) *output.Section {
	lines := make([]output.KV, len(errs))
	for i, fe := range errs {
		lines[i] = output.KV{Key: fe.Path, Value: fe.Reason}
	}
	return &output.Section{Title: "Errors", Lines: lines}
}

func formatFloat(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

func formatInt(v *int) string {
	if v == nil {
		return "n/a"
	}
	return strconv.Itoa(*v)
}
