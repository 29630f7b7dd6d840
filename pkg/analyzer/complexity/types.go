package complexity

import (
	"fmt"

	"github.com/panbanda/cyclo/pkg/ast"
)

// FunctionUnit is one located function or method definition.
// Root borrows from the parsed tree and must not outlive it.
type FunctionUnit struct {
	Name          string
	QualifiedName string
	Path          string
	Language      ast.Language
	StartLine     int
	EndLine       int
	Root          ast.Node
}

// Decisions counts the decision points found in one function, by construct.
type Decisions struct {
	If      int `json:"if,omitempty"`
	ElseIf  int `json:"elif,omitempty"`
	For     int `json:"for,omitempty"`
	While   int `json:"while,omitempty"`
	Try     int `json:"try,omitempty"`
	Handler int `json:"except,omitempty"`
	With    int `json:"with,omitempty"`
	BoolOp  int `json:"bool_op,omitempty"`
}

func (d *Decisions) add(c Construct) {
	switch c {
	case ConstructIf:
		d.If++
	case ConstructElseIf:
		d.ElseIf++
	case ConstructFor:
		d.For++
	case ConstructWhile:
		d.While++
	case ConstructTry:
		d.Try++
	case ConstructHandler:
		d.Handler++
	case ConstructWith:
		d.With++
	case ConstructBoolOp:
		d.BoolOp++
	}
}

// Total returns the number of decision points.
func (d Decisions) Total() int {
	return d.If + d.ElseIf + d.For + d.While + d.Try + d.Handler + d.With + d.BoolOp
}

// FunctionResult is the score of one function unit.
type FunctionResult struct {
	Name          string    `json:"name"`
	QualifiedName string    `json:"function"`
	File          string    `json:"file"`
	StartLine     int       `json:"line"`
	EndLine       int       `json:"end_line"`
	Score         int       `json:"score"`
	Decisions     Decisions `json:"decisions"`
}

// FileReport holds the scored functions of one file in source order.
type FileReport struct {
	Path      string           `json:"path"`
	Language  ast.Language     `json:"language"`
	Functions []FunctionResult `json:"functions"`
}

// Flagged returns the functions scoring strictly above threshold, in source order.
func (r *FileReport) Flagged(threshold int) []FunctionResult {
	var out []FunctionResult
	for _, fn := range r.Functions {
		if fn.Score > threshold {
			out = append(out, fn)
		}
	}
	return out
}

// FileError records a file that could not be analyzed.
type FileError struct {
	Path   string `json:"file"`
	Reason string `json:"reason"`
	Err    error  `json:"-"`
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Analysis is the per-file outcome of a run, in discovery order.
type Analysis struct {
	Files  []FileReport `json:"files"`
	Errors []FileError  `json:"errors"`
}

// FlaggedFunction is a function whose score exceeds the threshold.
type FlaggedFunction struct {
	File     string `json:"file"`
	Function string `json:"function"`
	Line     int    `json:"line"`
	Score    int    `json:"score"`
}

// Summary aggregates scores across the corpus.
// Mean, Max and the percentiles are nil when no functions were scored.
type Summary struct {
	Count     int      `json:"count"`
	Mean      *float64 `json:"mean,omitempty"`
	Max       *int     `json:"max,omitempty"`
	P50       *float64 `json:"p50,omitempty"`
	P90       *float64 `json:"p90,omitempty"`
	Threshold int      `json:"threshold"`

	FlaggedCount int `json:"flagged"`
	AtOrBelow    int `json:"below_or_at_threshold"`

	Flagged []FlaggedFunction `json:"flagged_functions"`
	Errors  []FileError       `json:"errors"`
}

// DefaultThreshold is the score above which a function is flagged.
const DefaultThreshold = 10
