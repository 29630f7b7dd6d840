// Package output renders reports as aligned text tables or JSON.
package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
)

// ErrUnknownFormat is returned by ParseFormat for unrecognised format names.
var ErrUnknownFormat = errors.New("unknown output format")

// Format is an output format name.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

// ParseFormat converts a string to Format. Only the exact names table and
// json are accepted.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatTable:
		return FormatTable, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w %q (want table or json)", ErrUnknownFormat, s)
	}
}

// Renderable is data that can render itself as text or JSON.
type Renderable interface {
	RenderText(w io.Writer, colored bool) error
	// RenderData returns the value serialized for JSON output.
	RenderData() any
}

// Formatter writes values in one format.
type Formatter struct {
	format  Format
	writer  io.Writer
	colored bool
}

// NewFormatter creates a formatter writing to w. JSON is never colored.
func NewFormatter(format Format, w io.Writer, colored bool) *Formatter {
	return &Formatter{
		format:  format,
		writer:  w,
		colored: colored && format != FormatJSON,
	}
}

// Output writes data. A Renderable renders itself as text or hands its
// RenderData to the JSON encoder; anything else is always written as JSON.
func (f *Formatter) Output(data any) error {
	r, ok := data.(Renderable)
	switch {
	case !ok:
		return writeJSON(f.writer, data)
	case f.format == FormatJSON:
		return writeJSON(f.writer, r.RenderData())
	default:
		return r.RenderText(f.writer, f.colored)
	}
}

// writeJSON encodes v with two-space indentation and a trailing newline.
// Struct fields keep declaration order, so equal values encode to equal bytes.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ScoreColor colors a score red when it is above threshold, yellow when it
// sits within two of the threshold, and green otherwise.
func ScoreColor(score, threshold int, text string) string {
	switch {
	case score > threshold:
		return color.RedString(text)
	case score > threshold-2:
		return color.YellowString(text)
	default:
		return color.GreenString(text)
	}
}
