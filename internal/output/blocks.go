package output

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// Table is a borderless text table. Rows keep their order.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string

	// rightAligned holds the indexes of numeric columns.
	rightAligned []int
}

// NewTable creates a table.
func NewTable(title string, headers []string, rows [][]string) *Table {
	return &Table{Title: title, Headers: headers, Rows: rows}
}

// AlignRight right-aligns the given columns.
func (t *Table) AlignRight(cols ...int) *Table {
	t.rightAligned = append(t.rightAligned, cols...)
	return t
}

// RenderData returns one header-keyed map per row.
func (t *Table) RenderData() any {
	records := make([]map[string]string, len(t.Rows))
	for i, row := range t.Rows {
		rec := make(map[string]string, len(t.Headers))
		for j, h := range t.Headers {
			if j < len(row) {
				rec[h] = row[j]
			}
		}
		records[i] = rec
	}
	return records
}

func (t *Table) alignments() tw.CellAlignment {
	align := tw.CellAlignment{Global: tw.AlignLeft}
	if len(t.rightAligned) == 0 {
		return align
	}
	align.PerColumn = make([]tw.Align, len(t.Headers))
	for i := range align.PerColumn {
		align.PerColumn[i] = tw.AlignLeft
		if slices.Contains(t.rightAligned, i) {
			align.PerColumn[i] = tw.AlignRight
		}
	}
	return align
}

func (t *Table) RenderText(w io.Writer, colored bool) error {
	if t.Title != "" {
		writeTitle(w, t.Title, "=", colored)
		fmt.Fprintln(w)
	}

	align := t.alignments()
	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{
				Alignment:  align,
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
			},
			Row: tw.CellConfig{Alignment: align},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.Border{Left: tw.Off, Right: tw.Off, Top: tw.Off, Bottom: tw.Off},
			Settings: tw.Settings{
				Separators: tw.Separators{BetweenColumns: tw.Off},
			},
		}),
	)

	table.Header(t.Headers)
	for _, row := range t.Rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

// KV is one "key: value" line of a Section.
type KV struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Section is a titled list of key/value lines with aligned values.
type Section struct {
	Title string `json:"title,omitempty"`
	Lines []KV   `json:"lines,omitempty"`
}

func (s *Section) RenderData() any {
	return s
}

func (s *Section) RenderText(w io.Writer, colored bool) error {
	if s.Title != "" {
		writeTitle(w, s.Title, "-", colored)
	}

	width := 0
	for _, kv := range s.Lines {
		width = max(width, len(kv.Key))
	}
	for _, kv := range s.Lines {
		if _, err := fmt.Fprintf(w, "  %-*s  %s\n", width+1, kv.Key+":", kv.Value); err != nil {
			return err
		}
	}
	return nil
}

// Report renders its parts in order, separated by blank lines.
type Report struct {
	Parts []Renderable
}

func (r *Report) RenderData() any {
	data := make([]any, len(r.Parts))
	for i, p := range r.Parts {
		data[i] = p.RenderData()
	}
	return data
}

func (r *Report) RenderText(w io.Writer, colored bool) error {
	for i, p := range r.Parts {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if err := p.RenderText(w, colored); err != nil {
			return err
		}
	}
	return nil
}

func writeTitle(w io.Writer, title, underline string, colored bool) {
	if colored {
		color.New(color.Bold).Fprintln(w, title)
	} else {
		fmt.Fprintln(w, title)
	}
	fmt.Fprintln(w, strings.Repeat(underline, len(title)))
}
