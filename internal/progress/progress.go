// Package progress draws discovery and analysis progress on a terminal.
package progress

import (
	"fmt"
	"io"

	"github.com/panbanda/cyclo/pkg/analyzer"
	"github.com/schollz/progressbar/v3"
)

// Bar is a progress bar or spinner that clears itself when done.
type Bar struct {
	bar   *progressbar.ProgressBar
	w     io.Writer
	label string
}

// NewSpinner creates a spinner for work of unknown size, such as walking
// the directory tree.
func NewSpinner(w io.Writer, label string) *Bar {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(label),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	return &Bar{bar: bar, w: w, label: label}
}

// NewBar creates a bar that fills after total ticks.
func NewBar(w io.Writer, label string, total int) *Bar {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(label),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files"),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "#",
			SaucerPadding: ".",
			BarStart:      "|",
			BarEnd:        "|",
		}),
	)
	return &Bar{bar: bar, w: w, label: label}
}

// Tick advances the bar by one. Safe for concurrent use.
func (b *Bar) Tick() {
	_ = b.bar.Add(1)
}

// Callback adapts the bar to an analyzer.ProgressFunc.
func (b *Bar) Callback() analyzer.ProgressFunc {
	return func(done, total int, path string) {
		b.Tick()
	}
}

// Done clears the bar. A non-nil err is reported on the bar's writer.
func (b *Bar) Done(err error) {
	_ = b.bar.Finish()
	_ = b.bar.Clear()
	if err != nil {
		fmt.Fprintf(b.w, "  %s failed: %v\n", b.label, err)
	}
}
