package pipeline

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Reporter receives per-identifier progress. The driver serializes calls.
type Reporter interface {
	Start(total int)
	Step(id string)
	Missing(id string)
	Failed(id string, err error)
	Done()
}

// NopReporter discards progress.
type NopReporter struct{}

func (NopReporter) Start(int)            {}
func (NopReporter) Step(string)          {}
func (NopReporter) Missing(string)       {}
func (NopReporter) Failed(string, error) {}
func (NopReporter) Done()                {}

const (
	labelWidth = 40
	barWidth   = 30
)

// BarReporter redraws a single fixed-width progress line on w.
type BarReporter struct {
	w       io.Writer
	total   int
	done    int
	missing int
	failed  int
}

// NewBarReporter returns a BarReporter writing to w.
func NewBarReporter(w io.Writer) *BarReporter { return &BarReporter{w: w} }

// Start resets the counters.
func (b *BarReporter) Start(total int) {
	b.total, b.done, b.missing, b.failed = total, 0, 0, 0
	b.draw("")
}

// Step advances the bar past id.
func (b *BarReporter) Step(id string) {
	b.done++
	b.draw(id)
}

// Missing counts an identifier without resolver data.
func (b *BarReporter) Missing(string) { b.missing++ }

// Failed counts an identifier whose metadata could not be normalized.
func (b *BarReporter) Failed(string, error) { b.failed++ }

// Done ends the progress line with a summary.
func (b *BarReporter) Done() {
	b.draw("done")
	fmt.Fprintf(b.w, "\n%d processed, %d without data, %d malformed\n", b.done, b.missing, b.failed)
}

func (b *BarReporter) draw(label string) {
	filled := 0
	if b.total > 0 {
		filled = b.done * barWidth / b.total
	}
	bar := strings.Repeat("#", filled) + strings.Repeat(" ", barWidth-filled)
	label = runewidth.FillRight(runewidth.Truncate(label, labelWidth, "..."), labelWidth)
	fmt.Fprintf(b.w, "\r%s [%s] %d/%d", label, bar, b.done, b.total)
}
