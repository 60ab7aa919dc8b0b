// Package progressbar implements functionality of printing a progress
// bar to the terminal window
package progressbar

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Bar implements progress bar functionality that is manually managed:
// call Increment() once per completed iteration and Display() whenever
// an updated bar should be printed. Bar does not use concurrency.
type Bar struct {
	width           float64
	maxProgress     float64
	currentProgress float64
	bar             strings.Builder
	startTime       time.Time
	out             io.Writer
}

// New returns a new Bar that is width characters wide and reaches 100%
// after max Increment() calls
func New(width, max int) *Bar {
	return &Bar{
		width:       float64(width),
		maxProgress: float64(max),
		startTime:   time.Now(),
		out:         os.Stdout,
	}
}

// Increment increments the internal progress counter. Each time an
// iteration is performed, Increment should be called.
func (b *Bar) Increment() {
	if b.currentProgress < b.maxProgress {
		b.currentProgress++
	}
}

// Display prints the progress bar, overwriting the previously printed
// bar if any
func (b *Bar) Display() {
	b.bar.Reset()
	b.bar.WriteString("|")

	currentProg := b.currentProgress / b.maxProgress * b.width
	for i := 0.0; i < currentProg; i++ {
		b.bar.WriteString("█")
	}
	for i := currentProg; i < b.width; i++ {
		b.bar.WriteString(" ")
	}
	fmt.Fprintf(&b.bar, "| [%.2f%% | elapsed: %v]",
		b.currentProgress/b.maxProgress*100,
		time.Since(b.startTime).Truncate(time.Second))

	fmt.Fprintf(b.out, "\n\033[1A\033[K%v", b.bar.String())
}

// Finish jumps to the line below the displayed bar. It should be
// called once, after the final Display().
func (b *Bar) Finish() {
	fmt.Fprintln(b.out)
}
