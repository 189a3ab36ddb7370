package tui

import (
	"fmt"
	"io"
	"time"

	"github.com/san-kum/bistab/internal/analysis"
)

// Printer writes a single self-overwriting progress line, at most
// frameRate times per second. The final value always prints.
type Printer struct {
	w         io.Writer
	param     string
	frameRate int
	lastFrame time.Time
}

func NewPrinter(w io.Writer, param string, frameRate int) *Printer {
	if frameRate < 1 {
		frameRate = 1
	}
	return &Printer{w: w, param: param, frameRate: frameRate}
}

func (p *Printer) OnValue(done, total int, s analysis.ValueSummary) {
	final := done == total
	if !final && time.Since(p.lastFrame) < time.Second/time.Duration(p.frameRate) {
		return
	}
	p.lastFrame = time.Now()

	fmt.Fprintf(p.w, "\r[%3d/%3d] %s=%-10.4g steady states: %d   ", done, total, p.param, s.Value, s.Rows)
	if final {
		fmt.Fprintln(p.w)
	}
}
