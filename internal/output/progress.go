package output

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/maxvaer/netsweep/internal/scanner"
)

// Progress renders scanner progress events. On a terminal it redraws a
// single status line; otherwise each event is printed on its own line.
type Progress struct {
	mu    sync.Mutex
	w     io.Writer
	tty   bool
	quiet bool
	last  *scanner.ProgressEvent
	drawn bool
}

// NewProgress creates a progress renderer writing to w.
func NewProgress(w io.Writer, quiet bool) *Progress {
	return &Progress{w: w, tty: isTerminal(w), quiet: quiet}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Update records and displays a progress event.
func (p *Progress) Update(ev scanner.ProgressEvent) {
	if p.quiet {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.last = &ev
	p.print()
}

// ClearLine erases the status line so other output can be printed.
func (p *Progress) ClearLine() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.tty && p.drawn {
		fmt.Fprint(p.w, "\r\033[K")
		p.drawn = false
	}
}

// Redraw repaints the last status line after ClearLine.
func (p *Progress) Redraw() {
	if p.quiet || !p.tty {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last != nil {
		p.print()
	}
}

// Stop ends the status line.
func (p *Progress) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.tty && p.drawn {
		fmt.Fprint(p.w, "\n")
		p.drawn = false
	}
}

func (p *Progress) print() {
	fmt.Fprint(p.w, formatProgress(*p.last, p.tty))
	p.drawn = p.tty
}

func formatProgress(ev scanner.ProgressEvent, tty bool) string {
	pct := float64(0)
	if ev.Total > 0 {
		pct = float64(ev.Completed) / float64(ev.Total) * 100
	}
	elapsed := ev.Elapsed.Seconds()
	rate := float64(0)
	if elapsed > 0 {
		rate = float64(ev.Completed) / elapsed
	}

	eta := ""
	if rate > 0 && ev.Completed < ev.Total {
		remaining := float64(ev.Total-ev.Completed) / rate
		eta = fmt.Sprintf(" | ETA: %s", time.Duration(remaining*float64(time.Second)).Round(time.Second))
	}

	line := fmt.Sprintf("Progress: %d/%d (%.1f%%) - Elapsed time: %.1fs | %.0f probes/s | Open: %d | Errors: %d%s",
		ev.Completed, ev.Total, pct, elapsed, rate, ev.Open, ev.Errors, eta)
	if tty {
		return "\r\033[K" + line
	}
	return line + "\n"
}
