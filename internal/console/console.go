// Package console renders change reports for people watching a terminal.
package console

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/fsmon/fsmon/internal/watcher"
)

// Printer writes a human-readable line per change event, grouping events
// into batches under a "Changes detected at:" header.
//
// Events produced by one detection pass share a timestamp, which is what
// delimits the batches. Printer is safe for concurrent use.
type Printer struct {
	mu  sync.Mutex
	out io.Writer

	lastBatch time.Time

	kindColors map[watcher.Kind]*color.Color
}

// NewPrinter returns a Printer writing to out.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{
		out: out,
		kindColors: map[watcher.Kind]*color.Color{
			watcher.KindCreated: color.New(color.FgGreen),
			watcher.KindUpdated: color.New(color.FgYellow),
			watcher.KindRemoved: color.New(color.FgRed),
		},
	}
}

// DisableColor turns off coloring for all printers, such as when output
// goes to a pipe or the user asked for plain text.
func DisableColor() {
	color.NoColor = true
}

// Change prints one "<path> was <kind>" line, preceded by a batch header
// whenever the event starts a new batch.
func (p *Printer) Change(event watcher.ChangeEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !event.Timestamp.Equal(p.lastBatch) {
		p.lastBatch = event.Timestamp
		fmt.Fprintf(p.out, "Changes detected at: %s:\n",
			event.Timestamp.Format(time.DateTime))
	}

	kind := string(event.Kind)
	if c, ok := p.kindColors[event.Kind]; ok {
		kind = c.Sprint(kind)
	}
	fmt.Fprintf(p.out, "%s was %s\n", event.Path, kind)
}

// Stats prints the per-kind counts of retained events.
func (p *Printer) Stats(stats map[watcher.Kind]int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.out, "changes retained: %d created, %d updated, %d removed\n",
		stats[watcher.KindCreated],
		stats[watcher.KindUpdated],
		stats[watcher.KindRemoved])
}
