// Package watcher reports file creations, updates and removals under
// configured directory roots by polling their metadata.
package watcher

import (
	"github.com/spf13/afero"

	"github.com/fsmon/fsmon/internal/observability"
	"github.com/fsmon/fsmon/internal/waiting"
)

// Scheduler runs the poll loop and dispatches change events.
type Scheduler interface {
	// Start launches the background poll loop.
	//
	// It may be called at most once, and fails after Stop.
	Start() error

	// Stop interrupts the poll delay, stops the loop and waits for it to
	// exit. No callbacks run after Stop returns. It is idempotent.
	Stop()

	// OnChange registers a callback for events of the given kind, or for
	// every event with KindAll.
	//
	// Callbacks for an event's own kind run before KindAll callbacks,
	// each group in registration order, on the poll goroutine. A panic
	// in a callback is logged and does not stop dispatch or the loop.
	OnChange(kind Kind, fn func(ChangeEvent)) error

	// Stats counts the retained events by kind. Events evicted from the
	// history no longer count.
	Stats() map[Kind]int

	// History returns the retained events, oldest first.
	History() []ChangeEvent
}

// SchedulerTesting has additional test-only Scheduler methods.
type SchedulerTesting interface {
	// PollNow runs one capture, diff and dispatch cycle immediately on
	// the calling goroutine.
	PollNow()
}

// Params are the arguments to New.
type Params struct {
	// Config selects the roots, filters, poll delay and history bound.
	Config Config

	// Logger receives loop diagnostics. If unset, logging is discarded.
	Logger *observability.CoreLogger

	// FS is the filesystem the watcher reads. If unset, the OS
	// filesystem.
	FS afero.Fs

	// Delay overrides Config.PollDelay as the pause between cycles. If
	// unset, a real delay of Config.PollDelay is used.
	Delay waiting.Delay
}

// New returns a Scheduler for params.
//
// The baseline snapshot of every root is captured here, so the first
// cycle only reports changes that happen after construction.
func New(params Params) (Scheduler, error) {
	return newScheduler(params)
}
