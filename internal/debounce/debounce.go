// Package debounce rate-limits repeated actions, such as logging an error
// that recurs on every poll cycle.
package debounce

import (
	"github.com/fsmon/fsmon/internal/observability"

	"golang.org/x/time/rate"
)

// Debouncer invokes an action at most as often as its rate limit allows.
type Debouncer struct {
	limiter       *rate.Limiter
	finished      bool
	needsDebounce bool
	logger        *observability.CoreLogger
}

func NewDebouncer(
	eventRate rate.Limit,
	burstSize int,
	logger *observability.CoreLogger,
) *Debouncer {
	return &Debouncer{
		limiter: rate.NewLimiter(eventRate, burstSize),
		logger:  logger,
	}
}

// SetNeedsDebounce marks that there is a pending action to run.
func (d *Debouncer) SetNeedsDebounce() {
	if d == nil {
		return
	}
	d.needsDebounce = true
}

// Debounce runs f if an action is pending and the rate limit allows it.
func (d *Debouncer) Debounce(f func()) {
	if d == nil || d.finished {
		return
	}
	if !d.needsDebounce || !d.limiter.Allow() {
		return
	}
	d.Flush(f)
}

// Flush runs f if an action is pending, ignoring the rate limit.
func (d *Debouncer) Flush(f func()) {
	if d == nil || d.finished {
		return
	}
	if d.needsDebounce {
		d.logger.Debug("debounce: running pending action")
		f()
		d.needsDebounce = false
	}
}

// Stop makes all future debounce operations no-ops.
func (d *Debouncer) Stop() {
	d.finished = true
}
