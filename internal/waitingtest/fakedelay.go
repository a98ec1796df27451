// Package waitingtest provides fakes for the waiting package.
package waitingtest

import (
	"sync"

	"github.com/fsmon/fsmon/internal/waiting"
)

// FakeDelay is a fake Delay that proceeds when Tick is called.
//
// This allows controlling time in a test without resorting to `time.Sleep()`
// and hope.
type FakeDelay struct {
	mu sync.Mutex

	// waiters are the channels handed out by Wait that have not completed.
	waiters []chan struct{}

	// If true, this behaves like a zero delay.
	isZero bool
}

func NewFakeDelay() *FakeDelay {
	return &FakeDelay{}
}

// Prove we implement the Delay interface.
var _ waiting.Delay = &FakeDelay{}

// Tick completes every Wait that started before this call.
func (d *FakeDelay) Tick() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, ch := range d.waiters {
		close(ch)
	}
	d.waiters = nil
}

// SetZero completes all current and future waits immediately.
func (d *FakeDelay) SetZero() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.isZero = true
	for _, ch := range d.waiters {
		close(ch)
	}
	d.waiters = nil
}

func (d *FakeDelay) IsZero() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.isZero
}

func (d *FakeDelay) Wait() (<-chan struct{}, func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	ch := make(chan struct{})
	if d.isZero {
		close(ch)
		return ch, func() {}
	}

	d.waiters = append(d.waiters, ch)

	// There is no goroutine or timer behind a fake wait, so there is
	// nothing for cancel to release.
	return ch, func() {}
}
