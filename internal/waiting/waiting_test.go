package waiting_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fsmon/fsmon/internal/waiting"
)

func assertClosedWithin(t *testing.T, ch <-chan struct{}, timeout time.Duration) {
	select {
	case <-ch:
	case <-time.After(timeout):
		t.Fatal("channel was not closed in time")
	}
}

func TestNoDelay(t *testing.T) {
	t.Parallel()

	delay := waiting.NoDelay()

	assert.True(t, delay.IsZero())

	ch, cancel := delay.Wait()
	defer cancel()
	assertClosedWithin(t, ch, time.Second)
}

func TestDelayElapses(t *testing.T) {
	t.Parallel()

	delay := waiting.NewDelay(time.Millisecond)

	assert.False(t, delay.IsZero())

	ch, cancel := delay.Wait()
	defer cancel()
	assertClosedWithin(t, ch, 5*time.Second)
}

func TestDelayCancel(t *testing.T) {
	t.Parallel()

	delay := waiting.NewDelay(time.Hour)

	ch, cancel := delay.Wait()
	cancel()

	// Canceling completes the wait without the hour elapsing.
	assertClosedWithin(t, ch, 5*time.Second)
}
