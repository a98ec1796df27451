package watcher

import "sync"

// changeHistory is a bounded FIFO of recent change events.
//
// It is safe for concurrent use: the poll loop appends while other
// goroutines read stats or the retained events.
type changeHistory struct {
	mu    sync.Mutex
	buf   []ChangeEvent
	next  int
	count int
}

func newChangeHistory(size int) *changeHistory {
	return &changeHistory{buf: make([]ChangeEvent, size)}
}

// Append adds events, evicting the oldest entries beyond the buffer size.
func (h *changeHistory) Append(events ...ChangeEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, event := range events {
		h.buf[h.next] = event
		h.next = (h.next + 1) % len(h.buf)
		if h.count < len(h.buf) {
			h.count++
		}
	}
}

// Snapshot returns the retained events, oldest first.
func (h *changeHistory) Snapshot() []ChangeEvent {
	h.mu.Lock()
	defer h.mu.Unlock()

	events := make([]ChangeEvent, 0, h.count)
	for i := 0; i < h.count; i++ {
		events = append(events, h.buf[(h.start()+i)%len(h.buf)])
	}
	return events
}

// Stats counts the retained events by kind. Every kind an event may carry
// is present in the result, zero-valued when absent.
func (h *changeHistory) Stats() map[Kind]int {
	h.mu.Lock()
	defer h.mu.Unlock()

	stats := make(map[Kind]int, len(eventKinds))
	for _, kind := range eventKinds {
		stats[kind] = 0
	}
	for i := 0; i < h.count; i++ {
		stats[h.buf[(h.start()+i)%len(h.buf)].Kind]++
	}
	return stats
}

// start returns the index of the oldest retained event. The caller must
// hold mu.
func (h *changeHistory) start() int {
	start := h.next - h.count
	if start < 0 {
		start += len(h.buf)
	}
	return start
}
