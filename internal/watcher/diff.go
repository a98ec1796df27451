package watcher

import "time"

// Diff classifies every difference between two snapshots of the same root.
//
// A path present in both snapshots is updated when its modification time
// differs. Size is deliberately not compared: a rewrite that leaves the
// mtime unchanged, which coarse filesystem timestamps make possible, is
// not detected. A path only in current is created; a path only in previous
// is removed and carries its last known record.
//
// Every event from one call shares the same wall-clock timestamp. The
// order of the returned events is unspecified.
func Diff(previous, current Snapshot) []ChangeEvent {
	now := time.Now()
	events := make([]ChangeEvent, 0)

	for path, record := range current {
		old, existed := previous[path]
		switch {
		case !existed:
			events = append(events, ChangeEvent{
				Path:      path,
				Kind:      KindCreated,
				Record:    record,
				Timestamp: now,
			})
		case !record.ModTime.Equal(old.ModTime):
			events = append(events, ChangeEvent{
				Path:      path,
				Kind:      KindUpdated,
				Record:    record,
				Timestamp: now,
			})
		}
	}

	for path, record := range previous {
		if _, exists := current[path]; !exists {
			events = append(events, ChangeEvent{
				Path:      path,
				Kind:      KindRemoved,
				Record:    record,
				Timestamp: now,
			})
		}
	}

	return events
}
