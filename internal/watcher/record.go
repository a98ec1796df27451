package watcher

import (
	"os"
	"time"
)

// Kind classifies a detected file-system change.
type Kind string

const (
	KindCreated Kind = "created"
	KindUpdated Kind = "updated"
	KindRemoved Kind = "removed"

	// KindAll is accepted by Scheduler.OnChange to subscribe to every
	// kind. Events never carry it.
	KindAll Kind = "all"
)

// eventKinds are the kinds an event may carry.
var eventKinds = []Kind{KindCreated, KindUpdated, KindRemoved}

// FileRecord is the observed state of one file at a point in time.
//
// Records are immutable: every poll produces fresh records, and a record
// never changes after its snapshot is captured.
type FileRecord struct {
	// Path is the file's absolute path.
	Path string

	// ModTime is the file's mtime (modification time).
	//
	// The precision of this varies by system, and it's very possible for
	// two rapid changes to a file to only modify the mtime once, so this
	// is not guaranteed to change if a file is changed.
	ModTime time.Time

	// Size is the file's size in bytes as reported by Stat().
	Size int64
}

func fileRecordFrom(path string, info os.FileInfo) FileRecord {
	return FileRecord{
		Path:    path,
		ModTime: info.ModTime(),
		Size:    info.Size(),
	}
}

// Snapshot maps absolute file paths to their observed state under one root
// at one point in time.
type Snapshot map[string]FileRecord

// ChangeEvent is one detected difference between two snapshots.
type ChangeEvent struct {
	// Path is the affected file's absolute path.
	Path string

	// Kind is what happened to the file: KindCreated, KindUpdated or
	// KindRemoved.
	Kind Kind

	// Record is the file's new state for created and updated events, and
	// its last known state for removed events.
	Record FileRecord

	// Timestamp is the wall-clock time of the diff that produced this
	// event, not the file's own modification time.
	Timestamp time.Time
}
