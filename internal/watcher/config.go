package watcher

import (
	"errors"
	"time"
)

const (
	// DefaultPollDelay is the pause between poll cycles when
	// Config.PollDelay is unset.
	DefaultPollDelay = 5 * time.Second

	// DefaultHistorySize bounds the retained change events when
	// Config.HistorySize is unset.
	DefaultHistorySize = 100
)

// Config selects which files to observe and how often to poll.
//
// A Config is fixed at construction; create a new scheduler to change it.
type Config struct {
	// Roots are the directories to watch. At least one is required.
	Roots []string

	// IgnorePatterns excludes any file whose base name contains one of
	// these substrings. Directory names are not matched.
	IgnorePatterns []string

	// AllowedExtensions, when non-empty, keeps only files whose extension
	// is listed. Extensions are written without the leading dot. The
	// extension of a name without a dot is the whole name.
	AllowedExtensions []string

	// MaxDepth, when positive, bounds how deep below each root files are
	// collected: a file directly in a root is at depth 0, a file in an
	// immediate subdirectory at depth 1. Subdirectories deeper than
	// MaxDepth are not entered. Zero or negative means no bound.
	MaxDepth int

	// PollDelay is the pause between poll cycles.
	PollDelay time.Duration

	// HistorySize is the maximum number of change events retained for
	// Stats and History, oldest evicted first.
	HistorySize int
}

func (c Config) withDefaults() Config {
	if c.PollDelay <= 0 {
		c.PollDelay = DefaultPollDelay
	}
	if c.HistorySize <= 0 {
		c.HistorySize = DefaultHistorySize
	}
	return c
}

func (c Config) validate() error {
	if len(c.Roots) == 0 {
		return errors.New("watcher: config has no roots")
	}
	return nil
}
