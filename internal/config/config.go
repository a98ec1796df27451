// Package config loads watcher configuration files.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/fsmon/fsmon/internal/watcher"
)

// File is the on-disk YAML configuration.
//
// Example:
//
//	roots:
//	  - /var/data
//	ignore_patterns:
//	  - .tmp
//	allowed_extensions:
//	  - txt
//	max_depth: 3
//	poll_delay_seconds: 2.5
//	history_size: 200
//	watch_log: /var/log/fsmon/changes.log
type File struct {
	Roots             []string `yaml:"roots"`
	IgnorePatterns    []string `yaml:"ignore_patterns"`
	AllowedExtensions []string `yaml:"allowed_extensions"`
	MaxDepth          int      `yaml:"max_depth"`
	PollDelaySeconds  float64  `yaml:"poll_delay_seconds"`
	HistorySize       int      `yaml:"history_size"`

	// WatchLog, when set, receives one line per detected change.
	WatchLog string `yaml:"watch_log"`

	// SentryDSN enables error reporting when set.
	SentryDSN string `yaml:"sentry_dsn"`
}

// Load reads and parses the YAML file at path.
func Load(fsys afero.Fs, path string) (*File, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", path, err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("config: unable to parse %s: %w", path, err)
	}

	return &file, nil
}

// WatchConfig converts the file into the watcher's configuration.
//
// Fractional poll delays are preserved: 0.5 means half a second.
func (f *File) WatchConfig() watcher.Config {
	return watcher.Config{
		Roots:             f.Roots,
		IgnorePatterns:    f.IgnorePatterns,
		AllowedExtensions: f.AllowedExtensions,
		MaxDepth:          f.MaxDepth,
		PollDelay:         time.Duration(f.PollDelaySeconds * float64(time.Second)),
		HistorySize:       f.HistorySize,
	}
}
