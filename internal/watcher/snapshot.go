package watcher

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"

	"github.com/fsmon/fsmon/internal/paths"
)

// Snapshotter captures point-in-time metadata for the files under a root.
type Snapshotter struct {
	fsys afero.Fs
}

// NewSnapshotter returns a Snapshotter reading through fsys. A nil fsys
// means the OS filesystem.
func NewSnapshotter(fsys afero.Fs) *Snapshotter {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &Snapshotter{fsys: fsys}
}

// Capture walks root and returns a record for every file that passes cfg's
// filters within cfg.MaxDepth.
//
// Files that vanish or become unreadable between listing and stat-ing are
// skipped. A missing or unreadable root returns an empty snapshot together
// with the root's error: polling callers treat that as a soft failure and
// diff against the empty snapshot.
func (s *Snapshotter) Capture(root string, cfg Config) (Snapshot, error) {
	snapshot := make(Snapshot)

	absRoot, err := paths.Absolute(root)
	if err != nil {
		return snapshot, err
	}
	rootPath := string(*absRoot)

	var rootErr error
	_ = afero.Walk(s.fsys, rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == rootPath {
				rootErr = err
			}
			// Entries that can't be read are dropped; races between
			// listing and stat-ing are expected.
			return nil
		}

		if info.IsDir() {
			if path == rootPath {
				return nil
			}
			if cfg.MaxDepth > 0 && depthBelow(rootPath, path) > cfg.MaxDepth {
				return filepath.SkipDir
			}
			return nil
		}

		if path == rootPath {
			// The root refers to a file; there is nothing to collect.
			return nil
		}

		if !passesFilters(cfg, filepath.Base(path)) {
			return nil
		}

		// Stat() again so that if the file is a symbolic link, we're
		// examining its target.
		info, err = s.fsys.Stat(path)
		if err != nil || info.IsDir() {
			return nil
		}

		// 'path' is clean and absolute because it's prefixed by the
		// normalized root.
		snapshot[path] = fileRecordFrom(path, info)
		return nil
	})

	return snapshot, rootErr
}

// depthBelow returns how many levels below root the directory at path
// sits: an immediate subdirectory is at depth 1. Files take the depth of
// their containing directory, so a file directly in root is at depth 0.
func depthBelow(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return len(strings.Split(rel, string(filepath.Separator)))
}

// passesFilters applies cfg's filters to a file's base name: ignore
// patterns first, then the extension allow-list.
func passesFilters(cfg Config, base string) bool {
	for _, pattern := range cfg.IgnorePatterns {
		if strings.Contains(base, pattern) {
			return false
		}
	}

	if len(cfg.AllowedExtensions) > 0 &&
		!slices.Contains(cfg.AllowedExtensions, extensionOf(base)) {
		return false
	}

	return true
}

// extensionOf returns the text after the last "." in base, without the
// dot. A name with no dot is its own extension.
func extensionOf(base string) string {
	if i := strings.LastIndex(base, "."); i >= 0 {
		return base[i+1:]
	}
	return base
}
