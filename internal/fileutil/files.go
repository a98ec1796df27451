// Package fileutil provides small file helpers shared by the watcher's
// logging runner and the download client.
//
// All helpers take an afero.Fs so that callers can run against an in-memory
// filesystem in tests.
package fileutil

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/afero"
)

// FileExists checks if a file exists at the given path.
//
// Returns true if the file exists, false if it doesn't, and an error if the
// file's existence cannot be determined.
func FileExists(fsys afero.Fs, path string) (bool, error) {
	_, err := fsys.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// AppendLine appends a line of text to the file at the given path, creating
// the file if it does not exist. A trailing newline is added.
func AppendLine(fsys afero.Fs, path string, line string) error {
	file, err := fsys.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("fileutil: unable to open %s for appending: %w", path, err)
	}

	_, err = file.WriteString(line + "\n")
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("fileutil: unable to append to %s: %w", path, err)
	}
	return nil
}
