// Package paths enables a "parse-don't-validate" approach to file paths.
//
// The AbsolutePath type should be passed by value when it's guaranteed to be
// present, and otherwise by pointer so that a nil value can represent an
// unset path. The text representation can be retrieved as `string(path)`.
//
// Instead of checking that arbitrary strings are valid inputs, this helps use
// the type system to ensure that they were validated somewhere earlier in the
// call stack.
package paths

import (
	"os"
	"path/filepath"
)

// AbsolutePath is a cleaned, absolute path using the OS file separator.
//
// It does not end with a trailing slash except if it is a root directory,
// such as '/' on Unix or 'C:\' on Windows.
type AbsolutePath string

// OrEmpty returns the path, or an empty string if the path is nil.
func (path *AbsolutePath) OrEmpty() string {
	if path == nil {
		return ""
	} else {
		return string(*path)
	}
}

// CWD returns the current working directory.
//
// It may fail if the directory has been deleted.
func CWD() (*AbsolutePath, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	// Getwd() always returns an absolute path.
	return toPtr(AbsolutePath(filepath.Clean(cwd))), nil
}

// Absolute makes a path absolute.
//
// If the path is already absolute, this returns a cleaned absolute path.
// If it's relative, it's made absolute by joining to the current working
// directory. An empty string becomes the current working directory.
//
// This may return an error if it fails to get the working directory,
// which can happen if it was deleted.
func Absolute(path string) (*AbsolutePath, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	// NOTE: filepath.Abs() calls Clean() on the result.
	return toPtr(AbsolutePath(absPath)), nil
}

// Something that should exist in Go's standard library.
func toPtr[T any](x T) *T {
	return &x
}
