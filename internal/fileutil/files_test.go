package fileutil_test

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fsmon/fsmon/internal/fileutil"
)

func TestFileExists(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/data/a.txt", []byte("x"), 0o644))

	exists, err := fileutil.FileExists(fsys, "/data/a.txt")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = fileutil.FileExists(fsys, "/data/missing.txt")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestAppendLine(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()

	// The file is created on the first append.
	require.NoError(t, fileutil.AppendLine(fsys, "/logs/changes.log", "first"))
	require.NoError(t, fileutil.AppendLine(fsys, "/logs/changes.log", "second"))

	data, err := afero.ReadFile(fsys, "/logs/changes.log")
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond\n", string(data))
}
