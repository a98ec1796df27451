//go:build !windows

package paths_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fsmon/fsmon/internal/paths"
)

func TestAbsolute_RemovesTrailingSlash(t *testing.T) {
	path, err := paths.Absolute("/remove/slash/")

	require.NoError(t, err)
	assert.Equal(t, "/remove/slash", string(*path))
}

func TestAbsolute_CleansPath(t *testing.T) {
	path, err := paths.Absolute("/a/b/../c/./d")

	require.NoError(t, err)
	assert.Equal(t, "/a/c/d", string(*path))
}

func TestAbsolute_GivenRelativePath_JoinsToCWD(t *testing.T) {
	cwd, err := paths.CWD()
	require.NoError(t, err)

	path, err := paths.Absolute(".")
	require.NoError(t, err)

	assert.Equal(t, string(*cwd), string(*path))
}

func TestOrEmpty(t *testing.T) {
	path, err := paths.Absolute("/some/path")
	require.NoError(t, err)

	assert.Equal(t, "/some/path", path.OrEmpty())
	assert.Equal(t, "", (*paths.AbsolutePath)(nil).OrEmpty())
}
