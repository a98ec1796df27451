package sysinfo_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fsmon/fsmon/internal/sysinfo"
)

func TestProbe(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	info := sysinfo.Probe([]string{dir})

	assert.Positive(t, info.CPUCountLogical)
	assert.GreaterOrEqual(t, info.CPUCountLogical, info.CPUCount)
	assert.Positive(t, info.MemoryTotal)

	require.Contains(t, info.Disk, dir)
	assert.Positive(t, info.Disk[dir].Total)
}

func TestProbeSkipsUnreadablePaths(t *testing.T) {
	t.Parallel()

	info := sysinfo.Probe([]string{"/definitely/not/a/mountpoint"})

	assert.NotContains(t, info.Disk, "/definitely/not/a/mountpoint")
}

func TestProbeMarshalsToJSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(sysinfo.Probe(nil))

	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
