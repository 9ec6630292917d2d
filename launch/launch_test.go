package launch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMemory(t *testing.T) {
	cases := map[string]uint64{
		"1024": 1024,
		"512k": 512 << 10,
		"512m": 512 << 20,
		"8g":   8 << 30,
		"8G":   8 << 30,
		"512M": 512 << 20,
	}
	for in, want := range cases {
		got, err := ParseMemory(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "1.5g", "g", "8gb", "-1g"} {
		_, err := ParseMemory(bad)
		assert.Error(t, err, bad)
	}
}

func TestBufferParams(t *testing.T) {
	buffers, dirty := BufferParams(2 << 30)
	assert.Equal(t, 170000, buffers)
	assert.Equal(t, 130000, dirty)

	buffers, dirty = BufferParams(64 << 30)
	assert.Equal(t, 5450000, buffers)
	assert.Equal(t, 4000000, dirty)

	// Between tiers: the largest tier that fits
	buffers, dirty = BufferParams(6 << 30)
	assert.Equal(t, 340000, buffers)
	assert.Equal(t, 250000, dirty)

	// Under the smallest tier: proportional scale-down, floored
	buffers, dirty = BufferParams(1 << 30)
	assert.Equal(t, 85000, buffers)
	assert.Equal(t, 65000, dirty)

	buffers, dirty = BufferParams(1 << 20)
	assert.Equal(t, 10000, buffers, "tiny budgets get the floor")
	assert.Equal(t, 6000, dirty)
}

func TestBuildArgs(t *testing.T) {
	argv, err := BuildArgs(Options{
		ContainerName: "virtuoso",
		Image:         "openlink/virtuoso-opensource-7:latest",
		DockerPath:    "docker",
		DataDir:       "/srv/dumps",
		Memory:        "4g",
		HTTPPort:      8890,
		ISQLPort:      1111,
		Password:      "secret",
	})
	require.NoError(t, err)

	joined := make(map[string]bool)
	for _, a := range argv {
		joined[a] = true
	}
	assert.Equal(t, "docker", argv[0])
	assert.True(t, joined["8890:8890"])
	assert.True(t, joined["1111:1111"])
	assert.True(t, joined["DBA_PASSWORD=secret"])
	assert.True(t, joined["VIRT_Parameters_NumberOfBuffers=340000"])
	assert.True(t, joined["VIRT_Parameters_MaxDirtyBuffers=250000"])
	assert.True(t, joined["/srv/dumps:"+ContainerDataDir])
	assert.Equal(t, "openlink/virtuoso-opensource-7:latest", argv[len(argv)-1])
}

func TestBuildArgsRejectsBadMemory(t *testing.T) {
	_, err := BuildArgs(Options{Memory: "lots"})
	assert.Error(t, err)
}

func TestRedactArgs(t *testing.T) {
	out := redactArgs([]string{"docker", "-e", "DBA_PASSWORD=hunter2"}, "hunter2")
	assert.NotContains(t, out, "hunter2")
	assert.Contains(t, out, "DBA_PASSWORD=***")
}
