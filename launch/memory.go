// Package launch starts and tunes a Virtuoso server in a Docker container
// and waits for it to accept connections.
package launch

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/mem"

	"github.com/virtuoso-tools/virtload/errors"
)

var memoryPattern = regexp.MustCompile(`^(\d+)([kmg]?)$`)

// ParseMemory parses a memory size like "512m", "8g" or "8G" into bytes;
// no suffix means bytes. Suffixes are case-insensitive.
func ParseMemory(s string) (uint64, error) {
	m := memoryPattern.FindStringSubmatch(strings.ToLower(s))
	if m == nil {
		return 0, errors.Newf("invalid memory size %q: expected digits with optional k/m/g suffix", s)
	}
	n, err := strconv.ParseUint(m[1], 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid memory size %q", s)
	}
	switch m[2] {
	case "k":
		return n << 10, nil
	case "m":
		return n << 20, nil
	case "g":
		return n << 30, nil
	default:
		return n, nil
	}
}

// bufferTier maps a memory size to Virtuoso's recommended buffer settings
type bufferTier struct {
	bytes       uint64
	buffers     int
	dirtyBuffer int
}

// Virtuoso's documented NumberOfBuffers / MaxDirtyBuffers recommendations
// per available RAM.
var bufferTiers = []bufferTier{
	{2 << 30, 170000, 130000},
	{4 << 30, 340000, 250000},
	{8 << 30, 680000, 500000},
	{16 << 30, 1360000, 1000000},
	{32 << 30, 2720000, 2000000},
	{48 << 30, 4000000, 3000000},
	{64 << 30, 5450000, 4000000},
}

// BufferParams returns NumberOfBuffers and MaxDirtyBuffers for the given
// memory budget: the largest documented tier that fits, or a proportional
// scale-down of the smallest tier for budgets under 2 GB.
func BufferParams(memBytes uint64) (buffers, maxDirty int) {
	smallest := bufferTiers[0]
	if memBytes < smallest.bytes {
		frac := float64(memBytes) / float64(smallest.bytes)
		buffers = int(float64(smallest.buffers) * frac)
		maxDirty = int(float64(smallest.dirtyBuffer) * frac)
		if buffers < 10000 {
			buffers, maxDirty = 10000, 6000
		}
		return buffers, maxDirty
	}
	for _, tier := range bufferTiers {
		if memBytes >= tier.bytes {
			buffers, maxDirty = tier.buffers, tier.dirtyBuffer
		}
	}
	return buffers, maxDirty
}

// DefaultMemory picks a memory budget from the host's RAM: about two
// thirds of it, floored to whole gigabytes, never below 1 GB. Falls back
// to 2 GB when the host cannot be probed.
func DefaultMemory() string {
	vm, err := mem.VirtualMemory()
	if err != nil || vm.Total == 0 {
		return "2g"
	}
	gb := vm.Total * 2 / 3 >> 30
	if gb < 1 {
		gb = 1
	}
	return fmt.Sprintf("%dg", gb)
}
