package config

import (
	"github.com/shirou/gopsutil/v3/cpu"

	"github.com/virtuoso-tools/virtload/errors"
)

// ParallelismProbe reports the available CPU parallelism of the host.
// Injectable so tests and callers can substitute a fixed value.
type ParallelismProbe func() (int, error)

// HostCPUCount probes logical CPU count via gopsutil
func HostCPUCount() (int, error) {
	n, err := cpu.Counts(true)
	if err != nil {
		return 0, errors.Wrap(err, "failed to probe CPU count")
	}
	return n, nil
}

// workerDivisor keeps isql worker processes from saturating the host: each
// load also costs CPU inside the Virtuoso server itself.
const workerDivisor = 2.5

// DefaultWorkers derives the default worker count from the probe: CPUs
// divided by workerDivisor, never below 1. A failing probe also yields 1.
func DefaultWorkers(probe ParallelismProbe) int {
	if probe == nil {
		probe = HostCPUCount
	}
	cpus, err := probe()
	if err != nil || cpus < 1 {
		return 1
	}
	workers := int(float64(cpus) / workerDivisor)
	if workers < 1 {
		return 1
	}
	return workers
}

// ResolveWorkers returns the effective worker count: the configured value
// when explicitly set, otherwise the probe-derived default. Explicit values
// below 1 are rejected.
func (c *Config) ResolveWorkers(probe ParallelismProbe) (int, error) {
	if c.Load.Workers < 0 {
		return 0, errors.Newf("worker count must be at least 1, got %d", c.Load.Workers)
	}
	if c.Load.Workers == 0 {
		return DefaultWorkers(probe), nil
	}
	return c.Load.Workers, nil
}
