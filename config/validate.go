package config

import (
	"github.com/virtuoso-tools/virtload/errors"
)

// Validate checks that the configuration is usable for a load run.
// Registration against the server is expensive and irreversible, so
// everything checkable up front is checked here.
func (c *Config) Validate() error {
	if c.Virtuoso.Host == "" {
		return errors.New("virtuoso.host must not be empty")
	}
	if c.Virtuoso.Port < 1 || c.Virtuoso.Port > 65535 {
		return errors.Newf("virtuoso.port out of range: %d", c.Virtuoso.Port)
	}
	if c.Virtuoso.User == "" {
		return errors.New("virtuoso.user must not be empty")
	}
	if c.Virtuoso.Password == "" {
		return errors.WithHint(
			errors.New("virtuoso.password must not be empty"),
			"set VIRTLOAD_VIRTUOSO_PASSWORD or pass --password",
		)
	}
	if c.Load.Workers < 0 {
		return errors.Newf("load.workers must be at least 1 (or 0 for auto), got %d", c.Load.Workers)
	}
	if c.Load.Pattern == "" {
		return errors.New("load.pattern must not be empty")
	}
	if c.Load.CheckpointIntervalSeconds < 1 {
		return errors.Newf("load.checkpoint_interval_seconds must be positive, got %d", c.Load.CheckpointIntervalSeconds)
	}
	if c.Load.SchedulerIntervalSeconds < 1 {
		return errors.Newf("load.scheduler_interval_seconds must be positive, got %d", c.Load.SchedulerIntervalSeconds)
	}
	if c.Load.GraceTimeoutSeconds < 1 {
		return errors.Newf("load.grace_timeout_seconds must be positive, got %d", c.Load.GraceTimeoutSeconds)
	}
	return nil
}
