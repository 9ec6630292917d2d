package config

import "github.com/spf13/viper"

// Defaults mirror the steady-state Virtuoso operational parameters.
const (
	DefaultHost     = "localhost"
	DefaultPort     = 1111
	DefaultUser     = "dba"
	DefaultISQLPath = "isql"

	DefaultDockerPath     = "docker"
	DefaultDockerISQLPath = "isql"

	DefaultPattern          = "*.nq"
	DefaultPlaceholderGraph = "http://localhost:8890/DAV/ignored"

	DefaultCheckpointIntervalSeconds = 60
	DefaultSchedulerIntervalSeconds  = 10
	DefaultGraceTimeoutSeconds       = 10
	DefaultPollIntervalSeconds       = 2

	DefaultLedgerPath = "virtload.db"

	// DefaultDirPermissions is used when creating the user config directory
	DefaultDirPermissions = 0o755
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("virtuoso.host", DefaultHost)
	v.SetDefault("virtuoso.port", DefaultPort)
	v.SetDefault("virtuoso.user", DefaultUser)
	v.SetDefault("virtuoso.isql_path", DefaultISQLPath)

	v.SetDefault("docker.isql_path", DefaultDockerISQLPath)
	v.SetDefault("docker.docker_path", DefaultDockerPath)

	v.SetDefault("load.workers", 0) // 0 = derive from CPU probe
	v.SetDefault("load.pattern", DefaultPattern)
	v.SetDefault("load.recursive", false)
	v.SetDefault("load.placeholder_graph", DefaultPlaceholderGraph)
	v.SetDefault("load.checkpoint_interval_seconds", DefaultCheckpointIntervalSeconds)
	v.SetDefault("load.scheduler_interval_seconds", DefaultSchedulerIntervalSeconds)
	v.SetDefault("load.grace_timeout_seconds", DefaultGraceTimeoutSeconds)
	v.SetDefault("load.poll_interval_seconds", DefaultPollIntervalSeconds)

	v.SetDefault("ledger.path", DefaultLedgerPath)
}

// BindSensitiveEnvVars explicitly binds sensitive configuration to
// environment variables so credentials never need to live in a config file.
func BindSensitiveEnvVars(v *viper.Viper) {
	v.BindEnv("virtuoso.password", "VIRTLOAD_VIRTUOSO_PASSWORD")
	v.BindEnv("virtuoso.user", "VIRTLOAD_VIRTUOSO_USER")
}
