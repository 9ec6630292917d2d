// Package config holds the virtload configuration, loaded with Viper from
// TOML files and VIRTLOAD_* environment variables.
package config

import "fmt"

// Config represents the full virtload configuration
type Config struct {
	Virtuoso VirtuosoConfig `mapstructure:"virtuoso"`
	Docker   DockerConfig   `mapstructure:"docker"`
	Load     LoadConfig     `mapstructure:"load"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
}

// VirtuosoConfig describes how to reach the Virtuoso server
type VirtuosoConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"` // bound to VIRTLOAD_VIRTUOSO_PASSWORD
	ISQLPath string `mapstructure:"isql_path"`
}

// Address returns the host:port pair passed to isql
func (v VirtuosoConfig) Address() string {
	return fmt.Sprintf("%s:%d", v.Host, v.Port)
}

// DockerConfig configures running isql through a container. An empty
// Container means local mode.
type DockerConfig struct {
	Container     string `mapstructure:"container"`
	ISQLPath      string `mapstructure:"isql_path"`   // path to isql INSIDE the container
	DockerPath    string `mapstructure:"docker_path"` // docker binary on the host
	DataDirectory string `mapstructure:"data_directory"`
}

// Enabled reports whether isql runs through docker exec
func (d DockerConfig) Enabled() bool {
	return d.Container != ""
}

// LoadConfig configures the bulk-load run itself
type LoadConfig struct {
	// Workers is the parallel worker count. 0 derives the count from the
	// host CPU probe; explicit values must be >= 1.
	Workers int `mapstructure:"workers"`

	Pattern   string `mapstructure:"pattern"`
	Recursive bool   `mapstructure:"recursive"`

	// PlaceholderGraph is the graph URI handed to TTLP. With flag 512 the
	// graph is taken from each quad and this value is ignored by Virtuoso,
	// but TTLP still requires one.
	PlaceholderGraph string `mapstructure:"placeholder_graph"`

	// Steady-state intervals (seconds) restored by the finalizer after the
	// bulk load completes.
	CheckpointIntervalSeconds int `mapstructure:"checkpoint_interval_seconds"`
	SchedulerIntervalSeconds  int `mapstructure:"scheduler_interval_seconds"`

	// GraceTimeoutSeconds bounds how long the dispatcher waits for workers
	// to observe their termination token before forcing termination.
	GraceTimeoutSeconds int `mapstructure:"grace_timeout_seconds"`

	// PollIntervalSeconds is the load_list polling cadence in bulk mode.
	PollIntervalSeconds int `mapstructure:"poll_interval_seconds"`
}

// LedgerConfig configures the local SQLite session ledger
type LedgerConfig struct {
	Path string `mapstructure:"path"`
}

// String returns a short representation of the config, omitting the password
func (c *Config) String() string {
	mode := "local"
	if c.Docker.Enabled() {
		mode = "docker:" + c.Docker.Container
	}
	return fmt.Sprintf("Config{Virtuoso: %s@%s, Mode: %s, Workers: %d, Pattern: %s}",
		c.Virtuoso.User, c.Virtuoso.Address(), mode, c.Load.Workers, c.Load.Pattern)
}
