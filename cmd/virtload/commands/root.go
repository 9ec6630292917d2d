// Package commands implements the virtload CLI
package commands

import (
	"github.com/spf13/cobra"

	"github.com/virtuoso-tools/virtload/config"
	"github.com/virtuoso-tools/virtload/display"
	"github.com/virtuoso-tools/virtload/errors"
	"github.com/virtuoso-tools/virtload/logger"
)

// cfg is the resolved configuration, populated by the root command's
// PersistentPreRunE before any subcommand runs.
var cfg *config.Config

// NewRootCommand builds the virtload command tree
func NewRootCommand() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "virtload",
		Short: "Parallel bulk loader for OpenLink Virtuoso",
		Long: `virtload loads N-Quads files into a Virtuoso server in parallel.

Two modes are available:
  load   one isql process per file via TTLP, tracked in a local ledger
  bulk   server-side registration (ld_dir) drained by rdf_loader_run workers

Both modes disable transaction logging during the load and finish with a
forced checkpoint, restoring the server's steady-state intervals.

Configuration comes from /etc/virtload/config.toml, ~/.virtload/config.toml,
a virtload.toml found upward from the working directory, VIRTLOAD_*
environment variables, and finally command-line flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (bypasses config discovery)")
	pf.Bool("json", false, "emit machine-readable JSON output")
	pf.CountP("verbose", "v", "increase log verbosity")
	pf.String("host", "", "Virtuoso host")
	pf.Int("port", 0, "Virtuoso SQL port")
	pf.String("user", "", "Virtuoso user")
	pf.String("password", "", "Virtuoso password (prefer VIRTLOAD_VIRTUOSO_PASSWORD)")
	pf.String("docker-container", "", "run isql inside this Docker container")
	pf.String("ledger", "", "path to the local session ledger database")

	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		var err error
		if cfgFile != "" {
			cfg, err = config.LoadFromFile(cfgFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return err
		}
		applyGlobalFlags(cmd)

		verbosity, _ := cmd.Flags().GetCount("verbose")
		return logger.Initialize(display.ShouldOutputJSON(cmd), verbosity)
	}

	root.AddCommand(
		newLoadCommand(),
		newBulkCommand(),
		newStatusCommand(),
		newLaunchCommand(),
		newVersionCommand(),
	)
	return root
}

// applyGlobalFlags lets explicit flags override whatever the config files
// and environment resolved to.
func applyGlobalFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	if f.Changed("host") {
		cfg.Virtuoso.Host, _ = f.GetString("host")
	}
	if f.Changed("port") {
		cfg.Virtuoso.Port, _ = f.GetInt("port")
	}
	if f.Changed("user") {
		cfg.Virtuoso.User, _ = f.GetString("user")
	}
	if f.Changed("password") {
		cfg.Virtuoso.Password, _ = f.GetString("password")
	}
	if f.Changed("docker-container") {
		cfg.Docker.Container, _ = f.GetString("docker-container")
	}
	if f.Changed("ledger") {
		cfg.Ledger.Path, _ = f.GetString("ledger")
	}
}

// ExitCode maps an error to the process exit code. An empty directory is
// not an error; durability failures and interrupts get dedicated codes so
// wrapper scripts can react to them.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.IsCritical(err):
		return 2
	case errors.IsInterrupted(err):
		return 130
	default:
		return 1
	}
}
