package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/virtuoso-tools/virtload/display"
	"github.com/virtuoso-tools/virtload/errors"
	"github.com/virtuoso-tools/virtload/isql"
	"github.com/virtuoso-tools/virtload/launch"
	"github.com/virtuoso-tools/virtload/logger"
)

func newLaunchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "launch",
		Short: "Start a tuned Virtuoso server in Docker",
		Long: `Start a Virtuoso container with NumberOfBuffers and MaxDirtyBuffers
derived from the memory budget, the data directory mounted and allowed,
and wait until the server accepts connections.

The memory budget defaults to about two thirds of the host's RAM.

Examples:
  virtload launch --data-dir /srv/dumps
  virtload launch --name virtuoso-dev --memory 8g --data-dir /srv/dumps`,
		RunE: runLaunch,
	}

	f := cmd.Flags()
	f.String("name", "virtuoso", "container name")
	f.String("image", "openlink/virtuoso-opensource-7:latest", "container image")
	f.String("data-dir", "", "host directory mounted at "+launch.ContainerDataDir)
	f.String("memory", "", "memory budget, e.g. 8g (default derived from host RAM)")
	f.Int("http-port", 8890, "host port for the HTTP/SPARQL endpoint")
	f.Int("isql-port", 1111, "host port for the SQL endpoint")
	f.Duration("wait", 2*time.Minute, "how long to wait for the server to become ready")
	f.Bool("replace", false, "remove an existing container with the same name first")
	return cmd
}

func runLaunch(cmd *cobra.Command, _ []string) error {
	if cfg.Virtuoso.Password == "" {
		return errors.WithHint(
			errors.New("a dba password is required to launch a server"),
			"set VIRTLOAD_VIRTUOSO_PASSWORD or pass --password")
	}

	f := cmd.Flags()
	name, _ := f.GetString("name")
	image, _ := f.GetString("image")
	dataDir, _ := f.GetString("data-dir")
	memory, _ := f.GetString("memory")
	httpPort, _ := f.GetInt("http-port")
	isqlPort, _ := f.GetInt("isql-port")
	wait, _ := f.GetDuration("wait")
	replace, _ := f.GetBool("replace")

	opts := launch.Options{
		ContainerName: name,
		Image:         image,
		DockerPath:    cfg.Docker.DockerPath,
		DataDir:       dataDir,
		Memory:        memory,
		HTTPPort:      httpPort,
		ISQLPort:      isqlPort,
		Password:      cfg.Virtuoso.Password,
		WaitTimeout:   wait,
		Replace:       replace,
	}

	// The readiness probe goes through the freshly launched container so it
	// works even when the host has no isql client installed.
	probeCfg := *cfg
	probeCfg.Docker.Container = name
	probe := isql.NewRunner(&probeCfg, logger.Logger)

	ctx, stop := sessionContext()
	defer stop()

	launcher := &launch.Launcher{Log: logger.Logger}
	if err := launcher.Launch(ctx, opts, probe); err != nil {
		return err
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(map[string]any{
			"container": name,
			"http_port": httpPort,
			"isql_port": isqlPort,
			"data_dir":  dataDir,
		})
	}
	display.Success("Virtuoso ready: container %s, SQL port %d, HTTP port %d", name, isqlPort, httpPort)
	if dataDir != "" {
		display.Success("Data directory mounted at %s", launch.ContainerDataDir)
	}
	return nil
}
