package launch

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"
	"go.uber.org/zap"

	"github.com/virtuoso-tools/virtload/errors"
	"github.com/virtuoso-tools/virtload/isql"
)

// ContainerDataDir is where the host data directory is mounted inside the
// container. SQL issued through the container's isql client must use paths
// under this prefix.
const ContainerDataDir = "/database/data"

// Options configures a container launch
type Options struct {
	ContainerName string
	Image         string
	DockerPath    string
	DataDir       string // host directory mounted at ContainerDataDir
	Memory        string // e.g. "8g"; empty means DefaultMemory()
	HTTPPort      int
	ISQLPort      int
	Password      string
	WaitTimeout   time.Duration

	// Replace removes an existing container with the same name first
	Replace bool
}

// Launcher starts a tuned Virtuoso container
type Launcher struct {
	Log *zap.SugaredLogger
}

// BuildArgs constructs the docker run argv, including buffer parameters
// derived from the memory budget.
func BuildArgs(opts Options) ([]string, error) {
	memory := opts.Memory
	if memory == "" {
		memory = DefaultMemory()
	}
	memBytes, err := ParseMemory(memory)
	if err != nil {
		return nil, err
	}
	buffers, maxDirty := BufferParams(memBytes)

	argv := []string{
		opts.DockerPath, "run", "-d",
		"--name", opts.ContainerName,
		"-p", fmt.Sprintf("%d:8890", opts.HTTPPort),
		"-p", fmt.Sprintf("%d:1111", opts.ISQLPort),
		"--memory", memory,
		"-e", "DBA_PASSWORD=" + opts.Password,
		"-e", fmt.Sprintf("VIRT_Parameters_NumberOfBuffers=%d", buffers),
		"-e", fmt.Sprintf("VIRT_Parameters_MaxDirtyBuffers=%d", maxDirty),
		"-e", "VIRT_Parameters_DirsAllowed=., ../vad, " + ContainerDataDir,
	}
	if opts.DataDir != "" {
		argv = append(argv, "-v", opts.DataDir+":"+ContainerDataDir)
	}
	argv = append(argv, opts.Image)
	return argv, nil
}

// Launch starts the container and waits until the server accepts isql
// connections through it.
func (l *Launcher) Launch(ctx context.Context, opts Options, probe isql.Runner) error {
	argv, err := BuildArgs(opts)
	if err != nil {
		return err
	}

	if opts.Replace {
		// Best effort: rm fails harmlessly when no such container exists
		rm := exec.CommandContext(ctx, opts.DockerPath, "rm", "-f", opts.ContainerName)
		if rmErr := rm.Run(); rmErr == nil && l.Log != nil {
			l.Log.Infow("Removed existing container", "container", opts.ContainerName)
		}
	}

	display := redactArgs(argv, opts.Password)
	if l.Log != nil {
		l.Log.Infow("Starting Virtuoso container", "cmd", display)
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "docker run failed: %s", strings.TrimSpace(stderr.String()))
	}

	return l.waitReady(ctx, opts, probe)
}

// waitReady polls the server through isql until it responds or the wait
// timeout elapses. A fresh server spends a while replaying its database
// before the SQL port opens.
func (l *Launcher) waitReady(ctx context.Context, opts Options, probe isql.Runner) error {
	deadline := time.Now().Add(opts.WaitTimeout)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		result, err := probe.Run(ctx, isql.ServerStatus())
		if err == nil && result.OK {
			if l.Log != nil {
				l.Log.Infow("Virtuoso container ready", "container", opts.ContainerName)
			}
			return nil
		}

		if time.Now().After(deadline) {
			return errors.WithHint(
				errors.Wrapf(errors.ErrUnreachable,
					"server did not become ready within %s", opts.WaitTimeout),
				"inspect the container logs: docker logs "+opts.ContainerName)
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(errors.ErrInterrupted, "launch cancelled")
		case <-ticker.C:
		}
	}
}

func redactArgs(argv []string, password string) string {
	redacted := make([]string, len(argv))
	for i, a := range argv {
		if password != "" && strings.Contains(a, password) {
			a = strings.ReplaceAll(a, password, "***")
		}
		redacted[i] = a
	}
	return shellquote.Join(redacted...)
}
