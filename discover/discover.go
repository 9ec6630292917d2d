// Package discover enumerates candidate data files for a load session,
// either on the local filesystem or inside a Docker container where the
// server actually runs.
package discover

import (
	"bytes"
	"context"
	"io/fs"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/virtuoso-tools/virtload/errors"
)

// Discoverer enumerates files under dir whose base name matches pattern.
// The result is sorted lexicographically so session ordering is stable.
type Discoverer interface {
	Discover(ctx context.Context, dir, pattern string, recursive bool) ([]string, error)
}

// Local walks the host filesystem
type Local struct{}

func (Local) Discover(_ context.Context, dir, pattern string, recursive bool) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if !recursive && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		ok, err := matches(pattern, d.Name())
		if err != nil {
			return err
		}
		if ok {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to scan directory %s", dir)
	}
	sort.Strings(files)
	return files, nil
}

// matches accepts both exact pattern matches and the gzipped variant, so a
// *.nq pattern also picks up *.nq.gz files.
func matches(pattern, name string) (bool, error) {
	ok, err := filepath.Match(pattern, name)
	if err != nil {
		return false, errors.Wrapf(err, "invalid file pattern %q", pattern)
	}
	if ok {
		return true, nil
	}
	return filepath.Match(pattern+".gz", name)
}

// Container enumerates files inside a running container via docker exec,
// since paths the server can open are container paths, not host paths.
type Container struct {
	DockerPath string
	Container  string
	Log        *zap.SugaredLogger
}

func (c Container) Discover(ctx context.Context, dir, pattern string, recursive bool) ([]string, error) {
	argv := []string{c.DockerPath, "exec", c.Container, "find", dir}
	if !recursive {
		argv = append(argv, "-maxdepth", "1")
	}
	argv = append(argv, "-type", "f",
		"(", "-name", pattern, "-o", "-name", pattern+".gz", ")")

	if c.Log != nil {
		c.Log.Debugw("Listing container files", "cmd", strings.Join(argv, " "))
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, errors.Wrapf(err, "failed to list files in container %s: %s",
			c.Container, strings.TrimSpace(stderr.String()))
	}

	var files []string
	for line := range strings.Lines(stdout.String()) {
		line = strings.TrimSpace(line)
		if line != "" {
			files = append(files, line)
		}
	}
	sort.Strings(files)
	return files, nil
}
