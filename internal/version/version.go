// Package version carries build metadata injected at link time via
// -ldflags "-X github.com/virtuoso-tools/virtload/internal/version.Version=..."
package version

import "fmt"

var (
	// Version is the release version, "dev" for local builds
	Version = "dev"
	// Commit is the git commit the binary was built from
	Commit = "none"
	// Date is the build timestamp
	Date = "unknown"
)

// String returns the full version line
func String() string {
	return fmt.Sprintf("virtload %s (commit %s, built %s)", Version, Commit, Date)
}
