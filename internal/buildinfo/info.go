// Package buildinfo carries version metadata stamped in at link time.
package buildinfo

import "fmt"

// Set with -ldflags "-X github.com/cleared-dev/retailstar/internal/buildinfo.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String formats the metadata for --version output.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
}
