// Package version holds build metadata set with -ldflags.
package version

import "fmt"

var (
	// Version is the current application version
	Version = "dev"
	// GitSHA is the git commit SHA
	GitSHA = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

// String formats the build metadata for -version output and log headers.
func String() string {
	return fmt.Sprintf("voxelfix %s (%s, built %s)", Version, GitSHA, BuildTime)
}
