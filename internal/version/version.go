// Package version carries the build metadata stamped into the binary.
//
// Set at build time:
//
//	go build -ldflags "-X github.com/leadharvest/leadharvest/internal/version.Version=1.0.0 ..."
package version

import (
	"fmt"
	"runtime"
	"strings"
)

var (
	// Version is the semantic version, "dev" for untagged builds.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "unknown"

	// Dirty is "true" when the tree had uncommitted changes.
	Dirty = "false"

	// BuildDate is the UTC build timestamp, RFC3339.
	BuildDate = "unknown"
)

// String returns the version on one line, marking dirty builds.
func String() string {
	if Dirty == "true" {
		return Version + "-dirty"
	}
	return Version
}

// Full returns the multi-line banner the version command prints.
func Full() string {
	lines := []string{
		fmt.Sprintf("leadharvest %s", String()),
		fmt.Sprintf("  Commit:     %s", Commit),
		fmt.Sprintf("  Built:      %s", BuildDate),
		fmt.Sprintf("  Go version: %s", runtime.Version()),
		fmt.Sprintf("  OS/Arch:    %s/%s", runtime.GOOS, runtime.GOARCH),
	}
	return strings.Join(lines, "\n")
}
