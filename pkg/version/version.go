// Package version carries build metadata set through -ldflags.
package version

import (
	"fmt"
	"runtime/debug"
)

// Build metadata, overridden at link time:
//
//	-X github.com/Sumatoshi-tech/varnorm/pkg/version.Version=v1.0.0
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String renders the metadata on one line.
func String() string {
	return fmt.Sprintf("varnorm %s (commit %s, built %s)", resolvedVersion(), Commit, Date)
}

// resolvedVersion falls back to the module version recorded by go install.
func resolvedVersion() string {
	if Version != "dev" {
		return Version
	}

	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Version == "" || info.Main.Version == "(devel)" {
		return Version
	}

	return info.Main.Version
}
