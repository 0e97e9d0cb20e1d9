// Package version reports the flatscss build version.
package version

import (
	"fmt"
	"runtime/debug"
)

// Build information, set at build time via ldflags:
//
//	-X bennypowers.dev/flatscss/internal/version.Version=v0.1.0
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	// Dirty is "dirty" when the tree had uncommitted changes
	Dirty = ""
)

// Get returns the ldflags version, else the module version recorded in the
// build info, else "dev"
func Get() string {
	v := Version
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			v = info.Main.Version
		}
	}
	if Dirty == "dirty" {
		v += "-dirty"
	}
	return v
}

// Full returns the version with its commit and build time, when known
func Full() string {
	v := Get()
	if Commit != "unknown" {
		v = fmt.Sprintf("%s (commit %s", v, short(Commit))
		if BuildTime != "unknown" {
			v += ", built " + BuildTime
		}
		v += ")"
	}
	return v
}

// Info returns the build information as a map, for structured output
func Info() map[string]string {
	return map[string]string{
		"version":   Get(),
		"commit":    Commit,
		"buildTime": BuildTime,
	}
}

func short(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}
