// Package version carries the build metadata stamped into tb and tbd.
package version

// Overridden with -ldflags on release builds.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)
