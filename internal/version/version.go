// Package version carries the build-time version stamp.
package version

// Overridden at build time via -ldflags.
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)
