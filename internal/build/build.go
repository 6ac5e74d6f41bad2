// Package build holds build-time information.
package build

// Set by linker flags in release builds.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)
