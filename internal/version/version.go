// Package version holds build-time version info, injected via -ldflags.
package version

// Build info, overridden at link time.
var (
	Version = "dev"
	Commit  = "none"
)
