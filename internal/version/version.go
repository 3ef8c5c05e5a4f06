// Package version holds build metadata stamped in at link time via
// -ldflags "-X github.com/jbovet/oxidized-skills/internal/version.Version=...".
package version

var (
	Version   = "0.3.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)
