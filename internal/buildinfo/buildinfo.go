// Package buildinfo holds version information injected at build time via ldflags:
//
//	-X github.com/watchfire-io/jobwatch/internal/buildinfo.Version=v0.3.0
package buildinfo

var (
	Version    = "dev"
	Codename   = "unknown"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)
