// Package version carries the release string printed by `abalign version`.
package version

// Version is overridden at build time with -ldflags "-X abalign/internal/version.Version=...".
var Version = "0.3.0"
