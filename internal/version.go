// Package internal holds build-time metadata shared by the binaries.
package internal

// Version is the build version, overridden at build time with
// -ldflags "-X github.com/vocdoni/circom-harness/internal.Version=...".
var Version = "dev"
