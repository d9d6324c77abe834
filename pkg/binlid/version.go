// Package binlid holds build metadata shared by the binlid binaries.
package binlid

// Version is the release version, overridden at link time with
// -ldflags "-X github.com/mesh-intelligence/binlid/pkg/binlid.Version=...".
var Version = "v0.1.0"
