package version

// Version is overridden at build time with -ldflags "-X .../internal/version.Version=v1.2.3".
// Version 在构建时通过 -ldflags 覆盖。
var Version = "dev"

// Commit is the VCS revision, set at build time.
var Commit = "unknown"

// String returns "version (commit)".
func String() string {
	return Version + " (" + Commit + ")"
}
