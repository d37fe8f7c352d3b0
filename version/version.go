// Package version holds the process-wide build-time version constants
// reported by VersionRequest and `--version`.
package version

// These are var, not const, so a release build can override them with
// -ldflags "-X github.com/chazu/loom/version.CompilerVersion=1.2.3".
var (
	// ProtocolVersion is the version of the host<->compiler wire protocol
	// itself, independent of the compiler's own version.
	ProtocolVersion = "3.0.0"

	// CompilerVersion is the version of the stylesheet compilation engine.
	CompilerVersion = "0.1.0-dev"

	// ImplementationVersion is this program's own release version.
	ImplementationVersion = "0.1.0-dev"

	// ImplementationName is a stable identifier for this implementation,
	// independent of ImplementationVersion.
	ImplementationName = "loom-embedded-host"
)
