// Package engine defines the contract the dispatch layer uses to drive a
// stylesheet compilation, and is consumed by package host. The dispatch
// layer treats the engine as an external, blocking collaborator (spec.md
// §6.1); package engine/stylesheet supplies a real implementation of it so
// the module is runnable end to end.
package engine

import "github.com/chazu/loom/protocol"

// HostServices are the synchronous, blocking callbacks an Engine may
// invoke while compiling. Every method blocks the calling goroutine until
// the host replies; callers (the engine) must not invoke a second callback
// before the previous one returns (spec.md's single-outstanding-callback
// constraint, enforced by package host on the other side of this
// interface).
type HostServices interface {
	// Canonicalize resolves url against the importer identified by
	// importerID to a canonical URL. found is false when the importer
	// declines the URL rather than erroring.
	Canonicalize(importerID uint32, url string, fromImport bool) (canonicalURL string, found bool, err error)

	// Load fetches the contents behind a canonical URL previously returned
	// by Canonicalize.
	Load(importerID uint32, canonicalURL string) (result protocol.ImportResult, found bool, err error)

	// FileImport asks a file importer to resolve url to a file: URL.
	FileImport(importerID uint32, url string, fromImport bool) (fileURL string, found bool, err error)

	// FunctionCall invokes a custom function the host registered by name.
	FunctionCall(name string, args []protocol.Value) (protocol.Value, error)

	// Log emits a fire-and-forget diagnostic tagged with the compilation.
	// The host, not the engine, is responsible for rendering the
	// human-readable "formatted" banner, since only the host knows the
	// compile request's alert_color / alert_ascii flags.
	Log(level protocol.LogLevel, message string, span *protocol.SourceSpan, stackTrace string)
}

// Engine compiles one stylesheet. Implementations must be safe to invoke
// from an isolated goroutine per call; they need not be safe for
// concurrent calls sharing one Engine value unless documented otherwise.
type Engine interface {
	Compile(req *protocol.CompileRequest, host HostServices) (*protocol.CompileSuccess, *protocol.CompileFailure, error)
}
