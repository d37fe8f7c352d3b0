// Command loom is the embedded stylesheet compiler host: it speaks a
// length-delimited protocol over stdin/stdout and exits with the process
// surface described by the wire protocol's own version handshake.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/loom/engine"
	"github.com/chazu/loom/host"
	"github.com/chazu/loom/protocol"
	"github.com/chazu/loom/version"
)

const (
	exitClean    = 0
	exitUsage    = 64
	exitProtocol = 76
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin *os.File, stdout, stderr *os.File) int {
	switch len(args) {
	case 0:
		return runDispatcher(stdin, stdout, stderr)
	case 1:
		if args[0] == "--version" {
			return printVersion(stdout)
		}
	}
	printUsage(stderr)
	return exitUsage
}

func printUsage(stderr *os.File) {
	fmt.Fprintf(stderr, "Usage: loom [--version]\n\n")
	fmt.Fprintf(stderr, "With no arguments, loom speaks the embedded compiler protocol on stdin/stdout.\n")
	fmt.Fprintf(stderr, "--version   print the version response as JSON and exit\n")
}

// printVersion writes the proto3-JSON-style VersionResponse{id:0} to
// stdout, matching what a VersionRequest{id:0} would answer on the wire.
func printVersion(stdout *os.File) int {
	resp := protocol.VersionResponse{
		ID:                    0,
		ProtocolVersion:       version.ProtocolVersion,
		CompilerVersion:       version.CompilerVersion,
		ImplementationVersion: version.ImplementationVersion,
		ImplementationName:    version.ImplementationName,
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		fmt.Fprintf(os.Stderr, "loom: %v\n", err)
		return exitProtocol
	}
	return exitClean
}

func runDispatcher(stdin, stdout, stderr *os.File) int {
	commonlog.GetLogger("loom").Infof("starting on protocol version %s", version.ProtocolVersion)

	d := host.NewDispatcher(stdin, stdout, engine.NewStylesheetEngine())
	if err := d.Run(); err != nil {
		fmt.Fprintf(stderr, "loom: %v\n", err)
		return exitProtocol
	}
	return exitClean
}
