package engine

import (
	"github.com/chazu/loom/engine/stylesheet"
	"github.com/chazu/loom/protocol"
)

// StylesheetEngine is the default Engine, backed by package
// engine/stylesheet.
type StylesheetEngine struct{}

// NewStylesheetEngine constructs the default Engine.
func NewStylesheetEngine() *StylesheetEngine {
	return &StylesheetEngine{}
}

// Compile implements Engine.
func (StylesheetEngine) Compile(req *protocol.CompileRequest, host HostServices) (*protocol.CompileSuccess, *protocol.CompileFailure, error) {
	return stylesheet.Compile(req, host)
}
