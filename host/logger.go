package host

import (
	"fmt"

	"github.com/chazu/loom/protocol"
)

// compileLogger builds LogEvent messages for one compilation and hands them
// to the worker's outbound channel exactly like any other outbound
// message. It is not a side channel: a slow host backpressures log
// delivery the same way it backpressures everything else from that
// compilation, which is correct ordering behavior relative to the rest of
// the compilation's traffic.
type compileLogger struct {
	compilationID uint32
	outbound      chan<- *protocol.OutboundMessage
	color         bool
	asciiOnly     bool
}

func newCompileLogger(compilationID uint32, outbound chan<- *protocol.OutboundMessage, flags protocol.CompileFlags) *compileLogger {
	return &compileLogger{
		compilationID: compilationID,
		outbound:      outbound,
		color:         flags.AlertColor,
		asciiOnly:     flags.AlertASCII,
	}
}

func (l *compileLogger) emit(level protocol.LogLevel, message string, span *protocol.SourceSpan, stackTrace string) {
	l.outbound <- &protocol.OutboundMessage{LogEvent: &protocol.LogEvent{
		CompilationID: l.compilationID,
		Level:         level,
		Message:       message,
		Span:          span,
		StackTrace:    stackTrace,
		Formatted:     l.format(level, message),
	}}
}

// format renders the plain-text diagnostic banner honoring the
// alert_color / alert_ascii flags from the compile request.
func (l *compileLogger) format(level protocol.LogLevel, message string) string {
	bullet := "━" // heavy horizontal, matches non-ASCII box-drawing diagnostics
	if l.asciiOnly {
		bullet = "="
	}
	banner := fmt.Sprintf("%s %s %s", bullet, levelLabel(level), bullet)
	if l.color {
		return ansiColorFor(level) + banner + ansiReset + "\n" + message
	}
	return banner + "\n" + message
}

func levelLabel(level protocol.LogLevel) string {
	switch level {
	case protocol.LogWarning:
		return "WARNING"
	case protocol.LogDeprecationWarning:
		return "DEPRECATION WARNING"
	case protocol.LogDebug:
		return "DEBUG"
	default:
		return "LOG"
	}
}

const ansiReset = "\x1b[0m"

func ansiColorFor(level protocol.LogLevel) string {
	switch level {
	case protocol.LogWarning, protocol.LogDeprecationWarning:
		return "\x1b[33m" // yellow
	default:
		return "\x1b[36m" // cyan
	}
}
