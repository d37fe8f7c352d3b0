// Package host implements the protocol dispatch layer: the root
// dispatcher, the per-compilation worker, the bounded worker pool, and the
// outstanding-request bookkeeping that multiplexes compilations and their
// callbacks onto a single stdio connection.
package host

import (
	"fmt"
	"io"

	"github.com/tliron/commonlog"

	"github.com/chazu/loom/engine"
	"github.com/chazu/loom/protocol"
	"github.com/chazu/loom/version"
)

// Dispatcher owns stdio and is the single-threaded cooperative reader
// described in spec §4.D: it parses inbound frames, answers VersionRequest
// directly, routes CompileRequest to the pool, and routes callback
// responses back to the worker that is waiting on them.
type Dispatcher struct {
	reader *protocol.FrameReader
	writer *protocol.FrameWriter
	pool   *pool
	outst  *outstandingTable
	fanIn  chan *protocol.OutboundMessage
	log    commonlog.Logger
}

// NewDispatcher constructs a Dispatcher reading inbound frames from r and
// writing outbound frames to w, driving compilations through eng.
func NewDispatcher(r io.Reader, w io.Writer, eng engine.Engine) *Dispatcher {
	return &Dispatcher{
		reader: protocol.NewFrameReader(r),
		writer: protocol.NewFrameWriter(w),
		pool:   newPool(eng),
		outst:  newOutstandingTable(),
		fanIn:  make(chan *protocol.OutboundMessage),
		log:    commonlog.GetLogger("loom.host"),
	}
}

// inboundEvent is one decoded item off the stdin stream, or the terminal
// condition that ended it.
type inboundEvent struct {
	msg *protocol.InboundMessage
	err *protocol.ProtocolError
	eof bool
}

// Run drives the dispatcher until stdin EOF (returns nil) or a fatal
// protocol error (returns non-nil; callers should exit 76). On stdin EOF
// it returns at once without waiting for compilations still in flight:
// their workers and pumpWorker goroutines are abandoned, per the
// "abandon, don't await" policy recorded in DESIGN.md.
func (d *Dispatcher) Run() error {
	events := d.readEvents()

	for {
		select {
		case ev := <-events:
			if ev.eof {
				return nil
			}
			if ev.err != nil {
				return d.fail(ev.err)
			}
			if err := d.handleInbound(ev.msg); err != nil {
				return d.fail(err)
			}
		case out := <-d.fanIn:
			if err := d.write(out); err != nil {
				return err
			}
		}
	}
}

// readEvents starts the background frame reader and returns the channel
// it publishes decoded messages (or the terminal EOF/error) on. This is
// the one blocking read the main select loop cannot perform inline, since
// it also has to service the worker fan-in channel concurrently.
func (d *Dispatcher) readEvents() <-chan inboundEvent {
	events := make(chan inboundEvent)
	go func() {
		defer close(events)
		for {
			payload, err := d.reader.ReadFrame()
			if err != nil {
				if err == io.EOF {
					events <- inboundEvent{eof: true}
					return
				}
				events <- inboundEvent{err: protocol.NewUnattributedError(protocol.ErrorParse, "%v", err)}
				return
			}
			msg, perr := protocol.UnmarshalInbound(payload)
			if perr != nil {
				events <- inboundEvent{err: perr}
				return
			}
			events <- inboundEvent{msg: msg}
		}
	}()
	return events
}

// handleInbound dispatches one decoded InboundMessage by tag.
func (d *Dispatcher) handleInbound(msg *protocol.InboundMessage) *protocol.ProtocolError {
	switch protocol.WhichInbound(msg) {
	case protocol.InboundVersionRequestKind:
		return d.handleVersionRequest(msg.VersionRequest)
	case protocol.InboundCompileRequestKind:
		return d.handleCompileRequest(msg.CompileRequest)
	case protocol.InboundCanonicalizeResponseKind,
		protocol.InboundImportResponseKind,
		protocol.InboundFileImportResponseKind,
		protocol.InboundFunctionCallResponseKind:
		return d.routeResponse(msg)
	default:
		return protocol.NewUnattributedError(protocol.ErrorParse, "InboundMessage.message is not set.")
	}
}

func (d *Dispatcher) handleVersionRequest(req *protocol.VersionRequest) *protocol.ProtocolError {
	resp := &protocol.OutboundMessage{VersionResponse: &protocol.VersionResponse{
		ID:                    req.ID,
		ProtocolVersion:       version.ProtocolVersion,
		CompilerVersion:       version.CompilerVersion,
		ImplementationVersion: version.ImplementationVersion,
		ImplementationName:    version.ImplementationName,
	}}
	if err := d.write(resp); err != nil {
		return protocol.NewUnattributedError(protocol.ErrorInternal, "%v", err)
	}
	return nil
}

// handleCompileRequest spawns the goroutine that acquires a worker, hands
// it the request, and drains its outbound channel. Acquisition happens
// off the main select loop deliberately: when the pool is saturated,
// acquire() blocks, and the dispatcher must keep servicing inbound frames
// for the compilations already running (including the callback responses
// those workers are waiting on) rather than stall behind the 16th request.
func (d *Dispatcher) handleCompileRequest(req *protocol.CompileRequest) *protocol.ProtocolError {
	go d.pumpWorker(req)
	return nil
}

// pumpWorker acquires a worker, forwards req to it, and then forwards
// everything the worker emits onto the fan-in channel, assigning outbound
// ids for callback requests (and recording them in the outstanding table)
// until the worker's CompileResponse arrives, at which point the worker is
// released back to the pool. This is the Go-idiomatic stand-in for a
// select over a dynamic, growing set of worker channels: each compilation
// gets its own forwarding goroutine instead.
func (d *Dispatcher) pumpWorker(req *protocol.CompileRequest) {
	w := d.pool.acquire()
	originalID := req.ID
	w.inbound <- &protocol.InboundMessage{CompileRequest: req}

	for out := range w.outbound {
		if out.CompileResponse != nil {
			out.CompileResponse.ID = originalID
			d.fanIn <- out
			d.pool.release(w)
			return
		}
		if out.LogEvent != nil {
			d.fanIn <- out
			continue
		}
		id := d.outst.insert(w.inbound)
		_ = protocol.SetOutboundID(out, id)
		d.fanIn <- out
	}
}

// routeResponse delivers a callback response to the worker awaiting it,
// per the id recorded when the matching request was forwarded.
func (d *Dispatcher) routeResponse(msg *protocol.InboundMessage) *protocol.ProtocolError {
	id, perr := protocol.InboundID(msg)
	if perr != nil {
		return perr
	}
	sink, ok := d.outst.takeAndFree(id)
	if !ok {
		return protocol.NewProtocolError(id, protocol.ErrorParams, "response id %d has no outstanding request", id)
	}
	sink <- msg
	return nil
}

func (d *Dispatcher) write(out *protocol.OutboundMessage) error {
	data, err := protocol.MarshalOutbound(out)
	if err != nil {
		return fmt.Errorf("protocol: encoding outbound message: %w", err)
	}
	return d.writer.WriteFrame(data)
}

// fail reports perr to the host as a final Error frame, logs the
// required stderr diagnostic, and returns the error so the caller can
// translate it into exit code 76.
func (d *Dispatcher) fail(perr *protocol.ProtocolError) error {
	switch {
	case perr.Kind == protocol.ErrorInternal:
		d.log.Errorf("Internal compiler error: %s", perr.Message)
	case perr.ID == protocol.ErrorID:
		d.log.Errorf("Host caused %s error: %s", perr.Kind, perr.Message)
	default:
		d.log.Errorf("Host caused %s error with request %d: %s", perr.Kind, perr.ID, perr.Message)
	}
	_ = d.write(&protocol.OutboundMessage{Error: &protocol.Error{
		ID:      perr.ID,
		Type:    perr.Kind,
		Message: perr.Message,
	}})
	return perr
}
