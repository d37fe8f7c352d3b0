package host

import (
	"errors"
	"fmt"

	"github.com/chazu/loom/engine"
	"github.com/chazu/loom/protocol"
)

// worker is one goroutine owning exactly one compilation context at a
// time, paired bidirectionally with the root dispatcher by two unbuffered
// channels. It mirrors the single-goroutine-owns-a-resource shape used
// elsewhere for serializing access to a shared resource, generalized here
// to one resource (a compilation) per worker rather than one shared VM.
type worker struct {
	id       uint32
	inbound  chan *protocol.InboundMessage
	outbound chan *protocol.OutboundMessage
	engine   engine.Engine
}

func newWorker(id uint32, eng engine.Engine) *worker {
	return &worker{
		id:       id,
		inbound:  make(chan *protocol.InboundMessage),
		outbound: make(chan *protocol.OutboundMessage),
		engine:   eng,
	}
}

// run processes CompileRequests one at a time for the worker's lifetime.
// Between compilations the worker blocks on inbound, which is exactly the
// idle state the pool observes when it holds the worker in its idle set.
func (w *worker) run() {
	for msg := range w.inbound {
		req := msg.CompileRequest
		if req == nil {
			// The dispatcher only ever forwards a CompileRequest to an idle
			// worker's inbound channel; anything else arriving here would be
			// a dispatcher bug, not a wire error. Drop it rather than wedge.
			continue
		}
		w.outbound <- &protocol.OutboundMessage{CompileResponse: w.compile(req)}
	}
}

// compile runs one compilation to completion, translating both engine
// results and engine panics into a CompileResponse per spec step 4.
func (w *worker) compile(req *protocol.CompileRequest) *protocol.CompileResponse {
	success, failure, err := w.runEngine(req)
	switch {
	case err != nil:
		return &protocol.CompileResponse{Failure: &protocol.CompileFailure{Message: err.Error()}}
	case failure != nil:
		return &protocol.CompileResponse{Failure: failure}
	default:
		return &protocol.CompileResponse{Success: success}
	}
}

// runEngine isolates the engine invocation so a panic inside it surfaces
// as an error rather than unwinding the worker goroutine (and, through it,
// the dispatcher's address space).
func (w *worker) runEngine(req *protocol.CompileRequest) (success *protocol.CompileSuccess, failure *protocol.CompileFailure, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	host := &workerHostServices{w: w, logger: newCompileLogger(w.id, w.outbound, req.Flags)}
	return w.engine.Compile(req, host)
}

// call enforces the single-outstanding-callback constraint: emit one
// outbound request, then block until exactly one matching inbound message
// arrives. The root dispatcher is responsible for assigning the outbound
// id and for routing the eventual response back onto w.inbound.
func (w *worker) call(msg *protocol.OutboundMessage) *protocol.InboundMessage {
	w.outbound <- msg
	return <-w.inbound
}

// workerHostServices implements engine.HostServices on top of one worker's
// call, translating each blocking callback into the matching outbound
// request / inbound response pair.
type workerHostServices struct {
	w      *worker
	logger *compileLogger
}

func (h *workerHostServices) Canonicalize(importerID uint32, url string, fromImport bool) (string, bool, error) {
	resp := h.w.call(&protocol.OutboundMessage{CanonicalizeRequest: &protocol.CanonicalizeRequest{
		ImporterID: importerID,
		URL:        url,
		FromImport: fromImport,
	}})
	cr := resp.CanonicalizeResponse
	if cr == nil {
		return "", false, fmt.Errorf("expected CanonicalizeResponse, got %v", protocol.WhichInbound(resp))
	}
	if cr.Error != "" {
		return "", false, errors.New(cr.Error)
	}
	if cr.NotFound {
		return "", false, nil
	}
	return cr.URL, true, nil
}

func (h *workerHostServices) Load(importerID uint32, canonicalURL string) (protocol.ImportResult, bool, error) {
	resp := h.w.call(&protocol.OutboundMessage{ImportRequest: &protocol.ImportRequest{
		ImporterID: importerID,
		URL:        canonicalURL,
	}})
	ir := resp.ImportResponse
	if ir == nil {
		return protocol.ImportResult{}, false, fmt.Errorf("expected ImportResponse, got %v", protocol.WhichInbound(resp))
	}
	if ir.Error != "" {
		return protocol.ImportResult{}, false, errors.New(ir.Error)
	}
	if ir.NotFound || ir.Result == nil {
		return protocol.ImportResult{}, false, nil
	}
	return *ir.Result, true, nil
}

func (h *workerHostServices) FileImport(importerID uint32, url string, fromImport bool) (string, bool, error) {
	resp := h.w.call(&protocol.OutboundMessage{FileImportRequest: &protocol.FileImportRequest{
		ImporterID: importerID,
		URL:        url,
		FromImport: fromImport,
	}})
	fr := resp.FileImportResponse
	if fr == nil {
		return "", false, fmt.Errorf("expected FileImportResponse, got %v", protocol.WhichInbound(resp))
	}
	if fr.Error != "" {
		return "", false, errors.New(fr.Error)
	}
	if fr.NotFound {
		return "", false, nil
	}
	return fr.FileURL, true, nil
}

func (h *workerHostServices) FunctionCall(name string, args []protocol.Value) (protocol.Value, error) {
	resp := h.w.call(&protocol.OutboundMessage{FunctionCallRequest: &protocol.FunctionCallRequest{
		Name:      name,
		Arguments: args,
	}})
	fr := resp.FunctionCallResponse
	if fr == nil {
		return protocol.Value{}, fmt.Errorf("expected FunctionCallResponse, got %v", protocol.WhichInbound(resp))
	}
	if fr.Error != "" {
		return protocol.Value{}, errors.New(fr.Error)
	}
	if fr.Success == nil {
		return protocol.Value{}, nil
	}
	return *fr.Success, nil
}

func (h *workerHostServices) Log(level protocol.LogLevel, message string, span *protocol.SourceSpan, stackTrace string) {
	h.logger.emit(level, message, span, stackTrace)
}
