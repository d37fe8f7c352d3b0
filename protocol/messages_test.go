package protocol

import "testing"

func TestWhichInboundNotSet(t *testing.T) {
	m := &InboundMessage{}
	if got := WhichInbound(m); got != InboundNotSet {
		t.Errorf("WhichInbound(empty) = %v, want InboundNotSet", got)
	}
	if _, perr := InboundID(m); perr == nil || perr.Kind != ErrorParse {
		t.Fatalf("InboundID(empty) = %v, want ErrorParse", perr)
	} else if perr.Message != "InboundMessage.message is not set." {
		t.Errorf("InboundID(empty).Message = %q", perr.Message)
	}
}

func TestInboundIDPerVariant(t *testing.T) {
	m := &InboundMessage{VersionRequest: &VersionRequest{ID: 7}}
	if got := WhichInbound(m); got != InboundVersionRequestKind {
		t.Errorf("WhichInbound = %v, want InboundVersionRequestKind", got)
	}
	id, perr := InboundID(m)
	if perr != nil {
		t.Fatalf("InboundID: %v", perr)
	}
	if id != 7 {
		t.Errorf("InboundID = %d, want 7", id)
	}
}

func TestOutboundIDAndSet(t *testing.T) {
	m := &OutboundMessage{CompileResponse: &CompileResponse{ID: 1}}
	id, perr := OutboundID(m)
	if perr != nil || id != 1 {
		t.Fatalf("OutboundID = (%d, %v), want (1, nil)", id, perr)
	}
	if perr := SetOutboundID(m, 42); perr != nil {
		t.Fatalf("SetOutboundID: %v", perr)
	}
	if m.CompileResponse.ID != 42 {
		t.Errorf("CompileResponse.ID = %d, want 42", m.CompileResponse.ID)
	}
}

func TestOutboundIDUndefinedForLogEventAndError(t *testing.T) {
	for _, m := range []*OutboundMessage{
		{LogEvent: &LogEvent{CompilationID: 3}},
		{Error: &Error{ID: ErrorID}},
	} {
		if _, perr := OutboundID(m); perr == nil {
			t.Errorf("OutboundID(%+v): want error, got nil", m)
		}
		if perr := SetOutboundID(m, 1); perr == nil {
			t.Errorf("SetOutboundID(%+v): want error, got nil", m)
		}
	}
}
