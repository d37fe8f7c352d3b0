package protocol

import "testing"

func TestMarshalUnmarshalInboundRoundTrip(t *testing.T) {
	original := &InboundMessage{
		CompileRequest: &CompileRequest{
			ID:    1,
			Style: "expanded",
			Input: CompileInput{String: &StringInput{Source: "a {b: 1px}"}},
		},
	}

	data, err := MarshalInbound(original)
	if err != nil {
		t.Fatalf("MarshalInbound: %v", err)
	}

	decoded, perr := UnmarshalInbound(data)
	if perr != nil {
		t.Fatalf("UnmarshalInbound: %v", perr)
	}
	if decoded.CompileRequest == nil || decoded.CompileRequest.ID != 1 {
		t.Fatalf("decoded = %+v", decoded)
	}
	if decoded.CompileRequest.Input.String.Source != "a {b: 1px}" {
		t.Errorf("Source = %q", decoded.CompileRequest.Input.String.Source)
	}
}

func TestUnmarshalInboundNotSet(t *testing.T) {
	data, err := MarshalInbound(&InboundMessage{})
	if err != nil {
		t.Fatalf("MarshalInbound: %v", err)
	}
	_, perr := UnmarshalInbound(data)
	if perr == nil || perr.Kind != ErrorParse {
		t.Fatalf("UnmarshalInbound(empty) = %v, want ErrorParse", perr)
	}
}

func TestUnmarshalInboundUnsetImporterInImportersListIsParamsError(t *testing.T) {
	data, err := MarshalInbound(&InboundMessage{CompileRequest: &CompileRequest{
		ID:        5,
		Importers: []Importer{{}},
		Input:     CompileInput{String: &StringInput{Source: "a {b: 1px}"}},
	}})
	if err != nil {
		t.Fatalf("MarshalInbound: %v", err)
	}
	_, perr := UnmarshalInbound(data)
	if perr == nil || perr.Kind != ErrorParams {
		t.Fatalf("UnmarshalInbound = %v, want ErrorParams", perr)
	}
	if perr.ID != 5 {
		t.Errorf("ID = %d, want 5", perr.ID)
	}
}

func TestUnmarshalInboundUnsetImporterOnStringInputIsParamsError(t *testing.T) {
	data, err := MarshalInbound(&InboundMessage{CompileRequest: &CompileRequest{
		ID:    6,
		Input: CompileInput{String: &StringInput{Source: "a {b: 1px}", Importer: &Importer{}}},
	}})
	if err != nil {
		t.Fatalf("MarshalInbound: %v", err)
	}
	_, perr := UnmarshalInbound(data)
	if perr == nil || perr.Kind != ErrorParams {
		t.Fatalf("UnmarshalInbound = %v, want ErrorParams", perr)
	}
}

func TestUnmarshalInboundSetImporterIsAccepted(t *testing.T) {
	id := uint32(0)
	data, err := MarshalInbound(&InboundMessage{CompileRequest: &CompileRequest{
		ID:        7,
		Importers: []Importer{{ImporterID: &id}},
		Input:     CompileInput{String: &StringInput{Source: "a {b: 1px}"}},
	}})
	if err != nil {
		t.Fatalf("MarshalInbound: %v", err)
	}
	if _, perr := UnmarshalInbound(data); perr != nil {
		t.Fatalf("UnmarshalInbound: %v", perr)
	}
}

func TestVersionResponseDeterministic(t *testing.T) {
	build := func(id uint32) *OutboundMessage {
		return &OutboundMessage{VersionResponse: &VersionResponse{
			ID:                    id,
			ProtocolVersion:       "1",
			CompilerVersion:       "2.0.0",
			ImplementationVersion: "2.0.0",
			ImplementationName:    "loom",
		}}
	}

	a, err := MarshalOutbound(build(7))
	if err != nil {
		t.Fatalf("MarshalOutbound: %v", err)
	}
	b, err := MarshalOutbound(build(7))
	if err != nil {
		t.Fatalf("MarshalOutbound: %v", err)
	}
	if string(a) != string(b) {
		t.Errorf("two VersionResponse{id=7} encodings differ: %x vs %x", a, b)
	}
}
