package protocol

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// cborEncMode is canonical (deterministic key ordering), matching the
// envelope's use as a length-framed wire format where byte-for-byte
// reproducibility matters for tests (see TestVersionResponseDeterministic).
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("protocol: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// validInboundKeys bounds the known oneof tag numbers in InboundMessage.
var validInboundKeys = map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true, 6: true}

// MarshalInbound encodes an InboundMessage envelope.
func MarshalInbound(m *InboundMessage) ([]byte, error) {
	return cborEncMode.Marshal(m)
}

// UnmarshalInbound decodes one InboundMessage envelope, enforcing the
// not-set and unknown-variant error messages required by spec.md §4.B.
func UnmarshalInbound(data []byte) (*InboundMessage, *ProtocolError) {
	if kind, ok := unknownUnionKey(data, validInboundKeys); !ok {
		return nil, NewUnattributedError(ErrorParse, "Unknown message type: %d", kind)
	}

	var m InboundMessage
	if err := cbor.Unmarshal(data, &m); err != nil {
		return nil, NewUnattributedError(ErrorParse, "malformed InboundMessage: %v", err)
	}
	if WhichInbound(&m) == InboundNotSet {
		return nil, NewUnattributedError(ErrorParse, "InboundMessage.message is not set.")
	}
	if m.CompileRequest != nil {
		if perr := validateImporters(m.CompileRequest); perr != nil {
			return nil, perr
		}
	}
	return &m, nil
}

// validateImporters enforces that every Importer named by req has at least
// one of Path / ImporterID / FileImporterID set, per the Importer godoc: an
// Importer with none set is a PARAMS error at CompileRequest decode time.
func validateImporters(req *CompileRequest) *ProtocolError {
	for _, imp := range req.Importers {
		if !imp.isSet() {
			return NewProtocolError(req.ID, ErrorParams, "Importer has none of path, importer_id, file_importer_id set.")
		}
	}
	if s := req.Input.String; s != nil && s.Importer != nil && !s.Importer.isSet() {
		return NewProtocolError(req.ID, ErrorParams, "Importer has none of path, importer_id, file_importer_id set.")
	}
	return nil
}

// MarshalOutbound encodes an OutboundMessage envelope.
func MarshalOutbound(m *OutboundMessage) ([]byte, error) {
	return cborEncMode.Marshal(m)
}

// UnmarshalOutbound decodes one OutboundMessage envelope. Used by tests
// that assert on what the dispatcher wrote to stdout.
func UnmarshalOutbound(data []byte) (*OutboundMessage, error) {
	var m OutboundMessage
	if err := cbor.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("protocol: malformed OutboundMessage: %w", err)
	}
	return &m, nil
}

// unknownUnionKey reports whether every integer map key in a top-level
// CBOR map is among allowed. It returns the first disallowed key found
// (or 0) and whether the check passed.
func unknownUnionKey(data []byte, allowed map[int]bool) (int, bool) {
	var raw map[int]cbor.RawMessage
	if err := cbor.Unmarshal(data, &raw); err != nil {
		// Not a map we can inspect this way; let the struct decode surface
		// the real error.
		return 0, true
	}
	for k := range raw {
		if !allowed[k] {
			return k, false
		}
	}
	return 0, true
}
