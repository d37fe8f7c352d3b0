package protocol

import "fmt"

// ErrorKind is the three-way wire error taxonomy.
type ErrorKind int

const (
	// ErrorParse marks a malformed inbound frame, an unrecognized message
	// variant, or a not-set oneof.
	ErrorParse ErrorKind = iota
	// ErrorParams marks a well-formed message that is semantically
	// invalid: a missing mandatory field, or a response id with no
	// outstanding request.
	ErrorParams
	// ErrorInternal marks any unexpected failure inside the compiler host.
	ErrorInternal
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorParse:
		return "parse"
	case ErrorParams:
		return "params"
	case ErrorInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// ErrorID is the sentinel id used on Error frames that are not
// attributable to a specific inbound request.
const ErrorID uint32 = 0xFFFFFFFF

// ProtocolError is a fatal error detected by the root dispatcher. Every
// ProtocolError is reported to the host as an Error frame and terminates
// the process with exit code 76.
type ProtocolError struct {
	ID      uint32
	Kind    ErrorKind
	Message string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s error (id=%d): %s", e.Kind, e.ID, e.Message)
}

// NewProtocolError builds a ProtocolError attributed to id.
func NewProtocolError(id uint32, kind ErrorKind, format string, args ...any) *ProtocolError {
	return &ProtocolError{ID: id, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NewUnattributedError builds a ProtocolError carrying the sentinel
// ErrorID, for failures that cannot be traced to one inbound request
// (e.g. a truncated frame).
func NewUnattributedError(kind ErrorKind, format string, args ...any) *ProtocolError {
	return NewProtocolError(ErrorID, kind, format, args...)
}
