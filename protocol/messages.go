package protocol

// ---------------------------------------------------------------------------
// Shared value and span types
// ---------------------------------------------------------------------------

// SourceSpan locates a diagnostic in source text. A zero-value SourceSpan
// with a nonempty URL marks a missing-file failure (spec.md §4.C step 4).
type SourceSpan struct {
	URL         string `cbor:"url"`
	StartLine   int    `cbor:"start_line"`
	StartColumn int    `cbor:"start_column"`
	EndLine     int    `cbor:"end_line"`
	EndColumn   int    `cbor:"end_column"`
}

// Value is the wire representation of a custom-function argument or
// return value.
type Value struct {
	String *string  `cbor:"string,omitempty"`
	Number *float64 `cbor:"number,omitempty"`
	Unit   string   `cbor:"unit,omitempty"`
	Bool   *bool    `cbor:"bool,omitempty"`
	Null   bool     `cbor:"null,omitempty"`
}

// StringValue builds a Value carrying a string.
func StringValue(s string) Value { return Value{String: &s} }

// NumberValue builds a Value carrying a dimensioned number.
func NumberValue(n float64, unit string) Value { return Value{Number: &n, Unit: unit} }

// ---------------------------------------------------------------------------
// Importers and compile inputs
// ---------------------------------------------------------------------------

// Importer identifies how one @import URL should be resolved: a bare
// filesystem base path, a host-implemented importer, or a host-implemented
// file importer. Exactly one field is set; an Importer with none set is a
// PARAMS error at CompileRequest decode time.
type Importer struct {
	Path           *string `cbor:"path,omitempty"`
	ImporterID     *uint32 `cbor:"importer_id,omitempty"`
	FileImporterID *uint32 `cbor:"file_importer_id,omitempty"`
}

// isSet reports whether at least one of the three fields is set.
func (imp Importer) isSet() bool {
	return imp.Path != nil || imp.ImporterID != nil || imp.FileImporterID != nil
}

// StringInput is inline stylesheet source.
type StringInput struct {
	Source   string    `cbor:"source"`
	Syntax   string    `cbor:"syntax,omitempty"` // "sass" style syntax hint; empty = default
	URL      string    `cbor:"url,omitempty"`
	Importer *Importer `cbor:"importer,omitempty"`
}

// PathInput is a filesystem path to compile.
type PathInput struct {
	Path string `cbor:"path"`
}

// CompileInput is the inbound union of StringInput / PathInput.
type CompileInput struct {
	String *StringInput `cbor:"string,omitempty"`
	Path   *PathInput   `cbor:"path,omitempty"`
}

// CompileFlags are the boolean toggles from spec.md §4.C step 1.
type CompileFlags struct {
	AlertColor              bool `cbor:"alert_color"`
	AlertASCII              bool `cbor:"alert_ascii"`
	QuietDeps               bool `cbor:"quiet_deps"`
	Verbose                 bool `cbor:"verbose"`
	SourceMap               bool `cbor:"source_map"`
	SourceMapIncludeSources bool `cbor:"source_map_include_sources"`
	Charset                 bool `cbor:"charset"`
}

// ---------------------------------------------------------------------------
// Inbound variants
// ---------------------------------------------------------------------------

// VersionRequest asks for the process's build-time version constants.
type VersionRequest struct {
	ID uint32 `cbor:"id"`
}

// CompileRequest starts one compilation.
type CompileRequest struct {
	ID              uint32       `cbor:"id"`
	Style           string       `cbor:"style"` // "expanded" | "compressed"
	Importers       []Importer   `cbor:"importers,omitempty"`
	GlobalFunctions []string     `cbor:"global_functions,omitempty"`
	Input           CompileInput `cbor:"input"`
	Flags           CompileFlags `cbor:"flags"`
}

// CanonicalizeResponse answers a CanonicalizeRequest.
type CanonicalizeResponse struct {
	ID       uint32 `cbor:"id"`
	URL      string `cbor:"url,omitempty"`
	NotFound bool   `cbor:"not_found,omitempty"`
	Error    string `cbor:"error,omitempty"`
}

// ImportResult carries the loaded contents for a successful ImportResponse.
type ImportResult struct {
	Contents     string `cbor:"contents"`
	Syntax       string `cbor:"syntax,omitempty"`
	SourceMapURL string `cbor:"source_map_url,omitempty"`
}

// ImportResponse answers an ImportRequest.
type ImportResponse struct {
	ID       uint32        `cbor:"id"`
	Result   *ImportResult `cbor:"result,omitempty"`
	NotFound bool          `cbor:"not_found,omitempty"`
	Error    string        `cbor:"error,omitempty"`
}

// FileImportResponse answers a FileImportRequest.
type FileImportResponse struct {
	ID       uint32 `cbor:"id"`
	FileURL  string `cbor:"file_url,omitempty"`
	NotFound bool   `cbor:"not_found,omitempty"`
	Error    string `cbor:"error,omitempty"`
}

// FunctionCallResponse answers a FunctionCallRequest.
type FunctionCallResponse struct {
	ID      uint32 `cbor:"id"`
	Success *Value `cbor:"success,omitempty"`
	Error   string `cbor:"error,omitempty"`
}

// InboundMessage is the tagged union over host→compiler messages. Exactly
// one field should be set; WhichInbound reports which one.
type InboundMessage struct {
	VersionRequest        *VersionRequest        `cbor:"1,keyasint,omitempty"`
	CompileRequest        *CompileRequest        `cbor:"2,keyasint,omitempty"`
	CanonicalizeResponse  *CanonicalizeResponse  `cbor:"3,keyasint,omitempty"`
	ImportResponse        *ImportResponse        `cbor:"4,keyasint,omitempty"`
	FileImportResponse    *FileImportResponse    `cbor:"5,keyasint,omitempty"`
	FunctionCallResponse  *FunctionCallResponse  `cbor:"6,keyasint,omitempty"`
}

// InboundKind discriminates InboundMessage's variants.
type InboundKind int

const (
	InboundNotSet InboundKind = iota
	InboundVersionRequestKind
	InboundCompileRequestKind
	InboundCanonicalizeResponseKind
	InboundImportResponseKind
	InboundFileImportResponseKind
	InboundFunctionCallResponseKind
	inboundUnknown
)

// WhichInbound reports the populated variant of m.
func WhichInbound(m *InboundMessage) InboundKind {
	switch {
	case m.VersionRequest != nil:
		return InboundVersionRequestKind
	case m.CompileRequest != nil:
		return InboundCompileRequestKind
	case m.CanonicalizeResponse != nil:
		return InboundCanonicalizeResponseKind
	case m.ImportResponse != nil:
		return InboundImportResponseKind
	case m.FileImportResponse != nil:
		return InboundFileImportResponseKind
	case m.FunctionCallResponse != nil:
		return InboundFunctionCallResponseKind
	default:
		return InboundNotSet
	}
}

// InboundID returns the id carried by m's populated variant. Every inbound
// variant carries an id, so the only failure mode is an unset union.
func InboundID(m *InboundMessage) (uint32, *ProtocolError) {
	switch WhichInbound(m) {
	case InboundVersionRequestKind:
		return m.VersionRequest.ID, nil
	case InboundCompileRequestKind:
		return m.CompileRequest.ID, nil
	case InboundCanonicalizeResponseKind:
		return m.CanonicalizeResponse.ID, nil
	case InboundImportResponseKind:
		return m.ImportResponse.ID, nil
	case InboundFileImportResponseKind:
		return m.FileImportResponse.ID, nil
	case InboundFunctionCallResponseKind:
		return m.FunctionCallResponse.ID, nil
	default:
		return 0, NewUnattributedError(ErrorParse, "InboundMessage.message is not set.")
	}
}

// ---------------------------------------------------------------------------
// Outbound variants
// ---------------------------------------------------------------------------

// VersionResponse answers a VersionRequest with build-time constants. It
// also carries json tags: --version prints this struct as pretty-printed
// JSON (the proto3 JSON field-name mapping) rather than the CBOR wire
// envelope.
type VersionResponse struct {
	ID                    uint32 `cbor:"id" json:"id"`
	ProtocolVersion       string `cbor:"protocol_version" json:"protocolVersion"`
	CompilerVersion       string `cbor:"compiler_version" json:"compilerVersion"`
	ImplementationVersion string `cbor:"implementation_version" json:"implementationVersion"`
	ImplementationName    string `cbor:"implementation_name" json:"implementationName"`
}

// CompileSuccess is the successful outcome of a compilation.
type CompileSuccess struct {
	CSS        string   `cbor:"css"`
	SourceMap  string   `cbor:"source_map,omitempty"`
	LoadedURLs []string `cbor:"loaded_urls,omitempty"`
}

// CompileFailure is the unsuccessful outcome of a compilation.
type CompileFailure struct {
	Message    string     `cbor:"message"`
	Span       SourceSpan `cbor:"span"`
	StackTrace string     `cbor:"stack_trace,omitempty"`
	Formatted  string     `cbor:"formatted"`
}

// CompileResponse concludes one compilation.
type CompileResponse struct {
	ID      uint32          `cbor:"id"`
	Success *CompileSuccess `cbor:"success,omitempty"`
	Failure *CompileFailure `cbor:"failure,omitempty"`
}

// CanonicalizeRequest asks the host to canonicalize an @import URL through
// one of its registered importers.
type CanonicalizeRequest struct {
	ID         uint32 `cbor:"id"`
	ImporterID uint32 `cbor:"importer_id"`
	URL        string `cbor:"url"`
	FromImport bool   `cbor:"from_import,omitempty"`
}

// ImportRequest asks the host to load a canonicalized URL's contents.
type ImportRequest struct {
	ID         uint32 `cbor:"id"`
	ImporterID uint32 `cbor:"importer_id"`
	URL        string `cbor:"url"`
}

// FileImportRequest asks a file importer to resolve a URL to a file: URL.
type FileImportRequest struct {
	ID         uint32 `cbor:"id"`
	ImporterID uint32 `cbor:"importer_id"`
	URL        string `cbor:"url"`
	FromImport bool   `cbor:"from_import,omitempty"`
}

// FunctionCallRequest invokes a custom function registered by the host.
type FunctionCallRequest struct {
	ID        uint32  `cbor:"id"`
	Name      string  `cbor:"name"`
	Arguments []Value `cbor:"arguments,omitempty"`
}

// LogLevel is a LogEvent's severity.
type LogLevel int

const (
	LogWarning LogLevel = iota
	LogDeprecationWarning
	LogDebug
)

// LogEvent is a fire-and-forget diagnostic tagged with the compilation
// that produced it.
type LogEvent struct {
	CompilationID uint32      `cbor:"compilation_id"`
	Level         LogLevel    `cbor:"level"`
	Message       string      `cbor:"message"`
	Span          *SourceSpan `cbor:"span,omitempty"`
	StackTrace    string      `cbor:"stack_trace,omitempty"`
	Formatted     string      `cbor:"formatted"`
}

// Error is a fatal protocol error report.
type Error struct {
	ID      uint32    `cbor:"id"`
	Type    ErrorKind `cbor:"type"`
	Message string    `cbor:"message"`
}

// OutboundMessage is the tagged union over compiler→host messages.
type OutboundMessage struct {
	VersionResponse      *VersionResponse      `cbor:"1,keyasint,omitempty"`
	CompileResponse      *CompileResponse      `cbor:"2,keyasint,omitempty"`
	CanonicalizeRequest  *CanonicalizeRequest  `cbor:"3,keyasint,omitempty"`
	ImportRequest        *ImportRequest        `cbor:"4,keyasint,omitempty"`
	FileImportRequest    *FileImportRequest    `cbor:"5,keyasint,omitempty"`
	FunctionCallRequest  *FunctionCallRequest  `cbor:"6,keyasint,omitempty"`
	LogEvent             *LogEvent             `cbor:"7,keyasint,omitempty"`
	Error                *Error                `cbor:"8,keyasint,omitempty"`
}

// OutboundKind discriminates OutboundMessage's variants.
type OutboundKind int

const (
	OutboundNotSet OutboundKind = iota
	OutboundVersionResponseKind
	OutboundCompileResponseKind
	OutboundCanonicalizeRequestKind
	OutboundImportRequestKind
	OutboundFileImportRequestKind
	OutboundFunctionCallRequestKind
	OutboundLogEventKind
	OutboundErrorKind
)

// WhichOutbound reports the populated variant of m.
func WhichOutbound(m *OutboundMessage) OutboundKind {
	switch {
	case m.VersionResponse != nil:
		return OutboundVersionResponseKind
	case m.CompileResponse != nil:
		return OutboundCompileResponseKind
	case m.CanonicalizeRequest != nil:
		return OutboundCanonicalizeRequestKind
	case m.ImportRequest != nil:
		return OutboundImportRequestKind
	case m.FileImportRequest != nil:
		return OutboundFileImportRequestKind
	case m.FunctionCallRequest != nil:
		return OutboundFunctionCallRequestKind
	case m.LogEvent != nil:
		return OutboundLogEventKind
	case m.Error != nil:
		return OutboundErrorKind
	default:
		return OutboundNotSet
	}
}

// OutboundID returns the id of m's populated variant. LogEvent and Error
// carry no generic request id (LogEvent keys off CompilationID; Error's id
// is set explicitly by its constructor), so callers must supply those ids
// directly rather than through this accessor.
func OutboundID(m *OutboundMessage) (uint32, *ProtocolError) {
	switch WhichOutbound(m) {
	case OutboundVersionResponseKind:
		return m.VersionResponse.ID, nil
	case OutboundCompileResponseKind:
		return m.CompileResponse.ID, nil
	case OutboundCanonicalizeRequestKind:
		return m.CanonicalizeRequest.ID, nil
	case OutboundImportRequestKind:
		return m.ImportRequest.ID, nil
	case OutboundFileImportRequestKind:
		return m.FileImportRequest.ID, nil
	case OutboundFunctionCallRequestKind:
		return m.FunctionCallRequest.ID, nil
	case OutboundLogEventKind, OutboundErrorKind:
		return 0, NewUnattributedError(ErrorInternal, "id is not defined for LogEvent or Error; set it explicitly")
	default:
		return 0, NewUnattributedError(ErrorInternal, "Unknown message type: OutboundMessage has no variant set")
	}
}

// SetOutboundID overwrites the id of m's populated variant. Like
// OutboundID, this is undefined for LogEvent and Error.
func SetOutboundID(m *OutboundMessage, id uint32) *ProtocolError {
	switch WhichOutbound(m) {
	case OutboundVersionResponseKind:
		m.VersionResponse.ID = id
	case OutboundCompileResponseKind:
		m.CompileResponse.ID = id
	case OutboundCanonicalizeRequestKind:
		m.CanonicalizeRequest.ID = id
	case OutboundImportRequestKind:
		m.ImportRequest.ID = id
	case OutboundFileImportRequestKind:
		m.FileImportRequest.ID = id
	case OutboundFunctionCallRequestKind:
		m.FunctionCallRequest.ID = id
	case OutboundLogEventKind, OutboundErrorKind:
		return NewUnattributedError(ErrorInternal, "id is not defined for LogEvent or Error; set it explicitly")
	default:
		return NewUnattributedError(ErrorInternal, "Unknown message type: OutboundMessage has no variant set")
	}
	return nil
}
