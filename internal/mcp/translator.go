package mcp

import (
	"encoding/json"

	"github.com/thoreinstein/mcpm/internal/errors"
)

// Translator converts between canonical servers and one editor's native
// server objects.
//
// Each editor adapter (Cursor, Windsurf, VS Code) implements this interface
// for the objects stored under its server map. Document-level concerns such
// as the map key, inputs, or a foreign settings document are the adapter's
// job, not the translator's.
//
// # Translation Flow
//
// When reading:
//
//	native object -> Translator.Decode() -> *Server
//
// When writing:
//
//	*Server -> Translator.Encode() -> native object
//
// # Unknown Field Preservation
//
// Implementations MUST keep native fields they do not model in
// [Server.Extra] and write them back unchanged, so a round trip never loses
// data the editor or the user put there.
//
// # Error Handling
//
// Implementations return [ErrTransportFieldMismatch] for a native object
// whose populated fields contradict its transport, and
// errors.ErrTransportUnsupported when asked to encode a transport the
// editor cannot store.
type Translator interface {
	// Decode converts the native object stored under name.
	Decode(name string, raw json.RawMessage) (*Server, error)

	// Encode converts s to its native object. The name is not part of the
	// object; it is the key of the surrounding map.
	Encode(s *Server) (json.RawMessage, error)

	// Editor returns the editor this translator handles.
	Editor() Editor
}

// Sentinel errors for translation operations.
var (
	// ErrTransportFieldMismatch indicates a native object populates fields
	// belonging to a different transport than the one it declares or
	// implies, e.g. "type": "sse" with a "command".
	ErrTransportFieldMismatch = errors.New("transport fields do not match transport")

	// ErrUnknownTransport indicates an explicit transport tag that is not
	// one of the known transports.
	ErrUnknownTransport = errors.New("unknown transport")

	// ErrInvalidField indicates a known native field has the wrong JSON type.
	ErrInvalidField = errors.New("invalid field")

	// ErrNoEndpoint indicates a server with no endpoint was asked to encode.
	ErrNoEndpoint = errors.New("server has no endpoint")
)
