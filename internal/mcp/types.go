package mcp

import (
	"encoding/json"
	"maps"
	"slices"
	"time"
)

// Transport identifies how an editor connects to a server.
type Transport string

// Transport constants. The set is closed: every consumer switches over the
// endpoint variants rather than these strings.
const (
	// TransportStdio indicates a local process spoken to over stdin/stdout.
	TransportStdio Transport = "stdio"

	// TransportSSE indicates a remote server-sent-events endpoint addressed
	// by a "url" field.
	TransportSSE Transport = "sse"

	// TransportSSEVariant indicates a remote server-sent-events endpoint
	// addressed by a "serverUrl" field.
	TransportSSEVariant Transport = "sse-variant"

	// TransportHTTP indicates a remote streamable HTTP endpoint.
	TransportHTTP Transport = "http"
)

// AllTransports returns every known transport in display order.
func AllTransports() []Transport {
	return []Transport{TransportStdio, TransportSSE, TransportSSEVariant, TransportHTTP}
}

// ParseTransport converts s to a Transport. The second result is false when
// s is not a known transport.
func ParseTransport(s string) (Transport, bool) {
	t := Transport(s)
	if slices.Contains(AllTransports(), t) {
		return t, true
	}
	return "", false
}

func (t Transport) String() string {
	return string(t)
}

// IsRemote reports whether the transport reaches a network endpoint.
func (t Transport) IsRemote() bool {
	return t == TransportSSE || t == TransportSSEVariant || t == TransportHTTP
}

// Editor identifies one of the supported host editors.
type Editor string

// Supported editors.
const (
	EditorCursor   Editor = "cursor"
	EditorWindsurf Editor = "windsurf"
	EditorVSCode   Editor = "vscode"
)

// AllEditors returns every supported editor in display order.
func AllEditors() []Editor {
	return []Editor{EditorCursor, EditorWindsurf, EditorVSCode}
}

// ParseEditor converts s to an Editor.
func ParseEditor(s string) (Editor, bool) {
	e := Editor(s)
	if slices.Contains(AllEditors(), e) {
		return e, true
	}
	return "", false
}

func (e Editor) String() string {
	return string(e)
}

// Scope is the configuration level a server is read from or written to.
type Scope string

// Configuration scopes.
const (
	ScopeGlobal    Scope = "global"
	ScopeWorkspace Scope = "workspace"
	ScopeUser      Scope = "user"
)

// ParseScope converts s to a Scope.
func ParseScope(s string) (Scope, bool) {
	switch sc := Scope(s); sc {
	case ScopeGlobal, ScopeWorkspace, ScopeUser:
		return sc, true
	}
	return "", false
}

func (s Scope) String() string {
	return string(s)
}

// Server is the editor-agnostic definition of one configured MCP server.
//
// Exactly one endpoint variant is set; the transport is derived from it.
// Fields a native format carries that are not modelled here are kept in
// Extra and written back unchanged.
type Server struct {
	// Name is unique within one editor scope.
	Name string

	// Description is optional free text.
	Description string

	// Disabled is only persisted by editors that store enablement in the
	// config file.
	Disabled bool

	// Endpoint holds the transport-specific fields.
	Endpoint Endpoint

	// Roots lists filesystem roots exposed to the server (VS Code only).
	Roots []string

	// Extra holds native fields this model does not describe.
	Extra map[string]json.RawMessage
}

// Transport returns the transport implied by the server's endpoint, or the
// empty transport when no endpoint is set.
func (s *Server) Transport() Transport {
	if s == nil || s.Endpoint == nil {
		return ""
	}
	return s.Endpoint.Transport()
}

// IsLocal returns true if the server runs as a local process.
func (s *Server) IsLocal() bool {
	return s.Transport() == TransportStdio
}

// IsRemote returns true if the server is reached over the network.
func (s *Server) IsRemote() bool {
	return s.Transport().IsRemote()
}

// Stdio returns the stdio endpoint, or nil for other transports.
func (s *Server) Stdio() *StdioEndpoint {
	if s == nil {
		return nil
	}
	ep, _ := s.Endpoint.(*StdioEndpoint)
	return ep
}

// RemoteURL returns the network address of a remote server, or "" for
// stdio servers.
func (s *Server) RemoteURL() string {
	if s == nil {
		return ""
	}
	switch ep := s.Endpoint.(type) {
	case *SSEEndpoint:
		return ep.URL
	case *SSEVariantEndpoint:
		return ep.ServerURL
	case *HTTPEndpoint:
		return ep.URL
	default:
		return ""
	}
}

// RemoteHeaders returns the HTTP headers of a remote server.
func (s *Server) RemoteHeaders() map[string]string {
	if s == nil {
		return nil
	}
	switch ep := s.Endpoint.(type) {
	case *SSEEndpoint:
		return ep.Headers
	case *SSEVariantEndpoint:
		return ep.Headers
	case *HTTPEndpoint:
		return ep.Headers
	default:
		return nil
	}
}

// Clone returns a deep copy of the server.
func (s *Server) Clone() *Server {
	if s == nil {
		return nil
	}
	c := *s
	c.Roots = slices.Clone(s.Roots)
	if s.Extra != nil {
		c.Extra = make(map[string]json.RawMessage, len(s.Extra))
		for k, v := range s.Extra {
			c.Extra[k] = slices.Clone(v)
		}
	}
	if s.Endpoint != nil {
		c.Endpoint = s.Endpoint.clone()
	}
	return &c
}

// ServerStatus is the transient health state shown next to a server.
type ServerStatus string

// Server status values. They are never persisted.
const (
	StatusUnknown ServerStatus = ""
	StatusTesting ServerStatus = "testing"
	StatusOK      ServerStatus = "ok"
	StatusFailed  ServerStatus = "failed"
)

// TestResult is the outcome of a connection probe.
type TestResult struct {
	Success      bool          `json:"success"`
	Message      string        `json:"message"`
	ResponseTime time.Duration `json:"responseTime"`
	Error        string        `json:"error,omitempty"`
	Timestamp    time.Time     `json:"timestamp"`
}

// ServerWithMetadata is a Server together with where it was read from.
type ServerWithMetadata struct {
	*Server

	// Editor owns the file the server was read from.
	Editor Editor

	// Scope is the file or file section within the editor.
	Scope Scope

	// SourcePath is the file the server was read from.
	SourcePath string

	// Status and LastTest are transient and never written.
	Status   ServerStatus
	LastTest *TestResult
}

// WithMetadata wraps s for editor and scope.
func WithMetadata(s *Server, editor Editor, scope Scope, source string) *ServerWithMetadata {
	return &ServerWithMetadata{
		Server:     s,
		Editor:     editor,
		Scope:      scope,
		SourcePath: source,
	}
}

// Names returns the server names in order.
func Names(servers []*ServerWithMetadata) []string {
	names := make([]string, 0, len(servers))
	for _, s := range servers {
		names = append(names, s.Name)
	}
	return names
}

// Find returns the index of the server called name, or -1.
func Find(servers []*ServerWithMetadata, name string) int {
	return slices.IndexFunc(servers, func(s *ServerWithMetadata) bool {
		return s.Name == name
	})
}

// SortByName orders servers by name in place.
func SortByName(servers []*ServerWithMetadata) {
	slices.SortStableFunc(servers, func(a, b *ServerWithMetadata) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		default:
			return 0
		}
	})
}

// InputTypePromptString is the only supported input type.
const InputTypePromptString = "promptString"

// Input is a VS Code input definition. Server string values reference it
// with a ${input:<id>} placeholder.
type Input struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Password    bool   `json:"password,omitempty"`
}

func cloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	return maps.Clone(m)
}
