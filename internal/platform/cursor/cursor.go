// Package cursor implements the platform adapter for Cursor.
//
// Cursor keeps a single global file, ~/.cursor/mcp.json:
//
//	{
//	  "mcpServers": {
//	    "github": {"command": "npx", "args": ["-y", "@modelcontextprotocol/server-github"]},
//	    "docs":   {"url": "https://docs.example.com/sse"}
//	  }
//	}
//
// Servers are enabled and disabled from Cursor's settings UI, so the
// adapter never reads or writes a disabled flag.
package cursor

import (
	"github.com/thoreinstein/mcpm/internal/mcp"
	mcpvalidator "github.com/thoreinstein/mcpm/internal/mcp/validator"
	"github.com/thoreinstein/mcpm/internal/paths"
	"github.com/thoreinstein/mcpm/internal/platform"
	"github.com/thoreinstein/mcpm/internal/validator"
)

// ServersKey is the top-level key of the server map.
const ServersKey = "mcpServers"

// EnablementNote explains where Cursor keeps enablement.
const EnablementNote = "Cursor enables and disables servers from its settings UI"

// Adapter is the platform adapter for Cursor.
type Adapter struct {
	path string
	tr   *Translator
}

var _ platform.Adapter = (*Adapter)(nil)

// Option configures an Adapter.
type Option func(*Adapter)

// WithConfigPath overrides the location of mcp.json.
func WithConfigPath(path string) Option {
	return func(a *Adapter) {
		if path != "" {
			a.path = path
		}
	}
}

// New creates a Cursor adapter using ~/.cursor/mcp.json unless overridden.
func New(opts ...Option) *Adapter {
	a := &Adapter{
		path: paths.CursorConfigPath(),
		tr:   NewTranslator(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Editor returns mcp.EditorCursor.
func (a *Adapter) Editor() mcp.Editor {
	return mcp.EditorCursor
}

// DisplayName returns "Cursor".
func (a *Adapter) DisplayName() string {
	return "Cursor"
}

// Capabilities reports a global scope with stdio and sse transports.
func (a *Adapter) Capabilities() platform.Capabilities {
	return platform.Capabilities{
		Transports:     []mcp.Transport{mcp.TransportStdio, mcp.TransportSSE},
		Scopes:         []mcp.Scope{mcp.ScopeGlobal},
		EnablementNote: EnablementNote,
	}
}

func (a *Adapter) file() *platform.ServerFile {
	return &platform.ServerFile{
		Editor:       mcp.EditorCursor,
		Scope:        mcp.ScopeGlobal,
		Path:         a.path,
		Key:          ServersKey,
		Translator:   a.tr,
		Capabilities: a.Capabilities(),
	}
}

// ReadConfig returns the servers in mcp.json. A missing file is created
// when its directory exists.
func (a *Adapter) ReadConfig(scope mcp.Scope) ([]*mcp.ServerWithMetadata, error) {
	if !a.SupportsScope(scope) {
		return nil, platform.ScopeError(mcp.EditorCursor, scope)
	}
	return a.file().Read()
}

// WriteConfig replaces the servers in mcp.json, creating it if absent.
func (a *Adapter) WriteConfig(servers []*mcp.ServerWithMetadata, scope mcp.Scope) error {
	if !a.SupportsScope(scope) {
		return platform.ScopeError(mcp.EditorCursor, scope)
	}
	return a.file().Write(servers)
}

// ParseConfigData decodes mcp.json content.
func (a *Adapter) ParseConfigData(raw []byte, scope mcp.Scope) ([]*mcp.ServerWithMetadata, error) {
	if !a.SupportsScope(scope) {
		return nil, platform.ScopeError(mcp.EditorCursor, scope)
	}
	return a.file().Parse(raw)
}

// SerializeConfigData returns a new mcp.json holding servers.
func (a *Adapter) SerializeConfigData(servers []*mcp.ServerWithMetadata, scope mcp.Scope) ([]byte, error) {
	if !a.SupportsScope(scope) {
		return nil, platform.ScopeError(mcp.EditorCursor, scope)
	}
	return a.file().Serialize(servers)
}

// WriteConfigData replaces mcp.json with raw.
func (a *Adapter) WriteConfigData(raw []byte, scope mcp.Scope) error {
	if !a.SupportsScope(scope) {
		return platform.ScopeError(mcp.EditorCursor, scope)
	}
	return a.file().WriteRaw(raw)
}

// ValidateServerConfig validates s for Cursor.
func (a *Adapter) ValidateServerConfig(s *mcp.Server, opts ...mcpvalidator.Option) *validator.Result {
	return platform.ValidateServer(a.Capabilities(), s, opts...)
}

// ValidateConfigStructure checks that raw is a JSON object whose
// "mcpServers" member, when present, maps valid names to server objects.
func (a *Adapter) ValidateConfigStructure(raw []byte, scope mcp.Scope) *validator.Result {
	if !a.SupportsScope(scope) {
		result := &validator.Result{}
		result.AddError("", mcpvalidator.CodeInvalidStructure, platform.ScopeError(mcp.EditorCursor, scope).Error())
		return result
	}

	st, result := mcpvalidator.ParseStructure(raw, false)
	if st == nil {
		return result
	}
	st.CheckServers(result, ServersKey, false)
	platform.CheckDecode(result, st, ServersKey, a.tr)
	return result
}

// ConfigPath returns the path of mcp.json for the global scope.
func (a *Adapter) ConfigPath(scope mcp.Scope) string {
	if !a.SupportsScope(scope) {
		return ""
	}
	return a.path
}

// SupportsScope reports whether scope is the global scope.
func (a *Adapter) SupportsScope(scope mcp.Scope) bool {
	return scope == mcp.ScopeGlobal
}

// ScopeAvailable reports whether the global file location is known.
func (a *Adapter) ScopeAvailable(scope mcp.Scope) bool {
	return a.SupportsScope(scope) && a.path != ""
}

// DefaultServerConfig returns a stdio template.
func (a *Adapter) DefaultServerConfig() *mcp.Server {
	return &mcp.Server{
		Endpoint: &mcp.StdioEndpoint{Command: "npx", Args: []string{"-y"}},
	}
}
