// Package windsurf implements the platform adapter for Windsurf.
//
// Windsurf keeps a single global file, ~/.codeium/windsurf/mcp_config.json:
//
//	{
//	  "mcpServers": {
//	    "github": {"command": "npx", "args": ["-y", "@modelcontextprotocol/server-github"]},
//	    "remote": {"serverUrl": "https://mcp.example.com/sse", "disabled": true}
//	  },
//	  "maxTools": 50
//	}
//
// The optional top-level "maxTools" caps the tools Windsurf exposes across
// all servers.
package windsurf

import (
	"github.com/thoreinstein/mcpm/internal/mcp"
	mcpvalidator "github.com/thoreinstein/mcpm/internal/mcp/validator"
	"github.com/thoreinstein/mcpm/internal/paths"
	"github.com/thoreinstein/mcpm/internal/platform"
	"github.com/thoreinstein/mcpm/internal/validator"
)

const (
	// ServersKey is the top-level key of the server map.
	ServersKey = "mcpServers"

	// MaxToolsKey is the top-level key of the tool ceiling.
	MaxToolsKey = "maxTools"

	// MaxToolsLimit is the largest tool ceiling Windsurf accepts.
	MaxToolsLimit = 100
)

// Adapter is the platform adapter for Windsurf.
type Adapter struct {
	path string
	tr   *Translator
}

var _ platform.Adapter = (*Adapter)(nil)

// Option configures an Adapter.
type Option func(*Adapter)

// WithConfigPath overrides the location of mcp_config.json.
func WithConfigPath(path string) Option {
	return func(a *Adapter) {
		if path != "" {
			a.path = path
		}
	}
}

// New creates a Windsurf adapter.
func New(opts ...Option) *Adapter {
	a := &Adapter{
		path: paths.WindsurfConfigPath(),
		tr:   NewTranslator(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Editor returns mcp.EditorWindsurf.
func (a *Adapter) Editor() mcp.Editor {
	return mcp.EditorWindsurf
}

// DisplayName returns "Windsurf".
func (a *Adapter) DisplayName() string {
	return "Windsurf"
}

// Capabilities reports a global scope with stdio and serverUrl transports.
func (a *Adapter) Capabilities() platform.Capabilities {
	return platform.Capabilities{
		Transports:        []mcp.Transport{mcp.TransportStdio, mcp.TransportSSEVariant},
		Scopes:            []mcp.Scope{mcp.ScopeGlobal},
		MaxTools:          MaxToolsLimit,
		ManagesEnablement: true,
	}
}

func (a *Adapter) file() *platform.ServerFile {
	return &platform.ServerFile{
		Editor:       mcp.EditorWindsurf,
		Scope:        mcp.ScopeGlobal,
		Path:         a.path,
		Key:          ServersKey,
		Translator:   a.tr,
		Capabilities: a.Capabilities(),
	}
}

// ReadConfig returns the servers in mcp_config.json. A missing file is created
// when its directory exists.
func (a *Adapter) ReadConfig(scope mcp.Scope) ([]*mcp.ServerWithMetadata, error) {
	if !a.SupportsScope(scope) {
		return nil, platform.ScopeError(mcp.EditorWindsurf, scope)
	}
	return a.file().Read()
}

// WriteConfig replaces the servers in mcp_config.json, creating it if
// absent. "maxTools" and any other top-level keys are kept.
func (a *Adapter) WriteConfig(servers []*mcp.ServerWithMetadata, scope mcp.Scope) error {
	if !a.SupportsScope(scope) {
		return platform.ScopeError(mcp.EditorWindsurf, scope)
	}
	return a.file().Write(servers)
}

// ParseConfigData decodes mcp_config.json content.
func (a *Adapter) ParseConfigData(raw []byte, scope mcp.Scope) ([]*mcp.ServerWithMetadata, error) {
	if !a.SupportsScope(scope) {
		return nil, platform.ScopeError(mcp.EditorWindsurf, scope)
	}
	return a.file().Parse(raw)
}

// SerializeConfigData returns a new mcp_config.json holding servers.
func (a *Adapter) SerializeConfigData(servers []*mcp.ServerWithMetadata, scope mcp.Scope) ([]byte, error) {
	if !a.SupportsScope(scope) {
		return nil, platform.ScopeError(mcp.EditorWindsurf, scope)
	}
	return a.file().Serialize(servers)
}

// WriteConfigData replaces mcp_config.json with raw.
func (a *Adapter) WriteConfigData(raw []byte, scope mcp.Scope) error {
	if !a.SupportsScope(scope) {
		return platform.ScopeError(mcp.EditorWindsurf, scope)
	}
	return a.file().WriteRaw(raw)
}

// ValidateServerConfig validates s for Windsurf.
func (a *Adapter) ValidateServerConfig(s *mcp.Server, opts ...mcpvalidator.Option) *validator.Result {
	return platform.ValidateServer(a.Capabilities(), s, opts...)
}

// ValidateConfigStructure checks the server map and that "maxTools", when
// present, is an integer between 1 and MaxToolsLimit.
func (a *Adapter) ValidateConfigStructure(raw []byte, scope mcp.Scope) *validator.Result {
	if !a.SupportsScope(scope) {
		result := &validator.Result{}
		result.AddError("", mcpvalidator.CodeInvalidStructure, platform.ScopeError(mcp.EditorWindsurf, scope).Error())
		return result
	}

	st, result := mcpvalidator.ParseStructure(raw, false)
	if st == nil {
		return result
	}
	st.CheckServers(result, ServersKey, false)
	st.CheckIntRange(result, MaxToolsKey, 1, int64(a.Capabilities().MaxTools))
	platform.CheckDecode(result, st, ServersKey, a.tr)
	return result
}

// ConfigPath returns the path of mcp_config.json for the global scope.
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
