package platform

import (
	"maps"
	"slices"

	"github.com/thoreinstein/mcpm/internal/mcp"
	mcpvalidator "github.com/thoreinstein/mcpm/internal/mcp/validator"
	"github.com/thoreinstein/mcpm/internal/validator"
)

// Adapter defines the contract for editor adapters.
// Each supported editor (Cursor, Windsurf, VS Code) implements this
// interface to read, write and validate its own MCP configuration files.
//
// Implementations must be safe for concurrent use. Adapters hold no mutable
// state; every call reads the file it needs.
type Adapter interface {
	// Editor returns the editor identifier.
	Editor() mcp.Editor

	// DisplayName returns the human-readable editor name.
	DisplayName() string

	// Capabilities describes what the editor can store.
	Capabilities() Capabilities

	// ReadConfig reads every server stored in scope, sorted by name.
	// A missing file yields an empty list; scopes that own their file
	// create it as an empty document. Malformed content yields an
	// *errors.ParseError.
	ReadConfig(scope mcp.Scope) ([]*mcp.ServerWithMetadata, error)

	// WriteConfig replaces the servers stored in scope with servers. Only
	// servers whose editor and scope match are written. Content of the file
	// that is not part of the server map is preserved.
	WriteConfig(servers []*mcp.ServerWithMetadata, scope mcp.Scope) error

	// ParseConfigData decodes raw file content for scope.
	ParseConfigData(raw []byte, scope mcp.Scope) ([]*mcp.ServerWithMetadata, error)

	// SerializeConfigData encodes servers as a new document for scope. It
	// does no I/O.
	SerializeConfigData(servers []*mcp.ServerWithMetadata, scope mcp.Scope) ([]byte, error)

	// WriteConfigData replaces the content stored for scope with raw, a
	// whole document that has passed ValidateConfigStructure. Keys outside
	// the server map are written as given. The current file is not read
	// first, so a damaged file can be replaced.
	WriteConfigData(raw []byte, scope mcp.Scope) error

	// ValidateServerConfig validates one server against the editor's
	// capabilities. Extra options are applied after the editor's own.
	ValidateServerConfig(server *mcp.Server, opts ...mcpvalidator.Option) *validator.Result

	// ValidateConfigStructure checks the shape of raw file content for
	// scope without decoding individual servers.
	ValidateConfigStructure(raw []byte, scope mcp.Scope) *validator.Result

	// ConfigPath returns the file backing scope, or "" when the scope is
	// unsupported or has no location.
	ConfigPath(scope mcp.Scope) string

	// SupportsScope reports whether the editor has scope at all.
	SupportsScope(scope mcp.Scope) bool

	// ScopeAvailable reports whether scope can be used in the current
	// environment, e.g. whether a workspace is open.
	ScopeAvailable(scope mcp.Scope) bool

	// DefaultServerConfig returns a template for a new server.
	DefaultServerConfig() *mcp.Server
}

// InputAdapter is implemented by editors that store input definitions
// next to their servers.
type InputAdapter interface {
	Adapter

	// ReadInputs returns the input definitions stored in scope.
	ReadInputs(scope mcp.Scope) ([]mcp.Input, error)

	// ParseInputsData returns the input definitions in raw file content
	// for scope.
	ParseInputsData(raw []byte, scope mcp.Scope) ([]mcp.Input, error)
}

// Capabilities describes the static features of an editor.
type Capabilities struct {
	// Transports lists the transports the editor can store.
	Transports []mcp.Transport

	// Scopes lists the configuration scopes the editor has.
	Scopes []mcp.Scope

	// SupportsInputs is true when the editor understands ${input:id}
	// placeholders.
	SupportsInputs bool

	// MaxTools is the largest tool ceiling the editor's config file may
	// set, or zero when the editor has none.
	MaxTools int

	// ManagesEnablement is true when the disabled flag is stored in the
	// config file.
	ManagesEnablement bool

	// EnablementNote explains where enablement lives when the config file
	// does not hold it.
	EnablementNote string
}

// SupportsTransport reports whether t is one of the editor's transports.
func (c Capabilities) SupportsTransport(t mcp.Transport) bool {
	return slices.Contains(c.Transports, t)
}

// SupportsScope reports whether s is one of the editor's scopes.
func (c Capabilities) SupportsScope(s mcp.Scope) bool {
	return slices.Contains(c.Scopes, s)
}

// CheckDecode decodes every object entry of the server map at path and
// reports translation failures, such as a record mixing stdio and remote
// fields, as structure errors.
func CheckDecode(result *validator.Result, st *mcpvalidator.Structure, path string, tr mcp.Translator) {
	entries := st.Entries(path)
	for _, name := range slices.Sorted(maps.Keys(entries)) {
		if _, err := tr.Decode(name, entries[name]); err != nil {
			result.AddError(path+"."+name, mcpvalidator.CodeInvalidStructure, err.Error())
		}
	}
}

// ValidateServer runs the shared server rules with the editor's transports,
// followed by opts.
func ValidateServer(c Capabilities, s *mcp.Server, opts ...mcpvalidator.Option) *validator.Result {
	base := []mcpvalidator.Option{mcpvalidator.WithTransports(c.Transports...)}
	return mcpvalidator.Validate(s, append(base, opts...)...)
}
