// Package vscode implements the platform adapter for Visual Studio Code.
//
// VS Code has two scopes. The workspace scope is a standalone file,
// <workspace>/.vscode/mcp.json:
//
//	{
//	  "inputs": [{"id": "api-key", "type": "promptString", "password": true}],
//	  "servers": {
//	    "context7": {"type": "http", "url": "https://mcp.context7.com/mcp"}
//	  }
//	}
//
// The user scope is the "mcp" section of the user settings.json, a JSONC
// document owned by the editor. Only that section is ever rewritten; the
// rest of settings.json, comments included, is left byte for byte.
package vscode

import (
	"encoding/json"
	"os"

	"github.com/tidwall/gjson"

	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/mcp"
	mcpvalidator "github.com/thoreinstein/mcpm/internal/mcp/validator"
	"github.com/thoreinstein/mcpm/internal/paths"
	"github.com/thoreinstein/mcpm/internal/platform"
	"github.com/thoreinstein/mcpm/internal/validator"
	"github.com/thoreinstein/mcpm/pkg/fileutil"
)

const (
	// ServersKey is the top-level key of the server map in mcp.json.
	ServersKey = "servers"

	// InputsKey is the top-level key of the input definitions in mcp.json.
	InputsKey = "inputs"
)

// Adapter is the platform adapter for VS Code.
type Adapter struct {
	root         string
	userSettings string
	policy       platform.WorkspacePolicy
	tr           *Translator
}

var _ platform.InputAdapter = (*Adapter)(nil)

// Option configures an Adapter.
type Option func(*Adapter)

// WithWorkspaceRoot sets the workspace directory. It defaults to the
// current working directory.
func WithWorkspaceRoot(root string) Option {
	return func(a *Adapter) {
		a.root = root
	}
}

// WithUserSettingsPath overrides the location of the user settings.json.
func WithUserSettingsPath(path string) Option {
	return func(a *Adapter) {
		if path != "" {
			a.userSettings = path
		}
	}
}

// WithWorkspacePolicy overrides the rules deciding whether a .vscode
// directory may be created.
func WithWorkspacePolicy(p platform.WorkspacePolicy) Option {
	return func(a *Adapter) {
		a.policy = p
	}
}

// New creates a VS Code adapter.
func New(opts ...Option) *Adapter {
	root, _ := os.Getwd()
	a := &Adapter{
		root:         root,
		userSettings: paths.VSCodeUserSettingsPath(),
		policy:       platform.DefaultWorkspacePolicy(),
		tr:           NewTranslator(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Editor returns mcp.EditorVSCode.
func (a *Adapter) Editor() mcp.Editor {
	return mcp.EditorVSCode
}

// DisplayName returns "VS Code".
func (a *Adapter) DisplayName() string {
	return "VS Code"
}

// Capabilities reports workspace and user scopes, the stdio, sse and http
// transports, and input support.
func (a *Adapter) Capabilities() platform.Capabilities {
	return platform.Capabilities{
		Transports:        []mcp.Transport{mcp.TransportStdio, mcp.TransportSSE, mcp.TransportHTTP},
		Scopes:            []mcp.Scope{mcp.ScopeWorkspace, mcp.ScopeUser},
		SupportsInputs:    true,
		ManagesEnablement: true,
	}
}

func (a *Adapter) workspaceFile() *platform.ServerFile {
	return &platform.ServerFile{
		Editor:       mcp.EditorVSCode,
		Scope:        mcp.ScopeWorkspace,
		Path:         paths.VSCodeWorkspaceConfigPath(a.root),
		Key:          ServersKey,
		Translator:   a.tr,
		Capabilities: a.Capabilities(),
		Comments:     true,
		Skeleton:     map[string]json.RawMessage{InputsKey: json.RawMessage("[]")},
	}
}

func (a *Adapter) checkScope(scope mcp.Scope) error {
	if !a.SupportsScope(scope) {
		return platform.ScopeError(mcp.EditorVSCode, scope)
	}
	if scope == mcp.ScopeWorkspace && !a.ScopeAvailable(scope) {
		return errors.Wrapf(platform.ErrNoWorkspace, "%s is not a workspace", a.root)
	}
	return nil
}

// ReadConfig returns the servers stored in scope. A workspace read outside
// a workspace returns platform.ErrNoWorkspace. A missing mcp.json is
// created when .vscode exists. A missing user settings file yields no
// servers and is never created.
func (a *Adapter) ReadConfig(scope mcp.Scope) ([]*mcp.ServerWithMetadata, error) {
	if err := a.checkScope(scope); err != nil {
		return nil, err
	}
	if scope == mcp.ScopeWorkspace {
		return a.workspaceFile().Read()
	}

	data, _, err := platform.ReadConfigFile(a.userSettings)
	if err != nil {
		return nil, err
	}
	return a.parseUser(data)
}

// WriteConfig replaces the servers stored in scope. The workspace file is
// created when the workspace policy allows it. The user settings file must
// already exist.
func (a *Adapter) WriteConfig(servers []*mcp.ServerWithMetadata, scope mcp.Scope) error {
	if err := a.checkScope(scope); err != nil {
		return err
	}
	if scope == mcp.ScopeWorkspace {
		return a.workspaceFile().Write(servers)
	}

	data, exists, err := platform.ReadConfigFile(a.userSettings)
	if err != nil {
		return err
	}
	if !exists {
		return errors.Wrapf(ErrSettingsNotFound, "%s", a.userSettings)
	}
	out, err := a.serializeUser(data, servers)
	if err != nil {
		return err
	}
	return a.writeUser(out)
}

// ParseConfigData decodes mcp.json content for the workspace scope or
// whole settings.json content for the user scope.
func (a *Adapter) ParseConfigData(raw []byte, scope mcp.Scope) ([]*mcp.ServerWithMetadata, error) {
	if !a.SupportsScope(scope) {
		return nil, platform.ScopeError(mcp.EditorVSCode, scope)
	}
	if scope == mcp.ScopeWorkspace {
		return a.workspaceFile().Parse(raw)
	}
	return a.parseUser(raw)
}

// SerializeConfigData returns a new mcp.json holding servers for the
// workspace scope, or a settings document holding only the "mcp" section
// for the user scope.
func (a *Adapter) SerializeConfigData(servers []*mcp.ServerWithMetadata, scope mcp.Scope) ([]byte, error) {
	if !a.SupportsScope(scope) {
		return nil, platform.ScopeError(mcp.EditorVSCode, scope)
	}
	if scope == mcp.ScopeWorkspace {
		return a.workspaceFile().Serialize(servers)
	}
	return a.serializeUser(nil, servers)
}

// WriteConfigData replaces mcp.json, or the whole user settings.json, with
// raw. Inputs and comments in raw are kept. The user settings file must
// already exist.
func (a *Adapter) WriteConfigData(raw []byte, scope mcp.Scope) error {
	if err := a.checkScope(scope); err != nil {
		return err
	}
	if scope == mcp.ScopeWorkspace {
		return a.workspaceFile().WriteRaw(raw)
	}

	if _, exists, err := platform.ReadConfigFile(a.userSettings); err != nil {
		return err
	} else if !exists {
		return errors.Wrapf(ErrSettingsNotFound, "%s", a.userSettings)
	}
	servers, err := a.parseUser(raw)
	if err != nil {
		return err
	}
	if err := platform.CheckTransports(mcp.EditorVSCode, a.Capabilities(), servers); err != nil {
		return err
	}
	if _, err := a.ParseInputsData(raw, scope); err != nil {
		return err
	}
	return a.writeUser(raw)
}

func (a *Adapter) parseUser(raw []byte) ([]*mcp.ServerWithMetadata, error) {
	v, err := lookup(raw, settingsServers)
	if err != nil {
		return nil, errors.NewParseError(a.userSettings, err)
	}
	if !v.Exists() {
		return []*mcp.ServerWithMetadata{}, nil
	}
	if !v.IsObject() {
		return nil, errors.NewParseError(a.userSettings, errors.Newf("%q must be an object", settingsServers))
	}

	native := make(map[string]json.RawMessage)
	v.ForEach(func(key, value gjson.Result) bool {
		native[key.String()] = json.RawMessage(value.Raw)
		return true
	})
	servers, err := platform.DecodeServers(native, a.tr, mcp.ScopeUser, a.userSettings)
	if err != nil {
		return nil, errors.NewParseError(a.userSettings, err)
	}
	return servers, nil
}

func (a *Adapter) serializeUser(current []byte, servers []*mcp.ServerWithMetadata) ([]byte, error) {
	servers = platform.FilterServers(servers, mcp.EditorVSCode, mcp.ScopeUser)
	if err := platform.CheckTransports(mcp.EditorVSCode, a.Capabilities(), servers); err != nil {
		return nil, err
	}
	native, err := platform.EncodeServers(servers, a.tr, mcp.ScopeUser)
	if err != nil {
		return nil, err
	}

	out, err := patchMember(current, pointerServers, native)
	if err != nil {
		return nil, errors.NewParseError(a.userSettings, err)
	}
	return out, nil
}

func (a *Adapter) writeUser(data []byte) error {
	if err := fileutil.WriteConfigFile(a.userSettings, data); err != nil {
		return errors.Wrapf(err, "writing %s", a.userSettings)
	}
	return nil
}

// ReadInputs returns the input definitions stored in scope.
func (a *Adapter) ReadInputs(scope mcp.Scope) ([]mcp.Input, error) {
	if err := a.checkScope(scope); err != nil {
		return nil, err
	}
	data, _, err := platform.ReadConfigFile(a.ConfigPath(scope))
	if err != nil {
		return nil, err
	}
	return a.ParseInputsData(data, scope)
}

// ParseInputsData returns the input definitions in raw mcp.json content
// for the workspace scope or settings.json content for the user scope.
func (a *Adapter) ParseInputsData(raw []byte, scope mcp.Scope) ([]mcp.Input, error) {
	if !a.SupportsScope(scope) {
		return nil, platform.ScopeError(mcp.EditorVSCode, scope)
	}
	path := InputsKey
	if scope == mcp.ScopeUser {
		path = settingsInputs
	}
	v, err := lookup(raw, path)
	if err != nil {
		return nil, errors.NewParseError(a.ConfigPath(scope), err)
	}
	inputs, err := decodeInputs([]byte(v.Raw))
	if err != nil {
		return nil, errors.NewParseError(a.ConfigPath(scope), err)
	}
	return inputs, nil
}

func decodeInputs(raw []byte) ([]mcp.Input, error) {
	if len(raw) == 0 {
		return []mcp.Input{}, nil
	}
	var inputs []mcp.Input
	if err := json.Unmarshal(raw, &inputs); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", InputsKey)
	}
	if inputs == nil {
		inputs = []mcp.Input{}
	}
	return inputs, nil
}

// ValidateServerConfig validates s for VS Code. Pass
// mcpvalidator.WithInputs to check ${input:id} references.
func (a *Adapter) ValidateServerConfig(s *mcp.Server, opts ...mcpvalidator.Option) *validator.Result {
	return platform.ValidateServer(a.Capabilities(), s, opts...)
}

// ValidateConfigStructure checks mcp.json content for the workspace scope
// or settings.json content for the user scope. Both accept comments.
func (a *Adapter) ValidateConfigStructure(raw []byte, scope mcp.Scope) *validator.Result {
	if !a.SupportsScope(scope) {
		result := &validator.Result{}
		result.AddError("", mcpvalidator.CodeInvalidStructure, platform.ScopeError(mcp.EditorVSCode, scope).Error())
		return result
	}

	st, result := mcpvalidator.ParseStructure(raw, true)
	if st == nil {
		return result
	}

	serversPath, inputsPath, prefix := ServersKey, InputsKey, ""
	if scope == mcp.ScopeUser {
		st.CheckObject(result, settingsSection)
		serversPath, inputsPath, prefix = settingsServers, settingsInputs, settingsSection
	}
	st.CheckServers(result, serversPath, false)
	st.CheckArray(result, inputsPath)
	platform.CheckDecode(result, st, serversPath, a.tr)

	if raw := st.Get(inputsPath); raw != nil {
		if inputs, err := decodeInputs(raw); err == nil {
			result.Merge(prefix, mcpvalidator.ValidateInputs(inputs))
		}
	}
	return result
}

// ConfigPath returns mcp.json for the workspace scope and settings.json
// for the user scope.
func (a *Adapter) ConfigPath(scope mcp.Scope) string {
	switch scope {
	case mcp.ScopeWorkspace:
		return paths.VSCodeWorkspaceConfigPath(a.root)
	case mcp.ScopeUser:
		return a.userSettings
	default:
		return ""
	}
}

// SupportsScope reports whether scope is the workspace or user scope.
func (a *Adapter) SupportsScope(scope mcp.Scope) bool {
	return scope == mcp.ScopeWorkspace || scope == mcp.ScopeUser
}

// ScopeAvailable reports whether scope can be used. The workspace scope
// follows the workspace policy. The user scope requires settings.json to
// exist.
func (a *Adapter) ScopeAvailable(scope mcp.Scope) bool {
	switch scope {
	case mcp.ScopeWorkspace:
		return a.root != "" && a.policy.Available(paths.VSCodeWorkspaceDir(a.root))
	case mcp.ScopeUser:
		info, err := os.Stat(a.userSettings)
		return err == nil && info.Mode().IsRegular()
	default:
		return false
	}
}

// DefaultServerConfig returns a stdio template.
func (a *Adapter) DefaultServerConfig() *mcp.Server {
	return &mcp.Server{
		Endpoint: &mcp.StdioEndpoint{Command: "npx", Args: []string{"-y"}},
	}
}
