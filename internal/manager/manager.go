// Package manager is the single entry point for reading and changing MCP
// server configuration across editors.
//
// Every mutation follows the same path: validate, read the whole scope,
// check uniqueness and protection, snapshot the file, write. Nothing is
// written when any step fails.
//
// The manager takes no lock across operations. Two processes changing the
// same scope at once race, and the last write wins.
package manager

import (
	"bytes"
	"fmt"
	"log/slog"
	"slices"

	"github.com/thoreinstein/mcpm/internal/backup"
	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/mcp"
	mcpvalidator "github.com/thoreinstein/mcpm/internal/mcp/validator"
	"github.com/thoreinstein/mcpm/internal/platform"
	"github.com/thoreinstein/mcpm/internal/protect"
	"github.com/thoreinstein/mcpm/internal/validator"
)

// Manager coordinates the editor adapters.
type Manager struct {
	registry *platform.Registry
	guard    *protect.Guard
	backups  *backup.Manager
	logger   *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithGuard enables the protection gate on removals and renames.
func WithGuard(g *protect.Guard) Option {
	return func(m *Manager) {
		m.guard = g
	}
}

// WithLogger sets the manager's logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithBackups snapshots each config file before it is written.
func WithBackups(b *backup.Manager) Option {
	return func(m *Manager) {
		m.backups = b
	}
}

// New creates a manager over adapters. Nil adapters and duplicate editors
// are skipped.
func New(adapters []platform.Adapter, opts ...Option) *Manager {
	m := &Manager{
		registry: platform.NewRegistry(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	for _, a := range adapters {
		if err := m.registry.Register(a); err != nil {
			m.logger.Debug("adapter skipped", "error", err)
		}
	}
	return m
}

// Adapter returns the adapter for editor, or nil.
func (m *Manager) Adapter(editor mcp.Editor) platform.Adapter {
	return m.registry.Get(editor)
}

// Adapters returns the registered adapters in editor order.
func (m *Manager) Adapters() []platform.Adapter {
	return m.registry.All()
}

// Guard returns the protection guard, or nil when protection is off.
func (m *Manager) Guard() *protect.Guard {
	return m.guard
}

// ReadWarning records a scope that could not be read.
type ReadWarning struct {
	Editor mcp.Editor
	Scope  mcp.Scope
	Err    error
}

func (w ReadWarning) Error() string {
	return fmt.Sprintf("%s %s: %v", w.Editor, w.Scope, w.Err)
}

// ReadResult is the outcome of an aggregate read.
type ReadResult struct {
	Servers  []*mcp.ServerWithMetadata
	Warnings []ReadWarning
}

// ReadAllServers reads every available scope of every editor. A scope
// that fails to read is recorded as a warning and the read continues.
func (m *Manager) ReadAllServers() (*ReadResult, error) {
	result := &ReadResult{Servers: []*mcp.ServerWithMetadata{}}
	for _, a := range m.registry.All() {
		for _, scope := range a.Capabilities().Scopes {
			if !a.ScopeAvailable(scope) {
				m.logger.Debug("scope unavailable", "editor", a.Editor(), "scope", scope)
				continue
			}
			servers, err := a.ReadConfig(scope)
			if err != nil {
				if errors.Is(err, platform.ErrNoWorkspace) {
					m.logger.Debug("no workspace", "editor", a.Editor())
					continue
				}
				m.logger.Warn("failed to read config", "editor", a.Editor(), "scope", scope, "error", err)
				result.Warnings = append(result.Warnings, ReadWarning{Editor: a.Editor(), Scope: scope, Err: err})
				continue
			}
			result.Servers = append(result.Servers, servers...)
		}
	}
	return result, nil
}

// ReadServers reads one scope of one editor.
func (m *Manager) ReadServers(editor mcp.Editor, scope mcp.Scope) ([]*mcp.ServerWithMetadata, error) {
	a, err := m.scopeAdapter(editor, scope)
	if err != nil {
		return nil, err
	}
	return a.ReadConfig(scope)
}

// AddServer validates s and appends it to the scope. A name already in
// the scope is a *errors.UniquenessConflict.
func (m *Manager) AddServer(editor mcp.Editor, scope mcp.Scope, s *mcp.Server) error {
	a, err := m.scopeAdapter(editor, scope)
	if err != nil {
		return err
	}
	if err := m.validate(a, scope, s).Err(s.Name); err != nil {
		return err
	}

	current, err := a.ReadConfig(scope)
	if err != nil {
		return err
	}
	if mcp.Find(current, s.Name) >= 0 {
		return &errors.UniquenessConflict{Editor: string(editor), Scope: string(scope), Name: s.Name}
	}

	next := append(slices.Clone(current), mcp.WithMetadata(s.Clone(), editor, scope, a.ConfigPath(scope)))
	if err := m.write(a, scope, next); err != nil {
		return err
	}
	m.logger.Info("server added", "editor", editor, "scope", scope, "server", s.Name)
	return nil
}

// UpdateServer replaces the server named originalName with s. A rename
// must not collide with another server or drop a locked name.
func (m *Manager) UpdateServer(editor mcp.Editor, scope mcp.Scope, originalName string, s *mcp.Server) error {
	a, err := m.scopeAdapter(editor, scope)
	if err != nil {
		return err
	}

	current, err := a.ReadConfig(scope)
	if err != nil {
		return err
	}
	idx := mcp.Find(current, originalName)
	if idx < 0 {
		return notFound(editor, scope, originalName)
	}
	if err := m.validate(a, scope, s).Err(s.Name); err != nil {
		return err
	}

	if s.Name != originalName {
		if mcp.Find(current, s.Name) >= 0 {
			return &errors.UniquenessConflict{Editor: string(editor), Scope: string(scope), Name: s.Name}
		}
		proposed := mcp.Names(current)
		proposed[idx] = s.Name
		if err := m.checkProtected(editor, proposed, mcp.Names(current)); err != nil {
			return err
		}
	}

	next := slices.Clone(current)
	next[idx] = mcp.WithMetadata(s.Clone(), editor, scope, current[idx].SourcePath)
	if err := m.write(a, scope, next); err != nil {
		return err
	}
	m.logger.Info("server updated", "editor", editor, "scope", scope, "server", s.Name, "was", originalName)
	return nil
}

// DeleteServer removes the named server. Locked servers are refused with
// a *errors.ProtectionViolation.
func (m *Manager) DeleteServer(editor mcp.Editor, scope mcp.Scope, name string) error {
	a, err := m.scopeAdapter(editor, scope)
	if err != nil {
		return err
	}

	current, err := a.ReadConfig(scope)
	if err != nil {
		return err
	}
	idx := mcp.Find(current, name)
	if idx < 0 {
		return notFound(editor, scope, name)
	}

	next := slices.Delete(slices.Clone(current), idx, idx+1)
	if err := m.checkProtected(editor, mcp.Names(next), mcp.Names(current)); err != nil {
		return err
	}
	if err := m.write(a, scope, next); err != nil {
		return err
	}
	m.logger.Info("server removed", "editor", editor, "scope", scope, "server", name)
	return nil
}

// ToggleServer flips the disabled flag of the named server and returns
// the new value.
func (m *Manager) ToggleServer(editor mcp.Editor, scope mcp.Scope, name string) (disabled bool, err error) {
	return m.setDisabled(editor, scope, name, nil)
}

// SetDisabled sets the disabled flag of the named server.
func (m *Manager) SetDisabled(editor mcp.Editor, scope mcp.Scope, name string, disabled bool) error {
	_, err := m.setDisabled(editor, scope, name, &disabled)
	return err
}

func (m *Manager) setDisabled(editor mcp.Editor, scope mcp.Scope, name string, want *bool) (bool, error) {
	a, err := m.scopeAdapter(editor, scope)
	if err != nil {
		return false, err
	}
	caps := a.Capabilities()
	if !caps.ManagesEnablement {
		return false, errors.WithHint(
			errors.Wrapf(errors.ErrEnablementUnsupported, "%s", a.DisplayName()),
			caps.EnablementNote)
	}

	current, err := a.ReadConfig(scope)
	if err != nil {
		return false, err
	}
	idx := mcp.Find(current, name)
	if idx < 0 {
		return false, notFound(editor, scope, name)
	}

	next := slices.Clone(current)
	updated := *next[idx]
	updated.Server = next[idx].Server.Clone()
	if want != nil {
		updated.Disabled = *want
	} else {
		updated.Disabled = !updated.Disabled
	}
	next[idx] = &updated

	if updated.Disabled == current[idx].Disabled {
		return updated.Disabled, nil
	}
	if err := m.write(a, scope, next); err != nil {
		return false, err
	}
	m.logger.Info("server enablement changed", "editor", editor, "scope", scope, "server", name, "disabled", updated.Disabled)
	return updated.Disabled, nil
}

// RawConfig returns the content stored for the scope as it is on disk, for
// viewing and editing as text. A missing file is shown as the empty
// document the editor starts from. Content that cannot be parsed is still
// returned so it can be repaired with SaveRawConfig.
func (m *Manager) RawConfig(editor mcp.Editor, scope mcp.Scope) ([]byte, error) {
	a, err := m.scopeAdapter(editor, scope)
	if err != nil {
		return nil, err
	}
	if _, err := a.ReadConfig(scope); err != nil {
		if !isParseError(err) {
			return nil, err
		}
		m.logger.Warn("config cannot be parsed, showing it as stored", "editor", editor, "scope", scope, "error", err)
	}
	data, exists, err := platform.ReadConfigFile(a.ConfigPath(scope))
	if err != nil {
		return nil, err
	}
	if !exists || len(bytes.TrimSpace(data)) == 0 {
		return a.SerializeConfigData(nil, scope)
	}
	return data, nil
}

// SaveRawConfig replaces the content stored for the scope with raw. raw is
// a whole document: its servers, input definitions and other top-level
// keys are saved together in one write.
//
// The current file may be damaged. Its server names are then unknown, so
// every server the user has locked for the editor must be present in raw.
func (m *Manager) SaveRawConfig(editor mcp.Editor, scope mcp.Scope, raw []byte) error {
	a, err := m.scopeAdapter(editor, scope)
	if err != nil {
		return err
	}
	subject := a.ConfigPath(scope)

	if err := a.ValidateConfigStructure(raw, scope).Err(subject); err != nil {
		return err
	}
	servers, err := a.ParseConfigData(raw, scope)
	if err != nil {
		return err
	}

	var opts []mcpvalidator.Option
	if ia, ok := a.(platform.InputAdapter); ok {
		inputs, err := ia.ParseInputsData(raw, scope)
		if err != nil {
			return err
		}
		opts = append(opts, mcpvalidator.WithInputs(inputs))
	}

	result := &validator.Result{}
	for i, s := range servers {
		result.Merge(fmt.Sprintf("servers[%d]", i), a.ValidateServerConfig(s.Server, opts...))
	}
	if err := result.Err(subject); err != nil {
		return err
	}

	current, err := m.currentNames(a, scope)
	if err != nil {
		return err
	}
	if err := m.checkProtected(editor, mcp.Names(servers), current); err != nil {
		return err
	}

	if err := m.snapshot(a, scope); err != nil {
		return err
	}
	if err := a.WriteConfigData(raw, scope); err != nil {
		return err
	}
	m.logger.Info("raw config saved", "editor", editor, "scope", scope, "servers", len(servers))
	return nil
}

// currentNames returns the names of the servers stored in scope. When the
// file cannot be parsed it returns the names user-locked for the editor.
func (m *Manager) currentNames(a platform.Adapter, scope mcp.Scope) ([]string, error) {
	current, err := a.ReadConfig(scope)
	if err == nil {
		return mcp.Names(current), nil
	}
	if !isParseError(err) {
		return nil, err
	}
	m.logger.Warn("replacing config that cannot be parsed", "editor", a.Editor(), "scope", scope, "error", err)
	if m.guard == nil {
		return nil, nil
	}
	return m.guard.UserLockedServers(a.Editor())
}

func isParseError(err error) bool {
	var parseErr *errors.ParseError
	return errors.As(err, &parseErr)
}

// ValidateAllConfigurations checks every existing config file. Field
// paths are rooted at the scope, e.g. "workspace.servers[1].url".
func (m *Manager) ValidateAllConfigurations() map[mcp.Editor]*validator.Result {
	out := make(map[mcp.Editor]*validator.Result)
	for _, a := range m.registry.All() {
		result := &validator.Result{}
		for _, scope := range a.Capabilities().Scopes {
			if !a.ScopeAvailable(scope) {
				continue
			}
			m.validateScope(result, a, scope)
		}
		out[a.Editor()] = result
	}
	return out
}

func (m *Manager) validateScope(result *validator.Result, a platform.Adapter, scope mcp.Scope) {
	prefix := string(scope)
	path := a.ConfigPath(scope)
	raw, exists, err := platform.ReadConfigFile(path)
	if err != nil {
		result.AddError(prefix, mcpvalidator.CodeInvalidStructure, err.Error())
		return
	}
	if !exists {
		return
	}

	structure := a.ValidateConfigStructure(raw, scope)
	result.Merge(prefix, structure)
	if structure.HasErrors() {
		return
	}

	servers, err := a.ParseConfigData(raw, scope)
	if err != nil {
		result.AddError(prefix, mcpvalidator.CodeInvalidStructure, err.Error())
		return
	}

	var inputs []mcp.Input
	ia, hasInputs := a.(platform.InputAdapter)
	if hasInputs {
		if inputs, err = ia.ParseInputsData(raw, scope); err != nil {
			hasInputs = false
		}
	}

	defs := make([]*mcp.Server, len(servers))
	for i, s := range servers {
		var opts []mcpvalidator.Option
		if hasInputs {
			opts = append(opts, mcpvalidator.WithInputs(inputs))
		}
		result.Merge(validator.JoinField(prefix, fmt.Sprintf("servers[%d]", i)), a.ValidateServerConfig(s.Server, opts...))
		defs[i] = s.Server
	}
	if hasInputs {
		result.Merge(prefix, mcpvalidator.UnusedInputs(inputs, defs))
	}
}

func (m *Manager) scopeAdapter(editor mcp.Editor, scope mcp.Scope) (platform.Adapter, error) {
	a := m.registry.Get(editor)
	if a == nil {
		return nil, errors.Wrapf(platform.ErrInvalidEditor, "%q is not configured", editor)
	}
	if !a.SupportsScope(scope) {
		return nil, platform.ScopeError(editor, scope)
	}
	return a, nil
}

// validate runs the adapter's server rules. Editors with inputs also check
// ${input:id} references against the scope's current definitions.
func (m *Manager) validate(a platform.Adapter, scope mcp.Scope, s *mcp.Server) *validator.Result {
	var opts []mcpvalidator.Option
	if ia, ok := a.(platform.InputAdapter); ok && a.Capabilities().SupportsInputs {
		inputs, err := ia.ReadInputs(scope)
		if err != nil {
			m.logger.Debug("inputs unavailable, skipping reference check", "editor", a.Editor(), "scope", scope, "error", err)
		} else {
			opts = append(opts, mcpvalidator.WithInputs(inputs))
		}
	}
	return a.ValidateServerConfig(s, opts...)
}

func (m *Manager) checkProtected(editor mcp.Editor, proposed, current []string) error {
	if m.guard == nil {
		return nil
	}
	return m.guard.ValidateLockedServersPresent(proposed, editor, current)
}

func (m *Manager) write(a platform.Adapter, scope mcp.Scope, servers []*mcp.ServerWithMetadata) error {
	if err := m.snapshot(a, scope); err != nil {
		return err
	}
	return a.WriteConfig(servers, scope)
}

func (m *Manager) snapshot(a platform.Adapter, scope mcp.Scope) error {
	if m.backups == nil {
		return nil
	}
	manifest, err := m.backups.Snapshot(a.Editor(), a.ConfigPath(scope))
	switch {
	case err != nil && manifest == nil:
		return errors.Wrapf(err, "backing up %s", a.ConfigPath(scope))
	case err != nil:
		m.logger.Warn("backup taken but pruning failed", "editor", a.Editor(), "error", err)
	case manifest != nil:
		m.logger.Debug("config backed up", "editor", a.Editor(), "scope", scope, "backup", manifest.ID)
	}
	return nil
}

func notFound(editor mcp.Editor, scope mcp.Scope, name string) error {
	return errors.Wrapf(errors.ErrServerNotFound, "%q in %s %s", name, editor, scope)
}
