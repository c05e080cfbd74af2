package commands

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpm/internal/backup"
	"github.com/thoreinstein/mcpm/internal/config"
	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/logging"
	"github.com/thoreinstein/mcpm/internal/manager"
	"github.com/thoreinstein/mcpm/internal/mcp"
	"github.com/thoreinstein/mcpm/internal/paths"
	"github.com/thoreinstein/mcpm/internal/platform"
	"github.com/thoreinstein/mcpm/internal/platform/cursor"
	"github.com/thoreinstein/mcpm/internal/platform/vscode"
	"github.com/thoreinstein/mcpm/internal/platform/windsurf"
	"github.com/thoreinstein/mcpm/internal/probe"
	"github.com/thoreinstein/mcpm/internal/protect"
)

// app bundles the services a command works with, built from the loaded
// configuration.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	manager *manager.Manager
	backups *backup.Manager
	prober  *probe.Prober
}

// newApp wires the adapters, protection guard, backups and prober.
func newApp(cmd *cobra.Command) *app {
	cfg := loadedConfig
	if cfg == nil {
		config.Init()
		cfg, _ = config.Load("")
	}
	logger := logging.FromContext(cmd.Context())

	adapters := []platform.Adapter{
		cursor.New(cursor.WithConfigPath(expandPath(cfg.ConfigPath(mcp.EditorCursor)))),
		windsurf.New(windsurf.WithConfigPath(expandPath(cfg.ConfigPath(mcp.EditorWindsurf)))),
	}
	vsOpts := []vscode.Option{vscode.WithUserSettingsPath(expandPath(cfg.VSCode.UserSettings))}
	if cfg.Workspace != "" {
		vsOpts = append(vsOpts, vscode.WithWorkspaceRoot(expandPath(cfg.Workspace)))
	}
	adapters = append(adapters, vscode.New(vsOpts...))

	guard := protect.NewGuard(
		protect.NewFileStore(expandPath(cfg.Protection.StateFile)),
		cfg.Protection.Defaults,
		protect.WithLogger(logger),
	)

	a := &app{
		cfg:    cfg,
		logger: logger,
		prober: probe.New(
			probe.WithStdioTimeout(cfg.Probe.StdioTimeout),
			probe.WithStartupWindow(cfg.Probe.StartupWindow),
			probe.WithNetworkTimeout(cfg.Probe.NetworkTimeout),
			probe.WithLogger(logger),
		),
	}

	opts := []manager.Option{manager.WithGuard(guard), manager.WithLogger(logger)}
	if cfg.Backup.Enabled {
		a.backups = backup.NewManager(
			backup.WithBackupDir(expandPath(cfg.Backup.Dir)),
			backup.WithRetention(cfg.Backup.Retention),
		)
		opts = append(opts, manager.WithBackups(a.backups))
	}
	a.manager = manager.New(adapters, opts...)
	return a
}

// expandPath replaces a leading ~ with the home directory.
func expandPath(p string) string {
	if p == "~" {
		return paths.Home()
	}
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(paths.Home(), p[2:])
	}
	return p
}

// target is the editor and scope selected by --editor and --scope.
type target struct {
	editor  string
	scope   string
	require bool
}

// register adds --editor and --scope to cmd.
func (t *target) register(cmd *cobra.Command, require bool) {
	t.require = require
	cmd.Flags().StringVarP(&t.editor, "editor", "e", "",
		"editor: cursor, windsurf, vscode")
	cmd.Flags().StringVarP(&t.scope, "scope", "s", "",
		"scope: global (cursor, windsurf), workspace or user (vscode); default: the editor's first scope")
}

// filter returns the editor and scope to filter by. Unset values are empty.
func (t *target) filter() (mcp.Editor, mcp.Scope, error) {
	var editor mcp.Editor
	var scope mcp.Scope
	if t.editor != "" {
		e, ok := mcp.ParseEditor(t.editor)
		if !ok {
			return "", "", errors.NewUserError(
				errors.Wrapf(platform.ErrInvalidEditor, "%q", t.editor),
				"Valid editors: cursor, windsurf, vscode")
		}
		editor = e
	}
	if t.scope != "" {
		s, ok := mcp.ParseScope(t.scope)
		if !ok {
			return "", "", errors.NewUserError(
				errors.Newf("invalid scope %q", t.scope),
				"Valid scopes: global, workspace, user")
		}
		scope = s
	}
	if t.require && editor == "" {
		return "", "", errors.NewUserError(errors.New("--editor is required"), "Valid editors: cursor, windsurf, vscode")
	}
	return editor, scope, nil
}

// resolve returns one editor and scope, defaulting the scope to the
// editor's first supported scope.
func (t *target) resolve(m *manager.Manager) (mcp.Editor, mcp.Scope, error) {
	editor, scope, err := t.filter()
	if err != nil {
		return "", "", err
	}
	if editor == "" {
		return "", "", errors.NewUserError(errors.New("--editor is required"), "Valid editors: cursor, windsurf, vscode")
	}
	if scope == "" {
		if a := m.Adapter(editor); a != nil {
			scope = a.Capabilities().Scopes[0]
		}
	}
	return editor, scope, nil
}

// findServers returns every server named name within the filter.
func findServers(a *app, t *target, name string) ([]*mcp.ServerWithMetadata, error) {
	editor, scope, err := t.filter()
	if err != nil {
		return nil, err
	}
	result, err := a.manager.ReadAllServers()
	if err != nil {
		return nil, err
	}
	var matches []*mcp.ServerWithMetadata
	for _, s := range selectServers(result.Servers, editor, scope) {
		if s.Name == name {
			matches = append(matches, s)
		}
	}
	if len(matches) == 0 {
		return nil, errors.NewUserError(
			errors.Wrapf(errors.ErrServerNotFound, "%q", name),
			"Run 'mcpm list' to see configured servers")
	}
	return matches, nil
}

// selectServers keeps the servers of editor and scope. An empty editor or
// scope matches everything.
func selectServers(servers []*mcp.ServerWithMetadata, editor mcp.Editor, scope mcp.Scope) []*mcp.ServerWithMetadata {
	out := make([]*mcp.ServerWithMetadata, 0, len(servers))
	for _, s := range servers {
		if editor != "" && s.Editor != editor {
			continue
		}
		if scope != "" && s.Scope != scope {
			continue
		}
		out = append(out, s)
	}
	return out
}
