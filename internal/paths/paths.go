package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/mcpm/internal/mcp"
)

// AppName is the directory name used under the XDG base directories.
const AppName = "mcpm"

// editorConfigDirs maps editors to their global config directories,
// relative to the user's home directory. VS Code lives under ConfigHome
// instead and is handled separately.
var editorConfigDirs = map[mcp.Editor]string{
	mcp.EditorCursor:   ".cursor",
	mcp.EditorWindsurf: filepath.Join(".codeium", "windsurf"),
}

// Config file names.
const (
	cursorConfigFile       = "mcp.json"
	windsurfConfigFile     = "mcp_config.json"
	vscodeWorkspaceDir     = ".vscode"
	vscodeWorkspaceFile    = "mcp.json"
	vscodeUserSettingsFile = "settings.json"
	protectionStateFile    = "protection.json"
	appConfigFile          = "config.yaml"
)

// Sentinel errors for path resolution.
var (
	// ErrHomeDirNotFound indicates the user's home directory could not be determined.
	ErrHomeDirNotFound = errors.New("home directory not found")
)

// DefaultDirPerm is the default permission for newly created directories (private).
const DefaultDirPerm = 0o700

// EnsureDir creates the directory and any necessary parents with specified permissions.
// If perm is 0, DefaultDirPerm (0700) is used.
// This function is idempotent; it returns nil if the directory already exists.
func EnsureDir(path string, perm os.FileMode) error {
	if perm == 0 {
		perm = DefaultDirPerm
	}
	return os.MkdirAll(path, perm)
}

// Home returns the user's home directory, or "" when it cannot be
// determined. Use ResolveHome for proper error handling.
func Home() string {
	h, _ := ResolveHome()
	return h
}

// ResolveHome returns the user's home directory.
// Returns ErrHomeDirNotFound if the directory cannot be determined.
func ResolveHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(ErrHomeDirNotFound, err.Error())
	}
	return home, nil
}

// ConfigHome returns the XDG config home directory.
// On Linux: ~/.config
// On macOS: ~/Library/Application Support
// On Windows: %LOCALAPPDATA%
func ConfigHome() string {
	return xdg.ConfigHome
}

// StateHome returns the XDG state home directory.
// On Linux: ~/.local/state
// On macOS: ~/Library/Application Support
// On Windows: %LOCALAPPDATA%
func StateHome() string {
	return xdg.StateHome
}

// DataHome returns the XDG data home directory.
// On Linux: ~/.local/share
// On macOS: ~/Library/Application Support
// On Windows: %LOCALAPPDATA%
func DataHome() string {
	return xdg.DataHome
}

// AppConfigDir returns <ConfigHome>/mcpm.
func AppConfigDir() string {
	return filepath.Join(ConfigHome(), AppName)
}

// AppConfigFile returns <ConfigHome>/mcpm/config.yaml.
func AppConfigFile() string {
	return filepath.Join(AppConfigDir(), appConfigFile)
}

// ProtectionStateFile returns <StateHome>/mcpm/protection.json.
func ProtectionStateFile() string {
	return filepath.Join(StateHome(), AppName, protectionStateFile)
}

// BackupDir returns <DataHome>/mcpm/backups.
func BackupDir() string {
	return filepath.Join(DataHome(), AppName, "backups")
}

// EditorConfigDir returns the directory whose presence marks an editor as
// installed.
//
//   - cursor: ~/.cursor/
//   - windsurf: ~/.codeium/windsurf/
//   - vscode: <ConfigHome>/Code/
//
// Returns an empty string for unknown editors.
func EditorConfigDir(editor mcp.Editor) string {
	if editor == mcp.EditorVSCode {
		return filepath.Join(ConfigHome(), "Code")
	}
	rel, ok := editorConfigDirs[editor]
	if !ok {
		return ""
	}
	home := Home()
	if home == "" {
		return ""
	}
	return filepath.Join(home, rel)
}

// CursorConfigPath returns ~/.cursor/mcp.json.
func CursorConfigPath() string {
	dir := EditorConfigDir(mcp.EditorCursor)
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, cursorConfigFile)
}

// WindsurfConfigPath returns ~/.codeium/windsurf/mcp_config.json.
func WindsurfConfigPath() string {
	dir := EditorConfigDir(mcp.EditorWindsurf)
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, windsurfConfigFile)
}

// VSCodeWorkspaceDir returns <root>/.vscode, or "" for an empty root.
func VSCodeWorkspaceDir(root string) string {
	if root == "" {
		return ""
	}
	return filepath.Join(root, vscodeWorkspaceDir)
}

// VSCodeWorkspaceConfigPath returns <root>/.vscode/mcp.json.
func VSCodeWorkspaceConfigPath(root string) string {
	dir := VSCodeWorkspaceDir(root)
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, vscodeWorkspaceFile)
}

// VSCodeUserSettingsPath returns <ConfigHome>/Code/User/settings.json.
func VSCodeUserSettingsPath() string {
	return filepath.Join(EditorConfigDir(mcp.EditorVSCode), "User", vscodeUserSettingsFile)
}
