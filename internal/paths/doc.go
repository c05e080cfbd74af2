// Package paths provides cross-platform path resolution for editor MCP
// configuration files and for mcpm's own state.
//
// # XDG Base Directory Compliance
//
// The package wraps github.com/adrg/xdg for cross-platform XDG Base Directory
// Specification compliance. On Linux and macOS, paths follow XDG conventions
// (~/.config, ~/.local/state, ~/.local/share).
//
// # Editor Configuration Files
//
//	| Editor   | Scope     | File                                    |
//	|----------|-----------|-----------------------------------------|
//	| Cursor   | global    | ~/.cursor/mcp.json                      |
//	| Windsurf | global    | ~/.codeium/windsurf/mcp_config.json     |
//	| VS Code  | workspace | <root>/.vscode/mcp.json                 |
//	| VS Code  | user      | <ConfigHome>/Code/User/settings.json    |
//
// # Application Files
//
//	paths.AppConfigFile()       // <ConfigHome>/mcpm/config.yaml
//	paths.ProtectionStateFile() // <StateHome>/mcpm/protection.json
//	paths.BackupDir()           // <DataHome>/mcpm/backups
//
// Functions that depend on the home directory return empty strings when it
// cannot be determined.
package paths
