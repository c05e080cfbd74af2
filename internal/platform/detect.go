package platform

import (
	"os"
	"path/filepath"

	"github.com/thoreinstein/mcpm/internal/mcp"
	"github.com/thoreinstein/mcpm/internal/paths"
)

// InstallStatus indicates the installation state of an editor.
type InstallStatus string

const (
	// StatusInstalled indicates the editor's config directory exists.
	StatusInstalled InstallStatus = "installed"

	// StatusNotInstalled indicates the editor's config directory does not exist.
	StatusNotInstalled InstallStatus = "not_installed"
)

// ScopeInfo describes one configuration scope of a detected editor.
type ScopeInfo struct {
	Scope      mcp.Scope
	ConfigPath string
	Available  bool
	Exists     bool
}

// DetectionResult contains information about a detected editor.
type DetectionResult struct {
	// Editor is the editor identifier.
	Editor mcp.Editor

	// DisplayName is the human-readable editor name.
	DisplayName string

	// ConfigDir is the directory whose presence marks the editor as
	// installed. It is always set, even if the directory does not exist.
	ConfigDir string

	// Scopes lists every scope the editor supports.
	Scopes []ScopeInfo

	// Status indicates the installation state of the editor.
	Status InstallStatus
}

// Detect returns detection info for the editor behind a.
func Detect(a Adapter) *DetectionResult {
	if a == nil {
		return nil
	}

	configDir := paths.EditorConfigDir(a.Editor())
	status := StatusNotInstalled
	if dirExists(configDir) {
		status = StatusInstalled
	}

	result := &DetectionResult{
		Editor:      a.Editor(),
		DisplayName: a.DisplayName(),
		ConfigDir:   configDir,
		Status:      status,
	}
	for _, scope := range a.Capabilities().Scopes {
		path := a.ConfigPath(scope)
		result.Scopes = append(result.Scopes, ScopeInfo{
			Scope:      scope,
			ConfigPath: path,
			Available:  a.ScopeAvailable(scope),
			Exists:     fileExists(path),
		})
	}
	return result
}

// DetectAll returns detection results for every adapter, in order.
func DetectAll(adapters []Adapter) []*DetectionResult {
	results := make([]*DetectionResult, 0, len(adapters))
	for _, a := range adapters {
		if result := Detect(a); result != nil {
			results = append(results, result)
		}
	}
	return results
}

// DefaultWorkspaceMarkers are the files and directories whose presence in a
// directory marks it as a project root.
var DefaultWorkspaceMarkers = []string{
	// dependency manifests
	"package.json",
	"go.mod",
	"Cargo.toml",
	"pyproject.toml",
	"requirements.txt",
	"pom.xml",
	"build.gradle",
	"composer.json",
	"Gemfile",
	"deno.json",
	// version control
	".git",
	".hg",
	".svn",
	// readme
	"README.md",
	"README",
}

// WorkspacePolicy decides whether a workspace-scoped config directory may
// be used or created.
type WorkspacePolicy struct {
	// Markers are checked in the parent of the config directory.
	Markers []string

	// Home is the user's home directory. When empty, paths.Home() is used.
	Home string
}

// DefaultWorkspacePolicy returns a policy using DefaultWorkspaceMarkers.
func DefaultWorkspacePolicy() WorkspacePolicy {
	return WorkspacePolicy{Markers: DefaultWorkspaceMarkers}
}

// Available reports whether configDir (e.g. <root>/.vscode) is usable.
// An existing directory always is. Otherwise its parent must contain one
// of the markers, and must be neither the filesystem root nor the home
// directory.
func (p WorkspacePolicy) Available(configDir string) bool {
	if configDir == "" {
		return false
	}
	if dirExists(configDir) {
		return true
	}

	parent := filepath.Dir(filepath.Clean(configDir))
	if parent == filepath.Dir(parent) {
		return false
	}
	home := p.Home
	if home == "" {
		home = paths.Home()
	}
	if home != "" && filepath.Clean(home) == parent {
		return false
	}

	for _, marker := range p.Markers {
		if _, err := os.Stat(filepath.Join(parent, marker)); err == nil {
			return true
		}
	}
	return false
}

// dirExists returns true if the path exists and is a directory.
func dirExists(path string) bool {
	if path == "" {
		return false
	}

	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	return info.IsDir()
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
