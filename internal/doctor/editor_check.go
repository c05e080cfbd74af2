package doctor

import (
	"fmt"

	"github.com/thoreinstein/mcpm/internal/platform"
)

// EditorCheck reports which editors are installed and which of their
// scopes can be written.
type EditorCheck struct {
	adapters []platform.Adapter
}

var _ Check = (*EditorCheck)(nil)

// NewEditorCheck creates a new editor detection check.
func NewEditorCheck(adapters []platform.Adapter) *EditorCheck {
	return &EditorCheck{adapters: adapters}
}

// Name returns the unique identifier for this check.
func (c *EditorCheck) Name() string {
	return "editor-detection"
}

// Category returns the grouping for this check.
func (c *EditorCheck) Category() string {
	return "editor"
}

// Run executes the editor detection check and returns its result.
func (c *EditorCheck) Run() *CheckResult {
	results := platform.DetectAll(c.adapters)

	editors := make(map[string]any, len(results))
	var installed, notInstalled int
	for _, r := range results {
		scopes := make(map[string]any, len(r.Scopes))
		for _, s := range r.Scopes {
			scopes[string(s.Scope)] = map[string]any{
				"config_path": s.ConfigPath,
				"available":   s.Available,
				"exists":      s.Exists,
			}
		}
		editors[string(r.Editor)] = map[string]any{
			"status":     string(r.Status),
			"config_dir": r.ConfigDir,
			"scopes":     scopes,
		}

		if r.Status == platform.StatusInstalled {
			installed++
		} else {
			notInstalled++
		}
	}

	details := map[string]any{
		"editors":       editors,
		"installed":     installed,
		"not_installed": notInstalled,
		"total":         len(results),
	}

	if installed == 0 {
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityWarning,
			Message:  "no supported editors detected; mcpm has nothing to manage",
			Details:  details,
			FixHint:  "install Cursor, Windsurf or VS Code, or point editors.<name>.config_path at an existing file",
		}
	}

	msg := fmt.Sprintf("%d editor(s) installed", installed)
	if notInstalled > 0 {
		msg += fmt.Sprintf(", %d not found", notInstalled)
	}
	return &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Status:   SeverityPass,
		Message:  msg,
		Details:  details,
	}
}
