package doctor

import (
	"fmt"
	"slices"
	"strings"

	"github.com/thoreinstein/mcpm/internal/mcp"
)

// ValidationCheck runs the validation engine over every editor's config.
type ValidationCheck struct {
	src Source
}

var _ Check = (*ValidationCheck)(nil)

// NewValidationCheck creates a check over every configuration of src.
func NewValidationCheck(src Source) *ValidationCheck {
	return &ValidationCheck{src: src}
}

// Name returns the unique identifier for this check.
func (c *ValidationCheck) Name() string {
	return "config-validation"
}

// Category returns the grouping for this check.
func (c *ValidationCheck) Category() string {
	return "mcp"
}

// Run validates every configuration and summarizes the issues per editor.
func (c *ValidationCheck) Run() *CheckResult {
	results := c.src.ValidateAllConfigurations()

	editors := make(map[string]any, len(results))
	var errCount, warnCount int
	for editor, r := range results {
		var lines []string
		for _, issue := range r.Issues {
			lines = append(lines, issue.Error())
		}
		errCount += len(r.Errors())
		warnCount += len(r.Warnings())
		if len(lines) > 0 {
			editors[string(editor)] = lines
		}
	}

	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details: map[string]any{
			"errors":   errCount,
			"warnings": warnCount,
		},
	}
	if len(editors) > 0 {
		result.Details["issues"] = editors
	}

	switch {
	case errCount > 0:
		result.Status = SeverityError
		result.Message = fmt.Sprintf("%d validation error(s), %d warning(s)", errCount, warnCount)
		result.FixHint = "run 'mcpm validate' for details"
	case warnCount > 0:
		result.Status = SeverityWarning
		result.Message = fmt.Sprintf("%d validation warning(s)", warnCount)
		result.FixHint = "run 'mcpm validate' for details"
	default:
		result.Status = SeverityPass
		result.Message = fmt.Sprintf("%d editor configuration(s) are valid", len(results))
	}
	return result
}

// ProtectionCheck loads the protection state and lists the locked servers
// of each editor.
type ProtectionCheck struct {
	src Source
}

var _ Check = (*ProtectionCheck)(nil)

// NewProtectionCheck creates a protection state check.
func NewProtectionCheck(src Source) *ProtectionCheck {
	return &ProtectionCheck{src: src}
}

// Name returns the unique identifier for this check.
func (c *ProtectionCheck) Name() string {
	return "protection-state"
}

// Category returns the grouping for this check.
func (c *ProtectionCheck) Category() string {
	return "mcp"
}

// Run executes the protection check.
func (c *ProtectionCheck) Run() *CheckResult {
	result := &CheckResult{Name: c.Name(), Category: c.Category()}

	read, err := c.src.ReadAllServers()
	if err != nil {
		result.Status = SeverityError
		result.Message = fmt.Sprintf("reading servers: %v", err)
		return result
	}

	byEditor := make(map[mcp.Editor][]string)
	for _, s := range read.Servers {
		byEditor[s.Editor] = append(byEditor[s.Editor], s.Name)
	}

	locked := make(map[string]any)
	total := 0
	for _, a := range c.src.Adapters() {
		names, err := c.src.Guard().LockedServers(a.Editor(), byEditor[a.Editor()])
		if err != nil {
			result.Status = SeverityError
			result.Message = fmt.Sprintf("protection state is unreadable: %v", err)
			result.FixHint = "repair or delete the file named by protection.state_file"
			return result
		}
		if len(names) > 0 {
			locked[string(a.Editor())] = names
			total += len(names)
		}
	}

	result.Status = SeverityPass
	result.Message = fmt.Sprintf("%d locked server(s)", total)
	if total > 0 {
		result.Details = map[string]any{"locked": locked}
	}
	return result
}

// ShadowCheck finds names defined in more than one scope of an editor.
// VS Code starts the workspace definition and ignores the user one.
type ShadowCheck struct {
	src Source
}

var _ Check = (*ShadowCheck)(nil)

// NewShadowCheck creates a shadowed-name check.
func NewShadowCheck(src Source) *ShadowCheck {
	return &ShadowCheck{src: src}
}

// Name returns the unique identifier for this check.
func (c *ShadowCheck) Name() string {
	return "shadowed-servers"
}

// Category returns the grouping for this check.
func (c *ShadowCheck) Category() string {
	return "mcp"
}

// Run executes the shadow check.
func (c *ShadowCheck) Run() *CheckResult {
	result := &CheckResult{Name: c.Name(), Category: c.Category()}

	read, err := c.src.ReadAllServers()
	if err != nil {
		result.Status = SeverityError
		result.Message = fmt.Sprintf("reading servers: %v", err)
		return result
	}

	type key struct {
		editor mcp.Editor
		name   string
	}
	scopes := make(map[key][]string)
	for _, s := range read.Servers {
		k := key{s.Editor, s.Name}
		scopes[k] = append(scopes[k], string(s.Scope))
	}

	var shadowed []string
	for k, in := range scopes {
		if len(in) > 1 {
			shadowed = append(shadowed, fmt.Sprintf("%s: %s (%s)", k.editor, k.name, strings.Join(in, ", ")))
		}
	}
	slices.Sort(shadowed)

	if len(shadowed) == 0 {
		result.Status = SeverityPass
		result.Message = "no server is defined in more than one scope"
		return result
	}
	result.Status = SeverityInfo
	result.Message = fmt.Sprintf("%d server name(s) are defined in more than one scope", len(shadowed))
	result.Details = map[string]any{"shadowed": shadowed}
	return result
}
