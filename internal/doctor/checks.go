package doctor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/tailscale/hujson"

	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/mcp"
	"github.com/thoreinstein/mcpm/internal/platform"
)

// maxSecureFilePerm is the widest permission allowed for config files
// (-rw-r--r--). They hold env values and headers that are often secrets.
const maxSecureFilePerm os.FileMode = 0o644

// configFile is one scope's config file of one editor.
type configFile struct {
	editor string
	scope  string
	path   string
}

// configFiles lists the config file of every available scope.
func configFiles(adapters []platform.Adapter) []configFile {
	var files []configFile
	for _, a := range adapters {
		for _, scope := range a.Capabilities().Scopes {
			if !a.ScopeAvailable(scope) {
				continue
			}
			path := a.ConfigPath(scope)
			if path == "" {
				continue
			}
			files = append(files, configFile{editor: string(a.Editor()), scope: string(scope), path: path})
		}
	}
	return files
}

// PathPermissionCheck validates the permissions of config files and the
// directories holding them.
type PathPermissionCheck struct {
	PermissionFixer
	adapters []platform.Adapter
}

var (
	_ Check = (*PathPermissionCheck)(nil)
	_ Fixer = (*PathPermissionCheck)(nil)
)

// NewPathPermissionCheck creates a new path permission check.
func NewPathPermissionCheck(adapters []platform.Adapter) *PathPermissionCheck {
	return &PathPermissionCheck{adapters: adapters}
}

// Name returns the unique identifier for this check.
func (c *PathPermissionCheck) Name() string {
	return "path-permissions"
}

// Category returns the grouping for this check.
func (c *PathPermissionCheck) Category() string {
	return "filesystem"
}

// pathIssue represents a single path or permission problem.
type pathIssue struct {
	Path        string
	Editor      string
	Type        string // "file" or "directory"
	Problem     string
	Severity    Severity
	Permissions string
	Fixable     bool
	FixHint     string
}

// Run executes the path and permission diagnostic check.
func (c *PathPermissionCheck) Run() *CheckResult {
	var issues []pathIssue
	checked := 0
	seenDirs := make(map[string]bool)

	for _, f := range configFiles(c.adapters) {
		if _, err := os.Stat(f.path); os.IsNotExist(err) {
			continue
		}
		issues = append(issues, c.checkFile(f.path, f.editor)...)
		checked++

		dir := filepath.Dir(f.path)
		if !seenDirs[dir] {
			seenDirs[dir] = true
			issues = append(issues, c.checkDirectory(dir, f.editor)...)
			checked++
		}
	}

	c.setIssues(issues)
	return c.buildResult(issues, checked)
}

// checkFile validates a config file path and permissions.
func (c *PathPermissionCheck) checkFile(path, editor string) []pathIssue {
	info, err := os.Stat(path)
	if err != nil {
		return []pathIssue{{
			Path:     path,
			Editor:   editor,
			Type:     "file",
			Problem:  fmt.Sprintf("cannot stat file: %v", err),
			Severity: SeverityError,
		}}
	}
	if !info.Mode().IsRegular() {
		return []pathIssue{{
			Path:     path,
			Editor:   editor,
			Type:     "file",
			Problem:  "expected a regular file",
			Severity: SeverityError,
		}}
	}

	f, err := os.Open(path)
	if err != nil {
		return []pathIssue{{
			Path:        path,
			Editor:      editor,
			Type:        "file",
			Problem:     "file is not readable",
			Severity:    SeverityError,
			Permissions: formatPermissions(info.Mode()),
			FixHint:     "chmod 644 " + path,
		}}
	}
	f.Close()

	// Unix permission bits mean nothing on Windows.
	if runtime.GOOS == "windows" {
		return nil
	}
	return c.checkFilePermissions(path, editor, info.Mode())
}

// checkDirectory validates a config directory path and permissions.
func (c *PathPermissionCheck) checkDirectory(path, editor string) []pathIssue {
	info, err := os.Stat(path)
	if err != nil {
		return []pathIssue{{
			Path:     path,
			Editor:   editor,
			Type:     "directory",
			Problem:  fmt.Sprintf("cannot stat directory: %v", err),
			Severity: SeverityError,
		}}
	}

	var issues []pathIssue
	if !isDirectoryWritable(path) {
		issues = append(issues, pathIssue{
			Path:        path,
			Editor:      editor,
			Type:        "directory",
			Problem:     "directory is not writable; atomic saves will fail",
			Severity:    SeverityError,
			Permissions: formatPermissions(info.Mode()),
			FixHint:     "chmod u+w " + path,
		})
	}

	if runtime.GOOS != "windows" && info.Mode().Perm()&0o002 != 0 {
		issues = append(issues, pathIssue{
			Path:        path,
			Editor:      editor,
			Type:        "directory",
			Problem:     "directory is world-writable (security risk)",
			Severity:    SeverityWarning,
			Permissions: formatPermissions(info.Mode()),
			Fixable:     true,
			FixHint:     "chmod 755 " + path,
		})
	}
	return issues
}

// checkFilePermissions validates file permissions for security concerns.
func (c *PathPermissionCheck) checkFilePermissions(path, editor string, mode os.FileMode) []pathIssue {
	perm := mode.Perm()
	switch {
	case perm&0o002 != 0:
		return []pathIssue{{
			Path:        path,
			Editor:      editor,
			Type:        "file",
			Problem:     "file is world-writable (security risk)",
			Severity:    SeverityWarning,
			Permissions: formatPermissions(mode),
			Fixable:     true,
			FixHint:     "chmod 644 " + path,
		}}
	case perm&^maxSecureFilePerm != 0:
		problem := fmt.Sprintf("file has overly permissive permissions (mode %s, expected %s or less)",
			formatPermissions(mode), formatPermissions(maxSecureFilePerm))
		return []pathIssue{{
			Path:        path,
			Editor:      editor,
			Type:        "file",
			Problem:     problem,
			Severity:    SeverityWarning,
			Permissions: formatPermissions(mode),
			Fixable:     true,
			FixHint:     "chmod 644 " + path,
		}}
	}
	return nil
}

// isDirectoryWritable tests if a directory is writable by creating a temp
// file in it. Config saves go through a temp file in the same directory.
func isDirectoryWritable(path string) bool {
	tmp, err := os.CreateTemp(path, ".mcpm-doctor-*")
	if err != nil {
		return false
	}
	name := tmp.Name()
	tmp.Close()
	os.Remove(name)
	return true
}

// buildResult constructs the final CheckResult from accumulated issues.
func (c *PathPermissionCheck) buildResult(issues []pathIssue, checked int) *CheckResult {
	if len(issues) == 0 {
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityPass,
			Message:  fmt.Sprintf("all %d paths have valid permissions", checked),
		}
	}

	status := SeverityWarning
	issueDetails := make([]map[string]any, 0, len(issues))
	var fixHints []string
	fixable := false
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			status = SeverityError
		}
		m := map[string]any{
			"path":     issue.Path,
			"editor":   issue.Editor,
			"type":     issue.Type,
			"problem":  issue.Problem,
			"severity": issue.Severity.String(),
		}
		if issue.Permissions != "" {
			m["permissions"] = issue.Permissions
		}
		if issue.FixHint != "" {
			m["fix_hint"] = issue.FixHint
			fixHints = append(fixHints, issue.FixHint)
		}
		if issue.Fixable {
			fixable = true
		}
		issueDetails = append(issueDetails, m)
	}

	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Status:   status,
		Message:  fmt.Sprintf("found %d permission issue(s) across %d paths", len(issues), checked),
		Details: map[string]any{
			"checked_paths": checked,
			"issue_count":   len(issues),
			"issues":        issueDetails,
		},
		Fixable: fixable,
	}
	if len(fixHints) > 0 {
		result.FixHint = strings.Join(slices.Compact(fixHints), "; ")
	}
	return result
}

// formatPermissions returns a human-readable permission string (e.g., "0644").
func formatPermissions(mode os.FileMode) string {
	return fmt.Sprintf("%04o", mode.Perm())
}

// ConfigSyntaxCheck parses every existing config file. VS Code files are
// JSON with comments; the other editors read strict JSON.
type ConfigSyntaxCheck struct {
	adapters []platform.Adapter
}

var _ Check = (*ConfigSyntaxCheck)(nil)

// NewConfigSyntaxCheck creates a new ConfigSyntaxCheck instance.
func NewConfigSyntaxCheck(adapters []platform.Adapter) *ConfigSyntaxCheck {
	return &ConfigSyntaxCheck{adapters: adapters}
}

// Name returns the unique identifier for this check.
func (c *ConfigSyntaxCheck) Name() string {
	return "config-syntax"
}

// Category returns the grouping for this check.
func (c *ConfigSyntaxCheck) Category() string {
	return "config"
}

// syntaxFileResult represents the validation result for a single file.
type syntaxFileResult struct {
	Editor  string `json:"editor"`
	Scope   string `json:"scope"`
	Path    string `json:"path"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Run executes the syntax validation check across all available scopes.
func (c *ConfigSyntaxCheck) Run() *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details:  make(map[string]any),
	}

	var fileResults []syntaxFileResult
	var errorCount, passCount, missingCount int
	for _, f := range configFiles(c.adapters) {
		fr := validateFile(f)
		fileResults = append(fileResults, fr)
		switch fr.Status {
		case "pass":
			passCount++
		case "error":
			errorCount++
		case "info":
			missingCount++
		}
	}

	result.Details["files"] = fileResults
	result.Details["checked"] = len(fileResults)
	result.Details["passed"] = passCount
	result.Details["errors"] = errorCount
	result.Details["missing"] = missingCount

	switch {
	case errorCount > 0:
		result.Status = SeverityError
		result.Message = fmt.Sprintf("%d config file(s) have syntax errors", errorCount)
		result.FixHint = "fix the files by hand or with 'mcpm raw edit', or roll back with 'mcpm backup restore'"
	case passCount > 0:
		result.Status = SeverityPass
		result.Message = fmt.Sprintf("%d config file(s) parsed successfully", passCount)
	default:
		result.Status = SeverityInfo
		result.Message = "no config files found to validate"
	}
	return result
}

// validateFile checks whether a file parses as JSON with comments.
func validateFile(f configFile) syntaxFileResult {
	fr := syntaxFileResult{Editor: f.editor, Scope: f.scope, Path: f.path}

	data, err := os.ReadFile(f.path)
	switch {
	case os.IsNotExist(err):
		fr.Status = "info"
		fr.Message = "file does not exist (not configured)"
		return fr
	case os.IsPermission(err):
		fr.Status = "error"
		fr.Message = fmt.Sprintf("permission denied: %v", err)
		return fr
	case err != nil:
		fr.Status = "error"
		fr.Message = fmt.Sprintf("read error: %v", err)
		return fr
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		fr.Status = "pass"
		fr.Message = "empty file"
		return fr
	}

	if f.editor == string(mcp.EditorVSCode) {
		v, err := hujson.Parse(data)
		if err != nil {
			fr.Status = "error"
			fr.Message = err.Error()
			return fr
		}
		v.Standardize()
		data = v.Pack()
	}

	var top any
	if err := json.Unmarshal(data, &top); err != nil {
		fr.Status = "error"
		fr.Message = formatJSONError(err, data)
		return fr
	}
	if _, ok := top.(map[string]any); !ok {
		fr.Status = "error"
		fr.Message = "top-level value is not an object"
		return fr
	}
	fr.Status = "pass"
	return fr
}

// formatJSONError extracts position information from JSON syntax errors.
func formatJSONError(err error, data []byte) string {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		line, col := offsetToLineCol(data, int(syntaxErr.Offset))
		return fmt.Sprintf("JSON syntax error at line %d, column %d: %s", line, col, syntaxErr.Error())
	}
	return fmt.Sprintf("JSON error: %v", err)
}

// offsetToLineCol converts a byte offset to 1-indexed line and column.
func offsetToLineCol(data []byte, offset int) (line, col int) {
	offset = max(0, min(offset, len(data)))

	line = 1
	lineStart := 0
	for i := range offset {
		if data[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	return line, offset - lineStart + 1
}
