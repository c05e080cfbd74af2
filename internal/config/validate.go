package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/mcp"
)

// Validation errors for configuration fields.
var (
	// ErrVersionTooLow indicates the version field is below the minimum.
	ErrVersionTooLow = errors.New("version must be >= 1")

	// ErrVersionUnsupported indicates a config written by a newer mcpm.
	ErrVersionUnsupported = errors.New("unsupported config version")

	// ErrInvalidEditor indicates an unrecognized editor name.
	ErrInvalidEditor = errors.New("invalid editor")

	// ErrInvalidPath indicates a path value is malformed.
	ErrInvalidPath = errors.New("invalid path")

	// ErrInvalidTimeout indicates a probe timing that is not positive or
	// does not fit inside the stdio timeout.
	ErrInvalidTimeout = errors.New("invalid timeout")

	// ErrInvalidRetention indicates a backup retention below one.
	ErrInvalidRetention = errors.New("backup retention must be >= 1")
)

// Validate checks a Config for validity.
// Returns nil if valid, or a slice of validation errors.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error

	switch {
	case cfg.Version < 1:
		errs = append(errs, ErrVersionTooLow)
	case cfg.Version > CurrentVersion:
		errs = append(errs, errors.Wrapf(ErrVersionUnsupported, "%d", cfg.Version))
	}

	for name, override := range cfg.Editors {
		editor, ok := mcp.ParseEditor(name)
		if !ok || editor == mcp.EditorVSCode {
			errs = append(errs, &EditorError{Editor: name, Err: ErrInvalidEditor})
			continue
		}
		errs = appendPathError(errs, "editors."+name+".config_path", override.ConfigPath)
	}

	errs = appendPathError(errs, "vscode.user_settings", cfg.VSCode.UserSettings)
	errs = appendPathError(errs, "workspace", cfg.Workspace)
	errs = appendPathError(errs, "protection.state_file", cfg.Protection.StateFile)
	errs = appendPathError(errs, "backup.dir", cfg.Backup.Dir)

	for _, t := range []struct {
		field string
		value time.Duration
	}{
		{"probe.stdio_timeout", cfg.Probe.StdioTimeout},
		{"probe.startup_window", cfg.Probe.StartupWindow},
		{"probe.network_timeout", cfg.Probe.NetworkTimeout},
	} {
		if t.value <= 0 {
			errs = append(errs, errors.Wrapf(ErrInvalidTimeout, "%s must be positive, got %s", t.field, t.value))
		}
	}
	if cfg.Probe.StartupWindow > 0 && cfg.Probe.StdioTimeout > 0 && cfg.Probe.StartupWindow >= cfg.Probe.StdioTimeout {
		errs = append(errs, errors.Wrapf(ErrInvalidTimeout,
			"probe.startup_window (%s) must be shorter than probe.stdio_timeout (%s)",
			cfg.Probe.StartupWindow, cfg.Probe.StdioTimeout))
	}

	if cfg.Backup.Enabled && cfg.Backup.Retention < 1 {
		errs = append(errs, ErrInvalidRetention)
	}

	return errs
}

func appendPathError(errs []error, field, path string) []error {
	if err := validatePath(path); err != nil {
		errs = append(errs, &PathError{Field: field, Path: path, Err: err})
	}
	return errs
}

// validatePath checks if a path string is well-formed.
// It does not check if the path exists, only that it's syntactically valid.
func validatePath(path string) error {
	// Empty paths are valid (they mean "use default")
	if path == "" {
		return nil
	}

	// Check for null bytes which are never valid in paths
	if strings.ContainsRune(path, '\x00') {
		return ErrInvalidPath
	}

	cleaned := filepath.Clean(path)
	if cleaned == "" || cleaned == "." {
		return ErrInvalidPath
	}

	return nil
}

// EditorError represents an error for a specific editor key.
type EditorError struct {
	Editor string
	Err    error
}

func (e *EditorError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err, e.Editor)
}

func (e *EditorError) Unwrap() error {
	return e.Err
}

// PathError represents an error for a specific path field.
type PathError struct {
	Field string
	Path  string
	Err   error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s: %s: %q", e.Field, e.Err, e.Path)
}

func (e *PathError) Unwrap() error {
	return e.Err
}
