package errors

import (
	"fmt"
	"strings"

	crdb "github.com/cockroachdb/errors"
)

// Exit codes for CLI applications.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitUser indicates a user-related error (invalid input, locked server, etc.).
	ExitUser = 1

	// ExitSystem indicates a system-related error (I/O, network, permissions, etc.).
	ExitSystem = 2
)

// Re-exports of the cockroachdb/errors helpers so callers import a single
// errors package.
var (
	New   = crdb.New
	Newf  = crdb.Newf
	Wrap  = crdb.Wrap
	Wrapf = crdb.Wrapf
	Is    = crdb.Is
	As    = crdb.As
	Join  = crdb.Join

	WithHint    = crdb.WithHint
	GetAllHints = crdb.GetAllHints
)

// Sentinel errors for common failure conditions.
var (
	// ErrServerNotFound indicates the named server is not present in the scope.
	ErrServerNotFound = New("server not found")

	// ErrScopeUnsupported indicates the editor has no such configuration scope.
	ErrScopeUnsupported = New("scope not supported by editor")

	// ErrNoWorkspace indicates the workspace scope is not usable from the
	// current directory. Aggregate reads treat this as expected.
	ErrNoWorkspace = New("no workspace available")

	// ErrTransportUnsupported indicates a server uses a transport the editor
	// cannot persist.
	ErrTransportUnsupported = New("transport not supported by editor")

	// ErrEnablementUnsupported indicates the editor manages enablement outside
	// its configuration file.
	ErrEnablementUnsupported = New("editor does not store enablement in its config file")

	// ErrInvalidConfig indicates configuration validation failed.
	ErrInvalidConfig = New("invalid configuration")
)

// ParseError reports an existing configuration file whose content is not
// valid JSON. A missing file is never a ParseError.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("parsing config: %v", e.Err)
	}
	return fmt.Sprintf("parsing %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError wraps err as a ParseError for path.
func NewParseError(path string, err error) *ParseError {
	return &ParseError{Path: path, Err: err}
}

// UniquenessConflict is returned when an add or rename would produce two
// servers with the same name in one editor scope.
type UniquenessConflict struct {
	Editor string
	Scope  string
	Name   string
}

func (e *UniquenessConflict) Error() string {
	return fmt.Sprintf("server %q already exists in %s (%s)", e.Name, e.Editor, e.Scope)
}

// ProtectionViolation is returned when a write would remove or rename one or
// more locked servers.
type ProtectionViolation struct {
	Editor string
	Names  []string
}

func (e *ProtectionViolation) Error() string {
	if len(e.Names) == 1 {
		return fmt.Sprintf("server %q is locked in %s; unlock it first", e.Names[0], e.Editor)
	}
	quoted := make([]string, len(e.Names))
	for i, n := range e.Names {
		quoted[i] = fmt.Sprintf("%q", n)
	}
	return fmt.Sprintf("servers %s are locked in %s; unlock them first", strings.Join(quoted, ", "), e.Editor)
}

// ExitError wraps an error with an exit code and optional suggestion for CLI applications.
// It implements the error interface and supports unwrapping via errors.Unwrap.
type ExitError struct {
	// Err is the underlying error that caused the exit.
	Err error

	// Code is the exit code to return to the operating system.
	Code int

	// Suggestion is an optional actionable suggestion for the user.
	Suggestion string
}

// NewExitError creates an ExitError with the given underlying error and exit code.
// If err is nil, the returned ExitError will have a nil Err field.
func NewExitError(err error, code int) *ExitError {
	return &ExitError{
		Err:  err,
		Code: code,
	}
}

// NewUserError creates an ExitError with ExitUser code and a suggestion.
func NewUserError(err error, suggestion string) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitUser,
		Suggestion: suggestion,
	}
}

// NewSystemError creates an ExitError with ExitSystem code and a suggestion.
func NewSystemError(err error, suggestion string) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitSystem,
		Suggestion: suggestion,
	}
}

// NewConfigError creates an ExitError with ExitUser code and a standard suggestion.
func NewConfigError(err error) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitUser,
		Suggestion: "Check the file named by --config or $MCPM_CONFIG",
	}
}

// Error returns the error message from the underlying error.
// If the underlying error is nil, it returns a generic message with the exit code.
func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error, enabling errors.Is and errors.As
// to examine the error chain.
func (e *ExitError) Unwrap() error {
	return e.Err
}
