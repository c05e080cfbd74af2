// Package errors provides error handling conventions for mcpm.
//
// It re-exports the cockroachdb/errors constructors (New, Newf, Wrap,
// Wrapf, Is, As) and defines the error kinds the configuration core
// returns to callers.
//
// # Error Kinds
//
//   - [ParseError]: an existing config file is not valid JSON
//   - [UniquenessConflict]: an add or rename would duplicate a server name
//   - [ProtectionViolation]: a write would drop a locked server
//   - [ErrNoWorkspace]: the workspace scope is not usable here
//   - [ErrTransportUnsupported]: an editor cannot persist the transport
//
// Field-level validation failures are data, carried by validator.Result,
// and only become an error value when a write path refuses to proceed.
//
// # Exit Codes
//
//   - ExitSuccess (0): Command completed successfully
//   - ExitUser (1): User-related error (invalid input, locked server, etc.)
//   - ExitSystem (2): System-related error (I/O, network, permissions, etc.)
//
// [ExitError] wraps an underlying error with an exit code and optional
// suggestion:
//
//	err := errors.NewUserError(violation, "Run: mcpm unlock context7")
//	var exitErr *errors.ExitError
//	if errors.As(err, &exitErr) {
//	    os.Exit(exitErr.Code)
//	}
package errors
