// Package validator checks MCP server definitions and raw editor documents.
//
// Checks are pure: they never touch the filesystem and never return an
// error value. Problems are reported as issues in a validator.Result from
// the internal/validator package.
package validator

// Issue codes reported by the checks in this package.
const (
	CodeRequired             = "REQUIRED"
	CodeInvalidPattern       = "INVALID_PATTERN"
	CodeTooLong              = "TOO_LONG"
	CodeInvalidURL           = "INVALID_URL"
	CodeInvalidEnvKey        = "INVALID_ENV_KEY"
	CodeEnvValueTooLong      = "ENV_VALUE_TOO_LONG"
	CodeEmptyHeaderKey       = "EMPTY_HEADER_KEY"
	CodeUnsupportedTransport = "UNSUPPORTED_TRANSPORT"
	CodeBareRuntimeCommand   = "BARE_RUNTIME_COMMAND"
	CodeToolLimit            = "TOOL_LIMIT"
	CodeMissingInput         = "MISSING_INPUT"
	CodeUnusedInput          = "UNUSED_INPUT"
	CodeInvalidStructure     = "INVALID_STRUCTURE"
	CodeDuplicateName        = "DUPLICATE_NAME"
)

// Limits applied to server definitions.
const (
	MaxNameLength        = 64
	MaxDescriptionLength = 500
	MaxEnvValueLength    = 1000
)

// bareRuntimes are commands that only do something useful when told what
// to run. On their own they start a REPL, print usage, or exit.
var bareRuntimes = map[string]bool{
	"npx":     true,
	"bunx":    true,
	"pnpx":    true,
	"uvx":     true,
	"uv":      true,
	"pipx":    true,
	"node":    true,
	"deno":    true,
	"bun":     true,
	"python":  true,
	"python3": true,
	"ruby":    true,
	"java":    true,
	"docker":  true,
	"npm":     true,
	"pnpm":    true,
	"yarn":    true,
}
