package validator

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/thoreinstein/mcpm/internal/mcp"
	"github.com/thoreinstein/mcpm/internal/validator"
)

var (
	namePattern   = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)
	envKeyPattern = regexp.MustCompile(`^[A-Z_][A-Z0-9_]*$`)
	urlPattern    = regexp.MustCompile(`^https?://`)
)

// Option configures a Validator.
type Option func(*Validator)

// Validator validates server definitions against the shared rules and the
// capabilities of one editor.
type Validator struct {
	// transports restricts the accepted transports. Nil accepts all.
	transports []mcp.Transport

	// inputs enables ${input:id} checks when non-nil.
	inputs []mcp.Input
}

// New creates a new Validator with the given options.
func New(opts ...Option) *Validator {
	v := &Validator{}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// WithTransports restricts the transports an editor accepts.
func WithTransports(ts ...mcp.Transport) Option {
	return func(v *Validator) {
		v.transports = ts
	}
}

// WithInputs enables placeholder checks against the given input
// definitions. Pass an empty, non-nil slice to check an editor that
// supports inputs but has none defined.
func WithInputs(inputs []mcp.Input) Option {
	return func(v *Validator) {
		if inputs == nil {
			inputs = []mcp.Input{}
		}
		v.inputs = inputs
	}
}

// Validate checks a single server definition.
func Validate(s *mcp.Server, opts ...Option) *validator.Result {
	return New(opts...).Validate(s)
}

// Validate checks a single server definition.
func (v *Validator) Validate(s *mcp.Server) *validator.Result {
	result := &validator.Result{}
	if s == nil {
		result.AddError("", CodeRequired, "server definition is required")
		return result
	}

	v.validateName(result, s.Name)

	if n := len([]rune(s.Description)); n > MaxDescriptionLength {
		result.AddError("description", CodeTooLong,
			fmt.Sprintf("description must be at most %d characters (got %d)", MaxDescriptionLength, n))
	}

	v.validateEndpoint(result, s)

	if v.inputs != nil {
		v.validateInputRefs(result, s)
	}

	return result
}

func (v *Validator) validateName(result *validator.Result, name string) {
	switch {
	case name == "":
		result.AddError("name", CodeRequired, "name is required")
	case len(name) > MaxNameLength:
		result.AddError("name", CodeTooLong,
			fmt.Sprintf("name must be at most %d characters (got %d)", MaxNameLength, len(name)))
	case !namePattern.MatchString(name):
		result.AddError("name", CodeInvalidPattern,
			"name must start with a letter and contain only letters, digits, hyphens, and underscores")
	}
}

func (v *Validator) validateEndpoint(result *validator.Result, s *mcp.Server) {
	t := s.Transport()
	if t == "" {
		result.AddError("transport", CodeRequired, "transport is required")
		return
	}

	if v.transports != nil && !slices.Contains(v.transports, t) {
		names := make([]string, len(v.transports))
		for i, tr := range v.transports {
			names[i] = tr.String()
		}
		result.AddError("transport", CodeUnsupportedTransport,
			fmt.Sprintf("transport %q is not supported (supported: %s)", t, strings.Join(names, ", ")))
	}

	switch ep := s.Endpoint.(type) {
	case *mcp.StdioEndpoint:
		v.validateStdio(result, ep)
	case *mcp.SSEEndpoint:
		validateURL(result, "url", ep.URL)
		validateHeaders(result, ep.Headers)
	case *mcp.SSEVariantEndpoint:
		validateURL(result, "serverUrl", ep.ServerURL)
		validateHeaders(result, ep.Headers)
	case *mcp.HTTPEndpoint:
		validateURL(result, "url", ep.URL)
		validateHeaders(result, ep.Headers)
	}
}

func (v *Validator) validateStdio(result *validator.Result, ep *mcp.StdioEndpoint) {
	command := strings.TrimSpace(ep.Command)
	if command == "" {
		result.AddError("command", CodeRequired, "command is required for stdio servers")
	} else if len(ep.Args) == 0 && bareRuntimes[strings.ToLower(filepath.Base(command))] {
		result.AddWarning("command", CodeBareRuntimeCommand,
			fmt.Sprintf("%q with no arguments will not start an MCP server; add the package or script to args", command))
	}

	for _, key := range sortedKeys(ep.Env) {
		field := "env." + key
		if !envKeyPattern.MatchString(key) {
			result.AddError(field, CodeInvalidEnvKey,
				"environment variable names must be uppercase letters, digits, and underscores")
		}
		if n := len(ep.Env[key]); n > MaxEnvValueLength {
			result.AddError(field, CodeEnvValueTooLong,
				fmt.Sprintf("value must be at most %d characters (got %d)", MaxEnvValueLength, n))
		}
	}
}

func validateURL(result *validator.Result, field, raw string) {
	if strings.TrimSpace(raw) == "" {
		result.AddError(field, CodeRequired, field+" is required for remote servers")
		return
	}
	if !urlPattern.MatchString(raw) {
		result.AddError(field, CodeInvalidURL, field+" must start with http:// or https://")
		return
	}
	if u, err := url.Parse(raw); err != nil || u.Host == "" {
		result.AddError(field, CodeInvalidURL, field+" is not a valid URL")
	}
}

func validateHeaders(result *validator.Result, headers map[string]string) {
	for key := range headers {
		if strings.TrimSpace(key) == "" {
			result.AddError("headers", CodeEmptyHeaderKey, "header name cannot be empty")
			return
		}
	}
}

func (v *Validator) validateInputRefs(result *validator.Result, s *mcp.Server) {
	defined := make(map[string]bool, len(v.inputs))
	for _, in := range v.inputs {
		defined[in.ID] = true
	}
	for _, id := range mcp.ExtractInputRefs(s) {
		if !defined[id] {
			result.AddError("inputs", CodeMissingInput,
				fmt.Sprintf("%s references an input that is not defined", mcp.InputRef(id)))
		}
	}
}

// UnusedInputs reports, as warnings, every input that no server references.
func UnusedInputs(inputs []mcp.Input, servers []*mcp.Server) *validator.Result {
	result := &validator.Result{}
	used := make(map[string]bool)
	for _, s := range servers {
		for _, id := range mcp.ExtractInputRefs(s) {
			used[id] = true
		}
	}
	for i, in := range inputs {
		if !used[in.ID] {
			result.AddWarning(fmt.Sprintf("inputs[%d]", i), CodeUnusedInput,
				fmt.Sprintf("input %q is not referenced by any server", in.ID))
		}
	}
	return result
}

// ValidateInputs checks input definitions: ids are required and unique and
// the type is the single supported prompt kind.
func ValidateInputs(inputs []mcp.Input) *validator.Result {
	result := &validator.Result{}
	seen := make(map[string]bool, len(inputs))
	for i, in := range inputs {
		field := fmt.Sprintf("inputs[%d]", i)
		switch {
		case in.ID == "":
			result.AddError(field+".id", CodeRequired, "input id is required")
		case seen[in.ID]:
			result.AddError(field+".id", CodeDuplicateName, fmt.Sprintf("input id %q is defined more than once", in.ID))
		}
		seen[in.ID] = true
		if in.Type != mcp.InputTypePromptString {
			result.AddError(field+".type", CodeInvalidPattern,
				fmt.Sprintf("input type must be %q", mcp.InputTypePromptString))
		}
	}
	return result
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
