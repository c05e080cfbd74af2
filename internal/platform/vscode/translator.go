package vscode

import (
	"encoding/json"

	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/mcp"
)

// Translator converts between canonical servers and VS Code server objects.
//
// VS Code tags each server with an explicit "type". When the tag is
// missing the transport is inferred from the populated fields, the same
// way the editor does.
type Translator struct{}

// NewTranslator creates a new VS Code translator.
func NewTranslator() *Translator {
	return &Translator{}
}

var _ mcp.Translator = (*Translator)(nil)

// Editor returns mcp.EditorVSCode.
func (t *Translator) Editor() mcp.Editor {
	return mcp.EditorVSCode
}

// Decode converts a VS Code server object.
//
// Input format:
//
//	{"type": "stdio", "command": "npx", "args": ["-y", "pkg"], "envFile": "${workspaceFolder}/.env"}
//	{"type": "http", "url": "https://mcp.context7.com/mcp", "headers": {"X-Key": "${input:key}"}}
func (t *Translator) Decode(name string, raw json.RawMessage) (*mcp.Server, error) {
	r, err := mcp.ParseRecord(raw)
	if err != nil {
		return nil, err
	}

	tag, err := r.TakeString(mcp.FieldType)
	if err != nil {
		return nil, err
	}

	s := &mcp.Server{Name: name}
	if s.Description, err = r.TakeString(mcp.FieldDescription); err != nil {
		return nil, err
	}
	if s.Disabled, err = r.TakeBool(mcp.FieldDisabled); err != nil {
		return nil, err
	}
	if s.Roots, err = r.TakeStrings(mcp.FieldRoots); err != nil {
		return nil, err
	}
	if s.Endpoint, err = mcp.DecodeEndpoint(r, tag); err != nil {
		return nil, err
	}
	s.Extra = r.Extra()

	return s, nil
}

// Encode converts s to a VS Code server object with an explicit "type".
// The serverUrl variant cannot be stored.
func (t *Translator) Encode(s *mcp.Server) (json.RawMessage, error) {
	switch s.Endpoint.(type) {
	case *mcp.StdioEndpoint, *mcp.SSEEndpoint, *mcp.HTTPEndpoint:
	case nil:
		return nil, mcp.ErrNoEndpoint
	default:
		return nil, errors.Wrapf(errors.ErrTransportUnsupported, "vscode cannot store %q servers", s.Transport())
	}

	b := mcp.NewBuilder(s.Extra)
	b.Set(mcp.FieldType, string(s.Transport()))
	if err := b.Endpoint(s.Endpoint); err != nil {
		return nil, err
	}
	b.String(mcp.FieldDescription, s.Description).
		Bool(mcp.FieldDisabled, s.Disabled).
		Strings(mcp.FieldRoots, s.Roots)

	return b.Build()
}
