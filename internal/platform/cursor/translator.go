package cursor

import (
	"encoding/json"

	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/mcp"
)

// Translator converts between canonical servers and Cursor server objects.
//
// Cursor objects carry no transport tag: a "url" field means sse and a
// "command" field means stdio. Cursor keeps enablement in its own settings
// database, so a "disabled" field found in the file is carried through
// untouched and never interpreted.
type Translator struct{}

// NewTranslator creates a new Cursor translator.
func NewTranslator() *Translator {
	return &Translator{}
}

var _ mcp.Translator = (*Translator)(nil)

// Editor returns mcp.EditorCursor.
func (t *Translator) Editor() mcp.Editor {
	return mcp.EditorCursor
}

// Decode converts a Cursor server object.
//
// Input format:
//
//	{"command": "npx", "args": ["-y", "pkg"], "env": {"KEY": "v"}}
//	{"url": "https://example.com/sse", "headers": {"Authorization": "..."}}
func (t *Translator) Decode(name string, raw json.RawMessage) (*mcp.Server, error) {
	r, err := mcp.ParseRecord(raw)
	if err != nil {
		return nil, err
	}

	s := &mcp.Server{Name: name}
	if s.Description, err = r.TakeString(mcp.FieldDescription); err != nil {
		return nil, err
	}
	if s.Endpoint, err = mcp.DecodeEndpoint(r, ""); err != nil {
		return nil, err
	}
	s.Extra = r.Extra()

	return s, nil
}

// Encode converts s to a Cursor server object. Only stdio and sse servers
// can be stored; s.Disabled is not written.
func (t *Translator) Encode(s *mcp.Server) (json.RawMessage, error) {
	switch s.Endpoint.(type) {
	case *mcp.StdioEndpoint, *mcp.SSEEndpoint:
	case nil:
		return nil, mcp.ErrNoEndpoint
	default:
		return nil, errors.Wrapf(errors.ErrTransportUnsupported, "cursor cannot store %q servers", s.Transport())
	}

	b := mcp.NewBuilder(s.Extra)
	if err := b.Endpoint(s.Endpoint); err != nil {
		return nil, err
	}
	b.String(mcp.FieldDescription, s.Description)

	return b.Build()
}
