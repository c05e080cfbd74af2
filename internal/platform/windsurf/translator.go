package windsurf

import (
	"encoding/json"

	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/mcp"
)

// Translator converts between canonical servers and Windsurf server objects.
//
// Windsurf addresses remote servers with "serverUrl" rather than "url" and
// stores enablement as a "disabled" flag on each server.
type Translator struct{}

// NewTranslator creates a new Windsurf translator.
func NewTranslator() *Translator {
	return &Translator{}
}

var _ mcp.Translator = (*Translator)(nil)

// Editor returns mcp.EditorWindsurf.
func (t *Translator) Editor() mcp.Editor {
	return mcp.EditorWindsurf
}

// Decode converts a Windsurf server object.
func (t *Translator) Decode(name string, raw json.RawMessage) (*mcp.Server, error) {
	r, err := mcp.ParseRecord(raw)
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
	if s.Endpoint, err = mcp.DecodeEndpoint(r, ""); err != nil {
		return nil, err
	}
	s.Extra = r.Extra()

	return s, nil
}

// Encode converts s to a Windsurf server object. Only stdio and serverUrl
// servers can be stored.
func (t *Translator) Encode(s *mcp.Server) (json.RawMessage, error) {
	switch s.Endpoint.(type) {
	case *mcp.StdioEndpoint, *mcp.SSEVariantEndpoint:
	case nil:
		return nil, mcp.ErrNoEndpoint
	default:
		return nil, errors.Wrapf(errors.ErrTransportUnsupported, "windsurf cannot store %q servers", s.Transport())
	}

	b := mcp.NewBuilder(s.Extra)
	if err := b.Endpoint(s.Endpoint); err != nil {
		return nil, err
	}
	b.String(mcp.FieldDescription, s.Description).
		Bool(mcp.FieldDisabled, s.Disabled)

	return b.Build()
}
