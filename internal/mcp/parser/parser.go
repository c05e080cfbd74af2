// Package parser loads and writes editor MCP documents: a JSON object whose
// server map lives under one top-level key, next to other keys that must
// survive a rewrite untouched.
package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/tailscale/hujson"

	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/pkg/fileutil"
)

// Sentinel errors for parser operations.
var (
	// ErrInvalidJSON indicates the input is not valid JSON.
	ErrInvalidJSON = errors.New("invalid JSON")

	// ErrInvalidDocument indicates valid JSON that does not have the shape
	// of an MCP document.
	ErrInvalidDocument = errors.New("invalid MCP document")
)

// Document is a parsed editor config file.
type Document struct {
	// ServersKey is the top-level key holding the server map.
	ServersKey string

	// Servers maps server names to their native objects.
	Servers map[string]json.RawMessage

	// Extra holds every other top-level key.
	Extra map[string]json.RawMessage
}

// New returns an empty document keyed by serversKey.
func New(serversKey string) *Document {
	return &Document{
		ServersKey: serversKey,
		Servers:    make(map[string]json.RawMessage),
	}
}

// Option configures parsing.
type Option func(*options)

type options struct {
	jsonc bool
}

// WithComments accepts JSON with comments and trailing commas, the dialect
// VS Code writes.
func WithComments() Option {
	return func(o *options) {
		o.jsonc = true
	}
}

// Parse reads a document from JSON bytes. Empty or whitespace-only input
// yields an empty document.
func Parse(data []byte, serversKey string, opts ...Option) (*Document, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return New(serversKey), nil
	}

	if o.jsonc {
		std, err := hujson.Standardize(slices.Clone(data))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
		}
		data = std
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, fmt.Errorf("%w: %v at offset %d", ErrInvalidJSON, err, syntaxErr.Offset)
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, fmt.Errorf("%w: top level must be an object", ErrInvalidDocument)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if top == nil {
		return nil, fmt.Errorf("%w: top level must be an object", ErrInvalidDocument)
	}

	doc := New(serversKey)
	if raw, ok := top[serversKey]; ok {
		if string(raw) != "null" {
			if err := json.Unmarshal(raw, &doc.Servers); err != nil || doc.Servers == nil {
				return nil, fmt.Errorf("%w: %q must be an object", ErrInvalidDocument, serversKey)
			}
		}
		delete(top, serversKey)
	}
	if len(top) > 0 {
		doc.Extra = top
	}

	return doc, nil
}

// ParseFile reads a document from path. A missing file is not an error: it
// returns an empty document and exists=false. Malformed content is reported
// as an *errors.ParseError naming the path.
func ParseFile(path, serversKey string, opts ...Option) (doc *Document, exists bool, err error) {
	data, exists, err := fileutil.ReadIfExists(path)
	if err != nil {
		return nil, false, errors.Wrapf(err, "reading %s", path)
	}
	if !exists {
		return New(serversKey), false, nil
	}

	doc, err = Parse(data, serversKey, opts...)
	if err != nil {
		return nil, true, errors.NewParseError(path, err)
	}
	return doc, true, nil
}

// Names returns the server names in sorted order.
func (d *Document) Names() []string {
	return slices.Sorted(maps.Keys(d.Servers))
}

// Marshal encodes the document with 2-space indentation and a trailing
// newline. Extra keys are written back as they were read.
func (d *Document) Marshal() ([]byte, error) {
	out := make(map[string]any, len(d.Extra)+1)
	for k, v := range d.Extra {
		out[k] = v
	}
	servers := d.Servers
	if servers == nil {
		servers = map[string]json.RawMessage{}
	}
	out[d.ServersKey] = servers
	return fileutil.MarshalJSON(out)
}

// WriteFile writes the document to path atomically, creating the parent
// directory when needed.
func WriteFile(path string, d *Document) error {
	data, err := d.Marshal()
	if err != nil {
		return errors.Wrapf(err, "encoding %s", path)
	}
	if err := fileutil.WriteConfigFile(path, data); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}
