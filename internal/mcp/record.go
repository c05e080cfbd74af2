package mcp

import (
	"bytes"
	"encoding/json"
	"slices"

	"github.com/thoreinstein/mcpm/internal/errors"
)

// Native field names shared by the editor formats.
const (
	FieldCommand     = "command"
	FieldArgs        = "args"
	FieldEnv         = "env"
	FieldEnvFile     = "envFile"
	FieldURL         = "url"
	FieldServerURL   = "serverUrl"
	FieldHeaders     = "headers"
	FieldDescription = "description"
	FieldDisabled    = "disabled"
	FieldRoots       = "roots"
	FieldType        = "type"
)

var (
	stdioFields  = []string{FieldCommand, FieldArgs, FieldEnv, FieldEnvFile}
	remoteFields = []string{FieldURL, FieldServerURL, FieldHeaders}
)

// Record is a native server object split into fields. Take* methods remove
// the field they read, so whatever is left after decoding is exactly the
// set of fields to carry in [Server.Extra].
type Record map[string]json.RawMessage

// ParseRecord decodes raw as a JSON object.
func ParseRecord(raw json.RawMessage) (Record, error) {
	var r Record
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, errors.Wrap(err, "decoding server object")
	}
	if r == nil {
		return nil, errors.Wrap(ErrInvalidField, "server entry must be an object")
	}
	return r, nil
}

// Has reports whether key is present and not JSON null.
func (r Record) Has(key string) bool {
	v, ok := r[key]
	return ok && string(v) != "null"
}

// TakeString removes and returns a string field.
func (r Record) TakeString(key string) (string, error) {
	var s string
	if err := r.take(key, &s); err != nil {
		return "", err
	}
	return s, nil
}

// TakeStrings removes and returns a string array field.
func (r Record) TakeStrings(key string) ([]string, error) {
	var s []string
	if err := r.take(key, &s); err != nil {
		return nil, err
	}
	return s, nil
}

// TakeStringMap removes and returns an object-of-strings field.
func (r Record) TakeStringMap(key string) (map[string]string, error) {
	var m map[string]string
	if err := r.take(key, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// TakeBool removes and returns a boolean field.
func (r Record) TakeBool(key string) (bool, error) {
	var b bool
	if err := r.take(key, &b); err != nil {
		return false, err
	}
	return b, nil
}

func (r Record) take(key string, dst any) error {
	v, ok := r[key]
	if !ok {
		return nil
	}
	delete(r, key)
	if string(v) == "null" {
		return nil
	}
	if err := json.Unmarshal(v, dst); err != nil {
		return errors.Wrapf(ErrInvalidField, "%s: %v", key, err)
	}
	return nil
}

// Extra returns the fields not yet taken, compacted, or nil when none
// remain.
func (r Record) Extra() map[string]json.RawMessage {
	if len(r) == 0 {
		return nil
	}
	out := make(map[string]json.RawMessage, len(r))
	for k, v := range r {
		var buf bytes.Buffer
		if err := json.Compact(&buf, v); err != nil {
			out[k] = slices.Clone(v)
			continue
		}
		out[k] = buf.Bytes()
	}
	return out
}

// DecodeEndpoint consumes the transport fields of r and returns the
// endpoint. tag is the explicit transport tag, or "" when the format has
// none; the transport is then inferred from the populated fields.
func DecodeEndpoint(r Record, tag string) (Endpoint, error) {
	if tag != "" {
		if _, ok := ParseTransport(tag); !ok {
			return nil, errors.Wrapf(ErrUnknownTransport, "%q", tag)
		}
	}

	t := InferTransport(tag, r.Has(FieldURL), r.Has(FieldServerURL), r.Has(FieldCommand))

	// An untagged record with both kinds of address is ambiguous.
	if tag == "" && r.Has(FieldCommand) && (r.Has(FieldURL) || r.Has(FieldServerURL)) {
		return nil, errors.Wrap(ErrTransportFieldMismatch, "both command and url are set")
	}

	switch t {
	case TransportStdio:
		if f := firstPresent(r, remoteFields); f != "" {
			return nil, errors.Wrapf(ErrTransportFieldMismatch, "%s is not valid for stdio", f)
		}
		ep := &StdioEndpoint{}
		var err error
		if ep.Command, err = r.TakeString(FieldCommand); err != nil {
			return nil, err
		}
		if ep.Args, err = r.TakeStrings(FieldArgs); err != nil {
			return nil, err
		}
		if ep.Env, err = r.TakeStringMap(FieldEnv); err != nil {
			return nil, err
		}
		if ep.EnvFile, err = r.TakeString(FieldEnvFile); err != nil {
			return nil, err
		}
		return ep, nil

	case TransportSSE, TransportHTTP:
		if f := firstPresent(r, append([]string{FieldServerURL}, stdioFields...)); f != "" {
			return nil, errors.Wrapf(ErrTransportFieldMismatch, "%s is not valid for %s", f, t)
		}
		url, err := r.TakeString(FieldURL)
		if err != nil {
			return nil, err
		}
		headers, err := r.TakeStringMap(FieldHeaders)
		if err != nil {
			return nil, err
		}
		if t == TransportHTTP {
			return &HTTPEndpoint{URL: url, Headers: headers}, nil
		}
		return &SSEEndpoint{URL: url, Headers: headers}, nil

	case TransportSSEVariant:
		if f := firstPresent(r, append([]string{FieldURL}, stdioFields...)); f != "" {
			return nil, errors.Wrapf(ErrTransportFieldMismatch, "%s is not valid for %s", f, t)
		}
		url, err := r.TakeString(FieldServerURL)
		if err != nil {
			return nil, err
		}
		headers, err := r.TakeStringMap(FieldHeaders)
		if err != nil {
			return nil, err
		}
		return &SSEVariantEndpoint{ServerURL: url, Headers: headers}, nil
	}

	return nil, errors.Wrapf(ErrUnknownTransport, "%q", t)
}

func firstPresent(r Record, keys []string) string {
	for _, k := range keys {
		if r.Has(k) {
			return k
		}
	}
	return ""
}

// Builder assembles a native server object. Extra fields are laid down
// first so modelled fields always win.
type Builder struct {
	fields map[string]any
}

// NewBuilder starts an object seeded with extra.
func NewBuilder(extra map[string]json.RawMessage) *Builder {
	b := &Builder{fields: make(map[string]any, len(extra)+4)}
	for k, v := range extra {
		b.fields[k] = v
	}
	return b
}

// String sets key when v is non-empty.
func (b *Builder) String(key, v string) *Builder {
	if v != "" {
		b.fields[key] = v
	}
	return b
}

// Strings sets key when v is non-empty.
func (b *Builder) Strings(key string, v []string) *Builder {
	if len(v) > 0 {
		b.fields[key] = v
	}
	return b
}

// StringMap sets key when v is non-empty.
func (b *Builder) StringMap(key string, v map[string]string) *Builder {
	if len(v) > 0 {
		b.fields[key] = v
	}
	return b
}

// Bool sets key when v is true.
func (b *Builder) Bool(key string, v bool) *Builder {
	if v {
		b.fields[key] = true
	}
	return b
}

// Set sets key unconditionally.
func (b *Builder) Set(key string, v any) *Builder {
	b.fields[key] = v
	return b
}

// Endpoint writes the fields of ep using the shared field names.
func (b *Builder) Endpoint(ep Endpoint) error {
	switch e := ep.(type) {
	case *StdioEndpoint:
		b.String(FieldCommand, e.Command).
			Strings(FieldArgs, e.Args).
			StringMap(FieldEnv, e.Env).
			String(FieldEnvFile, e.EnvFile)
	case *SSEEndpoint:
		b.String(FieldURL, e.URL).StringMap(FieldHeaders, e.Headers)
	case *SSEVariantEndpoint:
		b.String(FieldServerURL, e.ServerURL).StringMap(FieldHeaders, e.Headers)
	case *HTTPEndpoint:
		b.String(FieldURL, e.URL).StringMap(FieldHeaders, e.Headers)
	case nil:
		return ErrNoEndpoint
	default:
		return errors.Wrapf(ErrUnknownTransport, "%T", ep)
	}
	return nil
}

// Build encodes the object.
func (b *Builder) Build() (json.RawMessage, error) {
	data, err := json.Marshal(b.fields)
	if err != nil {
		return nil, errors.Wrap(err, "encoding server object")
	}
	return data, nil
}
