package mcp

import "slices"

// Endpoint is the transport-specific part of a server definition. The
// interface is sealed: the only implementations are the four endpoint
// types in this package, so a type switch over them is exhaustive.
type Endpoint interface {
	// Transport returns the transport this endpoint belongs to.
	Transport() Transport

	clone() Endpoint
}

// StdioEndpoint launches a local process.
type StdioEndpoint struct {
	Command string
	Args    []string
	Env     map[string]string

	// EnvFile names a dotenv file loaded before launch (VS Code only).
	EnvFile string
}

// SSEEndpoint connects to a server-sent-events URL.
type SSEEndpoint struct {
	URL     string
	Headers map[string]string
}

// SSEVariantEndpoint connects to a server-sent-events URL stored under the
// "serverUrl" key.
type SSEVariantEndpoint struct {
	ServerURL string
	Headers   map[string]string
}

// HTTPEndpoint connects to a streamable HTTP URL.
type HTTPEndpoint struct {
	URL     string
	Headers map[string]string
}

func (*StdioEndpoint) Transport() Transport      { return TransportStdio }
func (*SSEEndpoint) Transport() Transport        { return TransportSSE }
func (*SSEVariantEndpoint) Transport() Transport { return TransportSSEVariant }
func (*HTTPEndpoint) Transport() Transport       { return TransportHTTP }

func (e *StdioEndpoint) clone() Endpoint {
	c := *e
	c.Args = slices.Clone(e.Args)
	c.Env = cloneStringMap(e.Env)
	return &c
}

func (e *SSEEndpoint) clone() Endpoint {
	return &SSEEndpoint{URL: e.URL, Headers: cloneStringMap(e.Headers)}
}

func (e *SSEVariantEndpoint) clone() Endpoint {
	return &SSEVariantEndpoint{ServerURL: e.ServerURL, Headers: cloneStringMap(e.Headers)}
}

func (e *HTTPEndpoint) clone() Endpoint {
	return &HTTPEndpoint{URL: e.URL, Headers: cloneStringMap(e.Headers)}
}

// NewEndpoint returns an empty endpoint for t, or nil for an unknown
// transport.
func NewEndpoint(t Transport) Endpoint {
	switch t {
	case TransportStdio:
		return &StdioEndpoint{}
	case TransportSSE:
		return &SSEEndpoint{}
	case TransportSSEVariant:
		return &SSEVariantEndpoint{}
	case TransportHTTP:
		return &HTTPEndpoint{}
	default:
		return nil
	}
}

// InferTransport decides the transport of a native record. A known explicit
// tag wins. Otherwise a "url" field means sse, a "serverUrl" field means
// the sse variant, a "command" field means stdio, and anything else falls
// back to stdio.
func InferTransport(explicit string, hasURL, hasServerURL, hasCommand bool) Transport {
	if t, ok := ParseTransport(explicit); ok {
		return t
	}
	switch {
	case hasURL:
		return TransportSSE
	case hasServerURL:
		return TransportSSEVariant
	case hasCommand:
		return TransportStdio
	default:
		return TransportStdio
	}
}
