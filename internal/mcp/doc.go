// Package mcp provides the editor-agnostic model of an MCP server
// definition and the helpers every editor translator shares.
//
// # Server Definitions
//
// A [Server] carries exactly one [Endpoint]; the transport is derived from
// the endpoint's concrete type, never stored beside it:
//
//	// Local stdio server
//	server := &mcp.Server{
//	    Name: "github",
//	    Endpoint: &mcp.StdioEndpoint{
//	        Command: "npx",
//	        Args:    []string{"-y", "@modelcontextprotocol/server-github"},
//	        Env:     map[string]string{"GITHUB_TOKEN": "${GITHUB_TOKEN}"},
//	    },
//	}
//
//	// Remote HTTP server
//	server := &mcp.Server{
//	    Name:     "context7",
//	    Endpoint: &mcp.HTTPEndpoint{URL: "https://mcp.context7.com/mcp"},
//	}
//
// Consumers switch over the four endpoint types:
//
//	switch ep := server.Endpoint.(type) {
//	case *mcp.StdioEndpoint:
//	case *mcp.SSEEndpoint:
//	case *mcp.SSEVariantEndpoint:
//	case *mcp.HTTPEndpoint:
//	}
//
// # Transport Inference
//
// Older native formats carry no transport tag. [InferTransport] decides:
// a "url" field means SSE, a "serverUrl" field means the SSE variant, and
// a "command" field or nothing at all means stdio.
//
// # Forward Compatibility
//
// Native fields the model does not describe are kept in [Server.Extra] by
// [Record] during decoding and written back by [Builder], so editors can add
// fields without mcpm dropping them.
package mcp
