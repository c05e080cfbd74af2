// Package probe checks whether a configured MCP server can be reached.
//
// A probe is a one-shot reachability test, not an MCP session:
//
//   - stdio servers are started through the shell, sent a single
//     initialize request, and must still be running when the startup
//     window closes. The process tree is then killed.
//   - sse and sse-variant servers must answer a GET with a 2xx status and
//     a text/event-stream content type.
//   - http servers must answer a GET with a 2xx status, or with 404 or
//     405 from servers that only accept POST.
//
// Probes never return errors. Every failure, including timeouts, is
// reported in the returned mcp.TestResult.
package probe
