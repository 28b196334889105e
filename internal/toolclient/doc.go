// Package toolclient talks JSON-RPC to the configured upstream MCP servers.
//
// Each upstream server gets one Client (streamable-http or SSE transport,
// both built on mark3labs/mcp-go) managed by a Pool keyed by server name.
// The Pool is the only entry point the rest of toolbench uses: ListTools
// feeds the wrapper generator, CallTool backs the console's direct tool
// invocation, Ping backs health reporting.
//
// Failures keep their kind. A call can go wrong three distinct ways and
// callers need to tell them apart:
//
//   - TransportError: the server could not be reached, the connection broke,
//     the inner timeout fired, or the HTTP exchange failed outright.
//   - ProtocolError: the server answered, but the JSON-RPC exchange itself
//     failed (malformed envelope or an explicit JSON-RPC error object).
//   - ToolError: the tool executed and reported a domain failure.
//
// All three are extractable with errors.As and never collapse into a
// generic error.
package toolclient
