// Package generator turns upstream tool catalogs into the typed TypeScript
// wrapper tree that executed code imports.
//
// # Overview
//
// For every configured upstream server the generator lists the available
// tools and emits one wrapper unit per tool under servers/<server>/<tool>.ts,
// plus a per-server index.ts. Two shared files sit at the tree root:
// client.ts, the JSON-RPC runtime the wrappers delegate to, and
// discovery.ts, a static catalog for exploring the tree from executed code.
//
// # Determinism
//
// Emission is deterministic: servers, tools and schema properties are sorted
// before rendering, and templates are fixed. Regenerating against an
// unchanged upstream produces byte-identical files, so the tree can live in
// version control.
//
// # Failure containment
//
// Each server's files are rendered into a staging directory and swapped into
// place atomically. A server that fails to render leaves its live tree
// untouched. Unreachable servers are logged and skipped, or abort the run in
// strict mode. A server with an empty catalog is always logged and skipped.
package generator
