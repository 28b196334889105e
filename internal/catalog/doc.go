// Package catalog implements the progressive-disclosure index over the
// generated wrapper tree.
//
// # Overview
//
// Agents exploring a large tool surface should not pay the token cost of the
// full catalog up front. This package scans the TypeScript wrappers emitted
// by the generator and answers search and lookup queries at three nested
// detail tiers:
//
//   - name: identifier only
//   - description: identifier, parsed doc comment and function signature
//   - full: the entire generated source
//
// Every query also reports what each tier would have cost in tokens, so a
// caller can judge the savings of staying at a lower tier.
//
// # Caching
//
// Scanning is filesystem work, so the index keeps an immutable snapshot
// behind a sync.RWMutex. A fsnotify watcher over the wrapper tree marks the
// snapshot stale after regeneration; concurrent rebuilds collapse into one
// scan via singleflight. Single-tool lookups bypass the snapshot and read
// the wrapper file directly, so a 404 always reflects the tree on disk.
//
// # Token Estimates
//
// All estimates use a fixed four-characters-per-token approximation. This is
// a sizing proxy, not a tokenizer, and is shared with the execution engine's
// output metrics.
package catalog
