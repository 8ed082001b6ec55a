// Package session provides the persisted form of a portal session and the
// backends that store it between process restarts.
//
// # Persisted subset
//
// Only the bearer token and the user profile are durable. Loading flags and
// in-flight bookkeeping belong to the live store and are never written.
//
// # Binary encoding
//
// Snapshots are written in a compact binary format with forward migration on
// read. v1 holds the token and core user fields, v2 adds plan, credits and
// timestamps, and v3 widens user string lengths to 16 bits. Older versions are
// still decoded; only the current version is written.
//
// # Backends
//
//   - [Store]: Redis-backed, keyed by prefix and namespace.
//   - [FileStore]: one file per namespace, written atomically.
//   - [MemoryStore]: process-local, for tests and ephemeral sessions.
//
// # What this package must NOT do
//
//   - Import portalAuth, gate, or httpapi (no upward imports).
//   - Decide whether a snapshot is still valid; the live store refreshes it.
package session
