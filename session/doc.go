// Package session defines the persisted subset of a client authentication
// session and the stores that keep it across process restarts.
//
// # Persisted shape
//
// Only the token, the public key issued with it and the cached user record are
// persisted. Loading flags, error text and the initialized latch are process-local
// and never written.
//
// # Binary encoding
//
// Byte-oriented stores (Redis, SQLite, memory) hold a compact versioned binary
// format (schema versions v1–v3) with forward migration on read. The encoder is
// append-only: new versions add fields but never reinterpret old ones. [FileStore]
// writes a JSON document instead so the file stays human-inspectable.
//
// # What this package must NOT do
//
//   - Import goAuthClient, transport, or jwt (no upward imports).
//   - Decide when state is written; the session manager owns the commit step.
package session
