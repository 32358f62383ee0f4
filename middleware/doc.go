// Package middleware adapts a goAuthClient.Manager to net/http on both sides
// of a request.
//
// # Outgoing
//
//   - [Transport] is an http.RoundTripper that attaches the session bearer
//     header to requests sent to the application API.
//
// # Incoming
//
//   - [Guard] redirects to the login path when no session is held.
//   - [RequireVerified] additionally verifies the token locally against the
//     session public key.
//   - [RequireFresh] refreshes a token close to expiry before the handler runs.
//
// Guards inject the current session Snapshot into the request context; read
// it with [SnapshotFromContext].
//
// Session decisions are delegated to the Manager. This package never parses
// tokens or talks to the persistence sink itself.
package middleware
