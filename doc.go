// Package goAuthClient provides a client-side authentication session manager: it
// holds a bearer-token session, drives login, registration, logout, user fetch,
// token refresh, signature verification and session bootstrap against a remote
// /jwt/* endpoint, and persists the session across process restarts.
//
// # Architecture boundaries
//
// goAuthClient is the public surface. It exposes [Manager], [Builder], [Config]
// and value types ([Snapshot], [User]). The HTTP endpoint lives in transport,
// persistence in session, token inspection in jwt; the Manager reaches them only
// through the [Endpoint], [session.Store] and [Navigator] interfaces.
//
// # State machine
//
// Every mutation goes through one commit step that updates in-memory state,
// writes the persisted subset (token, public key, user) to the store and notifies
// subscribers. IsInitialized is a one-way latch; IsLoading is advisory and is
// always cleared by a deferred finalizer when an operation settles.
//
// # What this package must NOT do
//
//   - Keep package-level mutable session state; each Manager is independent.
//   - Spawn background goroutines. Operations run on the caller's goroutine.
//   - Surface errors from Initialize, Logout, Bootstrap or VerifySignature.
package goAuthClient
