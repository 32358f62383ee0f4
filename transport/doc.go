// Package transport implements the remote authentication endpoint over
// JSON/HTTP: the /jwt/* routes for login, registration, logout, the current
// user, token refresh, signature verification and session-token bootstrap.
//
// # Payload shapes
//
// Deployments disagree on whether fields are nested under "data" or sent flat.
// Every response is normalized at this boundary by one lookup helper that tries
// a fixed order: data.<field>, then <field>. User records additionally accept
// the bare "data" object for the current-user route.
//
// # Errors
//
// Non-2xx responses become [*Error] carrying the HTTP status and the
// server-provided {"message": ...} text, if any. Network failures are returned
// wrapped and never carry a status.
package transport
