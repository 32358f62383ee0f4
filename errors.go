package goAuthClient

import "errors"

var (
	// ErrTokenMissing is returned when a login or refresh response carries no token.
	ErrTokenMissing = errors.New("token not returned")
	// ErrTokenOrUserMissing is returned when registration yields no token or no user.
	ErrTokenOrUserMissing = errors.New("token or user not returned")
	// ErrUserMissing is returned when the current-user response carries no user record.
	ErrUserMissing = errors.New("user not returned")
	// ErrNotAuthenticated is returned by token helpers when no session token is held.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrRestoreFailed wraps persistence sink read failures during Restore.
	ErrRestoreFailed = errors.New("session restore failed")
	// ErrInvalidConfig wraps configuration validation failures.
	ErrInvalidConfig = errors.New("invalid config")
)

// User-facing messages stored in Snapshot.Error when the endpoint gives none.
const (
	msgLoginFailed        = "Login failed"
	msgRegistrationFailed = "Registration failed"
	msgTokenOrUserMissing = "Token or user not returned"
)
