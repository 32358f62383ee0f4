package goAuthClient

import (
	"context"
	"log/slog"

	"github.com/MrEthical07/goAuthClient/session"
	"github.com/MrEthical07/goAuthClient/transport"
)

// User is the authenticated account record.
type User = session.User

// Endpoint is the remote authentication service the [Manager] calls.
// [*transport.Client] is the HTTP implementation.
//
// Bearer arguments are raw credential values; the implementation adds the
// "Bearer" scheme.
type Endpoint interface {
	Login(ctx context.Context, creds transport.Credentials) (transport.Grant, error)
	Register(ctx context.Context, reg transport.Registration) (transport.Grant, error)
	Logout(ctx context.Context, bearer string) error
	CurrentUser(ctx context.Context, bearer string) (*User, error)
	Refresh(ctx context.Context, bearer string) (transport.Grant, error)
	VerifySignature(ctx context.Context, bearer string, check transport.SignatureCheck) (bool, error)
	SessionToken(ctx context.Context) (transport.Grant, error)
}

var _ Endpoint = (*transport.Client)(nil)

// Navigator performs route changes requested by the session manager, such as
// sending the user to the login page after logout.
type Navigator interface {
	Visit(ctx context.Context, path string)
}

// NavigatorFunc adapts a function to [Navigator].
type NavigatorFunc func(ctx context.Context, path string)

// Visit calls f(ctx, path).
func (f NavigatorFunc) Visit(ctx context.Context, path string) {
	f(ctx, path)
}

// logNavigator is the default Navigator: it records the request and does nothing else.
type logNavigator struct {
	log *slog.Logger
}

func (n logNavigator) Visit(ctx context.Context, path string) {
	n.log.InfoContext(ctx, "navigation requested", slog.String("path", path))
}

// Snapshot is a point-in-time copy of the session state.
type Snapshot struct {
	Token         string
	PublicKey     string
	User          *User
	IsLoading     bool
	Error         string
	IsInitialized bool
}

// IsAuthenticated reports whether a token is held.
func (s Snapshot) IsAuthenticated() bool {
	return s.Token != ""
}
