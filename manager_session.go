package goAuthClient

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/MrEthical07/goAuthClient/transport"
)

/*
====================================
INITIALIZE
====================================
*/

// Initialize runs the startup sequence once per Manager lifetime. A restored
// token is validated by fetching the user; without one the session-token
// route is tried when Init.BootstrapWhenEmpty is set. A restored token that
// fails is cleared, followed by a bootstrap attempt only when
// Init.BootstrapOnFailure is set.
//
// Initialize never returns an error. Calls made while already initialized or
// initializing return immediately.
func (m *Manager) Initialize(ctx context.Context) {
	started := m.commitIf(ctx, func(s *state) bool {
		if s.isInitialized || s.isLoading {
			return false
		}
		s.isLoading = true
		return true
	})
	if !started {
		return
	}
	defer func() {
		m.commit(ctx, func(s *state) {
			s.isLoading = false
			s.isInitialized = true
		})
		m.metrics.Inc(MetricInitialize)
	}()

	if m.currentToken() == "" {
		if m.config.Init.BootstrapWhenEmpty {
			m.bootstrap(ctx)
		}
		return
	}

	if err := m.fetchUser(ctx); err != nil {
		m.log.InfoContext(ctx, "restored session rejected", slog.Any("error", err))
		m.commit(ctx, func(s *state) { s.clearSession() })
		if m.config.Init.BootstrapOnFailure {
			m.bootstrap(ctx)
		}
	}
}

/*
====================================
BOOTSTRAP
====================================
*/

// Bootstrap tries to recover a server-held session into a token through the
// session-token route and reports whether a full session (token and user)
// resulted. Failures are swallowed.
func (m *Manager) Bootstrap(ctx context.Context) bool {
	m.commit(ctx, func(s *state) { s.isLoading = true })
	defer m.commit(ctx, func(s *state) { s.isLoading = false })
	return m.bootstrap(ctx)
}

func (m *Manager) bootstrap(ctx context.Context) bool {
	var grant transport.Grant
	err := m.timed(func() error {
		var err error
		grant, err = m.endpoint.SessionToken(ctx)
		return err
	})
	if err == nil && grant.Token == "" {
		err = ErrTokenMissing
	}
	if err != nil {
		m.metrics.Inc(MetricBootstrapFailure)
		m.log.DebugContext(ctx, "session bootstrap unavailable", slog.Any("error", err))
		return false
	}

	m.commit(ctx, func(s *state) {
		s.token = grant.Token
		s.publicKey = grant.PublicKey
		s.user = grant.User
	})

	if err := m.fetchUser(ctx); err != nil {
		m.metrics.Inc(MetricBootstrapFailure)
		m.log.DebugContext(ctx, "bootstrapped session rejected", slog.Any("error", err))
		m.commit(ctx, func(s *state) { s.clearSession() })
		return false
	}

	m.metrics.Inc(MetricBootstrapSuccess)
	return true
}

/*
====================================
CURRENT USER
====================================
*/

// FetchUser loads the current user. Without a token it clears the user and
// returns nil. A 401 invalidates the whole session and navigates to the login
// path before the error is returned; other failures leave the session intact.
func (m *Manager) FetchUser(ctx context.Context) error {
	err := m.fetchUser(ctx)
	if transport.IsUnauthorized(err) {
		m.navigateToLogin(ctx)
	}
	return err
}

func (m *Manager) fetchUser(ctx context.Context) error {
	bearer := m.bearer()
	if bearer == "" {
		m.commit(ctx, func(s *state) { s.user = nil })
		return nil
	}

	var user *User
	err := m.timed(func() error {
		var err error
		user, err = m.endpoint.CurrentUser(ctx, bearer)
		return err
	})
	if err == nil && user == nil {
		err = ErrUserMissing
	}
	if err != nil {
		m.metrics.Inc(MetricFetchUserFailure)
		if transport.IsUnauthorized(err) {
			m.metrics.Inc(MetricSessionInvalidated)
			m.commit(ctx, func(s *state) { s.clearSession() })
			m.log.InfoContext(ctx, "session invalidated by endpoint")
		}
		return fmt.Errorf("fetch user: %w", err)
	}

	m.commit(ctx, func(s *state) { s.user = user })
	m.metrics.Inc(MetricFetchUserSuccess)
	return nil
}

/*
====================================
REFRESH
====================================
*/

// RefreshToken exchanges the current token for a new one. Without a token it
// does nothing.
//
// Failure handling follows Refresh.FailurePolicy: under [RefreshFailureFatal]
// the session is cleared, the login path visited and the error returned;
// under [RefreshFailureTransient] the failure is logged, the existing token is
// kept and nil is returned.
func (m *Manager) RefreshToken(ctx context.Context) error {
	bearer := m.bearer()
	if bearer == "" {
		return nil
	}

	m.commit(ctx, func(s *state) { s.isLoading = true })
	defer m.commit(ctx, func(s *state) { s.isLoading = false })

	var grant transport.Grant
	err := m.timed(func() error {
		var err error
		grant, err = m.endpoint.Refresh(ctx, bearer)
		return err
	})
	if err == nil && grant.Token == "" {
		err = ErrTokenMissing
	}
	if err != nil {
		m.metrics.Inc(MetricRefreshFailure)
		if m.config.Refresh.FailurePolicy == RefreshFailureTransient {
			m.log.WarnContext(ctx, "token refresh failed, keeping current token", slog.Any("error", err))
			return nil
		}
		m.metrics.Inc(MetricSessionInvalidated)
		m.commit(ctx, func(s *state) { s.clearSession() })
		m.log.WarnContext(ctx, "token refresh failed, session cleared", slog.Any("error", err))
		m.navigateToLogin(ctx)
		return fmt.Errorf("refresh token: %w", err)
	}

	m.commit(ctx, func(s *state) {
		s.token = grant.Token
		if grant.PublicKey != "" {
			s.publicKey = grant.PublicKey
		}
		if grant.User != nil {
			s.user = grant.User
		}
	})
	m.metrics.Inc(MetricRefreshSuccess)
	return nil
}

/*
====================================
SIGNATURE
====================================
*/

// VerifySignature asks the endpoint whether signature is valid for data under
// the current session. It returns false without a token and on any failure.
func (m *Manager) VerifySignature(ctx context.Context, data, signature string) bool {
	token := m.currentToken()
	if token == "" {
		m.metrics.Inc(MetricSignatureRejected)
		return false
	}

	var ok bool
	err := m.timed(func() error {
		var err error
		ok, err = m.endpoint.VerifySignature(ctx, m.bearer(), transport.SignatureCheck{
			Token:     token,
			Data:      data,
			Signature: signature,
		})
		return err
	})
	if err != nil {
		m.log.DebugContext(ctx, "signature verification failed", slog.Any("error", err))
		ok = false
	}

	if ok {
		m.metrics.Inc(MetricSignatureVerified)
	} else {
		m.metrics.Inc(MetricSignatureRejected)
	}
	return ok
}
