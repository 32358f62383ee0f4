package goAuthClient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/MrEthical07/goAuthClient/transport"
)

// beginAttempt clears the last error and raises the loading flag. The returned
// function lowers it again and must be deferred.
func (m *Manager) beginAttempt(ctx context.Context) func() {
	m.commit(ctx, func(s *state) {
		s.err = ""
		s.isLoading = true
	})
	return func() {
		m.commit(ctx, func(s *state) { s.isLoading = false })
	}
}

// failAttempt records a user-facing message for err and drops any credential.
func (m *Manager) failAttempt(ctx context.Context, err error, fallback string) {
	msg := transport.MessageOf(err)
	if msg == "" {
		msg = fallback
	}
	m.commit(ctx, func(s *state) {
		s.clearSession()
		s.err = msg
	})
}

func deviceID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

/*
====================================
LOGIN
====================================
*/

// Login exchanges credentials for a token and then fetches the user record.
//
// An empty deviceID is replaced with a random UUID. On rejection the session is
// left without a token, Snapshot().Error carries the endpoint's message (or
// "Login failed") and the error is returned. A failing user fetch after a
// successful exchange is returned as well; the token stays in place unless the
// fetch was a 401.
func (m *Manager) Login(ctx context.Context, email, password, deviceIDOpt string) error {
	done := m.beginAttempt(ctx)
	defer done()

	var grant transport.Grant
	err := m.timed(func() error {
		var err error
		grant, err = m.endpoint.Login(ctx, transport.Credentials{
			Email:    email,
			Password: password,
			DeviceID: deviceID(deviceIDOpt),
		})
		return err
	})
	if err == nil && grant.Token == "" {
		err = ErrTokenMissing
	}
	if err != nil {
		m.metrics.Inc(MetricLoginFailure)
		m.failAttempt(ctx, err, msgLoginFailed)
		m.log.InfoContext(ctx, "login failed", slog.Int("status", transport.StatusOf(err)), slog.Any("error", err))
		return fmt.Errorf("login: %w", err)
	}

	m.commit(ctx, func(s *state) {
		s.token = grant.Token
		s.publicKey = grant.PublicKey
		s.user = grant.User
		s.isInitialized = true
	})

	if err := m.FetchUser(ctx); err != nil {
		m.metrics.Inc(MetricLoginFailure)
		return fmt.Errorf("login: %w", err)
	}

	m.metrics.Inc(MetricLoginSuccess)
	return nil
}

/*
====================================
REGISTER
====================================
*/

// Register creates an account and establishes its session. The password
// confirmation sent to the endpoint mirrors password. When the response has
// no inline user the user is fetched; a registration that still ends without
// a token and a user fails with [ErrTokenOrUserMissing] and leaves no session.
func (m *Manager) Register(ctx context.Context, name, email, password, deviceIDOpt string) error {
	done := m.beginAttempt(ctx)
	defer done()

	var grant transport.Grant
	err := m.timed(func() error {
		var err error
		grant, err = m.endpoint.Register(ctx, transport.Registration{
			Name:                 name,
			Email:                email,
			Password:             password,
			PasswordConfirmation: password,
			DeviceID:             deviceID(deviceIDOpt),
		})
		return err
	})
	if err == nil && grant.Token == "" {
		err = ErrTokenOrUserMissing
	}
	if err != nil {
		m.metrics.Inc(MetricRegisterFailure)
		fallback := msgRegistrationFailed
		if errors.Is(err, ErrTokenOrUserMissing) {
			fallback = msgTokenOrUserMissing
		}
		m.failAttempt(ctx, err, fallback)
		m.log.InfoContext(ctx, "registration failed", slog.Int("status", transport.StatusOf(err)), slog.Any("error", err))
		return fmt.Errorf("register: %w", err)
	}

	m.commit(ctx, func(s *state) {
		s.token = grant.Token
		s.publicKey = grant.PublicKey
		s.user = grant.User
		s.isInitialized = true
	})

	if grant.User == nil {
		fetchErr := m.fetchUser(ctx)
		if m.Snapshot().User == nil {
			err := ErrTokenOrUserMissing
			if fetchErr != nil {
				err = fmt.Errorf("%w: %w", ErrTokenOrUserMissing, fetchErr)
			}
			m.metrics.Inc(MetricRegisterFailure)
			m.failAttempt(ctx, err, msgTokenOrUserMissing)
			m.log.InfoContext(ctx, "registration user fetch failed", slog.Int("status", transport.StatusOf(err)), slog.Any("error", err))
			return fmt.Errorf("register: %w", err)
		}
	}

	m.metrics.Inc(MetricRegisterSuccess)
	return nil
}

/*
====================================
LOGOUT
====================================
*/

// Logout notifies the endpoint when a token is held, resets the session and
// navigates to the login path. Notification failures are logged only.
func (m *Manager) Logout(ctx context.Context) {
	if bearer := m.bearer(); bearer != "" {
		err := m.timed(func() error {
			return m.endpoint.Logout(ctx, bearer)
		})
		if err != nil {
			m.metrics.Inc(MetricLogoutNotifyFailure)
			m.log.WarnContext(ctx, "logout notification failed", slog.Any("error", err))
		}
	}

	m.commit(ctx, func(s *state) {
		s.clearSession()
		s.isLoading = false
		s.isInitialized = true
	})
	m.metrics.Inc(MetricLogout)
	m.navigateToLogin(ctx)
}
