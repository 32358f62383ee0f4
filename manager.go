package goAuthClient

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/MrEthical07/goAuthClient/jwt"
	"github.com/MrEthical07/goAuthClient/session"
)

// Manager holds one client-side authentication session and drives its
// lifecycle against the remote endpoint.
//
// Every state change goes through a single commit step that updates memory,
// writes the persisted subset to the store and notifies subscribers. Callers
// are expected to invoke mutating operations one at a time; IsLoading is
// advisory and does not serialize them.
type Manager struct {
	config    Config
	endpoint  Endpoint
	store     session.Store
	navigator Navigator
	log       *slog.Logger
	metrics   *Metrics
	inspector *jwt.Inspector

	mu    sync.Mutex
	state state

	// persistMu orders store writes; taken before mu, never the reverse.
	persistMu sync.Mutex

	listenersMu sync.Mutex
	listeners   map[uint64]func(Snapshot)
	nextID      uint64
}

type state struct {
	token         string
	publicKey     string
	user          *User
	isLoading     bool
	err           string
	isInitialized bool
}

func (s *state) snapshot() Snapshot {
	var user *User
	if s.user != nil {
		u := *s.user
		user = &u
	}
	return Snapshot{
		Token:         s.token,
		PublicKey:     s.publicKey,
		User:          user,
		IsLoading:     s.isLoading,
		Error:         s.err,
		IsInitialized: s.isInitialized,
	}
}

func (s *state) persisted() session.State {
	st := session.State{
		SchemaVersion: session.CurrentSchemaVersion,
		Token:         s.token,
		PublicKey:     s.publicKey,
	}
	if s.user != nil {
		u := *s.user
		st.User = &u
	}
	return st
}

// clearSession drops the credential and everything derived from it.
func (s *state) clearSession() {
	s.token = ""
	s.publicKey = ""
	s.user = nil
}

/*
====================================
COMMIT
====================================
*/

// commit applies mutate, persists the result and notifies subscribers.
func (m *Manager) commit(ctx context.Context, mutate func(*state)) {
	m.commitIf(ctx, func(s *state) bool {
		mutate(s)
		return true
	})
}

// commitIf is commit with a guard: when mutate returns false nothing is
// persisted or published and commitIf returns false.
func (m *Manager) commitIf(ctx context.Context, mutate func(*state) bool) bool {
	m.persistMu.Lock()
	m.mu.Lock()
	if !mutate(&m.state) {
		m.mu.Unlock()
		m.persistMu.Unlock()
		return false
	}
	// token absent implies user absent on every path
	if m.state.token == "" {
		m.state.user = nil
		m.state.publicKey = ""
	}
	snap := m.state.snapshot()
	persisted := m.state.persisted()
	m.mu.Unlock()

	if err := m.store.Save(context.WithoutCancel(ctx), persisted); err != nil {
		m.metrics.Inc(MetricPersistFailure)
		m.log.WarnContext(ctx, "session persist failed", slog.Any("error", err))
	}
	m.persistMu.Unlock()

	m.publish(snap)
	return true
}

func (m *Manager) publish(snap Snapshot) {
	m.listenersMu.Lock()
	fns := make([]func(Snapshot), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.listenersMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

/*
====================================
OBSERVATION
====================================
*/

// Snapshot returns a copy of the current session state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.snapshot()
}

// Subscribe registers fn to receive a Snapshot after every committed change.
// Calls are synchronous, on the goroutine that performed the commit. The
// returned function removes the subscription.
func (m *Manager) Subscribe(fn func(Snapshot)) func() {
	m.listenersMu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.listenersMu.Lock()
			delete(m.listeners, id)
			m.listenersMu.Unlock()
		})
	}
}

// MetricsSnapshot returns the current counter and histogram values.
func (m *Manager) MetricsSnapshot() MetricsSnapshot {
	return m.metrics.Snapshot()
}

/*
====================================
PERSISTENCE
====================================
*/

// Restore seeds the session from the store. It is meant to run once at
// process start, before Initialize. A persisted user without a token is
// discarded. Restore notifies subscribers but does not write back to the store.
func (m *Manager) Restore(ctx context.Context) error {
	st, ok, err := m.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRestoreFailed, err)
	}
	if !ok {
		return nil
	}

	m.mu.Lock()
	m.state.token = st.Token
	m.state.publicKey = st.PublicKey
	m.state.user = nil
	if st.Token != "" && st.User != nil {
		u := *st.User
		m.state.user = &u
	}
	if st.Token == "" {
		m.state.publicKey = ""
	}
	snap := m.state.snapshot()
	m.mu.Unlock()

	m.log.DebugContext(ctx, "session restored", slog.Bool("authenticated", snap.Token != ""))
	m.publish(snap)
	return nil
}

// Reset returns the session to its at-rest shape, including the initialized
// latch, and clears the store.
func (m *Manager) Reset(ctx context.Context) error {
	m.persistMu.Lock()
	m.mu.Lock()
	m.state = state{}
	snap := m.state.snapshot()
	m.mu.Unlock()

	err := m.store.Clear(context.WithoutCancel(ctx))
	m.persistMu.Unlock()
	m.publish(snap)
	return err
}

/*
====================================
TOKEN HELPERS
====================================
*/

func (m *Manager) currentToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.token
}

// bearer returns the raw credential sent to the endpoint, or "".
func (m *Manager) bearer() string {
	return jwt.BearerValue(m.currentToken())
}

// BearerHeader returns the Authorization header value for the current token
// and whether a token is held.
func (m *Manager) BearerHeader() (string, bool) {
	token := m.currentToken()
	if token == "" {
		return "", false
	}
	return jwt.Header(token), true
}

// Claims decodes the current token without verifying its signature.
func (m *Manager) Claims() (*jwt.Claims, error) {
	token := m.currentToken()
	if token == "" {
		return nil, ErrNotAuthenticated
	}
	return m.inspector.Inspect(jwt.BearerValue(token))
}

// ExpiresWithin reports whether the current token expires within d. Tokens
// that cannot be decoded, or carry no expiry, report false.
func (m *Manager) ExpiresWithin(d time.Duration) bool {
	claims, err := m.Claims()
	if err != nil {
		return false
	}
	return claims.ExpiresWithin(time.Now(), d)
}

// VerifyLocal verifies the current token against the public key issued with it.
func (m *Manager) VerifyLocal() (*jwt.Claims, error) {
	m.mu.Lock()
	token, publicKey := m.state.token, m.state.publicKey
	m.mu.Unlock()

	if token == "" {
		return nil, ErrNotAuthenticated
	}
	if publicKey == "" {
		return nil, jwt.ErrNoPublicKey
	}
	claims, err := m.inspector.Verify(jwt.BearerValue(token), publicKey)
	if err != nil {
		return nil, fmt.Errorf("verify local token: %w", err)
	}
	return claims, nil
}

// timed runs fn and records its latency.
func (m *Manager) timed(fn func() error) error {
	start := time.Now()
	err := fn()
	m.metrics.Observe(MetricRemoteLatency, time.Since(start))
	return err
}

func (m *Manager) navigateToLogin(ctx context.Context) {
	m.navigator.Visit(ctx, m.config.Navigation.LoginPath)
}
