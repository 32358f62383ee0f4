package middleware

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	goAuthClient "github.com/MrEthical07/goAuthClient"
	"github.com/MrEthical07/goAuthClient/session"
	"github.com/MrEthical07/goAuthClient/transport"
)

type stubEndpoint struct {
	refreshed string
}

func (s *stubEndpoint) Login(context.Context, transport.Credentials) (transport.Grant, error) {
	return transport.Grant{}, errors.New("unused")
}

func (s *stubEndpoint) Register(context.Context, transport.Registration) (transport.Grant, error) {
	return transport.Grant{}, errors.New("unused")
}

func (s *stubEndpoint) Logout(context.Context, string) error { return nil }

func (s *stubEndpoint) CurrentUser(context.Context, string) (*goAuthClient.User, error) {
	return &goAuthClient.User{ID: 1, Name: "A", Email: "a@test.com"}, nil
}

func (s *stubEndpoint) Refresh(context.Context, string) (transport.Grant, error) {
	if s.refreshed == "" {
		return transport.Grant{}, &transport.Error{Op: "refresh", Status: http.StatusUnauthorized}
	}
	return transport.Grant{Token: s.refreshed}, nil
}

func (s *stubEndpoint) VerifySignature(context.Context, string, transport.SignatureCheck) (bool, error) {
	return false, nil
}

func (s *stubEndpoint) SessionToken(context.Context) (transport.Grant, error) {
	return transport.Grant{}, errors.New("unused")
}

func newManager(t *testing.T, ep goAuthClient.Endpoint, st session.State) *goAuthClient.Manager {
	t.Helper()
	store := session.NewMemoryStore()
	if st.Token != "" {
		if err := store.Save(context.Background(), st); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	m, err := goAuthClient.New().
		WithEndpoint(ep).
		WithStore(store).
		WithNavigator(goAuthClient.NavigatorFunc(func(context.Context, string) {})).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := m.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}
	return m
}

func signedToken(t *testing.T, exp time.Duration) (token, publicKey string) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("keygen: %v", err)
	}
	tok := gojwt.NewWithClaims(gojwt.SigningMethodEdDSA, gojwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: gojwt.NewNumericDate(time.Now().Add(exp)),
		IssuedAt:  gojwt.NewNumericDate(time.Now()),
	})
	signed, err := tok.SignedString(priv)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return signed, base64.StdEncoding.EncodeToString(pub)
}

func okHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := SnapshotFromContext(r.Context()); !ok {
			t.Error("expected snapshot in context")
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func serve(h http.Handler) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	return rr
}

func TestGuardRedirectsWithoutSession(t *testing.T) {
	m := newManager(t, &stubEndpoint{}, session.State{})
	rr := serve(Guard(m, "/login")(okHandler(t)))
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/login" {
		t.Fatalf("expected redirect to /login, got %d %q", rr.Code, rr.Header().Get("Location"))
	}
}

func TestGuardPassesWithSession(t *testing.T) {
	m := newManager(t, &stubEndpoint{}, session.State{Token: "t1"})
	rr := serve(Guard(m, "/login")(okHandler(t)))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected pass-through, got %d", rr.Code)
	}
}

func TestGuardNilManager(t *testing.T) {
	rr := serve(Guard(nil, "/login")(okHandler(t)))
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rr.Code)
	}
}

func TestRequireVerified(t *testing.T) {
	token, pub := signedToken(t, time.Hour)

	m := newManager(t, &stubEndpoint{}, session.State{Token: token, PublicKey: pub})
	if rr := serve(RequireVerified(m, "/login")(okHandler(t))); rr.Code != http.StatusNoContent {
		t.Fatalf("expected verified pass-through, got %d", rr.Code)
	}

	_, otherPub := signedToken(t, time.Hour)
	m = newManager(t, &stubEndpoint{}, session.State{Token: token, PublicKey: otherPub})
	if rr := serve(RequireVerified(m, "/login")(okHandler(t))); rr.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect on wrong key, got %d", rr.Code)
	}

	expired, expiredPub := signedToken(t, -time.Hour)
	m = newManager(t, &stubEndpoint{}, session.State{Token: expired, PublicKey: expiredPub})
	if rr := serve(RequireVerified(m, "/login")(okHandler(t))); rr.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect on expired token, got %d", rr.Code)
	}
}

func TestRequireFreshRefreshesNearExpiry(t *testing.T) {
	token, pub := signedToken(t, 30*time.Second)
	ep := &stubEndpoint{refreshed: "t2"}
	m := newManager(t, ep, session.State{Token: token, PublicKey: pub})

	rr := serve(RequireFresh(m, "/login", time.Minute)(okHandler(t)))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected pass-through after refresh, got %d", rr.Code)
	}
	if got := m.Snapshot().Token; got != "t2" {
		t.Fatalf("expected refreshed token, got %q", got)
	}
}

func TestRequireFreshRedirectsWhenRefreshFails(t *testing.T) {
	token, pub := signedToken(t, 30*time.Second)
	m := newManager(t, &stubEndpoint{}, session.State{Token: token, PublicKey: pub})

	rr := serve(RequireFresh(m, "/login", time.Minute)(okHandler(t)))
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rr.Code)
	}
	if m.Snapshot().IsAuthenticated() {
		t.Fatal("fatal refresh policy should clear the session")
	}
}

func TestRequireFreshSkipsLongLivedToken(t *testing.T) {
	token, pub := signedToken(t, time.Hour)
	m := newManager(t, &stubEndpoint{}, session.State{Token: token, PublicKey: pub})

	rr := serve(RequireFresh(m, "/login", time.Minute)(okHandler(t)))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected pass-through, got %d", rr.Code)
	}
	if m.Snapshot().Token != token {
		t.Fatal("token should not be refreshed")
	}
}

func TestTransportAddsBearer(t *testing.T) {
	var got []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	m := newManager(t, &stubEndpoint{}, session.State{Token: "jwt:abc"})
	client := Client(m)

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	resp.Body.Close()
	if req.Header.Get("Authorization") != "" {
		t.Fatal("caller request must not be modified")
	}

	req, _ = http.NewRequest(http.MethodGet, srv.URL, nil)
	req.Header.Set("Authorization", "Basic x")
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	resp.Body.Close()

	anon := Client(newManager(t, &stubEndpoint{}, session.State{}))
	resp, err = anon.Get(srv.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()

	want := []string{"Bearer abc", "Basic x", ""}
	if len(got) != len(want) {
		t.Fatalf("expected %d requests, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("request %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}
