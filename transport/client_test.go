package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MrEthical07/goAuthClient/session"
)

type recorded struct {
	method string
	path   string
	auth   string
	body   map[string]any
}

func newTestClient(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*Client, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{method: r.Method, path: r.URL.Path, auth: r.Header.Get("Authorization")}
		if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
			_ = json.Unmarshal(raw, &rec.body)
		}
		calls = append(calls, rec)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	c, err := New(Config{BaseURL: srv.URL, Timeout: 5 * time.Second, UserAgent: "goauth-client-test"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c, &calls
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestLoginNestedPayload(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"token": "t1", "public_key": "pk"}})
	})

	grant, err := c.Login(context.Background(), Credentials{Email: "a@test.com", Password: "pw", DeviceID: "dev"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if grant.Token != "t1" || grant.PublicKey != "pk" || grant.User != nil {
		t.Fatalf("unexpected grant %+v", grant)
	}

	got := (*calls)[0]
	if got.method != http.MethodPost || got.path != "/jwt/login" || got.auth != "" {
		t.Fatalf("unexpected request %+v", got)
	}
	if got.body["email"] != "a@test.com" || got.body["password"] != "pw" || got.body["device_id"] != "dev" {
		t.Fatalf("unexpected body %+v", got.body)
	}
}

func TestRegisterFlatPayloadAndConfirmation(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]any{
			"token": "t2",
			"user":  map[string]any{"id": 2, "name": "John", "email": "john@test.com"},
		})
	})

	grant, err := c.Register(context.Background(), Registration{
		Name: "John", Email: "john@test.com", Password: "pw", PasswordConfirmation: "pw", DeviceID: "dev",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	want := session.User{ID: 2, Name: "John", Email: "john@test.com"}
	if grant.Token != "t2" || grant.User == nil || *grant.User != want {
		t.Fatalf("unexpected grant %+v", grant)
	}
	if (*calls)[0].body["password_confirmation"] != "pw" {
		t.Fatalf("expected password confirmation in body, got %+v", (*calls)[0].body)
	}
}

func TestCurrentUserPayloadShapes(t *testing.T) {
	want := session.User{ID: 1, Name: "Andy", Email: "andy@test.com"}
	user := map[string]any{"id": 1, "name": "Andy", "email": "andy@test.com"}

	cases := []struct {
		name    string
		payload any
		want    *session.User
	}{
		{"data", map[string]any{"data": user}, &want},
		{"flat user", map[string]any{"user": user}, &want},
		{"data.user", map[string]any{"data": map[string]any{"user": user}}, &want},
		{"empty", map[string]any{}, nil},
		{"null data", map[string]any{"data": nil}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, tc.payload)
			})
			got, err := c.CurrentUser(context.Background(), "abc")
			if err != nil {
				t.Fatalf("current user: %v", err)
			}
			if (tc.want == nil) != (got == nil) || (got != nil && *got != *tc.want) {
				t.Fatalf("expected %+v, got %+v", tc.want, got)
			}
			if rec := (*calls)[0]; rec.method != http.MethodGet || rec.path != "/jwt/user" || rec.auth != "Bearer abc" {
				t.Fatalf("unexpected request %+v", rec)
			}
		})
	}
}

func TestErrorResponseCarriesStatusAndMessage(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"message": "Invalid credentials"})
	})

	_, err := c.Login(context.Background(), Credentials{Email: "a@test.com", Password: "bad"})
	var te *Error
	if !errors.As(err, &te) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if te.Status != http.StatusUnprocessableEntity || te.Message != "Invalid credentials" || te.Op != "login" {
		t.Fatalf("unexpected error %+v", te)
	}
	if MessageOf(err) != "Invalid credentials" || IsUnauthorized(err) {
		t.Fatalf("unexpected helpers for %v", err)
	}
}

func TestUnauthorizedWithoutMessage(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.CurrentUser(context.Background(), "abc")
	if !IsUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if MessageOf(err) != "" {
		t.Fatalf("expected empty message, got %q", MessageOf(err))
	}
}

func TestNetworkErrorHasNoStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(Config{BaseURL: url})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = c.Refresh(context.Background(), "abc")
	if err == nil {
		t.Fatal("expected network error")
	}
	if StatusOf(err) != 0 || IsUnauthorized(err) {
		t.Fatalf("network error should carry no status: %v", err)
	}
}

func TestVerifySignatureStatus(t *testing.T) {
	for _, tc := range []struct {
		status string
		want   bool
	}{{"success", true}, {"failed", false}, {"", false}} {
		c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"status": tc.status})
		})
		ok, err := c.VerifySignature(context.Background(), "abc", SignatureCheck{Token: "jwt:abc", Data: "d", Signature: "s"})
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if ok != tc.want {
			t.Fatalf("status %q: expected %v, got %v", tc.status, tc.want, ok)
		}
		rec := (*calls)[0]
		if rec.path != "/jwt/verify-signature" || rec.body["token"] != "jwt:abc" || rec.body["signature"] != "s" {
			t.Fatalf("unexpected request %+v", rec)
		}
	}
}

func TestSessionTokenSendsCookies(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/set":
			http.SetCookie(w, &http.Cookie{Name: "laravel_session", Value: "s1", Path: "/"})
			w.WriteHeader(http.StatusNoContent)
		case "/jwt/token":
			if ck, err := r.Cookie("laravel_session"); err != nil || ck.Value != "s1" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"token": "jwt:sess", "public_key": "pk"}})
		}
	})

	if _, err := c.do(context.Background(), "set", http.MethodGet, "/set", "", nil); err != nil {
		t.Fatalf("seed cookie: %v", err)
	}
	grant, err := c.SessionToken(context.Background())
	if err != nil {
		t.Fatalf("session token: %v", err)
	}
	if grant.Token != "jwt:sess" || grant.PublicKey != "pk" {
		t.Fatalf("unexpected grant %+v", grant)
	}
}

func TestLogoutSendsBearerAndEmptyObject(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	if err := c.Logout(context.Background(), "abc"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	rec := (*calls)[0]
	if rec.method != http.MethodPost || rec.path != "/jwt/logout" || rec.auth != "Bearer abc" {
		t.Fatalf("unexpected request %+v", rec)
	}
}

func TestCustomRoutesAndBasePath(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		writeJSON(w, http.StatusOK, map[string]any{"token": "t"})
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL + "/api/", Routes: Routes{Refresh: "auth/refresh"}})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := c.Refresh(context.Background(), "abc"); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if path != "/api/auth/refresh" {
		t.Fatalf("unexpected path %q", path)
	}
	if c.Routes().Login != "/jwt/login" {
		t.Fatalf("expected default login route, got %q", c.Routes().Login)
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	for _, cfg := range []Config{
		{},
		{BaseURL: "ftp://example.com"},
		{BaseURL: "http://example.com", Timeout: -time.Second},
	} {
		if _, err := New(cfg); err == nil {
			t.Fatalf("expected config %+v to be rejected", cfg)
		}
	}
}

func TestErrorString(t *testing.T) {
	err := &Error{Op: "login", Status: 401, Message: "nope"}
	if !strings.Contains(err.Error(), "status 401: nope") {
		t.Fatalf("unexpected error string %q", err.Error())
	}
}
