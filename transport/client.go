package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/MrEthical07/goAuthClient/session"
)

const maxResponseBody = 1 << 20

// Config configures a [Client].
type Config struct {
	BaseURL    string
	Routes     Routes
	Timeout    time.Duration
	UserAgent  string
	HTTPClient *http.Client
}

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	DeviceID string `json:"device_id"`
}

// Registration is the register request body.
type Registration struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
	DeviceID             string `json:"device_id"`
}

// SignatureCheck is the verify-signature request body.
type SignatureCheck struct {
	Token     string `json:"token"`
	Data      string `json:"data"`
	Signature string `json:"signature"`
}

// Grant is the normalized token payload returned by login, register, refresh
// and the session-token bootstrap. Any field may be empty; callers decide which
// ones their operation requires.
type Grant struct {
	Token     string
	PublicKey string
	User      *session.User
}

// Client talks to the remote authentication endpoint. It is safe for
// concurrent use.
type Client struct {
	base      *url.URL
	routes    Routes
	userAgent string
	http      *http.Client
}

// New validates cfg and returns a Client. When cfg.HTTPClient is nil a client
// with a cookie jar is created so the session-token bootstrap can reuse a
// server-side session cookie.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("transport: base URL required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("transport: invalid base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("transport: unsupported base URL scheme %q", base.Scheme)
	}
	if cfg.Timeout < 0 {
		return nil, errors.New("transport: negative timeout")
	}

	hc := cfg.HTTPClient
	if hc == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		hc = &http.Client{Jar: jar, Timeout: cfg.Timeout}
	}

	return &Client{
		base:      base,
		routes:    cfg.Routes.withDefaults(),
		userAgent: cfg.UserAgent,
		http:      hc,
	}, nil
}

// Routes returns the effective route table.
func (c *Client) Routes() Routes {
	return c.routes
}

// Login posts credentials to the login route.
func (c *Client) Login(ctx context.Context, creds Credentials) (Grant, error) {
	body, err := c.do(ctx, "login", http.MethodPost, c.routes.Login, "", creds)
	if err != nil {
		return Grant{}, err
	}
	return parseEnvelope(body).grant(), nil
}

// Register posts a registration to the register route.
func (c *Client) Register(ctx context.Context, reg Registration) (Grant, error) {
	body, err := c.do(ctx, "register", http.MethodPost, c.routes.Register, "", reg)
	if err != nil {
		return Grant{}, err
	}
	return parseEnvelope(body).grant(), nil
}

// Logout notifies the logout route. The response body is ignored.
func (c *Client) Logout(ctx context.Context, bearer string) error {
	_, err := c.do(ctx, "logout", http.MethodPost, c.routes.Logout, bearer, struct{}{})
	return err
}

// CurrentUser fetches the user the bearer value belongs to. It returns a nil
// user without error when the payload carries no recognizable user record.
func (c *Client) CurrentUser(ctx context.Context, bearer string) (*session.User, error) {
	body, err := c.do(ctx, "user", http.MethodGet, c.routes.User, bearer, nil)
	if err != nil {
		return nil, err
	}
	return parseEnvelope(body).user(true), nil
}

// Refresh exchanges the bearer value for a new token.
func (c *Client) Refresh(ctx context.Context, bearer string) (Grant, error) {
	body, err := c.do(ctx, "refresh", http.MethodPost, c.routes.Refresh, bearer, nil)
	if err != nil {
		return Grant{}, err
	}
	return parseEnvelope(body).grant(), nil
}

// VerifySignature asks the endpoint to verify signature over data. It reports
// true only for a {"status": "success"} response.
func (c *Client) VerifySignature(ctx context.Context, bearer string, check SignatureCheck) (bool, error) {
	body, err := c.do(ctx, "verify-signature", http.MethodPost, c.routes.VerifySignature, bearer, check)
	if err != nil {
		return false, err
	}
	env := parseEnvelope(body)
	var status string
	if raw, ok := env.top["status"]; ok {
		_ = json.Unmarshal(raw, &status)
	}
	return status == "success", nil
}

// SessionToken recovers a token for an existing server-side session, relying
// on cookies held by the HTTP client.
func (c *Client) SessionToken(ctx context.Context) (Grant, error) {
	body, err := c.do(ctx, "session-token", http.MethodGet, c.routes.SessionToken, "", nil)
	if err != nil {
		return Grant{}, err
	}
	return parseEnvelope(body).grant(), nil
}

func (c *Client) do(ctx context.Context, op, method, path, bearer string, payload any) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("transport: %s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.resolve(path), reader)
	if err != nil {
		return nil, fmt.Errorf("transport: %s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transport: %s: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("transport: %s: read response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Op: op, Status: resp.StatusCode, Message: errorMessage(body)}
	}
	return body, nil
}

func (c *Client) resolve(path string) string {
	ref, err := url.Parse(path)
	if err != nil {
		return c.base.String() + path
	}
	if ref.IsAbs() {
		return ref.String()
	}
	u := *c.base
	u.Path = strings.TrimRight(c.base.Path, "/") + "/" + strings.TrimLeft(ref.Path, "/")
	u.RawQuery = ref.RawQuery
	return u.String()
}
