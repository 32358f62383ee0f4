package jwt

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoToken is returned when an empty bearer value is inspected.
	ErrNoToken = errors.New("no token")
	// ErrNoPublicKey is returned by Verify when the session carries no public key.
	ErrNoPublicKey = errors.New("no public key")
	// ErrInvalidPublicKey is returned when the session public key cannot be decoded.
	ErrInvalidPublicKey = errors.New("invalid ed25519 public key")
)

// Config controls claim validation performed by [Inspector.Verify].
type Config struct {
	Issuer   string
	Audience string
	Leeway   time.Duration
}

// Inspector reads claims from bearer values. It is stateless apart from its
// configuration and is safe for concurrent use.
type Inspector struct {
	config Config
}

// Claims is the subset of registered JWT claims the session layer cares about.
type Claims struct {
	Subject   string
	Issuer    string
	Audience  []string
	ExpiresAt time.Time
	IssuedAt  time.Time
	NotBefore time.Time
}

// NewInspector returns an Inspector using cfg.
func NewInspector(cfg Config) (*Inspector, error) {
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	cfg.Issuer = strings.TrimSpace(cfg.Issuer)
	cfg.Audience = strings.TrimSpace(cfg.Audience)
	return &Inspector{config: cfg}, nil
}

// Inspect decodes the claims of bearer without checking its signature.
// Opaque (non-JWT) bearer values return an error.
func (i *Inspector) Inspect(bearer string) (*Claims, error) {
	if bearer == "" {
		return nil, ErrNoToken
	}
	var rc jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(bearer, &rc); err != nil {
		return nil, fmt.Errorf("inspect token: %w", err)
	}
	return claimsFrom(&rc), nil
}

// Verify checks the EdDSA signature of bearer against publicKey and validates
// expiry, issuer and audience per the inspector configuration.
//
// publicKey may be PEM encoded or the base64 (standard or raw URL) encoding of
// the 32 raw key bytes.
func (i *Inspector) Verify(bearer, publicKey string) (*Claims, error) {
	if bearer == "" {
		return nil, ErrNoToken
	}
	if strings.TrimSpace(publicKey) == "" {
		return nil, ErrNoPublicKey
	}
	key, err := parseEdPublicKey(publicKey)
	if err != nil {
		return nil, err
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if i.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(i.config.Leeway))
	}
	if i.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(i.config.Issuer))
	}
	if i.config.Audience != "" {
		options = append(options, jwt.WithAudience(i.config.Audience))
	}

	var rc jwt.RegisteredClaims
	token, err := jwt.NewParser(options...).ParseWithClaims(bearer, &rc, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodEdDSA.Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return key, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claimsFrom(&rc), nil
}

// ExpiresWithin reports whether the claims expire within d of now. Tokens without
// an expiry never do.
func (c *Claims) ExpiresWithin(now time.Time, d time.Duration) bool {
	if c == nil || c.ExpiresAt.IsZero() {
		return false
	}
	return !now.Add(d).Before(c.ExpiresAt)
}

func claimsFrom(rc *jwt.RegisteredClaims) *Claims {
	c := &Claims{
		Subject:  rc.Subject,
		Issuer:   rc.Issuer,
		Audience: []string(rc.Audience),
	}
	if rc.ExpiresAt != nil {
		c.ExpiresAt = rc.ExpiresAt.Time
	}
	if rc.IssuedAt != nil {
		c.IssuedAt = rc.IssuedAt.Time
	}
	if rc.NotBefore != nil {
		c.NotBefore = rc.NotBefore.Time
	}
	return c
}

func parseEdPublicKey(key string) (ed25519.PublicKey, error) {
	key = strings.TrimSpace(key)
	if strings.HasPrefix(key, "-----BEGIN") {
		parsed, err := jwt.ParseEdPublicKeyFromPEM([]byte(key))
		if err != nil {
			return nil, ErrInvalidPublicKey
		}
		edKey, ok := parsed.(ed25519.PublicKey)
		if !ok {
			return nil, errors.New("invalid ed25519 public key type")
		}
		return edKey, nil
	}

	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawURLEncoding, base64.RawStdEncoding, base64.URLEncoding} {
		raw, err := enc.DecodeString(key)
		if err == nil && len(raw) == ed25519.PublicKeySize {
			return ed25519.PublicKey(raw), nil
		}
	}
	return nil, ErrInvalidPublicKey
}
