package goAuthClient

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrEthical07/goAuthClient/transport"
)

// Config defines the tunables of a [Manager].
//
// Config instances are intended to be configured during initialization and then treated as immutable.
type Config struct {
	Endpoint    EndpointConfig    `envPrefix:"ENDPOINT_"`
	Persistence PersistenceConfig `envPrefix:"PERSIST_"`
	Init        InitConfig        `envPrefix:"INIT_"`
	Refresh     RefreshConfig     `envPrefix:"REFRESH_"`
	Navigation  NavigationConfig  `envPrefix:"NAV_"`
	Token       TokenConfig       `envPrefix:"TOKEN_"`
	Metrics     MetricsConfig     `envPrefix:"METRICS_"`
}

/*
====================================
ENDPOINT CONFIG
====================================
*/

// EndpointConfig configures the default HTTP endpoint built when no
// [Endpoint] is supplied to the [Builder].
type EndpointConfig struct {
	BaseURL   string           `env:"BASE_URL"`
	Timeout   time.Duration    `env:"TIMEOUT"`
	UserAgent string           `env:"USER_AGENT"`
	Routes    transport.Routes `envPrefix:"ROUTE_"`
}

/*
====================================
PERSISTENCE CONFIG
====================================
*/

// StoreBackend names a persistence sink implementation.
type StoreBackend string

const (
	// BackendMemory keeps the session in process memory only.
	BackendMemory StoreBackend = "memory"
	// BackendFile writes a JSON document to Path.
	BackendFile StoreBackend = "file"
	// BackendRedis writes to the Redis instance at RedisURL.
	BackendRedis StoreBackend = "redis"
	// BackendSQLite writes to the SQLite database at Path.
	BackendSQLite StoreBackend = "sqlite"
)

// PersistenceConfig selects and configures the persistence sink used by
// [OpenStore].
type PersistenceConfig struct {
	Backend     StoreBackend  `env:"BACKEND"`
	Path        string        `env:"PATH"`
	RedisURL    string        `env:"REDIS_URL"`
	RedisPrefix string        `env:"REDIS_PREFIX"`
	RedisTTL    time.Duration `env:"REDIS_TTL"`
}

/*
====================================
LIFECYCLE CONFIG
====================================
*/

// InitConfig controls the session bootstrap attempts made by Initialize.
type InitConfig struct {
	// BootstrapWhenEmpty tries the session-token route when no token was restored.
	BootstrapWhenEmpty bool `env:"BOOTSTRAP_WHEN_EMPTY"`
	// BootstrapOnFailure tries the session-token route after the restored token
	// failed to fetch the user.
	BootstrapOnFailure bool `env:"BOOTSTRAP_ON_FAILURE"`
}

// RefreshFailurePolicy decides what a failed token refresh does to the session.
type RefreshFailurePolicy string

const (
	// RefreshFailureFatal clears the session, navigates to the login path and
	// returns the error.
	RefreshFailureFatal RefreshFailurePolicy = "fatal"
	// RefreshFailureTransient logs the failure and keeps the current token.
	RefreshFailureTransient RefreshFailurePolicy = "transient"
)

// RefreshConfig controls RefreshToken.
type RefreshConfig struct {
	FailurePolicy RefreshFailurePolicy `env:"FAILURE_POLICY"`
}

// NavigationConfig controls where the session manager sends the user.
type NavigationConfig struct {
	LoginPath string `env:"LOGIN_PATH"`
}

// TokenConfig controls local claim validation in [Manager.VerifyLocal].
type TokenConfig struct {
	Issuer   string        `env:"ISSUER"`
	Audience string        `env:"AUDIENCE"`
	Leeway   time.Duration `env:"LEEWAY"`
}

// MetricsConfig toggles in-process counters and the remote latency histogram.
type MetricsConfig struct {
	Enabled                 bool `env:"ENABLED"`
	EnableLatencyHistograms bool `env:"LATENCY_HISTOGRAMS"`
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the configuration used by [New].
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Endpoint: EndpointConfig{
			Timeout:   30 * time.Second,
			UserAgent: "goauth-client",
			Routes:    transport.DefaultRoutes(),
		},
		Persistence: PersistenceConfig{
			Backend:     BackendMemory,
			RedisPrefix: "gac",
		},
		Init: InitConfig{
			BootstrapWhenEmpty: true,
			BootstrapOnFailure: false,
		},
		Refresh: RefreshConfig{
			FailurePolicy: RefreshFailureFatal,
		},
		Navigation: NavigationConfig{
			LoginPath: "/login",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first invalid setting, wrapped in [ErrInvalidConfig].
func (c *Config) Validate() error {
	if err := c.validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func (c *Config) validate() error {
	// Endpoint
	if c.Endpoint.Timeout < 0 {
		return errors.New("Endpoint Timeout must be >= 0")
	}

	// Persistence
	switch c.Persistence.Backend {
	case BackendMemory:
	case BackendFile, BackendSQLite:
		if strings.TrimSpace(c.Persistence.Path) == "" {
			return fmt.Errorf("Persistence Path required for %s backend", c.Persistence.Backend)
		}
	case BackendRedis:
		if strings.TrimSpace(c.Persistence.RedisURL) == "" {
			return errors.New("Persistence RedisURL required for redis backend")
		}
		if c.Persistence.RedisTTL < 0 {
			return errors.New("Persistence RedisTTL must be >= 0")
		}
	default:
		return fmt.Errorf("unsupported Persistence Backend %q", c.Persistence.Backend)
	}

	// Refresh
	if c.Refresh.FailurePolicy != RefreshFailureFatal && c.Refresh.FailurePolicy != RefreshFailureTransient {
		return fmt.Errorf("unsupported Refresh FailurePolicy %q", c.Refresh.FailurePolicy)
	}

	// Navigation
	if !strings.HasPrefix(c.Navigation.LoginPath, "/") {
		return errors.New("Navigation LoginPath must start with /")
	}

	// Token
	if c.Token.Leeway < 0 || c.Token.Leeway > 2*time.Minute {
		return errors.New("Token Leeway must be within [0, 2m]")
	}

	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics LatencyHistograms requires Metrics Enabled")
	}

	return nil
}
