package goAuthClient

import (
	"errors"
	"log/slog"

	"github.com/MrEthical07/goAuthClient/jwt"
	"github.com/MrEthical07/goAuthClient/session"
	"github.com/MrEthical07/goAuthClient/transport"
)

// Builder assembles a [Manager]. A Builder is single-use.
type Builder struct {
	config Config

	endpoint  Endpoint
	store     session.Store
	navigator Navigator
	logger    *slog.Logger

	built bool
}

// New returns a Builder seeded with the default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithEndpoint sets the remote endpoint. Without one, Build creates a
// [transport.Client] from Config.Endpoint.
func (b *Builder) WithEndpoint(ep Endpoint) *Builder {
	b.endpoint = ep
	return b
}

// WithStore sets the persistence sink. Defaults to a [session.MemoryStore].
func (b *Builder) WithStore(store session.Store) *Builder {
	b.store = store
	return b
}

// WithNavigator sets the navigation collaborator. Defaults to one that only logs.
func (b *Builder) WithNavigator(nav Navigator) *Builder {
	b.navigator = nav
	return b
}

// WithLogger sets the structured logger. Defaults to [slog.Default].
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithMetricsEnabled toggles counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the remote latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// WithRefreshFailurePolicy sets how RefreshToken treats failures.
func (b *Builder) WithRefreshFailurePolicy(p RefreshFailurePolicy) *Builder {
	b.config.Refresh.FailurePolicy = p
	return b
}

// Build validates the configuration and returns a Manager with the session at
// rest. Call [Manager.Restore] to seed it from the store before Initialize.
func (b *Builder) Build() (*Manager, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "goauth-client"))

	endpoint := b.endpoint
	if endpoint == nil {
		if cfg.Endpoint.BaseURL == "" {
			return nil, errors.New("endpoint or Endpoint BaseURL required")
		}
		client, err := transport.New(transport.Config{
			BaseURL:   cfg.Endpoint.BaseURL,
			Routes:    cfg.Endpoint.Routes,
			Timeout:   cfg.Endpoint.Timeout,
			UserAgent: cfg.Endpoint.UserAgent,
		})
		if err != nil {
			return nil, err
		}
		endpoint = client
	}

	store := b.store
	if store == nil {
		store = session.NewMemoryStore()
	}

	navigator := b.navigator
	if navigator == nil {
		navigator = logNavigator{log: logger}
	}

	inspector, err := jwt.NewInspector(jwt.Config{
		Issuer:   cfg.Token.Issuer,
		Audience: cfg.Token.Audience,
		Leeway:   cfg.Token.Leeway,
	})
	if err != nil {
		return nil, err
	}

	b.built = true

	return &Manager{
		config:    cfg,
		endpoint:  endpoint,
		store:     store,
		navigator: navigator,
		log:       logger,
		metrics:   NewMetrics(cfg.Metrics),
		inspector: inspector,
		listeners: make(map[uint64]func(Snapshot)),
	}, nil
}
