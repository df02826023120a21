package authclient

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/simstudio/authclient/cipher"
	internalaudit "github.com/simstudio/authclient/internal/audit"
	"github.com/simstudio/authclient/internal/rate"
	"github.com/simstudio/authclient/partner"
	"github.com/simstudio/authclient/storage"
	"github.com/simstudio/authclient/tokens"
	"github.com/simstudio/authclient/validate"
)

// Builder assembles a Client. Configure it once, call Build, then discard it.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	primary   PrimaryProvider
	navigator Navigator
	durable   storage.Store
	session   storage.Store
	transform Transform
	checker   validate.EmailChecker

	httpClient *http.Client
	auditSink  AuditSink
	logger     *slog.Logger

	built bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis supplies a Redis client. It backs the attempt throttle and, when no explicit
// stores are given, both the durable and the session store.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithPrimary sets the primary account service. Required.
func (b *Builder) WithPrimary(p PrimaryProvider) *Builder {
	b.primary = p
	return b
}

// WithNavigator sets the navigation target. Required.
func (b *Builder) WithNavigator(n Navigator) *Builder {
	b.navigator = n
	return b
}

// WithDurableStore sets the store that outlives the process: token pair and returning-user
// flag.
func (b *Builder) WithDurableStore(s storage.Store) *Builder {
	b.durable = s
	return b
}

// WithSessionStore sets the store for values scoped to the current session, such as the
// pending verification email.
func (b *Builder) WithSessionStore(s storage.Store) *Builder {
	b.session = s
	return b
}

// WithTransform sets the decrypter used by SubmitEncrypted. It takes precedence over
// Transform.Passphrase.
func (b *Builder) WithTransform(t Transform) *Builder {
	b.transform = t
	return b
}

// WithEmailChecker replaces the default email syntax checker.
func (b *Builder) WithEmailChecker(c validate.EmailChecker) *Builder {
	b.checker = c
	return b
}

// WithHTTPClient sets the HTTP client used for partner calls.
func (b *Builder) WithHTTPClient(hc *http.Client) *Builder {
	b.httpClient = hc
	return b
}

// WithAuditSink sets the audit destination and enables audit dispatch.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	b.config.Audit.Enabled = sink != nil
	return b
}

func (b *Builder) WithLogger(l *slog.Logger) *Builder {
	b.logger = l
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and wires every component. A Builder can be built once.
func (b *Builder) Build() (*Client, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.primary == nil {
		return nil, errors.New("primary provider required")
	}
	if b.navigator == nil {
		return nil, errors.New("navigator required")
	}
	if cfg.Throttle.Enabled && b.redis == nil {
		return nil, errors.New("Throttle requires redis client")
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "authclient"))

	// -------- STORES --------
	durable := b.durable
	if durable == nil {
		if b.redis != nil {
			durable = storage.NewRedis(b.redis, "", 0)
		} else {
			durable = storage.NewMemory()
		}
	}
	session := b.session
	if session == nil {
		if b.redis != nil {
			session = storage.NewRedis(b.redis, "session", cfg.Storage.VerificationEmailTTL)
		} else {
			session = storage.NewMemory()
		}
	}
	durable = storage.Namespaced(durable, cfg.Storage.Namespace)
	session = storage.Namespaced(session, cfg.Storage.Namespace)

	tokenStore := tokens.NewStore(durable,
		tokens.WithKey(cfg.Storage.TokenKey),
		tokens.WithLegacyAccessKey(cfg.Storage.LegacyAccessKey),
		tokens.WithLogger(logger),
	)

	client := &Client{
		config:    cfg,
		primary:   b.primary,
		navigator: b.navigator,
		durable:   durable,
		session:   session,
		validator: validate.New(b.checker),
		metrics:   NewMetrics(cfg.Metrics),
		logger:    logger,
	}

	// -------- PARTNER SESSION --------
	partnerOpts := []partner.Option{
		partner.WithLogger(logger),
		partner.WithObserver(client.observePartner),
	}
	if b.httpClient != nil {
		partnerOpts = append(partnerOpts, partner.WithHTTPClient(b.httpClient))
	}
	pc, err := partner.New(cfg.Partner, tokenStore, partnerOpts...)
	if err != nil {
		return nil, err
	}
	client.partner = pc

	// -------- THROTTLE --------
	if cfg.Throttle.Enabled {
		client.limiter = rate.New(b.redis, rate.Config{
			Prefix:           cfg.Throttle.RedisPrefix,
			MaxAttempts:      cfg.Throttle.MaxAttempts,
			Window:           cfg.Throttle.Window,
			EnableIPThrottle: cfg.Throttle.EnableIPThrottle,
		})
	}

	// -------- TRANSFORM --------
	client.transform = b.transform
	if client.transform == nil && cfg.Transform.Passphrase != "" {
		box, err := cipher.New(cipher.Config{
			Passphrase:  cfg.Transform.Passphrase,
			Memory:      cfg.Transform.Memory,
			Time:        cfg.Transform.Time,
			Parallelism: cfg.Transform.Parallelism,
		})
		if err != nil {
			return nil, err
		}
		client.transform = box
	}

	client.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)

	b.built = true

	return client, nil
}
