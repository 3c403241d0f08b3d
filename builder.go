package goShield

import (
	"errors"

	"github.com/redis/go-redis/v9"

	internalaudit "github.com/MrEthical07/goShield/internal/audit"
	internalguard "github.com/MrEthical07/goShield/internal/guard"
	"github.com/MrEthical07/goShield/internal/rate"
	"github.com/MrEthical07/goShield/jwt"
	"github.com/MrEthical07/goShield/notify"
	"github.com/MrEthical07/goShield/password"
	"github.com/MrEthical07/goShield/session"
)

// Builder assembles an [Engine] from its configuration and collaborators.
// Build once at process start; a Builder is not reusable.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	users      UserStore
	blocks     BlockStore
	sessions   session.Store
	devices    session.DeviceStore
	activities session.ActivityStore
	geo        session.GeoResolver
	notifier   Notifier
	auditSink  AuditSink

	built bool
}

// New creates a Builder preloaded with the default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the entire configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the Redis client backing the brute-force failure counters.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithUserStore sets the account record store. Required.
func (b *Builder) WithUserStore(store UserStore) *Builder {
	b.users = store
	return b
}

// WithBlockStore sets the persistent address block list. Required.
func (b *Builder) WithBlockStore(store BlockStore) *Builder {
	b.blocks = store
	return b
}

// WithSessionStores sets the session, device, and activity stores. Required.
func (b *Builder) WithSessionStores(sessions session.Store, devices session.DeviceStore, activities session.ActivityStore) *Builder {
	b.sessions = sessions
	b.devices = devices
	b.activities = activities
	return b
}

// WithGeoResolver sets the optional location resolver for the anomaly check.
// Without one, every login location is unknown and only the new-device signal
// can fire.
func (b *Builder) WithGeoResolver(geo session.GeoResolver) *Builder {
	b.geo = geo
	return b
}

// WithNotifier sets the out-of-band delivery collaborator. Defaults to
// [notify.NoOp].
func (b *Builder) WithNotifier(n Notifier) *Builder {
	b.notifier = n
	return b
}

// WithAuditSink sets the audit event sink. Only consulted when
// Config.Audit.Enabled is true.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles the in-process metrics counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the validate-path latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration, wires all components, and returns a
// ready Engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.users == nil {
		return nil, errors.New("user store required")
	}
	if b.blocks == nil {
		return nil, errors.New("block store required")
	}
	if b.sessions == nil || b.devices == nil || b.activities == nil {
		return nil, errors.New("session, device, and activity stores required")
	}
	if b.redis == nil {
		return nil, errors.New("redis client required")
	}

	hasher, err := password.NewHasher(password.Config{
		Memory:      cfg.Password.Memory,
		Time:        cfg.Password.Time,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
	})
	if err != nil {
		return nil, err
	}

	jwtManager, err := jwt.NewManager(jwt.Config{
		AccessTTL:     cfg.JWT.AccessTTL,
		SigningMethod: jwt.SigningMethod(cfg.JWT.SigningMethod),
		PrivateKey:    cloneBytes(cfg.JWT.PrivateKey),
		PublicKey:     cloneBytes(cfg.JWT.PublicKey),
		Issuer:        cfg.JWT.Issuer,
		Audience:      cfg.JWT.Audience,
		Leeway:        cfg.JWT.Leeway,
		KeyID:         cfg.JWT.KeyID,
		VerifyKeys:    cfg.JWT.VerifyKeys,
	})
	if err != nil {
		return nil, err
	}

	counter := rate.New(b.redis, rate.Config{
		Window: cfg.Guard.FailureWindow,
	})

	notifier := b.notifier
	if notifier == nil {
		notifier = notify.NoOp{}
	}

	engine := &Engine{
		config:   cfg,
		users:    b.users,
		hasher:   hasher,
		tokens:   jwtManager,
		notifier: notifier,
		sessions: session.NewManager(b.sessions, b.devices, b.activities, b.geo, session.Config{
			TTL:                  cfg.Session.TTL,
			SuspiciousDistanceKM: cfg.Session.SuspiciousDistanceKM,
			GeoResolveTimeout:    cfg.Session.GeoResolveTimeout,
			LocationHistoryLimit: cfg.Session.LocationHistoryLimit,
		}),
		guard: internalguard.New(counter, b.blocks, internalguard.Config{
			FailureThreshold: cfg.Guard.FailureThreshold,
			FailureWindow:    cfg.Guard.FailureWindow,
		}),
		audit: internalaudit.NewDispatcher(internalaudit.Config{
			Enabled:    cfg.Audit.Enabled,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, b.auditSink),
		metrics: NewMetrics(cfg.Metrics),
	}

	b.built = true

	return engine, nil
}
