package campusgate

import (
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// Builder defines a public type used by campusgate APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  *redis.Client

	schools     *SchoolDirectory
	identity    IdentityProvider
	emailSender EmailSender
	gateway     PushGateway
	auditSink   AuditSink
	logger      *slog.Logger

	built bool
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig may return an error when input validation, dependency calls, or security checks fail.
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis injects the shared ephemeral store client. The client's lifetime
// is the process, not a hidden package-level global; tests substitute a
// miniredis-backed client here.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithSchools describes the withschools operation and its observable behavior.
//
// WithSchools may return an error when input validation, dependency calls, or security checks fail.
// WithSchools does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithSchools(directory *SchoolDirectory) *Builder {
	b.schools = directory
	return b
}

// WithIdentity describes the withidentity operation and its observable behavior.
//
// WithIdentity may return an error when input validation, dependency calls, or security checks fail.
// WithIdentity does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithIdentity(provider IdentityProvider) *Builder {
	b.identity = provider
	return b
}

// WithEmailSender describes the withemailsender operation and its observable behavior.
//
// WithEmailSender may return an error when input validation, dependency calls, or security checks fail.
// WithEmailSender does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithEmailSender(sender EmailSender) *Builder {
	b.emailSender = sender
	return b
}

// WithPushGateway describes the withpushgateway operation and its observable behavior.
//
// WithPushGateway may return an error when input validation, dependency calls, or security checks fail.
// WithPushGateway does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithPushGateway(gateway PushGateway) *Builder {
	b.gateway = gateway
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink may return an error when input validation, dependency calls, or security checks fail.
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger describes the withlogger operation and its observable behavior.
//
// WithLogger may return an error when input validation, dependency calls, or security checks fail.
// WithLogger does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.identity == nil {
		return nil, errors.New("identity provider required")
	}
	if b.emailSender == nil {
		return nil, errors.New("email sender required")
	}
	if b.schools == nil {
		return nil, errors.New("school directory required")
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	engine := &Engine{
		config:       cfg,
		logger:       logger,
		codeStore:    newVerificationCodeStore(b.redis),
		handoffStore: newHandoffTokenStore(b.redis),
		bindingStore: newPushBindingStore(b.redis),
		queue:        newPushQueue(b.redis, cfg.Push.QueueKey),
		limiter:      newCooldownLimiter(b.redis, cfg.RateLimit),
		schools:      b.schools,
		identity:     b.identity,
		emailSender:  b.emailSender,
		audit:        newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics:      NewMetrics(cfg.Metrics),
	}

	if b.gateway != nil {
		engine.dispatcher = newDispatcher(engine, b.gateway)
	}

	b.built = true

	return engine, nil
}
