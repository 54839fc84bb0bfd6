package campusgate

import (
	"errors"
	"time"
)

// Config defines a public type used by campusgate APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Verification VerificationConfig
	RateLimit    RateLimitConfig
	Push         PushConfig
	Audit        AuditConfig
	Metrics      MetricsConfig
}

/*
====================================
VERIFICATION CONFIG
====================================
*/

// VerificationConfig defines a public type used by campusgate APIs.
//
// VerificationConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type VerificationConfig struct {
	// CodeTTL bounds the life of a verification code from issue to check.
	CodeTTL time.Duration
	// HandoffTTL bounds the life of a hand-off token from mint to redemption.
	HandoffTTL time.Duration
	// ResendCooldown blocks a second resend for the same subject until it
	// elapses.
	ResendCooldown time.Duration
	// CodeDigits is the verification code width. The wire format is a decimal
	// string with no leading zero, so 6 means [100000, 999999].
	CodeDigits int
}

/*
====================================
RATE LIMIT CONFIG
====================================
*/

// RateLimitConfig defines a public type used by campusgate APIs.
//
// RateLimitConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RateLimitConfig struct {
	// Enabled opts protected operations into the cooldown gate.
	Enabled bool
	// Cooldown is the marker TTL. A second acquire for the same key inside
	// this window is rejected with a retry-after hint equal to the cooldown.
	Cooldown time.Duration
}

/*
====================================
PUSH CONFIG
====================================
*/

// PushConfig defines a public type used by campusgate APIs.
//
// PushConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PushConfig struct {
	// QueueKey is the Redis list the producer appends to and the dispatcher
	// drains.
	QueueKey string
	// ChunkSize is the provider batch limit per request.
	ChunkSize int
	// PopTimeout bounds one blocking dequeue. An empty queue yields an empty
	// report after this long, never an indefinite block.
	PopTimeout time.Duration
	// BindingTTL is the life of a push recipient binding between client
	// refreshes.
	BindingTTL time.Duration
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig defines a public type used by campusgate APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull drops events instead of blocking the caller when the buffer
	// is saturated.
	DropIfFull bool
}

// MetricsConfig defines a public type used by campusgate APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled bool
}

const (
	defaultCodeTTL        = 900 * time.Second
	defaultHandoffTTL     = 3600 * time.Second
	defaultResendCooldown = 30 * time.Second
	defaultRateCooldown   = 15 * time.Second
	defaultQueueKey       = "push_notification_queue"
	defaultChunkSize      = 100
	defaultPopTimeout     = 20 * time.Second
	defaultBindingTTL     = 24 * time.Hour
)

func defaultConfig() Config {
	return Config{
		Verification: VerificationConfig{
			CodeTTL:        defaultCodeTTL,
			HandoffTTL:     defaultHandoffTTL,
			ResendCooldown: defaultResendCooldown,
			CodeDigits:     6,
		},
		RateLimit: RateLimitConfig{
			Enabled:  true,
			Cooldown: defaultRateCooldown,
		},
		Push: PushConfig{
			QueueKey:   defaultQueueKey,
			ChunkSize:  defaultChunkSize,
			PopTimeout: defaultPopTimeout,
			BindingTTL: defaultBindingTTL,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	// All sections are value types; a shallow copy is a deep copy.
	return cfg
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c Config) Validate() error {
	if c.Verification.CodeTTL <= 0 {
		return errors.New("Verification CodeTTL must be positive")
	}
	if c.Verification.HandoffTTL <= 0 {
		return errors.New("Verification HandoffTTL must be positive")
	}
	if c.Verification.ResendCooldown <= 0 {
		return errors.New("Verification ResendCooldown must be positive")
	}
	if c.Verification.CodeDigits < 6 || c.Verification.CodeDigits > 10 {
		return errors.New("Verification CodeDigits must be between 6 and 10")
	}
	if c.RateLimit.Enabled && c.RateLimit.Cooldown <= 0 {
		return errors.New("RateLimit Cooldown must be positive when enabled")
	}
	if c.Push.QueueKey == "" {
		return errors.New("Push QueueKey must not be empty")
	}
	if c.Push.ChunkSize <= 0 {
		return errors.New("Push ChunkSize must be positive")
	}
	if c.Push.PopTimeout <= 0 {
		return errors.New("Push PopTimeout must be positive")
	}
	if c.Push.BindingTTL <= 0 {
		return errors.New("Push BindingTTL must be positive")
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be positive when enabled")
	}
	return nil
}
