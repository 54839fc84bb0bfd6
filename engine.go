package campusgate

import (
	"context"
	"log/slog"
	"time"
)

// Engine defines a public type used by campusgate APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config       Config
	logger       *slog.Logger
	codeStore    *verificationCodeStore
	handoffStore *handoffTokenStore
	bindingStore *pushBindingStore
	queue        *pushQueue
	limiter      *cooldownLimiter
	schools      *SchoolDirectory
	identity     IdentityProvider
	emailSender  EmailSender
	audit        *auditDispatcher
	metrics      *Metrics
	dispatcher   *Dispatcher
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// Dispatcher returns the push dispatcher bound to this engine's queue, or nil
// when the engine was built without a push gateway.
func (e *Engine) Dispatcher() *Dispatcher {
	if e == nil {
		return nil
	}
	return e.dispatcher
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped may return an error when input validation, dependency calls, or security checks fail.
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

// RetryAfter is the cooldown hint to surface alongside [ErrRateLimited].
func (e *Engine) RetryAfter() time.Duration {
	if e == nil || e.limiter == nil {
		return 0
	}
	return e.limiter.RetryAfter()
}

// Schools exposes the configured school directory for read-only queries.
func (e *Engine) Schools() *SchoolDirectory {
	if e == nil {
		return nil
	}
	return e.schools
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) metricAdd(id MetricID, delta uint64) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Add(id, delta)
}

func (e *Engine) emitAudit(ctx context.Context, eventType, subject string, success bool, opErr error, detail func() map[string]string) {
	if e == nil || e.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp: time.Now(),
		EventType: eventType,
		Subject:   subject,
		IP:        clientIPFromContext(ctx),
		Success:   success,
	}
	if opErr != nil {
		event.Error = opErr.Error()
	}
	if detail != nil {
		event.Metadata = detail()
	}

	e.audit.Emit(ctx, event)
}

// rateLimitKey derives the cooldown key for a protected operation: the
// subject email when present, the caller's network address otherwise.
func rateLimitKey(ctx context.Context, op, email string) string {
	if email != "" {
		return op + ":" + email
	}
	if ip := clientIPFromContext(ctx); ip != "" {
		return op + ":" + ip
	}
	return op
}

func (e *Engine) acquireRateLimit(ctx context.Context, op, email string) error {
	if e.limiter == nil {
		return nil
	}

	allowed, err := e.limiter.TryAcquire(ctx, rateLimitKey(ctx, op, email), 0)
	if err != nil {
		return ErrStoreUnavailable
	}
	if !allowed {
		e.metricInc(MetricRateLimitHit)
		e.emitAudit(ctx, auditEventRateLimit, email, false, ErrRateLimited, func() map[string]string {
			return map[string]string{"operation": op}
		})
		return ErrRateLimited
	}
	return nil
}
