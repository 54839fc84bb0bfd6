package campusgate

import (
	"context"
	"strconv"

	"github.com/google/uuid"
)

// UpdatePushBinding upserts the push address a client reported for its user.
// The identity token is resolved to a username first; the binding expires
// after the configured TTL unless the client reports again.
//
// UpdatePushBinding may return an error when input validation, dependency calls, or security checks fail.
// UpdatePushBinding does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) UpdatePushBinding(ctx context.Context, identityToken, pushAddress string) error {
	if e == nil || e.bindingStore == nil || e.identity == nil {
		return ErrEngineNotReady
	}
	if identityToken == "" || pushAddress == "" {
		return ErrInvalidInput
	}

	username, err := e.identity.ResolveIdentityToken(ctx, identityToken)
	if err != nil {
		e.emitAudit(ctx, auditEventPushBindingUpdate, "", false, ErrIdentityUnavailable, nil)
		return ErrIdentityUnavailable
	}

	if err := e.bindingStore.Save(ctx, username, pushAddress, e.config.Push.BindingTTL); err != nil {
		e.emitAudit(ctx, auditEventPushBindingUpdate, username, false, ErrStoreUnavailable, nil)
		return ErrStoreUnavailable
	}

	e.metricInc(MetricPushBindingUpdate)
	e.emitAudit(ctx, auditEventPushBindingUpdate, username, true, nil, nil)
	return nil
}

// EnqueueNotification validates a push request, resolves each recipient
// identity token to a push-capable endpoint, and appends one consolidated
// message to the queue. Recipients that fail resolution or have no live
// binding are dropped and logged, never failing the batch; a batch with zero
// reachable recipients fails with [ErrNoValidRecipients].
//
// EnqueueNotification may return an error when input validation, dependency calls, or security checks fail.
// EnqueueNotification does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) EnqueueNotification(ctx context.Context, recipientIdentities []string, notification Notification) (EnqueueResult, error) {
	if e == nil || e.bindingStore == nil || e.queue == nil || e.identity == nil {
		return EnqueueResult{}, ErrEngineNotReady
	}
	if len(recipientIdentities) == 0 {
		e.metricInc(MetricPushEnqueueRejected)
		return EnqueueResult{}, ErrInvalidInput
	}
	if notification.Title == "" || notification.Body == "" {
		e.metricInc(MetricPushEnqueueRejected)
		return EnqueueResult{}, ErrInvalidInput
	}

	pushTokens := make([]string, 0, len(recipientIdentities))
	for _, identityToken := range recipientIdentities {
		username, err := e.identity.ResolveIdentityToken(ctx, identityToken)
		if err != nil {
			// Individual resolution failures are swallowed: log and drop.
			e.logger.WarnContext(ctx, "recipient identity resolution failed, dropping recipient",
				"error", err,
			)
			continue
		}

		address, found, err := e.bindingStore.Get(ctx, username)
		if err != nil {
			return EnqueueResult{}, ErrStoreUnavailable
		}
		if !found {
			e.logger.DebugContext(ctx, "recipient has no push binding, dropping",
				"username", username,
			)
			continue
		}
		pushTokens = append(pushTokens, address)
	}

	if len(pushTokens) == 0 {
		e.metricInc(MetricPushEnqueueRejected)
		e.emitAudit(ctx, auditEventPushEnqueue, "", false, ErrNoValidRecipients, nil)
		return EnqueueResult{}, ErrNoValidRecipients
	}

	msg := pushMessage{
		MessageID:    uuid.NewString(),
		PushTokens:   pushTokens,
		Notification: notification,
	}
	if err := e.queue.Enqueue(ctx, msg); err != nil {
		e.emitAudit(ctx, auditEventPushEnqueue, "", false, ErrStoreUnavailable, nil)
		return EnqueueResult{}, ErrStoreUnavailable
	}

	e.metricAdd(MetricPushEnqueued, uint64(len(pushTokens)))
	e.emitAudit(ctx, auditEventPushEnqueue, "", true, nil, func() map[string]string {
		return map[string]string{
			"message_id": msg.MessageID,
			"recipients": strconv.Itoa(len(pushTokens)),
		}
	})
	return EnqueueResult{
		MessageID:   msg.MessageID,
		QueuedCount: len(pushTokens),
	}, nil
}
