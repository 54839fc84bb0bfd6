package campusgate

import (
	"context"
	"errors"
)

// CompleteRegistration redeems a hand-off token for account creation: the
// token must match the stored one, the password must satisfy the pool policy,
// and the identity provider performs the create. The token is burned only
// after the create succeeded; an upstream failure preserves it so the caller
// can retry until TTL expiry.
//
// CompleteRegistration may return an error when input validation, dependency calls, or security checks fail.
// CompleteRegistration does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) CompleteRegistration(ctx context.Context, email, handoffToken, password string) (AuthResult, error) {
	if e == nil || e.handoffStore == nil || e.identity == nil {
		return AuthResult{}, ErrEngineNotReady
	}
	if email == "" || handoffToken == "" || password == "" {
		e.emitAudit(ctx, auditEventRegistration, email, false, ErrInvalidInput, nil)
		return AuthResult{}, ErrInvalidInput
	}

	if err := e.handoffStore.Check(ctx, email, handoffToken); err != nil {
		mapped := mapHandoffStoreError(err)
		e.metricInc(MetricRegistrationFailure)
		e.emitAudit(ctx, auditEventRegistration, email, false, mapped, nil)
		return AuthResult{}, mapped
	}

	if err := checkPasswordPolicy(password); err != nil {
		e.metricInc(MetricRegistrationFailure)
		e.emitAudit(ctx, auditEventRegistration, email, false, err, func() map[string]string {
			return map[string]string{"reason": "password_policy"}
		})
		return AuthResult{}, err
	}

	result, err := e.identity.CreateUser(ctx, email, password)
	if err != nil {
		// Token deliberately kept alive for retry.
		e.metricInc(MetricRegistrationFailure)
		e.emitAudit(ctx, auditEventRegistration, email, false, ErrIdentityUnavailable, func() map[string]string {
			return map[string]string{"reason": "identity_create_failed"}
		})
		e.logger.ErrorContext(ctx, "user creation failed, handoff token preserved",
			"email", email,
			"error", err,
		)
		return AuthResult{}, ErrIdentityUnavailable
	}

	if err := e.handoffStore.Burn(ctx, email); err != nil {
		// The account exists; a stale token only allows a redundant retry
		// until its TTL runs out.
		e.logger.WarnContext(ctx, "handoff token delete failed after registration",
			"email", email,
			"error", err,
		)
	}

	e.metricInc(MetricRegistrationSuccess)
	e.emitAudit(ctx, auditEventRegistration, email, true, nil, nil)
	return result, nil
}

func mapHandoffStoreError(err error) error {
	switch {
	case errors.Is(err, errTokenNotFound):
		return ErrTokenNotFound
	case errors.Is(err, errTokenMismatch):
		return ErrTokenMismatch
	default:
		return ErrStoreUnavailable
	}
}
