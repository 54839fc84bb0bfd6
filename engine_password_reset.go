package campusgate

import "context"

// ResetPassword redeems a hand-off token for credential recovery. The subject
// must have an existing account; the token is burned only after the identity
// provider accepted the new password, so a transient upstream failure leaves
// the token redeemable for a retry.
//
// ResetPassword may return an error when input validation, dependency calls, or security checks fail.
// ResetPassword does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ResetPassword(ctx context.Context, email, handoffToken, newPassword string) error {
	if e == nil || e.handoffStore == nil || e.identity == nil {
		return ErrEngineNotReady
	}
	if email == "" || handoffToken == "" || newPassword == "" {
		e.emitAudit(ctx, auditEventPasswordReset, email, false, ErrInvalidInput, nil)
		return ErrInvalidInput
	}

	if err := e.handoffStore.Check(ctx, email, handoffToken); err != nil {
		mapped := mapHandoffStoreError(err)
		e.metricInc(MetricPasswordResetFailure)
		e.emitAudit(ctx, auditEventPasswordReset, email, false, mapped, nil)
		return mapped
	}

	exists, err := e.identity.UserExistsByEmail(ctx, email)
	if err != nil {
		e.metricInc(MetricPasswordResetFailure)
		e.emitAudit(ctx, auditEventPasswordReset, email, false, ErrIdentityUnavailable, nil)
		return ErrIdentityUnavailable
	}
	if !exists {
		e.metricInc(MetricPasswordResetFailure)
		e.emitAudit(ctx, auditEventPasswordReset, email, false, ErrAccountNotFound, nil)
		return ErrAccountNotFound
	}

	if err := checkPasswordPolicy(newPassword); err != nil {
		e.metricInc(MetricPasswordResetFailure)
		e.emitAudit(ctx, auditEventPasswordReset, email, false, err, func() map[string]string {
			return map[string]string{"reason": "password_policy"}
		})
		return err
	}

	if err := e.identity.ResetPassword(ctx, email, newPassword); err != nil {
		// Token deliberately kept alive for retry.
		e.metricInc(MetricPasswordResetFailure)
		e.emitAudit(ctx, auditEventPasswordReset, email, false, ErrIdentityUnavailable, func() map[string]string {
			return map[string]string{"reason": "identity_reset_failed"}
		})
		e.logger.ErrorContext(ctx, "password reset failed, handoff token preserved",
			"email", email,
			"error", err,
		)
		return ErrIdentityUnavailable
	}

	if err := e.handoffStore.Burn(ctx, email); err != nil {
		e.logger.WarnContext(ctx, "handoff token delete failed after password reset",
			"email", email,
			"error", err,
		)
	}

	e.metricInc(MetricPasswordResetSuccess)
	e.emitAudit(ctx, auditEventPasswordReset, email, true, nil, nil)
	return nil
}
