package campusgate

import (
	"context"
	"errors"

	"github.com/campusgate/campusgate/internal"
)

// RequestVerification starts the account-creation flow for email: it issues a
// six-digit verification code with a fresh TTL and hands it to the email
// sender. The subject must belong to a designated school domain and must not
// already have an account.
//
// RequestVerification may return an error when input validation, dependency calls, or security checks fail.
// RequestVerification does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) RequestVerification(ctx context.Context, email string) error {
	if e == nil || e.codeStore == nil || e.identity == nil || e.emailSender == nil {
		return ErrEngineNotReady
	}
	if email == "" {
		e.emitAudit(ctx, auditEventVerificationRequest, "", false, ErrInvalidInput, func() map[string]string {
			return map[string]string{"reason": "empty_email"}
		})
		return ErrInvalidInput
	}

	if err := e.acquireRateLimit(ctx, "verification_request", email); err != nil {
		return err
	}

	if !e.schools.IsAllowedEmail(email) {
		e.metricInc(MetricVerificationFailure)
		e.emitAudit(ctx, auditEventVerificationRequest, email, false, ErrDomainNotAllowed, nil)
		return ErrDomainNotAllowed
	}

	exists, err := e.identity.UserExistsByEmail(ctx, email)
	if err != nil {
		e.metricInc(MetricVerificationFailure)
		e.emitAudit(ctx, auditEventVerificationRequest, email, false, ErrIdentityUnavailable, nil)
		return ErrIdentityUnavailable
	}
	if exists {
		e.metricInc(MetricVerificationFailure)
		e.emitAudit(ctx, auditEventVerificationRequest, email, false, ErrAccountExists, nil)
		return ErrAccountExists
	}

	if err := e.issueCode(ctx, email, auditEventVerificationRequest); err != nil {
		return err
	}

	e.metricInc(MetricVerificationRequest)
	e.emitAudit(ctx, auditEventVerificationRequest, email, true, nil, nil)
	return nil
}

// ResendVerification overwrites the subject's verification code with a new
// value and a fresh TTL. A resend inside the cooldown window is rejected with
// [ErrResendCooldown]; on acceptance the cooldown marker is re-armed.
//
// ResendVerification may return an error when input validation, dependency calls, or security checks fail.
// ResendVerification does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ResendVerification(ctx context.Context, email string) error {
	if e == nil || e.codeStore == nil || e.emailSender == nil {
		return ErrEngineNotReady
	}
	if email == "" {
		return ErrInvalidInput
	}

	if err := e.codeStore.MarkResend(ctx, email, e.config.Verification.ResendCooldown); err != nil {
		if errors.Is(err, errResendCooldown) {
			e.metricInc(MetricResendCooldownHit)
			e.emitAudit(ctx, auditEventVerificationResend, email, false, ErrResendCooldown, nil)
			return ErrResendCooldown
		}
		return ErrStoreUnavailable
	}

	if err := e.issueCode(ctx, email, auditEventVerificationResend); err != nil {
		return err
	}

	e.metricInc(MetricVerificationResend)
	e.emitAudit(ctx, auditEventVerificationResend, email, true, nil, nil)
	return nil
}

// ConfirmVerification checks the submitted code against the stored one. On
// match the code is consumed and a hand-off token is minted and returned; the
// token authorizes exactly one terminal action (registration or password
// reset) until its TTL expires.
//
// ConfirmVerification may return an error when input validation, dependency calls, or security checks fail.
// ConfirmVerification does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ConfirmVerification(ctx context.Context, email, code string) (string, error) {
	if e == nil || e.codeStore == nil || e.handoffStore == nil {
		return "", ErrEngineNotReady
	}
	if email == "" || code == "" {
		e.metricInc(MetricVerificationFailure)
		e.emitAudit(ctx, auditEventVerificationConfirm, email, false, ErrInvalidInput, nil)
		return "", ErrInvalidInput
	}

	if err := e.codeStore.Consume(ctx, email, code); err != nil {
		mapped := mapCodeStoreError(err)
		e.metricInc(MetricVerificationFailure)
		e.emitAudit(ctx, auditEventVerificationConfirm, email, false, mapped, nil)
		return "", mapped
	}

	token, err := internal.NewHandoffToken()
	if err != nil {
		e.metricInc(MetricVerificationFailure)
		return "", ErrStoreUnavailable
	}
	if err := e.handoffStore.Save(ctx, email, token, e.config.Verification.HandoffTTL); err != nil {
		e.metricInc(MetricVerificationFailure)
		e.emitAudit(ctx, auditEventVerificationConfirm, email, false, ErrStoreUnavailable, nil)
		return "", ErrStoreUnavailable
	}

	e.metricInc(MetricVerificationSuccess)
	e.emitAudit(ctx, auditEventVerificationConfirm, email, true, nil, nil)
	return token, nil
}

// issueCode generates, stores, and mails one verification code. The code is
// stored before the mail goes out; a send failure leaves the code live so a
// later confirm with the mailed value of a retried send still works.
func (e *Engine) issueCode(ctx context.Context, email, eventType string) error {
	code, err := internal.NewVerificationCode(e.config.Verification.CodeDigits)
	if err != nil {
		return ErrStoreUnavailable
	}

	if err := e.codeStore.Save(ctx, email, code, e.config.Verification.CodeTTL); err != nil {
		e.metricInc(MetricVerificationFailure)
		e.emitAudit(ctx, eventType, email, false, ErrStoreUnavailable, nil)
		return ErrStoreUnavailable
	}

	if err := e.emailSender.SendVerificationCode(ctx, email, code); err != nil {
		e.metricInc(MetricVerificationFailure)
		e.emitAudit(ctx, eventType, email, false, ErrEmailUnavailable, nil)
		e.logger.ErrorContext(ctx, "verification email send failed",
			"email", email,
			"error", err,
		)
		return ErrEmailUnavailable
	}
	return nil
}

func mapCodeStoreError(err error) error {
	switch {
	case errors.Is(err, errCodeNotFound):
		return ErrCodeNotFound
	case errors.Is(err, errCodeMismatch):
		return ErrCodeMismatch
	default:
		return ErrStoreUnavailable
	}
}
