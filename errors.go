package campusgate

import "errors"

var (
	// ErrInvalidInput is an exported constant or variable used by the verification engine.
	ErrInvalidInput = errors.New("invalid input")
	// ErrDomainNotAllowed is an exported constant or variable used by the verification engine.
	ErrDomainNotAllowed = errors.New("email is not from a designated school domain")
	// ErrAccountExists is an exported constant or variable used by the verification engine.
	ErrAccountExists = errors.New("account already exists for this email")
	// ErrAccountNotFound is an exported constant or variable used by the verification engine.
	ErrAccountNotFound = errors.New("no account exists for this email")
	// ErrCodeNotFound is an exported constant or variable used by the verification engine.
	ErrCodeNotFound = errors.New("verification code not found or expired")
	// ErrCodeMismatch is an exported constant or variable used by the verification engine.
	ErrCodeMismatch = errors.New("verification code mismatch")
	// ErrTokenNotFound is an exported constant or variable used by the verification engine.
	ErrTokenNotFound = errors.New("handoff token not found or expired")
	// ErrTokenMismatch is an exported constant or variable used by the verification engine.
	ErrTokenMismatch = errors.New("handoff token mismatch")
	// ErrResendCooldown is an exported constant or variable used by the verification engine.
	ErrResendCooldown = errors.New("resend cooldown active")
	// ErrRateLimited is an exported constant or variable used by the verification engine.
	ErrRateLimited = errors.New("rate limited")
	// ErrPasswordPolicy is an exported constant or variable used by the verification engine.
	ErrPasswordPolicy = errors.New("password policy violation")
	// ErrNoValidRecipients is an exported constant or variable used by the push pipeline.
	ErrNoValidRecipients = errors.New("no valid push recipients")
	// ErrIdentityUnavailable is an exported constant or variable used by the verification engine.
	ErrIdentityUnavailable = errors.New("identity provider unavailable")
	// ErrEmailUnavailable is an exported constant or variable used by the verification engine.
	ErrEmailUnavailable = errors.New("email sender unavailable")
	// ErrStoreUnavailable is an exported constant or variable used by the verification engine.
	ErrStoreUnavailable = errors.New("ephemeral store unavailable")
	// ErrEngineNotReady is an exported constant or variable used by the verification engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)
