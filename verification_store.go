package campusgate

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const resendMarkerPrefix = "resend:"

var (
	errCodeNotFound     = errors.New("verification code not found")
	errCodeMismatch     = errors.New("verification code mismatch")
	errResendCooldown   = errors.New("resend cooldown active")
	errStoreUnavailable = errors.New("ephemeral store unavailable")
)

// verificationCodeStore keeps one live verification code per subject. The key
// is the bare email address; writes overwrite, they never append.
type verificationCodeStore struct {
	redis *redis.Client
}

func newVerificationCodeStore(redisClient *redis.Client) *verificationCodeStore {
	return &verificationCodeStore{redis: redisClient}
}

func (s *verificationCodeStore) key(email string) string {
	return email
}

func (s *verificationCodeStore) resendKey(email string) string {
	return resendMarkerPrefix + email
}

// Save describes the save operation and its observable behavior.
//
// Save may return an error when input validation, dependency calls, or security checks fail.
// Save does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *verificationCodeStore) Save(ctx context.Context, email, code string, ttl time.Duration) error {
	if err := s.redis.Set(ctx, s.key(email), code, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", errStoreUnavailable, err)
	}
	return nil
}

// Consume performs the read-before-delete check of a submitted code. On match
// the stored code is deleted (single use). On mismatch the stored code is left
// intact so the subject can retry with the correct value until TTL expiry.
//
// A concurrent caller racing between the read and the delete can also pass the
// equality check. That window is accepted, not locked away.
func (s *verificationCodeStore) Consume(ctx context.Context, email, submitted string) error {
	stored, err := s.redis.Get(ctx, s.key(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return errCodeNotFound
		}
		return fmt.Errorf("%w: %v", errStoreUnavailable, err)
	}

	// Exact string equality, no normalization.
	if subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) != 1 {
		return errCodeMismatch
	}

	if err := s.redis.Del(ctx, s.key(email)).Err(); err != nil {
		return fmt.Errorf("%w: %v", errStoreUnavailable, err)
	}
	return nil
}

// MarkResend sets the resend cooldown marker when absent. When a live marker
// exists the resend is rejected; the marker value itself carries no meaning.
func (s *verificationCodeStore) MarkResend(ctx context.Context, email string, cooldown time.Duration) error {
	set, err := s.redis.SetNX(ctx, s.resendKey(email), "wait", cooldown).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", errStoreUnavailable, err)
	}
	if !set {
		return errResendCooldown
	}
	return nil
}
