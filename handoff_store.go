package campusgate

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const handoffKeySuffix = "-emailVerifiedToken"

var (
	errTokenNotFound = errors.New("handoff token not found")
	errTokenMismatch = errors.New("handoff token mismatch")
)

// handoffTokenStore keeps the opaque token proving a subject already completed
// code verification. One live token per subject; minted by ConfirmVerification
// and burned by the terminal action that redeems it.
type handoffTokenStore struct {
	redis *redis.Client
}

func newHandoffTokenStore(redisClient *redis.Client) *handoffTokenStore {
	return &handoffTokenStore{redis: redisClient}
}

func (s *handoffTokenStore) key(email string) string {
	return email + handoffKeySuffix
}

// Save describes the save operation and its observable behavior.
//
// Save may return an error when input validation, dependency calls, or security checks fail.
// Save does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *handoffTokenStore) Save(ctx context.Context, email, token string, ttl time.Duration) error {
	if err := s.redis.Set(ctx, s.key(email), token, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", errStoreUnavailable, err)
	}
	return nil
}

// Check verifies the submitted token against the stored one without deleting
// it. The terminal action runs between Check and Burn; on upstream failure the
// token survives so the caller can retry until TTL expiry.
func (s *handoffTokenStore) Check(ctx context.Context, email, submitted string) error {
	stored, err := s.redis.Get(ctx, s.key(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return errTokenNotFound
		}
		return fmt.Errorf("%w: %v", errStoreUnavailable, err)
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) != 1 {
		return errTokenMismatch
	}
	return nil
}

// Burn deletes the token after the terminal action succeeded.
func (s *handoffTokenStore) Burn(ctx context.Context, email string) error {
	if err := s.redis.Del(ctx, s.key(email)).Err(); err != nil {
		return fmt.Errorf("%w: %v", errStoreUnavailable, err)
	}
	return nil
}
