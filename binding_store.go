package campusgate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const bindingKeyPrefix = "push_token:"

// pushBindingStore maps a locally-known username to its provider push address.
// Bindings are upserted whenever a client reports its address and read again
// at enqueue time; a username without a live binding is simply not reachable.
type pushBindingStore struct {
	redis *redis.Client
}

func newPushBindingStore(redisClient *redis.Client) *pushBindingStore {
	return &pushBindingStore{redis: redisClient}
}

func (s *pushBindingStore) key(username string) string {
	return bindingKeyPrefix + username
}

// Save describes the save operation and its observable behavior.
//
// Save may return an error when input validation, dependency calls, or security checks fail.
// Save does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *pushBindingStore) Save(ctx context.Context, username, pushAddress string, ttl time.Duration) error {
	if err := s.redis.Set(ctx, s.key(username), pushAddress, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", errStoreUnavailable, err)
	}
	return nil
}

// Get returns the push address bound to username, or "" with found=false when
// no live binding exists.
func (s *pushBindingStore) Get(ctx context.Context, username string) (string, bool, error) {
	addr, err := s.redis.Get(ctx, s.key(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %v", errStoreUnavailable, err)
	}
	return addr, true, nil
}
