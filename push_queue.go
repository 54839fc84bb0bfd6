package campusgate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// pushMessage is the JSON record carried by the queue list. PushTokens are the
// already-resolved provider addresses; identity resolution happens on the
// producer side so the dispatcher never talks to the identity provider.
type pushMessage struct {
	MessageID    string       `json:"messageId"`
	PushTokens   []string     `json:"pushTokens"`
	Notification Notification `json:"notification"`
}

// pushQueue is the producer/consumer boundary: LPUSH on enqueue, blocking pop
// with timeout on dequeue. Messages have no TTL; a popped message is gone
// whether or not dispatch succeeds (at-most-once).
type pushQueue struct {
	redis *redis.Client
	key   string
}

func newPushQueue(redisClient *redis.Client, key string) *pushQueue {
	return &pushQueue{
		redis: redisClient,
		key:   key,
	}
}

// Enqueue describes the enqueue operation and its observable behavior.
//
// Enqueue may return an error when input validation, dependency calls, or security checks fail.
// Enqueue does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (q *pushQueue) Enqueue(ctx context.Context, msg pushMessage) error {
	encoded, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	if err := q.redis.LPush(ctx, q.key, encoded).Err(); err != nil {
		return fmt.Errorf("%w: %v", errStoreUnavailable, err)
	}
	return nil
}

// PopWait blocks up to timeout for one message. An empty queue returns
// (nil, nil): the sentinel for "poll again later", never an indefinite block.
func (q *pushQueue) PopWait(ctx context.Context, timeout time.Duration) (*pushMessage, error) {
	result, err := q.redis.BLPop(ctx, timeout, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", errStoreUnavailable, err)
	}

	// BLPOP replies [key, element].
	if len(result) != 2 {
		return nil, fmt.Errorf("%w: unexpected blpop reply length %d", errStoreUnavailable, len(result))
	}

	var msg pushMessage
	if err := json.Unmarshal([]byte(result[1]), &msg); err != nil {
		return nil, fmt.Errorf("malformed queue message: %w", err)
	}
	return &msg, nil
}

// Len reports the queue depth.
func (q *pushQueue) Len(ctx context.Context) (int64, error) {
	n, err := q.redis.LLen(ctx, q.key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errStoreUnavailable, err)
	}
	return n, nil
}
