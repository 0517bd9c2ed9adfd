package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL is how long an undrained notice survives in Redis.
const DefaultTTL = 5 * time.Minute

// RedisQueue keeps notices next to the Redis sessions so a redirect can be
// followed up by any replica.
type RedisQueue struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisQueue(client redis.Cmdable, ttl time.Duration) *RedisQueue {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisQueue{client: client, ttl: ttl}
}

func (q *RedisQueue) Push(ctx context.Context, sessionID string, n Notice) error {
	if sessionID == "" {
		return nil
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}
	key := noticesKey(sessionID)
	if err := q.client.RPush(ctx, key, payload).Err(); err != nil {
		return fmt.Errorf("push notice: %w", err)
	}
	if err := q.client.LTrim(ctx, key, -maxPending, -1).Err(); err != nil {
		return fmt.Errorf("trim notices: %w", err)
	}
	if err := q.client.Expire(ctx, key, q.ttl).Err(); err != nil {
		return fmt.Errorf("expire notices: %w", err)
	}
	return nil
}

// Drain pops the whole list in one command, so two replicas draining the
// same session never both see a notice.
func (q *RedisQueue) Drain(ctx context.Context, sessionID string) ([]Notice, error) {
	if sessionID == "" {
		return nil, nil
	}
	raw, err := q.client.LPopCount(ctx, noticesKey(sessionID), maxPending).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("drain notices: %w", err)
	}

	notices := make([]Notice, 0, len(raw))
	for _, item := range raw {
		var n Notice
		if err := json.Unmarshal([]byte(item), &n); err != nil {
			continue
		}
		notices = append(notices, n)
	}
	return notices, nil
}

func (q *RedisQueue) Forget(ctx context.Context, sessionID string) error {
	return q.client.Del(ctx, noticesKey(sessionID)).Err()
}

func noticesKey(sessionID string) string {
	return "notices:" + sessionID
}

var _ Queue = (*RedisQueue)(nil)
