package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/SivaTeja36/Bus-reservation/config"
	"github.com/SivaTeja36/Bus-reservation/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps web console sessions in Redis so they survive console
// restarts and are shared between console replicas.
type RedisStore struct {
	client     redis.Cmdable
	defaultTTL time.Duration
	now        func() time.Time
}

// NewRedisClient connects to the Redis that holds sessions and the
// notices queued against them.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
}

func NewRedisStore(cfg config.RedisConfig, defaultTTL time.Duration) *RedisStore {
	return NewRedisStoreWithClient(NewRedisClient(cfg), defaultTTL)
}

func NewRedisStoreWithClient(client redis.Cmdable, defaultTTL time.Duration) *RedisStore {
	return &RedisStore{client: client, defaultTTL: defaultTTL, now: time.Now}
}

func (r *RedisStore) Load(ctx context.Context, id string) (*domain.Session, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	var s domain.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

// Save writes the session with a TTL matching the token's remaining
// lifetime, falling back to the configured default.
func (r *RedisStore) Save(ctx context.Context, id string, s *domain.Session) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, sessionKey(id), payload, r.ttlFor(s)).Err()
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, sessionKey(id)).Err()
}

func (r *RedisStore) ttlFor(s *domain.Session) time.Duration {
	if s.ExpiresAt != nil {
		if remaining := s.ExpiresAt.Sub(r.now()); remaining > 0 {
			return remaining
		}
		return time.Second
	}
	return r.defaultTTL
}

func sessionKey(id string) string {
	return "session:" + id
}

var _ Store = (*RedisStore)(nil)
