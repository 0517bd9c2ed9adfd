package session

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/SivaTeja36/Bus-reservation/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRedis overrides the three commands RedisStore uses.
type MockRedis struct {
	redis.Cmdable
	mock.Mock
}

func (m *MockRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	args := m.Called(ctx, key)
	return redis.NewStringResult(args.String(0), args.Error(1))
}

func (m *MockRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	args := m.Called(ctx, key, value, expiration)
	return redis.NewStatusResult("OK", args.Error(0))
}

func (m *MockRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	args := m.Called(ctx, keys)
	return redis.NewIntResult(int64(len(keys)), args.Error(0))
}

func TestRedisStore_LoadMissIsNotFound(t *testing.T) {
	ctx := context.Background()
	client := &MockRedis{}
	client.On("Get", ctx, "session:s1").Return("", redis.Nil).Once()

	_, err := NewRedisStoreWithClient(client, time.Hour).Load(ctx, "s1")

	assert.ErrorIs(t, err, ErrNotFound)
	client.AssertExpectations(t)
}

func TestRedisStore_LoadDecodes(t *testing.T) {
	ctx := context.Background()
	u := superAdmin
	payload, err := json.Marshal(domain.Session{Token: "T", User: &u})
	require.NoError(t, err)

	client := &MockRedis{}
	client.On("Get", ctx, "session:s1").Return(string(payload), nil).Once()

	s, err := NewRedisStoreWithClient(client, time.Hour).Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "T", s.Token)
	assert.Equal(t, "a@b.com", s.User.Email)
}

func TestRedisStore_SaveUsesTokenLifetime(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	exp := now.Add(30 * time.Minute)
	u := superAdmin

	client := &MockRedis{}
	client.On("Set", ctx, "session:s1", mock.Anything, 30*time.Minute).Return(nil).Once()

	store := NewRedisStoreWithClient(client, 24*time.Hour)
	store.now = func() time.Time { return now }
	require.NoError(t, store.Save(ctx, "s1", &domain.Session{Token: "T", User: &u, ExpiresAt: &exp}))

	client.AssertExpectations(t)
}

func TestRedisStore_SaveFallsBackToDefaultTTL(t *testing.T) {
	ctx := context.Background()
	u := superAdmin

	client := &MockRedis{}
	client.On("Set", ctx, "session:s1", mock.Anything, 24*time.Hour).Return(nil).Once()

	require.NoError(t, NewRedisStoreWithClient(client, 24*time.Hour).Save(ctx, "s1", &domain.Session{Token: "T", User: &u}))
	client.AssertExpectations(t)
}

func TestRedisStore_Delete(t *testing.T) {
	ctx := context.Background()
	client := &MockRedis{}
	client.On("Del", ctx, []string{"session:s1"}).Return(nil).Once()

	require.NoError(t, NewRedisStoreWithClient(client, time.Hour).Delete(ctx, "s1"))
	client.AssertExpectations(t)
}
