package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/BruksfildServices01/coach-scheduler/internal/domain/booking"
)

const keyPrefix = "booking_session:"

// releaseScript deletes the lock key only when it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisStore keeps booking sessions as JSON with a sliding TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(id string) string { return keyPrefix + id }
func lockKey(id string) string    { return keyPrefix + id + ":submit" }

func (s *RedisStore) Save(ctx context.Context, st booking.State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to marshal booking session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(st.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store booking session: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, id string) (booking.State, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return booking.State{}, booking.ErrSessionNotFound
	}
	if err != nil {
		return booking.State{}, fmt.Errorf("failed to load booking session: %w", err)
	}

	var st booking.State
	if err := json.Unmarshal(data, &st); err != nil {
		return booking.State{}, fmt.Errorf("failed to parse booking session: %w", err)
	}
	return st, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKey(id), lockKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete booking session: %w", err)
	}
	return nil
}

func (s *RedisStore) AcquireSubmitLock(ctx context.Context, id, token string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, lockKey(id), token, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire submit lock: %w", err)
	}
	return ok, nil
}

func (s *RedisStore) ReleaseSubmitLock(ctx context.Context, id, token string) error {
	if err := releaseScript.Run(ctx, s.client, []string{lockKey(id)}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to release submit lock: %w", err)
	}
	return nil
}

func (s *RedisStore) SubmitLocked(ctx context.Context, id string) (bool, error) {
	n, err := s.client.Exists(ctx, lockKey(id)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

var _ booking.SessionStore = (*RedisStore)(nil)
