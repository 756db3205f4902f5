package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"trend-watch/models"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// redisClient is the subset of redis commands the store uses (for testing)
type redisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

// Store tracks active login sessions in redis. A session exists from login
// until logout or TTL expiry; a token whose session is gone is rejected even
// if its signature is still valid.
type Store struct {
	client redisClient
	ttl    time.Duration
}

// New creates a session store backed by the given redis client.
func New(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func sessionKey(id string) string {
	return "session:" + id
}

// Create registers a new session for a user and returns its id.
func (s *Store) Create(ctx context.Context, userID int64) (string, error) {
	id := uuid.NewString()

	if err := s.client.Set(ctx, sessionKey(id), userID, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	return id, nil
}

// Validate returns the user owning a session, or ErrSessionInvalid when the
// session is unknown, revoked, or expired.
func (s *Store) Validate(ctx context.Context, id string) (int64, error) {
	val, err := s.client.Get(ctx, sessionKey(id)).Result()
	if err == redis.Nil {
		return 0, models.ErrSessionInvalid
	}
	if err != nil {
		return 0, fmt.Errorf("failed to look up session: %w", err)
	}

	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, models.ErrSessionInvalid
	}

	return userID, nil
}

// Revoke ends a session. Revoking an unknown session is a no-op.
func (s *Store) Revoke(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// Health checks redis connectivity.
func (s *Store) Health(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
