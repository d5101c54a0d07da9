package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store keeps live sessions in Redis, keyed by the JWT's jti claim. A token
// whose jti is missing from the store has been revoked or has expired.
type Store struct {
	rdb *redis.Client
}

// NewStore creates a session store over an existing Redis client
func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func sessionKey(jti string) string {
	return fmt.Sprintf("session:%s", jti)
}

// Save registers a session for the token's lifetime
func (s *Store) Save(ctx context.Context, jti string, userID uint, ttl time.Duration) error {
	return s.rdb.Set(ctx, sessionKey(jti), userID, ttl).Err()
}

// Valid reports whether the session is still live
func (s *Store) Valid(ctx context.Context, jti string) (bool, error) {
	_, err := s.rdb.Get(ctx, sessionKey(jti)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Revoke removes the session (logout)
func (s *Store) Revoke(ctx context.Context, jti string) error {
	return s.rdb.Del(ctx, sessionKey(jti)).Err()
}
