package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable is returned when the backing Redis cannot be reached.
var ErrRedisUnavailable = errors.New("session redis unavailable")

// Sessions are retained past their logical expiry so an expired session stays
// reportable as expired rather than unknown. Redis reclaims the key after the
// margin.
const retentionMargin = time.Hour

// RedisStore keeps sessions as JSON blobs under the token hash, with a Redis
// set per user as the ownership index.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisStore returns a session store using the given client. prefix
// namespaces the keys; it defaults to "as" when empty.
func NewRedisStore(redisClient redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "as"
	}
	return &RedisStore{redis: redisClient, prefix: prefix}
}

func (s *RedisStore) key(tokenHash string) string {
	return s.prefix + ":s:" + tokenHash
}

func (s *RedisStore) userKey(userID string) string {
	return s.prefix + ":u:" + userID
}

// Save inserts the session and indexes it under its owner.
func (s *RedisStore) Save(ctx context.Context, sess *Session) error {
	encoded, err := json.Marshal(sess)
	if err != nil {
		return err
	}

	ttl := time.Until(time.Unix(sess.ExpiresAt, 0)) + retentionMargin
	if ttl <= 0 {
		ttl = retentionMargin
	}

	pipe := s.redis.TxPipeline()
	pipe.Set(ctx, s.key(sess.TokenHash), encoded, ttl)
	pipe.SAdd(ctx, s.userKey(sess.UserID), sess.TokenHash)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// GetByToken returns the session keyed by the token hash.
func (s *RedisStore) GetByToken(ctx context.Context, tokenHash string) (*Session, error) {
	data, err := s.redis.Get(ctx, s.key(tokenHash)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, ErrNotFound
	}
	return &sess, nil
}

// DeleteByToken removes the session and its index entry. Removing an absent
// session is not an error.
func (s *RedisStore) DeleteByToken(ctx context.Context, tokenHash string) error {
	sess, err := s.GetByToken(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}

	pipe := s.redis.TxPipeline()
	pipe.Del(ctx, s.key(tokenHash))
	pipe.SRem(ctx, s.userKey(sess.UserID), tokenHash)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// ListByUser returns every indexed session owned by the user. Index entries
// whose session key has been reclaimed are dropped from the index on the way.
func (s *RedisStore) ListByUser(ctx context.Context, userID string) ([]*Session, error) {
	hashes, err := s.redis.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	out := make([]*Session, 0, len(hashes))
	for _, tokenHash := range hashes {
		sess, err := s.GetByToken(ctx, tokenHash)
		if errors.Is(err, ErrNotFound) {
			_ = s.redis.SRem(ctx, s.userKey(userID), tokenHash).Err()
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, nil
}

// DeleteByUser removes every session owned by the user and the index itself,
// reporting how many sessions were removed.
func (s *RedisStore) DeleteByUser(ctx context.Context, userID string) (int, error) {
	hashes, err := s.redis.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	pipe := s.redis.TxPipeline()
	for _, tokenHash := range hashes {
		pipe.Del(ctx, s.key(tokenHash))
	}
	pipe.Del(ctx, s.userKey(userID))
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return len(hashes), nil
}
