package auth

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"reelhub/internal/models"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/blake2b"
)

const stateTTL = 10 * time.Minute

// SessionStore persists live sessions and pending login states.
type SessionStore interface {
	CreateSession(ctx context.Context, accountID string, ttl time.Duration) (*models.Session, error)
	GetSession(ctx context.Context, id string) (*models.Session, error)
	DeleteSession(ctx context.Context, id string) error
	SaveState(ctx context.Context, state, redirectURL string) error
	TakeState(ctx context.Context, state string) (string, error)
}

// RedisStore keeps sessions in Redis under hashed keys.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore returns a session store backed by rdb.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func hashedKey(prefix, id string) string {
	sum := blake2b.Sum256([]byte(id))
	return prefix + hex.EncodeToString(sum[:])
}

func sessionKey(id string) string  { return hashedKey("session:", id) }
func stateKey(state string) string { return hashedKey("oauth_state:", state) }

func (s *RedisStore) CreateSession(ctx context.Context, accountID string, ttl time.Duration) (*models.Session, error) {
	now := time.Now().UTC()
	sess := &models.Session{
		ID:        models.NewID(),
		AccountID: accountID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	b, err := json.Marshal(sess)
	if err != nil {
		return nil, err
	}
	if err := s.rdb.Set(ctx, sessionKey(sess.ID), b, ttl).Err(); err != nil {
		return nil, err
	}
	return sess, nil
}

// GetSession returns nil, nil when the session does not exist.
func (s *RedisStore) GetSession(ctx context.Context, id string) (*models.Session, error) {
	b, err := s.rdb.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var sess models.Session
	if err := json.Unmarshal(b, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *RedisStore) DeleteSession(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, sessionKey(id)).Err()
}

func (s *RedisStore) SaveState(ctx context.Context, state, redirectURL string) error {
	return s.rdb.Set(ctx, stateKey(state), redirectURL, stateTTL).Err()
}

// TakeState consumes a login state. It returns "" when the state is unknown or expired.
func (s *RedisStore) TakeState(ctx context.Context, state string) (string, error) {
	v, err := s.rdb.GetDel(ctx, stateKey(state)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return v, err
}
