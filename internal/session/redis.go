package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/sakif/aptx/internal/model"
)

var _ Store = (*RedisStore)(nil)

const redisKeyPrefix = "session:"

// RedisStore keeps sessions in Redis as JSON-encoded users under
// "session:<token>". Keys carry no TTL, matching MemoryStore's
// "valid until logout" lifetime.
type RedisStore struct {
	client   *redis.Client
	newToken func() (string, error)
}

// NewRedisStore connects using a redis:// URL and pings the server so a bad
// address fails at startup instead of on the first login.
func NewRedisStore(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("session: parsing redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("session: pinging redis: %w", err)
	}

	return &RedisStore{client: client, newToken: NewToken}, nil
}

// Create stores the user with SETNX, so an (improbable) token collision
// is detected by Redis rather than silently overwriting another session.
func (s *RedisStore) Create(ctx context.Context, user model.User) (string, error) {
	payload, err := json.Marshal(user)
	if err != nil {
		return "", fmt.Errorf("session: encoding user: %w", err)
	}

	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		token, err := s.newToken()
		if err != nil {
			return "", err
		}
		ok, err := s.client.SetNX(ctx, redisKeyPrefix+token, payload, 0).Result()
		if err != nil {
			return "", fmt.Errorf("session: storing session: %w", err)
		}
		if ok {
			return token, nil
		}
	}
	return "", errors.New("session: could not generate a unique token")
}

func (s *RedisStore) Resolve(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, ErrNoSession
	}

	payload, err := s.client.Get(ctx, redisKeyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("session: loading session: %w", err)
	}

	var user model.User
	if err := json.Unmarshal(payload, &user); err != nil {
		return nil, fmt.Errorf("session: decoding session: %w", err)
	}
	return &user, nil
}

func (s *RedisStore) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.client.Del(ctx, redisKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("session: deleting session: %w", err)
	}
	return nil
}

// Close releases the Redis connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
