package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"paperdesk/pkg/domain"
)

// DefaultVerificationTTL is how long a staged registration survives in
// the cache before the token expires.
const DefaultVerificationTTL = 3600 * time.Second

// VerificationTokenStore stages pending registrations under opaque
// tokens. Tokens are single-use: Consume removes the entry atomically.
type VerificationTokenStore interface {
	Stage(token string, reg domain.PendingRegistration, ttl time.Duration) error
	// Peek returns the staged registration without consuming the token.
	Peek(token string) (domain.PendingRegistration, bool, error)
	// Consume removes the token and returns its payload in one step, so
	// two racing completions cannot both win.
	Consume(token string) (domain.PendingRegistration, bool, error)
}

// RedisVerificationTokenStore keeps staged registrations in Redis.
// Keys are the bare token string; values are the JSON-serialized payload.
type RedisVerificationTokenStore struct {
	client *redis.Client
}

// NewRedisVerificationTokenStore connects to Redis.
func NewRedisVerificationTokenStore(addr, password string) (*RedisVerificationTokenStore, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("verification redis addr is required")
	}
	return &RedisVerificationTokenStore{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
	}, nil
}

// Stage serializes the registration and stores it under token with TTL.
func (s *RedisVerificationTokenStore) Stage(token string, reg domain.PendingRegistration, ttl time.Duration) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("verification token is required")
	}
	if ttl <= 0 {
		ttl = DefaultVerificationTTL
	}
	raw, err := json.Marshal(reg)
	if err != nil {
		return fmt.Errorf("marshal pending registration: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return s.client.Set(ctx, token, raw, ttl).Err()
}

// Peek reads the staged registration without deleting it.
func (s *RedisVerificationTokenStore) Peek(token string) (domain.PendingRegistration, bool, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.PendingRegistration{}, false, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	raw, err := s.client.Get(ctx, token).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.PendingRegistration{}, false, nil
	}
	if err != nil {
		return domain.PendingRegistration{}, false, err
	}
	return decodePendingRegistration(raw)
}

// Consume atomically reads and deletes the token via GETDEL.
func (s *RedisVerificationTokenStore) Consume(token string) (domain.PendingRegistration, bool, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.PendingRegistration{}, false, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	raw, err := s.client.GetDel(ctx, token).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.PendingRegistration{}, false, nil
	}
	if err != nil {
		return domain.PendingRegistration{}, false, err
	}
	return decodePendingRegistration(raw)
}

func decodePendingRegistration(raw []byte) (domain.PendingRegistration, bool, error) {
	var reg domain.PendingRegistration
	if err := json.Unmarshal(raw, &reg); err != nil {
		return domain.PendingRegistration{}, false, fmt.Errorf("unmarshal pending registration: %w", err)
	}
	return reg, true, nil
}
