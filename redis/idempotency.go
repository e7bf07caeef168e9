package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "idempotency:"
	// inFlightTTL bounds how long a crashed request can hold its key.
	inFlightTTL = time.Minute
)

// CachedResponse is a stored response, or a marker for a request in flight.
type CachedResponse struct {
	Pending     bool   `json:"pending,omitempty"`
	Status      int    `json:"status,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

// IdempotencyStore keeps responses keyed by request fingerprint.
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

// Load returns nil when nothing is stored under key.
func (s *IdempotencyStore) Load(ctx context.Context, key string) (*CachedResponse, error) {
	raw, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var resp CachedResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Reserve marks key as in flight. It reports false if the key is already taken.
func (s *IdempotencyStore) Reserve(ctx context.Context, key string) (bool, error) {
	marker, err := json.Marshal(CachedResponse{Pending: true})
	if err != nil {
		return false, err
	}
	return s.client.SetNX(ctx, keyPrefix+key, marker, inFlightTTL).Result()
}

func (s *IdempotencyStore) Save(ctx context.Context, key string, resp CachedResponse) error {
	raw, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, keyPrefix+key, raw, s.ttl).Err()
}

// Release drops a reservation so the request can be retried.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, keyPrefix+key).Err()
}
