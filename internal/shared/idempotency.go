package shared

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// IdempotencyStore claims request keys so a retried checkout runs once.
type IdempotencyStore interface {
	// Claim reserves key for module. A key already claimed returns
	// ErrIdempotencyConflict.
	Claim(ctx context.Context, key, module string) error
	// Complete attaches the produced result reference to a claimed key.
	Complete(ctx context.Context, key, module, result string) error
	// Result returns the reference stored by Complete, or "" while the
	// original request is still running.
	Result(ctx context.Context, key, module string) (string, error)
	// Release drops a claim, typically after failed processing.
	Release(ctx context.Context, key, module string) error
}

const pendingMarker = "pending"

func checkKey(key, module string) error {
	if key == "" {
		return errors.New("idempotency key required")
	}
	if module == "" {
		return errors.New("idempotency module required")
	}
	return nil
}

// RedisIdempotencyStore keeps claims in Redis with a retention TTL.
type RedisIdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisIdempotencyStore constructs the store.
func NewRedisIdempotencyStore(client *redis.Client, ttl time.Duration) *RedisIdempotencyStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisIdempotencyStore{client: client, ttl: ttl}
}

func idempotencyKey(key, module string) string {
	return "shopledger:idem:" + module + ":" + key
}

// Claim implements IdempotencyStore.
func (s *RedisIdempotencyStore) Claim(ctx context.Context, key, module string) error {
	if err := checkKey(key, module); err != nil {
		return err
	}
	ok, err := s.client.SetNX(ctx, idempotencyKey(key, module), pendingMarker, s.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrIdempotencyConflict
	}
	return nil
}

// Complete implements IdempotencyStore.
func (s *RedisIdempotencyStore) Complete(ctx context.Context, key, module, result string) error {
	if err := checkKey(key, module); err != nil {
		return err
	}
	return s.client.Set(ctx, idempotencyKey(key, module), result, s.ttl).Err()
}

// Result implements IdempotencyStore.
func (s *RedisIdempotencyStore) Result(ctx context.Context, key, module string) (string, error) {
	if err := checkKey(key, module); err != nil {
		return "", err
	}
	v, err := s.client.Get(ctx, idempotencyKey(key, module)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if v == pendingMarker {
		return "", nil
	}
	return v, nil
}

// Release implements IdempotencyStore.
func (s *RedisIdempotencyStore) Release(ctx context.Context, key, module string) error {
	if err := checkKey(key, module); err != nil {
		return err
	}
	return s.client.Del(ctx, idempotencyKey(key, module)).Err()
}

// MemoryIdempotencyStore is the in-process store used without Redis.
type MemoryIdempotencyStore struct {
	mu   sync.Mutex
	keys map[string]string
}

// NewMemoryIdempotencyStore constructs an empty store.
func NewMemoryIdempotencyStore() *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{keys: make(map[string]string)}
}

// Claim implements IdempotencyStore.
func (s *MemoryIdempotencyStore) Claim(_ context.Context, key, module string) error {
	if err := checkKey(key, module); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	k := idempotencyKey(key, module)
	if _, ok := s.keys[k]; ok {
		return ErrIdempotencyConflict
	}
	s.keys[k] = pendingMarker
	return nil
}

// Complete implements IdempotencyStore.
func (s *MemoryIdempotencyStore) Complete(_ context.Context, key, module, result string) error {
	if err := checkKey(key, module); err != nil {
		return err
	}
	s.mu.Lock()
	s.keys[idempotencyKey(key, module)] = result
	s.mu.Unlock()
	return nil
}

// Result implements IdempotencyStore.
func (s *MemoryIdempotencyStore) Result(_ context.Context, key, module string) (string, error) {
	if err := checkKey(key, module); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.keys[idempotencyKey(key, module)]
	if !ok {
		return "", ErrNotFound
	}
	if v == pendingMarker {
		return "", nil
	}
	return v, nil
}

// Release implements IdempotencyStore.
func (s *MemoryIdempotencyStore) Release(_ context.Context, key, module string) error {
	if err := checkKey(key, module); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.keys, idempotencyKey(key, module))
	s.mu.Unlock()
	return nil
}
