package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/hello/pkg/ports"
	"github.com/gorilla/securecookie"
	backend "github.com/redis/go-redis/v9"
)

// ErrKeyVanished is returned when a key disappears between creation and read.
var ErrKeyVanished = errors.New("key removed while loading")

// KeyStore implements ports.KeyStore using Redis.
// Keys are stored without expiration so that every replica keeps
// validating tokens signed by the others.
type KeyStore struct {
	client *backend.Client
	prefix string
}

// Option configures a KeyStore.
type Option func(*KeyStore)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *KeyStore) {
		s.prefix = prefix
	}
}

// New creates a new Redis key store with options.
func New(address, password string, db int, opts ...Option) *KeyStore {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis key store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *KeyStore {
	store := &KeyStore{
		client: client,
		prefix: "hello:",
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

func (s *KeyStore) key(name string) string {
	return s.prefix + "key:" + name
}

// Ping checks connectivity.
func (s *KeyStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// LoadOrCreate stores a random key with SET NX and then reads back whichever
// value won, so concurrent replicas converge on one key.
func (s *KeyStore) LoadOrCreate(ctx context.Context, name string, size int) ([]byte, error) {
	if name == "" {
		return nil, ports.ErrKeyName
	}

	candidate := securecookie.GenerateRandomKey(size)
	if candidate == nil {
		return nil, fmt.Errorf("failed to generate random key of %d bytes", size)
	}

	redisKey := s.key(name)
	if err := s.client.SetNX(ctx, redisKey, candidate, 0).Err(); err != nil {
		return nil, fmt.Errorf("redis error storing key: %w", err)
	}

	val, err := s.client.Get(ctx, redisKey).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, ErrKeyVanished
		}
		return nil, fmt.Errorf("failed to get key from redis: %w", err)
	}

	if len(val) != size {
		return nil, ports.ErrKeySize
	}
	return val, nil
}

// Close closes the redis client.
func (s *KeyStore) Close() error {
	return s.client.Close()
}
