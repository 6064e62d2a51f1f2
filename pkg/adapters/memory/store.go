package memory

import (
	"bytes"
	"context"
	"errors"
	"sync"

	"github.com/aretw0/hello/pkg/ports"
	"github.com/gorilla/securecookie"
)

// errRandom is returned when the system random source fails.
var errRandom = errors.New("failed to generate random key")

// KeyStore implements ports.KeyStore in memory.
// Keys live as long as the process. Safe for concurrent use.
type KeyStore struct {
	data map[string][]byte
	mu   sync.Mutex
}

// NewKeyStore creates a new in-memory key store.
func NewKeyStore() *KeyStore {
	return &KeyStore{
		data: make(map[string][]byte),
	}
}

// LoadOrCreate returns the key for name, generating it on first use.
func (s *KeyStore) LoadOrCreate(ctx context.Context, name string, size int) ([]byte, error) {
	if name == "" {
		return nil, ports.ErrKeyName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if key, ok := s.data[name]; ok {
		if len(key) != size {
			return nil, ports.ErrKeySize
		}
		// Copy on read so callers can't mutate the stored key.
		return bytes.Clone(key), nil
	}

	key := securecookie.GenerateRandomKey(size)
	if key == nil {
		return nil, errRandom
	}
	s.data[name] = key
	return bytes.Clone(key), nil
}
