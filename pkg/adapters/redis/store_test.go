package redis_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/hello/pkg/adapters/redis"
	"github.com/aretw0/hello/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisKeyStore_Contract(t *testing.T) {
	// Setup miniredis
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	defer mr.Close()

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})

	store := redis.NewFromClient(client)
	ports.RunKeyStoreContract(t, store)
}

func TestRedisKeyStore_SharedAcrossClients(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	ctx := context.Background()
	replicaA := redis.New(mr.Addr(), "", 0)
	defer replicaA.Close()
	replicaB := redis.New(mr.Addr(), "", 0)
	defer replicaB.Close()

	keyA, err := replicaA.LoadOrCreate(ctx, "csrf", 32)
	require.NoError(t, err)
	keyB, err := replicaB.LoadOrCreate(ctx, "csrf", 32)
	require.NoError(t, err)

	assert.Equal(t, keyA, keyB, "replicas must share the key")
}

func TestRedisKeyStore_Prefix(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})

	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	key, err := store.LoadOrCreate(context.Background(), "csrf", 32)
	require.NoError(t, err)

	assert.True(t, mr.Exists("custom:app:key:csrf"), "Expected key with custom prefix to exist")
	stored, err := mr.Get("custom:app:key:csrf")
	require.NoError(t, err)
	assert.Equal(t, string(key), stored)
	assert.Zero(t, mr.TTL("custom:app:key:csrf"), "key must not expire")
}

func TestRedisKeyStore_ExistingKeyWrongSize(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	require.NoError(t, mr.Set("hello:key:csrf", "short"))

	store := redis.New(mr.Addr(), "", 0)
	defer store.Close()

	_, err = store.LoadOrCreate(context.Background(), "csrf", 32)
	assert.ErrorIs(t, err, ports.ErrKeySize)
}

func TestRedisKeyStore_Ping(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	store := redis.New(mr.Addr(), "", 0)
	defer store.Close()

	assert.NoError(t, store.Ping(context.Background()))

	mr.Close()
	assert.Error(t, store.Ping(context.Background()))
}
