package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/hello/pkg/adapters/memory"
	"github.com/aretw0/hello/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryKeyStore_Contract(t *testing.T) {
	store := memory.NewKeyStore()
	ports.RunKeyStoreContract(t, store)
}

func TestMemoryKeyStore_CopyOnRead(t *testing.T) {
	store := memory.NewKeyStore()
	ctx := context.Background()

	key, err := store.LoadOrCreate(ctx, "csrf", 32)
	require.NoError(t, err)
	original := append([]byte(nil), key...)

	key[0] ^= 0xff

	again, err := store.LoadOrCreate(ctx, "csrf", 32)
	require.NoError(t, err)
	assert.Equal(t, original, again)
}
