package ports

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunKeyStoreContract runs a suite of tests to verify that a KeyStore implementation
// adheres to the defined interface contract.
func RunKeyStoreContract(t *testing.T, store KeyStore) {
	ctx := context.Background()
	name := "contract-key-" + time.Now().Format("20060102150405.000000000")

	t.Run("Create and Reload", func(t *testing.T) {
		first, err := store.LoadOrCreate(ctx, name, 32)
		require.NoError(t, err, "LoadOrCreate should not return error")
		assert.Len(t, first, 32)

		second, err := store.LoadOrCreate(ctx, name, 32)
		require.NoError(t, err)
		assert.Equal(t, first, second, "a stored key must be returned unchanged")
	})

	t.Run("Distinct Names", func(t *testing.T) {
		a, err := store.LoadOrCreate(ctx, name+"-a", 32)
		require.NoError(t, err)
		b, err := store.LoadOrCreate(ctx, name+"-b", 32)
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("Size Mismatch", func(t *testing.T) {
		_, err := store.LoadOrCreate(ctx, name, 16)
		assert.ErrorIs(t, err, ErrKeySize)
	})

	t.Run("Empty Name", func(t *testing.T) {
		_, err := store.LoadOrCreate(ctx, "", 32)
		assert.ErrorIs(t, err, ErrKeyName)
	})

	t.Run("Concurrent Create", func(t *testing.T) {
		const workers = 8
		shared := name + "-concurrent"

		var wg sync.WaitGroup
		keys := make([][]byte, workers)
		errs := make([]error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				keys[i], errs[i] = store.LoadOrCreate(ctx, shared, 32)
			}(i)
		}
		wg.Wait()

		for i := 0; i < workers; i++ {
			require.NoError(t, errs[i])
			assert.Equal(t, keys[0], keys[i], "all callers must observe the same key")
		}
	})
}
