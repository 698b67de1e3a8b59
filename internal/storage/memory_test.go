package storage

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryStoreGetPutDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Get(ctx, Users, "missing")
	require.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, store.Put(ctx, Users, "u1", []byte(`{"userId":"u1"}`)))

	value, err := store.Get(ctx, Users, "u1")
	require.NoError(t, err)
	require.JSONEq(t, `{"userId":"u1"}`, string(value))

	require.NoError(t, store.Delete(ctx, Users, "u1"))
	require.NoError(t, store.Delete(ctx, Users, "u1"))

	_, err = store.Get(ctx, Users, "u1")
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestMemoryStoreCollectionsAreIndependent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, Users, "id", []byte("user")))
	require.NoError(t, store.Put(ctx, Groups, "id", []byte("group")))

	value, err := store.Get(ctx, Users, "id")
	require.NoError(t, err)
	require.Equal(t, "user", string(value))

	value, err = store.Get(ctx, Groups, "id")
	require.NoError(t, err)
	require.Equal(t, "group", string(value))
}

func TestMemoryStoreUpdateAbortDoesNotWrite(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	abort := errors.New("abort")
	err := store.Update(ctx, Users, "u1", func(current []byte) ([]byte, error) {
		require.Nil(t, current)
		return nil, abort
	})
	require.ErrorIs(t, err, abort)

	_, err = store.Get(ctx, Users, "u1")
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestMemoryStoreUpdateIsAtomic(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, Users, "counter", []byte("0")))

	const workers = 20
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			err := store.Update(ctx, Users, "counter", func(current []byte) ([]byte, error) {
				n, err := strconv.Atoi(string(current))
				if err != nil {
					return nil, err
				}
				return []byte(strconv.Itoa(n + 1)), nil
			})
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	value, err := store.Get(ctx, Users, "counter")
	require.NoError(t, err)
	require.Equal(t, strconv.Itoa(workers), string(value))
}

func TestMemoryStoreScanVisitsEveryItem(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, Messages, "m1/a", []byte("one")))
	require.NoError(t, store.Put(ctx, Messages, "m2/b", []byte("two")))

	seen := map[string]string{}
	err := store.Scan(ctx, Messages, func(key string, value []byte) error {
		seen[key] = string(value)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, map[string]string{"m1/a": "one", "m2/b": "two"}, seen)
}
