package bigcache

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/asidecache/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(context.Background(), Config{
		LifeWindow:         10 * time.Minute,
		Shards:             8,
		MaxEntriesInWindow: 1000,
		MaxEntrySize:       256,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func TestStore_GetSet(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Set(ctx, "k", []byte("v"), time.Minute))
	got, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v"), got)
}

func TestStore_Batch(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	errs := s.MSet(ctx, []store.Item{
		{Key: "orders:1", Value: []byte("1")},
		{Key: "orders:2", Value: []byte("2")},
		{Key: "other:1", Value: []byte("x")},
	})
	require.Len(t, errs, 3)
	for _, err := range errs {
		require.NoError(t, err)
	}

	vals, err := s.MGet(ctx, []string{"orders:2", "missing", "orders:1"})
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("2"), nil, []byte("1")}, vals)

	keys, err := s.Scan(ctx, "orders:")
	require.NoError(t, err)
	sort.Strings(keys)
	require.Equal(t, []string{"orders:1", "orders:2"}, keys)
}

func TestStore_InvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), Config{LifeWindow: time.Minute, Shards: 3})
	require.Error(t, err, "shards must be a power of two")
}
