package cachemanager

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type cacheKey string

type listing struct {
	ID   int
	Name string
}

func TestInMemoryCacheManager_SetGet(t *testing.T) {
	cache := NewInMemoryCacheManager[cacheKey, listing]("listings", DefaultExpiration, DefaultCleanupInterval)

	_, found := cache.Get(t.Context(), "l:1")
	require.False(t, found)

	cache.Set(t.Context(), "l:1", listing{ID: 1, Name: "Skyline"}, NoExpiration)
	got, found := cache.Get(t.Context(), "l:1")
	require.True(t, found)
	require.Equal(t, listing{ID: 1, Name: "Skyline"}, got)
}

func TestInMemoryCacheManager_Expiry(t *testing.T) {
	cache := NewInMemoryCacheManager[cacheKey, int]("expiring", DefaultExpiration, DefaultCleanupInterval)
	cache.Set(t.Context(), "k", 1, time.Millisecond)

	require.Eventually(t, func() bool {
		_, found := cache.Get(t.Context(), "k")
		return !found
	}, time.Second, 5*time.Millisecond)
}

func TestInMemoryCacheManager_GetMultiple(t *testing.T) {
	cache := NewInMemoryCacheManager[cacheKey, int]("multi", DefaultExpiration, DefaultCleanupInterval)

	_, found := cache.GetMultiple(t.Context(), nil)
	require.False(t, found)

	_, found = cache.GetMultiple(t.Context(), []cacheKey{"a", "b"})
	require.False(t, found)

	cache.Set(t.Context(), "a", 1, NoExpiration)
	values, found := cache.GetMultiple(t.Context(), []cacheKey{"a", "b"})
	require.True(t, found)
	require.Equal(t, map[cacheKey]int{"a": 1}, values)
}

func TestInMemoryCacheManager_DeleteAndFlush(t *testing.T) {
	cache := NewInMemoryCacheManager[cacheKey, int]("delete", DefaultExpiration, DefaultCleanupInterval)
	cache.Set(t.Context(), "a", 1, NoExpiration)
	cache.Set(t.Context(), "b", 2, NoExpiration)
	cache.Set(t.Context(), "c", 3, NoExpiration)

	require.NoError(t, cache.Delete(t.Context(), "a", "b"))
	_, found := cache.Get(t.Context(), "a")
	require.False(t, found)
	_, found = cache.Get(t.Context(), "c")
	require.True(t, found)

	require.NoError(t, cache.Flush(t.Context()))
	_, found = cache.Get(t.Context(), "c")
	require.False(t, found)
}
