package main

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-records-api/internal/config"
	"github.com/aanand-mishra/student-records-api/internal/storage"
	"github.com/aanand-mishra/student-records-api/internal/storage/cache"
)

type closeCounter struct {
	storage.Storage
	closed int
}

func (c *closeCounter) Close() error {
	c.closed++
	return nil
}

func TestWithCacheDisabled(t *testing.T) {
	inner := &closeCounter{}

	store, err := withCache(context.Background(), inner, config.Redis{})
	require.NoError(t, err)
	assert.Same(t, inner, store)
	assert.Zero(t, inner.closed)
}

func TestWithCacheClosesStoreWhenRedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	inner := &closeCounter{}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store, err := withCache(ctx, inner, config.Redis{Addr: addr, TTL: time.Minute})
	require.Error(t, err)
	assert.Nil(t, store)
	assert.Equal(t, 1, inner.closed)
}

func TestWithCacheWraps(t *testing.T) {
	mr := miniredis.RunT(t)
	inner := &closeCounter{}

	store, err := withCache(context.Background(), inner, config.Redis{Addr: mr.Addr(), TTL: time.Minute})
	require.NoError(t, err)
	assert.IsType(t, &cache.Cached{}, store)
	assert.Zero(t, inner.closed)

	require.NoError(t, store.Close())
	assert.Equal(t, 1, inner.closed)
}
