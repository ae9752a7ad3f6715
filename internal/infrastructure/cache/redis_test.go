package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledCacheIsInert(t *testing.T) {
	ctx := context.Background()
	c := New(nil)

	assert.False(t, c.Enabled())
	require.NoError(t, c.SetObject(ctx, "k", map[string]int{"a": 1}, time.Minute))

	var out map[string]int
	found, err := c.GetObject(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, found)

	n, err := c.Incr(ctx, "seq", time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, c.Close())
}

func TestLocalLockIsExclusive(t *testing.T) {
	ctx := context.Background()
	c := New(nil)

	inner := make(chan error, 1)
	err := c.WithLock(ctx, "db-clear", time.Minute, func(ctx context.Context) error {
		inner <- c.WithLock(ctx, "db-clear", time.Minute, func(context.Context) error { return nil })
		return nil
	})
	require.NoError(t, err)
	assert.ErrorIs(t, <-inner, ErrLockNotObtained)

	// released after the first holder returns
	ran := false
	require.NoError(t, c.WithLock(ctx, "db-clear", time.Minute, func(context.Context) error {
		ran = true
		return nil
	}))
	assert.True(t, ran)
}
