package register

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStockCacheAvailableFallsBackWhenUnknown(t *testing.T) {
	s := NewStockCache(nil, 0)
	assert.Equal(t, 7, s.Available("p1", 7))
	require.NoError(t, s.Refresh(context.Background()))
	assert.Equal(t, 7, s.Available("p1", 7))
}

func TestStockCacheDecrementFloorsAtZero(t *testing.T) {
	f := newFakeBackend()
	f.levels["p1"] = 3
	s := loadedStock(f)

	s.Decrement("p1", 2)
	assert.Equal(t, 1, s.Available("p1", 0))
	s.Decrement("p1", 5)
	assert.Equal(t, 0, s.Available("p1", 9))

	s.Decrement("missing", 1)
	levels, at := s.Snapshot()
	assert.Equal(t, map[string]int{"p1": 0}, levels)
	assert.False(t, at.IsZero())
}

func TestStockCachePollCorrectsOptimisticDecrement(t *testing.T) {
	f := newFakeBackend()
	f.levels["p1"] = 10
	s := loadedStock(f)
	s.Decrement("p1", 4)

	f.levels["p1"] = 8
	require.NoError(t, s.Refresh(context.Background()))
	assert.Equal(t, 8, s.Available("p1", 0))
}

func TestStockCacheRunStopsWithContext(t *testing.T) {
	f := newFakeBackend()
	f.levels["p1"] = 1
	s := NewStockCache(f, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return s.Available("p1", -1) == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
