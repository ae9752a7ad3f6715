package register

import (
	"context"
	"sync"
	"time"

	"github.com/sangkips/tillpoint-api/pkg/logger"
)

const DefaultStockPollInterval = 2 * time.Second

// StockCache is the register's view of on-hand stock. It is refreshed by a
// polling loop and decremented optimistically after each sale; the next poll
// overwrites any drift.
type StockCache struct {
	src      StockSource
	interval time.Duration

	mu          sync.RWMutex
	levels      map[string]int
	refreshedAt time.Time
}

func NewStockCache(src StockSource, interval time.Duration) *StockCache {
	if interval <= 0 {
		interval = DefaultStockPollInterval
	}
	return &StockCache{src: src, interval: interval}
}

// Run polls until ctx is done. A failed poll keeps the previous snapshot.
func (s *StockCache) Run(ctx context.Context) {
	if err := s.Refresh(ctx); err != nil {
		logger.LogWarn("register", "StockCache.Run", "initial stock load failed", nil, err)
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil && ctx.Err() == nil {
				logger.LogWarn("register", "StockCache.Run", "stock poll failed", nil, err)
			}
		}
	}
}

func (s *StockCache) Refresh(ctx context.Context) error {
	if s.src == nil {
		return nil
	}
	levels, err := s.src.StockLevels(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.levels = levels
	s.refreshedAt = time.Now()
	s.mu.Unlock()
	return nil
}

// Available returns the snapshot quantity for a product, or fallback when the
// product is not in the snapshot.
func (s *StockCache) Available(productID string, fallback int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n, ok := s.levels[productID]; ok {
		return n
	}
	return fallback
}

// Decrement lowers a product's snapshot quantity, never below zero.
func (s *StockCache) Decrement(productID string, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.levels[productID]
	if !ok {
		return
	}
	s.levels[productID] = max(n-qty, 0)
}

// Snapshot returns a copy of the current levels and when they were loaded.
func (s *StockCache) Snapshot() (map[string]int, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]int, len(s.levels))
	for k, v := range s.levels {
		out[k] = v
	}
	return out, s.refreshedAt
}
