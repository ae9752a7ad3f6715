package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tillpoint-api/internal/domain/entity"
	"github.com/sangkips/tillpoint-api/internal/domain/repository"
	"github.com/sangkips/tillpoint-api/internal/infrastructure/cache"
	"github.com/sangkips/tillpoint-api/pkg/apperror"
	"github.com/sangkips/tillpoint-api/pkg/logger"
)

const (
	stockLevelsKey = "inventory:levels"
	stockLevelsTTL = 30 * time.Second
)

// InventoryService serves stock levels and applies stock movements
type InventoryService struct {
	productRepo repository.ProductRepository
	cache       *cache.Cache
}

// NewInventoryService creates a new inventory service
func NewInventoryService(productRepo repository.ProductRepository, c *cache.Cache) *InventoryService {
	return &InventoryService{productRepo: productRepo, cache: c}
}

// StockLevels returns product id to on-hand quantity. The snapshot is cached
// in redis and dropped on every stock write.
func (s *InventoryService) StockLevels(ctx context.Context) (map[uuid.UUID]int, error) {
	levels := make(map[uuid.UUID]int)
	if s.cache != nil {
		hit, err := s.cache.GetObject(ctx, stockLevelsKey, &levels)
		if err != nil {
			logger.LogWarn("inventory", "StockLevels", "cache read failed", nil, err)
		}
		if hit {
			return levels, nil
		}
	}

	levels, err := s.productRepo.StockLevels(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetObject(ctx, stockLevelsKey, levels, stockLevelsTTL); err != nil {
			logger.LogWarn("inventory", "StockLevels", "cache write failed", nil, err)
		}
	}
	return levels, nil
}

// Deduct removes quantity units of a product after a sale. It fails without
// changing anything when stock is insufficient.
func (s *InventoryService) Deduct(ctx context.Context, productID uuid.UUID, quantity int) (*entity.Product, error) {
	if quantity <= 0 {
		return nil, apperror.NewBadRequestError("Quantity must be positive")
	}
	ok, err := s.productRepo.AtomicDecrementQuantity(ctx, productID, quantity)
	if err != nil {
		return nil, err
	}
	if !ok {
		product, err := s.productRepo.GetByID(ctx, productID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, apperror.NewNotFoundError("Product")
		}
		return nil, apperror.NewUnprocessableError("Insufficient stock for " + product.Name)
	}
	s.invalidate(ctx)
	return s.productRepo.GetByID(ctx, productID)
}

// Adjust applies a manual stock correction. Delta may be negative but the
// resulting quantity may not.
func (s *InventoryService) Adjust(ctx context.Context, productID uuid.UUID, delta int) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	if delta == 0 {
		return product, nil
	}
	if delta < 0 {
		ok, err := s.productRepo.AtomicDecrementQuantity(ctx, productID, -delta)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperror.NewUnprocessableError("Adjustment would make stock negative")
		}
	} else if err := s.productRepo.AdjustQuantity(ctx, productID, delta); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return s.productRepo.GetByID(ctx, productID)
}

func (s *InventoryService) invalidate(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Delete(ctx, stockLevelsKey)
	}
}
