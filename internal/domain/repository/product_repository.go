package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/tillpoint-api/internal/domain/entity"
	"github.com/sangkips/tillpoint-api/pkg/pagination"
)

// ProductRepository defines the interface for product data operations
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	// CreateBatch inserts products in one transaction; used by the spreadsheet import.
	CreateBatch(ctx context.Context, products []entity.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error)
	GetByCode(ctx context.Context, code string) (*entity.Product, error)
	// GetByBarcode matches the barcode first and falls back to the product code.
	GetByBarcode(ctx context.Context, barcode string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *ProductFilterParams) ([]entity.Product, int64, error)
	ListWithCursor(ctx context.Context, params *ProductCursorFilterParams) ([]entity.Product, error)
	Search(ctx context.Context, query string, limit int) ([]entity.Product, error)
	GetLowStock(ctx context.Context) ([]entity.Product, error)
	// StockLevels returns product id to quantity for every product.
	StockLevels(ctx context.Context) (map[uuid.UUID]int, error)
	// AtomicDecrementQuantity atomically decrements stock only if sufficient.
	// Returns (true, nil) if successful, (false, nil) if insufficient stock, (false, err) on error.
	AtomicDecrementQuantity(ctx context.Context, id uuid.UUID, amount int) (bool, error)
	// AdjustQuantity adds delta (which may be negative) without a floor check.
	AdjustQuantity(ctx context.Context, id uuid.UUID, delta int) error
}

// ProductFilterParams contains filtering parameters for product queries
type ProductFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	Category   string
	LowStock   bool
	SortBy     string
	SortOrder  string
}

// ProductCursorFilterParams contains cursor-based filtering parameters for product queries
type ProductCursorFilterParams struct {
	Cursor   *pagination.CursorParams
	Search   string
	Category string
	LowStock bool
}

// IdentifierRepository defines the interface for serialized unit data operations
type IdentifierRepository interface {
	CreateBatch(ctx context.Context, identifiers []entity.ProductIdentifier) error
	GetByValue(ctx context.Context, value string) (*entity.ProductIdentifier, error)
	ListByProduct(ctx context.Context, productID uuid.UUID, includeSold bool) ([]entity.ProductIdentifier, error)
	// Search matches identifier values, preloading the owning product.
	Search(ctx context.Context, query string, limit int) ([]entity.ProductIdentifier, error)
	// MarkSold flips sold to true only when it is currently false.
	// Returns (false, nil) when the identifier was already sold or does not exist.
	MarkSold(ctx context.Context, value string, invoiceID *uuid.UUID) (bool, error)
}
