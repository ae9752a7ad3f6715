package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tillpoint-api/internal/domain/entity"
	"github.com/sangkips/tillpoint-api/internal/domain/enum"
)

// CashbookRepository defines the interface for cashbook entries. Entries are append-only.
type CashbookRepository interface {
	Create(ctx context.Context, entry *entity.CashbookEntry) error
	// List returns matching entries in ascending date order.
	List(ctx context.Context, filter CashbookFilter) ([]entity.CashbookEntry, error)
	// SumBefore returns the signed total (cents) of all entries dated before t.
	SumBefore(ctx context.Context, t time.Time) (int64, error)
}

// CashbookFilter narrows a cashbook listing
type CashbookFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Type      *enum.CashbookType
	Mode      string
	Category  string
	Search    string
}

// FinanceRepository defines the interface for income and expense records
type FinanceRepository interface {
	Create(ctx context.Context, record *entity.FinanceRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.FinanceRecord, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, kind enum.FinanceKind, start, end *time.Time) ([]entity.FinanceRecord, error)
}
