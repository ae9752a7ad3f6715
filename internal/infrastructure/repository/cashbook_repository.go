package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tillpoint-api/internal/domain/entity"
	"github.com/sangkips/tillpoint-api/internal/domain/enum"
	domainRepo "github.com/sangkips/tillpoint-api/internal/domain/repository"
	"gorm.io/gorm"
)

type cashbookRepository struct {
	db *gorm.DB
}

// NewCashbookRepository creates a new cashbook repository
func NewCashbookRepository(db *gorm.DB) domainRepo.CashbookRepository {
	return &cashbookRepository{db: db}
}

func (r *cashbookRepository) Create(ctx context.Context, entry *entity.CashbookEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *cashbookRepository) List(ctx context.Context, f domainRepo.CashbookFilter) ([]entity.CashbookEntry, error) {
	query := r.db.WithContext(ctx).Model(&entity.CashbookEntry{}).
		Scopes(
			DateRangeScope("date", f.StartDate, f.EndDate),
			SearchScope(f.Search, "particulars", "voucher"),
		)
	if f.Type != nil {
		query = query.Where("type = ?", *f.Type)
	}
	if f.Mode != "" {
		query = query.Where("mode = ?", f.Mode)
	}
	if f.Category != "" {
		query = query.Where("category = ?", f.Category)
	}

	var entries []entity.CashbookEntry
	err := query.Order("date ASC, created_at ASC").Find(&entries).Error
	return entries, err
}

func (r *cashbookRepository) SumBefore(ctx context.Context, t time.Time) (int64, error) {
	var row struct {
		CashIn  int64
		CashOut int64
	}
	err := r.db.WithContext(ctx).Model(&entity.CashbookEntry{}).
		Select(
			"COALESCE(SUM(CASE WHEN type = ? THEN amount ELSE 0 END), 0) AS cash_in, "+
				"COALESCE(SUM(CASE WHEN type = ? THEN amount ELSE 0 END), 0) AS cash_out",
			enum.CashbookCashIn, enum.CashbookCashOut,
		).
		Where("date < ?", t).
		Scan(&row).Error
	return row.CashIn - row.CashOut, err
}

type financeRepository struct {
	db *gorm.DB
}

// NewFinanceRepository creates a new income/expense repository
func NewFinanceRepository(db *gorm.DB) domainRepo.FinanceRepository {
	return &financeRepository{db: db}
}

func (r *financeRepository) Create(ctx context.Context, record *entity.FinanceRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *financeRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.FinanceRecord, error) {
	var record entity.FinanceRecord
	err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &record, err
}

func (r *financeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.FinanceRecord{}, "id = ?", id).Error
}

func (r *financeRepository) List(ctx context.Context, kind enum.FinanceKind, start, end *time.Time) ([]entity.FinanceRecord, error) {
	var records []entity.FinanceRecord
	err := r.db.WithContext(ctx).
		Where("kind = ?", kind).
		Scopes(DateRangeScope("date", start, end)).
		Order("date DESC").
		Find(&records).Error
	return records, err
}
