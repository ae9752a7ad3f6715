package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tillpoint-api/internal/domain/entity"
	"github.com/sangkips/tillpoint-api/internal/domain/enum"
	"github.com/sangkips/tillpoint-api/internal/domain/repository"
	"github.com/sangkips/tillpoint-api/pkg/apperror"
	"github.com/sangkips/tillpoint-api/pkg/logger"
	"github.com/sangkips/tillpoint-api/pkg/money"
	"github.com/sangkips/tillpoint-api/pkg/utils"
	"github.com/shopspring/decimal"
)

// FinanceService records income and expenses outside of till sales
type FinanceService struct {
	financeRepo repository.FinanceRepository
	cashbook    *CashbookService
}

// NewFinanceService creates a new finance service
func NewFinanceService(financeRepo repository.FinanceRepository, cashbook *CashbookService) *FinanceService {
	return &FinanceService{financeRepo: financeRepo, cashbook: cashbook}
}

// FinanceInput represents a new income or expense record
type FinanceInput struct {
	UserID      uuid.UUID
	Kind        enum.FinanceKind
	Date        time.Time
	Category    string
	Description string
	Amount      float64
	Mode        string
	Voucher     string
}

// Create stores the record and mirrors it into the cashbook as Cash In for
// income or Cash Out for expenses.
func (s *FinanceService) Create(ctx context.Context, input *FinanceInput) (*entity.FinanceRecord, error) {
	var fieldErrors []apperror.FieldError
	if input.Amount <= 0 {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "amount", Message: "Amount must be greater than zero"})
	}
	if strings.TrimSpace(input.Category) == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "category", Message: "Category is required"})
	}
	if len(fieldErrors) > 0 {
		return nil, apperror.NewValidationError(fieldErrors)
	}

	date := input.Date
	if date.IsZero() {
		date = time.Now()
	}
	voucher := strings.TrimSpace(input.Voucher)
	if voucher == "" {
		prefix := "INC"
		if input.Kind == enum.FinanceExpense {
			prefix = "EXP"
		}
		voucher = utils.GenerateVoucherNo(prefix)
	}

	record := &entity.FinanceRecord{
		UserID:      input.UserID,
		Kind:        input.Kind,
		Date:        date,
		Category:    strings.TrimSpace(input.Category),
		Description: strings.TrimSpace(input.Description),
		Amount:      money.ToCents(input.Amount),
		Mode:        input.Mode,
		Voucher:     voucher,
	}
	if err := s.financeRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	entry := cashbookMirror(record)
	if err := s.cashbook.Record(ctx, entry); err != nil {
		logger.LogError("finance", "Create", "cashbook mirror failed", map[string]any{"voucher": record.Voucher}, err)
		return nil, err
	}
	return record, nil
}

// cashbookMirror is the cashbook entry a finance record posts
func cashbookMirror(record *entity.FinanceRecord) *entity.CashbookEntry {
	particulars := record.Description
	if particulars == "" {
		particulars = record.Category
	}
	return &entity.CashbookEntry{
		UserID:      record.UserID,
		Date:        record.Date,
		Particulars: particulars,
		Voucher:     record.Voucher,
		Type:        record.Kind.CashbookType(),
		Amount:      record.Amount,
		Mode:        record.Mode,
		Category:    record.Category,
		SourceType:  SourceFinance,
		SourceID:    &record.ID,
	}
}

// Delete removes a record of the given kind. The cashbook keeps the original
// entry and gains a reversing one dated now.
func (s *FinanceService) Delete(ctx context.Context, kind enum.FinanceKind, id uuid.UUID) error {
	record, err := s.financeRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if record == nil || record.Kind != kind {
		if kind == enum.FinanceExpense {
			return apperror.NewNotFoundError("Expense")
		}
		return apperror.NewNotFoundError("Income")
	}
	if err := s.financeRepo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.cashbook.Reverse(ctx, cashbookMirror(record)); err != nil {
		logger.LogError("finance", "Delete", "cashbook reversal failed", map[string]any{"voucher": record.Voucher}, err)
		return err
	}
	return nil
}

// FinanceList is a listing of one kind with its total
type FinanceList struct {
	Records []entity.FinanceRecord `json:"records"`
	Total   string                 `json:"total"`
}

// List returns records of one kind within an optional date range
func (s *FinanceService) List(ctx context.Context, kind enum.FinanceKind, start, end *time.Time) (*FinanceList, error) {
	records, err := s.financeRepo.List(ctx, kind, start, end)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []entity.FinanceRecord{}
	}
	return &FinanceList{Records: records, Total: sumRecords(records).StringFixed(2)}, nil
}

// FinanceSummary totals income against expenses
type FinanceSummary struct {
	Income     string            `json:"income"`
	Expense    string            `json:"expense"`
	Net        string            `json:"net"`
	ByCategory map[string]string `json:"expense_by_category"`
}

// Summary totals both kinds over an optional date range. Sums use decimal
// arithmetic on the stored cents.
func (s *FinanceService) Summary(ctx context.Context, start, end *time.Time) (*FinanceSummary, error) {
	income, err := s.financeRepo.List(ctx, enum.FinanceIncome, start, end)
	if err != nil {
		return nil, err
	}
	expense, err := s.financeRepo.List(ctx, enum.FinanceExpense, start, end)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[string]decimal.Decimal)
	for _, r := range expense {
		byCategory[r.Category] = byCategory[r.Category].Add(decimal.New(r.Amount, -2))
	}
	categories := make(map[string]string, len(byCategory))
	for k, v := range byCategory {
		categories[k] = v.StringFixed(2)
	}

	in, out := sumRecords(income), sumRecords(expense)
	return &FinanceSummary{
		Income:     in.StringFixed(2),
		Expense:    out.StringFixed(2),
		Net:        in.Sub(out).StringFixed(2),
		ByCategory: categories,
	}, nil
}

func sumRecords(records []entity.FinanceRecord) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(decimal.New(r.Amount, -2))
	}
	return total
}
