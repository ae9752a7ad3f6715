package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tillpoint-api/internal/domain/entity"
	"github.com/sangkips/tillpoint-api/internal/domain/enum"
	"github.com/sangkips/tillpoint-api/internal/domain/pos"
	"github.com/sangkips/tillpoint-api/internal/domain/repository"
	"github.com/sangkips/tillpoint-api/pkg/apperror"
	"github.com/sangkips/tillpoint-api/pkg/money"
	"github.com/sangkips/tillpoint-api/pkg/utils"
	"github.com/xuri/excelize/v2"
)

// Cashbook source types for entries created by other modules.
const (
	SourceInvoice = "invoice"
	SourcePayment = "invoice_payment"
	SourceFinance = "finance"
)

// CashbookService lists the cashbook with running balances and appends entries
type CashbookService struct {
	cashbookRepo repository.CashbookRepository
	settingsRepo repository.SettingsRepository
}

// NewCashbookService creates a new cashbook service
func NewCashbookService(cashbookRepo repository.CashbookRepository, settingsRepo repository.SettingsRepository) *CashbookService {
	return &CashbookService{
		cashbookRepo: cashbookRepo,
		settingsRepo: settingsRepo,
	}
}

// CashbookLine is an entry with the balance after it
type CashbookLine struct {
	entity.CashbookEntry
	Balance float64 `json:"balance"`
}

// MarshalJSON keeps the entry's decimal amount alongside the balance.
func (l CashbookLine) MarshalJSON() ([]byte, error) {
	type Alias entity.CashbookEntry
	return json.Marshal(&struct {
		Alias
		Amount  float64 `json:"amount"`
		Balance float64 `json:"balance"`
	}{
		Alias:   Alias(l.CashbookEntry),
		Amount:  money.FromCents(l.Amount),
		Balance: money.Round2(l.Balance),
	})
}

// CashbookView is a cashbook listing, newest entry first
type CashbookView struct {
	OpeningBalance float64        `json:"opening_balance"`
	ClosingBalance float64        `json:"closing_balance"`
	TotalIn        float64        `json:"total_in"`
	TotalOut       float64        `json:"total_out"`
	Entries        []CashbookLine `json:"entries"`
}

// List returns the entries matching filter in descending date order. The
// opening balance is the configured opening cash plus every entry before the
// start date.
func (s *CashbookService) List(ctx context.Context, filter repository.CashbookFilter) (*CashbookView, error) {
	opening, err := s.openingBalance(ctx, filter.StartDate)
	if err != nil {
		return nil, err
	}

	entries, err := s.cashbookRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	ledger := make([]pos.LedgerEntry, len(entries))
	var in, out int64
	for i, e := range entries {
		ledger[i] = toLedgerEntry(e)
		if e.Type == enum.CashbookCashOut {
			out += e.Amount
		} else {
			in += e.Amount
		}
	}
	balances, closing := pos.RunningBalances(opening, ledger)

	lines := make([]CashbookLine, len(entries))
	for i, e := range entries {
		// repository order is ascending; display is descending
		lines[len(entries)-1-i] = CashbookLine{CashbookEntry: e, Balance: balances[e.Voucher]}
	}

	return &CashbookView{
		OpeningBalance: opening,
		ClosingBalance: closing,
		TotalIn:        money.FromCents(in),
		TotalOut:       money.FromCents(out),
		Entries:        lines,
	}, nil
}

func (s *CashbookService) openingBalance(ctx context.Context, start *time.Time) (float64, error) {
	var opening int64
	settings, err := s.settingsRepo.GetBusiness(ctx)
	if err != nil {
		return 0, err
	}
	if settings != nil {
		opening = settings.OpeningCash
	}
	if start != nil {
		before, err := s.cashbookRepo.SumBefore(ctx, *start)
		if err != nil {
			return 0, err
		}
		opening += before
	}
	return money.FromCents(opening), nil
}

func toLedgerEntry(e entity.CashbookEntry) pos.LedgerEntry {
	typ := pos.CashIn
	if e.Type == enum.CashbookCashOut {
		typ = pos.CashOut
	}
	return pos.LedgerEntry{
		Date:    e.Date,
		Voucher: e.Voucher,
		Type:    typ,
		Amount:  money.FromCents(e.Amount),
	}
}

// AddEntryInput represents a manual cashbook entry
type AddEntryInput struct {
	UserID      uuid.UUID
	Date        time.Time
	Particulars string
	Voucher     string
	Type        enum.CashbookType
	Amount      float64
	Mode        string
	Category    string
	IsReturn    bool
}

// AddEntry appends a manual entry. A voucher is generated when none is given.
func (s *CashbookService) AddEntry(ctx context.Context, input *AddEntryInput) (*entity.CashbookEntry, error) {
	var fieldErrors []apperror.FieldError
	if strings.TrimSpace(input.Particulars) == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "particulars", Message: "Particulars are required"})
	}
	if input.Amount <= 0 {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "amount", Message: "Amount must be greater than zero"})
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
		voucher = utils.GenerateVoucherNo("CB")
	}

	entry := &entity.CashbookEntry{
		UserID:      input.UserID,
		Date:        date,
		Particulars: strings.TrimSpace(input.Particulars),
		Voucher:     voucher,
		Type:        input.Type,
		Amount:      money.ToCents(input.Amount),
		Mode:        input.Mode,
		Category:    input.Category,
		IsReturn:    input.IsReturn,
	}
	if err := s.cashbookRepo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Record appends an entry produced by another module, e.g. a sale or an expense.
func (s *CashbookService) Record(ctx context.Context, entry *entity.CashbookEntry) error {
	if entry.Date.IsZero() {
		entry.Date = time.Now()
	}
	return s.cashbookRepo.Create(ctx, entry)
}

// ReversalSuffix marks the voucher of an entry that cancels another.
const ReversalSuffix = "-REV"

// Reverse appends an entry cancelling original: opposite direction, same
// amount, dated now. Nothing already in the cashbook is touched.
func (s *CashbookService) Reverse(ctx context.Context, original *entity.CashbookEntry) error {
	typ := enum.CashbookCashOut
	if original.Type == enum.CashbookCashOut {
		typ = enum.CashbookCashIn
	}
	return s.Record(ctx, &entity.CashbookEntry{
		UserID:      original.UserID,
		Date:        time.Now(),
		Particulars: "Reversal: " + original.Particulars,
		Voucher:     original.Voucher + ReversalSuffix,
		Type:        typ,
		Amount:      original.Amount,
		Mode:        original.Mode,
		Category:    original.Category,
		IsReturn:    true,
		SourceType:  original.SourceType,
		SourceID:    original.SourceID,
	})
}

var cashbookExportHeader = []string{"Date", "Particulars", "Voucher", "Type", "Mode", "Category", "Cash In", "Cash Out", "Balance"}

// Export renders the listing as an xlsx workbook in display order.
func (s *CashbookService) Export(ctx context.Context, filter repository.CashbookFilter) ([]byte, error) {
	view, err := s.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Cashbook"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	for i, h := range cashbookExportHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	f.SetCellValue(sheet, "A2", "Opening balance")
	f.SetCellValue(sheet, "I2", money.Round2(view.OpeningBalance))

	for i, line := range view.Entries {
		row := i + 3
		in, out := "", ""
		amount := money.Format(money.FromCents(line.Amount))
		if line.Type == enum.CashbookCashOut {
			out = amount
		} else {
			in = amount
		}
		values := []interface{}{
			line.Date.Format("2006-01-02"),
			line.Particulars,
			line.Voucher,
			line.Type.String(),
			line.Mode,
			line.Category,
			in,
			out,
			money.Round2(line.Balance),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(sheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write cashbook workbook: %w", err)
	}
	return buf.Bytes(), nil
}
