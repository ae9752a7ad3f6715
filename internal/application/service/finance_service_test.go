package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tillpoint-api/internal/domain/enum"
	"github.com/sangkips/tillpoint-api/internal/domain/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinanceRecordsMirrorIntoCashbook(t *testing.T) {
	book := &memCashbook{}
	svc := NewFinanceService(newMemFinance(), NewCashbookService(book, &memSettings{}))
	ctx := context.Background()
	user := uuid.New()

	income, err := svc.Create(ctx, &FinanceInput{UserID: user, Kind: enum.FinanceIncome, Category: "Repairs", Amount: 1000, Mode: "cash"})
	require.NoError(t, err)
	assert.Regexp(t, `^INC`, income.Voucher)

	expense, err := svc.Create(ctx, &FinanceInput{
		UserID:      user,
		Kind:        enum.FinanceExpense,
		Category:    "Rent",
		Description: "March rent",
		Amount:      250,
		Voucher:     "RENT-03",
	})
	require.NoError(t, err)

	entries := book.entries()
	require.Len(t, entries, 2)
	assert.Equal(t, enum.CashbookCashIn, entries[0].Type)
	assert.Equal(t, "Repairs", entries[0].Particulars)
	assert.Equal(t, enum.CashbookCashOut, entries[1].Type)
	assert.Equal(t, "March rent", entries[1].Particulars)
	assert.Equal(t, "RENT-03", entries[1].Voucher)
	assert.Equal(t, int64(25000), entries[1].Amount)
	assert.Equal(t, SourceFinance, entries[1].SourceType)

	err = svc.Delete(ctx, enum.FinanceIncome, expense.ID)
	assert.Equal(t, http.StatusNotFound, appCode(t, err))

	require.NoError(t, svc.Delete(ctx, enum.FinanceExpense, expense.ID))
	entries = book.entries()
	require.Len(t, entries, 3)
	assert.Equal(t, income.Voucher, entries[0].Voucher)
	assert.Equal(t, "RENT-03", entries[1].Voucher)
	reversal := entries[2]
	assert.Equal(t, "RENT-03"+ReversalSuffix, reversal.Voucher)
	assert.Equal(t, enum.CashbookCashIn, reversal.Type)
	assert.Equal(t, int64(25000), reversal.Amount)
	assert.True(t, reversal.IsReturn)
	assert.Equal(t, expense.ID, *reversal.SourceID)

	view, err := NewCashbookService(book, &memSettings{}).List(ctx, repository.CashbookFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1000.0, view.ClosingBalance)
}

func TestFinanceDeleteOnlyAppendsToCashbook(t *testing.T) {
	book := &memCashbook{}
	svc := NewFinanceService(newMemFinance(), NewCashbookService(book, &memSettings{}))
	ctx := context.Background()

	var ids []uuid.UUID
	for _, amount := range []float64{100, 40} {
		r, err := svc.Create(ctx, &FinanceInput{UserID: uuid.New(), Kind: enum.FinanceIncome, Category: "Sales", Amount: amount})
		require.NoError(t, err)
		ids = append(ids, r.ID)
	}
	before := book.entries()
	require.Len(t, before, 2)

	require.NoError(t, svc.Delete(ctx, enum.FinanceIncome, ids[0]))
	after := book.entries()
	require.Len(t, after, 3)
	assert.Equal(t, before, after[:2])
	assert.Equal(t, enum.CashbookCashOut, after[2].Type)
}

func TestFinanceCreateValidates(t *testing.T) {
	svc := NewFinanceService(newMemFinance(), NewCashbookService(&memCashbook{}, &memSettings{}))
	_, err := svc.Create(context.Background(), &FinanceInput{Kind: enum.FinanceExpense, Amount: -5})
	assert.Equal(t, []string{"amount", "category"}, appErrorFields(err))
}

func TestFinanceSummaryAndList(t *testing.T) {
	svc := NewFinanceService(newMemFinance(), NewCashbookService(&memCashbook{}, &memSettings{}))
	ctx := context.Background()
	march := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	for _, in := range []FinanceInput{
		{Kind: enum.FinanceIncome, Category: "Repairs", Amount: 1000.10, Date: march},
		{Kind: enum.FinanceExpense, Category: "Rent", Amount: 250, Date: march},
		{Kind: enum.FinanceExpense, Category: "Power", Amount: 0.1, Date: march},
		{Kind: enum.FinanceExpense, Category: "Power", Amount: 0.2, Date: march},
		{Kind: enum.FinanceExpense, Category: "Rent", Amount: 999, Date: march.AddDate(0, -1, 0)},
	} {
		in := in
		_, err := svc.Create(ctx, &in)
		require.NoError(t, err)
	}

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	sum, err := svc.Summary(ctx, &start, nil)
	require.NoError(t, err)
	assert.Equal(t, "1000.10", sum.Income)
	assert.Equal(t, "250.30", sum.Expense)
	assert.Equal(t, "749.80", sum.Net)
	assert.Equal(t, map[string]string{"Rent": "250.00", "Power": "0.30"}, sum.ByCategory)

	list, err := svc.List(ctx, enum.FinanceExpense, nil, nil)
	require.NoError(t, err)
	assert.Len(t, list.Records, 4)
	assert.Equal(t, "1249.30", list.Total)

	empty, err := svc.List(ctx, enum.FinanceIncome, nil, &start)
	require.NoError(t, err)
	assert.NotNil(t, empty.Records)
	assert.Equal(t, "0.00", empty.Total)
}
