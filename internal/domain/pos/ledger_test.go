package pos

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(d int) time.Time {
	return time.Date(2026, 3, d, 9, 0, 0, 0, time.UTC)
}

func TestRunningBalancesFoldsChronologically(t *testing.T) {
	const opening = 500.0
	// deliberately out of order
	entries := []LedgerEntry{
		{Date: day(3), Voucher: "V-3", Type: CashIn, Amount: 10},
		{Date: day(1), Voucher: "V-1", Type: CashIn, Amount: 100},
		{Date: day(2), Voucher: "V-2", Type: CashOut, Amount: 40},
	}

	balances, closing := RunningBalances(opening, entries)

	assert.InDelta(t, opening+100, balances["V-1"], tol)
	assert.InDelta(t, opening+60, balances["V-2"], tol)
	assert.InDelta(t, opening+70, balances["V-3"], tol)
	assert.InDelta(t, opening+70, closing, tol)
	assert.Equal(t, "V-3", entries[0].Voucher, "input order is preserved")
}

func TestRunningBalancesCollidingVoucherShowsLastFolded(t *testing.T) {
	entries := []LedgerEntry{
		{Date: day(1), Voucher: "DUP", Type: CashIn, Amount: 100},
		{Date: day(2), Voucher: "DUP", Type: CashOut, Amount: 30},
	}
	balances, closing := RunningBalances(0, entries)
	assert.InDelta(t, 70, balances["DUP"], tol)
	assert.InDelta(t, 70, closing, tol)
}

func TestRunningBalancesEmpty(t *testing.T) {
	balances, closing := RunningBalances(42, nil)
	assert.Empty(t, balances)
	assert.Equal(t, 42.0, closing)
}
