package pos

import (
	"sort"
	"time"
)

type EntryType string

const (
	CashIn  EntryType = "Cash In"
	CashOut EntryType = "Cash Out"
)

// LedgerEntry is the slice of a cashbook entry the balance fold needs.
type LedgerEntry struct {
	Date    time.Time
	Voucher string
	Type    EntryType
	Amount  float64
}

// Signed returns the entry's effect on the balance.
func (e LedgerEntry) Signed() float64 {
	if e.Type == CashIn {
		return e.Amount
	}
	return -e.Amount
}

// RunningBalances folds entries in ascending date order starting from opening
// and returns the balance after each entry keyed by voucher. Entries sharing a
// voucher map to whichever of them was folded last. The final balance is also
// returned. The input slice is not reordered.
func RunningBalances(opening float64, entries []LedgerEntry) (map[string]float64, float64) {
	sorted := make([]LedgerEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	balances := make(map[string]float64, len(sorted))
	bal := opening
	for _, e := range sorted {
		bal += e.Signed()
		balances[e.Voucher] = bal
	}
	return balances, bal
}
