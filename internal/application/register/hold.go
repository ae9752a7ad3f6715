package register

import (
	"sort"
	"strings"

	"github.com/sangkips/tillpoint-api/internal/domain/pos"
)

// HoldLedger keeps at most one parked bill per tab. It has no lock of its
// own; the owning Register guards it.
type HoldLedger struct {
	bills map[string]pos.HeldBill
}

func NewHoldLedger() *HoldLedger {
	return &HoldLedger{bills: make(map[string]pos.HeldBill)}
}

func (h *HoldLedger) Has(tabID string) bool {
	_, ok := h.bills[tabID]
	return ok
}

func (h *HoldLedger) put(b pos.HeldBill) {
	h.bills[b.TabID] = b
}

func (h *HoldLedger) take(tabID string) (pos.HeldBill, bool) {
	b, ok := h.bills[tabID]
	if ok {
		delete(h.bills, tabID)
	}
	return b, ok
}

// list returns copies ordered by hold time, oldest first.
func (h *HoldLedger) list() []pos.HeldBill {
	out := make([]pos.HeldBill, 0, len(h.bills))
	for _, b := range h.bills {
		b.Snapshot = b.Snapshot.Clone()
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].HeldAt.Equal(out[j].HeldAt) {
			return out[i].TabID < out[j].TabID
		}
		return out[i].HeldAt.Before(out[j].HeldAt)
	})
	return out
}

// Hold parks the tab's cart under label and clears the tab for the next
// customer, tax rate included. A newer hold on the same tab replaces the
// older one.
func (r *Register) Hold(tabID, label string) (pos.HeldBill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tabs[tabID]
	if !ok {
		return pos.HeldBill{}, ErrUnknownTab
	}
	if len(t.Cart) == 0 {
		return pos.HeldBill{}, pos.ErrEmptyCart
	}
	if r.checkingOut[tabID] {
		return pos.HeldBill{}, ErrCheckoutInProgress
	}
	now := r.now()
	label = strings.TrimSpace(label)
	if label == "" {
		label = "Held " + now.Format("15:04:05")
	}
	bill := pos.HeldBill{
		TabID:    tabID,
		Label:    label,
		HeldAt:   now,
		Snapshot: t.Clone(),
	}
	r.holds.put(bill)
	*t = pos.ResetBusiness(*t)

	bill.Snapshot = bill.Snapshot.Clone()
	return bill, nil
}

// Unhold restores the tab's held bill exactly as it was parked. Restoring
// over a non-empty cart is refused.
func (r *Register) Unhold(tabID string) (pos.TabState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tabs[tabID]
	if !ok {
		return pos.TabState{}, ErrUnknownTab
	}
	if !r.holds.Has(tabID) {
		return pos.TabState{}, ErrNoHeldBill
	}
	if len(t.Cart) > 0 {
		return pos.TabState{}, ErrCartNotEmpty
	}
	bill, _ := r.holds.take(tabID)
	*t = bill.Snapshot.Clone()
	return t.Clone(), nil
}

func (r *Register) HeldBills() []pos.HeldBill {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.holds.list()
}
