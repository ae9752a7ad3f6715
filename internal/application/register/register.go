package register

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sangkips/tillpoint-api/internal/domain/pos"
	"github.com/sangkips/tillpoint-api/pkg/logger"
)

var (
	ErrUnknownTab         = errors.New("unknown tab")
	ErrNoHeldBill         = errors.New("no held bill for this tab")
	ErrTabHasHeldBill     = errors.New("tab has a held bill")
	ErrCartNotEmpty       = errors.New("cart must be empty to restore a held bill")
	ErrCheckoutInProgress = errors.New("checkout already in progress for this tab")
	ErrEmptyCode          = errors.New("scan code is empty")
	ErrProductNotFound    = errors.New("product not found")
	ErrIdentifierNotFound = errors.New("identifier not found")
	ErrIdentifierSold     = errors.New("identifier is already sold")
	ErrIdentifierMismatch = errors.New("identifier belongs to another product")
	ErrCustomerRequired   = errors.New("a customer is required for credit sales")
)

// Register is one cashier's session: a set of tabs with exactly one active,
// plus the bills they have put on hold. All methods are safe for concurrent use.
type Register struct {
	mu          sync.Mutex
	tabs        map[string]*pos.TabState
	order       []string
	active      string
	next        int
	holds       *HoldLedger
	defaultTax  float64
	checkingOut map[string]bool
	stock       *StockCache
	now         func() time.Time
}

// NewRegister returns a register with one empty, active tab.
func NewRegister(stock *StockCache, defaultTax float64) *Register {
	r := &Register{
		tabs:        make(map[string]*pos.TabState),
		holds:       NewHoldLedger(),
		defaultTax:  defaultTax,
		checkingOut: make(map[string]bool),
		stock:       stock,
		now:         time.Now,
	}
	r.createTabLocked()
	return r
}

func (r *Register) freshTab(id string) pos.TabState {
	return pos.TabState{
		TabID:    id,
		Cart:     []pos.CartLine{},
		Discount: pos.Discount{Type: pos.DiscountNone},
		TaxRate:  r.defaultTax,
		UI:       pos.UIFlags{FocusBarcode: true},
	}
}

// reset clears the business fields and puts the default tax back.
func (r *Register) reset(t pos.TabState) pos.TabState {
	out := pos.ResetBusiness(t)
	out.TaxRate = r.defaultTax
	return out
}

func (r *Register) createTabLocked() string {
	r.next++
	id := fmt.Sprintf("tab-%d", r.next)
	t := r.freshTab(id)
	r.tabs[id] = &t
	r.order = append(r.order, id)
	r.active = id
	return id
}

// CreateTab opens a new tab and makes it active.
func (r *Register) CreateTab() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.tabs[r.active]; ok {
		*prev = pos.CloseModals(*prev)
	}
	return r.createTabLocked()
}

// SetActiveTab switches tabs. Modals on both the old and the new tab are
// closed; carts are left alone.
func (r *Register) SetActiveTab(tabID string) (pos.TabState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	next, ok := r.tabs[tabID]
	if !ok {
		return pos.TabState{}, ErrUnknownTab
	}
	if prev, ok := r.tabs[r.active]; ok && r.active != tabID {
		*prev = pos.CloseModals(*prev)
	}
	*next = pos.CloseModals(*next)
	r.active = tabID
	return next.Clone(), nil
}

func (r *Register) ActiveTab() pos.TabState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tabs[r.active].Clone()
}

func (r *Register) ActiveTabID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

func (r *Register) Tab(tabID string) (pos.TabState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tabs[tabID]
	if !ok {
		return pos.TabState{}, ErrUnknownTab
	}
	return t.Clone(), nil
}

// Tabs returns every open tab in creation order.
func (r *Register) Tabs() []pos.TabState {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]pos.TabState, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.tabs[id].Clone())
	}
	return out
}

// UpdateTab applies a partial update. The tab id in the patch target never
// changes. A replacement cart is held to the same rules as the reducers.
func (r *Register) UpdateTab(tabID string, patch pos.TabPatch) (pos.TabState, error) {
	if patch.TaxRate != nil && (*patch.TaxRate < 0 || *patch.TaxRate > 100) {
		return pos.TabState{}, pos.ErrInvalidTaxRate
	}
	if patch.Discount != nil {
		if _, err := pos.SetOrderDiscount(pos.TabState{}, *patch.Discount); err != nil {
			return pos.TabState{}, err
		}
	}
	return r.mutate(tabID, func(t pos.TabState) (pos.TabState, error) {
		if patch.Cart != nil {
			if err := pos.ValidateCart(*patch.Cart, r.cartBound(t)); err != nil {
				return pos.TabState{}, err
			}
		}
		out := patch.Apply(t)
		out.TabID = t.TabID
		return out, nil
	})
}

// cartBound bounds a replacement cart by the stock snapshot. A product the
// snapshot does not know cannot exceed what the tab already holds of it.
// Without a stock cache there is nothing to check against.
func (r *Register) cartBound(t pos.TabState) func(string) int {
	if r.stock == nil {
		return nil
	}
	held := make(map[string]int)
	for _, l := range t.Cart {
		held[l.ProductID] += l.Quantity
	}
	return func(productID string) int {
		return r.stock.Available(productID, held[productID])
	}
}

// CloseTab removes a tab. Closing the last one leaves a fresh empty tab in
// its place. A tab with a held bill cannot be closed.
func (r *Register) CloseTab(tabID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tabs[tabID]; !ok {
		return ErrUnknownTab
	}
	if r.holds.Has(tabID) {
		return ErrTabHasHeldBill
	}
	if r.checkingOut[tabID] {
		return ErrCheckoutInProgress
	}
	delete(r.tabs, tabID)
	for i, id := range r.order {
		if id == tabID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	if len(r.order) == 0 {
		r.createTabLocked()
		return nil
	}
	if r.active == tabID {
		r.active = r.order[len(r.order)-1]
		t := r.tabs[r.active]
		*t = pos.CloseModals(*t)
	}
	return nil
}

// mutate runs fn against a copy of the tab and stores the result only when
// fn succeeds. fn runs under the register lock and must not block.
func (r *Register) mutate(tabID string, fn func(pos.TabState) (pos.TabState, error)) (pos.TabState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tabs[tabID]
	if !ok {
		return pos.TabState{}, ErrUnknownTab
	}
	next, err := fn(t.Clone())
	if err != nil {
		return pos.TabState{}, err
	}
	*t = next
	return next.Clone(), nil
}

func (r *Register) available(productID string, fallback int) int {
	if r.stock == nil {
		return fallback
	}
	return r.stock.Available(productID, fallback)
}

// SetQuantity changes a line's quantity within the stock snapshot. Without a
// snapshot entry for the product the line cannot grow past its current size.
func (r *Register) SetQuantity(tabID, lineID string, qty int) (pos.TabState, error) {
	return r.mutate(tabID, func(t pos.TabState) (pos.TabState, error) {
		current := 0
		productID := ""
		for _, l := range t.Cart {
			if l.LineID == lineID {
				current, productID = l.Quantity, l.ProductID
				break
			}
		}
		return pos.SetQuantity(t, lineID, qty, r.available(productID, current))
	})
}

func (r *Register) RemoveLine(tabID, lineID string) (pos.TabState, error) {
	return r.mutate(tabID, func(t pos.TabState) (pos.TabState, error) {
		return pos.RemoveLine(t, lineID)
	})
}

func (r *Register) SetLineDiscount(tabID, lineID string, typ pos.DiscountType, value float64) (pos.TabState, error) {
	return r.mutate(tabID, func(t pos.TabState) (pos.TabState, error) {
		return pos.SetLineDiscount(t, lineID, typ, value)
	})
}

func (r *Register) SetOrderDiscount(tabID string, d pos.Discount) (pos.TabState, error) {
	return r.mutate(tabID, func(t pos.TabState) (pos.TabState, error) {
		return pos.SetOrderDiscount(t, d)
	})
}

func (r *Register) SetTaxRate(tabID string, rate float64) (pos.TabState, error) {
	return r.mutate(tabID, func(t pos.TabState) (pos.TabState, error) {
		return pos.SetTaxRate(t, rate)
	})
}

func (r *Register) SetCustomer(tabID, customerID string) (pos.TabState, error) {
	return r.mutate(tabID, func(t pos.TabState) (pos.TabState, error) {
		return pos.SetCustomer(t, customerID), nil
	})
}

// SetDefaultTax changes the rate new and reset tabs start with.
func (r *Register) SetDefaultTax(rate float64) {
	r.mu.Lock()
	r.defaultTax = rate
	r.mu.Unlock()
}

// beginCheckout marks a tab as being checked out so a double submit is refused.
func (r *Register) beginCheckout(tabID string) (pos.TabState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tabs[tabID]
	if !ok {
		return pos.TabState{}, ErrUnknownTab
	}
	if r.checkingOut[tabID] {
		return pos.TabState{}, ErrCheckoutInProgress
	}
	r.checkingOut[tabID] = true
	return t.Clone(), nil
}

// endCheckout releases the tab and, after a successful sale, resets it.
func (r *Register) endCheckout(tabID string, sold bool) pos.TabState {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.checkingOut, tabID)
	t, ok := r.tabs[tabID]
	if !ok {
		return pos.TabState{}
	}
	if sold {
		*t = r.reset(*t)
		t.UI = pos.UIFlags{FocusBarcode: true}
	}
	return t.Clone()
}

// Manager hands out one Register per cashier.
type Manager struct {
	mu        sync.Mutex
	registers map[string]*Register
	stock     *StockCache
	settings  SettingsSource
}

func NewManager(stock *StockCache, settings SettingsSource) *Manager {
	return &Manager{
		registers: make(map[string]*Register),
		stock:     stock,
		settings:  settings,
	}
}

// Get returns the cashier's register, creating it on first use with the
// business default tax rate.
func (m *Manager) Get(ctx context.Context, userID string) *Register {
	m.mu.Lock()
	r, ok := m.registers[userID]
	m.mu.Unlock()
	if ok {
		return r
	}

	tax := m.defaultTax(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.registers[userID]; ok {
		return r
	}
	r = NewRegister(m.stock, tax)
	m.registers[userID] = r
	return r
}

func (m *Manager) defaultTax(ctx context.Context) float64 {
	if m.settings == nil {
		return 0
	}
	rate, err := m.settings.DefaultTaxRate(ctx)
	if err != nil {
		logger.LogWarn("register", "defaultTax", "falling back to zero tax", nil, err)
		return 0
	}
	return rate
}

// Refresh reloads the default tax rate into every open register.
func (m *Manager) Refresh(ctx context.Context) {
	tax := m.defaultTax(ctx)
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.registers {
		r.SetDefaultTax(tax)
	}
}
