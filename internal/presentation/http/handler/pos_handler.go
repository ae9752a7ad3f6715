package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/tillpoint-api/internal/application/register"
	"github.com/sangkips/tillpoint-api/internal/domain/pos"
	"github.com/sangkips/tillpoint-api/internal/presentation/http/dto/request"
	"github.com/sangkips/tillpoint-api/internal/presentation/http/dto/response"
)

// POSHandler drives each cashier's register: tabs, scanning, pricing
// changes, held bills and checkout.
type POSHandler struct {
	registers *register.Manager
	resolver  *register.Resolver
	assembler *register.Assembler
	stock     *register.StockCache
}

func NewPOSHandler(registers *register.Manager, resolver *register.Resolver, assembler *register.Assembler, stock *register.StockCache) *POSHandler {
	return &POSHandler{
		registers: registers,
		resolver:  resolver,
		assembler: assembler,
		stock:     stock,
	}
}

// tabBody is a tab together with its computed totals
type tabBody struct {
	Tab    pos.TabState `json:"tab"`
	Totals pos.Totals   `json:"totals"`
}

func withTotals(t pos.TabState) tabBody {
	return tabBody{Tab: t, Totals: pos.ComputeTotals(t)}
}

// till returns the calling cashier's register
func (h *POSHandler) till(c *gin.Context) (*register.Register, string, bool) {
	userID, ok := requireUser(c)
	if !ok {
		return nil, "", false
	}
	return h.registers.Get(c.Request.Context(), userID.String()), userID.String(), true
}

// respondTab writes the tab or maps err
func respondTab(c *gin.Context, message string, t pos.TabState, err error) {
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, message, withTotals(t))
}

func (h *POSHandler) ListTabs(c *gin.Context) {
	reg, _, ok := h.till(c)
	if !ok {
		return
	}

	tabs := reg.Tabs()
	out := make([]tabBody, 0, len(tabs))
	for _, t := range tabs {
		out = append(out, withTotals(t))
	}
	response.OK(c, "Tabs retrieved successfully", gin.H{
		"active_tab_id": reg.ActiveTabID(),
		"tabs":          out,
	})
}

func (h *POSHandler) CreateTab(c *gin.Context) {
	reg, _, ok := h.till(c)
	if !ok {
		return
	}

	t, err := reg.Tab(reg.CreateTab())
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, "Tab created successfully", withTotals(t))
}

func (h *POSHandler) GetTab(c *gin.Context) {
	reg, _, ok := h.till(c)
	if !ok {
		return
	}
	t, err := reg.Tab(c.Param("tabId"))
	respondTab(c, "Tab retrieved successfully", t, err)
}

func (h *POSHandler) ActivateTab(c *gin.Context) {
	reg, _, ok := h.till(c)
	if !ok {
		return
	}
	t, err := reg.SetActiveTab(c.Param("tabId"))
	respondTab(c, "Tab activated", t, err)
}

// PatchTab merges a partial tab update, used for UI flags and bulk edits
func (h *POSHandler) PatchTab(c *gin.Context) {
	reg, _, ok := h.till(c)
	if !ok {
		return
	}
	var patch pos.TabPatch
	if !bindJSON(c, &patch) {
		return
	}
	t, err := reg.UpdateTab(c.Param("tabId"), patch)
	respondTab(c, "Tab updated", t, err)
}

// CloseTab discards a tab. The register always keeps at least one open.
func (h *POSHandler) CloseTab(c *gin.Context) {
	reg, _, ok := h.till(c)
	if !ok {
		return
	}
	if err := reg.CloseTab(c.Param("tabId")); err != nil {
		fail(c, err)
		return
	}
	response.OK(c, "Tab closed", withTotals(reg.ActiveTab()))
}

// Scan resolves barcode, IMEI or serial input against the tab's cart
func (h *POSHandler) Scan(c *gin.Context) {
	reg, _, ok := h.till(c)
	if !ok {
		return
	}
	var req request.ScanRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.resolver.Scan(c.Request.Context(), reg, c.Param("tabId"), req.Code, req.Commit)
	if err != nil {
		fail(c, err)
		return
	}

	body := gin.H{"result": result}
	if result.Tab != nil {
		body["totals"] = pos.ComputeTotals(*result.Tab)
	}
	response.OK(c, "Scan processed", body)
}

func (h *POSHandler) SelectIdentifier(c *gin.Context) {
	reg, _, ok := h.till(c)
	if !ok {
		return
	}
	var req request.SelectIdentifierRequest
	if !bindJSON(c, &req) {
		return
	}
	t, err := h.resolver.SelectIdentifier(c.Request.Context(), reg, c.Param("tabId"), req.ProductID, req.Value)
	respondTab(c, "Unit added to cart", t, err)
}

func (h *POSHandler) SetQuantity(c *gin.Context) {
	reg, _, ok := h.till(c)
	if !ok {
		return
	}
	var req request.QuantityRequest
	if !bindJSON(c, &req) {
		return
	}
	t, err := reg.SetQuantity(c.Param("tabId"), c.Param("lineId"), req.Quantity)
	respondTab(c, "Quantity updated", t, err)
}

func (h *POSHandler) RemoveLine(c *gin.Context) {
	reg, _, ok := h.till(c)
	if !ok {
		return
	}
	t, err := reg.RemoveLine(c.Param("tabId"), c.Param("lineId"))
	respondTab(c, "Line removed", t, err)
}

func (h *POSHandler) SetLineDiscount(c *gin.Context) {
	reg, _, ok := h.till(c)
	if !ok {
		return
	}
	var req request.DiscountRequest
	if !bindJSON(c, &req) {
		return
	}
	t, err := reg.SetLineDiscount(c.Param("tabId"), c.Param("lineId"), pos.DiscountType(req.Type), req.Value)
	respondTab(c, "Line discount applied", t, err)
}

func (h *POSHandler) SetOrderDiscount(c *gin.Context) {
	reg, _, ok := h.till(c)
	if !ok {
		return
	}
	var req request.DiscountRequest
	if !bindJSON(c, &req) {
		return
	}
	t, err := reg.SetOrderDiscount(c.Param("tabId"), pos.Discount{Type: pos.DiscountType(req.Type), Value: req.Value})
	respondTab(c, "Order discount applied", t, err)
}

func (h *POSHandler) SetTaxRate(c *gin.Context) {
	reg, _, ok := h.till(c)
	if !ok {
		return
	}
	var req request.TaxRateRequest
	if !bindJSON(c, &req) {
		return
	}
	t, err := reg.SetTaxRate(c.Param("tabId"), req.TaxRate)
	respondTab(c, "Tax rate updated", t, err)
}

// SetCustomer attaches a customer; an empty id detaches
func (h *POSHandler) SetCustomer(c *gin.Context) {
	reg, _, ok := h.till(c)
	if !ok {
		return
	}
	var req request.CustomerSelectRequest
	if !bindJSON(c, &req) {
		return
	}
	t, err := reg.SetCustomer(c.Param("tabId"), req.CustomerID)
	respondTab(c, "Customer updated", t, err)
}

func (h *POSHandler) Hold(c *gin.Context) {
	reg, _, ok := h.till(c)
	if !ok {
		return
	}
	var req request.HoldRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	bill, err := reg.Hold(c.Param("tabId"), req.Label)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, "Bill held", bill)
}

func (h *POSHandler) Unhold(c *gin.Context) {
	reg, _, ok := h.till(c)
	if !ok {
		return
	}
	t, err := reg.Unhold(c.Param("tabId"))
	respondTab(c, "Bill restored", t, err)
}

func (h *POSHandler) HeldBills(c *gin.Context) {
	reg, _, ok := h.till(c)
	if !ok {
		return
	}
	response.OK(c, "Held bills retrieved successfully", reg.HeldBills())
}

// Checkout settles the tab. Receipt channels that fail are reported per
// channel; the sale itself stands.
func (h *POSHandler) Checkout(c *gin.Context) {
	reg, userID, ok := h.till(c)
	if !ok {
		return
	}
	var req register.PaymentInput
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.assembler.Checkout(c.Request.Context(), reg, c.Param("tabId"), userID, req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, "Checkout completed", result)
}

// Search merges product and identifier matches for the lookup box
func (h *POSHandler) Search(c *gin.Context) {
	hits, err := h.resolver.Search(c.Request.Context(), c.Query("q"), queryInt(c, "limit", 20))
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, "Search completed", hits)
}

// Stock returns the register's cached stock snapshot and when it was taken
func (h *POSHandler) Stock(c *gin.Context) {
	levels, at := h.stock.Snapshot()
	var refreshed *time.Time
	if !at.IsZero() {
		refreshed = &at
	}
	response.OK(c, "Stock snapshot retrieved", gin.H{
		"levels":       levels,
		"refreshed_at": refreshed,
	})
}
