package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/tillpoint-api/internal/application/service"
	"github.com/sangkips/tillpoint-api/internal/domain/enum"
	"github.com/sangkips/tillpoint-api/internal/domain/repository"
	"github.com/sangkips/tillpoint-api/internal/presentation/http/dto/request"
	"github.com/sangkips/tillpoint-api/internal/presentation/http/dto/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// CashbookHandler serves the cashbook with its running balance
type CashbookHandler struct {
	cashbookService *service.CashbookService
}

func NewCashbookHandler(cashbookService *service.CashbookService) *CashbookHandler {
	return &CashbookHandler{cashbookService: cashbookService}
}

// parseCashbookType accepts "Cash In"/"Cash Out" as well as the short in/out
func parseCashbookType(raw string) (enum.CashbookType, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "in":
		return enum.CashbookCashIn, true
	case "out":
		return enum.CashbookCashOut, true
	}
	return enum.ParseCashbookType(raw)
}

func cashbookFilter(c *gin.Context) (repository.CashbookFilter, bool) {
	start, end, ok := dateRange(c)
	if !ok {
		return repository.CashbookFilter{}, false
	}
	filter := repository.CashbookFilter{
		StartDate: start,
		EndDate:   end,
		Mode:      c.Query("mode"),
		Category:  c.Query("category"),
		Search:    c.Query("search"),
	}
	if raw := c.Query("type"); raw != "" {
		t, ok := parseCashbookType(raw)
		if !ok {
			response.BadRequest(c, "Type must be Cash In or Cash Out")
			return repository.CashbookFilter{}, false
		}
		filter.Type = &t
	}
	return filter, true
}

// List returns entries newest first, each carrying its running balance
func (h *CashbookHandler) List(c *gin.Context) {
	filter, ok := cashbookFilter(c)
	if !ok {
		return
	}

	view, err := h.cashbookService.List(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}

	response.OK(c, "Cashbook retrieved successfully", view)
}

func (h *CashbookHandler) Add(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req request.CashbookEntryRequest
	if !bindJSON(c, &req) {
		return
	}
	typ, ok := parseCashbookType(req.Type)
	if !ok {
		response.BadRequest(c, "Type must be Cash In or Cash Out")
		return
	}
	var date time.Time
	if req.Date != "" {
		date, _ = time.Parse("2006-01-02", req.Date)
	}

	entry, err := h.cashbookService.AddEntry(c.Request.Context(), &service.AddEntryInput{
		UserID:      userID,
		Date:        date,
		Particulars: req.Particulars,
		Voucher:     req.Voucher,
		Type:        typ,
		Amount:      req.Amount,
		Mode:        req.Mode,
		Category:    req.Category,
		IsReturn:    req.IsReturn,
	})
	if err != nil {
		fail(c, err)
		return
	}

	response.Created(c, "Cashbook entry added successfully", entry)
}

// Export downloads the filtered listing as an xlsx workbook
func (h *CashbookHandler) Export(c *gin.Context) {
	filter, ok := cashbookFilter(c)
	if !ok {
		return
	}

	data, err := h.cashbookService.Export(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}

	filename := fmt.Sprintf("cashbook-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}

// FinanceHandler serves income and expense records. The kind is fixed per
// route group.
type FinanceHandler struct {
	financeService *service.FinanceService
}

func NewFinanceHandler(financeService *service.FinanceService) *FinanceHandler {
	return &FinanceHandler{financeService: financeService}
}

func (h *FinanceHandler) List(kind enum.FinanceKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		start, end, ok := dateRange(c)
		if !ok {
			return
		}

		list, err := h.financeService.List(c.Request.Context(), kind, start, end)
		if err != nil {
			fail(c, err)
			return
		}

		response.OK(c, "Records retrieved successfully", list)
	}
}

func (h *FinanceHandler) Create(kind enum.FinanceKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUser(c)
		if !ok {
			return
		}

		var req request.FinanceRequest
		if !bindJSON(c, &req) {
			return
		}
		var date time.Time
		if req.Date != "" {
			date, _ = time.Parse("2006-01-02", req.Date)
		}

		record, err := h.financeService.Create(c.Request.Context(), &service.FinanceInput{
			UserID:      userID,
			Kind:        kind,
			Date:        date,
			Category:    req.Category,
			Description: req.Description,
			Amount:      req.Amount,
			Mode:        req.Mode,
			Voucher:     req.Voucher,
		})
		if err != nil {
			fail(c, err)
			return
		}

		response.Created(c, "Record created successfully", record)
	}
}

func (h *FinanceHandler) Delete(kind enum.FinanceKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := uuidParam(c, "id", "record")
		if !ok {
			return
		}

		if err := h.financeService.Delete(c.Request.Context(), kind, id); err != nil {
			fail(c, err)
			return
		}

		response.NoContent(c)
	}
}

// Summary totals income against expenses for the date range
func (h *FinanceHandler) Summary(c *gin.Context) {
	start, end, ok := dateRange(c)
	if !ok {
		return
	}

	summary, err := h.financeService.Summary(c.Request.Context(), start, end)
	if err != nil {
		fail(c, err)
		return
	}

	response.OK(c, "Finance summary retrieved successfully", summary)
}
