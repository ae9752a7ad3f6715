package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/tillpoint-api/internal/application/register"
	"github.com/sangkips/tillpoint-api/internal/application/service"
	"github.com/sangkips/tillpoint-api/internal/domain/enum"
	"github.com/sangkips/tillpoint-api/internal/domain/repository"
	"github.com/sangkips/tillpoint-api/internal/presentation/http/dto/request"
	"github.com/sangkips/tillpoint-api/internal/presentation/http/dto/response"
	"github.com/sangkips/tillpoint-api/pkg/pagination"
)

// InvoiceHandler handles invoice-related HTTP requests
type InvoiceHandler struct {
	invoiceService  *service.InvoiceService
	receiptService  *service.ReceiptService
	settingsService *service.SettingsService
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoiceService *service.InvoiceService, receiptService *service.ReceiptService, settingsService *service.SettingsService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService:  invoiceService,
		receiptService:  receiptService,
		settingsService: settingsService,
	}
}

// Create stores a checkout. The body is the register's invoice request, so a
// remote register and the browser client post the same shape.
func (h *InvoiceHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req register.InvoiceRequest
	if !bindJSON(c, &req) {
		return
	}
	req.UserID = userID.String()

	input, err := register.InvoiceInput(req)
	if err != nil {
		fail(c, err)
		return
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), input)
	if err != nil {
		fail(c, err)
		return
	}

	response.Created(c, "Invoice created successfully", invoice)
}

// List handles listing invoices (supports both page-based and cursor-based pagination)
func (h *InvoiceHandler) List(c *gin.Context) {
	var filter request.InvoiceFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}
	start, end, ok := dateRange(c)
	if !ok {
		return
	}

	var status *enum.PaymentStatus
	if filter.Status != "" {
		s, ok := enum.ParsePaymentStatus(filter.Status)
		if !ok {
			response.BadRequest(c, "Status must be Unpaid, Partial or Paid")
			return
		}
		status = &s
	}
	var customerID *uuid.UUID
	if filter.CustomerID != "" {
		id, err := uuid.Parse(filter.CustomerID)
		if err != nil {
			response.BadRequest(c, "Invalid customer ID")
			return
		}
		customerID = &id
	}

	if cursorRequested(c) {
		limit := 15
		if filter.Limit > 0 {
			limit = filter.Limit
		}
		result, err := h.invoiceService.ListInvoicesWithCursor(c.Request.Context(), &repository.InvoiceCursorFilterParams{
			Cursor: &pagination.CursorParams{
				Cursor:    c.Query("cursor"),
				Direction: pagination.CursorDirection(c.DefaultQuery("direction", "next")),
				Limit:     limit,
			},
			Search:     filter.Search,
			Status:     status,
			CustomerID: customerID,
			StartDate:  start,
			EndDate:    end,
		})
		if err != nil {
			fail(c, err)
			return
		}
		response.SuccessWithCursor(c, http.StatusOK, "Invoices retrieved successfully", result)
		return
	}

	result, err := h.invoiceService.ListInvoices(c.Request.Context(), &repository.InvoiceFilterParams{
		Pagination: &pagination.PaginationParams{
			Page:    filter.Page,
			PerPage: filter.PerPage,
		},
		Search:     filter.Search,
		Status:     status,
		CustomerID: customerID,
		StartDate:  start,
		EndDate:    end,
		SortBy:     filter.SortBy,
		SortOrder:  filter.SortOrder,
	})
	if err != nil {
		fail(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Invoices retrieved successfully", result)
}

func (h *InvoiceHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id", "invoice")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	response.OK(c, "Invoice retrieved successfully", invoice)
}

// Receipt renders the invoice in the requested format, or the business
// default when none is given. HTML formats are served as pages; thermal
// formats as raw ESC/POS bytes.
func (h *InvoiceHandler) Receipt(c *gin.Context) {
	id, ok := uuidParam(c, "id", "invoice")
	if !ok {
		return
	}

	var format enum.ReceiptFormat
	if raw := c.Query("format"); raw != "" {
		f, ok := enum.ParseReceiptFormat(raw)
		if !ok {
			response.BadRequest(c, "Format must be a4, advance-a4, thermal or advance-thermal")
			return
		}
		format = f
	} else {
		settings, err := h.settingsService.GetBusiness(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		format = settings.DefaultFormat
	}

	contentType, body, err := h.receiptService.Render(c.Request.Context(), id, format)
	if err != nil {
		fail(c, err)
		return
	}

	c.Data(http.StatusOK, contentType, body)
}

func (h *InvoiceHandler) Email(c *gin.Context) {
	id, ok := uuidParam(c, "id", "invoice")
	if !ok {
		return
	}

	var req request.EmailReceiptRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.invoiceService.SendEmail(c.Request.Context(), id, req.Email); err != nil {
		fail(c, err)
		return
	}

	response.OK(c, "Receipt emailed successfully", gin.H{"email": req.Email})
}

func (h *InvoiceHandler) SMS(c *gin.Context) {
	id, ok := uuidParam(c, "id", "invoice")
	if !ok {
		return
	}

	var req request.SMSReceiptRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.invoiceService.SendSMS(c.Request.Context(), id, req.Phone); err != nil {
		fail(c, err)
		return
	}

	response.OK(c, "Receipt sent by SMS", gin.H{"phone": req.Phone})
}

// Pay records a later payment against the invoice
func (h *InvoiceHandler) Pay(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "invoice")
	if !ok {
		return
	}

	var req request.PayNowRequest
	if !bindJSON(c, &req) {
		return
	}

	invoice, err := h.invoiceService.PayNow(c.Request.Context(), userID, id, req.Amount, req.Method)
	if err != nil {
		fail(c, err)
		return
	}

	response.OK(c, "Payment recorded successfully", invoice)
}
