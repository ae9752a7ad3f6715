package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/tillpoint-api/internal/application/service"
	"github.com/sangkips/tillpoint-api/internal/presentation/http/dto/request"
	"github.com/sangkips/tillpoint-api/internal/presentation/http/dto/response"
	"github.com/sangkips/tillpoint-api/pkg/pagination"
)

// ContactHandler handles customer contacts
type ContactHandler struct {
	customerService *service.CustomerService
}

// NewContactHandler creates a new contact handler
func NewContactHandler(customerService *service.CustomerService) *ContactHandler {
	return &ContactHandler{customerService: customerService}
}

// List handles listing contacts (supports both page-based and cursor-based pagination)
func (h *ContactHandler) List(c *gin.Context) {
	search := c.Query("search")

	if cursorRequested(c) {
		params := &pagination.CursorParams{
			Cursor:    c.Query("cursor"),
			Direction: pagination.CursorDirection(c.DefaultQuery("direction", "next")),
			Limit:     queryInt(c, "limit", 15),
		}
		result, err := h.customerService.ListCustomersWithCursor(c.Request.Context(), params, search)
		if err != nil {
			fail(c, err)
			return
		}
		response.SuccessWithCursor(c, http.StatusOK, "Contacts retrieved successfully", result)
		return
	}

	params := &pagination.PaginationParams{
		Page:    queryInt(c, "page", 1),
		PerPage: queryInt(c, "per_page", 15),
	}
	result, err := h.customerService.ListCustomers(c.Request.Context(), params, search)
	if err != nil {
		fail(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Contacts retrieved successfully", result)
}

func (h *ContactHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req request.ContactRequest
	if !bindJSON(c, &req) {
		return
	}

	customer, err := h.customerService.CreateCustomer(c.Request.Context(), &service.CustomerInput{
		UserID:  userID,
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		TaxPIN:  req.TaxPIN,
		Address: req.Address,
	})
	if err != nil {
		fail(c, err)
		return
	}

	response.Created(c, "Contact created successfully", customer)
}

func (h *ContactHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id", "contact")
	if !ok {
		return
	}

	customer, err := h.customerService.GetCustomer(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	response.OK(c, "Contact retrieved successfully", customer)
}

func (h *ContactHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id", "contact")
	if !ok {
		return
	}

	var req request.ContactRequest
	if !bindJSON(c, &req) {
		return
	}

	customer, err := h.customerService.UpdateCustomer(c.Request.Context(), id, &service.CustomerInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		TaxPIN:  req.TaxPIN,
		Address: req.Address,
	})
	if err != nil {
		fail(c, err)
		return
	}

	response.OK(c, "Contact updated successfully", customer)
}

func (h *ContactHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id", "contact")
	if !ok {
		return
	}

	if err := h.customerService.DeleteCustomer(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}

	response.NoContent(c)
}

// Account lists the contact's open invoices and what is still owed
func (h *ContactHandler) Account(c *gin.Context) {
	id, ok := uuidParam(c, "id", "contact")
	if !ok {
		return
	}

	account, err := h.customerService.GetAccount(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	response.OK(c, "Contact account retrieved successfully", account)
}
