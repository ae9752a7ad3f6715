package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/tillpoint-api/internal/application/service"
	"github.com/sangkips/tillpoint-api/internal/domain/enum"
	"github.com/sangkips/tillpoint-api/internal/domain/repository"
	"github.com/sangkips/tillpoint-api/internal/presentation/http/dto/request"
	"github.com/sangkips/tillpoint-api/internal/presentation/http/dto/response"
	"github.com/sangkips/tillpoint-api/pkg/pagination"
)

// ProductHandler handles product-related HTTP requests
type ProductHandler struct {
	productService *service.ProductService
	maxUpload      int64
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService *service.ProductService, maxUpload int64) *ProductHandler {
	return &ProductHandler{productService: productService, maxUpload: maxUpload}
}

// List handles listing products (supports both page-based and cursor-based pagination)
func (h *ProductHandler) List(c *gin.Context) {
	var filter request.ProductFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	if cursorRequested(c) {
		h.listWithCursor(c, filter)
		return
	}

	params := &repository.ProductFilterParams{
		Pagination: &pagination.PaginationParams{
			Page:    filter.Page,
			PerPage: filter.PerPage,
		},
		Search:    filter.Search,
		Category:  filter.Category,
		LowStock:  filter.LowStock,
		SortBy:    filter.SortBy,
		SortOrder: filter.SortOrder,
	}

	result, err := h.productService.ListProducts(c.Request.Context(), params)
	if err != nil {
		fail(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Products retrieved successfully", result)
}

func (h *ProductHandler) listWithCursor(c *gin.Context, filter request.ProductFilterRequest) {
	limit := 15
	if filter.Limit > 0 {
		limit = filter.Limit
	}

	params := &repository.ProductCursorFilterParams{
		Cursor: &pagination.CursorParams{
			Cursor:    c.Query("cursor"),
			Direction: pagination.CursorDirection(c.DefaultQuery("direction", "next")),
			Limit:     limit,
		},
		Search:   filter.Search,
		Category: filter.Category,
		LowStock: filter.LowStock,
	}

	result, err := h.productService.ListProductsWithCursor(c.Request.Context(), params)
	if err != nil {
		fail(c, err)
		return
	}

	response.SuccessWithCursor(c, http.StatusOK, "Products retrieved successfully", result)
}

// Search returns a bare product list for the register's lookups
func (h *ProductHandler) Search(c *gin.Context) {
	products, err := h.productService.SearchProducts(c.Request.Context(), c.Query("q"), queryInt(c, "limit", 20))
	if err != nil {
		fail(c, err)
		return
	}

	response.OK(c, "Products retrieved successfully", products)
}

func (h *ProductHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req request.CreateProductRequest
	if !bindJSON(c, &req) {
		return
	}
	idType, _ := enum.ParseIdentifierType(req.IdentifierType)

	product, err := h.productService.CreateProduct(c.Request.Context(), &service.CreateProductInput{
		UserID:         userID,
		Name:           req.Name,
		Barcode:        req.Barcode,
		Code:           req.Code,
		Category:       req.Category,
		Quantity:       req.Quantity,
		QuantityAlert:  req.QuantityAlert,
		BuyingPrice:    req.BuyingPrice,
		SellingPrice:   req.SellingPrice,
		IdentifierType: idType,
		Notes:          req.Notes,
	})
	if err != nil {
		fail(c, err)
		return
	}

	response.Created(c, "Product created successfully", product)
}

func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id", "product")
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	response.OK(c, "Product retrieved successfully", product)
}

// GetByBarcode matches a barcode, falling back to the product code
func (h *ProductHandler) GetByBarcode(c *gin.Context) {
	product, err := h.productService.GetByBarcode(c.Request.Context(), c.Param("code"))
	if err != nil {
		fail(c, err)
		return
	}

	response.OK(c, "Product retrieved successfully", product)
}

func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id", "product")
	if !ok {
		return
	}

	var req request.UpdateProductRequest
	if !bindJSON(c, &req) {
		return
	}

	input := &service.UpdateProductInput{
		ID:            id,
		Name:          req.Name,
		Barcode:       req.Barcode,
		Code:          req.Code,
		Category:      req.Category,
		Quantity:      req.Quantity,
		QuantityAlert: req.QuantityAlert,
		BuyingPrice:   req.BuyingPrice,
		SellingPrice:  req.SellingPrice,
		Notes:         req.Notes,
	}
	if req.IdentifierType != nil {
		idType, _ := enum.ParseIdentifierType(*req.IdentifierType)
		input.IdentifierType = &idType
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), input)
	if err != nil {
		fail(c, err)
		return
	}

	response.OK(c, "Product updated successfully", product)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id", "product")
	if !ok {
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}

	response.NoContent(c)
}

func (h *ProductHandler) GetLowStock(c *gin.Context) {
	products, err := h.productService.GetLowStockProducts(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	response.OK(c, "Low stock products retrieved successfully", products)
}

// Import bulk-creates products from an uploaded .xlsx workbook. Rows that
// fail to parse are reported alongside rows the service rejected.
func (h *ProductHandler) Import(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "An .xlsx file is required in the file field")
		return
	}
	if !strings.HasSuffix(strings.ToLower(header.Filename), ".xlsx") {
		response.BadRequest(c, "Only .xlsx workbooks can be imported")
		return
	}
	if h.maxUpload > 0 && header.Size > h.maxUpload {
		response.BadRequest(c, "File is too large")
		return
	}

	file, err := header.Open()
	if err != nil {
		response.BadRequest(c, "Unable to read uploaded file")
		return
	}
	defer file.Close()

	rows, parseErrors, err := service.ParseImportSheet(file)
	if err != nil {
		fail(c, err)
		return
	}

	result, err := h.productService.ImportProducts(c.Request.Context(), userID, rows)
	if err != nil {
		fail(c, err)
		return
	}
	result.TotalRows += len(parseErrors)
	result.Failed += len(parseErrors)
	result.Errors = append(parseErrors, result.Errors...)

	response.OK(c, "Import completed", result)
}

// InventoryHandler serves stock levels and stock changes
type InventoryHandler struct {
	inventoryService *service.InventoryService
}

func NewInventoryHandler(inventoryService *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

// Levels returns product id to on-hand quantity
func (h *InventoryHandler) Levels(c *gin.Context) {
	levels, err := h.inventoryService.StockLevels(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	out := make(map[string]int, len(levels))
	for id, qty := range levels {
		out[id.String()] = qty
	}
	response.OK(c, "Stock levels retrieved successfully", out)
}

func (h *InventoryHandler) Deduct(c *gin.Context) {
	var req request.StockChangeRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.inventoryService.Deduct(c.Request.Context(), uuid.MustParse(req.ProductID), req.Quantity)
	if err != nil {
		fail(c, err)
		return
	}

	response.OK(c, "Stock deducted successfully", product)
}

func (h *InventoryHandler) Adjust(c *gin.Context) {
	var req request.StockChangeRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.inventoryService.Adjust(c.Request.Context(), uuid.MustParse(req.ProductID), req.Quantity)
	if err != nil {
		fail(c, err)
		return
	}

	response.OK(c, "Stock adjusted successfully", product)
}

// IdentifierHandler manages IMEI and serial number pools
type IdentifierHandler struct {
	identifierService *service.IdentifierService
}

func NewIdentifierHandler(identifierService *service.IdentifierService) *IdentifierHandler {
	return &IdentifierHandler{identifierService: identifierService}
}

func identifierTypeParam(c *gin.Context) (enum.IdentifierType, bool) {
	idType, ok := enum.ParseIdentifierType(c.Param("type"))
	if !ok || !idType.Serialized() {
		response.BadRequest(c, "Identifier type must be imei or serial")
		return 0, false
	}
	return idType, true
}

// List returns a product's units. Sold units are included only on request.
func (h *IdentifierHandler) List(c *gin.Context) {
	idType, ok := identifierTypeParam(c)
	if !ok {
		return
	}
	productID, ok := uuidParam(c, "productId", "product")
	if !ok {
		return
	}

	identifiers, err := h.identifierService.List(c.Request.Context(), idType, productID, c.Query("include_sold") == "true")
	if err != nil {
		fail(c, err)
		return
	}

	response.OK(c, "Identifiers retrieved successfully", identifiers)
}

func (h *IdentifierHandler) BulkAdd(c *gin.Context) {
	idType, ok := identifierTypeParam(c)
	if !ok {
		return
	}
	productID, ok := uuidParam(c, "productId", "product")
	if !ok {
		return
	}

	var req request.BulkIdentifiersRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.identifierService.BulkAdd(c.Request.Context(), idType, productID, req.Values)
	if err != nil {
		fail(c, err)
		return
	}

	response.Created(c, "Identifiers added successfully", result)
}

func (h *IdentifierHandler) Get(c *gin.Context) {
	identifier, err := h.identifierService.Get(c.Request.Context(), c.Param("value"))
	if err != nil {
		fail(c, err)
		return
	}

	response.OK(c, "Identifier retrieved successfully", identifier)
}

func (h *IdentifierHandler) Search(c *gin.Context) {
	identifiers, err := h.identifierService.Search(c.Request.Context(), c.Query("q"), queryInt(c, "limit", 20))
	if err != nil {
		fail(c, err)
		return
	}

	response.OK(c, "Identifiers retrieved successfully", identifiers)
}

func (h *IdentifierHandler) MarkSold(c *gin.Context) {
	var req request.MarkSoldRequest
	if !bindJSON(c, &req) {
		return
	}

	var invoiceID *uuid.UUID
	if req.InvoiceID != "" {
		id := uuid.MustParse(req.InvoiceID)
		invoiceID = &id
	}

	identifier, err := h.identifierService.MarkSold(c.Request.Context(), req.Value, invoiceID)
	if err != nil {
		fail(c, err)
		return
	}

	response.OK(c, "Identifier marked as sold", identifier)
}
