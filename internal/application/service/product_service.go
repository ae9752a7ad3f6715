package service

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tillpoint-api/internal/domain/entity"
	"github.com/sangkips/tillpoint-api/internal/domain/enum"
	"github.com/sangkips/tillpoint-api/internal/domain/repository"
	"github.com/sangkips/tillpoint-api/internal/infrastructure/cache"
	"github.com/sangkips/tillpoint-api/pkg/apperror"
	"github.com/sangkips/tillpoint-api/pkg/money"
	"github.com/sangkips/tillpoint-api/pkg/pagination"
	"github.com/sangkips/tillpoint-api/pkg/utils"
	"github.com/xuri/excelize/v2"
)

// ProductService handles product-related operations
type ProductService struct {
	productRepo repository.ProductRepository
	cache       *cache.Cache
}

// NewProductService creates a new product service
func NewProductService(productRepo repository.ProductRepository, c *cache.Cache) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		cache:       c,
	}
}

// CreateProductInput represents the create product input
type CreateProductInput struct {
	UserID         uuid.UUID
	Name           string
	Barcode        *string
	Code           string
	Category       string
	Quantity       int
	QuantityAlert  int
	BuyingPrice    float64
	SellingPrice   float64
	IdentifierType enum.IdentifierType
	Notes          *string
}

// CreateProduct creates a new product
func (s *ProductService) CreateProduct(ctx context.Context, input *CreateProductInput) (*entity.Product, error) {
	code := strings.TrimSpace(input.Code)
	if code == "" {
		code = utils.GenerateProductCode()
	}

	existing, err := s.productRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Product code already exists")
	}

	product := &entity.Product{
		UserID:         input.UserID,
		Name:           strings.TrimSpace(input.Name),
		Barcode:        trimmedOrNil(input.Barcode),
		Code:           code,
		Category:       strings.TrimSpace(input.Category),
		Quantity:       input.Quantity,
		QuantityAlert:  input.QuantityAlert,
		BuyingPrice:    money.ToCents(input.BuyingPrice),
		SellingPrice:   money.ToCents(input.SellingPrice),
		IdentifierType: input.IdentifierType,
		Notes:          input.Notes,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	s.invalidateStock(ctx)

	return s.productRepo.GetByID(ctx, product.ID)
}

// GetProduct retrieves a product by ID
func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

// GetByBarcode resolves a scanned code to a product. The product code is
// accepted when no barcode matches.
func (s *ProductService) GetByBarcode(ctx context.Context, code string) (*entity.Product, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperror.NewBadRequestError("Barcode is required")
	}
	product, err := s.productRepo.GetByBarcode(ctx, code)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

// SearchProducts runs the fuzzy name/code/barcode search used by the register
func (s *ProductService) SearchProducts(ctx context.Context, query string, limit int) ([]entity.Product, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.productRepo.Search(ctx, strings.TrimSpace(query), limit)
}

// ListProducts lists products with filtering
func (s *ProductService) ListProducts(ctx context.Context, params *repository.ProductFilterParams) (*pagination.PaginatedResult[entity.Product], error) {
	products, total, err := s.productRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(products, pag), nil
}

// ListProductsWithCursor lists products with cursor-based pagination
func (s *ProductService) ListProductsWithCursor(ctx context.Context, params *repository.ProductCursorFilterParams) (*pagination.CursorPaginatedResult[entity.Product], error) {
	products, err := s.productRepo.ListWithCursor(ctx, params)
	if err != nil {
		return nil, err
	}

	cursorPag, items := pagination.NewCursorPagination(products, params.Cursor.Limit,
		func(p entity.Product) string { return p.ID.String() },
		func(p entity.Product) time.Time { return p.CreatedAt },
	)
	cursorPag.HasPrev = params.Cursor.Cursor != ""

	return pagination.NewCursorPaginatedResult(items, cursorPag), nil
}

// UpdateProductInput represents the update product input
type UpdateProductInput struct {
	ID             uuid.UUID
	Name           *string
	Barcode        *string
	Code           *string
	Category       *string
	Quantity       *int
	QuantityAlert  *int
	BuyingPrice    *float64
	SellingPrice   *float64
	IdentifierType *enum.IdentifierType
	Notes          *string
}

// UpdateProduct updates a product
func (s *ProductService) UpdateProduct(ctx context.Context, input *UpdateProductInput) (*entity.Product, error) {
	product, err := s.GetProduct(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Code != nil && *input.Code != product.Code {
		existing, err := s.productRepo.GetByCode(ctx, *input.Code)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != product.ID {
			return nil, apperror.NewConflictError("Product code already exists")
		}
		product.Code = *input.Code
	}

	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Barcode != nil {
		product.Barcode = trimmedOrNil(input.Barcode)
	}
	if input.Category != nil {
		product.Category = strings.TrimSpace(*input.Category)
	}
	if input.Quantity != nil {
		product.Quantity = *input.Quantity
	}
	if input.QuantityAlert != nil {
		product.QuantityAlert = *input.QuantityAlert
	}
	if input.BuyingPrice != nil {
		product.BuyingPrice = money.ToCents(*input.BuyingPrice)
	}
	if input.SellingPrice != nil {
		product.SellingPrice = money.ToCents(*input.SellingPrice)
	}
	if input.IdentifierType != nil {
		product.IdentifierType = *input.IdentifierType
	}
	if input.Notes != nil {
		product.Notes = input.Notes
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	s.invalidateStock(ctx)

	return s.productRepo.GetByID(ctx, product.ID)
}

// DeleteProduct deletes a product
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateStock(ctx)
	return nil
}

// GetLowStockProducts returns products at or below their alert quantity
func (s *ProductService) GetLowStockProducts(ctx context.Context) ([]entity.Product, error) {
	return s.productRepo.GetLowStock(ctx)
}

func (s *ProductService) invalidateStock(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Delete(ctx, stockLevelsKey)
	}
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}

// ImportProductRow represents a single row from the import sheet
type ImportProductRow struct {
	Name           string
	Barcode        string
	Code           string
	Category       string
	Quantity       int
	QuantityAlert  int
	BuyingPrice    float64
	SellingPrice   float64
	IdentifierType string
	Notes          string
}

// ImportResult contains the result of a product import operation
type ImportResult struct {
	TotalRows  int              `json:"total_rows"`
	Successful int              `json:"successful"`
	Failed     int              `json:"failed"`
	Errors     []ImportRowError `json:"errors,omitempty"`
}

// ImportRowError describes an error for a specific row during import
type ImportRowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

var importColumns = []string{
	"name", "barcode", "code", "category", "quantity", "quantity_alert",
	"buying_price", "selling_price", "identifier_type", "notes",
}

// ParseImportSheet reads the first sheet of an xlsx workbook. Row 1 must be a
// header naming the columns; unknown columns are ignored.
func ParseImportSheet(r io.Reader) ([]ImportProductRow, []ImportRowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, apperror.NewBadRequestError("Unable to open spreadsheet: " + err.Error())
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, apperror.NewBadRequestError("Spreadsheet has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, apperror.NewBadRequestError("Unable to read sheet: " + err.Error())
	}
	if len(rows) < 2 {
		return nil, nil, apperror.NewBadRequestError("Spreadsheet has no data rows")
	}

	index := make(map[string]int)
	for i, h := range rows[0] {
		index[strings.ToLower(strings.ReplaceAll(strings.TrimSpace(h), " ", "_"))] = i
	}
	if _, ok := index["name"]; !ok {
		return nil, nil, apperror.NewBadRequestError("Header row must contain a name column")
	}

	var parsed []ImportProductRow
	var rowErrors []ImportRowError
	for i, row := range rows[1:] {
		rowNum := i + 2
		cell := func(col string) string {
			idx, ok := index[col]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}
		if cell("name") == "" && cell("code") == "" && cell("barcode") == "" {
			continue
		}

		out := ImportProductRow{
			Name:           cell("name"),
			Barcode:        cell("barcode"),
			Code:           cell("code"),
			Category:       cell("category"),
			IdentifierType: cell("identifier_type"),
			Notes:          cell("notes"),
		}
		var bad bool
		for _, col := range importColumns[4:8] {
			raw := cell(col)
			if raw == "" {
				continue
			}
			switch col {
			case "quantity", "quantity_alert":
				n, err := strconv.Atoi(raw)
				if err != nil {
					rowErrors = append(rowErrors, ImportRowError{Row: rowNum, Field: col, Message: "Not a whole number"})
					bad = true
					continue
				}
				if col == "quantity" {
					out.Quantity = n
				} else {
					out.QuantityAlert = n
				}
			default:
				v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
				if err != nil {
					rowErrors = append(rowErrors, ImportRowError{Row: rowNum, Field: col, Message: "Not a number"})
					bad = true
					continue
				}
				if col == "buying_price" {
					out.BuyingPrice = v
				} else {
					out.SellingPrice = v
				}
			}
		}
		if !bad {
			parsed = append(parsed, out)
		}
	}
	return parsed, rowErrors, nil
}

// ImportProducts validates and bulk-creates products from parsed import rows.
// Row numbers in errors are spreadsheet rows, so the first data row is 2.
func (s *ProductService) ImportProducts(ctx context.Context, userID uuid.UUID, rows []ImportProductRow) (*ImportResult, error) {
	result := &ImportResult{TotalRows: len(rows)}
	var rowErrors []ImportRowError

	seenCodes := make(map[string]int)
	seenBarcodes := make(map[string]int)

	var valid []entity.Product

	for i, row := range rows {
		rowNum := i + 2

		if strings.TrimSpace(row.Name) == "" {
			rowErrors = append(rowErrors, ImportRowError{Row: rowNum, Field: "name", Message: "Name is required"})
			continue
		}
		if row.Quantity < 0 || row.SellingPrice < 0 || row.BuyingPrice < 0 {
			rowErrors = append(rowErrors, ImportRowError{Row: rowNum, Field: "quantity", Message: "Quantities and prices must not be negative"})
			continue
		}

		idType, ok := enum.ParseIdentifierType(row.IdentifierType)
		if !ok && row.IdentifierType != "" {
			rowErrors = append(rowErrors, ImportRowError{Row: rowNum, Field: "identifier_type", Message: "Expected none, imei or serial"})
			continue
		}

		code := strings.TrimSpace(row.Code)
		if code == "" {
			code = utils.GenerateProductCode()
		}
		if prev, exists := seenCodes[code]; exists {
			rowErrors = append(rowErrors, ImportRowError{
				Row:     rowNum,
				Field:   "code",
				Message: fmt.Sprintf("Duplicate code '%s' (same as row %d)", code, prev),
			})
			continue
		}
		existing, err := s.productRepo.GetByCode(ctx, code)
		if err != nil {
			rowErrors = append(rowErrors, ImportRowError{Row: rowNum, Field: "code", Message: "Error checking code: " + err.Error()})
			continue
		}
		if existing != nil {
			rowErrors = append(rowErrors, ImportRowError{
				Row:     rowNum,
				Field:   "code",
				Message: fmt.Sprintf("Product code '%s' already exists", code),
			})
			continue
		}

		var barcode *string
		if b := strings.TrimSpace(row.Barcode); b != "" {
			if prev, exists := seenBarcodes[b]; exists {
				rowErrors = append(rowErrors, ImportRowError{
					Row:     rowNum,
					Field:   "barcode",
					Message: fmt.Sprintf("Duplicate barcode '%s' (same as row %d)", b, prev),
				})
				continue
			}
			seenBarcodes[b] = rowNum
			barcode = &b
		}
		seenCodes[code] = rowNum

		product := entity.Product{
			UserID:         userID,
			Name:           strings.TrimSpace(row.Name),
			Barcode:        barcode,
			Code:           code,
			Category:       strings.TrimSpace(row.Category),
			Quantity:       row.Quantity,
			QuantityAlert:  row.QuantityAlert,
			BuyingPrice:    money.ToCents(row.BuyingPrice),
			SellingPrice:   money.ToCents(row.SellingPrice),
			IdentifierType: idType,
		}
		if row.Notes != "" {
			notes := row.Notes
			product.Notes = &notes
		}
		valid = append(valid, product)
	}

	if len(valid) > 0 {
		if err := s.productRepo.CreateBatch(ctx, valid); err != nil {
			return nil, apperror.NewAppError(500, "Failed to import products: "+err.Error())
		}
		s.invalidateStock(ctx)
	}

	result.Successful = len(valid)
	result.Failed = len(rowErrors)
	result.Errors = rowErrors
	return result, nil
}
