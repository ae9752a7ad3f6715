package handler

import (
	"context"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/tillpoint-api/internal/application/service"
	"github.com/sangkips/tillpoint-api/internal/domain/enum"
	"github.com/sangkips/tillpoint-api/internal/presentation/http/dto/request"
	"github.com/sangkips/tillpoint-api/internal/presentation/http/dto/response"
)

// TaxRefresher is told when the business tax rate may have changed
type TaxRefresher interface {
	Refresh(ctx context.Context)
}

// SettingsHandler handles business settings and the additional invoice text
type SettingsHandler struct {
	settingsService *service.SettingsService
	registers       TaxRefresher
}

// NewSettingsHandler creates a new settings handler. registers may be nil.
func NewSettingsHandler(settingsService *service.SettingsService, registers TaxRefresher) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService, registers: registers}
}

func (h *SettingsHandler) GetBusiness(c *gin.Context) {
	settings, err := h.settingsService.GetBusiness(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	response.OK(c, "Business settings retrieved successfully", settings)
}

// UpdateBusiness saves the supplied fields and pushes a changed tax rate to
// the open registers
func (h *SettingsHandler) UpdateBusiness(c *gin.Context) {
	var req request.BusinessSettingsRequest
	if !bindJSON(c, &req) {
		return
	}

	input := &service.UpdateBusinessInput{
		BusinessName:  req.BusinessName,
		Address:       req.Address,
		Phone:         req.Phone,
		Email:         req.Email,
		TaxPIN:        req.TaxPIN,
		Currency:      req.Currency,
		TaxRate:       req.TaxRate,
		OpeningCash:   req.OpeningCash,
		InvoicePrefix: req.InvoicePrefix,
		ReceiptFooter: req.ReceiptFooter,
	}
	if req.DefaultFormat != nil {
		f, _ := enum.ParseReceiptFormat(*req.DefaultFormat)
		input.DefaultFormat = &f
	}
	if req.DefaultPreference != nil {
		p, _ := enum.ParsePrintPreference(*req.DefaultPreference)
		input.DefaultPreference = &p
	}

	settings, err := h.settingsService.UpdateBusiness(c.Request.Context(), input)
	if err != nil {
		fail(c, err)
		return
	}
	if req.TaxRate != nil && h.registers != nil {
		h.registers.Refresh(c.Request.Context())
	}

	response.OK(c, "Business settings updated successfully", settings)
}

// readUpload returns the named multipart file's name and bytes, writing a
// 400 when it is missing.
func readUpload(c *gin.Context, field string) (string, []byte, bool) {
	header, err := c.FormFile(field)
	if err != nil {
		response.BadRequest(c, "A file is required in the "+field+" field")
		return "", nil, false
	}
	file, err := header.Open()
	if err != nil {
		response.BadRequest(c, "Unable to read uploaded file")
		return "", nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		response.BadRequest(c, "Unable to read uploaded file")
		return "", nil, false
	}
	return header.Filename, data, true
}

func (h *SettingsHandler) UploadLogo(c *gin.Context) {
	name, data, ok := readUpload(c, "logo")
	if !ok {
		return
	}

	settings, err := h.settingsService.UploadLogo(c.Request.Context(), name, data)
	if err != nil {
		fail(c, err)
		return
	}

	response.OK(c, "Logo uploaded successfully", settings)
}

// UploadTemplate stores the PDF letterhead used for printed invoices
func (h *SettingsHandler) UploadTemplate(c *gin.Context) {
	_, data, ok := readUpload(c, "template")
	if !ok {
		return
	}

	settings, err := h.settingsService.UploadTemplate(c.Request.Context(), data)
	if err != nil {
		fail(c, err)
		return
	}

	response.OK(c, "Template uploaded successfully", settings)
}

func (h *SettingsHandler) GetAdditional(c *gin.Context) {
	info, err := h.settingsService.GetAdditional(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	response.OK(c, "Additional information retrieved successfully", info)
}

func (h *SettingsHandler) UpdateAdditional(c *gin.Context) {
	var req request.AdditionalInfoRequest
	if !bindJSON(c, &req) {
		return
	}

	info, err := h.settingsService.UpdateAdditional(c.Request.Context(), req.Notes, req.Terms, req.Summary)
	if err != nil {
		fail(c, err)
		return
	}

	response.OK(c, "Additional information updated successfully", info)
}
