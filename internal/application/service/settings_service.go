package service

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/sangkips/tillpoint-api/internal/domain/entity"
	"github.com/sangkips/tillpoint-api/internal/domain/enum"
	"github.com/sangkips/tillpoint-api/internal/domain/repository"
	"github.com/sangkips/tillpoint-api/internal/infrastructure/storage"
	"github.com/sangkips/tillpoint-api/pkg/apperror"
	"github.com/sangkips/tillpoint-api/pkg/money"
)

const logoThumbWidth = 200

// SettingsService handles business settings and the additional invoice text
type SettingsService struct {
	settingsRepo repository.SettingsRepository
	store        storage.Store
	maxUpload    int64
}

// NewSettingsService creates a new settings service
func NewSettingsService(settingsRepo repository.SettingsRepository, store storage.Store, maxUpload int64) *SettingsService {
	return &SettingsService{
		settingsRepo: settingsRepo,
		store:        store,
		maxUpload:    maxUpload,
	}
}

// GetBusiness retrieves the business settings, creating defaults if none exist
func (s *SettingsService) GetBusiness(ctx context.Context) (*entity.BusinessSettings, error) {
	settings, err := s.settingsRepo.GetBusiness(ctx)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		settings = &entity.BusinessSettings{
			BusinessName:  "My Business",
			Currency:      "KES",
			InvoicePrefix: "INV",
		}
		if err := s.settingsRepo.SaveBusiness(ctx, settings); err != nil {
			return nil, err
		}
	}
	return settings, nil
}

// UpdateBusinessInput represents the editable business settings
type UpdateBusinessInput struct {
	BusinessName      *string
	Address           *string
	Phone             *string
	Email             *string
	TaxPIN            *string
	Currency          *string
	TaxRate           *float64
	OpeningCash       *float64
	InvoicePrefix     *string
	ReceiptFooter     *string
	DefaultFormat     *enum.ReceiptFormat
	DefaultPreference *enum.PrintPreference
}

// UpdateBusiness updates the supplied settings fields
func (s *SettingsService) UpdateBusiness(ctx context.Context, input *UpdateBusinessInput) (*entity.BusinessSettings, error) {
	settings, err := s.GetBusiness(ctx)
	if err != nil {
		return nil, err
	}

	if input.TaxRate != nil && (*input.TaxRate < 0 || *input.TaxRate > 100) {
		return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "tax_rate", Message: "Must be between 0 and 100"}})
	}
	if input.BusinessName != nil {
		name := strings.TrimSpace(*input.BusinessName)
		if name == "" {
			return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "business_name", Message: "Business name is required"}})
		}
		settings.BusinessName = name
	}
	if input.Address != nil {
		settings.Address = *input.Address
	}
	if input.Phone != nil {
		settings.Phone = *input.Phone
	}
	if input.Email != nil {
		settings.Email = *input.Email
	}
	if input.TaxPIN != nil {
		settings.TaxPIN = *input.TaxPIN
	}
	if input.Currency != nil {
		settings.Currency = strings.ToUpper(strings.TrimSpace(*input.Currency))
	}
	if input.TaxRate != nil {
		settings.TaxRate = *input.TaxRate
	}
	if input.OpeningCash != nil {
		settings.OpeningCash = money.ToCents(*input.OpeningCash)
	}
	if input.InvoicePrefix != nil {
		settings.InvoicePrefix = strings.ToUpper(strings.TrimSpace(*input.InvoicePrefix))
	}
	if input.ReceiptFooter != nil {
		settings.ReceiptFooter = *input.ReceiptFooter
	}
	if input.DefaultFormat != nil {
		settings.DefaultFormat = *input.DefaultFormat
	}
	if input.DefaultPreference != nil {
		settings.DefaultPreference = *input.DefaultPreference
	}

	if err := s.settingsRepo.SaveBusiness(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// UploadLogo stores the logo and a narrow thumbnail for thermal and A4
// receipts. Any format imaging can decode is accepted.
func (s *SettingsService) UploadLogo(ctx context.Context, filename string, data []byte) (*entity.BusinessSettings, error) {
	if err := s.checkSize(data); err != nil {
		return nil, err
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, apperror.NewBadRequestError("Logo is not a supported image")
	}

	var thumb bytes.Buffer
	if err := imaging.Encode(&thumb, imaging.Resize(img, logoThumbWidth, 0, imaging.Lanczos), imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode logo thumbnail: %w", err)
	}

	stamp := time.Now().Unix()
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		ext = ".png"
	}
	logoURL, err := s.store.Put(ctx, fmt.Sprintf("branding/logo-%d%s", stamp, ext), contentTypeFor(ext), data)
	if err != nil {
		return nil, err
	}
	thumbURL, err := s.store.Put(ctx, fmt.Sprintf("branding/logo-%d-thumb.png", stamp), "image/png", thumb.Bytes())
	if err != nil {
		return nil, err
	}

	settings, err := s.GetBusiness(ctx)
	if err != nil {
		return nil, err
	}
	settings.LogoURL = &logoURL
	settings.LogoThumbURL = &thumbURL
	if err := s.settingsRepo.SaveBusiness(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// UploadTemplate stores the printed invoice template. Only PDF files are accepted.
func (s *SettingsService) UploadTemplate(ctx context.Context, data []byte) (*entity.BusinessSettings, error) {
	if err := s.checkSize(data); err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return nil, apperror.NewBadRequestError("Template must be a PDF file")
	}

	url, err := s.store.Put(ctx, fmt.Sprintf("branding/template-%d.pdf", time.Now().Unix()), "application/pdf", data)
	if err != nil {
		return nil, err
	}

	settings, err := s.GetBusiness(ctx)
	if err != nil {
		return nil, err
	}
	settings.TemplateURL = &url
	if err := s.settingsRepo.SaveBusiness(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func (s *SettingsService) checkSize(data []byte) error {
	if len(data) == 0 {
		return apperror.NewBadRequestError("File is empty")
	}
	if s.maxUpload > 0 && int64(len(data)) > s.maxUpload {
		return apperror.NewBadRequestError(fmt.Sprintf("File exceeds %d bytes", s.maxUpload))
	}
	return nil
}

func contentTypeFor(ext string) string {
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".bmp":
		return "image/bmp"
	default:
		return "image/png"
	}
}

// GetAdditional returns the notes, terms and summary printed on advanced invoices
func (s *SettingsService) GetAdditional(ctx context.Context) (*entity.AdditionalInfo, error) {
	info, err := s.settingsRepo.GetAdditional(ctx)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return &entity.AdditionalInfo{}, nil
	}
	return info, nil
}

// UpdateAdditional replaces the additional invoice text
func (s *SettingsService) UpdateAdditional(ctx context.Context, notes, terms, summary string) (*entity.AdditionalInfo, error) {
	info, err := s.settingsRepo.GetAdditional(ctx)
	if err != nil {
		return nil, err
	}
	if info == nil {
		info = &entity.AdditionalInfo{}
	}
	info.Notes = notes
	info.Terms = terms
	info.Summary = summary
	if err := s.settingsRepo.SaveAdditional(ctx, info); err != nil {
		return nil, err
	}
	return info, nil
}
