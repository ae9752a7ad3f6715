package service

import (
	"bytes"
	"context"
	"image/color"
	"net/http"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/sangkips/tillpoint-api/internal/domain/enum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, imaging.New(w, h, color.NRGBA{R: 200, A: 255}), imaging.PNG))
	return buf.Bytes()
}

func TestGetBusinessCreatesDefaults(t *testing.T) {
	repo := &memSettings{}
	svc := NewSettingsService(repo, newMemStore(), 0)

	s, err := svc.GetBusiness(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "My Business", s.BusinessName)
	assert.Equal(t, "INV", s.InvoicePrefix)
	require.NotNil(t, repo.business)
}

func TestUpdateBusiness(t *testing.T) {
	svc := NewSettingsService(&memSettings{}, newMemStore(), 0)
	ctx := context.Background()

	bad := 101.0
	_, err := svc.UpdateBusiness(ctx, &UpdateBusinessInput{TaxRate: &bad})
	assert.Equal(t, []string{"tax_rate"}, appErrorFields(err))

	blank := "  "
	_, err = svc.UpdateBusiness(ctx, &UpdateBusinessInput{BusinessName: &blank})
	assert.Equal(t, []string{"business_name"}, appErrorFields(err))

	rate, opening := 16.0, 1500.75
	currency, prefix := " kes ", "rcp"
	format := enum.ReceiptFormatAdvanceThermal
	s, err := svc.UpdateBusiness(ctx, &UpdateBusinessInput{
		TaxRate:       &rate,
		OpeningCash:   &opening,
		Currency:      &currency,
		InvoicePrefix: &prefix,
		DefaultFormat: &format,
	})
	require.NoError(t, err)
	assert.Equal(t, 16.0, s.TaxRate)
	assert.Equal(t, int64(150075), s.OpeningCash)
	assert.Equal(t, "KES", s.Currency)
	assert.Equal(t, "RCP", s.InvoicePrefix)
	assert.Equal(t, enum.ReceiptFormatAdvanceThermal, s.DefaultFormat)
}

func TestUploadLogoStoresThumbnail(t *testing.T) {
	store := newMemStore()
	svc := NewSettingsService(&memSettings{}, store, 1<<20)

	s, err := svc.UploadLogo(context.Background(), "Logo.PNG", pngBytes(t, 800, 400))
	require.NoError(t, err)
	require.NotNil(t, s.LogoURL)
	require.NotNil(t, s.LogoThumbURL)
	assert.True(t, strings.HasSuffix(*s.LogoURL, ".png"))
	assert.Len(t, store.objects, 2)

	name := strings.TrimPrefix(*s.LogoThumbURL, "https://files.test/")
	thumb, err := imaging.Decode(bytes.NewReader(store.objects[name]))
	require.NoError(t, err)
	assert.Equal(t, logoThumbWidth, thumb.Bounds().Dx())
	assert.Equal(t, logoThumbWidth/2, thumb.Bounds().Dy())
}

func TestUploadRejectsBadFiles(t *testing.T) {
	svc := NewSettingsService(&memSettings{}, newMemStore(), 64)
	ctx := context.Background()

	_, err := svc.UploadLogo(ctx, "logo.png", []byte("not an image"))
	assert.Equal(t, http.StatusBadRequest, appCode(t, err))
	_, err = svc.UploadLogo(ctx, "logo.png", nil)
	assert.Equal(t, http.StatusBadRequest, appCode(t, err))
	_, err = svc.UploadLogo(ctx, "logo.png", bytes.Repeat([]byte{0x89}, 65))
	assert.Equal(t, http.StatusBadRequest, appCode(t, err))

	_, err = svc.UploadTemplate(ctx, []byte("<html>"))
	assert.Equal(t, http.StatusBadRequest, appCode(t, err))
	s, err := svc.UploadTemplate(ctx, []byte("%PDF-1.4 minimal"))
	require.NoError(t, err)
	require.NotNil(t, s.TemplateURL)
	assert.True(t, strings.HasSuffix(*s.TemplateURL, ".pdf"))
}

func TestAdditionalInfo(t *testing.T) {
	svc := NewSettingsService(&memSettings{}, newMemStore(), 0)
	ctx := context.Background()

	empty, err := svc.GetAdditional(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty.Terms)

	_, err = svc.UpdateAdditional(ctx, "n", "Pay within 30 days", "s")
	require.NoError(t, err)
	got, err := svc.GetAdditional(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Pay within 30 days", got.Terms)
}
