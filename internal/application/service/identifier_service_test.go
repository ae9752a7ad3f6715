package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/tillpoint-api/internal/domain/entity"
	"github.com/sangkips/tillpoint-api/internal/domain/enum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIdentifierFixture() (*IdentifierService, entity.Product, entity.Product) {
	phone := entity.Product{ID: uuid.New(), Name: "Phone", Code: "PH", IdentifierType: enum.IdentifierTypeIMEI}
	soap := entity.Product{ID: uuid.New(), Name: "Soap", Code: "SP"}
	products := newMemProducts(phone, soap)
	return NewIdentifierService(&memIdentifiers{products: products}, products), phone, soap
}

func TestBulkAddReportsDuplicates(t *testing.T) {
	svc, phone, _ := newIdentifierFixture()
	ctx := context.Background()

	res, err := svc.BulkAdd(ctx, enum.IdentifierTypeIMEI, phone.ID, []string{"A1", " A1 ", "B2", ""})
	require.NoError(t, err)
	require.Len(t, res.Added, 2)
	assert.Equal(t, "A1", res.Added[0].Value)
	assert.Equal(t, []string{"A1"}, res.Duplicates)

	res, err = svc.BulkAdd(ctx, enum.IdentifierTypeIMEI, phone.ID, []string{"B2", "C3"})
	require.NoError(t, err)
	require.Len(t, res.Added, 1)
	assert.Equal(t, "C3", res.Added[0].Value)
	assert.Equal(t, []string{"B2"}, res.Duplicates)

	_, err = svc.BulkAdd(ctx, enum.IdentifierTypeIMEI, phone.ID, []string{" "})
	assert.Equal(t, http.StatusBadRequest, appCode(t, err))
}

func TestBulkAddChecksProductType(t *testing.T) {
	svc, phone, soap := newIdentifierFixture()
	ctx := context.Background()

	_, err := svc.BulkAdd(ctx, enum.IdentifierTypeSerial, phone.ID, []string{"S1"})
	assert.Equal(t, http.StatusBadRequest, appCode(t, err))
	_, err = svc.BulkAdd(ctx, enum.IdentifierTypeIMEI, soap.ID, []string{"S1"})
	assert.Equal(t, http.StatusBadRequest, appCode(t, err))
	_, err = svc.BulkAdd(ctx, enum.IdentifierTypeNone, phone.ID, []string{"S1"})
	assert.Equal(t, http.StatusBadRequest, appCode(t, err))
	_, err = svc.BulkAdd(ctx, enum.IdentifierTypeIMEI, uuid.New(), []string{"S1"})
	assert.Equal(t, http.StatusNotFound, appCode(t, err))
}

func TestMarkSoldOnlyOnce(t *testing.T) {
	svc, phone, _ := newIdentifierFixture()
	ctx := context.Background()
	_, err := svc.BulkAdd(ctx, enum.IdentifierTypeIMEI, phone.ID, []string{"A1", "B2"})
	require.NoError(t, err)

	invoice := uuid.New()
	sold, err := svc.MarkSold(ctx, "A1", &invoice)
	require.NoError(t, err)
	assert.True(t, sold.Sold)
	assert.Equal(t, &invoice, sold.InvoiceID)

	_, err = svc.MarkSold(ctx, "A1", &invoice)
	assert.Equal(t, http.StatusConflict, appCode(t, err))
	_, err = svc.MarkSold(ctx, "Z9", nil)
	assert.Equal(t, http.StatusNotFound, appCode(t, err))

	unsold, err := svc.List(ctx, enum.IdentifierTypeIMEI, phone.ID, false)
	require.NoError(t, err)
	require.Len(t, unsold, 1)
	assert.Equal(t, "B2", unsold[0].Value)

	all, err := svc.List(ctx, enum.IdentifierTypeIMEI, phone.ID, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	hits, err := svc.Search(ctx, "A", 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.NotNil(t, hits[0].Product)
	assert.Equal(t, "Phone", hits[0].Product.Name)

	hits, err = svc.Search(ctx, "  ", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}
