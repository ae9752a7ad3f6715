package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/sangkips/tillpoint-api/internal/application/register"
	"github.com/sangkips/tillpoint-api/internal/domain/pos"
	"github.com/sangkips/tillpoint-api/internal/domain/repository"
	"github.com/sangkips/tillpoint-api/pkg/apiclient"
	"github.com/sangkips/tillpoint-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"stock", pos.ErrStockExceeded, http.StatusUnprocessableEntity},
		{"wrapped unknown tab", fmt.Errorf("get tab: %w", register.ErrUnknownTab), http.StatusNotFound},
		{"held bill", register.ErrTabHasHeldBill, http.StatusConflict},
		{"double checkout", register.ErrCheckoutInProgress, http.StatusConflict},
		{"empty code", register.ErrEmptyCode, http.StatusBadRequest},
		{"duplicate row", repository.ErrDuplicate, http.StatusConflict},
		{"upstream 404", &apiclient.StatusError{StatusCode: 404, Message: "Product not found"}, http.StatusNotFound},
		{"upstream without status", &apiclient.StatusError{Message: "bad envelope"}, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapped := mapError(tt.err)
			require.True(t, apperror.IsAppError(mapped))
			assert.Equal(t, tt.code, apperror.GetAppError(mapped).Code)
		})
	}
}

func TestMapError_PassThrough(t *testing.T) {
	assert.Nil(t, mapError(nil))

	appErr := apperror.NewNotFoundError("Invoice")
	assert.Same(t, appErr, mapError(appErr))

	plain := errors.New("disk full")
	assert.Equal(t, plain, mapError(plain))
}

func TestMapError_DuplicateHidesDriverText(t *testing.T) {
	mapped := mapError(fmt.Errorf("insert: %w", repository.ErrDuplicate))
	assert.Equal(t, "Resource already exists", apperror.GetAppError(mapped).Message)
}

func TestSnakeCase(t *testing.T) {
	assert.Equal(t, "product_id", snakeCase("ProductID"))
	assert.Equal(t, "tax_rate", snakeCase("TaxRate"))
	assert.Equal(t, "otp", snakeCase("OTP"))
}
